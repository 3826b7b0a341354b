package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pmpulse/status-engine/internal/domain"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	Update(ctx context.Context, p *domain.Project) (*domain.Project, error)
	TouchLastUpdated(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

type ProjectHandler struct {
	service ProjectService
}

func NewProjectHandler(service ProjectService) (*ProjectHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("project service is required")
	}
	return &ProjectHandler{service: service}, nil
}

func RegisterProjectRoutes(router fiber.Router, service ProjectService) error {
	h, err := NewProjectHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/projects", h.CreateProject)
	v1.Get("/projects/:id", h.GetProject)
	v1.Put("/projects/:id", h.UpdateProject)
	v1.Post("/projects/:id/touch", h.TouchProject)
	v1.Delete("/projects/:id", h.DeleteProject)

	return nil
}

type projectRequest struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	PaymentAmount      *float64   `json:"paymentAmount,omitempty"`
	IsCompleted        bool       `json:"isCompleted"`
	IsPaid             bool       `json:"isPaid"`
	DateProjectedStart time.Time  `json:"dateProjectedStart"`
	DateProjectedEnd   time.Time  `json:"dateProjectedEnd"`
	DateActualStart    *time.Time `json:"dateActualStart,omitempty"`
	DateActualEnd      *time.Time `json:"dateActualEnd,omitempty"`
	CreatedByID        *string    `json:"createdById,omitempty"`
}

type projectResponse struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	PaymentAmount      *float64   `json:"paymentAmount,omitempty"`
	IsCompleted        bool       `json:"isCompleted"`
	IsPaid             bool       `json:"isPaid"`
	DateProjectedStart time.Time  `json:"dateProjectedStart"`
	DateProjectedEnd   time.Time  `json:"dateProjectedEnd"`
	DateActualStart    *time.Time `json:"dateActualStart,omitempty"`
	DateActualEnd      *time.Time `json:"dateActualEnd,omitempty"`
	DateCreated        time.Time  `json:"dateCreated"`
	DateUpdated        time.Time  `json:"dateUpdated"`
	CreatedByID        *string    `json:"createdById,omitempty"`
}

func (h *ProjectHandler) CreateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	project := requestToDomainProject(req)
	created, err := h.service.Create(c.Context(), &project)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toProjectResponse(created))
}

func (h *ProjectHandler) GetProject(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	project, err := h.service.Get(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toProjectResponse(project))
}

func (h *ProjectHandler) UpdateProject(c *fiber.Ctx) error {
	var req projectRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	project := requestToDomainProject(req)
	project.ID = strings.TrimSpace(c.Params("id"))

	updated, err := h.service.Update(c.Context(), &project)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toProjectResponse(updated))
}

func (h *ProjectHandler) TouchProject(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.TouchLastUpdated(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"projectId": id,
		"status":    "touched",
	})
}

func (h *ProjectHandler) DeleteProject(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.Delete(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func requestToDomainProject(req projectRequest) domain.Project {
	return domain.Project{
		Name:               strings.TrimSpace(req.Name),
		Description:        strings.TrimSpace(req.Description),
		PaymentAmount:      req.PaymentAmount,
		IsCompleted:        req.IsCompleted,
		IsPaid:             req.IsPaid,
		DateProjectedStart: req.DateProjectedStart,
		DateProjectedEnd:   req.DateProjectedEnd,
		DateActualStart:    req.DateActualStart,
		DateActualEnd:      req.DateActualEnd,
		CreatedByID:        req.CreatedByID,
	}
}

func toProjectResponse(p *domain.Project) projectResponse {
	if p == nil {
		return projectResponse{}
	}

	return projectResponse{
		ID:                 p.ID,
		Name:               p.Name,
		Description:        p.Description,
		PaymentAmount:      p.PaymentAmount,
		IsCompleted:        p.IsCompleted,
		IsPaid:             p.IsPaid,
		DateProjectedStart: p.DateProjectedStart,
		DateProjectedEnd:   p.DateProjectedEnd,
		DateActualStart:    p.DateActualStart,
		DateActualEnd:      p.DateActualEnd,
		DateCreated:        p.DateCreated,
		DateUpdated:        p.DateUpdated,
		CreatedByID:        p.CreatedByID,
	}
}

func toHTTPError(err error) error {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrConflict):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
