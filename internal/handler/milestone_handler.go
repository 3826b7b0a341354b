package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/service"
)

type MilestoneService interface {
	Create(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error)
	Update(ctx context.Context, m *domain.Milestone) (*domain.Milestone, error)
	MarkCompleted(ctx context.Context, id string) (*domain.Milestone, error)
	MarkPaid(ctx context.Context, id string) (*domain.Milestone, error)
	Get(ctx context.Context, id string) (*domain.Milestone, error)
	Delete(ctx context.Context, id string) error
	Status(ctx context.Context, id string) (domain.MilestoneStatus, error)
	Search(ctx context.Context, projectID, query string, status domain.MilestoneStatus) ([]domain.Milestone, error)
	Progress(ctx context.Context, projectID string) (*service.MilestoneProgress, error)
}

type MilestoneHandler struct {
	service MilestoneService
}

func NewMilestoneHandler(service MilestoneService) (*MilestoneHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("milestone service is required")
	}
	return &MilestoneHandler{service: service}, nil
}

func RegisterMilestoneRoutes(router fiber.Router, service MilestoneService) error {
	h, err := NewMilestoneHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Post("/projects/:projectId/milestones", h.CreateMilestone)
	v1.Get("/projects/:projectId/milestones", h.SearchMilestones)
	v1.Get("/projects/:projectId/milestones/progress", h.GetProgress)
	v1.Get("/milestones/:id", h.GetMilestone)
	v1.Put("/milestones/:id", h.UpdateMilestone)
	v1.Post("/milestones/:id/complete", h.CompleteMilestone)
	v1.Post("/milestones/:id/pay", h.PayMilestone)
	v1.Get("/milestones/:id/status", h.GetMilestoneStatus)
	v1.Delete("/milestones/:id", h.DeleteMilestone)

	return nil
}

type milestoneRequest struct {
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	DateProjectedStart time.Time  `json:"dateProjectedStart"`
	DateProjectedEnd   time.Time  `json:"dateProjectedEnd"`
	DateActualStart    *time.Time `json:"dateActualStart,omitempty"`
	DateActualEnd      *time.Time `json:"dateActualEnd,omitempty"`
	PaymentPercentage  int        `json:"paymentPercentage"`
	CreatedByID        string     `json:"createdById"`
}

type milestoneResponse struct {
	ID                 string     `json:"id"`
	ProjectID          string     `json:"projectId"`
	Name               string     `json:"name"`
	Description        string     `json:"description"`
	DateProjectedStart time.Time  `json:"dateProjectedStart"`
	DateProjectedEnd   time.Time  `json:"dateProjectedEnd"`
	DateActualStart    *time.Time `json:"dateActualStart,omitempty"`
	DateActualEnd      *time.Time `json:"dateActualEnd,omitempty"`
	DatePaid           *time.Time `json:"datePaid,omitempty"`
	IsPaid             bool       `json:"isPaid"`
	IsCompleted        bool       `json:"isCompleted"`
	PaymentPercentage  int        `json:"paymentPercentage"`
	DateCreated        time.Time  `json:"dateCreated"`
	DateUpdated        time.Time  `json:"dateUpdated"`
}

func (h *MilestoneHandler) CreateMilestone(c *fiber.Ctx) error {
	var req milestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	milestone := requestToDomainMilestone(req)
	milestone.ProjectID = strings.TrimSpace(c.Params("projectId"))

	created, err := h.service.Create(c.Context(), &milestone)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusCreated).JSON(toMilestoneResponse(created))
}

func (h *MilestoneHandler) SearchMilestones(c *fiber.Ctx) error {
	projectID := strings.TrimSpace(c.Params("projectId"))
	query := strings.TrimSpace(c.Query("q"))

	var status domain.MilestoneStatus
	if raw := strings.TrimSpace(c.Query("status")); raw != "" {
		parsed, err := parseStatusQuery(raw)
		if err != nil {
			return toHTTPError(err)
		}
		status = parsed
	}

	milestones, err := h.service.Search(c.Context(), projectID, query, status)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]milestoneResponse, 0, len(milestones))
	for i := range milestones {
		responses = append(responses, toMilestoneResponse(&milestones[i]))
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": responses,
	})
}

func (h *MilestoneHandler) GetProgress(c *fiber.Ctx) error {
	projectID := strings.TrimSpace(c.Params("projectId"))
	progress, err := h.service.Progress(c.Context(), projectID)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(progress)
}

func (h *MilestoneHandler) GetMilestone(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	milestone, err := h.service.Get(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMilestoneResponse(milestone))
}

func (h *MilestoneHandler) UpdateMilestone(c *fiber.Ctx) error {
	var req milestoneRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	id := strings.TrimSpace(c.Params("id"))
	existing, err := h.service.Get(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	milestone := requestToDomainMilestone(req)
	milestone.ID = existing.ID
	milestone.ProjectID = existing.ProjectID
	milestone.IsCompleted = existing.IsCompleted
	milestone.IsPaid = existing.IsPaid
	milestone.DatePaid = existing.DatePaid
	milestone.CreatedByID = existing.CreatedByID

	updated, err := h.service.Update(c.Context(), &milestone)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMilestoneResponse(updated))
}

func (h *MilestoneHandler) CompleteMilestone(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	milestone, err := h.service.MarkCompleted(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMilestoneResponse(milestone))
}

func (h *MilestoneHandler) PayMilestone(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	milestone, err := h.service.MarkPaid(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(toMilestoneResponse(milestone))
}

func (h *MilestoneHandler) GetMilestoneStatus(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	status, err := h.service.Status(c.Context(), id)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"milestoneId": id,
		"status":      status.String(),
	})
}

func (h *MilestoneHandler) DeleteMilestone(c *fiber.Ctx) error {
	id := strings.TrimSpace(c.Params("id"))
	if err := h.service.Delete(c.Context(), id); err != nil {
		return toHTTPError(err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseStatusQuery(raw string) (domain.MilestoneStatus, error) {
	status := domain.MilestoneStatus(strings.ToUpper(raw))
	switch status {
	case domain.StatusNotStarted, domain.StatusOngoing, domain.StatusAwaitingPayment,
		domain.StatusOverduePayment, domain.StatusOverdueCompletion, domain.StatusPaid:
		return status, nil
	}
	return "", fmt.Errorf("%w: unknown status %q", domain.ErrValidation, raw)
}

func requestToDomainMilestone(req milestoneRequest) domain.Milestone {
	return domain.Milestone{
		Name:               strings.TrimSpace(req.Name),
		Description:        strings.TrimSpace(req.Description),
		DateProjectedStart: req.DateProjectedStart,
		DateProjectedEnd:   req.DateProjectedEnd,
		DateActualStart:    req.DateActualStart,
		DateActualEnd:      req.DateActualEnd,
		PaymentPercentage:  req.PaymentPercentage,
		CreatedByID:        strings.TrimSpace(req.CreatedByID),
	}
}

func toMilestoneResponse(m *domain.Milestone) milestoneResponse {
	if m == nil {
		return milestoneResponse{}
	}

	return milestoneResponse{
		ID:                 m.ID,
		ProjectID:          m.ProjectID,
		Name:               m.Name,
		Description:        m.Description,
		DateProjectedStart: m.DateProjectedStart,
		DateProjectedEnd:   m.DateProjectedEnd,
		DateActualStart:    m.DateActualStart,
		DateActualEnd:      m.DateActualEnd,
		DatePaid:           m.DatePaid,
		IsPaid:             m.IsPaid,
		IsCompleted:        m.IsCompleted,
		PaymentPercentage:  m.PaymentPercentage,
		DateCreated:        m.DateCreated,
		DateUpdated:        m.DateUpdated,
	}
}
