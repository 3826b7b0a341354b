package handler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pmpulse/status-engine/internal/domain"
	"github.com/pmpulse/status-engine/internal/repository"
)

const maxFeedLimit = 100

type NotificationService interface {
	ListForUser(ctx context.Context, userID string, limit int) ([]repository.UserFeedItem, error)
	MarkAsRead(ctx context.Context, userID string, notificationIDs []string) (int64, error)
	Categories(ctx context.Context) ([]domain.Category, error)
}

type NotificationHandler struct {
	service NotificationService
}

func NewNotificationHandler(service NotificationService) (*NotificationHandler, error) {
	if service == nil {
		return nil, fmt.Errorf("notification service is required")
	}
	return &NotificationHandler{service: service}, nil
}

func RegisterNotificationRoutes(router fiber.Router, service NotificationService) error {
	h, err := NewNotificationHandler(service)
	if err != nil {
		return err
	}

	v1 := router.Group("/v1")
	v1.Get("/users/:userId/notifications", h.ListUserNotifications)
	v1.Post("/users/:userId/notifications/mark-read", h.MarkNotificationsRead)
	v1.Get("/notification-categories", h.ListCategories)

	return nil
}

type feedItemResponse struct {
	NotificationID string    `json:"notificationId"`
	ProjectID      string    `json:"projectId"`
	ProjectName    string    `json:"projectName"`
	MilestoneID    *string   `json:"milestoneId,omitempty"`
	MilestoneName  *string   `json:"milestoneName,omitempty"`
	Message        string    `json:"message"`
	IsSeen         bool      `json:"isSeen"`
	DateCreated    time.Time `json:"dateCreated"`
}

type markReadRequest struct {
	NotificationIDs []string `json:"notificationIds"`
}

type categoryResponse struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Message string `json:"message"`
}

func (h *NotificationHandler) ListUserNotifications(c *fiber.Ctx) error {
	userID := strings.TrimSpace(c.Params("userId"))

	limit := c.QueryInt("limit", 0)
	if limit > maxFeedLimit {
		return toHTTPError(fmt.Errorf("%w: limit must be <= %d", domain.ErrValidation, maxFeedLimit))
	}

	items, err := h.service.ListForUser(c.Context(), userID, limit)
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]feedItemResponse, 0, len(items))
	for _, item := range items {
		responses = append(responses, feedItemResponse{
			NotificationID: item.NotificationID,
			ProjectID:      item.ProjectID,
			ProjectName:    item.ProjectName,
			MilestoneID:    item.MilestoneID,
			MilestoneName:  item.MilestoneName,
			Message:        item.Message,
			IsSeen:         item.IsSeen,
			DateCreated:    item.DateCreated,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": responses,
	})
}

func (h *NotificationHandler) MarkNotificationsRead(c *fiber.Ctx) error {
	var req markReadRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	userID := strings.TrimSpace(c.Params("userId"))
	updated, err := h.service.MarkAsRead(c.Context(), userID, req.NotificationIDs)
	if err != nil {
		return toHTTPError(err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"updated": updated,
	})
}

func (h *NotificationHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.service.Categories(c.Context())
	if err != nil {
		return toHTTPError(err)
	}

	responses := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		responses = append(responses, categoryResponse{
			ID:      category.ID,
			Name:    category.Name,
			Message: category.Message,
		})
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"data": responses,
	})
}
