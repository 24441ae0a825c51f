package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/postloom/postloom/internal/platform"
	"github.com/postloom/postloom/internal/scheduler"
	"github.com/postloom/postloom/internal/service"
	"github.com/postloom/postloom/internal/transfer"
)

type PostHandler struct {
	s  service.PostService
	sc *scheduler.Scheduler
}

func NewPostHandler(service service.PostService, sc *scheduler.Scheduler) *PostHandler {
	return &PostHandler{s: service, sc: sc}
}

func (h *PostHandler) CreatePost(c *fiber.Ctx) error {
	userID := GetUserID(c)

	var pc transfer.PostCreation
	if err := c.BodyParser(&pc); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	postID, err := h.s.CreatePost(c.Context(), userID, &pc)
	if err != nil {
		if errors.Is(err, platform.ErrUnsupportedPlatform) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if pc.ScheduledAt != "" {
		result, err := h.sc.SchedulePost(c.Context(), userID, postID, pc.ScheduledAt)
		if err != nil {
			return c.Status(scheduleErrorStatus(err)).JSON(fiber.Map{
				"error":   err.Error(),
				"post_id": postID,
			})
		}
		return c.Status(fiber.StatusOK).JSON(result)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Post created successfully",
		"post_id": postID,
	})
}

func (h *PostHandler) SchedulePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id", 0)
	if err != nil || postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "post id is not valid",
		})
	}

	var req transfer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		slog.Error(err.Error())
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to parse request body",
		})
	}

	result, err := h.sc.SchedulePost(c.Context(), userID, int64(postID), req.ScheduledAt)
	if err != nil {
		return c.Status(scheduleErrorStatus(err)).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusOK).JSON(result)
}

func scheduleErrorStatus(err error) int {
	switch {
	case errors.Is(err, scheduler.ErrInvalidSchedule),
		errors.Is(err, scheduler.ErrNoPlatforms),
		errors.Is(err, scheduler.ErrNoPendingPlatforms),
		errors.Is(err, platform.ErrUnsupportedPlatform):
		return fiber.StatusBadRequest
	case errors.Is(err, scheduler.ErrPostNotFound):
		return fiber.StatusNotFound
	default:
		return fiber.StatusInternalServerError
	}
}

func (h *PostHandler) ListPosts(c *fiber.Ctx) error {
	userId := GetUserID(c)
	postId := c.QueryInt("id", 0)

	if postId != 0 {
		post, err := h.s.PostInfo(c.Context(), int64(postId), userId)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Unable to get post",
			})
		}

		return c.Status(fiber.StatusOK).JSON(post)

	}

	posts, err := h.s.List(c.Context(), userId)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to list posts",
		})
	}

	return c.Status(fiber.StatusOK).JSON(posts)
}

func (h *PostHandler) PostStatus(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postID, err := c.ParamsInt("id", 0)
	if err != nil || postID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "post id is not valid",
		})
	}

	status, err := h.s.Status(c.Context(), int64(postID), userID)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unable to get post status",
		})
	}

	return c.Status(fiber.StatusOK).JSON(status)
}

func (h *PostHandler) RemovePost(c *fiber.Ctx) error {
	userID := GetUserID(c)
	postId := c.QueryInt("id", 0)

	err := h.s.Remove(c.Context(), userID, int64(postId))
	if err != nil {
		if errors.Is(err, service.ErrPostDelivered) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Unable to remove post",
		})
	}

	return c.SendStatus(fiber.StatusOK)
}
