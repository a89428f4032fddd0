package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/service"
	"github.com/cheatwell/cheatwell-api/internal/utils"
)

// HistoryHandler exposes the processed-submission archive.
type HistoryHandler struct {
	service service.HistoryService
	logger  zerolog.Logger
}

// NewHistoryHandler constructs the history handler.
func NewHistoryHandler(service service.HistoryService, logger zerolog.Logger) *HistoryHandler {
	return &HistoryHandler{
		service: service,
		logger:  logger.With().Str("component", "history_handler").Logger(),
	}
}

// Register wires history routes.
func (h *HistoryHandler) Register(router fiber.Router) {
	router.Get("/history", h.list)
	router.Get("/history/:id", h.get)
	router.Delete("/history/:id", h.remove)
}

func (h *HistoryHandler) list(c *fiber.Ctx) error {
	limit, err := parseQueryInt(c, "limit")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "limit must be a number")
	}

	items, err := h.service.List(c.Context(), limit)
	if err != nil {
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to list history")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to list history")
	}

	return utils.SendSuccess(c, "history retrieved", items)
}

func (h *HistoryHandler) get(c *fiber.Ctx) error {
	item, err := h.service.Get(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "conversation not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to load conversation")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to load conversation")
	}

	return utils.SendSuccess(c, "conversation retrieved", item)
}

func (h *HistoryHandler) remove(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, service.ErrConversationNotFound) {
			return utils.SendError(c, fiber.StatusNotFound, "conversation not found")
		}
		requestLogger(h.logger, c).Error().Err(err).Msg("failed to delete conversation")
		return utils.SendError(c, fiber.StatusInternalServerError, "failed to delete conversation")
	}

	return utils.SendSuccess(c, "conversation deleted", nil)
}
