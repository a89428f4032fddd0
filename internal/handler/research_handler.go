package handler

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/service"
	"github.com/cheatwell/cheatwell-api/internal/utils"
)

// ResearchHandler exposes standalone web research.
type ResearchHandler struct {
	service   service.ResearchService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewResearchHandler constructs the research handler.
func NewResearchHandler(service service.ResearchService, validate *validator.Validate, logger zerolog.Logger) *ResearchHandler {
	return &ResearchHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "research_handler").Logger(),
	}
}

// Register wires research routes.
func (h *ResearchHandler) Register(router fiber.Router) {
	router.Post("/research", h.research)
	router.Get("/research/:query", h.researchByPath)
}

func (h *ResearchHandler) research(c *fiber.Ctx) error {
	var payload dto.ResearchRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}

	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return h.respond(c, payload.Query, payload.MaxResults)
}

func (h *ResearchHandler) researchByPath(c *fiber.Ctx) error {
	query, err := decodeParam(c, "query")
	if err != nil || query == "" {
		return utils.SendError(c, fiber.StatusBadRequest, "research query is required")
	}

	return h.respond(c, query, 0)
}

func (h *ResearchHandler) respond(c *fiber.Ctx, query string, maxResults int) error {
	response, err := h.service.Research(c.Context(), query, maxResults)
	if err != nil {
		if errors.Is(err, service.ErrResearchDisabled) {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "research is not configured")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("query", query).Msg("research failed")
		return utils.SendError(c, fiber.StatusBadGateway, "research failed")
	}

	return utils.SendSuccess(c, "research completed", response)
}
