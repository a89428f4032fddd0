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

// DeliveryHandler exposes out-of-band document delivery.
type DeliveryHandler struct {
	service   service.DeliveryService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewDeliveryHandler constructs the delivery handler.
func NewDeliveryHandler(service service.DeliveryService, validate *validator.Validate, logger zerolog.Logger) *DeliveryHandler {
	return &DeliveryHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "delivery_handler").Logger(),
	}
}

// Register wires delivery routes.
func (h *DeliveryHandler) Register(router fiber.Router) {
	router.Post("/send/gmail", h.sendEmail)
	router.Post("/send/whatsapp", h.sendWhatsApp)
}

func (h *DeliveryHandler) sendEmail(c *fiber.Ctx) error {
	var payload dto.SendEmailRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attachmentPath, errResp := h.resolveAttachment(c, payload.Filename)
	if errResp != nil {
		return errResp(c)
	}

	if err := h.service.SendEmail(c.Context(), payload.To, payload.Subject, payload.Body, attachmentPath); err != nil {
		if errors.Is(err, service.ErrEmailDisabled) {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "email delivery is not configured")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("to", payload.To).Msg("email delivery failed")
		return utils.SendError(c, fiber.StatusBadGateway, "email delivery failed")
	}

	return utils.SendSuccess(c, "email sent", dto.DeliveryResponse{
		Channel:   "email",
		To:        payload.To,
		Delivered: true,
	})
}

func (h *DeliveryHandler) sendWhatsApp(c *fiber.Ctx) error {
	var payload dto.SendWhatsAppRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	attachmentPath, errResp := h.resolveAttachment(c, payload.Filename)
	if errResp != nil {
		return errResp(c)
	}

	if err := h.service.SendWhatsApp(c.Context(), payload.To, payload.Body, attachmentPath); err != nil {
		if errors.Is(err, service.ErrWhatsAppDisabled) {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "whatsapp delivery is not configured")
		}
		requestLogger(h.logger, c).Error().Err(err).Str("to", payload.To).Msg("whatsapp delivery failed")
		return utils.SendError(c, fiber.StatusBadGateway, "whatsapp delivery failed")
	}

	return utils.SendSuccess(c, "whatsapp message sent", dto.DeliveryResponse{
		Channel:   "whatsapp",
		To:        payload.To,
		Delivered: true,
	})
}

// resolveAttachment maps an optional filename onto the output
// directory. The second return value, when non-nil, writes the error
// response.
func (h *DeliveryHandler) resolveAttachment(c *fiber.Ctx, filename string) (string, func(*fiber.Ctx) error) {
	if filename == "" {
		return "", nil
	}

	path, err := h.service.ResolveDocument(filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadFilename):
			return "", func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusBadRequest, "invalid document filename")
			}
		case errors.Is(err, service.ErrDocumentNotFound):
			return "", func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusNotFound, "document not found")
			}
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("filename", filename).Msg("failed to resolve document")
			return "", func(c *fiber.Ctx) error {
				return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve document")
			}
		}
	}

	return path, nil
}
