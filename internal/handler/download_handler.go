package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/service"
	"github.com/cheatwell/cheatwell-api/internal/utils"
)

// DownloadHandler serves generated documents from the output directory.
type DownloadHandler struct {
	service service.DeliveryService
	logger  zerolog.Logger
}

// NewDownloadHandler constructs the download handler.
func NewDownloadHandler(service service.DeliveryService, logger zerolog.Logger) *DownloadHandler {
	return &DownloadHandler{
		service: service,
		logger:  logger.With().Str("component", "download_handler").Logger(),
	}
}

// Register wires the download route.
func (h *DownloadHandler) Register(router fiber.Router) {
	router.Get("/download/:filename", h.download)
}

func (h *DownloadHandler) download(c *fiber.Ctx) error {
	filename, err := decodeParam(c, "filename")
	if err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid document filename")
	}

	path, err := h.service.ResolveDocument(filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBadFilename):
			return utils.SendError(c, fiber.StatusBadRequest, "invalid document filename")
		case errors.Is(err, service.ErrDocumentNotFound):
			return utils.SendError(c, fiber.StatusNotFound, "document not found")
		default:
			requestLogger(h.logger, c).Error().Err(err).Str("filename", filename).Msg("failed to resolve document")
			return utils.SendError(c, fiber.StatusInternalServerError, "failed to resolve document")
		}
	}

	return c.Download(path)
}
