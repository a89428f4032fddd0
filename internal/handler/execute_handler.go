package handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/service"
	"github.com/cheatwell/cheatwell-api/internal/utils"
)

// ExecuteHandler exposes the assignment pipeline endpoint.
type ExecuteHandler struct {
	service service.ExecutionService
	logger  zerolog.Logger
}

// NewExecuteHandler constructs the pipeline handler.
func NewExecuteHandler(service service.ExecutionService, logger zerolog.Logger) *ExecuteHandler {
	return &ExecuteHandler{
		service: service,
		logger:  logger.With().Str("component", "execute_handler").Logger(),
	}
}

// Register wires the pipeline route.
func (h *ExecuteHandler) Register(router fiber.Router) {
	router.Post("/execute", h.execute)
}

func (h *ExecuteHandler) execute(c *fiber.Ctx) error {
	var payload dto.ExecuteRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid form payload")
	}

	input := service.ExecutionInput{Request: payload}

	var err error
	if input.File, err = readPart(c, "file"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if input.Image, err = readPart(c, "image"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}
	if input.Voice, err = readPart(c, "voice"); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	response, err := h.service.Execute(c.Context(), input)
	if err != nil {
		switch {
		case isValidationError(err):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrNoInput):
			return utils.SendError(c, fiber.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrFileTooLarge):
			return utils.SendError(c, fiber.StatusRequestEntityTooLarge, err.Error())
		case errors.Is(err, service.ErrBadFileType):
			return utils.SendError(c, fiber.StatusUnsupportedMediaType, err.Error())
		case errors.Is(err, service.ErrGeneratorUnavailable):
			return utils.SendError(c, fiber.StatusServiceUnavailable, "generation backend unavailable")
		default:
			requestLogger(h.logger, c).Error().Err(err).Msg("pipeline execution failed")
			return utils.SendError(c, fiber.StatusBadGateway, "assignment processing failed")
		}
	}

	return utils.SendSuccess(c, "assignment processed", response)
}

// readPart loads one optional multipart file into memory. A missing
// part is not an error.
func readPart(c *fiber.Ctx, name string) (*service.UploadedFile, error) {
	header, err := c.FormFile(name)
	if err != nil {
		return nil, nil
	}

	data, err := readMultipartFile(header)
	if err != nil {
		return nil, fmt.Errorf("could not read uploaded %s", name)
	}

	return &service.UploadedFile{Filename: header.Filename, Data: data}, nil
}

func readMultipartFile(header *multipart.FileHeader) ([]byte, error) {
	src, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}
