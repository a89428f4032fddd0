package handler

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/dto"
	"github.com/cheatwell/cheatwell-api/internal/service"
	"github.com/cheatwell/cheatwell-api/internal/utils"
)

// StudentDetailsHandler manages the stored letterhead details.
type StudentDetailsHandler struct {
	service   service.StudentDetailsService
	validator *validator.Validate
	logger    zerolog.Logger
}

// NewStudentDetailsHandler constructs the handler.
func NewStudentDetailsHandler(service service.StudentDetailsService, validate *validator.Validate, logger zerolog.Logger) *StudentDetailsHandler {
	return &StudentDetailsHandler{
		service:   service,
		validator: validate,
		logger:    logger.With().Str("component", "student_details_handler").Logger(),
	}
}

// Register wires student detail routes.
func (h *StudentDetailsHandler) Register(router fiber.Router) {
	router.Post("/student/details", h.save)
	router.Get("/student/details", h.get)
}

func (h *StudentDetailsHandler) save(c *fiber.Ctx) error {
	var payload dto.StudentDetailsRequest
	if err := c.BodyParser(&payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if err := h.validator.Struct(payload); err != nil {
		return utils.SendError(c, fiber.StatusBadRequest, err.Error())
	}

	return utils.SendSuccess(c, "student details saved", h.service.Save(payload))
}

func (h *StudentDetailsHandler) get(c *fiber.Ctx) error {
	return utils.SendSuccess(c, "student details retrieved", h.service.Get())
}
