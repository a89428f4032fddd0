package service

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/cheatwell/cheatwell-api/internal/dto"
)

// StudentDetailsService keeps the letterhead details stamped onto
// generated documents. Details live in process memory; each request
// may still override them with its own form fields.
type StudentDetailsService interface {
	Save(details dto.StudentDetailsRequest) dto.StudentDetailsResponse
	Get() dto.StudentDetailsResponse
}

type studentDetailsService struct {
	mu      sync.RWMutex
	details dto.StudentDetailsResponse
	logger  zerolog.Logger
}

// NewStudentDetailsService builds the store.
func NewStudentDetailsService(logger zerolog.Logger) StudentDetailsService {
	return &studentDetailsService{
		logger: logger.With().Str("component", "student_details_service").Logger(),
	}
}

func (s *studentDetailsService) Save(details dto.StudentDetailsRequest) dto.StudentDetailsResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.details = dto.StudentDetailsResponse{
		Name:       details.Name,
		Matricule:  details.Matricule,
		School:     details.School,
		Department: details.Department,
		Level:      details.Level,
	}

	s.logger.Info().Str("name", details.Name).Msg("student details updated")
	return s.details
}

func (s *studentDetailsService) Get() dto.StudentDetailsResponse {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.details
}
