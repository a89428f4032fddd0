package service

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/cheatwell/cheatwell-api/internal/dto"
)

func TestStudentDetailsSaveAndGet(t *testing.T) {
	svc := NewStudentDetailsService(zerolog.Nop())

	require.Empty(t, svc.Get().Name)

	saved := svc.Save(dto.StudentDetailsRequest{
		Name:       "Ada Obi",
		Matricule:  "UB20S1234",
		School:     "University of Buea",
		Department: "Physics",
		Level:      "300",
	})
	require.Equal(t, "Ada Obi", saved.Name)

	stored := svc.Get()
	require.Equal(t, "UB20S1234", stored.Matricule)
	require.Equal(t, "University of Buea", stored.School)

	// Saving again replaces the whole record.
	svc.Save(dto.StudentDetailsRequest{Name: "New Name"})
	require.Empty(t, svc.Get().Matricule)
}
