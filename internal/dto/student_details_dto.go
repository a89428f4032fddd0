package dto

// StudentDetailsRequest stores the letterhead details stamped onto
// generated documents.
type StudentDetailsRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=255"`
	Matricule  string `json:"matricule" validate:"omitempty,max=64"`
	School     string `json:"school" validate:"omitempty,max=255"`
	Department string `json:"department" validate:"omitempty,max=128"`
	Level      string `json:"level" validate:"omitempty,max=64"`
}

// StudentDetailsResponse echoes the currently stored details.
type StudentDetailsResponse struct {
	Name       string `json:"name"`
	Matricule  string `json:"matricule"`
	School     string `json:"school"`
	Department string `json:"department"`
	Level      string `json:"level"`
}
