package dto

import (
	"encoding/json"
	"time"

	"github.com/cheatwell/cheatwell-api/internal/models"
)

// ExecuteRequest describes the multipart form fields of the main
// assignment pipeline endpoint. File parts (file, image, voice) are
// read separately from the multipart payload.
type ExecuteRequest struct {
	Prompt         string `form:"prompt"`
	StudentLevel   string `form:"student_level" validate:"omitempty,oneof=Primary Secondary HighSchool University Masters PhD"`
	Department     string `form:"department" validate:"omitempty,max=128"`
	OutputFormat   string `form:"output_format" validate:"omitempty,oneof=pdf docx"`
	UseResearch    bool   `form:"use_research"`
	StealthMode    bool   `form:"stealth_mode"`
	MirrorStyle    bool   `form:"mirror_style"`
	FactCheck      bool   `form:"fact_check"`
	HumanizerLevel string `form:"humanizer_level" validate:"omitempty,oneof=light medium heavy"`
	Email          string `form:"email" validate:"omitempty,email"`
	WhatsAppNumber string `form:"whatsapp_number" validate:"omitempty,e164"`

	StudentName string `form:"student_name" validate:"omitempty,max=255"`
	Matricule   string `form:"matricule" validate:"omitempty,max=64"`
	SchoolName  string `form:"school_name" validate:"omitempty,max=255"`
}

// ExecuteResponse reports the outcome of one pipeline run.
type ExecuteResponse struct {
	ConversationID string          `json:"conversation_id"`
	Result         json.RawMessage `json:"result"`
	ExtractionTier string          `json:"extraction_tier"`
	ResearchUsed   bool            `json:"research_used"`
	Humanized      bool            `json:"humanized"`
	TrustScore     *float64        `json:"trust_score"`
	FileGenerated  *string         `json:"file_generated"`
	EmailSent      bool            `json:"email_sent"`
	WhatsAppSent   bool            `json:"whatsapp_sent"`
}

// ConversationResponse is returned when browsing submission history.
type ConversationResponse struct {
	ID               string          `json:"id"`
	Title            string          `json:"title"`
	Prompt           string          `json:"prompt"`
	StudentLevel     string          `json:"student_level"`
	Department       string          `json:"department"`
	SubmissionFormat string          `json:"submission_format"`
	SchoolName       string          `json:"school_name"`
	UseResearch      bool            `json:"use_research"`
	StealthMode      bool            `json:"stealth_mode"`
	StyleMirrored    bool            `json:"style_mirrored"`
	EmailSent        bool            `json:"email_sent"`
	WhatsAppSent     bool            `json:"whatsapp_sent"`
	FileGenerated    *string         `json:"file_generated"`
	TrustScore       *float64        `json:"trust_score"`
	Response         json.RawMessage `json:"response"`
	Verification     json.RawMessage `json:"verification"`
	CreatedAt        time.Time       `json:"created_at"`
}

// NewConversationResponse converts a Conversation model into a DTO.
func NewConversationResponse(model models.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:               model.ID,
		Title:            model.Title,
		Prompt:           model.Prompt,
		StudentLevel:     model.StudentLevel,
		Department:       model.Department,
		SubmissionFormat: model.SubmissionFormat,
		SchoolName:       model.SchoolName,
		UseResearch:      model.UseResearch,
		StealthMode:      model.StealthMode,
		StyleMirrored:    model.StyleMirrored,
		EmailSent:        model.EmailSent,
		WhatsAppSent:     model.WhatsAppSent,
		FileGenerated:    model.FileGenerated,
		TrustScore:       model.TrustScore,
		Response:         json.RawMessage(model.ResponseJSON),
		Verification:     json.RawMessage(model.VerificationJSON),
		CreatedAt:        model.CreatedAt,
	}
}

// NewConversationResponseSlice converts conversation models into DTOs.
func NewConversationResponseSlice(records []models.Conversation) []ConversationResponse {
	responses := make([]ConversationResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, NewConversationResponse(record))
	}

	return responses
}
