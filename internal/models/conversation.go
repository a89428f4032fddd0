package models

import (
	"time"

	"gorm.io/datatypes"
)

// Conversation is one processed assignment submission, from intake
// through generation and delivery.
type Conversation struct {
	ID               string         `gorm:"primaryKey;size:64" json:"id"`
	Title            string         `gorm:"size:255" json:"title"`
	Prompt           string         `gorm:"type:text" json:"prompt"`
	StudentLevel     string         `gorm:"size:64" json:"student_level"`
	Department       string         `gorm:"size:128" json:"department"`
	SubmissionFormat string         `gorm:"size:16" json:"submission_format"`
	SchoolName       string         `gorm:"size:255" json:"school_name"`
	UseResearch      bool           `json:"use_research"`
	StealthMode      bool           `json:"stealth_mode"`
	StyleMirrored    bool           `json:"style_mirrored"`
	EmailSent        bool           `json:"email_sent"`
	WhatsAppSent     bool           `json:"whatsapp_sent"`
	FileGenerated    *string        `gorm:"size:512" json:"file_generated"`
	TrustScore       *float64       `json:"trust_score"`
	ResearchContext  string         `gorm:"type:text" json:"research_context"`
	ResponseJSON     datatypes.JSON `json:"response"`
	VerificationJSON datatypes.JSON `json:"verification"`
	CreatedAt        time.Time      `json:"created_at"`
}

// Delivered reports whether the result reached the student over any
// channel.
func (c Conversation) Delivered() bool {
	return c.EmailSent || c.WhatsAppSent
}
