package dto

// SendEmailRequest delivers a previously generated document by email.
type SendEmailRequest struct {
	To       string `json:"to" validate:"required,email"`
	Subject  string `json:"subject" validate:"omitempty,max=255"`
	Body     string `json:"body" validate:"omitempty,max=10000"`
	Filename string `json:"filename" validate:"omitempty,max=255"`
}

// SendWhatsAppRequest delivers a document or message over WhatsApp.
type SendWhatsAppRequest struct {
	To       string `json:"to" validate:"required,e164"`
	Body     string `json:"body" validate:"omitempty,max=4096"`
	Filename string `json:"filename" validate:"omitempty,max=255"`
}

// DeliveryResponse reports whether an out-of-band send succeeded.
type DeliveryResponse struct {
	Channel   string `json:"channel"`
	To        string `json:"to"`
	Delivered bool   `json:"delivered"`
	Detail    string `json:"detail,omitempty"`
}
