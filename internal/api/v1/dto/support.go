package dto

import "ducksnap/internal/model"

// TicketRequest is the help page contact form. Blank fields are rejected by
// the service with a toast rather than by validation tags.
type TicketRequest struct {
	Subject string `json:"subject"`
	Message string `json:"message"`
}

// TicketResponse returns the stored ticket with the confirmation text.
type TicketResponse struct {
	Ticket  *model.SupportTicket `json:"ticket"`
	Message string               `json:"message"`
}
