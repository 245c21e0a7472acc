package domain

import (
	"fmt"
	"strings"
)

// EmailRequest is the body accepted by the email route.
type EmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text,omitempty"`
	HTML    string `json:"html,omitempty"`
}

// Validate requires a recipient and a subject.
func (r *EmailRequest) Validate() error {
	if strings.TrimSpace(r.To) == "" {
		return fmt.Errorf("%w: to is required", ErrInvalidRequest)
	}
	if strings.TrimSpace(r.Subject) == "" {
		return fmt.Errorf("%w: subject is required", ErrInvalidRequest)
	}
	return nil
}

// EmailResult is returned by the email route on success.
type EmailResult struct {
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}
