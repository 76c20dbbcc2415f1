package llm

import (
	"context"
	"errors"
)

var (
	// ErrNoChoices means the completion response carried no choices.
	ErrNoChoices = errors.New("llm: no choices in response")
	// ErrInvalidReply means a structured reply failed schema validation.
	ErrInvalidReply = errors.New("llm: reply failed validation")
)

// Contact is the normalized shape of a business card in strict mode.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Company string `json:"company"`
	Contact string `json:"contact"` // phone number or "nil"
}

// Fields returns the contact in table column order.
func (c Contact) Fields() []string {
	return []string{c.Name, c.Email, c.Company, c.Contact}
}

// Labeled renders the contact in the same line convention as free-form replies.
func (c Contact) Labeled() string {
	return "Name: " + c.Name + "\nEmail: " + c.Email + "\nCompany: " + c.Company + "\nContact: " + c.Contact
}

// DetailParser sends OCR text to a model and returns its free-form reply.
type DetailParser interface {
	ParseDetails(ctx context.Context, text string) (string, error)
}

// ContactExtractor asks for a JSON reply and validates it before returning.
type ContactExtractor interface {
	ExtractContact(ctx context.Context, text string) (Contact, []byte /*rawJSON*/, error)
}
