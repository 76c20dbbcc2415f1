package pipeline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/joseph-ayodele/cardscan/internal/llm"
)

type ParseStage struct {
	Parser   llm.DetailParser
	Contacts llm.ContactExtractor // nil disables strict mode
	Logger   *slog.Logger
}

func NewParseStage(parser llm.DetailParser, contacts llm.ContactExtractor, logger *slog.Logger) *ParseStage {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParseStage{Parser: parser, Contacts: contacts, Logger: logger}
}

// Run asks the model for the card details. In strict mode the validated
// contact is returned together with its labeled rendering.
func (s *ParseStage) Run(ctx context.Context, text string) (string, *llm.Contact, error) {
	if s.Contacts != nil {
		c, raw, err := s.Contacts.ExtractContact(ctx, text)
		if err != nil {
			if errors.Is(err, llm.ErrInvalidReply) {
				s.Logger.Warn("pipeline.parse.invalid_reply", "raw", string(raw), "error", err)
			}
			return "", nil, err
		}
		return c.Labeled(), &c, nil
	}
	if s.Parser == nil {
		return "", nil, errors.New("pipeline: no detail parser configured")
	}
	reply, err := s.Parser.ParseDetails(ctx, text)
	if err != nil {
		return "", nil, err
	}
	return reply, nil, nil
}
