package pipeline

import (
	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/llm"
)

// Result is one processed card, kept in input order.
type Result struct {
	SourcePath  string
	ContentHash string
	Status      constants.ResultStatus
	Reply       string       // model reply, labeled lines
	Contact     *llm.Contact // set in strict mode only
	Resumed     bool         // taken from the journal without OCR or model calls
	Converted   string       // JPEG written beside a HEIC source
}

// Stats summarizes a batch.
type Stats struct {
	Scanned   int
	Matched   int
	Succeeded int
	Skipped   int
	Failed    int
	Resumed   int
}
