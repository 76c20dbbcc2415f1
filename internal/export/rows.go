package export

import (
	"strings"

	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

// RowFromReply turns a labeled reply into field values. Each line with a colon
// contributes the trimmed text after the first colon, except the echoed
// "Text:" line. Field order follows line order.
func RowFromReply(reply string) []string {
	var row []string
	for _, line := range strings.Split(reply, "\n") {
		label, value, ok := strings.Cut(line, ":")
		if !ok || strings.TrimSpace(label) == "Text" {
			continue
		}
		row = append(row, strings.TrimSpace(value))
	}
	return row
}

// rowFor prefers the validated contact over the heuristic when present.
func rowFor(r pipeline.Result) []string {
	if r.Contact != nil {
		return r.Contact.Fields()
	}
	return RowFromReply(r.Reply)
}
