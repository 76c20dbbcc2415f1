package ocr

import (
	"regexp"
	"strings"
)

var (
	reEmail = regexp.MustCompile(`[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}`)
	rePhone = regexp.MustCompile(`\+?\d[\d\s().\-]{6,}\d`)
	reURL   = regexp.MustCompile(`\b(www\.|https?://)\S+`)
)

func hasEmailPattern(s string) bool { return reEmail.MatchString(s) }
func hasPhonePattern(s string) bool { return rePhone.MatchString(s) }
func hasURLPattern(s string) bool   { return reURL.MatchString(s) }

// naive heuristic confidence that the text came from a business card
func heuristicConfidence(txt string) float32 {
	txtL := strings.ToLower(txt)
	score := float32(0.2) // base
	if hasEmailPattern(txtL) {
		score += 0.3
	}
	if hasPhonePattern(txtL) {
		score += 0.25
	}
	if hasURLPattern(txtL) {
		score += 0.1
	}
	if len(strings.Fields(txt)) >= 4 {
		score += 0.15
	} // enough content
	if score > 1.0 {
		score = 1.0
	}
	if strings.TrimSpace(txt) == "" {
		score = 0
	}
	return score
}
