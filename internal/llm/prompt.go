package llm

import (
	"strings"
)

// SystemPrompt is the fixed system message of every detail request.
const SystemPrompt = "You are an assistant that extracts details from text."

// BuildUserPrompt asks for the four labeled lines and embeds the OCR text.
func BuildUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract the following details from this text:\n")
	b.WriteString("Name:\n")
	b.WriteString("Email: <one email address only - user@domain>\n")
	b.WriteString("Company: <company name only - if company not found use domain of email>\n")
	b.WriteString("Contact: <phone number if any - else nil>\n")
	b.WriteString("Text: ")
	b.WriteString(text)
	return b.String()
}

// BuildStrictUserPrompt asks for the same details as a single JSON object.
func BuildStrictUserPrompt(text string) string {
	var b strings.Builder
	b.WriteString("Extract the following details from this text and return ONLY a JSON object with exactly these keys:\n")
	b.WriteString(`"name": the person's full name` + "\n")
	b.WriteString(`"email": one email address only - user@domain` + "\n")
	b.WriteString(`"company": company name only - if company not found use domain of email` + "\n")
	b.WriteString(`"contact": phone number if any - else "nil"` + "\n")
	b.WriteString("Never output null. Use an empty string when a value is not present.\n")
	b.WriteString("\nText:\n")
	b.WriteString(text)
	return b.String()
}
