package llm

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"maps"
	"strings"
)

// NormalizeContactJSON
// - Strips a markdown code fence around the object
// - Renames known synonyms (phone -> contact, company_name -> company)
// - Coerces null and empty contact to "nil"
// - Trims strings and lowercases the email
// - Removes unknown keys (additionalProperties = false friendliness)
func NormalizeContactJSON(raw []byte, logger *slog.Logger) ([]byte, []string, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var m map[string]any
	if err := json.Unmarshal(stripCodeFence(raw), &m); err != nil {
		return nil, nil, fmt.Errorf("sanitize: decode: %w", err)
	}

	changed := make([]string, 0, 4)
	renamed := func(from, to string) {
		if v, ok := m[from]; ok {
			if _, exists := m[to]; !exists {
				m[to] = v
			}
			delete(m, from)
			changed = append(changed, from+"->"+to)
		}
	}

	renamed("full_name", "name")
	renamed("email_address", "email")
	renamed("company_name", "company")
	renamed("organization", "company")
	renamed("phone", "contact")
	renamed("phone_number", "contact")

	for _, k := range []string{"name", "email", "company", "contact"} {
		switch t := m[k].(type) {
		case string:
			m[k] = strings.TrimSpace(t)
		case nil:
			if _, ok := m[k]; ok {
				m[k] = ""
				changed = append(changed, k+"(null)")
			}
		}
	}
	if v, ok := m["email"].(string); ok {
		m["email"] = strings.ToLower(v)
	}
	if v, ok := m["contact"].(string); ok && v == "" {
		m["contact"] = "nil"
		changed = append(changed, "contact(empty)")
	}

	allowed := map[string]struct{}{"name": {}, "email": {}, "company": {}, "contact": {}}
	for k := range maps.Clone(m) {
		if _, ok := allowed[k]; !ok {
			delete(m, k)
			changed = append(changed, k+"(unknown)")
		}
	}

	out, err := json.Marshal(m)
	if err != nil {
		return nil, changed, fmt.Errorf("sanitize: encode: %w", err)
	}
	if len(changed) > 0 {
		logger.Warn("llm.contact.normalize", "changed", changed)
	}
	return out, changed, nil
}

// stripCodeFence removes a ```json ... ``` wrapper, which models without JSON
// mode often add.
func stripCodeFence(raw []byte) []byte {
	s := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(s, "```") {
		return raw
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return []byte(strings.TrimSpace(s))
}
