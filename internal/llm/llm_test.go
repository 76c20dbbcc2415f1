package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUserPrompt(t *testing.T) {
	p := BuildUserPrompt("ACME Corp\nbob@acme.com")
	lines := strings.Split(p, "\n")
	require.GreaterOrEqual(t, len(lines), 6)
	assert.Equal(t, "Name:", lines[1])
	assert.Equal(t, "Email: <one email address only - user@domain>", lines[2])
	assert.Equal(t, "Company: <company name only - if company not found use domain of email>", lines[3])
	assert.Equal(t, "Contact: <phone number if any - else nil>", lines[4])
	assert.True(t, strings.HasSuffix(p, "Text: ACME Corp\nbob@acme.com"))
}

func TestValidateJSONAgainstSchema(t *testing.T) {
	schema := BuildContactJSONSchema()
	require.NoError(t, ValidateJSONAgainstSchema(schema,
		[]byte(`{"name":"","email":"a@b.co","company":"b.co","contact":"nil"}`)))

	tests := map[string]string{
		"extra key":     `{"name":"a","email":"b","company":"c","contact":"d","title":"CEO"}`,
		"empty contact": `{"name":"a","email":"b","company":"c","contact":""}`,
		"array":         `["a","b"]`,
		"truncated":     `{"name":`,
	}
	for name, doc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateJSONAgainstSchema(schema, []byte(doc)), ErrInvalidReply)
		})
	}
}

func TestNormalizeContactJSON(t *testing.T) {
	out, changed, err := NormalizeContactJSON([]byte(`{
		"full_name": "Bob Smith ",
		"email": " BOB@ACME.COM",
		"company": "Acme",
		"phone_number": "",
		"title": "CTO"
	}`), nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Bob Smith","email":"bob@acme.com","company":"Acme","contact":"nil"}`, string(out))
	assert.Contains(t, changed, "title(unknown)")
	assert.Contains(t, changed, "full_name->name")

	_, _, err = NormalizeContactJSON([]byte(`nope`), nil)
	assert.Error(t, err)
}

func TestStripCodeFence(t *testing.T) {
	tests := map[string]string{
		"```json\n{\"a\":1}\n```": `{"a":1}`,
		"```\n{\"a\":1}```":        `{"a":1}`,
		` {"a":1} `:                  ` {"a":1} `,
	}
	for in, want := range tests {
		assert.Equal(t, want, string(stripCodeFence([]byte(in))))
	}
}

func TestContact_Fields(t *testing.T) {
	c := Contact{Name: "Jane", Email: "j@x.io", Company: "X", Contact: "nil"}
	assert.Equal(t, []string{"Jane", "j@x.io", "X", "nil"}, c.Fields())
	assert.Equal(t, "Name: Jane\nEmail: j@x.io\nCompany: X\nContact: nil", c.Labeled())
}
