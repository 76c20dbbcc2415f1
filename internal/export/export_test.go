package export

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/cardscan/internal/llm"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

const janeReply = "Name: Jane Doe\nEmail: jane@acme.com\nCompany: Acme\nContact: +1 555 0100"

func readCSV(t *testing.T, data string) [][]string {
	t.Helper()
	r := csv.NewReader(strings.NewReader(data))
	r.FieldsPerRecord = -1
	recs, err := r.ReadAll()
	require.NoError(t, err)
	return recs
}

func TestRowFromReply(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  []string
	}{
		{"four labeled lines", janeReply, []string{"Jane Doe", "jane@acme.com", "Acme", "+1 555 0100"}},
		{"echoed text line skipped", "Name: Bob\nText: BOB ACME\nEmail: bob@acme.com", []string{"Bob", "bob@acme.com"}},
		{"value keeps later colons", "Name: Ann\nContact: tel: 555", []string{"Ann", "tel: 555"}},
		{"lines without colon ignored", "Here you go\nName: Ann\n\n", []string{"Ann"}},
		{"crlf", "Name: Ann\r\nEmail: a@b.co\r\n", []string{"Ann", "a@b.co"}},
		{"empty value kept", "Name:\nEmail: a@b.co", []string{"", "a@b.co"}},
		{"nothing", "I cannot help with that.", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RowFromReply(tt.reply))
		})
	}
}

func TestWriteCSV(t *testing.T) {
	results := []pipeline.Result{
		{SourcePath: "a.png", Reply: janeReply},
		{SourcePath: "b.png", Reply: "no fields here"},
		{SourcePath: "c.png", Reply: "Name: Short\nEmail: s@x.io"},
		{SourcePath: "d.png", Contact: &llm.Contact{Name: "Kim", Email: "k@y.io", Company: "Y", Contact: "nil"}, Reply: "ignored: yes"},
	}
	var buf bytes.Buffer
	n, err := WriteCSV(&buf, results, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	recs := readCSV(t, buf.String())
	require.Len(t, recs, 4)
	assert.Equal(t, []string{"Name", "Email", "Company", "Contact"}, recs[0])
	assert.Equal(t, []string{"Jane Doe", "jane@acme.com", "Acme", "+1 555 0100"}, recs[1])
	assert.Equal(t, []string{"Short", "s@x.io"}, recs[2], "short rows are not padded")
	assert.Equal(t, []string{"Kim", "k@y.io", "Y", "nil"}, recs[3])
}

func TestExport_EmptyWritesNothing(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "contacts.csv")

	require.NoError(t, NewExporter(&console, nil).Export(path, nil))
	assert.Equal(t, "No contacts to save.\n", console.String())
	assert.NoFileExists(t, path)
}

func TestExport_CSV(t *testing.T) {
	var console bytes.Buffer
	path := filepath.Join(t.TempDir(), "contacts.csv")

	err := NewExporter(&console, nil).Export(path, []pipeline.Result{{SourcePath: "a.png", Reply: janeReply}})
	require.NoError(t, err)
	assert.Equal(t, "Contacts saved to "+path+"\n", console.String())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Name,Email,Company,Contact\nJane Doe,jane@acme.com,Acme,+1 555 0100\n", string(data))
}

func TestExport_XLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "contacts.XLSX")
	results := []pipeline.Result{
		{SourcePath: "a.png", Reply: janeReply},
		{SourcePath: "b.png", Reply: "Name: Extra\nEmail: e@x.io\nCompany: X\nContact: nil\nTitle: CTO"},
	}
	require.NoError(t, NewExporter(nil, nil).Export(path, results))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetName}, f.GetSheetList())
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Name", "Email", "Company", "Contact"}, rows[0])
	assert.Equal(t, "Jane Doe", rows[1][0])
	assert.Equal(t, []string{"Extra", "e@x.io", "X", "nil", "CTO"}, rows[2], "long rows keep extra columns")
}

func TestExport_UnwritableDestination(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "contacts.csv")
	err := NewExporter(nil, nil).Export(path, []pipeline.Result{{Reply: janeReply}})
	assert.Error(t, err)
}
