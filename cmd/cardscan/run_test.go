package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/constants"
	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/export"
	"github.com/joseph-ayodele/cardscan/internal/ocr"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

type fixedBatch struct {
	results []pipeline.Result
	err     error
}

func (f fixedBatch) Run(context.Context, string) ([]pipeline.Result, pipeline.Stats, error) {
	return f.results, pipeline.Stats{Succeeded: len(f.results)}, f.err
}

func okResult(reply string) pipeline.Result {
	return pipeline.Result{Status: constants.StatusOK, Reply: reply}
}

func TestRunAndExport(t *testing.T) {
	tests := []struct {
		name       string
		batch      fixedBatch
		wantErr    error
		wantFile   bool
		wantOutput string
	}{
		{
			name:       "success",
			batch:      fixedBatch{results: []pipeline.Result{okResult("Name: Jane\nEmail: j@x.io")}},
			wantFile:   true,
			wantOutput: "Contacts saved to ",
		},
		{
			name:       "empty batch",
			batch:      fixedBatch{},
			wantOutput: "No contacts to save.\n",
		},
		{
			name: "model failure with fail-fast",
			batch: fixedBatch{
				results: []pipeline.Result{okResult("Name: Jane")},
				err:     fmt.Errorf("%w: b.png: boom", pipeline.ErrModel),
			},
			wantErr: pipeline.ErrModel,
		},
		{
			name: "interrupted",
			batch: fixedBatch{
				results: []pipeline.Result{okResult("Name: Jane\nEmail: j@x.io")},
				err:     fmt.Errorf("%w: %w", common.ErrInterrupted, context.Canceled),
			},
			wantErr:    common.ErrInterrupted,
			wantFile:   true,
			wantOutput: "Contacts saved to ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var console bytes.Buffer
			out := filepath.Join(t.TempDir(), "contacts.csv")

			_, err := runAndExport(context.Background(), tt.batch, "cards", out, export.NewExporter(&console, nil), nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			if tt.wantFile {
				data, rerr := os.ReadFile(out)
				require.NoError(t, rerr)
				assert.Equal(t, "Name,Email,Company,Contact\nJane,j@x.io\n", string(data))
			} else {
				assert.NoFileExists(t, out)
			}
			if tt.wantOutput != "" {
				assert.Contains(t, console.String(), tt.wantOutput)
			} else {
				assert.Empty(t, console.String())
			}
		})
	}
}

type textByName map[string]string

func (m textByName) Extract(_ context.Context, path string) (ocr.ExtractionResult, error) {
	return ocr.ExtractionResult{SourcePath: path, Text: m[filepath.Base(path)]}, nil
}

type parserFunc func(text string) (string, error)

func (f parserFunc) ParseDetails(_ context.Context, text string) (string, error) { return f(text) }

func TestRunAndExport_FailFastWritesNothing(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.png", "b.png"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, n), []byte(n), 0644))
	}
	parser := parserFunc(func(text string) (string, error) {
		if text == "B" {
			return "", errors.New("quota exceeded")
		}
		return "Name: " + text, nil
	})
	var console bytes.Buffer
	proc := pipeline.NewProcessor(nil, &console,
		pipeline.NewOCRStage(textByName{"a.png": "A", "b.png": "B"}, &console, nil),
		pipeline.NewParseStage(parser, nil, nil), nil)
	runner := pipeline.NewRunner(proc, pipeline.Options{FailFast: true}, &console, nil)

	out := filepath.Join(t.TempDir(), "contacts.csv")
	_, err := runAndExport(context.Background(), runner, dir, out, export.NewExporter(&console, nil), nil)
	assert.ErrorIs(t, err, pipeline.ErrModel)
	assert.NoFileExists(t, out)
	assert.NotContains(t, console.String(), "Contacts saved")
	assert.Equal(t, 1, exitCode(err))
}
