package main

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/cardscan/internal/common"
	"github.com/joseph-ayodele/cardscan/internal/pipeline"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"usage", &usageError{err: errors.New("unknown flag: --nope")}, 2},
		{"config", common.NewAppError(common.CodeConfig, "llm.model is required", common.ErrInvalidInput), 2},
		{"wrapped config", fmt.Errorf("load: %w", common.NewAppError(common.CodeConfig, "x", nil)), 2},
		{"credential", common.NewAppError(common.CodeCredential, "resolve api key", errors.New("malformed")), 1},
		{"model", fmt.Errorf("%w: a.png: boom", pipeline.ErrModel), 1},
		{"interrupted", common.ErrInterrupted, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, exitCode(tt.err))
		})
	}
}

func TestSetupLogger(t *testing.T) {
	var buf bytes.Buffer
	setupLogger(&buf, false, true).Info("pipeline.file.ok", "path", "a.png")
	assert.Contains(t, buf.String(), `"msg":"pipeline.file.ok"`)

	buf.Reset()
	l := setupLogger(&buf, false, false)
	l.Debug("hidden")
	l.Info("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "k=v")

	buf.Reset()
	setupLogger(&buf, true, false).Debug("visible")
	assert.Contains(t, buf.String(), "visible")
}

func TestApplyBatchFlags(t *testing.T) {
	defer func() { batch = batchFlags{} }()
	cmd := &cobra.Command{Use: "test"}
	addBatchFlags(cmd)
	require.NoError(t, cmd.ParseFlags([]string{"--out", "cards.xlsx", "--strict", "--journal", "j.db"}))

	cfg := common.DefaultConfig()
	applyBatchFlags(cmd, cfg)
	assert.Equal(t, "cards.xlsx", cfg.Input.Output)
	assert.True(t, cfg.LLM.Strict)
	assert.Equal(t, "j.db", cfg.Journal.DSN)
}

func TestApplyBatchFlags_KeepsConfigWhenUnset(t *testing.T) {
	defer func() { batch = batchFlags{} }()
	cmd := &cobra.Command{Use: "test"}
	addBatchFlags(cmd)
	require.NoError(t, cmd.ParseFlags(nil))

	cfg := common.DefaultConfig()
	cfg.LLM.Strict = true
	applyBatchFlags(cmd, cfg)
	assert.True(t, cfg.LLM.Strict)
	assert.Equal(t, "contacts.csv", cfg.Input.Output)
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	versionCmd.SetOut(&out)
	defer versionCmd.SetOut(nil)
	versionCmd.Run(versionCmd, nil)
	assert.True(t, strings.HasPrefix(out.String(), "cardscan "))
}
