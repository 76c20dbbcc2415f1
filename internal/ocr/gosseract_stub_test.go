//go:build !gosseract

package ocr

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewExtractor_GosseractWithoutTag(t *testing.T) {
	_, err := NewExtractor(Config{Engine: "gosseract"}, nil)
	require.Error(t, err)
}
