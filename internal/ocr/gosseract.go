//go:build gosseract

package ocr

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// tessClient is the part of *gosseract.Client the engine configures.
type tessClient interface {
	SetLanguage(langs ...string) error
	SetTessdataPrefix(prefix string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
}

type gosseractEngine struct {
	cfg Config
}

func newGosseractEngine(cfg Config) (Engine, error) {
	return &gosseractEngine{cfg: cfg}, nil
}

func (g *gosseractEngine) Name() string { return "gosseract" }

// Recognize runs libtesseract in-process. A fresh client per image keeps
// the engine free of shared state.
func (g *gosseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()

	if err := configureClient(client, g.cfg); err != nil {
		return "", err
	}
	if err := client.SetImage(path); err != nil {
		return "", err
	}
	return client.Text()
}

// configureClient applies the same options the tesseract CLI engine passes
// as flags. Zero values keep libtesseract's defaults.
func configureClient(c tessClient, cfg Config) error {
	if cfg.TessdataDir != "" {
		if err := c.SetTessdataPrefix(cfg.TessdataDir); err != nil {
			return fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if err := c.SetLanguage(cfg.Lang); err != nil {
		return fmt.Errorf("set language: %w", err)
	}
	if cfg.PSM > 0 {
		if err := c.SetPageSegMode(gosseract.PageSegMode(cfg.PSM)); err != nil {
			return fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	return nil
}
