package ocr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/cardscan/constants"
)

// Normalize returns path unchanged for raster images and converts HEIC
// containers to a JPEG beside the original.
func (e *Extractor) Normalize(ctx context.Context, path string) (string, error) {
	if !constants.IsHEICExt(filepath.Ext(path)) {
		return path, nil
	}
	return e.NormalizeHEIC(ctx, path)
}

// NormalizeHEIC converts a HEIC file to <name>.jpg in the same directory using
// the configured converter: "heif-convert" | "magick" | "sips".
func (e *Extractor) NormalizeHEIC(ctx context.Context, in string) (string, error) {
	out := jpegSibling(in)

	var (
		errb []byte
		err  error
	)
	switch e.cfg.HeicConverter {
	case "heif-convert":
		_, errb, err = e.runner.Run(ctx, "heif-convert", in, out)
	case "magick":
		_, errb, err = e.runner.Run(ctx, "magick", in, out)
	case "sips":
		_, errb, err = e.runner.Run(ctx, "sips", "-s", "format", "jpeg", in, "--out", out)
	default:
		return "", fmt.Errorf("%w: set ocr.heic_converter to one of: heif-convert | magick | sips", ErrConvert)
	}
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v: %s", ErrConvert, e.cfg.HeicConverter, err, strings.TrimSpace(string(errb)))
	}

	if _, statErr := os.Stat(out); statErr != nil {
		return "", fmt.Errorf("%w: conversion produced no output: %v", ErrConvert, statErr)
	}
	return out, nil
}

func jpegSibling(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".jpg"
}
