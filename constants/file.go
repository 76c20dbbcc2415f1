package constants

import (
	"path/filepath"
	"strings"
)

// Image formats recognised by the extractor.
const (
	RASTER    = "RASTER"
	CONTAINER = "CONTAINER"
)

// AllowedExtensions holds the card image extensions picked up by a folder scan.
var AllowedExtensions = map[string]struct{}{
	"jpg":  {},
	"jpeg": {},
	"png":  {},
	"heic": {},
}

// NormalizeExt lowercases and trims the dot from a file extension.
func NormalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// IsAllowed reports whether path carries one of the AllowedExtensions.
func IsAllowed(path string) bool {
	_, ok := AllowedExtensions[NormalizeExt(filepath.Ext(path))]
	return ok
}

// IsHEICExt reports whether ext (with or without the dot) names a HEIC container.
func IsHEICExt(ext string) bool {
	return NormalizeExt(ext) == "heic"
}

// MapExtToFormat maps an extension to RASTER or CONTAINER, or "" when unsupported.
func MapExtToFormat(ext string) string {
	switch NormalizeExt(ext) {
	case "jpg", "jpeg", "png":
		return RASTER
	case "heic":
		return CONTAINER
	default:
		return ""
	}
}
