package ocr

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct {
	name string
	args []string
}

// fakeRunner records calls; converters copy a PNG to their output argument
// and tesseract prints text.
type fakeRunner struct {
	calls      []call
	ocrText    string
	ocrErr     error
	convertErr error
	png        []byte
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.calls = append(f.calls, call{name: name, args: args})
	switch name {
	case "tesseract":
		if f.ocrErr != nil {
			return nil, []byte("tesseract blew up"), f.ocrErr
		}
		return []byte(f.ocrText), nil, nil
	case "magick", "heif-convert", "sips":
		if f.convertErr != nil {
			return nil, []byte("bad heic"), f.convertErr
		}
		out := args[len(args)-1]
		return nil, nil, os.WriteFile(out, f.png, 0644)
	}
	return nil, nil, errors.New("unexpected command " + name)
}

func pngBytes(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	img.Set(1, 1, color.Black)
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, img))
	return b.Bytes()
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, data, 0644))
	return p
}

func newTestExtractor(t *testing.T, r *fakeRunner, cfg Config) *Extractor {
	t.Helper()
	e, err := NewExtractor(cfg, nil, WithRunner(r))
	require.NoError(t, err)
	return e
}

func TestExtract_PNG(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{ocrText: "Jane Doe\njane@acme.com\n+1 555 123 4567\n"}
	e := newTestExtractor(t, r, Config{TessdataDir: "/td", PSM: 6})
	path := writeFile(t, dir, "card.png", pngBytes(t))

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, r.ocrText, res.Text)
	assert.Equal(t, path, res.RasterPath)
	assert.False(t, res.Converted)
	assert.Equal(t, "tesseract", res.Method)
	assert.Greater(t, res.Confidence, float32(0.5))

	require.Len(t, r.calls, 1)
	assert.Equal(t, []string{path, "stdout", "-l", "eng", "--tessdata-dir", "/td", "--psm", "6"}, r.calls[0].args)
}

func TestExtract_EmptyTextIsNotAnError(t *testing.T) {
	dir := t.TempDir()
	e := newTestExtractor(t, &fakeRunner{ocrText: ""}, Config{})
	res, err := e.Extract(context.Background(), writeFile(t, dir, "blank.jpg", pngBytes(t)))
	require.NoError(t, err)
	assert.Empty(t, res.Text)
	assert.Zero(t, res.Confidence)
}

func TestExtract_HEICConvertsBesideOriginal(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{ocrText: "ACME", png: pngBytes(t)}
	e := newTestExtractor(t, r, Config{HeicConverter: "sips"})
	path := writeFile(t, dir, "IMG_0001.HEIC", []byte("not really heic"))

	res, err := e.Extract(context.Background(), path)
	require.NoError(t, err)
	want := filepath.Join(dir, "IMG_0001.jpg")
	assert.True(t, res.Converted)
	assert.Equal(t, want, res.RasterPath)
	assert.FileExists(t, want)

	require.Len(t, r.calls, 2)
	assert.Equal(t, "sips", r.calls[0].name)
	assert.Equal(t, []string{"-s", "format", "jpeg", path, "--out", want}, r.calls[0].args)
	assert.Equal(t, want, r.calls[1].args[0])
}

func TestExtract_ConvertFailure(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{convertErr: errors.New("exit status 1")}
	e := newTestExtractor(t, r, Config{})

	_, err := e.Extract(context.Background(), writeFile(t, dir, "card.heic", []byte("x")))
	assert.ErrorIs(t, err, ErrConvert)
	require.Len(t, r.calls, 1, "OCR must not run after a failed conversion")
}

func TestExtract_CorruptImage(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRunner{ocrText: "never"}
	e := newTestExtractor(t, r, Config{})

	_, err := e.Extract(context.Background(), writeFile(t, dir, "broken.jpg", []byte("garbage bytes")))
	assert.ErrorIs(t, err, ErrDecode)
	assert.Empty(t, r.calls)
}

func TestExtract_MissingFile(t *testing.T) {
	e := newTestExtractor(t, &fakeRunner{}, Config{})
	_, err := e.Extract(context.Background(), filepath.Join(t.TempDir(), "gone.png"))
	assert.ErrorIs(t, err, ErrNotExist)
}

func TestExtract_OCRFailure(t *testing.T) {
	dir := t.TempDir()
	e := newTestExtractor(t, &fakeRunner{ocrErr: errors.New("exit status 1")}, Config{})
	_, err := e.Extract(context.Background(), writeFile(t, dir, "card.png", pngBytes(t)))
	assert.ErrorIs(t, err, ErrOCR)
	assert.NotErrorIs(t, err, ErrDecode)
}

func TestExtract_Unsupported(t *testing.T) {
	dir := t.TempDir()
	e := newTestExtractor(t, &fakeRunner{}, Config{})
	_, err := e.Extract(context.Background(), writeFile(t, dir, "notes.txt", []byte("hi")))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNormalize_RasterIsIdentity(t *testing.T) {
	r := &fakeRunner{}
	e := newTestExtractor(t, r, Config{})
	for _, p := range []string{"/cards/a.png", "/cards/b.JPG", "c.jpeg"} {
		got, err := e.Normalize(context.Background(), p)
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	assert.Empty(t, r.calls)
}

func TestNormalizeHEIC_Converters(t *testing.T) {
	tests := []struct {
		converter string
		wantName  string
	}{
		{"magick", "magick"},
		{"heif-convert", "heif-convert"},
	}
	for _, tt := range tests {
		t.Run(tt.converter, func(t *testing.T) {
			dir := t.TempDir()
			r := &fakeRunner{png: pngBytes(t)}
			e := newTestExtractor(t, r, Config{HeicConverter: tt.converter})
			in := writeFile(t, dir, "x.Heic", []byte("x"))

			out, err := e.NormalizeHEIC(context.Background(), in)
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(dir, "x.jpg"), out)
			assert.Equal(t, tt.wantName, r.calls[0].name)
			assert.Equal(t, []string{in, out}, r.calls[0].args)
		})
	}
}

func TestNormalizeHEIC_UnknownConverter(t *testing.T) {
	e := newTestExtractor(t, &fakeRunner{}, Config{HeicConverter: "gimp"})
	_, err := e.NormalizeHEIC(context.Background(), "x.heic")
	assert.ErrorIs(t, err, ErrConvert)
}

func TestHeuristicConfidence(t *testing.T) {
	assert.Zero(t, heuristicConfidence("   "))
	low := heuristicConfidence("hello")
	high := heuristicConfidence("Jane Doe CEO jane@acme.com +1 (555) 123-4567 www.acme.com")
	assert.Less(t, low, high)
	assert.LessOrEqual(t, high, float32(1.0))
}

func TestCleanText(t *testing.T) {
	in := "  JANE DOE\r\n\tCEO\r\n\r\n\r\n\r\n------\njane@acme.com   \n+1 (555) 010-0101\f"
	assert.Equal(t, "JANE DOE\nCEO\n\njane@acme.com\n+1 (555) 010-0101", CleanText(in))
	assert.Equal(t, "", CleanText(" \f\n"))
}
