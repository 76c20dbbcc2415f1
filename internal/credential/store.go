package credential

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

var (
	// ErrNotFound means no key file exists yet.
	ErrNotFound = errors.New("credential: key file not found")
	// ErrCorrupted means the stored digest does not match the decoded key.
	ErrCorrupted = errors.New("credential: key digest mismatch")
	// ErrMalformed means the key file does not have the two-line layout.
	ErrMalformed = errors.New("credential: malformed key file")
	// ErrEmpty means the operator entered an empty key.
	ErrEmpty = errors.New("credential: empty key")
)

// PromptLabel is shown when asking for a new key.
const PromptLabel = "Enter your OpenAI API key (it will be stored securely): "

// Prompter collects a secret from the operator.
type Prompter interface {
	Secret(ctx context.Context, label string) (string, error)
}

// Store keeps a single API key on disk as two lines: the base64 encoded key
// and the hex sha256 digest of the plaintext.
type Store struct {
	path    string
	logger  *slog.Logger
	console io.Writer
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithConsole sets where operator-facing notices are printed.
func WithConsole(w io.Writer) StoreOption {
	return func(s *Store) { s.console = w }
}

func NewStore(path string, logger *slog.Logger, opts ...StoreOption) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger, console: io.Discard}
	for _, opt := range opts {
		opt(s)
	}
	if s.console == nil {
		s.console = io.Discard
	}
	return s
}

// Path returns the key file location.
func (s *Store) Path() string { return s.path }

// Save encodes secret and writes it with its digest, replacing any prior file.
func (s *Store) Save(secret string) error {
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return fmt.Errorf("create key dir: %w", err)
		}
	}
	content := encode(secret) + "\n" + digest(secret)
	if err := os.WriteFile(s.path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("write key file: %w", err)
	}
	s.logger.Info("credential.stored", "path", s.path)
	return nil
}

// Load reads the key file and verifies its digest.
func (s *Store) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read key file: %w", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		return "", fmt.Errorf("%w: %s has %d lines, want 2", ErrMalformed, s.path, len(lines))
	}

	secret, err := decode(strings.TrimSpace(lines[0]))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if digest(secret) != strings.TrimSpace(lines[1]) {
		return "", ErrCorrupted
	}
	s.logger.Debug("credential.loaded", "path", s.path)
	return secret, nil
}

// Clear removes the key file. A missing file is not an error.
func (s *Store) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove key file: %w", err)
	}
	return nil
}

// GetOrPrompt returns the stored key, or asks for a new one and stores it
// when the file is missing or its digest does not match. A malformed file
// is returned as an error.
func (s *Store) GetOrPrompt(ctx context.Context, p Prompter) (string, error) {
	secret, err := s.Load()
	switch {
	case err == nil:
		return secret, nil
	case errors.Is(err, ErrCorrupted):
		s.logger.Warn("credential.digest_mismatch", "path", s.path)
		fmt.Fprintln(s.console, "API key hash mismatch. Re-entering and storing new key.")
		if cerr := s.Clear(); cerr != nil {
			return "", cerr
		}
	case errors.Is(err, ErrNotFound):
		s.logger.Debug("credential.not_found", "path", s.path)
	default:
		return "", err
	}

	secret, err = p.Secret(ctx, PromptLabel)
	if err != nil {
		return "", fmt.Errorf("prompt for key: %w", err)
	}
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", ErrEmpty
	}
	if err := s.Save(secret); err != nil {
		return "", err
	}
	return secret, nil
}

// Mask hides all but the last four characters of secret.
func Mask(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", len(secret)-4) + secret[len(secret)-4:]
}

func encode(secret string) string {
	return base64.StdEncoding.EncodeToString([]byte(secret))
}

func decode(encoded string) (string, error) {
	b, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode key: %w", err)
	}
	return string(b), nil
}

func digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}
