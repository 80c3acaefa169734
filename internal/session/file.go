package session

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"marquee/internal/apperr"
)

// Verifier validates a stored session token.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

// FileProvider keeps the signed-in user's token in a file so the CLI stays
// signed in between invocations.
type FileProvider struct {
	fs       afero.Fs
	path     string
	verifier Verifier
}

// NewFileProvider creates a provider storing its token at path on fs.
func NewFileProvider(fs afero.Fs, path string, verifier Verifier) *FileProvider {
	return &FileProvider{fs: fs, path: path, verifier: verifier}
}

// Current verifies the stored token and returns its identity.
func (p *FileProvider) Current(ctx context.Context) (*Identity, error) {
	tok, err := p.load()
	if err != nil {
		return nil, err
	}
	if tok == nil {
		return nil, apperr.ErrNotAuthenticated
	}
	return p.verifier.Verify(ctx, tok.AccessToken)
}

// Save persists tok. Uses atomic write (temp file, then rename).
func (p *FileProvider) Save(tok *Token) error {
	dir := filepath.Dir(p.path)
	if err := p.fs.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating session dir: %w", err)
	}

	data, err := json.MarshalIndent(tok, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}

	tmp, err := afero.TempFile(p.fs, dir, "session-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		p.fs.Remove(tmpPath)
		return fmt.Errorf("writing session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		p.fs.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := p.fs.Chmod(tmpPath, 0600); err != nil {
		p.fs.Remove(tmpPath)
		return fmt.Errorf("securing session file: %w", err)
	}
	if err := p.fs.Rename(tmpPath, p.path); err != nil {
		p.fs.Remove(tmpPath)
		return fmt.Errorf("renaming session file: %w", err)
	}
	return nil
}

// SignOut forgets the stored token. Signing out twice is not an error.
func (p *FileProvider) SignOut() error {
	if err := p.fs.Remove(p.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing session: %w", err)
	}
	return nil
}

func (p *FileProvider) load() (*Token, error) {
	data, err := afero.ReadFile(p.fs, p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading session: %w", err)
	}

	var tok Token
	if err := json.Unmarshal(data, &tok); err != nil || tok.AccessToken == "" {
		// A corrupt file is treated as signed out.
		return nil, nil
	}
	return &tok, nil
}

// LoadOrCreateSecret returns the signing secret stored at path, generating
// and persisting a random one on first use.
func LoadOrCreateSecret(fs afero.Fs, path string) ([]byte, error) {
	data, err := afero.ReadFile(fs, path)
	if err == nil {
		secret := strings.TrimSpace(string(data))
		if len(secret) >= 32 {
			return []byte(secret), nil
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading secret: %w", err)
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generating secret: %w", err)
	}
	secret := hex.EncodeToString(buf)

	if err := fs.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("creating secret dir: %w", err)
	}
	if err := afero.WriteFile(fs, path, []byte(secret+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("writing secret: %w", err)
	}
	return []byte(secret), nil
}
