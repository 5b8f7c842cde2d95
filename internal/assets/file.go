package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileProvider serves assets from a local directory.
type FileProvider struct {
	Dir string
}

// NewFileProvider returns a provider rooted at dir.
func NewFileProvider(dir string) *FileProvider {
	return &FileProvider{Dir: dir}
}

func (p *FileProvider) resolve(ref string) (string, error) {
	clean := filepath.Clean("/" + strings.TrimPrefix(ref, "/"))
	if clean == "/" {
		return "", fmt.Errorf("%w: empty reference", ErrNotFound)
	}
	return filepath.Join(p.Dir, clean), nil
}

// Open reads the file at Dir/ref. References cannot escape Dir.
func (p *FileProvider) Open(_ context.Context, ref string) (io.ReadCloser, error) {
	path, err := p.resolve(ref)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
		}
		return nil, fmt.Errorf("open asset %s: %w", ref, err)
	}
	return f, nil
}
