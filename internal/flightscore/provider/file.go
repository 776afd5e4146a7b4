package provider

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FileProvider serves a previously saved search payload from disk. The
// request is ignored, which makes it handy for local development against a
// captured response.
type FileProvider struct {
	path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

func (f *FileProvider) Name() string {
	return "File"
}

func (f *FileProvider) Search(ctx context.Context, _ SearchRequest) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Clean(f.path))
	if err != nil {
		return nil, fmt.Errorf("file provider read %s: %w", f.path, err)
	}
	return data, nil
}
