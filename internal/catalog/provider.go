// internal/catalog/provider.go
package catalog

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider supplies the current catalog contents. Implementations are
// read-only; the catalog service builds its Index from whatever they return.
type Provider interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// StaticProvider serves a fixed snapshot.
type StaticProvider Snapshot

func (p StaticProvider) Snapshot(context.Context) (Snapshot, error) {
	return Snapshot(p), nil
}

// FileProvider reads a YAML catalog from disk on every call.
type FileProvider struct {
	Path string
}

func NewFileProvider(path string) *FileProvider {
	return &FileProvider{Path: path}
}

func (p *FileProvider) Snapshot(context.Context) (Snapshot, error) {
	b, err := os.ReadFile(p.Path)
	if err != nil {
		return Snapshot{}, fmt.Errorf("read catalog file: %w", err)
	}
	return DecodeYAML(b)
}

// DecodeYAML parses a catalog document.
func DecodeYAML(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decode catalog yaml: %w", err)
	}
	return s, nil
}
