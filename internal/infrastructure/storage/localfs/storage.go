package localfs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sdiops/claims-pipeline/internal/core/domain"
)

// Storage serves claim documents from a local directory tree laid out as
// <basePath>/<trackingNumber>/<document>. It implements both the document
// locator and the document filesystem ports.
type Storage struct {
	basePath string
}

func New(basePath string) (*Storage, error) {
	if basePath == "" {
		basePath = "./data/documents"
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create documents dir: %w", err)
	}
	return &Storage{basePath: basePath}, nil
}

// ListForClaim returns the claim's documents in stable name order. A claim
// without a directory simply has no documents; that is not an error.
func (s *Storage) ListForClaim(_ context.Context, trackingNumber string) ([]domain.Document, error) {
	dir := filepath.Join(s.basePath, trackingNumber)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []domain.Document{}, nil
		}
		return nil, fmt.Errorf("read claim documents dir: %w", err)
	}

	docs := make([]domain.Document, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		docs = append(docs, domain.Document{
			Name: entry.Name(),
			Path: filepath.Join(trackingNumber, entry.Name()),
		})
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].Name < docs[j].Name })
	return docs, nil
}

// Open reads one document by its path relative to the base directory.
func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(filepath.Join(s.basePath, path))
	if err != nil {
		return nil, fmt.Errorf("open document: %w", err)
	}
	return f, nil
}
