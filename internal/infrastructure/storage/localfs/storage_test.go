package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestListForClaimReturnsSortedDocuments(t *testing.T) {
	base := t.TempDir()
	claimDir := filepath.Join(base, "CLM-1")
	if err := os.MkdirAll(claimDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"ledger.pdf", "addendum.pdf", ".DS_Store"} {
		if err := os.WriteFile(filepath.Join(claimDir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	store, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	docs, err := store.ListForClaim(context.Background(), "CLM-1")
	if err != nil {
		t.Fatalf("ListForClaim() error = %v", err)
	}
	if len(docs) != 2 {
		t.Fatalf("expected 2 documents, got %d", len(docs))
	}
	if docs[0].Name != "addendum.pdf" || docs[1].Name != "ledger.pdf" {
		t.Fatalf("unexpected order: %v", docs)
	}
	if docs[0].Path != filepath.Join("CLM-1", "addendum.pdf") {
		t.Fatalf("unexpected path: %s", docs[0].Path)
	}
}

func TestListForClaimMissingDirectoryMeansNoDocuments(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	docs, err := store.ListForClaim(context.Background(), "CLM-404")
	if err != nil {
		t.Fatalf("ListForClaim() error = %v", err)
	}
	if docs == nil || len(docs) != 0 {
		t.Fatalf("expected empty document list, got %v", docs)
	}
}

func TestOpenReadsDocumentContent(t *testing.T) {
	base := t.TempDir()
	claimDir := filepath.Join(base, "CLM-2")
	if err := os.MkdirAll(claimDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(claimDir, "lease.pdf"), []byte("lease body"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	store, err := New(base)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	rc, err := store.Open(context.Background(), filepath.Join("CLM-2", "lease.pdf"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer rc.Close()

	body, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(body) != "lease body" {
		t.Fatalf("unexpected content: %q", body)
	}
}
