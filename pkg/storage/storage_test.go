package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/avidor/statex/pkg/lifecycle"
)

func testSystem(t *testing.T) System {
	t.Helper()

	sys, err := New(&Config{Root: t.TempDir()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	lc := lifecycle.New()
	if err := sys.Start(lc); err != nil {
		t.Fatalf("Start() error: %v", err)
	}
	lc.WaitForStartup()
	t.Cleanup(func() { lc.Shutdown(time.Second) })

	return sys
}

func TestUploadDownloadRoundTrip(t *testing.T) {
	sys := testSystem(t)
	ctx := context.Background()

	data := []byte("%PDF-1.4 test")
	if err := sys.Upload(ctx, "documents/abc/report.pdf", bytes.NewReader(data)); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	rc, err := sys.Download(ctx, "documents/abc/report.pdf")
	if err != nil {
		t.Fatalf("Download() error: %v", err)
	}
	defer rc.Close()

	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("downloaded %q, want %q", got, data)
	}
}

func TestDownloadMissing(t *testing.T) {
	sys := testSystem(t)

	if _, err := sys.Download(context.Background(), "documents/missing.pdf"); err != ErrNotFound {
		t.Errorf("Download() error = %v, want ErrNotFound", err)
	}
}

func TestDeleteAndExists(t *testing.T) {
	sys := testSystem(t)
	ctx := context.Background()

	if err := sys.Upload(ctx, "k/blob", bytes.NewReader([]byte("x"))); err != nil {
		t.Fatalf("Upload() error: %v", err)
	}

	exists, err := sys.Exists(ctx, "k/blob")
	if err != nil || !exists {
		t.Fatalf("Exists() = %v, %v; want true, nil", exists, err)
	}

	if err := sys.Delete(ctx, "k/blob"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	exists, err = sys.Exists(ctx, "k/blob")
	if err != nil || exists {
		t.Errorf("Exists() after delete = %v, %v; want false, nil", exists, err)
	}

	if err := sys.Delete(ctx, "k/blob"); err != ErrNotFound {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func TestKeyValidation(t *testing.T) {
	sys := testSystem(t)
	ctx := context.Background()

	tests := []struct {
		name string
		key  string
		want error
	}{
		{"empty", "", ErrEmptyKey},
		{"traversal", "../etc/passwd", ErrInvalidKey},
		{"absolute", "/etc/passwd", ErrInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := sys.Upload(ctx, tt.key, bytes.NewReader(nil))
			if err != tt.want {
				t.Errorf("Upload(%q) error = %v, want %v", tt.key, err, tt.want)
			}
		})
	}
}

func TestNewRequiresRoot(t *testing.T) {
	_, err := New(&Config{}, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	if err != ErrNoRoot {
		t.Errorf("New() error = %v, want ErrNoRoot", err)
	}
}
