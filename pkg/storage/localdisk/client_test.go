package localdisk

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/upliftbridge/upliftbridge-backend/pkg/config"
)

func newTestClient(t *testing.T, maxMB int) *Client {
	t.Helper()
	client, err := NewClient(context.Background(), config.UploadsConfig{
		Dir:          t.TempDir(),
		PublicPrefix: "/uploads",
		MaxUploadMB:  maxMB,
	}, nil)
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestSaveAndDelete(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, 5)

	url, size, err := client.Save(ctx, "need-7", "photo.JPG", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if size != int64(len("fake image bytes")) {
		t.Fatalf("unexpected size %d", size)
	}
	if !strings.HasPrefix(url, "/uploads/need-7/") {
		t.Fatalf("unexpected public url %q", url)
	}
	if !strings.HasSuffix(url, ".jpg") {
		t.Fatalf("extension should be lowercased, got %q", url)
	}

	rel := strings.TrimPrefix(url, "/uploads/")
	if _, err := os.Stat(filepath.Join(client.Root(), filepath.FromSlash(rel))); err != nil {
		t.Fatalf("stored file missing: %v", err)
	}

	if err := client.Delete(ctx, url); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := client.Delete(ctx, url); err != nil {
		t.Fatalf("second delete should be idempotent: %v", err)
	}
}

func TestSaveRejectsOversizedUpload(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, 0)
	client.maxBytes = 8

	if _, _, err := client.Save(ctx, "need-7", "big.png", strings.NewReader("way more than eight bytes")); err != ErrTooLarge {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestDeleteIgnoresTraversal(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t, 5)
	if err := client.Delete(ctx, "/uploads/../etc/passwd"); err != nil {
		t.Fatalf("traversal delete should be a no-op, got %v", err)
	}
}

func TestPing(t *testing.T) {
	client := newTestClient(t, 5)
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping failed: %v", err)
	}
}
