package localdisk

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/upliftbridge/upliftbridge-backend/pkg/config"
	"github.com/upliftbridge/upliftbridge-backend/pkg/logger"
)

// ErrTooLarge is returned when an upload exceeds the configured size cap.
var ErrTooLarge = errors.New("upload exceeds size limit")

// Client stores uploaded files on the local filesystem and serves them
// through a static public prefix.
type Client struct {
	root         string
	publicPrefix string
	maxBytes     int64
}

// Pinger exposes the health-check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewClient prepares the uploads directory and returns a storage client.
func NewClient(ctx context.Context, cfg config.UploadsConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Dir == "" {
		return nil, errors.New("uploads directory is required")
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating uploads directory: %w", err)
	}

	prefix := cfg.PublicPrefix
	if prefix == "" {
		prefix = "/uploads"
	}

	client := &Client{
		root:         cfg.Dir,
		publicPrefix: strings.TrimSuffix(prefix, "/"),
		maxBytes:     int64(cfg.MaxUploadMB) * 1024 * 1024,
	}

	if logg != nil {
		logg.Info(ctx, "local upload storage initialized")
	}

	return client, nil
}

// Root returns the filesystem directory backing the store.
func (c *Client) Root() string {
	if c == nil {
		return ""
	}
	return c.root
}

// Save writes the reader to disk under scope and returns the public URL and
// stored size. The stored name is randomized; only the extension survives.
func (c *Client) Save(ctx context.Context, scope, originalName string, r io.Reader) (string, int64, error) {
	if c == nil {
		return "", 0, errors.New("storage client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	dir := filepath.Join(c.root, sanitizeScope(scope))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", 0, fmt.Errorf("creating scope directory: %w", err)
	}

	name := uuid.NewString() + strings.ToLower(filepath.Ext(originalName))
	dest := filepath.Join(dir, name)

	f, err := os.Create(dest)
	if err != nil {
		return "", 0, fmt.Errorf("creating upload file: %w", err)
	}

	var src io.Reader = r
	if c.maxBytes > 0 {
		src = io.LimitReader(r, c.maxBytes+1)
	}

	written, err := io.Copy(f, src)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(dest)
		return "", 0, fmt.Errorf("writing upload: %w", err)
	}
	if c.maxBytes > 0 && written > c.maxBytes {
		_ = os.Remove(dest)
		return "", 0, ErrTooLarge
	}

	publicURL := path.Join(c.publicPrefix, sanitizeScope(scope), name)
	return publicURL, written, nil
}

// Delete removes a previously stored object by its public URL. Unknown URLs
// are ignored so deletes stay idempotent.
func (c *Client) Delete(ctx context.Context, publicURL string) error {
	if c == nil {
		return errors.New("storage client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	rel := strings.TrimPrefix(publicURL, c.publicPrefix)
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return nil
	}

	err := os.Remove(filepath.Join(c.root, filepath.FromSlash(rel)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing upload: %w", err)
	}
	return nil
}

// Ping verifies the uploads directory is still writable.
func (c *Client) Ping(ctx context.Context) error {
	if c == nil {
		return errors.New("storage client not initialized")
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	probe, err := os.CreateTemp(c.root, ".probe-*")
	if err != nil {
		return fmt.Errorf("uploads directory not writable: %w", err)
	}
	name := probe.Name()
	_ = probe.Close()
	return os.Remove(name)
}

func sanitizeScope(scope string) string {
	scope = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return '-'
		}
	}, scope)
	if scope == "" {
		return "misc"
	}
	return scope
}
