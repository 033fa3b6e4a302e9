// Package storage is the blob store adapter for uploaded images. It writes
// files beneath a root directory and hands back the relative web path that
// gets persisted on the owning row and served statically under /uploads.
package storage

import (
	"fmt"
	"math/rand"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

const webPrefix = "/uploads"

// Categories group uploads into subdirectories of the root.
const (
	CategoryListings = "listings"
	CategoryProfiles = "profiles"
)

// Upload carries a file received from a multipart form into the store.
type Upload struct {
	Filename string
	Data     []byte
}

// Store persists uploaded images on a filesystem.
type Store struct {
	fs   afero.Fs
	root string
	log  zerolog.Logger
}

// New returns a Store writing to the OS filesystem under root.
func New(root string, log zerolog.Logger) *Store {
	return NewWithFs(afero.NewOsFs(), root, log)
}

// NewWithFs returns a Store over an arbitrary filesystem. Tests use an
// in-memory fs.
func NewWithFs(fs afero.Fs, root string, log zerolog.Logger) *Store {
	return &Store{fs: fs, root: root, log: log}
}

// Save writes data under <root>/<category> with a unique generated name and
// returns the web path (e.g. "/uploads/listings/listing-3-....jpg").
func (s *Store) Save(category string, ownerID uint, up Upload) (string, error) {
	name := fmt.Sprintf("%s-%d-%d-%d%s",
		strings.TrimSuffix(category, "s"),
		ownerID,
		time.Now().UnixMilli(),
		rand.Intn(1_000_000_000),
		strings.ToLower(filepath.Ext(up.Filename)),
	)

	dir := filepath.Join(s.root, category)
	if err := s.fs.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}
	if err := afero.WriteFile(s.fs, filepath.Join(dir, name), up.Data, 0o644); err != nil {
		return "", fmt.Errorf("write upload: %w", err)
	}

	return path.Join(webPrefix, category, name), nil
}

// Delete removes the file a web path points at. Paths outside the upload
// mount (external URLs, placeholders) are ignored.
func (s *Store) Delete(webPath string) error {
	rel, ok := strings.CutPrefix(webPath, webPrefix+"/")
	if !ok {
		return nil
	}
	return s.fs.Remove(filepath.Join(s.root, filepath.FromSlash(rel)))
}

// DeleteLogged is the fire-and-forget cleanup used after a transaction has
// committed: a failed delete is logged and swallowed, never surfaced.
func (s *Store) DeleteLogged(webPath string) {
	if webPath == "" {
		return
	}
	if err := s.Delete(webPath); err != nil {
		s.log.Warn().Err(err).Str("path", webPath).Msg("failed to delete stale upload")
	}
}

// Exists reports whether the file for a web path is present.
func (s *Store) Exists(webPath string) bool {
	rel, ok := strings.CutPrefix(webPath, webPrefix+"/")
	if !ok {
		return false
	}
	found, err := afero.Exists(s.fs, filepath.Join(s.root, filepath.FromSlash(rel)))
	return err == nil && found
}
