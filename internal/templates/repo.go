// Package templates stores uploaded petition templates on disk with
// version history. Each template id maps to a directory of numbered
// .docx versions plus a JSON metadata sidecar per version.
package templates

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// ErrNotFound is returned when a template id or version does not exist.
var ErrNotFound = errors.New("template not found")

var idRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

// Meta describes one stored template version.
type Meta struct {
	ID         string    `json:"id"`
	Version    int       `json:"version"`
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// Repo is a filesystem-backed versioned template store.
type Repo struct {
	mu   sync.Mutex
	root string
	log  *slog.Logger
}

func NewRepo(root string, log *slog.Logger) (*Repo, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create template dir: %w", err)
	}
	return &Repo{root: root, log: log}, nil
}

func validateID(id string) error {
	if !idRe.MatchString(id) {
		return fmt.Errorf("invalid template id %q", id)
	}
	return nil
}

// Save stores r as the next version of the template and returns its
// metadata.
func (rp *Repo) Save(id, filename string, r io.Reader) (Meta, error) {
	if err := validateID(id); err != nil {
		return Meta{}, err
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	dir := filepath.Join(rp.root, id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Meta{}, fmt.Errorf("create template dir: %w", err)
	}

	version, err := latestVersion(dir)
	if err != nil {
		return Meta{}, err
	}
	version++

	docPath := filepath.Join(dir, fmt.Sprintf("v%d.docx", version))
	f, err := os.Create(docPath)
	if err != nil {
		return Meta{}, fmt.Errorf("create template file: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(docPath)
		return Meta{}, fmt.Errorf("write template file: %w", err)
	}

	meta := Meta{
		ID:         id,
		Version:    version,
		Filename:   filepath.Base(filename),
		SizeBytes:  size,
		UploadedAt: time.Now().UTC(),
	}
	if err := writeMeta(dir, meta); err != nil {
		os.Remove(docPath)
		return Meta{}, err
	}

	rp.log.Info("template stored", "template", id, "version", version, "size_bytes", size)
	return meta, nil
}

// Resolve returns the path and metadata for a template version. Version 0
// means the latest.
func (rp *Repo) Resolve(id string, version int) (string, Meta, error) {
	if err := validateID(id); err != nil {
		return "", Meta{}, err
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	dir := filepath.Join(rp.root, id)
	if version == 0 {
		latest, err := latestVersion(dir)
		if err != nil {
			return "", Meta{}, err
		}
		if latest == 0 {
			return "", Meta{}, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		version = latest
	}

	meta, err := readMeta(dir, version)
	if err != nil {
		if os.IsNotExist(err) {
			return "", Meta{}, fmt.Errorf("%w: %s v%d", ErrNotFound, id, version)
		}
		return "", Meta{}, err
	}
	return filepath.Join(dir, fmt.Sprintf("v%d.docx", version)), meta, nil
}

// List returns the latest metadata of every stored template, sorted by id.
func (rp *Repo) List() ([]Meta, error) {
	rp.mu.Lock()
	defer rp.mu.Unlock()

	entries, err := os.ReadDir(rp.root)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}

	var out []Meta
	for _, e := range entries {
		if !e.IsDir() || !idRe.MatchString(e.Name()) {
			continue
		}
		dir := filepath.Join(rp.root, e.Name())
		latest, err := latestVersion(dir)
		if err != nil || latest == 0 {
			continue
		}
		meta, err := readMeta(dir, latest)
		if err != nil {
			rp.log.Warn("unreadable template metadata", "template", e.Name(), "error", err)
			continue
		}
		out = append(out, meta)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Versions returns every stored version of one template, oldest first.
func (rp *Repo) Versions(id string) ([]Meta, error) {
	if err := validateID(id); err != nil {
		return nil, err
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	dir := filepath.Join(rp.root, id)
	latest, err := latestVersion(dir)
	if err != nil {
		return nil, err
	}
	if latest == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	var out []Meta
	for v := 1; v <= latest; v++ {
		meta, err := readMeta(dir, v)
		if err != nil {
			continue
		}
		out = append(out, meta)
	}
	return out, nil
}

// Delete removes a template and all of its versions.
func (rp *Repo) Delete(id string) error {
	if err := validateID(id); err != nil {
		return err
	}

	rp.mu.Lock()
	defer rp.mu.Unlock()

	dir := filepath.Join(rp.root, id)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("delete template: %w", err)
	}
	rp.log.Info("template deleted", "template", id)
	return nil
}

func latestVersion(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("read template dir: %w", err)
	}
	latest := 0
	for _, e := range entries {
		name := e.Name()
		if !strings.HasPrefix(name, "v") || !strings.HasSuffix(name, ".docx") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(name, "v"), ".docx"))
		if err != nil {
			continue
		}
		if n > latest {
			latest = n
		}
	}
	return latest, nil
}

func metaPath(dir string, version int) string {
	return filepath.Join(dir, fmt.Sprintf("v%d.json", version))
}

func writeMeta(dir string, meta Meta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaPath(dir, meta.Version), data, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func readMeta(dir string, version int) (Meta, error) {
	data, err := os.ReadFile(metaPath(dir, version))
	if err != nil {
		return Meta{}, err
	}
	var meta Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		return Meta{}, fmt.Errorf("decode metadata: %w", err)
	}
	return meta, nil
}
