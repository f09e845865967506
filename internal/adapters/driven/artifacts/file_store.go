// Package artifacts provides ArtifactStore implementations backed by the
// local filesystem and by memory.
package artifacts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/shelfwise/shelfwise-core/internal/core/domain"
	"github.com/shelfwise/shelfwise-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ArtifactStore = (*FileStore)(nil)

const (
	currentFile     = "CURRENT"
	manifestFile    = "manifest.json"
	generationsDir  = "generations"
	blobExt         = ".bin"
	keepGenerations = 2
)

// FileStore keeps each artifact generation in its own directory and points
// at the live one through a CURRENT file that is replaced by rename.
//
//	<dir>/CURRENT
//	<dir>/generations/<generation>/{manifest.json,tfidf_vectorizer.bin,...}
//
// A generation directory is complete before CURRENT names it, so readers
// never observe a partially written set. The previous generation is kept
// for readers that resolved CURRENT just before a swap.
type FileStore struct {
	dir string
	mu  sync.Mutex // serializes writers within the process
}

// NewFileStore creates a FileStore rooted at dir. The directory is created
// on first Save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Dir returns the root directory
func (s *FileStore) Dir() string {
	return s.dir
}

// Save writes set as a new generation and makes it current
func (s *FileStore) Save(ctx context.Context, set *domain.ArtifactSet) error {
	if !set.Complete() {
		return fmt.Errorf("save artifacts: incomplete set")
	}
	gen := set.Manifest.Generation
	if strings.ContainsAny(gen, `/\`) || gen == "." || gen == ".." {
		return fmt.Errorf("save artifacts: invalid generation %q", gen)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	root := filepath.Join(s.dir, generationsDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("create artifact directory: %w", err)
	}

	staging, err := os.MkdirTemp(root, "."+gen+"-")
	if err != nil {
		return fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(staging)

	manifest, err := json.Marshal(set.Manifest)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFile(filepath.Join(staging, manifestFile), manifest); err != nil {
		return err
	}
	for _, name := range domain.ArtifactNames {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeFile(filepath.Join(staging, name+blobExt), set.Blobs[name]); err != nil {
			return err
		}
	}

	final := filepath.Join(root, gen)
	if err := os.RemoveAll(final); err != nil {
		return fmt.Errorf("remove stale generation: %w", err)
	}
	if err := os.Rename(staging, final); err != nil {
		return fmt.Errorf("publish generation: %w", err)
	}

	pointer := filepath.Join(s.dir, currentFile)
	if err := writeFile(pointer+".tmp", []byte(gen)); err != nil {
		return err
	}
	if err := os.Rename(pointer+".tmp", pointer); err != nil {
		return fmt.Errorf("swap current generation: %w", err)
	}

	s.prune(root, gen)
	return nil
}

// Load reads the current generation
func (s *FileStore) Load(ctx context.Context) (*domain.ArtifactSet, error) {
	gen, err := s.current()
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.dir, generationsDir, gen)

	manifest, err := readManifest(dir)
	if err != nil {
		return nil, err
	}

	set := &domain.ArtifactSet{Manifest: *manifest, Blobs: make(map[string][]byte, len(domain.ArtifactNames))}
	for _, name := range domain.ArtifactNames {
		data, err := os.ReadFile(filepath.Join(dir, name+blobExt))
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s missing: %w", name, domain.ErrArtifactNotFound)
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		set.Blobs[name] = data
	}
	return set, nil
}

// Manifest reads the manifest of the current generation
func (s *FileStore) Manifest(ctx context.Context) (*domain.ArtifactManifest, error) {
	gen, err := s.current()
	if err != nil {
		return nil, err
	}
	return readManifest(filepath.Join(s.dir, generationsDir, gen))
}

func (s *FileStore) current() (string, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, currentFile))
	if errors.Is(err, fs.ErrNotExist) {
		return "", domain.ErrArtifactNotFound
	}
	if err != nil {
		return "", fmt.Errorf("read current generation: %w", err)
	}
	gen := strings.TrimSpace(string(data))
	if gen == "" {
		return "", domain.ErrArtifactNotFound
	}
	return gen, nil
}

// prune removes all but the newest generations, always keeping current.
// Generation names sort by creation time.
func (s *FileStore) prune(root, current string) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return
	}
	var gens []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") && e.Name() != current {
			gens = append(gens, e.Name())
		}
	}
	sort.Strings(gens)
	for len(gens) > keepGenerations-1 {
		_ = os.RemoveAll(filepath.Join(root, gens[0]))
		gens = gens[1:]
	}
}

func readManifest(dir string) (*domain.ArtifactManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, manifestFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("manifest missing: %w", domain.ErrArtifactNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m domain.ArtifactManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %v: %w", err, domain.ErrArtifactMismatch)
	}
	return &m, nil
}

func writeFile(path string, data []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", filepath.Base(path), err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync %s: %w", filepath.Base(path), err)
	}
	return f.Close()
}
