// Package jsonfile persists the whole ledger state as a single JSON file.
// This is the default store for the single-user setup; the file content is
// treated as untrusted on every load and passed through the schema
// validator.
package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/asset-hq/nwt_backend/internal/core/domain"
	portsrepo "github.com/asset-hq/nwt_backend/internal/core/ports/repositories"
	"github.com/asset-hq/nwt_backend/internal/validation"
)

// LedgerRepository stores the ledger state in one JSON file, written
// atomically (temp file + rename).
type LedgerRepository struct {
	path string
	mu   sync.Mutex
}

// NewLedgerRepository creates a repository backed by the given file path.
// The file does not need to exist yet.
func NewLedgerRepository(path string) *LedgerRepository {
	return &LedgerRepository{path: path}
}

var _ portsrepo.LedgerRepository = (*LedgerRepository)(nil)

// LoadState reads and validates the stored state. A missing file or a file
// that fails the schema contract yields the known-good default state; the
// invalid content stays on disk untouched until the next save.
func (r *LedgerRepository) LoadState(ctx context.Context) (domain.LedgerState, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return domain.DefaultState(), nil
		}
		return domain.LedgerState{}, fmt.Errorf("failed to read ledger file %s: %w", r.path, err)
	}

	state, err := validation.DecodeState(raw)
	if err != nil {
		slog.Warn("Stored ledger state failed validation, using default state",
			slog.String("path", r.path),
			slog.String("error", err.Error()))
		return domain.DefaultState(), nil
	}
	return state, nil
}

// SaveState writes the state atomically so a crash mid-write never leaves a
// truncated ledger behind.
func (r *LedgerRepository) SaveState(ctx context.Context, state domain.LedgerState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal ledger state: %w", err)
	}

	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create ledger directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp ledger file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}
	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger file %s: %w", r.path, err)
	}
	return nil
}
