package override

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
)

// FileStore persists all overrides in a single JSON array file, matching the
// portal's on-disk layout. Reads are tolerant: entries that fail to decode
// are skipped, not fatal.
type FileStore struct {
	path   string
	logger *slog.Logger
	mu     sync.Mutex
}

// NewFileStore creates a file-backed store at <dir>/overrides.json.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	return &FileStore{path: filepath.Join(dir, "overrides.json"), logger: logger}
}

func (s *FileStore) Upsert(ctx context.Context, ovr Override) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll(ctx)
	if err != nil {
		return err
	}

	replaced := false
	for i := range entries {
		if entries[i].CaseID == ovr.CaseID && entries[i].RuleID == ovr.RuleID {
			entries[i] = ovr
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, ovr)
	}

	return s.writeAll(entries)
}

func (s *FileStore) ListByCase(ctx context.Context, caseID string) ([]Override, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.readAll(ctx)
	if err != nil {
		return nil, err
	}

	var out []Override
	for _, e := range entries {
		if e.CaseID == caseID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *FileStore) readAll(ctx context.Context) ([]Override, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read overrides file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode overrides file: %w", err)
	}

	entries := make([]Override, 0, len(raw))
	for _, msg := range raw {
		var ovr Override
		if err := json.Unmarshal(msg, &ovr); err != nil || ovr.CaseID == "" || ovr.RuleID == "" {
			if s.logger != nil {
				s.logger.WarnContext(ctx, "skipping corrupt override entry", "error", err)
			}
			continue
		}
		entries = append(entries, ovr)
	}
	return entries, nil
}

func (s *FileStore) writeAll(entries []Override) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create overrides dir: %w", err)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode overrides: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write overrides file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace overrides file: %w", err)
	}
	return nil
}
