package request

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// FileStore lays records out as <root>/requests/<collection>/<id>.json,
// mirroring the portal's flat-file queue. The collection a file sits in is
// the request's lifecycle state.
type FileStore struct {
	root   string
	logger *slog.Logger
}

// NewFileStore creates a filesystem-backed request store under dir.
func NewFileStore(dir string, logger *slog.Logger) *FileStore {
	return &FileStore{root: filepath.Join(dir, "requests"), logger: logger}
}

func (s *FileStore) Get(_ context.Context, col Collection, id string) (*ChangeRequest, error) {
	if !validRecordID(id) {
		return nil, ErrNotFound
	}

	data, err := os.ReadFile(s.recordPath(col, id))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read request record: %w", err)
	}

	var req ChangeRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("decode request record %s: %w", id, err)
	}
	return &req, nil
}

func (s *FileStore) Put(_ context.Context, col Collection, req *ChangeRequest) error {
	dir := filepath.Join(s.root, string(col))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s dir: %w", col, err)
	}

	data, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return fmt.Errorf("encode request record: %w", err)
	}

	path := s.recordPath(col, req.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write request record: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace request record: %w", err)
	}
	return nil
}

func (s *FileStore) Delete(_ context.Context, col Collection, id string) error {
	if !validRecordID(id) {
		return ErrNotFound
	}
	err := os.Remove(s.recordPath(col, id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("delete request record: %w", err)
	}
	return nil
}

func (s *FileStore) List(ctx context.Context, col Collection) ([]*ChangeRequest, error) {
	entries, err := os.ReadDir(filepath.Join(s.root, string(col)))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s dir: %w", col, err)
	}

	var out []*ChangeRequest
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.root, string(col), entry.Name()))
		if err != nil {
			s.warn(ctx, col, entry.Name(), err)
			continue
		}
		var req ChangeRequest
		if err := json.Unmarshal(data, &req); err != nil || req.ID == "" {
			// One unreadable record must not take the listing down.
			s.warn(ctx, col, entry.Name(), err)
			continue
		}
		out = append(out, &req)
	}
	return out, nil
}

func (s *FileStore) recordPath(col Collection, id string) string {
	return filepath.Join(s.root, string(col), id+".json")
}

func (s *FileStore) warn(ctx context.Context, col Collection, name string, err error) {
	if s.logger != nil {
		s.logger.WarnContext(ctx, "skipping unreadable request record",
			"collection", string(col),
			"file", name,
			"error", err,
		)
	}
}

// validRecordID guards against ids that would escape the collection
// directory.
func validRecordID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && !strings.Contains(id, "..")
}
