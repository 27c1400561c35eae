package casefile

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"casegate/pkg/caseid"
)

// FileStore lays documents out as <root>/cases/<caseID>/{case.json,tree.json},
// the same layout the portal used.
type FileStore struct {
	root string
}

// NewFileStore creates a filesystem-backed document store under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{root: filepath.Join(dir, "cases")}
}

func (s *FileStore) GetCase(ctx context.Context, caseID string) (Document, error) {
	return s.read(caseID, "case.json")
}

func (s *FileStore) PutCase(ctx context.Context, caseID string, doc Document) error {
	return s.write(caseID, "case.json", doc)
}

func (s *FileStore) GetTree(ctx context.Context, caseID string) (Document, error) {
	return s.read(caseID, "tree.json")
}

func (s *FileStore) PutTree(ctx context.Context, caseID string, doc Document) error {
	return s.write(caseID, "tree.json", doc)
}

func (s *FileStore) read(caseID, name string) (Document, error) {
	if err := caseid.Validate(caseID); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.root, caseID, name))
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

func (s *FileStore) write(caseID, name string, doc Document) error {
	if err := caseid.Validate(caseID); err != nil {
		return err
	}

	dir := filepath.Join(s.root, caseID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create case dir: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	path := filepath.Join(dir, name)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
