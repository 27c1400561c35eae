// Package caseid validates case identifiers before they are used as store
// keys or path segments.
package caseid

import (
	"regexp"
	"strings"

	dErrors "casegate/pkg/domain-errors"
)

var pattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// Validate rejects case ids that could escape a keyed store or filesystem
// layout. Only alphanumerics, hyphens, and underscores are allowed, and any
// value containing ".." is refused outright.
func Validate(id string) error {
	if id == "" {
		return dErrors.New(dErrors.CodeBadRequest, "case id is required")
	}
	if strings.Contains(id, "..") || !pattern.MatchString(id) {
		return dErrors.New(dErrors.CodeBadRequest, "invalid case id format")
	}
	return nil
}
