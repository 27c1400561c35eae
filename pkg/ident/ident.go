// Package ident generates record identifiers: a type prefix, a millisecond
// timestamp for rough chronological ordering, and a random suffix for
// uniqueness.
package ident

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// New returns an id of the form "<prefix>_<unixms>_<suffix>".
func New(prefix string) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("%s_%d_%s", prefix, time.Now().UnixMilli(), suffix)
}
