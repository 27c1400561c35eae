package request

import (
	"context"
	"errors"
)

// Collection names one of the three request stores. A request record lives
// in exactly one collection at a time.
type Collection string

const (
	CollectionPending  Collection = "pending"
	CollectionApproved Collection = "approved"
	CollectionDeclined Collection = "declined"
)

// ErrNotFound is returned when a request id is absent from a collection.
// The Get-from-pending NotFound guard is what makes approve/decline
// at-most-once.
var ErrNotFound = errors.New("change request not found")

// Store is the keyed persistence contract shared by all backends. List may
// return records in any order and must skip entries it cannot decode; the
// service owns sorting and the pending-to-archive move.
type Store interface {
	Get(ctx context.Context, col Collection, id string) (*ChangeRequest, error)
	Put(ctx context.Context, col Collection, req *ChangeRequest) error
	Delete(ctx context.Context, col Collection, id string) error
	List(ctx context.Context, col Collection) ([]*ChangeRequest, error)
}
