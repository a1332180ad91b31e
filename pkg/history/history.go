// Package history keeps a record of every resolution served by the API.
//
// Records are written once and never updated. [MemoryStore] keeps a bounded
// window in process; [MongoStore] persists them in a MongoDB collection.
package history

import (
	"context"
	"time"

	"github.com/google/uuid"

	errs "github.com/matzehuels/loadorder/pkg/errors"
	pkgio "github.com/matzehuels/loadorder/pkg/io"
)

// DefaultListLimit caps [Store.List] when the caller passes zero.
const DefaultListLimit = 50

// Record is one resolution. Exactly one of Plan and Error is set.
type Record struct {
	ID        string              `json:"id" bson:"_id"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
	InputHash string              `json:"inputHash" bson:"inputHash"`
	Policy    string              `json:"policy" bson:"policy"`
	Modules   int                 `json:"modules" bson:"modules"`
	CacheHit  bool                `json:"cacheHit" bson:"cacheHit"`
	Plan      *pkgio.PlanDocument `json:"plan,omitempty" bson:"plan,omitempty"`
	Error     *ErrorInfo          `json:"error,omitempty" bson:"error,omitempty"`
}

// ErrorInfo is the stored form of a failed resolution.
type ErrorInfo struct {
	Code    string `json:"code" bson:"code"`
	Message string `json:"message" bson:"message"`
}

// NewRecord returns a record with a fresh id. plan may be nil when err is
// set.
func NewRecord(inputHash, policy string, modules int, plan *pkgio.PlanDocument, err error) *Record {
	r := &Record{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
		InputHash: inputHash,
		Policy:    policy,
		Modules:   modules,
		Plan:      plan,
	}
	if err != nil {
		code := errs.GetCode(err)
		if code == "" {
			code = errs.ErrCodeInternal
		}
		r.Plan = nil
		r.Error = &ErrorInfo{Code: string(code), Message: errs.UserMessage(err)}
	}
	return r
}

// Store persists records.
type Store interface {
	// Save stores r. Saving an id twice is an error.
	Save(ctx context.Context, r *Record) error

	// Get returns the record with id, or an error with code NOT_FOUND.
	Get(ctx context.Context, id string) (*Record, error)

	// List returns up to limit records, newest first.
	List(ctx context.Context, limit int) ([]*Record, error)

	// Close releases the store's resources.
	Close(ctx context.Context) error
}

func notFound(id string) error {
	return errs.New(errs.ErrCodeNotFound, "no resolution with id %q", id)
}

// ValidateID rejects ids that are not UUIDs before a store is queried.
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "resolution id %q", id)
	}
	return nil
}
