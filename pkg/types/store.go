package types

import (
	"context"
	"errors"
	"io"
)

// PlanStore is the persistence contract for plans. Each method is atomic on
// its own: it runs in a single transaction that is released before the
// method returns. Nothing spans two calls.
type PlanStore interface {
	// Create stores in and returns it with the assigned ID.
	Create(ctx context.Context, in PlanInput) (Plan, error)

	// CreateMany stores all inputs in one transaction. The result is
	// positionally matched to inputs. If any write fails nothing is kept.
	CreateMany(ctx context.Context, inputs []PlanInput) ([]Plan, error)

	// GetByID returns the plan with id; ok is false when there is none.
	GetByID(ctx context.Context, id int64) (plan Plan, ok bool, err error)

	// GetAll returns every plan in insertion order.
	GetAll(ctx context.Context) ([]Plan, error)

	// GetByType returns the plans of period type t.
	GetByType(ctx context.Context, t PeriodType) ([]Plan, error)

	// GetByKey returns the plans stored under key, one per period type at most.
	GetByKey(ctx context.Context, key string) ([]Plan, error)

	// GetByKeyAndType returns the single plan for (key, t); ok is false when
	// there is none.
	GetByKeyAndType(ctx context.Context, key string, t PeriodType) (plan Plan, ok bool, err error)

	// GetByTimeRange returns plans whose timestamp lies in [from, to].
	// Returns ErrInvalidRange if from > to.
	GetByTimeRange(ctx context.Context, from, to int64) ([]Plan, error)

	// Update merges patch onto the stored plan and returns the result.
	// Returns ErrNotFound if no plan has patch.ID.
	Update(ctx context.Context, patch PlanPatch) (Plan, error)

	// Replace stores p verbatim under p.ID, creating it if absent.
	// Returns ErrMissingID without touching the store if p.ID is zero.
	Replace(ctx context.Context, p Plan) (Plan, error)

	// DeleteByID removes the plan with id. A missing id is not an error.
	DeleteByID(ctx context.Context, id int64) error

	// DeleteMany removes all ids in one transaction.
	DeleteMany(ctx context.Context, ids []int64) error

	// DeleteAll clears the store.
	DeleteAll(ctx context.Context) error

	// DeleteByType removes every plan of period type t in one statement.
	DeleteByType(ctx context.Context, t PeriodType) error
}

// Store is a PlanStore with an explicit lifecycle. A Store is created once,
// attached to its backing data, shared by all callers, and detached at
// shutdown.
type Store interface {
	PlanStore

	// Attach opens the backend described by config. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent. After Detach every
	// PlanStore method returns ErrStoreDetached.
	Detach() error
}

// Archiver moves plans to and from JSON Lines, one plan per line.
type Archiver interface {
	Export(ctx context.Context, w io.Writer) (int, error)
	ExportFile(ctx context.Context, path string) (int, error)

	// Import writes every record in one transaction. Records carrying an ID
	// replace the plan with that ID; the rest are created.
	Import(ctx context.Context, r io.Reader) (int, error)
	ImportFile(ctx context.Context, path string) (int, error)
}

// Store lifecycle errors.
var (
	ErrStoreOpen       = errors.New("plan store could not be opened")
	ErrStoreDetached   = errors.New("plan store is detached")
	ErrAlreadyAttached = errors.New("plan store is already attached")
)

// Plan operation errors.
var (
	ErrNotFound     = errors.New("plan not found")
	ErrMissingID    = errors.New("plan ID is required")
	ErrInvalidType  = errors.New("invalid period type")
	ErrInvalidKey   = errors.New("plan key must not be empty")
	ErrInvalidRange = errors.New("invalid time range")
	ErrDuplicateKey = errors.New("a plan with this key and type already exists")
)
