// Package sqlite implements the SQLite plan store for planbook.
//
// A Backend is an explicit handle: it is created once, attached to a data
// directory, shared by every caller, and detached at shutdown. Each public
// operation runs in its own transaction, which is always committed or rolled
// back before the operation returns.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/planbook/internal/logging"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

// Compile-time interface checks.
var (
	_ types.Store    = (*Backend)(nil)
	_ types.Archiver = (*Backend)(nil)
)

// busyTimeout bounds how long a writer waits on a lock held by another
// process before SQLite reports SQLITE_BUSY.
const busyTimeout = 5 * time.Second

// Backend implements types.Store on a single SQLite database file.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	log      *zap.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(b *Backend) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{log: zap.NewNop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens (creating if needed) the database in config.DataDir and
// brings its schema up to date. Returns ErrAlreadyAttached if already
// attached and an error wrapping ErrStoreOpen if the database is unusable.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if err := os.MkdirAll(config.Dir(), 0o755); err != nil {
		return fmt.Errorf("%w: creating data dir: %w", types.ErrStoreOpen, err)
	}

	path := config.DatabasePath()
	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		path, busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("%w: %w", types.ErrStoreOpen, err)
	}
	// One connection: in-process writers queue on the pool instead of
	// racing for the SQLite write lock.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 2*busyTimeout)
	defer cancel()

	version, err := migrate(ctx, db)
	if err != nil {
		db.Close()
		return fmt.Errorf("%w: %w", types.ErrStoreOpen, err)
	}

	b.db = db
	b.config = config
	b.attached = true

	b.log.Info("plan store attached",
		zap.String(logging.FieldPath, path),
		zap.Int(logging.FieldVersion, version))
	return nil
}

// Detach closes the database. After Detach every operation returns
// ErrStoreDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	b.attached = false
	db := b.db
	b.db = nil
	if err := db.Close(); err != nil {
		return fmt.Errorf("closing plan store: %w", err)
	}

	b.log.Info("plan store detached", zap.String(logging.FieldPath, b.config.DatabasePath()))
	return nil
}

// Config returns the configuration the backend was attached with.
func (b *Backend) Config() types.Config {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config
}

// newTxID returns a UUID v7 identifying one transaction in the logs.
func newTxID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// withTx runs fn inside a transaction. The transaction is committed when fn
// returns nil and rolled back when it returns an error or panics; in every
// case the connection goes back to the pool before withTx returns.
func (b *Backend) withTx(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrStoreDetached
	}

	log := b.log.With(
		zap.String(logging.FieldTx, newTxID()),
		zap.String(logging.FieldOperation, op))
	start := time.Now()

	tx, err := b.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: beginning transaction: %w", op, err)
	}
	log.Debug("transaction started")

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
			log.Debug("transaction rolled back", zap.Duration(logging.FieldDuration, time.Since(start)))
			return
		}
		if cerr := tx.Commit(); cerr != nil {
			err = fmt.Errorf("%s: committing: %w", op, cerr)
			return
		}
		log.Debug("transaction committed", zap.Duration(logging.FieldDuration, time.Since(start)))
	}()

	return fn(tx)
}
