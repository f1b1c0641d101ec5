package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

const selectPlans = "SELECT id, plan_key, plan_type, content, timestamp FROM plans"

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func hydratePlan(row scanner) (types.Plan, error) {
	var p types.Plan
	var typ string
	if err := row.Scan(&p.ID, &p.Key, &typ, &p.Content, &p.Timestamp); err != nil {
		return types.Plan{}, err
	}
	p.Type = types.PeriodType(typ)
	return p, nil
}

// queryPlans runs a SELECT and hydrates every row. The result is never nil.
func queryPlans(ctx context.Context, tx *sql.Tx, query string, args ...any) ([]types.Plan, error) {
	rows, err := tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	plans := make([]types.Plan, 0)
	for rows.Next() {
		p, err := hydratePlan(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// getPlan returns the plan with id; ok is false when absent.
func getPlan(ctx context.Context, tx *sql.Tx, id int64) (types.Plan, bool, error) {
	p, err := hydratePlan(tx.QueryRowContext(ctx, selectPlans+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Plan{}, false, nil
	}
	if err != nil {
		return types.Plan{}, false, err
	}
	return p, true, nil
}

func insertPlan(ctx context.Context, tx *sql.Tx, in types.PlanInput) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO plans (plan_key, plan_type, content, timestamp) VALUES (?, ?, ?, ?)",
		in.Key, string(in.Type), in.Content, in.Timestamp)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// upsertPlan writes p under p.ID, inserting it if no row has that ID.
func upsertPlan(ctx context.Context, tx *sql.Tx, p types.Plan) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO plans (id, plan_key, plan_type, content, timestamp)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			plan_key = excluded.plan_key,
			plan_type = excluded.plan_type,
			content = excluded.content,
			timestamp = excluded.timestamp`,
		p.ID, p.Key, string(p.Type), p.Content, p.Timestamp)
	return err
}

// Create stores in and returns it with its new ID.
func (b *Backend) Create(ctx context.Context, in types.PlanInput) (types.Plan, error) {
	if err := in.Validate(); err != nil {
		return types.Plan{}, err
	}

	var created types.Plan
	err := b.withTx(ctx, "create", func(tx *sql.Tx) error {
		id, err := insertPlan(ctx, tx, in)
		if err != nil {
			return writeError(fmt.Sprintf("creating plan %s/%s", in.Type, in.Key), err)
		}
		created = in.WithID(id)
		return nil
	})
	if err != nil {
		return types.Plan{}, err
	}
	return created, nil
}

// CreateMany stores inputs in one transaction. A failing input rolls back
// the whole batch.
func (b *Backend) CreateMany(ctx context.Context, inputs []types.PlanInput) ([]types.Plan, error) {
	for i, in := range inputs {
		if err := in.Validate(); err != nil {
			return nil, fmt.Errorf("plan %d: %w", i, err)
		}
	}
	if len(inputs) == 0 {
		return []types.Plan{}, nil
	}

	created := make([]types.Plan, len(inputs))
	err := b.withTx(ctx, "create_many", func(tx *sql.Tx) error {
		for i, in := range inputs {
			id, err := insertPlan(ctx, tx, in)
			if err != nil {
				return writeError(fmt.Sprintf("creating plan %d (%s/%s)", i, in.Type, in.Key), err)
			}
			created[i] = in.WithID(id)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID returns the plan with id; ok is false when there is none.
func (b *Backend) GetByID(ctx context.Context, id int64) (types.Plan, bool, error) {
	var (
		plan types.Plan
		ok   bool
	)
	err := b.withTx(ctx, "get_by_id", func(tx *sql.Tx) error {
		var err error
		plan, ok, err = getPlan(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("reading plan %d: %w", id, err)
		}
		return nil
	})
	if err != nil {
		return types.Plan{}, false, err
	}
	return plan, ok, nil
}

// GetAll returns every plan in insertion order.
func (b *Backend) GetAll(ctx context.Context) ([]types.Plan, error) {
	return b.list(ctx, "get_all", selectPlans+" ORDER BY id")
}

// GetByType returns the plans of period type t.
func (b *Backend) GetByType(ctx context.Context, t types.PeriodType) ([]types.Plan, error) {
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return b.list(ctx, "get_by_type", selectPlans+" WHERE plan_type = ? ORDER BY id", string(t))
}

// GetByKey returns the plans stored under key, of any period type.
func (b *Backend) GetByKey(ctx context.Context, key string) ([]types.Plan, error) {
	return b.list(ctx, "get_by_key", selectPlans+" WHERE plan_key = ? ORDER BY id", key)
}

// GetByKeyAndType returns the plan for (key, t); ok is false when there is
// none.
func (b *Backend) GetByKeyAndType(ctx context.Context, key string, t types.PeriodType) (types.Plan, bool, error) {
	if err := t.Validate(); err != nil {
		return types.Plan{}, false, err
	}

	var (
		plan types.Plan
		ok   bool
	)
	err := b.withTx(ctx, "get_by_key_and_type", func(tx *sql.Tx) error {
		p, err := hydratePlan(tx.QueryRowContext(ctx,
			selectPlans+" WHERE plan_key = ? AND plan_type = ?", key, string(t)))
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading plan %s/%s: %w", t, key, err)
		}
		plan, ok = p, true
		return nil
	})
	if err != nil {
		return types.Plan{}, false, err
	}
	return plan, ok, nil
}

// GetByTimeRange returns plans with from <= timestamp <= to, oldest first.
func (b *Backend) GetByTimeRange(ctx context.Context, from, to int64) ([]types.Plan, error) {
	if from > to {
		return nil, fmt.Errorf("%w: from %d is after to %d", types.ErrInvalidRange, from, to)
	}
	return b.list(ctx, "get_by_time_range",
		selectPlans+" WHERE timestamp BETWEEN ? AND ? ORDER BY timestamp, id", from, to)
}

func (b *Backend) list(ctx context.Context, op, query string, args ...any) ([]types.Plan, error) {
	var plans []types.Plan
	err := b.withTx(ctx, op, func(tx *sql.Tx) error {
		var err error
		plans, err = queryPlans(ctx, tx, query, args...)
		if err != nil {
			return fmt.Errorf("listing plans: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return plans, nil
}

// Update merges patch onto the stored plan within one transaction and
// returns the merged plan. Returns ErrNotFound if patch.ID does not exist;
// the store is left unchanged.
func (b *Backend) Update(ctx context.Context, patch types.PlanPatch) (types.Plan, error) {
	if patch.ID <= 0 {
		return types.Plan{}, types.ErrMissingID
	}
	if patch.Type != nil {
		if err := patch.Type.Validate(); err != nil {
			return types.Plan{}, err
		}
	}
	if patch.Key != nil && *patch.Key == "" {
		return types.Plan{}, types.ErrInvalidKey
	}

	var merged types.Plan
	err := b.withTx(ctx, "update", func(tx *sql.Tx) error {
		existing, ok, err := getPlan(ctx, tx, patch.ID)
		if err != nil {
			return fmt.Errorf("reading plan %d: %w", patch.ID, err)
		}
		if !ok {
			return fmt.Errorf("plan %d: %w", patch.ID, types.ErrNotFound)
		}

		merged = types.Merge(existing, patch)
		_, err = tx.ExecContext(ctx,
			"UPDATE plans SET plan_key = ?, plan_type = ?, content = ?, timestamp = ? WHERE id = ?",
			merged.Key, string(merged.Type), merged.Content, merged.Timestamp, merged.ID)
		if err != nil {
			return writeError(fmt.Sprintf("updating plan %d", patch.ID), err)
		}
		return nil
	})
	if err != nil {
		return types.Plan{}, err
	}
	return merged, nil
}

// Replace stores p verbatim under p.ID, inserting it if absent. A zero ID is
// rejected before the store is touched.
func (b *Backend) Replace(ctx context.Context, p types.Plan) (types.Plan, error) {
	if err := p.Validate(); err != nil {
		return types.Plan{}, err
	}

	err := b.withTx(ctx, "replace", func(tx *sql.Tx) error {
		if err := upsertPlan(ctx, tx, p); err != nil {
			return writeError(fmt.Sprintf("replacing plan %d", p.ID), err)
		}
		return nil
	})
	if err != nil {
		return types.Plan{}, err
	}
	return p, nil
}

// DeleteByID removes the plan with id. Deleting a missing id succeeds.
func (b *Backend) DeleteByID(ctx context.Context, id int64) error {
	return b.withTx(ctx, "delete_by_id", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM plans WHERE id = ?", id); err != nil {
			return fmt.Errorf("deleting plan %d: %w", id, err)
		}
		return nil
	})
}

// DeleteMany removes every id in one transaction; if one delete fails none
// are applied.
func (b *Backend) DeleteMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	return b.withTx(ctx, "delete_many", func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, "DELETE FROM plans WHERE id = ?")
		if err != nil {
			return fmt.Errorf("preparing delete: %w", err)
		}
		defer stmt.Close()

		for _, id := range ids {
			if _, err := stmt.ExecContext(ctx, id); err != nil {
				return fmt.Errorf("deleting plan %d: %w", id, err)
			}
		}
		return nil
	})
}

// DeleteAll removes every plan.
func (b *Backend) DeleteAll(ctx context.Context) error {
	return b.withTx(ctx, "delete_all", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM plans"); err != nil {
			return fmt.Errorf("clearing plans: %w", err)
		}
		return nil
	})
}

// DeleteByType removes every plan of type t with a single statement, so a
// concurrent writer sees either all of them or none of them gone.
func (b *Backend) DeleteByType(ctx context.Context, t types.PeriodType) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return b.withTx(ctx, "delete_by_type", func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "DELETE FROM plans WHERE plan_type = ?", string(t)); err != nil {
			return fmt.Errorf("deleting %s plans: %w", t, err)
		}
		return nil
	})
}
