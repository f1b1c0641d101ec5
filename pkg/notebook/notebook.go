// Package notebook reads and writes the note for a calendar period. It
// derives the period key for a date and keeps at most one plan per key and
// period type in the underlying store.
package notebook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/planbook/internal/logging"
	"github.com/mesh-intelligence/planbook/pkg/keys"
	"github.com/mesh-intelligence/planbook/pkg/types"
)

// Service handles notes on top of a PlanStore.
type Service struct {
	store    types.PlanStore
	strategy keys.Strategy
	now      func() time.Time
	log      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithStrategy selects the key strategy. The default is keys.Plain.
func WithStrategy(s keys.Strategy) Option {
	return func(svc *Service) {
		if s != nil {
			svc.strategy = s
		}
	}
}

// WithClock sets the clock used for plan timestamps.
func WithClock(now func() time.Time) Option {
	return func(svc *Service) {
		if now != nil {
			svc.now = now
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(svc *Service) {
		if l != nil {
			svc.log = l
		}
	}
}

// New creates a Service over store.
func New(store types.PlanStore, opts ...Option) *Service {
	svc := &Service{
		store:    store,
		strategy: keys.Plain(),
		now:      time.Now,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Key returns the key the service stores the note for (date, t) under.
func (s *Service) Key(date time.Time, t types.PeriodType) string {
	return s.strategy.Key(date, t)
}

// Save writes content as the note for the period of type t containing date.
// An existing note is updated in place; otherwise one is created. The plan
// timestamp is set to the current time in milliseconds.
func (s *Service) Save(ctx context.Context, date time.Time, t types.PeriodType, content string) (types.Plan, error) {
	if err := t.Validate(); err != nil {
		return types.Plan{}, err
	}
	key := s.Key(date, t)
	ts := s.now().UnixMilli()

	plan, err := s.upsert(ctx, key, t, content, ts)
	if errors.Is(err, types.ErrDuplicateKey) {
		// Another writer created the note between our read and insert.
		plan, err = s.upsert(ctx, key, t, content, ts)
	}
	if err != nil {
		return types.Plan{}, fmt.Errorf("saving %s note %s: %w", t, key, err)
	}

	s.log.Debug("note saved",
		zap.Int64(logging.FieldPlanID, plan.ID),
		zap.String(logging.FieldKey, key),
		zap.String(logging.FieldType, string(t)))
	return plan, nil
}

func (s *Service) upsert(ctx context.Context, key string, t types.PeriodType, content string, ts int64) (types.Plan, error) {
	existing, ok, err := s.store.GetByKeyAndType(ctx, key, t)
	if err != nil {
		return types.Plan{}, err
	}
	if ok {
		return s.store.Update(ctx, types.PlanPatch{ID: existing.ID, Content: &content, Timestamp: &ts})
	}
	return s.store.Create(ctx, types.PlanInput{Key: key, Type: t, Content: content, Timestamp: ts})
}

// Note returns the note for the period of type t containing date; ok is
// false when none has been written.
func (s *Service) Note(ctx context.Context, date time.Time, t types.PeriodType) (types.Plan, bool, error) {
	if err := t.Validate(); err != nil {
		return types.Plan{}, false, err
	}
	return s.store.GetByKeyAndType(ctx, s.Key(date, t), t)
}

// Has reports whether a note exists for the period of type t containing date.
func (s *Service) Has(ctx context.Context, date time.Time, t types.PeriodType) (bool, error) {
	_, ok, err := s.Note(ctx, date, t)
	return ok, err
}

// NotesForDate returns the notes of the day, week, month and year containing
// date. Periods without a note are absent from the map.
func (s *Service) NotesForDate(ctx context.Context, date time.Time) (map[types.PeriodType]types.Plan, error) {
	notes := make(map[types.PeriodType]types.Plan, len(types.PeriodTypes))
	for _, t := range types.PeriodTypes {
		p, ok, err := s.Note(ctx, date, t)
		if err != nil {
			return nil, err
		}
		if ok {
			notes[t] = p
		}
	}
	return notes, nil
}

// Remove deletes the note for the period of type t containing date. It
// reports whether there was one.
func (s *Service) Remove(ctx context.Context, date time.Time, t types.PeriodType) (bool, error) {
	p, ok, err := s.Note(ctx, date, t)
	if err != nil || !ok {
		return false, err
	}
	if err := s.store.DeleteByID(ctx, p.ID); err != nil {
		return false, fmt.Errorf("removing %s note %s: %w", t, p.Key, err)
	}
	s.log.Debug("note removed", zap.Int64(logging.FieldPlanID, p.ID), zap.String(logging.FieldKey, p.Key))
	return true, nil
}

// MarkedDays returns the days of the given month that have a day note, keyed
// by day of month.
func (s *Service) MarkedDays(ctx context.Context, year int, month time.Month) (map[int]bool, error) {
	days, err := s.store.GetByType(ctx, types.PeriodDay)
	if err != nil {
		return nil, err
	}
	stored := make(map[string]bool, len(days))
	for _, p := range days {
		stored[p.Key] = true
	}

	marked := map[int]bool{}
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d := first; d.Month() == month; d = d.AddDate(0, 0, 1) {
		if stored[s.Key(d, types.PeriodDay)] {
			marked[d.Day()] = true
		}
	}
	return marked, nil
}
