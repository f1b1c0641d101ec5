package types

import (
	"fmt"
	"strings"
)

// PeriodType is the granularity a plan belongs to.
type PeriodType string

// Period types. No other value is valid.
const (
	PeriodDay   PeriodType = "day"
	PeriodWeek  PeriodType = "week"
	PeriodMonth PeriodType = "month"
	PeriodYear  PeriodType = "year"
)

// PeriodTypes lists the period types from finest to coarsest.
var PeriodTypes = []PeriodType{
	PeriodDay,
	PeriodWeek,
	PeriodMonth,
	PeriodYear,
}

var validPeriodTypes = map[PeriodType]bool{
	PeriodDay:   true,
	PeriodWeek:  true,
	PeriodMonth: true,
	PeriodYear:  true,
}

// Validate returns ErrInvalidType if p is not one of the four period types.
func (p PeriodType) Validate() error {
	if !validPeriodTypes[p] {
		return fmt.Errorf("%w: %q", ErrInvalidType, string(p))
	}
	return nil
}

func (p PeriodType) String() string { return string(p) }

// ParsePeriodType converts s (case-insensitive) into a PeriodType.
func ParsePeriodType(s string) (PeriodType, error) {
	p := PeriodType(strings.ToLower(strings.TrimSpace(s)))
	if err := p.Validate(); err != nil {
		return "", err
	}
	return p, nil
}

// Plan is a persisted note for one period instance, e.g. the note for
// 2025-07-01 or for 2025-W27.
type Plan struct {
	ID        int64      `json:"id"`        // Assigned by the store on creation.
	Key       string     `json:"key"`       // Period key, see package keys.
	Type      PeriodType `json:"type"`      // Period granularity.
	Content   string     `json:"content"`   // Serialized rich-text markup.
	Timestamp int64      `json:"timestamp"` // Milliseconds since the Unix epoch.
}

// PlanInput is a plan that has not been persisted yet and so carries no ID.
type PlanInput struct {
	Key       string     `json:"key"`
	Type      PeriodType `json:"type"`
	Content   string     `json:"content"`
	Timestamp int64      `json:"timestamp"`
}

// Validate checks the fields the store requires before a write.
func (in PlanInput) Validate() error {
	if in.Key == "" {
		return ErrInvalidKey
	}
	return in.Type.Validate()
}

// WithID returns the persisted plan for this input.
func (in PlanInput) WithID(id int64) Plan {
	return Plan{
		ID:        id,
		Key:       in.Key,
		Type:      in.Type,
		Content:   in.Content,
		Timestamp: in.Timestamp,
	}
}

// Input strips the ID from p.
func (p Plan) Input() PlanInput {
	return PlanInput{
		Key:       p.Key,
		Type:      p.Type,
		Content:   p.Content,
		Timestamp: p.Timestamp,
	}
}

// Validate checks the fields of a stored plan.
func (p Plan) Validate() error {
	if p.ID <= 0 {
		return ErrMissingID
	}
	return p.Input().Validate()
}

// PlanPatch is a partial update. ID identifies the plan; nil fields are left
// untouched.
type PlanPatch struct {
	ID        int64       `json:"id"`
	Key       *string     `json:"key,omitempty"`
	Type      *PeriodType `json:"type,omitempty"`
	Content   *string     `json:"content,omitempty"`
	Timestamp *int64      `json:"timestamp,omitempty"`
}

// Empty reports whether the patch sets no field.
func (pp PlanPatch) Empty() bool {
	return pp.Key == nil && pp.Type == nil && pp.Content == nil && pp.Timestamp == nil
}

// Merge applies patch onto existing field by field. Each set field replaces
// the stored value whole; the ID of existing is kept.
func Merge(existing Plan, patch PlanPatch) Plan {
	merged := existing
	if patch.Key != nil {
		merged.Key = *patch.Key
	}
	if patch.Type != nil {
		merged.Type = *patch.Type
	}
	if patch.Content != nil {
		merged.Content = *patch.Content
	}
	if patch.Timestamp != nil {
		merged.Timestamp = *patch.Timestamp
	}
	return merged
}
