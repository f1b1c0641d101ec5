package types

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePeriodType(t *testing.T) {
	tests := []struct {
		in      string
		want    PeriodType
		wantErr bool
	}{
		{in: "day", want: PeriodDay},
		{in: "week", want: PeriodWeek},
		{in: " Month ", want: PeriodMonth},
		{in: "YEAR", want: PeriodYear},
		{in: "quarter", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePeriodType(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidType)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanInputValidate(t *testing.T) {
	assert.NoError(t, PlanInput{Key: "2025-07-01", Type: PeriodDay}.Validate())
	assert.ErrorIs(t, PlanInput{Type: PeriodDay}.Validate(), ErrInvalidKey)
	assert.ErrorIs(t, PlanInput{Key: "2025", Type: "decade"}.Validate(), ErrInvalidType)
}

func TestPlanValidate(t *testing.T) {
	assert.ErrorIs(t, Plan{Key: "2025", Type: PeriodYear}.Validate(), ErrMissingID)
	assert.NoError(t, Plan{ID: 3, Key: "2025", Type: PeriodYear}.Validate())
}

func TestPlanInputRoundTrip(t *testing.T) {
	in := PlanInput{Key: "2025-W27", Type: PeriodWeek, Content: "<p>x</p>", Timestamp: 1000}
	p := in.WithID(9)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, in, p.Input())
}

func TestMerge(t *testing.T) {
	existing := Plan{ID: 1, Key: "k", Type: PeriodDay, Content: "a", Timestamp: 1}
	content := "b"
	week := PeriodWeek
	key := "2025-W01"
	ts := int64(42)

	tests := []struct {
		name  string
		patch PlanPatch
		want  Plan
	}{
		{
			name:  "content only keeps other fields",
			patch: PlanPatch{ID: 1, Content: &content},
			want:  Plan{ID: 1, Key: "k", Type: PeriodDay, Content: "b", Timestamp: 1},
		},
		{
			name:  "every field",
			patch: PlanPatch{ID: 1, Key: &key, Type: &week, Content: &content, Timestamp: &ts},
			want:  Plan{ID: 1, Key: "2025-W01", Type: PeriodWeek, Content: "b", Timestamp: 42},
		},
		{
			name:  "empty patch is identity",
			patch: PlanPatch{ID: 1},
			want:  existing,
		},
		{
			name:  "patch ID never overrides stored ID",
			patch: PlanPatch{ID: 99, Content: &content},
			want:  Plan{ID: 1, Key: "k", Type: PeriodDay, Content: "b", Timestamp: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Merge(existing, tt.patch))
		})
	}
}

func TestPlanPatchEmpty(t *testing.T) {
	assert.True(t, PlanPatch{ID: 1}.Empty())
	s := ""
	assert.False(t, PlanPatch{ID: 1, Content: &s}.Empty())
}

func TestMergeProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("set fields win, unset fields are preserved", prop.ForAll(
		func(oldContent, newContent string, oldTS, newTS int64, setContent, setTS bool) bool {
			existing := Plan{ID: 7, Key: "k", Type: PeriodMonth, Content: oldContent, Timestamp: oldTS}
			patch := PlanPatch{ID: 7}
			if setContent {
				patch.Content = &newContent
			}
			if setTS {
				patch.Timestamp = &newTS
			}
			got := Merge(existing, patch)

			wantContent, wantTS := oldContent, oldTS
			if setContent {
				wantContent = newContent
			}
			if setTS {
				wantTS = newTS
			}
			return got.ID == 7 && got.Key == "k" && got.Type == PeriodMonth &&
				got.Content == wantContent && got.Timestamp == wantTS
		},
		gen.AnyString(),
		gen.AnyString(),
		gen.Int64(),
		gen.Int64(),
		gen.Bool(),
		gen.Bool(),
	))

	properties.Property("merge is idempotent", prop.ForAll(
		func(content string, ts int64) bool {
			existing := Plan{ID: 1, Key: "2025", Type: PeriodYear, Content: "x", Timestamp: 0}
			patch := PlanPatch{ID: 1, Content: &content, Timestamp: &ts}
			once := Merge(existing, patch)
			return Merge(once, patch) == once
		},
		gen.AnyString(),
		gen.Int64(),
	))

	properties.TestingRun(t)
}
