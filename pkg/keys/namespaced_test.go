package keys

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

func TestNamespacedStrategy(t *testing.T) {
	d := date(2025, time.July, 1)
	s := Namespaced()

	assert.Equal(t, Keys{
		Day:   "notes:day:2025-07-01",
		Week:  "notes:week:2025-W27",
		Month: "notes:month:2025-07",
		Year:  "notes:year:2025",
	}, s.Keys(d))
	assert.Equal(t, "notes:day:2025-07-01", s.Key(d, types.PeriodType("bogus")))
}

func TestParseNamespaced(t *testing.T) {
	tests := []struct {
		key    string
		want   Parsed
		wantOK bool
	}{
		{"notes:day:2025-07-01", Parsed{Type: types.PeriodDay, Fragment: "2025-07-01"}, true},
		{"notes:week:2025-W27", Parsed{Type: types.PeriodWeek, Fragment: "2025-W27"}, true},
		{"notes:year:anything goes", Parsed{Type: types.PeriodYear, Fragment: "anything goes"}, true},
		{"notes:decade:2020", Parsed{}, false},
		{"notes:day:", Parsed{}, false},
		{"2025-07-01", Parsed{}, false},
		{"xnotes:day:2025-07-01", Parsed{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := ParseNamespaced(tt.key)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
