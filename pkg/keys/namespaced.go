package keys

import (
	"regexp"
	"time"

	"github.com/mesh-intelligence/planbook/pkg/types"
)

// Namespace prefixes every namespaced key.
const Namespace = "notes"

var namespacedPattern = regexp.MustCompile(`^notes:(day|week|month|year):(.+)$`)

// Parsed is the result of ParseNamespaced.
type Parsed struct {
	Type     types.PeriodType `json:"type"`
	Fragment string           `json:"fragment"`
}

type namespaced struct{}

func (namespaced) Key(date time.Time, t types.PeriodType) string {
	if t.Validate() != nil {
		t = types.PeriodDay
	}
	return Namespace + ":" + string(t) + ":" + KeyFor(date, t)
}

func (n namespaced) Keys(date time.Time) Keys {
	return Keys{
		Day:   n.Key(date, types.PeriodDay),
		Week:  n.Key(date, types.PeriodWeek),
		Month: n.Key(date, types.PeriodMonth),
		Year:  n.Key(date, types.PeriodYear),
	}
}

// Namespaced returns the strategy producing notes:<type>:<fragment> keys.
func Namespaced() Strategy { return namespaced{} }

// ParseNamespaced splits a namespaced key into its period type and date
// fragment. The fragment is returned as is, without checking it is a valid
// date. ok is false when key does not have the namespaced shape.
func ParseNamespaced(key string) (Parsed, bool) {
	m := namespacedPattern.FindStringSubmatch(key)
	if m == nil {
		return Parsed{}, false
	}
	return Parsed{Type: types.PeriodType(m[1]), Fragment: m[2]}, true
}
