package data

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// Record is a normalized category with its mean measure.
type Record struct {
	Name  string  // display name (city or state)
	Group string  // parent category, empty for top-level records
	Mean  float64 // always finite
	Count int     // source rows folded into Mean
}

// Key is the identity used for joins and mark reconciliation.
func (r Record) Key() string {
	if r.Group == "" {
		return r.Name
	}
	return r.Name + ", " + r.Group
}

// StateIncome is one state of the income-by-state document together with
// the per-city records shown by the detail view.
type StateIncome struct {
	Record
	Cities []Record
}

// CityIncome holds both groupings derived from one income CSV.
type CityIncome struct {
	Cities []Record
	States []Record
	Rows   int // rows that survived coercion
}

// ParseMeasure coerces a raw field into a finite number.
func ParseMeasure(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// TopN returns the n records with the largest Mean, largest first. Ties keep
// key order so repeated calls are deterministic. The input is not modified.
func TopN(records []Record, n int) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Mean != out[j].Mean {
			return out[i].Mean > out[j].Mean
		}
		return out[i].Key() < out[j].Key()
	})
	if n >= 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Extent returns min and max Mean; ok is false for an empty list.
func Extent(records []Record) (lo, hi float64, ok bool) {
	if len(records) == 0 {
		return 0, 0, false
	}
	lo, hi = records[0].Mean, records[0].Mean
	for _, r := range records[1:] {
		lo = math.Min(lo, r.Mean)
		hi = math.Max(hi, r.Mean)
	}
	return lo, hi, true
}

// Index maps each state's name to its entry.
func Index(states []StateIncome) map[string]StateIncome {
	m := make(map[string]StateIncome, len(states))
	for _, s := range states {
		m[s.Name] = s
	}
	return m
}

// group folds rows sharing a key into one record whose Mean is the average.
type group struct {
	order []string
	acc   map[string]*Record
}

func newGroup() *group { return &group{acc: map[string]*Record{}} }

func (g *group) add(name, parent string, v float64) {
	r := Record{Name: name, Group: parent}
	k := r.Key()
	cur, ok := g.acc[k]
	if !ok {
		cur = &Record{Name: name, Group: parent}
		g.acc[k] = cur
		g.order = append(g.order, k)
	}
	// running mean keeps precision for large groups
	cur.Count++
	cur.Mean += (v - cur.Mean) / float64(cur.Count)
}

func (g *group) records() []Record {
	out := make([]Record, 0, len(g.order))
	for _, k := range g.order {
		out = append(out, *g.acc[k])
	}
	return out
}
