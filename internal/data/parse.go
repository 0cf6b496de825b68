package data

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	// ErrMissingColumn indicates a required CSV header is absent.
	ErrMissingColumn = errors.New("data: required column missing")
	// ErrEmptyCSV indicates the CSV has no header row.
	ErrEmptyCSV = errors.New("data: empty csv")
)

// CSV column names of the income-by-city dataset.
const (
	ColCity  = "City"
	ColState = "State_Name"
	ColMean  = "Mean"
)

// ParseIncomeCSV reads the income CSV and derives the city and state
// groupings. Rows whose Mean does not coerce to a finite number are dropped.
func ParseIncomeCSV(r io.Reader) (CityIncome, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return CityIncome{}, ErrEmptyCSV
	}
	if err != nil {
		return CityIncome{}, fmt.Errorf("data: csv header: %w", err)
	}
	cols := map[string]int{}
	for i, h := range header {
		k := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if _, dup := cols[k]; !dup {
			cols[k] = i
		}
	}
	idx := func(name string) (int, error) {
		i, ok := cols[strings.ToLower(name)]
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
		return i, nil
	}
	iCity, err := idx(ColCity)
	if err != nil {
		return CityIncome{}, err
	}
	iState, err := idx(ColState)
	if err != nil {
		return CityIncome{}, err
	}
	iMean, err := idx(ColMean)
	if err != nil {
		return CityIncome{}, err
	}

	cities, states := newGroup(), newGroup()
	var out CityIncome
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return CityIncome{}, fmt.Errorf("data: csv line %d: %w", line, err)
		}
		if iMean >= len(row) || iCity >= len(row) || iState >= len(row) {
			continue
		}
		v, ok := ParseMeasure(row[iMean])
		if !ok {
			continue
		}
		city := strings.TrimSpace(row[iCity])
		state := strings.TrimSpace(row[iState])
		cities.add(city, state, v)
		states.add(state, "", v)
		out.Rows++
	}
	out.Cities = cities.records()
	out.States = states.records()
	return out, nil
}

// measure accepts a JSON number or a numeric string.
type measure struct {
	v  float64
	ok bool
}

func (m *measure) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*m = measure{}
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		m.v, m.ok = ParseMeasure(s)
		return nil
	}
	m.v, m.ok = ParseMeasure(string(b))
	return nil
}

type rawCity struct {
	City string  `json:"city"`
	Mean measure `json:"mean"`
}

type rawState struct {
	State  string    `json:"state"`
	Mean   measure   `json:"mean"`
	Cities []rawCity `json:"cities"`
}

// ParseStateIncome decodes the income-by-state document. States and cities
// with a non-finite mean are dropped independently.
func ParseStateIncome(r io.Reader) ([]StateIncome, error) {
	var raw []rawState
	if err := json.NewDecoder(r).Decode(&raw); err != nil {
		return nil, fmt.Errorf("data: state income: %w", err)
	}
	out := make([]StateIncome, 0, len(raw))
	for _, s := range raw {
		if !s.Mean.ok {
			continue
		}
		si := StateIncome{Record: Record{Name: strings.TrimSpace(s.State), Mean: s.Mean.v, Count: 1}}
		for _, c := range s.Cities {
			if !c.Mean.ok {
				continue
			}
			si.Cities = append(si.Cities, Record{Name: strings.TrimSpace(c.City), Group: si.Name, Mean: c.Mean.v, Count: 1})
		}
		out = append(out, si)
	}
	return out, nil
}
