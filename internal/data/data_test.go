package data

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const incomeCSV = `id,State_Name,City,Mean
1,Alabama,Mobile,40000
2,Alabama,Mobile,50000
3,Alabama,Huntsville,70000
4,Texas,Austin,90000
5,Texas,Houston,not-a-number
6,Texas,Dallas,
7,Ohio,Springfield,30000
8,Illinois,Springfield,35000
9,Texas,Waco,NaN
10,Texas,El Paso,+Inf
`

func TestParseMeasure(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 1.5e3 ", 1500, true},
		{"-7.25", -7.25, true},
		{"", 0, false},
		{"   ", 0, false},
		{"abc", 0, false},
		{"$100", 0, false},
		{"1,000", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
		{"-Infinity", 0, false},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			v, ok := ParseMeasure(tc.in)
			assert.Equal(t, tc.ok, ok)
			if tc.ok {
				assert.Equal(t, tc.want, v)
			}
		})
	}
}

func TestParseIncomeCSV_DropsNonFinite(t *testing.T) {
	ci, err := ParseIncomeCSV(strings.NewReader(incomeCSV))
	require.NoError(t, err)
	assert.Equal(t, 6, ci.Rows)
	for _, r := range append(ci.Cities, ci.States...) {
		assert.False(t, math.IsNaN(r.Mean) || math.IsInf(r.Mean, 0), r.Key())
	}
}

func TestParseIncomeCSV_Groupings(t *testing.T) {
	ci, err := ParseIncomeCSV(strings.NewReader(incomeCSV))
	require.NoError(t, err)

	keys := make([]string, 0, len(ci.Cities))
	for _, r := range ci.Cities {
		keys = append(keys, r.Key())
	}
	assert.Equal(t, []string{"Mobile, Alabama", "Huntsville, Alabama", "Austin, Texas", "Springfield, Ohio", "Springfield, Illinois"}, keys)
	assert.Equal(t, 45000.0, ci.Cities[0].Mean)
	assert.Equal(t, 2, ci.Cities[0].Count)

	require.Len(t, ci.States, 4)
	assert.Equal(t, "Alabama", ci.States[0].Name)
	assert.InDelta(t, 53333.333, ci.States[0].Mean, 0.01)
	assert.Equal(t, 90000.0, ci.States[1].Mean)
}

// Re-parsing already normalized output never changes its length.
func TestParseIncomeCSV_Idempotent(t *testing.T) {
	ci, err := ParseIncomeCSV(strings.NewReader(incomeCSV))
	require.NoError(t, err)

	var b strings.Builder
	b.WriteString("City,State_Name,Mean\n")
	for _, r := range ci.Cities {
		b.WriteString(r.Name + "," + r.Group + "," + strconv.FormatFloat(r.Mean, 'g', -1, 64) + "\n")
	}
	again, err := ParseIncomeCSV(strings.NewReader(b.String()))
	require.NoError(t, err)
	assert.Len(t, again.Cities, len(ci.Cities))
}

func TestParseIncomeCSV_Errors(t *testing.T) {
	_, err := ParseIncomeCSV(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrEmptyCSV)

	_, err = ParseIncomeCSV(strings.NewReader("City,Mean\nA,1\n"))
	assert.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), ColState)
}

func TestParseIncomeCSV_HeaderCaseAndBOM(t *testing.T) {
	ci, err := ParseIncomeCSV(strings.NewReader("\ufeffcity, state_name, mean\nReno,Nevada,61000\n"))
	require.NoError(t, err)
	require.Len(t, ci.Cities, 1)
	assert.Equal(t, "Reno, Nevada", ci.Cities[0].Key())
}

func TestParseStateIncome(t *testing.T) {
	doc := `[
	  {"state": "Alabama", "mean": 52000, "cities": [
	    {"city": "Mobile", "mean": 45000},
	    {"city": "Broken", "mean": "n/a"},
	    {"city": "Huntsville", "mean": "70000"}
	  ]},
	  {"state": "Nowhere", "mean": null, "cities": []},
	  {"state": "Texas", "mean": "61000.5"}
	]`
	states, err := ParseStateIncome(strings.NewReader(doc))
	require.NoError(t, err)
	require.Len(t, states, 2)
	assert.Equal(t, "Alabama", states[0].Name)
	require.Len(t, states[0].Cities, 2)
	assert.Equal(t, "Huntsville, Alabama", states[0].Cities[1].Key())
	assert.Equal(t, 70000.0, states[0].Cities[1].Mean)
	assert.Equal(t, 61000.5, states[1].Mean)
	assert.Empty(t, states[1].Cities)

	idx := Index(states)
	assert.Contains(t, idx, "Texas")
	assert.NotContains(t, idx, "Nowhere")
}

func TestParseStateIncome_Malformed(t *testing.T) {
	_, err := ParseStateIncome(strings.NewReader(`{"state":`))
	require.Error(t, err)
}

func TestTopN(t *testing.T) {
	in := []Record{
		{Name: "a", Mean: 1}, {Name: "b", Mean: 5}, {Name: "c", Mean: 3},
		{Name: "d", Mean: 5}, {Name: "e", Mean: 4},
	}
	got := TopN(in, 3)
	names := []string{}
	for _, r := range got {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"b", "d", "e"}, names)
	assert.Equal(t, "a", in[0].Name, "input must not be reordered")
	assert.Len(t, TopN(in, 50), 5)
}

func TestExtent(t *testing.T) {
	_, _, ok := Extent(nil)
	assert.False(t, ok)
	lo, hi, ok := Extent([]Record{{Mean: 3}, {Mean: -1}, {Mean: 9}})
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 9.0, hi)
}

func TestFetcher_HTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/income.csv":
			w.Write([]byte(incomeCSV))
		case "/states.json":
			w.Write([]byte(`[{"state":"Ohio","mean":1,"cities":[]}]`))
		default:
			http.Error(w, "gone", http.StatusNotFound)
		}
	}))
	defer srv.Close()

	f := NewFetcherWithClient(srv.Client())
	ctx := context.Background()

	ci, err := f.FetchCityIncome(ctx, srv.URL+"/income.csv")
	require.NoError(t, err)
	assert.Len(t, ci.States, 4)

	st, err := f.FetchStateIncome(ctx, srv.URL+"/states.json")
	require.NoError(t, err)
	assert.Len(t, st, 1)

	_, err = f.Fetch(ctx, srv.URL+"/missing")
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestFetcher_CancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer srv.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewFetcher(0).Fetch(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFetcher_Files(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "income.csv")
	require.NoError(t, os.WriteFile(p, []byte(incomeCSV), 0o644))
	f := NewFetcher(0)

	b, err := f.Fetch(context.Background(), p)
	require.NoError(t, err)
	assert.Equal(t, incomeCSV, string(b))

	b, err = f.Fetch(context.Background(), "file://"+filepath.ToSlash(p))
	require.NoError(t, err)
	assert.Equal(t, incomeCSV, string(b))

	_, err = f.Fetch(context.Background(), "ftp://example.com/x")
	assert.ErrorIs(t, err, ErrUnsupportedLocator)

	_, err = f.Fetch(context.Background(), filepath.Join(dir, "nope"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
