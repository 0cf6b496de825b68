package embed

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var demo = Widget{
	ID:          "viz1",
	Name:        "Workbook/Sheet",
	Title:       "Prices & Income",
	HostURL:     "https://public.tableau.com/",
	StaticImage: "https://public.tableau.com/static/1.png",
	ScriptURL:   "https://public.tableau.com/javascripts/api/viz_v1.js",
	AspectRatio: 0.75,
}

func TestFragment(t *testing.T) {
	f, err := demo.Fragment()
	require.NoError(t, err)
	s := string(f)
	assert.Contains(t, s, `id="viz1"`)
	assert.Contains(t, s, `value="https%3A%2F%2Fpublic.tableau.com%2F"`)
	assert.Contains(t, s, `alt="Prices &amp; Income"`)
	assert.Regexp(t, `div\.offsetWidth \*\s+0\.75`, s)
	assert.Equal(t, 1, strings.Count(s, "document.createElement(\"script\")"), "activation script inserted once")
	assert.Equal(t, 1, strings.Count(s, "viz_v1.js"))
}

func TestWritePage(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, demo.WritePage(&buf))
	assert.Contains(t, buf.String(), "<title>Prices &amp; Income</title>")
	assert.Contains(t, buf.String(), `class="tableauPlaceholder"`)
}

func TestHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMount(demo).Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tableauViz")
}

func TestMountLifecycle(t *testing.T) {
	m := NewMount(demo)
	assert.NoError(t, m.Close(), "closing before open is fine")

	u, err := m.Open(context.Background())
	require.NoError(t, err)
	assert.Equal(t, u, m.URL())

	_, err = m.Open(context.Background())
	assert.ErrorIs(t, err, ErrMounted)

	c := &http.Client{Timeout: 2 * time.Second}
	resp, err := c.Get(u)
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "viz1")

	require.NoError(t, m.Close())
	assert.Empty(t, m.URL())
	assert.NoError(t, m.Close())

	// remounting acquires a fresh page
	u2, err := m.Open(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, u2)
	require.NoError(t, m.Close())
}

func TestMountReleasedOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	m := NewMount(demo)
	_, err := m.Open(ctx)
	require.NoError(t, err)
	cancel()
	assert.Eventually(t, func() bool { return m.URL() == "" }, 2*time.Second, 10*time.Millisecond)
	assert.NoError(t, m.Close())
}
