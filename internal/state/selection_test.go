package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSelect(t *testing.T) {
	var s Selection
	assert.True(t, s.Empty())

	a, changed := s.Select("Kansas")
	assert.True(t, changed)
	assert.Equal(t, Selection{Name: "Kansas", Version: 1}, a)
	assert.True(t, s.Empty(), "snapshots are values")

	same, changed := a.Select("Kansas")
	assert.False(t, changed)
	assert.Equal(t, a, same)

	kept, changed := a.Select("")
	assert.False(t, changed)
	assert.Equal(t, "Kansas", kept.Name)

	b, changed := a.Select("Iowa")
	assert.True(t, changed)
	assert.Equal(t, uint64(2), b.Version)
	assert.Equal(t, "Iowa", b.Name)
}
