// Package state holds the selection shared by the map and its detail view.
package state

// Selection is an immutable snapshot of the selected category. Version grows
// by one with every change so readers can tell snapshots apart cheaply.
type Selection struct {
	Name    string
	Version uint64
}

// Select returns the snapshot after selecting name and whether it differs
// from s. Empty names and re-selecting the current name leave s unchanged;
// nothing ever clears a selection.
func (s Selection) Select(name string) (Selection, bool) {
	if name == "" || name == s.Name {
		return s, false
	}
	return Selection{Name: name, Version: s.Version + 1}, true
}

// Empty reports whether nothing has been selected yet.
func (s Selection) Empty() bool { return s.Name == "" }
