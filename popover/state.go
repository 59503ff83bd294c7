// Package popover holds the model picker state of a session and builds the
// view the renderer turns into the popover grid.
package popover

import (
	"strings"

	"chatui/models"
)

// State is the popover state of one session. It carries no lock of its own;
// the owning session serializes access.
type State struct {
	Open         bool
	Expanded     bool
	MediaType    models.MediaType
	Query        string
	OpenSections map[string]bool
	LoadError    string
}

// NewState returns a closed, collapsed popover on the text tab
func NewState() *State {
	return &State{
		MediaType:    models.MediaLLM,
		OpenSections: make(map[string]bool),
	}
}

// Toggle opens or closes the popover and reports whether it is now open
func (s *State) Toggle() bool {
	s.Open = !s.Open
	return s.Open
}

// ToggleExpanded switches between favorites only and all providers
func (s *State) ToggleExpanded() {
	s.Expanded = !s.Expanded
}

// ToggleSection opens or collapses a provider section. The flag survives
// re-renders until toggled again.
func (s *State) ToggleSection(providerName string) {
	if s.OpenSections == nil {
		s.OpenSections = make(map[string]bool)
	}
	s.OpenSections[providerName] = !s.OpenSections[providerName]
}

// SetQuery sets the search filter
func (s *State) SetQuery(q string) {
	s.Query = q
}

// SwitchMediaType moves the popover to another media tab and selects the
// first card shown there. The selection is left alone when the tab is empty.
func (s *State) SwitchMediaType(mediaType models.MediaType, cat *models.Catalog, sel *models.Selection, opts Options) {
	s.MediaType = mediaType
	s.Query = ""

	if d, ok := firstCard(cat, mediaType, s.Expanded, opts); ok {
		*sel = models.SelectionFor(mediaType, d)
	}
}

// Snapshot returns a copy that can be read after the session lock is released
func (s *State) Snapshot() State {
	c := *s
	c.OpenSections = make(map[string]bool, len(s.OpenSections))
	for k, v := range s.OpenSections {
		c.OpenSections[k] = v
	}
	return c
}

// matches reports whether a card survives the search filter
func matches(query string, d models.Descriptor) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(d.ModelName), q) ||
		strings.Contains(strings.ToLower(d.Provider), q)
}
