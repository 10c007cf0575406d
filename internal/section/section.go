// Package section implements the lazy collapsible section: a region that
// defers its data fetch until the first user-triggered expansion.
package section

import "context"

// State is the visible state of a section.
type State int

const (
	// CollapsedUnloaded is the initial state: closed, never expanded.
	CollapsedUnloaded State = iota
	// CollapsedLoaded is closed after at least one expansion.
	CollapsedLoaded
	// ExpandedLoading is open with the first load still in flight.
	ExpandedLoading
	// ExpandedLoaded is open with content available.
	ExpandedLoaded
)

// Loader fetches a section's content on first expansion.
type Loader func(ctx context.Context) error

// Section tracks one collapsible region. Expanding for the first time runs
// the loader exactly once per lifetime; re-expanding after a collapse never
// refetches. Loading may be owned externally (parent fetches and flips the
// flag) or internally; an externally supplied flag wins.
type Section struct {
	open            bool
	hasExpanded     bool
	internalLoading bool
	externalLoading *bool
	loader          Loader
	loadErr         error
}

// Option configures a Section.
type Option func(*Section)

// WithLoader sets the one-time first-expand loader.
func WithLoader(loader Loader) Option {
	return func(s *Section) { s.loader = loader }
}

// WithExternalLoading hands ownership of the loading flag to the parent.
// The pointer is read on every State call and overrides internal tracking.
func WithExternalLoading(flag *bool) Option {
	return func(s *Section) { s.externalLoading = flag }
}

// New builds a section. A default-open section performs its one-time load
// immediately instead of waiting for a user click.
func New(ctx context.Context, defaultOpen bool, opts ...Option) *Section {
	s := &Section{}
	for _, opt := range opts {
		opt(s)
	}
	if defaultOpen {
		s.open = true
		s.load(ctx)
	}
	return s
}

// SetOpen opens or closes the section. Opening for the first time triggers
// the loader and permanently marks the section as expanded.
func (s *Section) SetOpen(ctx context.Context, open bool) {
	s.open = open
	if open && !s.hasExpanded {
		s.load(ctx)
	}
}

// Toggle flips the open state.
func (s *Section) Toggle(ctx context.Context) {
	s.SetOpen(ctx, !s.open)
}

func (s *Section) load(ctx context.Context) {
	s.hasExpanded = true
	if s.loader == nil {
		return
	}
	s.internalLoading = true
	s.loadErr = s.loader(ctx)
	s.internalLoading = false
}

// Open reports whether the section is currently expanded.
func (s *Section) Open() bool { return s.open }

// HasExpanded reports whether the section was ever expanded; it stays true
// across collapses.
func (s *Section) HasExpanded() bool { return s.hasExpanded }

// Err returns the error from the one-time load, if any.
func (s *Section) Err() error { return s.loadErr }

// Loading reports the effective loading flag, preferring the external one.
func (s *Section) Loading() bool {
	if s.externalLoading != nil {
		return *s.externalLoading
	}
	return s.internalLoading
}

// State derives the section's visible state.
func (s *Section) State() State {
	switch {
	case s.open && s.Loading():
		return ExpandedLoading
	case s.open:
		return ExpandedLoaded
	case s.hasExpanded:
		return CollapsedLoaded
	default:
		return CollapsedUnloaded
	}
}
