// Package pages composes the API client, pagination, lazy sections and the
// table renderer into per-entity screens. Each page derives query params
// from its filter and cursor state, issues one list request per change,
// renders through the table, and refetches after mutations.
package pages

import (
	"sync/atomic"

	"registryctl/internal/api"
	"registryctl/internal/session"
)

// Notifier receives the transient success/failure notices pages emit after
// fetches and mutations.
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Env is what every page needs: the client, the session and somewhere to
// send notices.
type Env struct {
	Client  *api.Client
	Session *session.Session
	Notify  Notifier
}

// fetchSeq hands out a monotonically increasing sequence per logical list so
// a late resolution of an older request can be discarded instead of
// overwriting newer state (last-issued wins).
type fetchSeq struct {
	n atomic.Int64
}

func (s *fetchSeq) next() int64    { return s.n.Add(1) }
func (s *fetchSeq) current() int64 { return s.n.Load() }

// stale reports whether seq is no longer the latest issued fetch.
func (s *fetchSeq) stale(seq int64) bool { return seq != s.n.Load() }

// nopNotifier swallows notices; used when a caller passes no Notifier.
type nopNotifier struct{}

func (nopNotifier) Success(string) {}
func (nopNotifier) Error(string)   {}

func (e Env) notify() Notifier {
	if e.Notify == nil {
		return nopNotifier{}
	}
	return e.Notify
}
