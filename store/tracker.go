package store

import (
	"slices"
	"time"
)

// callTracker decides when an effect body runs.
//
// A request bumps CallID and replaces PendingArgs. The runner observes a
// status and starts a body iff its CallID differs from the last observed one
// and no body of that effect is in flight. Requests made while a body runs
// are picked up when it settles, with whatever PendingArgs are latest then.
// The caller serialises access.
type callTracker struct {
	observed map[string]uint64
	inFlight map[string]time.Time
}

func newCallTracker() *callTracker {
	return &callTracker{
		observed: make(map[string]uint64),
		inFlight: make(map[string]time.Time),
	}
}

// request returns st updated with a new invocation request.
func (t *callTracker) request(st EffectStatus, args []any) EffectStatus {
	st.CallID++
	st.PendingArgs = slices.Clone(args)
	if st.PendingArgs == nil {
		st.PendingArgs = []any{}
	}
	return st
}

// observe consumes st if it carries an unseen CallID and nothing is running.
func (t *callTracker) observe(name string, st EffectStatus) ([]any, bool) {
	if st.CallID == t.observed[name] {
		return nil, false
	}
	if _, running := t.inFlight[name]; running {
		return nil, false
	}
	t.observed[name] = st.CallID
	t.inFlight[name] = time.Now()
	return st.PendingArgs, true
}

// settle ends the in-flight run of name and reports when it started.
func (t *callTracker) settle(name string) time.Time {
	started := t.inFlight[name]
	delete(t.inFlight, name)
	return started
}

// idle reports whether every request in statuses has been run to completion.
func (t *callTracker) idle(statuses map[string]EffectStatus) bool {
	if len(t.inFlight) > 0 {
		return false
	}
	for name, st := range statuses {
		if st.CallID != t.observed[name] {
			return false
		}
	}
	return true
}
