// Package chord turns a stream of key tokens into command resolutions.
// The dispatcher is a synchronous state machine: Idle until a token opens a
// multi-key chord, Pending while more tokens could still disambiguate, back
// to Idle on resolution, cancellation, or timeout. Timeouts are armed by the
// app as timer messages carrying the dispatcher's generation; a stale
// generation means a real key arrived first and the timer loses.
package chord

import (
	"slices"

	"github.com/zjrosen/tabula/internal/command"
)

// EventKind classifies what a fed token did.
type EventKind int

const (
	// Unbound: the token matched nothing and no chord was open.
	Unbound EventKind = iota
	// Resolved: the token completed a chord; Cmd is the match.
	Resolved
	// Pending: the token extended an ambiguous prefix; Candidates lists
	// the commands still reachable and Gen arms the timeout timer.
	Pending
	// Cancelled: the token (or a timeout, or an explicit Cancel) aborted
	// an open chord. Prefix holds what was abandoned for the status line.
	Cancelled
)

// Event is the outcome of feeding one token.
type Event struct {
	Kind       EventKind
	Cmd        *command.Command
	Candidates []*command.Command
	Prefix     []string
	Gen        int
}

// Dispatcher owns the open chord prefix. Not safe for concurrent use; the
// app drives it from the single bubbletea update loop.
type Dispatcher struct {
	reg    *command.Registry
	prefix []string
	gen    int
}

// New returns a dispatcher resolving against reg.
func New(reg *command.Registry) *Dispatcher {
	return &Dispatcher{reg: reg}
}

// Feed advances the machine with one key token. Applicability is evaluated
// against ctx at resolution time, so a chord opened over one selection can
// resolve differently after the sheet changes underneath it.
func (d *Dispatcher) Feed(token string, ctx command.Context) Event {
	next := append(slices.Clone(d.prefix), token)
	res := d.reg.LookupChord(next, ctx)
	switch res.Kind {
	case command.Exact:
		d.reset()
		return Event{Kind: Resolved, Cmd: res.Cmd}
	case command.Ambiguous:
		d.prefix = next
		d.gen++
		return Event{Kind: Pending, Candidates: res.Candidates, Prefix: slices.Clone(next), Gen: d.gen}
	default:
		if len(d.prefix) > 0 {
			// The token broke an open chord: the chord is cancelled and
			// the token itself is consumed, not re-dispatched.
			abandoned := next
			d.reset()
			return Event{Kind: Cancelled, Prefix: abandoned}
		}
		return Event{Kind: Unbound, Prefix: next}
	}
}

// Timeout reports whether a timer armed at generation gen still applies.
// If so the open chord is cancelled; a stale generation is a no-op because
// a later token already moved the machine on.
func (d *Dispatcher) Timeout(gen int) (Event, bool) {
	if gen != d.gen || len(d.prefix) == 0 {
		return Event{}, false
	}
	abandoned := d.prefix
	d.reset()
	return Event{Kind: Cancelled, Prefix: abandoned}, true
}

// Cancel aborts any open chord. Safe to call when Idle.
func (d *Dispatcher) Cancel() Event {
	if len(d.prefix) == 0 {
		return Event{Kind: Cancelled}
	}
	abandoned := d.prefix
	d.reset()
	return Event{Kind: Cancelled, Prefix: abandoned}
}

// PendingChord reports whether a chord is open and returns its prefix.
func (d *Dispatcher) PendingChord() ([]string, bool) {
	if len(d.prefix) == 0 {
		return nil, false
	}
	return slices.Clone(d.prefix), true
}

// SetPrefix restores an open chord from a session snapshot.
func (d *Dispatcher) SetPrefix(prefix []string) {
	d.prefix = slices.Clone(prefix)
	d.gen++
}

// Generation returns the current timer generation.
func (d *Dispatcher) Generation() int { return d.gen }

func (d *Dispatcher) reset() {
	d.prefix = nil
	d.gen++
}
