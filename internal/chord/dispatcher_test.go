package chord

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/tabula/internal/command"
	"github.com/zjrosen/tabula/internal/grid"
)

// twoChords registers [a b] and [a c] so "a" opens an ambiguous chord.
func twoChords(t *testing.T) (*Dispatcher, command.Context) {
	t.Helper()
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Command{Name: "ab", Label: "AB", Chords: [][]string{{"a", "b"}}}))
	require.NoError(t, r.Register(&command.Command{Name: "ac", Label: "AC", Chords: [][]string{{"a", "c"}}}))
	return New(r), command.Context{Grid: grid.New()}
}

func TestFeedResolvesSingleToken(t *testing.T) {
	r := command.NewRegistry()
	require.NoError(t, r.Register(&command.Command{Name: "x", Label: "X", Chords: [][]string{{"x"}}}))
	d := New(r)
	ctx := command.Context{Grid: grid.New()}

	ev := d.Feed("x", ctx)
	require.Equal(t, Resolved, ev.Kind)
	require.Equal(t, "x", ev.Cmd.Name)
	_, open := d.PendingChord()
	require.False(t, open)
}

func TestFeedOpensAndResolvesChord(t *testing.T) {
	d, ctx := twoChords(t)

	ev := d.Feed("a", ctx)
	require.Equal(t, Pending, ev.Kind)
	require.Len(t, ev.Candidates, 2)
	require.Equal(t, []string{"a"}, ev.Prefix)

	ev = d.Feed("b", ctx)
	require.Equal(t, Resolved, ev.Kind)
	require.Equal(t, "ab", ev.Cmd.Name)
	_, open := d.PendingChord()
	require.False(t, open)
}

func TestFeedCancelsOnNonMatchingContinuation(t *testing.T) {
	d, ctx := twoChords(t)

	require.Equal(t, Pending, d.Feed("a", ctx).Kind)
	ev := d.Feed("d", ctx)
	require.Equal(t, Cancelled, ev.Kind)
	require.Equal(t, []string{"a", "d"}, ev.Prefix)

	// The cancelling token was consumed; the machine is Idle again.
	_, open := d.PendingChord()
	require.False(t, open)
	require.Equal(t, Unbound, d.Feed("d", ctx).Kind)
}

func TestUnboundTokenWhenIdle(t *testing.T) {
	d, ctx := twoChords(t)
	ev := d.Feed("z", ctx)
	require.Equal(t, Unbound, ev.Kind)
	require.Equal(t, []string{"z"}, ev.Prefix)
}

func TestTimeoutCancelsOpenChord(t *testing.T) {
	d, ctx := twoChords(t)
	ev := d.Feed("a", ctx)
	require.Equal(t, Pending, ev.Kind)

	got, ok := d.Timeout(ev.Gen)
	require.True(t, ok)
	require.Equal(t, Cancelled, got.Kind)
	require.Equal(t, []string{"a"}, got.Prefix)
	_, open := d.PendingChord()
	require.False(t, open)
}

func TestStaleTimeoutIsIgnored(t *testing.T) {
	d, ctx := twoChords(t)
	first := d.Feed("a", ctx)
	require.Equal(t, Pending, first.Kind)

	// The chord resolves before the timer fires.
	require.Equal(t, Resolved, d.Feed("b", ctx).Kind)
	_, ok := d.Timeout(first.Gen)
	require.False(t, ok)

	// A fresh chord opened after the old timer must not be cancelled by it.
	second := d.Feed("a", ctx)
	require.Equal(t, Pending, second.Kind)
	require.NotEqual(t, first.Gen, second.Gen)
	_, ok = d.Timeout(first.Gen)
	require.False(t, ok)
	prefix, open := d.PendingChord()
	require.True(t, open)
	require.Equal(t, []string{"a"}, prefix)
}

func TestCancelIdleIsIdempotent(t *testing.T) {
	d, ctx := twoChords(t)
	ev := d.Cancel()
	require.Equal(t, Cancelled, ev.Kind)
	require.Empty(t, ev.Prefix)

	// State is unchanged: the next token behaves as from Idle.
	require.Equal(t, Pending, d.Feed("a", ctx).Kind)
}

func TestApplicabilityCheckedAtResolution(t *testing.T) {
	r := command.NewRegistry()
	applicable := true
	require.NoError(t, r.Register(&command.Command{
		Name:   "ab",
		Label:  "AB",
		Chords: [][]string{{"a", "b"}},
		When:   func(command.Context) bool { return applicable },
	}))
	require.NoError(t, r.Register(&command.Command{Name: "ac", Label: "AC", Chords: [][]string{{"a", "c"}}}))
	d := New(r)
	ctx := command.Context{Grid: grid.New()}

	require.Equal(t, Pending, d.Feed("a", ctx).Kind)
	applicable = false
	// The completed chord points at a now-inapplicable command.
	require.Equal(t, Cancelled, d.Feed("b", ctx).Kind)
}

func TestSetPrefixRestoresOpenChord(t *testing.T) {
	d, ctx := twoChords(t)
	d.SetPrefix([]string{"a"})

	prefix, open := d.PendingChord()
	require.True(t, open)
	require.Equal(t, []string{"a"}, prefix)

	ev := d.Feed("c", ctx)
	require.Equal(t, Resolved, ev.Kind)
	require.Equal(t, "ac", ev.Cmd.Name)
}
