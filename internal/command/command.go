// Package command catalogs the named, invertible operations the editor can
// run. Commands are plain data descriptors: a stable name, a palette label,
// default chords, an applicability predicate, and a Run function producing
// deltas and/or an app-level action. The registry resolves chord prefixes
// against a trie and ranks palette searches with fuzzy matching.
package command

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/zjrosen/tabula/internal/grid"
)

// ErrDuplicateName is a registry misconfiguration, fatal at startup.
var ErrDuplicateName = errors.New("command: name already registered")

// ErrChordConflict means a chord is bound twice or shadows another chord's
// prefix. Also fatal at startup.
var ErrChordConflict = errors.New("command: chord conflict")

// ErrInapplicable reports a command rejected by its predicate; the
// document is left unmodified.
var ErrInapplicable = errors.New("command: not applicable here")

// Position is a cursor location in display coordinates.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Context is what a command sees when asked whether it applies and when it
// runs: the document and the current selection.
type Context struct {
	Grid   *grid.Grid
	Cursor Position
}

// Action is an app-level effect a command requests beyond grid deltas.
type Action int

const (
	ActionNone Action = iota
	ActionMoveUp
	ActionMoveDown
	ActionMoveLeft
	ActionMoveRight
	ActionJumpUp
	ActionJumpDown
	ActionJumpLeft
	ActionJumpRight
	ActionHome
	ActionEnd
	ActionHomeRow
	ActionEndRow
	ActionHomeCol
	ActionEndCol
	ActionEdit
	ActionReplace
	ActionUndo
	ActionRedo
	ActionWrite
	ActionRead
	ActionQuit
	ActionTogglePalette
	ActionToggleDebug
	ActionDumpState
)

// Result is what running a command produces: zero or more deltas for the
// undo engine and at most one app-level action.
type Result struct {
	Deltas []grid.Delta
	Action Action
}

// Command is a data-only descriptor. Run must not mutate the grid; it
// reads state and emits deltas (allocating fresh ids is allowed, since ids
// are never reused anyway).
type Command struct {
	// Name is the stable identifier, e.g. "row.insert".
	Name string
	// Label is the human-readable palette entry.
	Label string
	// Chords are the default key sequences bound to this command. Each
	// chord is an ordered list of key tokens in bubbletea notation
	// ("k", "ctrl+s", "alt++", "f2").
	Chords [][]string
	// When reports whether the command applies in the given context.
	// nil means always applicable.
	When func(Context) bool
	// Run produces the command's effect. nil only for commands resolved
	// entirely by the app (none of the builtins need that).
	Run func(Context) (Result, error)
}

// Applicable evaluates the predicate, treating nil as always-true.
func (c *Command) Applicable(ctx Context) bool {
	return c.When == nil || c.When(ctx)
}

// ChordString renders the first bound chord for display, or "" if the
// command is reachable only through the palette.
func (c *Command) ChordString() string {
	if len(c.Chords) == 0 {
		return ""
	}
	return strings.Join(c.Chords[0], " ")
}

// ResolutionKind classifies a chord prefix lookup.
type ResolutionKind int

const (
	// NoMatch: no bound chord starts with the prefix.
	NoMatch ResolutionKind = iota
	// Exact: the prefix is a complete chord for exactly one command.
	Exact
	// Ambiguous: the prefix starts one or more longer chords.
	Ambiguous
)

// Resolution is the outcome of a chord prefix lookup.
type Resolution struct {
	Kind       ResolutionKind
	Cmd        *Command   // set when Kind == Exact
	Candidates []*Command // set when Kind == Ambiguous
}

type trieNode struct {
	cmd      *Command
	children map[string]*trieNode
}

// Registry is the command catalog. Registration order is preserved and
// breaks ties in palette ranking.
type Registry struct {
	order  []*Command
	byName map[string]*Command
	root   *trieNode
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Command),
		root:   &trieNode{children: make(map[string]*trieNode)},
	}
}

// Register adds a command and binds its default chords. Duplicate names
// and chord conflicts are configuration errors, surfaced at startup.
func (r *Registry) Register(c *Command) error {
	if _, ok := r.byName[c.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateName, c.Name)
	}
	for _, chord := range c.Chords {
		if err := r.bind(chord, c); err != nil {
			return err
		}
	}
	r.byName[c.Name] = c
	r.order = append(r.order, c)
	return nil
}

// Rebind replaces a command's chords, e.g. from user configuration.
// The new bindings are matched with the same prefix rule as defaults.
func (r *Registry) Rebind(name string, chords [][]string) error {
	c, ok := r.byName[name]
	if !ok {
		return fmt.Errorf("command: rebind of unknown command %q", name)
	}
	r.unbindAll(c)
	old := c.Chords
	c.Chords = chords
	for _, chord := range chords {
		if err := r.bind(chord, c); err != nil {
			// Roll back to the previous bindings.
			r.unbindAll(c)
			c.Chords = old
			for _, prev := range old {
				_ = r.bind(prev, c)
			}
			return err
		}
	}
	return nil
}

func (r *Registry) bind(chord []string, c *Command) error {
	if len(chord) == 0 {
		return fmt.Errorf("command: empty chord for %s", c.Name)
	}
	node := r.root
	for _, tok := range chord {
		if node.cmd != nil {
			return fmt.Errorf("%w: %v shadowed by %s", ErrChordConflict, chord, node.cmd.Name)
		}
		child, ok := node.children[tok]
		if !ok {
			child = &trieNode{children: make(map[string]*trieNode)}
			node.children[tok] = child
		}
		node = child
	}
	if node.cmd != nil {
		return fmt.Errorf("%w: %v already bound to %s", ErrChordConflict, chord, node.cmd.Name)
	}
	if len(node.children) > 0 {
		return fmt.Errorf("%w: %v is a prefix of a longer chord", ErrChordConflict, chord)
	}
	node.cmd = c
	return nil
}

// unbindAll removes every trie path terminating in c and prunes empty nodes.
func (r *Registry) unbindAll(c *Command) {
	var prune func(n *trieNode) bool
	prune = func(n *trieNode) bool {
		if n.cmd == c {
			n.cmd = nil
		}
		for tok, child := range n.children {
			if prune(child) {
				delete(n.children, tok)
			}
		}
		return n.cmd == nil && len(n.children) == 0
	}
	prune(r.root)
}

// Lookup returns the command registered under name.
func (r *Registry) Lookup(name string) (*Command, bool) {
	c, ok := r.byName[name]
	return c, ok
}

// All returns the commands in registration order.
func (r *Registry) All() []*Command {
	out := make([]*Command, len(r.order))
	copy(out, r.order)
	return out
}

// LookupChord resolves a chord prefix. Commands inapplicable in ctx are
// hidden: an exact match to an inapplicable command reports NoMatch, and
// inapplicable candidates are dropped from ambiguous sets (an ambiguous
// set that empties out degrades to NoMatch).
func (r *Registry) LookupChord(prefix []string, ctx Context) Resolution {
	node := r.root
	for _, tok := range prefix {
		child, ok := node.children[tok]
		if !ok {
			return Resolution{Kind: NoMatch}
		}
		node = child
	}
	if node.cmd != nil {
		if !node.cmd.Applicable(ctx) {
			return Resolution{Kind: NoMatch}
		}
		return Resolution{Kind: Exact, Cmd: node.cmd}
	}
	var candidates []*Command
	r.collect(node, ctx, &candidates)
	if len(candidates) == 0 {
		return Resolution{Kind: NoMatch}
	}
	return Resolution{Kind: Ambiguous, Candidates: candidates}
}

// collect gathers applicable commands under node in registration order.
func (r *Registry) collect(node *trieNode, ctx Context, out *[]*Command) {
	seen := make(map[*Command]bool)
	var walk func(n *trieNode)
	walk = func(n *trieNode) {
		if n.cmd != nil && n.cmd.Applicable(ctx) {
			seen[n.cmd] = true
		}
		for _, child := range n.children {
			walk(child)
		}
	}
	walk(node)
	for _, c := range r.order {
		if seen[c] {
			*out = append(*out, c)
		}
	}
}

// Search ranks applicable commands against a palette query. Exact label
// prefixes come first in registration order, then fuzzy subsequence
// matches by descending score, ties broken by registration order. An
// empty query lists every applicable command in registration order.
func (r *Registry) Search(query string, ctx Context) []*Command {
	applicable := make([]*Command, 0, len(r.order))
	for _, c := range r.order {
		if c.Applicable(ctx) {
			applicable = append(applicable, c)
		}
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return applicable
	}

	q := strings.ToLower(query)
	var prefixed []*Command
	var rest []*Command
	restIdx := make(map[*Command]int)
	for i, c := range applicable {
		if strings.HasPrefix(strings.ToLower(c.Label), q) {
			prefixed = append(prefixed, c)
		} else {
			restIdx[c] = i
			rest = append(rest, c)
		}
	}

	labels := make([]string, len(rest))
	for i, c := range rest {
		labels[i] = c.Label
	}
	matches := fuzzy.Find(query, labels)
	ranked := make([]*Command, 0, len(matches))
	scores := make(map[*Command]int, len(matches))
	for _, m := range matches {
		c := rest[m.Index]
		ranked = append(ranked, c)
		scores[c] = m.Score
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if scores[ranked[i]] != scores[ranked[j]] {
			return scores[ranked[i]] > scores[ranked[j]]
		}
		return restIdx[ranked[i]] < restIdx[ranked[j]]
	})

	return append(prefixed, ranked...)
}
