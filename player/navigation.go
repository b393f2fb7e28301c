package player

import "fmt"

// ItemState is the derived state of one content item.
type ItemState string

const (
	ItemLocked     ItemState = "locked"
	ItemUnlocked   ItemState = "unlocked_incomplete"
	ItemCompleted  ItemState = "completed"
	itemStateError ItemState = ""
)

// NavEvent is an input to the navigation state machine.
type NavEvent int

const (
	NavNext NavEvent = iota
	NavPrevious
	NavJump
)

func (e NavEvent) String() string {
	switch e {
	case NavNext:
		return "next"
	case NavPrevious:
		return "previous"
	case NavJump:
		return "jump"
	default:
		return "unknown"
	}
}

// NavCommand is a navigation request. Target is used by NavJump only.
type NavCommand struct {
	Event  NavEvent
	Target Position
}

// NavOutcome is the result of a transition.
type NavOutcome struct {
	Cursor          Position `json:"cursor"`
	Moved           bool     `json:"moved"`
	ProgramComplete bool     `json:"program_complete"`
}

// CompletionFunc reports whether a content item is completed.
type CompletionFunc func(contentID string) bool

// NavigationController decides which content items are reachable and moves
// the learner's cursor. Lock state is never stored; it is recomputed from
// completion state on every call and only ever looks one item back.
type NavigationController struct {
	graph     *ContentGraph
	completed CompletionFunc
	cursor    Position
}

// NewNavigationController places the cursor at start, which must be a valid
// position in g.
func NewNavigationController(g *ContentGraph, completed CompletionFunc, start Position) (*NavigationController, error) {
	if !g.Ready() {
		return nil, ErrProgramNotReady
	}
	if !g.Contains(start) {
		return nil, fmt.Errorf("%w: start position %s", ErrContentNotFound, start)
	}
	return &NavigationController{graph: g, completed: completed, cursor: start}, nil
}

func (n *NavigationController) Cursor() Position { return n.cursor }

// Locked applies the locking rule to pos.
func (n *NavigationController) Locked(pos Position) (bool, error) {
	if !n.graph.Contains(pos) {
		return false, fmt.Errorf("%w: position %s", ErrContentNotFound, pos)
	}
	if pos.Module == 0 && pos.Content == 0 {
		return false, nil
	}
	if pos.Content > 0 {
		prev, _ := n.graph.ContentAt(pos.Module, pos.Content-1)
		return !n.completed(prev.ID), nil
	}
	prevCount := n.graph.ContentCount(pos.Module - 1)
	if prevCount == 0 {
		mod, _ := n.graph.ModuleAt(pos.Module - 1)
		return false, &ConfigurationError{
			ProgramID: n.graph.ProgramID(),
			Reason:    fmt.Sprintf("module %s precedes %s but has no content", mod.ID, pos),
		}
	}
	prev, _ := n.graph.ContentAt(pos.Module-1, prevCount-1)
	return !n.completed(prev.ID), nil
}

// State returns the derived state of pos.
func (n *NavigationController) State(pos Position) (ItemState, error) {
	locked, err := n.Locked(pos)
	if err != nil {
		return itemStateError, err
	}
	c, _ := n.graph.ContentAt(pos.Module, pos.Content)
	switch {
	case n.completed(c.ID):
		return ItemCompleted, nil
	case locked:
		return ItemLocked, nil
	default:
		return ItemUnlocked, nil
	}
}

// CheckUnlocked returns a LockedContentError when pos is locked.
func (n *NavigationController) CheckUnlocked(pos Position) error {
	locked, err := n.Locked(pos)
	if err != nil {
		return err
	}
	if locked {
		c, _ := n.graph.ContentAt(pos.Module, pos.Content)
		return &LockedContentError{Position: pos, ContentID: c.ID}
	}
	return nil
}

// Transition computes where cmd takes a cursor at from. It has no side
// effects; a rejected command leaves the cursor where it was.
func (n *NavigationController) Transition(from Position, cmd NavCommand) (NavOutcome, error) {
	stay := NavOutcome{Cursor: from}
	switch cmd.Event {
	case NavNext:
		if n.graph.IsLastContent(from.Module, from.Content) {
			c, _ := n.graph.ContentAt(from.Module, from.Content)
			if !n.completed(c.ID) {
				return stay, ErrProgramIncomplete
			}
			stay.ProgramComplete = true
			return stay, nil
		}
		to, ok := n.graph.After(from)
		if !ok {
			return stay, fmt.Errorf("%w: nothing after %s", ErrContentNotFound, from)
		}
		return n.moveTo(from, to)
	case NavPrevious:
		to, ok := n.graph.Before(from)
		if !ok {
			return stay, nil
		}
		return n.moveTo(from, to)
	case NavJump:
		return n.moveTo(from, cmd.Target)
	default:
		return stay, fmt.Errorf("%w: unknown navigation event %d", ErrInvalidTransition, cmd.Event)
	}
}

func (n *NavigationController) moveTo(from, to Position) (NavOutcome, error) {
	if err := n.CheckUnlocked(to); err != nil {
		return NavOutcome{Cursor: from}, err
	}
	return NavOutcome{Cursor: to, Moved: to != from}, nil
}

func (n *NavigationController) apply(cmd NavCommand) (NavOutcome, error) {
	out, err := n.Transition(n.cursor, cmd)
	if err != nil {
		return out, err
	}
	n.cursor = out.Cursor
	return out, nil
}

// Next moves to the following item. At the last item of the last module it
// reports ProgramComplete instead of moving.
func (n *NavigationController) Next() (NavOutcome, error) {
	return n.apply(NavCommand{Event: NavNext})
}

// Previous moves to the preceding item; it does nothing at the first item.
func (n *NavigationController) Previous() (NavOutcome, error) {
	return n.apply(NavCommand{Event: NavPrevious})
}

// JumpTo moves to (m, c) when it is unlocked.
func (n *NavigationController) JumpTo(m, c int) (NavOutcome, error) {
	return n.apply(NavCommand{Event: NavJump, Target: Position{Module: m, Content: c}})
}

// ResumePosition is the first unlocked item that is not completed, or the last
// item when everything is completed.
func (n *NavigationController) ResumePosition() (Position, error) {
	var (
		resume Position
		found  bool
		err    error
	)
	n.graph.Each(func(pos Position, c Content) {
		if found || err != nil {
			return
		}
		var st ItemState
		st, err = n.State(pos)
		if err == nil && st == ItemUnlocked {
			resume, found = pos, true
		}
	})
	if err != nil {
		return Position{}, err
	}
	if !found {
		last, _ := n.graph.Last()
		return last, nil
	}
	return resume, nil
}
