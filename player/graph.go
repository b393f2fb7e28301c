package player

import (
	"fmt"
	"sort"
)

// ContentGraph is the ordered, index-addressable view of a program. Modules
// and contents are sorted by ascending SequenceOrder. A program with no modules
// yields an empty graph; callers must treat that as "not ready".
type ContentGraph struct {
	programID string
	modules   []Module
	index     map[string]Position
	total     int
}

// NewContentGraph derives a graph from p. p is not modified.
func NewContentGraph(p Program) *ContentGraph {
	g := &ContentGraph{
		programID: p.ID,
		index:     make(map[string]Position),
	}
	if len(p.Modules) == 0 {
		return g
	}

	g.modules = make([]Module, len(p.Modules))
	copy(g.modules, p.Modules)
	sort.SliceStable(g.modules, func(i, j int) bool {
		return g.modules[i].SequenceOrder < g.modules[j].SequenceOrder
	})

	for m := range g.modules {
		contents := make([]Content, len(g.modules[m].Contents))
		copy(contents, g.modules[m].Contents)
		sort.SliceStable(contents, func(i, j int) bool {
			return contents[i].SequenceOrder < contents[j].SequenceOrder
		})
		g.modules[m].Contents = contents
		for c, content := range contents {
			g.index[content.ID] = Position{Module: m, Content: c}
		}
		g.total += len(contents)
	}
	return g
}

// Ready reports whether the graph has at least one module.
func (g *ContentGraph) Ready() bool { return len(g.modules) > 0 }

func (g *ContentGraph) ProgramID() string { return g.programID }

func (g *ContentGraph) ModuleCount() int { return len(g.modules) }

// ContentCount returns the number of contents in module m, or 0 when m is out
// of range.
func (g *ContentGraph) ContentCount(m int) int {
	if m < 0 || m >= len(g.modules) {
		return 0
	}
	return len(g.modules[m].Contents)
}

// TotalContent is the number of content items across all modules.
func (g *ContentGraph) TotalContent() int { return g.total }

func (g *ContentGraph) ModuleAt(m int) (Module, bool) {
	if m < 0 || m >= len(g.modules) {
		return Module{}, false
	}
	return g.modules[m], true
}

func (g *ContentGraph) ContentAt(m, c int) (Content, bool) {
	if c < 0 || c >= g.ContentCount(m) {
		return Content{}, false
	}
	return g.modules[m].Contents[c], true
}

// Contains reports whether pos addresses an existing content item.
func (g *ContentGraph) Contains(pos Position) bool {
	_, ok := g.ContentAt(pos.Module, pos.Content)
	return ok
}

// IsLastContent is true for the last item of the last module.
func (g *ContentGraph) IsLastContent(m, c int) bool {
	last, ok := g.Last()
	return ok && last.Module == m && last.Content == c
}

// Locate finds a content item by id.
func (g *ContentGraph) Locate(contentID string) (Position, bool) {
	pos, ok := g.index[contentID]
	return pos, ok
}

// First returns the first content item in document order.
func (g *ContentGraph) First() (Position, bool) {
	for m := range g.modules {
		if len(g.modules[m].Contents) > 0 {
			return Position{Module: m}, true
		}
	}
	return Position{}, false
}

// Last returns the last content item in document order.
func (g *ContentGraph) Last() (Position, bool) {
	for m := len(g.modules) - 1; m >= 0; m-- {
		if n := len(g.modules[m].Contents); n > 0 {
			return Position{Module: m, Content: n - 1}, true
		}
	}
	return Position{}, false
}

// After returns the item following pos in document order, skipping empty
// modules.
func (g *ContentGraph) After(pos Position) (Position, bool) {
	if pos.Content+1 < g.ContentCount(pos.Module) {
		return Position{Module: pos.Module, Content: pos.Content + 1}, true
	}
	for m := pos.Module + 1; m < len(g.modules); m++ {
		if len(g.modules[m].Contents) > 0 {
			return Position{Module: m}, true
		}
	}
	return Position{}, false
}

// Before returns the item preceding pos in document order, skipping empty
// modules.
func (g *ContentGraph) Before(pos Position) (Position, bool) {
	if pos.Content > 0 {
		return Position{Module: pos.Module, Content: pos.Content - 1}, true
	}
	for m := pos.Module - 1; m >= 0; m-- {
		if n := len(g.modules[m].Contents); n > 0 {
			return Position{Module: m, Content: n - 1}, true
		}
	}
	return Position{}, false
}

// Each calls fn for every content item in document order.
func (g *ContentGraph) Each(fn func(pos Position, c Content)) {
	for m, mod := range g.modules {
		for c, content := range mod.Contents {
			fn(Position{Module: m, Content: c}, content)
		}
	}
}

// Validate reports the first structural problem in the program: an empty
// module, a duplicated sequence order, or a content id used twice.
func (g *ContentGraph) Validate() error {
	if !g.Ready() {
		return ErrProgramNotReady
	}
	seenModules := make(map[int]string, len(g.modules))
	seenContent := make(map[string]bool, g.total)
	for _, mod := range g.modules {
		if other, dup := seenModules[mod.SequenceOrder]; dup {
			return &ConfigurationError{ProgramID: g.programID, Reason: fmt.Sprintf("modules %s and %s share sequence order %d", other, mod.ID, mod.SequenceOrder)}
		}
		seenModules[mod.SequenceOrder] = mod.ID
		if len(mod.Contents) == 0 {
			return &ConfigurationError{ProgramID: g.programID, Reason: fmt.Sprintf("module %s has no content", mod.ID)}
		}
		seenOrders := make(map[int]string, len(mod.Contents))
		for _, c := range mod.Contents {
			if other, dup := seenOrders[c.SequenceOrder]; dup {
				return &ConfigurationError{ProgramID: g.programID, Reason: fmt.Sprintf("contents %s and %s in module %s share sequence order %d", other, c.ID, mod.ID, c.SequenceOrder)}
			}
			seenOrders[c.SequenceOrder] = c.ID
			if seenContent[c.ID] {
				return &ConfigurationError{ProgramID: g.programID, Reason: fmt.Sprintf("content %s appears more than once", c.ID)}
			}
			seenContent[c.ID] = true
		}
	}
	return nil
}
