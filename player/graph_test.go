package player

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unorderedProgram() Program {
	return Program{
		ID: "p",
		Modules: []Module{
			{ID: "m2", SequenceOrder: 2, Contents: []Content{
				{ID: "m2c2", SequenceOrder: 20},
				{ID: "m2c1", SequenceOrder: 10},
			}},
			{ID: "m1", SequenceOrder: 1, Contents: []Content{
				{ID: "m1c1", SequenceOrder: 1},
			}},
		},
	}
}

func TestContentGraph_OrdersBySequence(t *testing.T) {
	g := NewContentGraph(unorderedProgram())

	require.True(t, g.Ready())
	assert.Equal(t, 2, g.ModuleCount())
	assert.Equal(t, 1, g.ContentCount(0))
	assert.Equal(t, 2, g.ContentCount(1))
	assert.Equal(t, 3, g.TotalContent())

	c, ok := g.ContentAt(1, 0)
	require.True(t, ok)
	assert.Equal(t, "m2c1", c.ID)

	pos, ok := g.Locate("m2c2")
	require.True(t, ok)
	assert.Equal(t, Position{Module: 1, Content: 1}, pos)
}

func TestContentGraph_DoesNotMutateProgram(t *testing.T) {
	p := unorderedProgram()
	NewContentGraph(p)
	assert.Equal(t, "m2", p.Modules[0].ID)
	assert.Equal(t, "m2c2", p.Modules[0].Contents[0].ID)
}

func TestContentGraph_IsLastContent(t *testing.T) {
	g := NewContentGraph(unorderedProgram())
	assert.True(t, g.IsLastContent(1, 1))
	assert.False(t, g.IsLastContent(1, 0))
	assert.False(t, g.IsLastContent(0, 0))
}

func TestContentGraph_EmptyProgramIsNotReady(t *testing.T) {
	g := NewContentGraph(Program{ID: "empty"})
	assert.False(t, g.Ready())
	assert.Equal(t, 0, g.ModuleCount())
	assert.Equal(t, 0, g.ContentCount(0))
	_, ok := g.ContentAt(0, 0)
	assert.False(t, ok)
	assert.ErrorIs(t, g.Validate(), ErrProgramNotReady)
}

func TestContentGraph_OutOfRange(t *testing.T) {
	g := NewContentGraph(unorderedProgram())
	_, ok := g.ContentAt(5, 0)
	assert.False(t, ok)
	_, ok = g.ContentAt(0, -1)
	assert.False(t, ok)
	assert.Equal(t, 0, g.ContentCount(-1))
}

func TestContentGraph_AfterAndBeforeSkipEmptyModules(t *testing.T) {
	g := NewContentGraph(Program{ID: "p", Modules: []Module{
		{ID: "a", SequenceOrder: 1, Contents: []Content{{ID: "a1", SequenceOrder: 1}}},
		{ID: "b", SequenceOrder: 2},
		{ID: "c", SequenceOrder: 3, Contents: []Content{{ID: "c1", SequenceOrder: 1}}},
	}})

	next, ok := g.After(Position{0, 0})
	require.True(t, ok)
	assert.Equal(t, Position{Module: 2, Content: 0}, next)

	prev, ok := g.Before(Position{2, 0})
	require.True(t, ok)
	assert.Equal(t, Position{Module: 0, Content: 0}, prev)

	_, ok = g.After(Position{2, 0})
	assert.False(t, ok)
	_, ok = g.Before(Position{0, 0})
	assert.False(t, ok)
}

func TestContentGraph_Validate(t *testing.T) {
	tests := []struct {
		name    string
		program Program
		wantErr bool
	}{
		{
			name:    "valid",
			program: unorderedProgram(),
		},
		{
			name: "empty module",
			program: Program{ID: "p", Modules: []Module{
				{ID: "a", SequenceOrder: 1, Contents: []Content{{ID: "a1"}}},
				{ID: "b", SequenceOrder: 2},
			}},
			wantErr: true,
		},
		{
			name: "duplicate module order",
			program: Program{ID: "p", Modules: []Module{
				{ID: "a", SequenceOrder: 1, Contents: []Content{{ID: "a1"}}},
				{ID: "b", SequenceOrder: 1, Contents: []Content{{ID: "b1"}}},
			}},
			wantErr: true,
		},
		{
			name: "duplicate content order",
			program: Program{ID: "p", Modules: []Module{
				{ID: "a", SequenceOrder: 1, Contents: []Content{{ID: "a1", SequenceOrder: 1}, {ID: "a2", SequenceOrder: 1}}},
			}},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewContentGraph(tt.program).Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			var cfg *ConfigurationError
			assert.True(t, errors.As(err, &cfg), "got %v", err)
		})
	}
}
