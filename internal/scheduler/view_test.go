package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mox-desktop/moxnotify/internal/model"
)

func idsUpTo(n uint32) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = uint32(i)
	}
	return out
}

func TestViewState_FreshViewerShowsFirstArrivals(t *testing.T) {
	state := NewViewState(3)

	var (
		ids  []uint32
		last *model.ViewportUpdate
	)
	for i := uint32(1); i <= 10; i++ {
		ids = append(ids, i)
		if update, changed := state.Update(ids); changed {
			last = update
		}
	}

	require.NotNil(t, last)
	assert.Equal(t, []uint32{1, 2, 3}, last.VisibleIDs)
	assert.Equal(t, 0, last.BeforeCount)
	assert.Equal(t, 7, last.AfterCount)
	assert.Equal(t, 0, state.Range.Start)
	assert.Equal(t, 3, state.Range.End)
}

func TestViewState_NextWalksWindowForward(t *testing.T) {
	ids := idsUpTo(10)
	state := NewViewState(3)

	for i := 0; i < 5; i++ {
		state.Next(ids)
	}

	selected, ok := state.SelectedID()
	require.True(t, ok)
	assert.Equal(t, uint32(5), selected)
	assert.Equal(t, 3, state.Range.Start)
	assert.Equal(t, 6, state.Range.End)
	assert.Equal(t, []uint32{3, 4, 5}, state.Visible(ids))
}

func TestViewState_PrevWalksWindowBackAndWraps(t *testing.T) {
	ids := idsUpTo(10)
	state := NewViewState(3)

	for i := 0; i < 5; i++ {
		state.Next(ids)
	}

	for i := 0; i < 5; i++ {
		state.Prev(ids)
	}

	selected, ok := state.SelectedID()
	require.True(t, ok)
	assert.Equal(t, uint32(0), selected)
	assert.Equal(t, 0, state.Range.Start)
	assert.Equal(t, 3, state.Range.End)

	// One more wraps to the tail.
	state.Prev(ids)

	selected, ok = state.SelectedID()
	require.True(t, ok)
	assert.Equal(t, uint32(9), selected)
	assert.Equal(t, 7, state.Range.Start)
	assert.Equal(t, 10, state.Range.End)
}

func TestViewState_PrevRequiresSelection(t *testing.T) {
	ids := idsUpTo(5)
	state := NewViewState(3)

	state.Prev(ids)

	_, ok := state.SelectedID()
	assert.False(t, ok)
}

func TestViewState_SelectCentersWithoutPreviousSelection(t *testing.T) {
	ids := idsUpTo(10)
	state := NewViewState(3)

	state.Select(ids, 6)

	selected, ok := state.SelectedID()
	require.True(t, ok)
	assert.Equal(t, uint32(6), selected)
	assert.Equal(t, 5, state.Range.Start)
	assert.Equal(t, 8, state.Range.End)
}

func TestViewState_SelectUnknownIDIsIgnored(t *testing.T) {
	ids := idsUpTo(3)
	state := NewViewState(3)

	state.Select(ids, 42)

	_, ok := state.SelectedID()
	assert.False(t, ok)
}

func TestViewState_DismissSelectsSlidInElement(t *testing.T) {
	// Window over the middle of [1 2 3 4 5], selection on the middle
	// element.
	state := NewViewState(3)
	state.Range.Start = 1
	state.Range.End = 4
	state.setSelected(3)

	// Removing id 3 at index 2: id 4 slides into its slot.
	after := []uint32{1, 2, 4, 5}
	state.Dismiss(after, 3, 2)

	selected, ok := state.SelectedID()
	require.True(t, ok)
	assert.Equal(t, uint32(4), selected)
	assert.Equal(t, 1, state.Range.Start)
	assert.Equal(t, 4, state.Range.End)
}

func TestViewState_DismissAtTailScrollsWindowBack(t *testing.T) {
	// Tail of [1 2 3 4 5] is selected and removed.
	state := NewViewState(3)
	state.Range.Start = 2
	state.Range.End = 5
	state.setSelected(5)

	after := []uint32{1, 2, 3, 4}
	state.Dismiss(after, 5, 4)

	selected, ok := state.SelectedID()
	require.True(t, ok)
	assert.Equal(t, uint32(4), selected)
	assert.Equal(t, 1, state.Range.Start)
	assert.Equal(t, 4, state.Range.End)
	assert.Equal(t, []uint32{2, 3, 4}, state.Visible(after))
}

func TestViewState_DismissLastClearsSelection(t *testing.T) {
	state := NewViewState(3)
	state.Range.End = 1
	state.setSelected(7)

	state.Dismiss(nil, 7, 0)

	_, ok := state.SelectedID()
	assert.False(t, ok)
	assert.Equal(t, 0, state.Range.Width())
}

func TestViewState_UpdateOnlyOnVisibleChange(t *testing.T) {
	ids := idsUpTo(10)
	state := NewViewState(3)

	update, changed := state.Update(ids)
	require.True(t, changed)
	assert.Equal(t, []uint32{0, 1, 2}, update.VisibleIDs)
	assert.Equal(t, 0, update.BeforeCount)
	assert.Equal(t, 7, update.AfterCount)
	assert.Nil(t, update.SelectedID)

	// Same window, no update.
	_, changed = state.Update(ids)
	assert.False(t, changed)

	state.Range.Start = 4
	state.Range.End = 7
	state.setSelected(5)

	update, changed = state.Update(ids)
	require.True(t, changed)
	assert.Equal(t, []uint32{4, 5, 6}, update.VisibleIDs)
	assert.Equal(t, 4, update.BeforeCount)
	assert.Equal(t, 3, update.AfterCount)
	require.NotNil(t, update.SelectedID)
	assert.Equal(t, uint32(5), *update.SelectedID)
}

func TestViewRange_ScrollDownClamped(t *testing.T) {
	r := ViewRange{MaxVisible: 3, Start: 2, End: 5}

	r.ScrollDownClamped(5)
	assert.Equal(t, 1, r.Start)
	assert.Equal(t, 4, r.End)

	// Window past the end of a shrunken list snaps back.
	r = ViewRange{MaxVisible: 3, Start: 2, End: 6}
	r.ScrollDownClamped(4)
	assert.Equal(t, 1, r.Start)
	assert.Equal(t, 4, r.End)

	r = ViewRange{MaxVisible: 3}
	r.ScrollDownClamped(0)
	assert.Equal(t, 0, r.Width())
}
