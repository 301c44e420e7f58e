package scheduler

import (
	"fmt"

	"github.com/mox-desktop/moxnotify/internal/model"
)

// ViewRange is the half-open window [Start, End) a viewer renders.
// End may temporarily exceed the list length; callers intersect with the
// list when materializing. Width never exceeds MaxVisible.
type ViewRange struct {
	MaxVisible int
	Start      int
	End        int
}

// NewViewRange starts the window at the head, already open to the full
// viewport height, so the first arrivals become visible without any
// explicit view operation.
func NewViewRange(maxVisible int) ViewRange {
	return ViewRange{MaxVisible: maxVisible, End: maxVisible}
}

func (r ViewRange) Width() int {
	return r.End - r.Start
}

func (r ViewRange) String() string {
	return fmt.Sprintf("ViewRange { %d..%d }", r.Start, r.End)
}

// ScrollDownClamped slides the window one step toward the head, clamping
// to the current list length.
func (r *ViewRange) ScrollDownClamped(length int) {
	if length == 0 {
		r.Start = 0
		r.End = 0
		return
	}

	switch {
	case r.End > length:
		if r.Start > 0 {
			r.Start--
		}
		r.End = length
	case r.Start == 0 && r.End-r.Start > 1:
		r.End--
	case r.Start > 0:
		r.Start--
		r.End--
	}
}

// ShowTail jumps the window to the end of the list.
func (r *ViewRange) ShowTail(length int) {
	r.Start = saturatingSub(length, r.MaxVisible)
	r.End = length
}

// ShowHead jumps the window to the start of the list.
func (r *ViewRange) ShowHead() {
	r.Start = 0
	r.End = r.MaxVisible
}

// EnsureVisibleDown grows the window forward so index is inside it.
func (r *ViewRange) EnsureVisibleDown(index int) {
	if index == 0 {
		r.Start = 0
		r.End = r.MaxVisible
	} else if index >= r.End {
		r.End = index + 1
		r.Start = saturatingSub(r.End, r.MaxVisible)
	}
}

// EnsureVisibleUp grows the window backward so index is inside it,
// snapping to the tail when index is the last element.
func (r *ViewRange) EnsureVisibleUp(index, length int) {
	if index+1 == length {
		r.End = length
		r.Start = saturatingSub(r.End, r.MaxVisible)
	} else if index < r.Start {
		r.Start = index
		r.End = r.Start + r.MaxVisible
	}
}

func saturatingSub(a, b int) int {
	if a < b {
		return 0
	}
	return a - b
}

// ViewState is one viewer's window over the live list: the selection,
// the range, and the id set it last rendered.
type ViewState struct {
	// selectedID keeps its last value even after deselection; Next uses
	// it as the anchor for cyclic advancement.
	selectedID uint32
	selected   bool

	Range       ViewRange
	PrevVisible []uint32
}

func NewViewState(maxVisible int) *ViewState {
	return &ViewState{Range: NewViewRange(maxVisible)}
}

// SelectedID returns the current selection, if any.
func (v *ViewState) SelectedID() (uint32, bool) {
	return v.selectedID, v.selected
}

func (v *ViewState) setSelected(id uint32) {
	v.selectedID = id
	v.selected = true
}

// Deselect clears the selection but keeps the anchor id.
func (v *ViewState) Deselect() {
	v.selected = false
}

func indexOf(ids []uint32, id uint32) (int, bool) {
	for i, candidate := range ids {
		if candidate == id {
			return i, true
		}
	}
	return 0, false
}

// Select moves the selection to id, adjusting the window in the
// direction of travel relative to the previous selection; with no
// previous selection the window centers on the target.
func (v *ViewState) Select(ids []uint32, id uint32) {
	newIndex, ok := indexOf(ids, id)
	if !ok {
		return
	}

	oldIndex, hadOld := -1, false
	if v.selected {
		oldIndex, hadOld = indexOf(ids, v.selectedID)
	}

	if newIndex < v.Range.Start || newIndex >= v.Range.End {
		switch {
		case hadOld && newIndex > oldIndex:
			v.Range.EnsureVisibleDown(newIndex)
		case hadOld && newIndex < oldIndex:
			v.Range.EnsureVisibleUp(newIndex, len(ids))
		case !hadOld:
			start := saturatingSub(newIndex, v.Range.MaxVisible/2)
			v.Range.Start = start
			v.Range.End = start + v.Range.MaxVisible
		}
	}

	v.setSelected(id)
}

// Next advances the selection cyclically toward the tail.
func (v *ViewState) Next(ids []uint32) {
	if len(ids) == 0 {
		return
	}

	next := 0
	if index, ok := indexOf(ids, v.selectedID); ok {
		if index+1 < len(ids) {
			next = index + 1
		}
	}

	v.Select(ids, ids[next])
}

// Prev moves the selection cyclically toward the head. It requires an
// active selection, matching viewer key-binding behavior.
func (v *ViewState) Prev(ids []uint32) {
	if !v.selected || len(ids) == 0 {
		return
	}

	prev := len(ids) - 1
	if index, ok := indexOf(ids, v.selectedID); ok && index > 0 {
		prev = index - 1
	}

	v.Select(ids, ids[prev])
}

// Dismiss fixes up selection and window after the element at removedIdx
// was removed; ids is the list after removal. The replacement selection
// prefers the element that slid into the removed slot, falling back to
// the previous one, and the window shrinks if it fell off the right.
func (v *ViewState) Dismiss(ids []uint32, removedID uint32, removedIdx int) {
	if len(ids) == 0 {
		v.selected = false
		v.Range.Start = 0
		v.Range.End = 0
		return
	}

	if v.selected && v.selectedID == removedID {
		i := removedIdx
		if i >= len(ids) {
			i = len(ids) - 1
		}
		v.setSelected(ids[i])
	}

	if v.Range.End > len(ids) {
		v.Range.ScrollDownClamped(len(ids))
	}
}

// Visible materializes the window against the list.
func (v *ViewState) Visible(ids []uint32) []uint32 {
	start, end := v.Range.Start, v.Range.End
	if start > len(ids) {
		start = len(ids)
	}
	if end > len(ids) {
		end = len(ids)
	}
	out := make([]uint32, end-start)
	copy(out, ids[start:end])
	return out
}

// Update recomputes the visible set and returns a viewport update iff it
// differs from what the viewer last rendered.
func (v *ViewState) Update(ids []uint32) (*model.ViewportUpdate, bool) {
	visible := v.Visible(ids)
	if equalIDs(visible, v.PrevVisible) {
		return nil, false
	}
	v.PrevVisible = visible

	update := &model.ViewportUpdate{
		VisibleIDs:  visible,
		BeforeCount: v.Range.Start,
		AfterCount:  saturatingSub(len(ids), v.Range.End),
	}
	if v.selected {
		id := v.selectedID
		update.SelectedID = &id
	}
	return update, true
}

func equalIDs(a, b []uint32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
