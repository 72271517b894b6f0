package runtime

import (
	"slices"

	"github.com/aretw0/arbor/pkg/domain"
)

// Reduce applies action to a page history and returns the new history.
//
// Undo and Redo walk the past and future stacks. Every other action goes through
// Apply: when the tree changes, the previous present is pushed to the past (dropping
// the oldest entry beyond limit) and the future is cleared. Unchanged trees leave
// the history as it was.
func Reduce(h domain.History, action domain.Action, limit int) (domain.History, bool, error) {
	if limit <= 0 {
		limit = domain.DefaultHistoryLimit
	}

	switch action.(type) {
	case domain.Undo:
		if !h.CanUndo() {
			return h, false, nil
		}
		last := len(h.Past) - 1
		return domain.History{
			Past:    slices.Clone(h.Past[:last]),
			Present: h.Past[last],
			Future:  append([][]domain.Component{h.Present}, h.Future...),
		}, true, nil
	case domain.Redo:
		if !h.CanRedo() {
			return h, false, nil
		}
		return domain.History{
			Past:    append(slices.Clone(h.Past), h.Present),
			Present: h.Future[0],
			Future:  slices.Clone(h.Future[1:]),
		}, true, nil
	}

	next, changed, err := Apply(h.Present, action)
	if err != nil || !changed {
		return h, false, err
	}

	past := append(slices.Clone(h.Past), h.Present)
	if len(past) > limit {
		past = past[len(past)-limit:]
	}
	return domain.History{
		Past:    past,
		Present: next,
		Future:  [][]domain.Component{},
	}, true, nil
}
