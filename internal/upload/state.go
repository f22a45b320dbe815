package upload

// State is one step of the upload workflow.
type State string

const (
	StateIdle                State = "idle"
	StateValidating          State = "validating"
	StateBuildingTags        State = "building_tags"
	StateCommittingItems     State = "committing_items"
	StateCommittingImage     State = "committing_image"
	StatePropagatingBackrefs State = "propagating_backrefs"
	StateDone                State = "done"
	StateFailed              State = "failed"
)

var nextState = map[State]State{
	StateIdle:                StateValidating,
	StateValidating:          StateBuildingTags,
	StateBuildingTags:        StateCommittingItems,
	StateCommittingItems:     StateCommittingImage,
	StateCommittingImage:     StatePropagatingBackrefs,
	StatePropagatingBackrefs: StateDone,
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// canTransition reports whether the workflow may move from one state to another.
func canTransition(from, to State) bool {
	switch {
	case to == StateFailed:
		return from != StateIdle && !from.Terminal()
	case to == StateIdle:
		return from.Terminal()
	default:
		return nextState[from] == to
	}
}

// Transition is delivered to observers on every state change.
type Transition struct {
	UploadID string
	From     State
	To       State
	Err      error
}
