// internal/client/boardview/state.go
package boardview

// State is where a projection is in the drag gesture lifecycle.
type State int

const (
	// Idle: no gesture in progress, or the last one failed and the board
	// was refetched.
	Idle State = iota
	// Dragging: an item has been picked up; nothing has changed yet.
	Dragging
	// OptimisticallyApplied: the drop was applied locally and persistence
	// calls are in flight.
	OptimisticallyApplied
	// Reconciled: the server's echo has replaced the optimistic guess.
	Reconciled
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Dragging:
		return "dragging"
	case OptimisticallyApplied:
		return "optimistically_applied"
	case Reconciled:
		return "reconciled"
	}
	return "unknown"
}

// Kind says what is being dragged.
type Kind int

const (
	ColumnItem Kind = iota
	CardItem
)

func (k Kind) String() string {
	if k == ColumnItem {
		return "column"
	}
	return "card"
}
