// Package ordering computes sibling order values for ordered containers
// (columns of a board, cards of a column).
//
// Every function is pure: it takes the current positions of one container
// and returns new positions without touching storage. After any function
// that renumbers, the result is dense: orders are exactly 0..n-1, unique,
// and follow the relative order of the input.
package ordering

import (
	"errors"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Position is one sibling's identity and order value.
type Position struct {
	ID    primitive.ObjectID `json:"id"`
	Order int                `json:"order"`
}

var (
	// ErrIndexOutOfRange is returned when a source index does not address an item.
	ErrIndexOutOfRange = errors.New("ordering: index out of range")
	// ErrUnknownItem is returned when a moved item is not in its source container.
	ErrUnknownItem = errors.New("ordering: item not in container")
)

// AppendAtEnd returns the order for an item appended to a container that
// currently holds n siblings. It is only correct when the container is dense,
// which is why every delete renumbers.
func AppendAtEnd(n int) int {
	if n < 0 {
		return 0
	}
	return n
}

// Sorted returns a copy of items sorted by Order. Items with equal Order keep
// their input order.
func Sorted(items []Position) []Position {
	out := make([]Position, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Renumber sorts items by their current order and reassigns Order = index.
func Renumber(items []Position) []Position {
	out := Sorted(items)
	for i := range out {
		out[i].Order = i
	}
	return out
}

// Sequence assigns Order = index to items in the order given, without sorting.
// Use it when the slice order is already the desired visual order.
func Sequence(items []Position) []Position {
	out := make([]Position, len(items))
	for i, it := range items {
		out[i] = Position{ID: it.ID, Order: i}
	}
	return out
}

// Changed returns the entries of after whose order differs from the order of
// the same id in before (or that are absent from before).
func Changed(before, after []Position) []Position {
	prev := make(map[primitive.ObjectID]int, len(before))
	for _, p := range before {
		prev[p.ID] = p.Order
	}
	var out []Position
	for _, p := range after {
		if o, ok := prev[p.ID]; !ok || o != p.Order {
			out = append(out, p)
		}
	}
	return out
}

// IndexOf returns the position of id in items, or -1.
func IndexOf(items []Position, id primitive.ObjectID) int {
	for i, it := range items {
		if it.ID == id {
			return i
		}
	}
	return -1
}

// Remove deletes id from the container and renumbers the remaining items.
// The boolean reports whether id was present; when it is not, the result is
// still the renumbered container.
func Remove(items []Position, id primitive.ObjectID) ([]Position, bool) {
	rest := make([]Position, 0, len(items))
	found := false
	for _, it := range items {
		if it.ID == id {
			found = true
			continue
		}
		rest = append(rest, it)
	}
	return Renumber(rest), found
}

// Insert places id at index within the renumbered container. index is
// clamped to [0, len(items)], so a negative index prepends and an index past
// the end appends. If id is already present it is moved instead of duplicated.
func Insert(items []Position, id primitive.ObjectID, index int) []Position {
	base, _ := Remove(items, id)
	if index < 0 {
		index = 0
	}
	if index > len(base) {
		index = len(base)
	}
	out := make([]Position, 0, len(base)+1)
	out = append(out, base[:index]...)
	out = append(out, Position{ID: id})
	out = append(out, base[index:]...)
	return Sequence(out)
}

// Reorder moves the item at index from to index to inside one container.
// to is clamped like Insert.
func Reorder(items []Position, from, to int) ([]Position, error) {
	sorted := Renumber(items)
	if from < 0 || from >= len(sorted) {
		return nil, ErrIndexOutOfRange
	}
	return Insert(sorted, sorted[from].ID, to), nil
}

// Move relocates id from src to dst at toIndex. Both returned containers are
// dense; the moved item ends at exactly the clamped toIndex in dst and every
// dst item previously at or after that index shifts up by one.
func Move(src, dst []Position, id primitive.ObjectID, toIndex int) ([]Position, []Position, error) {
	newSrc, found := Remove(src, id)
	if !found {
		return nil, nil, ErrUnknownItem
	}
	newDst := Insert(dst, id, toIndex)
	return newSrc, newDst, nil
}

// Overwrite applies explicit (id, order) assignments verbatim. Ids that are
// not in items are ignored, and the result is NOT renumbered: the caller
// vouches for the permutation. The returned slice is sorted by the new order.
func Overwrite(items []Position, assignments []Position) []Position {
	next := make(map[primitive.ObjectID]int, len(assignments))
	for _, a := range assignments {
		next[a.ID] = a.Order
	}
	out := make([]Position, len(items))
	for i, it := range items {
		if o, ok := next[it.ID]; ok {
			it.Order = o
		}
		out[i] = it
	}
	return Sorted(out)
}

// IsDense reports whether the orders in items are exactly {0..n-1}.
func IsDense(items []Position) bool {
	seen := make([]bool, len(items))
	for _, it := range items {
		if it.Order < 0 || it.Order >= len(items) || seen[it.Order] {
			return false
		}
		seen[it.Order] = true
	}
	return true
}
