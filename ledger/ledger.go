// Package ledger keeps track of soft-deleted files awaiting physical reclamation.
package ledger

// Ledger is an ordered set of pending handles. It is not bounded.
type Ledger[T comparable] struct {
	order   []T
	members map[T]struct{}
}

// New returns new ledger.
func New[T comparable]() *Ledger[T] {
	return &Ledger[T]{
		members: map[T]struct{}{},
	}
}

// Push appends the handle. False is returned if handle is already pending.
func (l *Ledger[T]) Push(handle T) bool {
	if l.Contains(handle) {
		return false
	}
	l.members[handle] = struct{}{}
	l.order = append(l.order, handle)
	return true
}

// Remove removes the handle. False is returned if handle is not pending.
func (l *Ledger[T]) Remove(handle T) bool {
	if !l.Contains(handle) {
		return false
	}
	delete(l.members, handle)
	for i, h := range l.order {
		if h == handle {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains tells if handle is pending.
func (l *Ledger[T]) Contains(handle T) bool {
	_, exists := l.members[handle]
	return exists
}

// Len returns the number of pending handles.
func (l *Ledger[T]) Len() int {
	return len(l.order)
}

// Entries returns pending handles in the order they were pushed.
func (l *Ledger[T]) Entries() []T {
	return append([]T(nil), l.order...)
}

// Clear removes all the handles.
func (l *Ledger[T]) Clear() {
	l.order = nil
	clear(l.members)
}
