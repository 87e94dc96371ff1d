package book

import (
	"github.com/google/uuid"

	"ember/internal/common"
	"ember/internal/money"
)

// Level is the FIFO of resting orders at a single price. Head of queue is
// the oldest, highest-priority order. PushBack and PopHead are O(1);
// Remove is O(K) in the level's depth, which is acceptable because
// cancels/modifies are rare relative to aggressive hits and K is
// typically small.
type Level struct {
	Price     money.Price
	queue     []*common.Order
	Aggregate uint64
}

func newLevel(price money.Price) *Level {
	return &Level{Price: price}
}

// PushBack appends an order to the tail of the queue, i.e. it becomes the
// most recently arrived (lowest priority) order at this price.
func (l *Level) PushBack(o *common.Order) {
	l.queue = append(l.queue, o)
	l.Aggregate += o.Remaining
}

// PeekHead returns the oldest order at this level, or nil if empty.
func (l *Level) PeekHead() *common.Order {
	if len(l.queue) == 0 {
		return nil
	}
	return l.queue[0]
}

// PopHead removes and discards the oldest order. Callers must have already
// accounted for its remaining quantity against Aggregate via DecrementHead.
func (l *Level) PopHead() {
	if len(l.queue) == 0 {
		return
	}
	l.queue = l.queue[1:]
}

// DecrementHead reduces both the head order's remaining quantity and the
// level aggregate by qty, flooring the aggregate at zero rather than
// underflowing if qty ever exceeds it.
func (l *Level) DecrementHead(qty uint64) {
	head := l.PeekHead()
	if head == nil {
		return
	}
	head.Remaining -= qty
	if qty > l.Aggregate {
		l.Aggregate = 0
		return
	}
	l.Aggregate -= qty
}

// Empty reports whether the level has no resting orders left.
func (l *Level) Empty() bool {
	return len(l.queue) == 0
}

// Remove splices a specific order out of the queue by ID, used by cancel
// and modify. Returns false if the order was not found at this level.
func (l *Level) Remove(id uuid.UUID) (*common.Order, bool) {
	for i, o := range l.queue {
		if o.ID == id {
			removed := o
			l.queue = append(l.queue[:i], l.queue[i+1:]...)
			if removed.Remaining > l.Aggregate {
				l.Aggregate = 0
			} else {
				l.Aggregate -= removed.Remaining
			}
			return removed, true
		}
	}
	return nil, false
}

// Orders returns the queue in FIFO order. Used by tests; callers must not
// mutate the returned slice.
func (l *Level) Orders() []*common.Order {
	return l.queue
}
