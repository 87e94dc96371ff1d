// Package common holds the order book's wire-independent domain types:
// Order, Side and Trade. These are shared by internal/book, internal/engine
// and internal/net so that none of those packages need to agree on a JSON
// shape just to pass an order around.
package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ember/internal/money"
)

// Side is the order's side: Bid (buy, wire value 1) or Ask (sell, wire
// value -1), matching the {"side":1|-1} wire encoding directly so no
// translation table is needed at the boundary.
type Side int8

const (
	Bid Side = 1
	Ask Side = -1
)

func (s Side) String() string {
	switch s {
	case Bid:
		return "BID"
	case Ask:
		return "ASK"
	default:
		return fmt.Sprintf("Side(%d)", int8(s))
	}
}

// Opposite returns the other side, used by the matching core to find the
// resting side an incoming order crosses against.
func (s Side) Opposite() Side {
	return -s
}

// Order is a single resting or incoming limit order. Price is assigned at
// admission and is immutable except via Modify (reprice, losing time
// priority). Remaining is monotonically non-increasing via matching;
// 0 <= Remaining <= OrigQty always holds.
type Order struct {
	ID        uuid.UUID
	Side      Side
	Price     money.Price
	OrigQty   uint64
	Remaining uint64
	Ts        time.Time
}

func (o *Order) String() string {
	return fmt.Sprintf("Order{id=%s side=%s price=%s qty=%d/%d}",
		o.ID, o.Side, o.Price, o.Remaining, o.OrigQty)
}
