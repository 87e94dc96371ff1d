// Package book implements the in-memory limit order book: price levels,
// the bid/ask side books, the order index, and price-time-priority
// matching. Everything in this package runs under the caller's lock (see
// internal/engine), never spawns a goroutine, and never blocks.
package book

import (
	"github.com/google/uuid"

	"ember/internal/common"
	"ember/internal/money"
)

// Book is the two-sided order book plus its order index. It is not safe
// for concurrent use on its own — the process lock is owned by the caller
// (internal/engine.Engine), not by Book itself, so that matching can run
// lock-held end to end without a second layer of locking.
type Book struct {
	bids  *Side
	asks  *Side
	index map[uuid.UUID]*common.Order
}

// New returns an empty book.
func New() *Book {
	return &Book{
		bids:  newSide(common.Bid),
		asks:  newSide(common.Ask),
		index: make(map[uuid.UUID]*common.Order),
	}
}

func (b *Book) sideBookFor(side common.Side) *Side {
	if side == common.Bid {
		return b.bids
	}
	return b.asks
}

// admit places order into the book and records it in the order index. The
// two must always happen together — this pair of helpers keeps the
// index-bijection invariant a local reading rather than something
// scattered across call sites.
func (b *Book) admit(o *common.Order) {
	b.sideBookFor(o.Side).InsertIntoLevel(o)
	b.index[o.ID] = o
}

// evict removes order id from whichever level it rests on and from the
// order index. Returns the removed order and its side-book, or ok==false
// if the id was not resident.
func (b *Book) evict(id uuid.UUID) (*common.Order, *Side, bool) {
	o, ok := b.index[id]
	if !ok {
		return nil, nil, false
	}
	sb := b.sideBookFor(o.Side)
	lvl := sb.LevelAt(o.Price)
	if lvl != nil {
		lvl.Remove(id)
		sb.DropEmptyLevel(o.Price)
	}
	delete(b.index, id)
	return o, sb, true
}

// Lookup returns the resident order for id, or nil if unknown.
func (b *Book) Lookup(id uuid.UUID) *common.Order {
	return b.index[id]
}

// Place admits a new incoming order, matching it against the opposite
// side under price-time priority first and resting whatever remains.
// incoming must arrive with Remaining == OrigQty.
func (b *Book) Place(incoming *common.Order) []common.Trade {
	trades := b.match(incoming)
	if incoming.Remaining > 0 {
		b.admit(incoming)
	}
	return trades
}

// match runs the matching loop against the opposite side of incoming,
// emitting trades at the resting (passive) order's price. It never
// inserts incoming into its own side — any unfilled remainder is left for
// the caller (Place) to admit.
func (b *Book) match(incoming *common.Order) []common.Trade {
	var trades []common.Trade
	opp := b.sideBookFor(incoming.Side.Opposite())

	for incoming.Remaining > 0 {
		bestPrice, ok := opp.BestPrice()
		if !ok {
			break
		}
		if !crosses(incoming.Side, incoming.Price, bestPrice) {
			break
		}

		lvl := opp.LevelAt(bestPrice)
		resting := lvl.PeekHead()

		qty := min(incoming.Remaining, resting.Remaining)

		trade := makeTrade(incoming, resting, bestPrice, qty)
		trades = append(trades, trade)

		incoming.Remaining -= qty
		lvl.DecrementHead(qty)

		if resting.Remaining == 0 {
			lvl.PopHead()
			delete(b.index, resting.ID)
		}
		if lvl.Empty() {
			opp.DropEmptyLevel(bestPrice)
		}
	}
	return trades
}

// crosses reports whether an incoming order on side at price would cross
// the opposite side's best price.
func crosses(side common.Side, price, bestOpposite money.Price) bool {
	if side == common.Bid {
		return price >= bestOpposite
	}
	return price <= bestOpposite
}

func makeTrade(incoming, resting *common.Order, price money.Price, qty uint64) common.Trade {
	t := common.Trade{
		ID:    uuid.New(),
		Price: price,
		Qty:   qty,
	}
	if incoming.Side == common.Bid {
		t.BidOrderID = incoming.ID
		t.AskOrderID = resting.ID
	} else {
		t.BidOrderID = resting.ID
		t.AskOrderID = incoming.ID
	}
	return t
}

// Cancel removes id from the book entirely. Returns false if id is
// unknown, in which case no state change occurs.
func (b *Book) Cancel(id uuid.UUID) bool {
	_, _, ok := b.evict(id)
	return ok
}

// Modify reprices order id, moving it to the tail of the new price's
// queue — it always loses time priority, even when new price equals the
// old one. Returns false if id is unknown.
//
// This intentionally does NOT re-run matching after the reprice: a
// reprice that would now cross the opposite side sits unmatched until the
// next place event. See DESIGN.md for the rationale.
func (b *Book) Modify(id uuid.UUID, newPrice money.Price) bool {
	o, _, ok := b.evict(id)
	if !ok {
		return false
	}
	o.Price = newPrice
	b.admit(o)
	return true
}
