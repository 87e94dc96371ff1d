package book

import "ember/internal/money"

// DefaultSnapshotDepth is the default number of price levels per side
// exposed externally.
const DefaultSnapshotDepth = 5

// LevelView is one row of a snapshot: a price and its aggregate remaining
// quantity.
type LevelView struct {
	Price    money.Price `json:"price"`
	Quantity uint64      `json:"quantity"`
}

// Snapshot is a point-in-time top-of-book view. Bids are sorted
// descending by price, asks ascending.
type Snapshot struct {
	Bids []LevelView `json:"bids"`
	Asks []LevelView `json:"asks"`
}

// Snapshot builds a depth-N top-of-book view. Must be called with the
// caller's process lock held, for the same internal-consistency reason
// matching itself must run lock-held.
func (b *Book) Snapshot(depth int) Snapshot {
	if depth <= 0 {
		depth = DefaultSnapshotDepth
	}
	return Snapshot{
		Bids: levelViews(b.bids.Levels(depth)),
		Asks: levelViews(b.asks.Levels(depth)),
	}
}

func levelViews(levels []*Level) []LevelView {
	out := make([]LevelView, len(levels))
	for i, lvl := range levels {
		out[i] = LevelView{Price: lvl.Price, Quantity: lvl.Aggregate}
	}
	return out
}
