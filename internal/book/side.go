package book

import (
	"github.com/tidwall/btree"

	"ember/internal/common"
	"ember/internal/money"
)

// Side is a one-sided book (all bids, or all asks): the price levels for
// that side plus a best-price index over them, reaped lazily instead of
// eagerly on every level removal.
type Side struct {
	side          common.Side
	levels        map[money.Price]*Level
	bestIndex     *btree.BTreeG[money.Price]
	presentPrices map[money.Price]struct{}
}

// newSide builds a one-sided book whose best-price index is ordered by
// matching priority: descending prices for bids, ascending for asks, so
// the index's Min is always the best price.
func newSide(side common.Side) *Side {
	var less func(a, b money.Price) bool
	if side == common.Bid {
		less = func(a, b money.Price) bool { return a > b }
	} else {
		less = func(a, b money.Price) bool { return a < b }
	}
	return &Side{
		side:          side,
		levels:        make(map[money.Price]*Level),
		bestIndex:     btree.NewBTreeG(less),
		presentPrices: make(map[money.Price]struct{}),
	}
}

// BestPrice returns the best (highest bid / lowest ask) live price, or ok
// == false if the side is empty. Lazily prunes stale index entries whose
// level has since been dropped.
func (s *Side) BestPrice() (money.Price, bool) {
	for {
		top, ok := s.bestIndex.Min()
		if !ok {
			return 0, false
		}
		if lvl, present := s.levels[top]; present && !lvl.Empty() {
			return top, true
		}
		// Stale or already-empty entry: reap and keep looking.
		s.bestIndex.Delete(top)
		delete(s.presentPrices, top)
	}
}

// LevelAt returns the live level at price, or nil if none exists.
func (s *Side) LevelAt(price money.Price) *Level {
	return s.levels[price]
}

// InsertIntoLevel creates the level on first use, registers the price in
// the best-price index exactly once (guarded by presentPrices), and
// appends the order to the level's FIFO.
func (s *Side) InsertIntoLevel(o *common.Order) {
	lvl, ok := s.levels[o.Price]
	if !ok {
		lvl = newLevel(o.Price)
		s.levels[o.Price] = lvl
	}
	if _, ok := s.presentPrices[o.Price]; !ok {
		s.bestIndex.Set(o.Price)
		s.presentPrices[o.Price] = struct{}{}
	}
	lvl.PushBack(o)
}

// DropEmptyLevel removes price from levels/presentPrices if its level is
// empty. The best-price index entry is reaped lazily on the next
// BestPrice call, not here — eager reaping would need an indexed heap;
// lazy reaping is simpler and equally correct.
func (s *Side) DropEmptyLevel(price money.Price) {
	lvl, ok := s.levels[price]
	if !ok || !lvl.Empty() {
		return
	}
	delete(s.levels, price)
	delete(s.presentPrices, price)
}

// Levels returns the live levels ordered by matching priority (best
// first), used by the snapshot builder. Stale/empty levels are excluded.
func (s *Side) Levels(depth int) []*Level {
	out := make([]*Level, 0, depth)
	s.bestIndex.Scan(func(price money.Price) bool {
		if lvl, ok := s.levels[price]; ok && !lvl.Empty() {
			out = append(out, lvl)
			if len(out) == depth {
				return false
			}
		}
		return true
	})
	return out
}
