// Package engine is the event dispatcher: it decodes one inbound JSON
// event at a time, serializes access to the book behind a single process
// lock, invokes the matching core, and returns the trades and/or ack the
// caller should publish, plus a fresh snapshot.
package engine

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"ember/internal/book"
	"ember/internal/common"
)

// Ack is the outcome of a cancel or modify request.
type Ack struct {
	OrderID uuid.UUID
	Success bool
}

// Outcome is everything a single Dispatch call produced. Trades is
// non-empty only for a "place" that crossed the book. CancelAck/ModifyAck
// are set only for their respective actions. Snapshot is always populated
// after any event that reached the book, whether or not it changed state.
type Outcome struct {
	Trades    []common.Trade
	CancelAck *Ack
	ModifyAck *Ack
	Snapshot  book.Snapshot
}

// Engine owns the single-instrument order book and the process lock
// serializing all access to it. It is the only component that ever
// touches the book; subscriber fan-out lives elsewhere (internal/ws) and
// is independently synchronized.
type Engine struct {
	mu            sync.Mutex
	book          *book.Book
	snapshotDepth int
}

// New returns an Engine over an empty book.
func New() *Engine {
	return &Engine{
		book:          book.New(),
		snapshotDepth: book.DefaultSnapshotDepth,
	}
}

// Dispatch decodes and processes a single inbound event. Malformed events
// and unknown actions return an error and produce no Outcome — the caller
// must not publish anything for them.
func (e *Engine) Dispatch(raw []byte) (Outcome, error) {
	env, err := parseEnvelope(raw)
	if err != nil {
		log.Error().Err(err).Str("event", string(raw)).Msg("dropping malformed event")
		return Outcome{}, err
	}

	switch env.Action {
	case ActionPlace:
		return e.dispatchPlace(env)
	case ActionCancel:
		return e.dispatchCancel(env)
	case ActionModify:
		return e.dispatchModify(env)
	default:
		err := fmt.Errorf("%w: %q", ErrUnknownAction, env.Action)
		log.Error().Err(err).Msg("dropping event with unknown action")
		return Outcome{}, err
	}
}

func (e *Engine) dispatchPlace(env envelope) (Outcome, error) {
	pe, err := env.toPlaceEvent()
	if err != nil {
		log.Error().Err(err).Msg("dropping malformed place event")
		return Outcome{}, err
	}

	incoming := &common.Order{
		ID:        pe.orderID,
		Side:      pe.side,
		Price:     pe.price,
		OrigQty:   pe.qty,
		Remaining: pe.qty,
		Ts:        time.Now(),
	}

	e.mu.Lock()
	trades := e.book.Place(incoming)
	snap := e.book.Snapshot(e.snapshotDepth)
	e.mu.Unlock()

	return Outcome{Trades: trades, Snapshot: snap}, nil
}

func (e *Engine) dispatchCancel(env envelope) (Outcome, error) {
	ie, err := env.toIDEvent()
	if err != nil {
		log.Error().Err(err).Msg("dropping malformed cancel event")
		return Outcome{}, err
	}

	e.mu.Lock()
	ok := e.book.Cancel(ie.orderID)
	snap := e.book.Snapshot(e.snapshotDepth)
	e.mu.Unlock()

	if !ok {
		log.Warn().Str("order_id", ie.orderID.String()).Msg("cancel: unknown order")
	}
	return Outcome{
		CancelAck: &Ack{OrderID: ie.orderID, Success: ok},
		Snapshot:  snap,
	}, nil
}

func (e *Engine) dispatchModify(env envelope) (Outcome, error) {
	me, err := env.toModifyEvent()
	if err != nil {
		log.Error().Err(err).Msg("dropping malformed modify event")
		return Outcome{}, err
	}

	e.mu.Lock()
	// Reprice only; does not re-run matching. See book.Book.Modify's doc
	// comment and DESIGN.md.
	ok := e.book.Modify(me.orderID, me.price)
	snap := e.book.Snapshot(e.snapshotDepth)
	e.mu.Unlock()

	if !ok {
		log.Warn().Str("order_id", me.orderID.String()).Msg("modify: unknown order")
	}
	return Outcome{
		ModifyAck: &Ack{OrderID: me.orderID, Success: ok},
		Snapshot:  snap,
	}, nil
}

// Snapshot takes a fresh top-of-book view under the process lock,
// independent of any inbound event. Used by the ~1Hz idle-book timer.
func (e *Engine) Snapshot() book.Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.book.Snapshot(e.snapshotDepth)
}
