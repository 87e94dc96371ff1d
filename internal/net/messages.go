// Package net builds the outbound JSON wire shapes published to the bus
// and to local snapshot subscribers, and orchestrates the bus/engine/ws
// wiring that drives them.
package net

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"ember/internal/book"
	"ember/internal/common"
	"ember/internal/money"
)

// TradeView is one trade as it appears in an outbound trade burst. Price
// marshals through money.Price's own MarshalJSON, so the two-decimal-digit
// wire form never round-trips through a float64 comparison.
type TradeView struct {
	UniqueID           uuid.UUID   `json:"unique_id"`
	ExecutionTimestamp string      `json:"execution_timestamp"`
	Price              money.Price `json:"price"`
	Quantity           uint64      `json:"quantity"`
	BidOrderID         uuid.UUID   `json:"bid_order_id"`
	AskOrderID         uuid.UUID   `json:"ask_order_id"`
}

// TradeBurst is the outbound payload for one or more trades produced by a
// single place event, in the order the matching loop generated them.
type TradeBurst struct {
	Trades []TradeView `json:"trades"`
}

// EncodeTradeBurst renders trades onto the wire. Returns nil, nil if
// trades is empty — callers should not publish an empty burst.
func EncodeTradeBurst(trades []common.Trade, at time.Time) ([]byte, error) {
	if len(trades) == 0 {
		return nil, nil
	}
	views := make([]TradeView, len(trades))
	for i, t := range trades {
		views[i] = TradeView{
			UniqueID:           t.ID,
			ExecutionTimestamp: at.UTC().Format(time.RFC3339Nano),
			Price:              t.Price,
			Quantity:           t.Qty,
			BidOrderID:         t.BidOrderID,
			AskOrderID:         t.AskOrderID,
		}
	}
	return json.Marshal(TradeBurst{Trades: views})
}

type ackPayload struct {
	OrderID uuid.UUID `json:"order_id"`
	Success bool      `json:"success"`
}

// EncodeCancelAck renders a cancel acknowledgement.
func EncodeCancelAck(orderID uuid.UUID, success bool) ([]byte, error) {
	return json.Marshal(struct {
		CancelAck ackPayload `json:"cancel_ack"`
	}{ackPayload{OrderID: orderID, Success: success}})
}

// EncodeModifyAck renders a modify acknowledgement.
func EncodeModifyAck(orderID uuid.UUID, success bool) ([]byte, error) {
	return json.Marshal(struct {
		ModifyAck ackPayload `json:"modify_ack"`
	}{ackPayload{OrderID: orderID, Success: success}})
}

// EncodeSnapshot renders a top-of-book snapshot for local subscribers:
// {"type":"snapshot","data":{"bids":[...],"asks":[...]}}. book.Snapshot's
// own JSON tags carry the wire shape, so there is nothing left to do here
// but wrap it under "type"/"data".
func EncodeSnapshot(snap book.Snapshot) ([]byte, error) {
	return json.Marshal(struct {
		Type string        `json:"type"`
		Data book.Snapshot `json:"data"`
	}{
		Type: "snapshot",
		Data: snap,
	})
}
