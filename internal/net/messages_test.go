package net

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ember/internal/book"
	"ember/internal/common"
	"ember/internal/money"
)

func mustPrice(t *testing.T, s string) money.Price {
	t.Helper()
	p, err := money.Parse(s)
	require.NoError(t, err)
	return p
}

func TestEncodeTradeBurst_EmptyYieldsNil(t *testing.T) {
	payload, err := EncodeTradeBurst(nil, time.Now())
	require.NoError(t, err)
	assert.Nil(t, payload)
}

func TestEncodeTradeBurst_ShapesTradesArray(t *testing.T) {
	tr := common.Trade{
		ID:         uuid.New(),
		Price:      mustPrice(t, "100.00"),
		Qty:        5,
		BidOrderID: uuid.New(),
		AskOrderID: uuid.New(),
	}
	payload, err := EncodeTradeBurst([]common.Trade{tr}, time.Now())
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"trades"`)
	assert.Contains(t, string(payload), `"quantity":5`)
}

func TestEncodeCancelAck(t *testing.T) {
	id := uuid.New()
	payload, err := EncodeCancelAck(id, true)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"cancel_ack"`)
	assert.Contains(t, string(payload), `"success":true`)
}

func TestEncodeSnapshot_WrapsBidsAndAsks(t *testing.T) {
	snap := book.Snapshot{
		Bids: []book.LevelView{{Price: mustPrice(t, "100.00"), Quantity: 5}},
		Asks: []book.LevelView{{Price: mustPrice(t, "101.00"), Quantity: 3}},
	}
	payload, err := EncodeSnapshot(snap)
	require.NoError(t, err)
	assert.Contains(t, string(payload), `"type":"snapshot"`)
	assert.Contains(t, string(payload), `"bids"`)
	assert.Contains(t, string(payload), `"asks"`)
}
