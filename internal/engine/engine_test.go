package engine

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeJSON(orderID, side, price, qty string) string {
	idField := ""
	if orderID != "" {
		idField = fmt.Sprintf(`"order_id":%q,`, orderID)
	}
	return fmt.Sprintf(`{"action":"place",%s"side":%s,"price":%s,"quantity":%s}`,
		idField, side, price, qty)
}

func TestDispatch_PlaceCrossesAndEmitsTrade(t *testing.T) {
	e := New()

	out, err := e.Dispatch([]byte(placeJSON("", "-1", `"100.00"`, "10")))
	require.NoError(t, err)
	assert.Empty(t, out.Trades)

	out, err = e.Dispatch([]byte(placeJSON("", "1", `"101.00"`, "4")))
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)
	assert.Equal(t, uint64(4), out.Trades[0].Qty)
	require.Len(t, out.Snapshot.Asks, 1)
	assert.Equal(t, uint64(6), out.Snapshot.Asks[0].Quantity)
}

func TestDispatch_SynthesizesMissingOrderID(t *testing.T) {
	e := New()
	out, err := e.Dispatch([]byte(placeJSON("", "1", `"10.00"`, "1")))
	require.NoError(t, err)
	assert.NotEmpty(t, out.Snapshot.Bids)
}

func TestDispatch_CancelUnknownProducesFailureAck(t *testing.T) {
	e := New()
	out, err := e.Dispatch([]byte(`{"action":"cancel","order_id":"3f1c2e1e-1111-4111-8111-111111111111"}`))
	require.NoError(t, err)
	require.NotNil(t, out.CancelAck)
	assert.False(t, out.CancelAck.Success)
}

func TestDispatch_CancelKnownOrderSucceeds(t *testing.T) {
	e := New()
	raw := placeJSON("3f1c2e1e-1111-4111-8111-111111111111", "1", `"10.00"`, "5")
	_, err := e.Dispatch([]byte(raw))
	require.NoError(t, err)

	out, err := e.Dispatch([]byte(`{"action":"cancel","order_id":"3f1c2e1e-1111-4111-8111-111111111111"}`))
	require.NoError(t, err)
	require.NotNil(t, out.CancelAck)
	assert.True(t, out.CancelAck.Success)
	assert.Empty(t, out.Snapshot.Bids)
}

func TestDispatch_ModifyDoesNotReMatch(t *testing.T) {
	e := New()
	id := "3f1c2e1e-1111-4111-8111-111111111111"
	_, err := e.Dispatch([]byte(placeJSON(id, "1", `"10.00"`, "5")))
	require.NoError(t, err)
	out, err := e.Dispatch([]byte(placeJSON("", "-1", `"10.50"`, "2")))
	require.NoError(t, err)
	require.Empty(t, out.Trades)

	// The reprice to 11.00 crosses the resting ask at 10.50, yet no trade
	// is produced and both orders stay on the book.
	out, err = e.Dispatch([]byte(fmt.Sprintf(`{"action":"modify","order_id":%q,"price":"11.00"}`, id)))
	require.NoError(t, err)
	require.NotNil(t, out.ModifyAck)
	assert.True(t, out.ModifyAck.Success)
	assert.Empty(t, out.Trades)
	require.Len(t, out.Snapshot.Bids, 1)
	assert.Equal(t, uint64(5), out.Snapshot.Bids[0].Quantity)
	require.Len(t, out.Snapshot.Asks, 1)

	// Now a crossing ask arrives; this is the only way to trigger a trade
	// after a reprice.
	out, err = e.Dispatch([]byte(placeJSON("", "-1", `"10.50"`, "5")))
	require.NoError(t, err)
	require.Len(t, out.Trades, 1)
	assert.Equal(t, uint64(5), out.Trades[0].Qty)
}

func TestDispatch_UnknownActionIsDropped(t *testing.T) {
	e := New()
	_, err := e.Dispatch([]byte(`{"action":"frobnicate"}`))
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestDispatch_MalformedEventIsDropped(t *testing.T) {
	e := New()
	_, err := e.Dispatch([]byte(`{"action":"place","side":1,"price":"10.00","quantity":-5}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDispatch_MalformedPriceIsDropped(t *testing.T) {
	e := New()
	_, err := e.Dispatch([]byte(`{"action":"place","side":1,"price":"not-a-price","quantity":5}`))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDispatch_InvalidJSONIsDropped(t *testing.T) {
	e := New()
	_, err := e.Dispatch([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformed)
}
