package engine

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"ember/internal/common"
	"ember/internal/money"
)

// Action is the verb carried by an inbound event.
type Action string

const (
	ActionPlace  Action = "place"
	ActionCancel Action = "cancel"
	ActionModify Action = "modify"
)

var (
	// ErrUnknownAction is returned when action is not one of
	// place/cancel/modify. The caller drops the event and logs; it never
	// crashes the dispatcher.
	ErrUnknownAction = errors.New("unknown action")
	// ErrMalformed wraps any event that fails field validation. The event
	// is dropped with no ack.
	ErrMalformed = errors.New("malformed event")
)

// envelope is the minimal shape every inbound event shares, used only to
// discriminate on Action before parsing the rest.
type envelope struct {
	Action  Action          `json:"action"`
	OrderID json.RawMessage `json:"order_id,omitempty"`
	Side    *int8           `json:"side,omitempty"`
	Price   json.RawMessage `json:"price,omitempty"`
	Qty     *int64          `json:"quantity,omitempty"`
}

// placeEvent holds the parsed, validated fields of a "place" event.
type placeEvent struct {
	orderID uuid.UUID
	side    common.Side
	price   money.Price
	qty     uint64
}

// idEvent holds the parsed, validated fields of a "cancel" event.
type idEvent struct {
	orderID uuid.UUID
}

// modifyEvent holds the parsed, validated fields of a "modify" event.
type modifyEvent struct {
	orderID uuid.UUID
	price   money.Price
}

func parseEnvelope(raw []byte) (envelope, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return env, nil
}

func parseOrderID(raw json.RawMessage) (uuid.UUID, error) {
	if len(raw) == 0 {
		return uuid.UUID{}, fmt.Errorf("%w: missing order_id", ErrMalformed)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: order_id must be a string: %v", ErrMalformed, err)
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.UUID{}, fmt.Errorf("%w: invalid order_id: %v", ErrMalformed, err)
	}
	return id, nil
}

func parsePrice(raw json.RawMessage) (money.Price, error) {
	if len(raw) == 0 {
		return 0, fmt.Errorf("%w: missing price", ErrMalformed)
	}
	var asNumber json.Number
	if err := json.Unmarshal(raw, &asNumber); err == nil {
		p, perr := money.Parse(asNumber.String())
		if perr != nil {
			return 0, fmt.Errorf("%w: %v", ErrMalformed, perr)
		}
		return p, nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err != nil {
		return 0, fmt.Errorf("%w: price must be a string or number", ErrMalformed)
	}
	p, err := money.Parse(asString)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return p, nil
}

// toPlaceEvent validates and extracts a "place" event's fields. order_id
// is synthesized when absent.
func (env envelope) toPlaceEvent() (placeEvent, error) {
	var pe placeEvent

	if env.Side == nil {
		return pe, fmt.Errorf("%w: missing side", ErrMalformed)
	}
	switch common.Side(*env.Side) {
	case common.Bid, common.Ask:
		pe.side = common.Side(*env.Side)
	default:
		return pe, fmt.Errorf("%w: invalid side %d", ErrMalformed, *env.Side)
	}

	price, err := parsePrice(env.Price)
	if err != nil {
		return pe, err
	}
	pe.price = price

	if env.Qty == nil || *env.Qty <= 0 {
		return pe, fmt.Errorf("%w: quantity must be a positive integer", ErrMalformed)
	}
	pe.qty = uint64(*env.Qty)

	if len(env.OrderID) == 0 {
		pe.orderID = uuid.New()
		return pe, nil
	}
	id, err := parseOrderID(env.OrderID)
	if err != nil {
		return pe, err
	}
	pe.orderID = id
	return pe, nil
}

func (env envelope) toIDEvent() (idEvent, error) {
	id, err := parseOrderID(env.OrderID)
	if err != nil {
		return idEvent{}, err
	}
	return idEvent{orderID: id}, nil
}

func (env envelope) toModifyEvent() (modifyEvent, error) {
	id, err := parseOrderID(env.OrderID)
	if err != nil {
		return modifyEvent{}, err
	}
	price, err := parsePrice(env.Price)
	if err != nil {
		return modifyEvent{}, err
	}
	return modifyEvent{orderID: id, price: price}, nil
}
