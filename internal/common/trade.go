package common

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"ember/internal/money"
)

// Trade is an immutable record of one match. Price is always the resting
// (passive) order's price — price improvement accrues to the aggressor.
type Trade struct {
	ID         uuid.UUID
	Price      money.Price
	Qty        uint64
	BidOrderID uuid.UUID
	AskOrderID uuid.UUID
	Ts         time.Time
}

func (t Trade) String() string {
	return fmt.Sprintf(
		"Trade{id=%s price=%s qty=%d bid=%s ask=%s}",
		t.ID, t.Price, t.Qty, t.BidOrderID, t.AskOrderID,
	)
}
