package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TicketStatus tracks a bet from acceptance to settlement. A ticket is
// immutable once it leaves Open.
type TicketStatus string

const (
	TicketOpen      TicketStatus = "open"
	TicketCashedOut TicketStatus = "cashed_out"
	TicketLost      TicketStatus = "lost"
)

// BetTicket is one accepted bet on one round.
type BetTicket struct {
	ID         string
	RoundID    string
	UserID     string
	Amount     decimal.Decimal
	// Autopayout, when set, is the multiplier at which the evaluator
	// settles the ticket automatically. Always >= 1.00.
	Autopayout *decimal.Decimal
	Status     TicketStatus
	PlacedAt   time.Time
}
