package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
	"github.com/lucidplay/crashgate/internal/pkg/metrics"
)

// AutoCashout settles tickets whose autopayout target has been reached by
// the live multiplier. It runs once per tick during ascent, after the
// multiplier update.
type AutoCashout struct {
	book   *TicketBook
	ledger Ledger
	hub    Broadcaster
}

func NewAutoCashout(book *TicketBook, ledger Ledger, hub Broadcaster) *AutoCashout {
	return &AutoCashout{book: book, ledger: ledger, hub: hub}
}

// Run settles every due ticket independently: one ticket's failure never
// blocks or rolls back the others. The credited amount is always bet
// amount x the ticket's own target, not the (possibly higher) live
// multiplier at evaluation time.
func (a *AutoCashout) Run(ctx context.Context, roundID string, multiplier decimal.Decimal) {
	for _, t := range a.book.OpenAutoTickets(roundID, multiplier) {
		a.settle(ctx, t)
	}
}

func (a *AutoCashout) settle(ctx context.Context, t model.BetTicket) {
	// CAS guards the race against a concurrent manual cashout: whoever
	// flips the status first owns the settlement.
	if !a.book.Settle(t.ID) {
		return
	}

	target := *t.Autopayout
	credited := t.Amount.Mul(target).Truncate(2)

	if _, err := a.ledger.Credit(ctx, t.UserID, credited); err != nil {
		// Reopen so a later tick (or a manual cashout) can retry.
		a.book.Reopen(t.ID)
		metrics.CashoutsTotal.WithLabelValues(string(model.CashoutAuto), "failed").Inc()
		logger.LogError(ctx, err, "auto cashout credit failed",
			"ticket_id", t.ID, "user_id", t.UserID)
		return
	}

	metrics.CashoutsTotal.WithLabelValues(string(model.CashoutAuto), "credited").Inc()
	if a.hub != nil {
		a.hub.Broadcast(TopicCashout, model.CashoutEvent{
			RoundID:    t.RoundID,
			TicketID:   t.ID,
			UserID:     t.UserID,
			Kind:       model.CashoutAuto,
			Multiplier: target,
			Credited:   credited,
		})
	}
}
