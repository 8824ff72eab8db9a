package service

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lucidplay/crashgate/internal/model"
)

func openTicket(book *TicketBook, id, userID, roundID, amount, target string) {
	var auto *decimal.Decimal
	if target != "" {
		d := decimal.RequireFromString(target)
		auto = &d
	}
	book.Add(model.BetTicket{
		ID:         id,
		RoundID:    roundID,
		UserID:     userID,
		Amount:     decimal.RequireFromString(amount),
		Autopayout: auto,
		Status:     model.TicketOpen,
		PlacedAt:   time.Now(),
	})
}

func TestAutoCashoutCreditsAtTargetNotLiveMultiplier(t *testing.T) {
	book := NewTicketBook()
	ledger := NewMemoryLedger(decimal.NewFromInt(100))
	hub := &recorderHub{}
	eval := NewAutoCashout(book, ledger, hub)

	openTicket(book, "t1", "alice", "r1", "10", "2.00")

	// The live multiplier overshot the target; the payout stays pinned to
	// the target the player asked for.
	eval.Run(context.Background(), "r1", decimal.RequireFromString("3.00"))

	ticket, _ := book.Get("t1")
	assert.Equal(t, model.TicketCashedOut, ticket.Status)
	assert.True(t, ledger.Balance("alice").Equal(decimal.RequireFromString("120")))

	events := hub.byTopic(TopicCashout)
	require.Len(t, events, 1)
	ev := events[0].(model.CashoutEvent)
	assert.Equal(t, model.CashoutAuto, ev.Kind)
	assert.True(t, ev.Multiplier.Equal(decimal.RequireFromString("2.00")))
	assert.True(t, ev.Credited.Equal(decimal.RequireFromString("20.00")))
}

func TestAutoCashoutSkipsTicketsNotYetDue(t *testing.T) {
	book := NewTicketBook()
	ledger := NewMemoryLedger(decimal.NewFromInt(100))
	eval := NewAutoCashout(book, ledger, &recorderHub{})

	openTicket(book, "t1", "alice", "r1", "10", "5.00")
	openTicket(book, "t2", "bob", "r1", "10", "") // no autopayout at all

	eval.Run(context.Background(), "r1", decimal.RequireFromString("4.99"))

	for _, id := range []string{"t1", "t2"} {
		ticket, _ := book.Get(id)
		assert.Equal(t, model.TicketOpen, ticket.Status, "ticket %s should remain open", id)
	}
}

func TestAutoCashoutSettlesExactlyOnce(t *testing.T) {
	book := NewTicketBook()
	ledger := NewMemoryLedger(decimal.NewFromInt(100))
	eval := NewAutoCashout(book, ledger, &recorderHub{})

	openTicket(book, "t1", "alice", "r1", "10", "1.50")

	// The evaluator runs every tick; later ticks must not pay again.
	eval.Run(context.Background(), "r1", decimal.RequireFromString("1.50"))
	eval.Run(context.Background(), "r1", decimal.RequireFromString("1.80"))
	eval.Run(context.Background(), "r1", decimal.RequireFromString("2.50"))

	assert.True(t, ledger.Balance("alice").Equal(decimal.RequireFromString("115")))
}

func TestAutoCashoutFailedCreditDoesNotBlockOthers(t *testing.T) {
	book := NewTicketBook()
	base := NewMemoryLedger(decimal.NewFromInt(100))
	ledger := &faultyLedger{MemoryLedger: base, failCreditFor: map[string]bool{"bad": true}}
	eval := NewAutoCashout(book, ledger, &recorderHub{})

	openTicket(book, "t1", "bad", "r1", "10", "2.00")
	openTicket(book, "t2", "good", "r1", "10", "2.00")

	eval.Run(context.Background(), "r1", decimal.RequireFromString("2.00"))

	// The healthy ticket settled despite its neighbour's failure.
	good, _ := book.Get("t2")
	assert.Equal(t, model.TicketCashedOut, good.Status)
	assert.True(t, base.Balance("good").Equal(decimal.RequireFromString("120")))

	// The failed one reopened for a later retry.
	bad, _ := book.Get("t1")
	assert.Equal(t, model.TicketOpen, bad.Status)

	// Once the ledger recovers, the retry pays out.
	ledger.failCreditFor["bad"] = false
	eval.Run(context.Background(), "r1", decimal.RequireFromString("2.10"))
	bad, _ = book.Get("t1")
	assert.Equal(t, model.TicketCashedOut, bad.Status)
	assert.True(t, base.Balance("bad").Equal(decimal.RequireFromString("120")))
}

func TestAutoCashoutIgnoresOtherRounds(t *testing.T) {
	book := NewTicketBook()
	ledger := NewMemoryLedger(decimal.NewFromInt(100))
	eval := NewAutoCashout(book, ledger, &recorderHub{})

	openTicket(book, "t1", "alice", "r1", "10", "1.50")

	eval.Run(context.Background(), "r2", decimal.RequireFromString("9.00"))

	ticket, _ := book.Get("t1")
	assert.Equal(t, model.TicketOpen, ticket.Status)
}
