package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/model"
	"github.com/lucidplay/crashgate/internal/pkg/logger"
	"github.com/lucidplay/crashgate/internal/pkg/metrics"
)

var oneMultiplier = decimal.NewFromInt(1)

// CommandProcessor validates and applies player bet/cashout commands
// against the live round phase and the wallet ledger. Every outcome is a
// typed result; nothing here panics on bad input.
type CommandProcessor struct {
	eng    *Engine
	book   *TicketBook
	ledger Ledger
	hub    Broadcaster

	minBet decimal.Decimal
	maxBet decimal.Decimal
}

func NewCommandProcessor(eng *Engine, book *TicketBook, ledger Ledger, hub Broadcaster, minBet, maxBet decimal.Decimal) *CommandProcessor {
	return &CommandProcessor{
		eng:    eng,
		book:   book,
		ledger: ledger,
		hub:    hub,
		minBet: minBet,
		maxBet: maxBet,
	}
}

func rejectedBet(reason string) model.BetResult {
	metrics.BetsTotal.WithLabelValues("rejected").Inc()
	return model.BetResult{Status: model.StatusRejected, Reason: reason}
}

// PlaceBet accepts a bet while the round is taking bets: validates the
// amount and optional autopayout, debits the wallet, and opens a ticket.
func (p *CommandProcessor) PlaceBet(ctx context.Context, req model.BetRequest) model.BetResult {
	// Phase is checked before input validation: a bet outside the betting
	// window is a phase rejection no matter what the payload looks like.
	round := p.eng.CurrentRound()
	if round.Phase != model.PhaseAwaitingBets {
		return rejectedBet("bets are closed for the current round")
	}
	if req.RoundID != "" && req.RoundID != round.RoundID {
		return rejectedBet("round " + req.RoundID + " is no longer taking bets")
	}

	amount := decimal.NewFromFloat(req.Amount).Truncate(2)
	if amount.LessThan(p.minBet) || amount.GreaterThan(p.maxBet) {
		return rejectedBet("bet amount must be between " + p.minBet.String() + " and " + p.maxBet.String())
	}

	var autopayout *decimal.Decimal
	if req.Autopayout != nil {
		target := decimal.NewFromFloat(*req.Autopayout).Truncate(2)
		if target.LessThan(oneMultiplier) {
			return rejectedBet("autopayout multiplier must be at least 1.00")
		}
		autopayout = &target
	}

	wallet, err := p.ledger.Debit(ctx, req.UserID, amount)
	if err != nil {
		if err == ErrInsufficientFunds {
			return rejectedBet("insufficient funds")
		}
		logger.LogError(ctx, err, "wallet debit failed", "user_id", req.UserID)
		return rejectedBet("wallet unavailable")
	}

	ticket := model.BetTicket{
		ID:         uuid.NewString(),
		RoundID:    round.RoundID,
		UserID:     req.UserID,
		Amount:     amount,
		Autopayout: autopayout,
		Status:     model.TicketOpen,
		PlacedAt:   time.Now(),
	}
	p.book.Add(ticket)

	metrics.BetsTotal.WithLabelValues("accepted").Inc()
	if p.hub != nil {
		p.hub.Broadcast(TopicBet, model.BetEvent{
			RoundID:  round.RoundID,
			TicketID: ticket.ID,
			UserID:   req.UserID,
			Amount:   amount,
		})
	}

	return model.BetResult{
		Status:   model.StatusAccepted,
		TicketID: ticket.ID,
		Wallet:   &wallet,
	}
}

func rejectedCashout(reason string) model.CashoutResult {
	metrics.CashoutsTotal.WithLabelValues(string(model.CashoutManual), "rejected").Inc()
	return model.CashoutResult{Status: model.StatusRejected, Reason: reason}
}

// Cashout settles an Open ticket at the live multiplier at the instant of
// processing. The compare-and-set on ticket status is what resolves a race
// against the auto evaluator to exactly one settlement.
func (p *CommandProcessor) Cashout(ctx context.Context, req model.CashoutRequest) model.CashoutResult {
	ticket, ok := p.book.Get(req.TicketID)
	if !ok {
		return rejectedCashout("ticket not found")
	}
	if ticket.UserID != req.UserID {
		return rejectedCashout("ticket is not owned by the requesting user")
	}

	round := p.eng.CurrentRound()
	if round.Phase != model.PhaseAscending || ticket.RoundID != round.RoundID {
		return rejectedCashout("cashout is only available while the round is ascending")
	}
	if ticket.Status != model.TicketOpen {
		return rejectedCashout("ticket already settled")
	}

	if !p.book.Settle(req.TicketID) {
		// Lost the race against the auto evaluator.
		return rejectedCashout("ticket already settled")
	}

	multiplier := round.Multiplier
	credited := ticket.Amount.Mul(multiplier).Truncate(2)

	wallet, err := p.ledger.Credit(ctx, ticket.UserID, credited)
	if err != nil {
		p.book.Reopen(req.TicketID)
		logger.LogError(ctx, err, "wallet credit failed",
			"user_id", ticket.UserID, "ticket_id", ticket.ID)
		return rejectedCashout("wallet unavailable")
	}

	metrics.CashoutsTotal.WithLabelValues(string(model.CashoutManual), "credited").Inc()
	if p.hub != nil {
		p.hub.Broadcast(TopicCashout, model.CashoutEvent{
			RoundID:    ticket.RoundID,
			TicketID:   ticket.ID,
			UserID:     ticket.UserID,
			Kind:       model.CashoutManual,
			Multiplier: multiplier,
			Credited:   credited,
		})
	}

	return model.CashoutResult{
		Status:            model.StatusCredited,
		CreditedAmount:    &credited,
		CashoutMultiplier: &multiplier,
		Wallet:            &wallet,
	}
}
