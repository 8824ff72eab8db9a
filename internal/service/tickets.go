package service

import (
	"sync"

	"github.com/shopspring/decimal"

	"github.com/lucidplay/crashgate/internal/model"
)

// TicketBook holds the live round's bet tickets. Status changes go through
// compare-and-set so a manual cashout racing the auto evaluator resolves
// to exactly one settlement.
type TicketBook struct {
	mu      sync.RWMutex
	tickets map[string]*model.BetTicket
	byRound map[string][]string
}

func NewTicketBook() *TicketBook {
	return &TicketBook{
		tickets: make(map[string]*model.BetTicket),
		byRound: make(map[string][]string),
	}
}

func (b *TicketBook) Add(t model.BetTicket) {
	b.mu.Lock()
	defer b.mu.Unlock()
	stored := t
	b.tickets[t.ID] = &stored
	b.byRound[t.RoundID] = append(b.byRound[t.RoundID], t.ID)
}

// Get returns a copy of the ticket, so callers never observe a concurrent
// status flip mid-read.
func (b *TicketBook) Get(ticketID string) (model.BetTicket, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	t, ok := b.tickets[ticketID]
	if !ok {
		return model.BetTicket{}, false
	}
	return *t, true
}

// OpenAutoTickets returns copies of the round's Open tickets whose
// autopayout target is at or below the given multiplier.
func (b *TicketBook) OpenAutoTickets(roundID string, multiplier decimal.Decimal) []model.BetTicket {
	b.mu.RLock()
	defer b.mu.RUnlock()
	var due []model.BetTicket
	for _, id := range b.byRound[roundID] {
		t := b.tickets[id]
		if t == nil || t.Status != model.TicketOpen || t.Autopayout == nil {
			continue
		}
		if t.Autopayout.LessThanOrEqual(multiplier) {
			due = append(due, *t)
		}
	}
	return due
}

// Settle flips a ticket Open -> CashedOut atomically. Returns false when
// the ticket is missing or already settled, which is how a second
// settlement attempt loses the race.
func (b *TicketBook) Settle(ticketID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	t, ok := b.tickets[ticketID]
	if !ok || t.Status != model.TicketOpen {
		return false
	}
	t.Status = model.TicketCashedOut
	return true
}

// Reopen reverts a settlement whose wallet credit failed, so a later
// attempt can retry. Only CashedOut -> Open is permitted.
func (b *TicketBook) Reopen(ticketID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if t, ok := b.tickets[ticketID]; ok && t.Status == model.TicketCashedOut {
		t.Status = model.TicketOpen
	}
}

// MarkLost flips every remaining Open ticket of the round to Lost and
// returns copies of the affected tickets.
func (b *TicketBook) MarkLost(roundID string) []model.BetTicket {
	b.mu.Lock()
	defer b.mu.Unlock()
	var lost []model.BetTicket
	for _, id := range b.byRound[roundID] {
		t := b.tickets[id]
		if t == nil || t.Status != model.TicketOpen {
			continue
		}
		t.Status = model.TicketLost
		lost = append(lost, *t)
	}
	return lost
}

// DropRound forgets a settled round's tickets once the next round opens.
func (b *TicketBook) DropRound(roundID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, id := range b.byRound[roundID] {
		delete(b.tickets, id)
	}
	delete(b.byRound, roundID)
}
