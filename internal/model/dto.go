package model

import "github.com/shopspring/decimal"

// WalletSnapshot is the balance view returned after every debit/credit.
type WalletSnapshot struct {
	UserID  string          `json:"userId"`
	Balance decimal.Decimal `json:"balance"`
}

// BetRequest represents the incoming JSON body for a bet command.
type BetRequest struct {
	RoundID     string   `json:"roundId"`
	UserID      string   `json:"userId" binding:"required"`
	Amount      float64  `json:"amount" binding:"required"`
	Autopayout  *float64 `json:"autopayoutMultiplier,omitempty"`
	StrategyKey string   `json:"strategyKey,omitempty"`
}

const (
	StatusAccepted = "accepted"
	StatusCredited = "credited"
	StatusRejected = "rejected"
)

// BetResult is always returned, never thrown: rejections carry a reason.
type BetResult struct {
	Status   string          `json:"status"`
	Reason   string          `json:"reason,omitempty"`
	TicketID string          `json:"ticketId,omitempty"`
	Wallet   *WalletSnapshot `json:"wallet,omitempty"`
}

// CashoutKind distinguishes player-initiated cashouts from evaluator ones.
type CashoutKind string

const (
	CashoutManual CashoutKind = "manual"
	CashoutAuto   CashoutKind = "auto"
)

type CashoutRequest struct {
	TicketID string      `json:"ticketId" binding:"required"`
	UserID   string      `json:"userId" binding:"required"`
	Kind     CashoutKind `json:"kind,omitempty"`
}

type CashoutResult struct {
	Status            string           `json:"status"`
	Reason            string           `json:"reason,omitempty"`
	CreditedAmount    *decimal.Decimal `json:"creditedAmount,omitempty"`
	CashoutMultiplier *decimal.Decimal `json:"cashoutMultiplier,omitempty"`
	Wallet            *WalletSnapshot  `json:"wallet,omitempty"`
}

// BetEvent is broadcast to viewers when a bet is accepted.
type BetEvent struct {
	RoundID  string          `json:"roundId"`
	TicketID string          `json:"ticketId"`
	UserID   string          `json:"userId"`
	Amount   decimal.Decimal `json:"amount"`
}

// CashoutEvent is broadcast to viewers when a ticket settles.
type CashoutEvent struct {
	RoundID    string          `json:"roundId"`
	TicketID   string          `json:"ticketId"`
	UserID     string          `json:"userId"`
	Kind       CashoutKind     `json:"kind"`
	Multiplier decimal.Decimal `json:"multiplier"`
	Credited   decimal.Decimal `json:"credited"`
}

// OverrideAction enumerates the operator actions.
type OverrideAction string

const (
	ActionPause      OverrideAction = "pause"
	ActionResume     OverrideAction = "resume"
	ActionForceCrash OverrideAction = "forceCrash"
)

type OverrideRequest struct {
	Action OverrideAction `json:"action" binding:"required"`
}

type OverrideResult struct {
	Status string         `json:"status"`
	Action OverrideAction `json:"action"`
	Reason string         `json:"reason,omitempty"`
}
