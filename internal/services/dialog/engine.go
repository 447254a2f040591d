// Package dialog drives the multi-turn money operations: one linear
// finite-state flow per operation kind, one session per account. The
// transport feeds raw inputs in and renders the replies; all balance
// effects go through the wallet core only when a flow completes.
package dialog

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sultanops/coinwallet/internal/repos/deposits"
	"github.com/sultanops/coinwallet/internal/repos/withdrawals"
	"github.com/sultanops/coinwallet/internal/services/wallet"
)

// Core is the slice of the wallet service the dialogs drive.
type Core interface {
	Balance(ctx context.Context, id int64) (int64, error)
	CommissionFee(ctx context.Context, amount int64) int64
	WithdrawMinimum(ctx context.Context) int64
	Transfer(ctx context.Context, sender, recipient, amount int64) (*wallet.TransferResult, error)
	RequestDeposit(ctx context.Context, accountID, amount int64, receiptRef string) (*deposits.Request, error)
	RequestWithdrawal(ctx context.Context, accountID, amount int64, payoutDetails string) (*withdrawals.Withdrawal, error)
	SettleDeposit(ctx context.Context, id uuid.UUID, approve bool) (*deposits.Request, error)
	SettleWithdrawal(ctx context.Context, id uuid.UUID, paid bool) (*withdrawals.Withdrawal, error)
	TierPrice(ctx context.Context, level int) (int64, error)
	PurchaseTier(ctx context.Context, id int64, level int) (*wallet.TierStatus, error)
	ServicePrice(ctx context.Context, kind string) (int64, error)
	OrderService(ctx context.Context, id int64, kind, description string) (int64, error)
}

// OpKind names a multi-turn operation.
type OpKind string

const (
	KindTransfer   OpKind = "transfer"
	KindDeposit    OpKind = "deposit"
	KindWithdrawal OpKind = "withdrawal"
	KindTier       OpKind = "tier"
	KindOrder      OpKind = "order"
)

// state is the FSM node a session currently sits on.
type state int

const (
	stateIdle state = iota

	stateTransferRecipient
	stateTransferAmount
	stateTransferConfirm

	stateDepositAmount
	stateDepositReceipt

	stateWithdrawAmount
	stateWithdrawDetails
	stateWithdrawConfirm

	stateTierLevel
	stateTierConfirm

	stateOrderKind
	stateOrderDesc
	stateOrderConfirm
)

// ReviewKind tags an admin-review request.
type ReviewKind string

const (
	ReviewDeposit    ReviewKind = "deposit"
	ReviewWithdrawal ReviewKind = "withdrawal"
)

// AdminReview asks the transport to put a request in front of the admin
// with approve/reject controls.
type AdminReview struct {
	Kind      ReviewKind
	RequestID uuid.UUID
	AccountID int64
	Amount    int64
	Details   string
}

// Reply is what the transport renders back to the user after one turn.
type Reply struct {
	Text        string
	Done        bool // session returned to idle
	AdminReview *AdminReview
}

type session struct {
	mu        sync.Mutex
	state     state
	updatedAt time.Time

	// scratch, valid only within one flow
	recipient int64
	amount    int64
	details   string
	tierLevel int
	orderKind string
}

func (s *session) reset(now time.Time) {
	s.state = stateIdle
	s.updatedAt = now
	s.recipient = 0
	s.amount = 0
	s.details = ""
	s.tierLevel = 0
	s.orderKind = ""
}

type Engine struct {
	core Core

	mu       sync.Mutex
	sessions map[int64]*session

	now func() time.Time
}

func New(core Core) *Engine {
	return &Engine{
		core:     core,
		sessions: make(map[int64]*session),
		now:      time.Now,
	}
}

func (e *Engine) session(accountID int64) *session {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, ok := e.sessions[accountID]
	if !ok {
		s = &session{state: stateIdle, updatedAt: e.now()}
		e.sessions[accountID] = s
	}

	return s
}

// StartOperation opens a flow for the account. A flow already in
// progress is implicitly cancelled: the keyboard lets users switch
// operations at any time, so the newest intent wins.
func (e *Engine) StartOperation(ctx context.Context, accountID int64, kind OpKind) (Reply, error) {
	s := e.session(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reset(e.now())

	switch kind {
	case KindTransfer:
		s.state = stateTransferRecipient
		return Reply{Text: "Enter the recipient account ID:"}, nil
	case KindDeposit:
		s.state = stateDepositAmount
		return Reply{Text: "How many coins do you want to top up?"}, nil
	case KindWithdrawal:
		s.state = stateWithdrawAmount
		min := e.core.WithdrawMinimum(ctx)
		return Reply{Text: promptf("Enter the amount to withdraw (minimum %d):", min)}, nil
	case KindTier:
		s.state = stateTierLevel
		return e.tierMenu(ctx)
	case KindOrder:
		s.state = stateOrderKind
		return Reply{Text: "What do you want to order? (web / apk / bot)"}, nil
	default:
		return Reply{}, errors.New("unknown operation kind")
	}
}

// FeedInput advances the account's flow by one turn. Cancel is honored
// from any state before any validation; invalid input re-prompts the
// same state and never has side effects.
func (e *Engine) FeedInput(ctx context.Context, accountID int64, input string) (Reply, error) {
	s := e.session(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	input = strings.TrimSpace(input)

	if isCancel(input) {
		if s.state == stateIdle {
			return Reply{Text: "Nothing to cancel.", Done: true}, nil
		}

		s.reset(e.now())

		return Reply{Text: "Cancelled.", Done: true}, nil
	}

	if s.state == stateIdle {
		return Reply{Text: "No operation in progress. Pick one from the menu.", Done: true}, nil
	}

	s.updatedAt = e.now()

	return e.advance(ctx, accountID, s, input)
}

// Cancel aborts whatever flow the account has open.
func (e *Engine) Cancel(accountID int64) Reply {
	s := e.session(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == stateIdle {
		return Reply{Text: "Nothing to cancel.", Done: true}
	}

	s.reset(e.now())

	return Reply{Text: "Cancelled.", Done: true}
}

// InFlight reports whether the account has an open flow.
func (e *Engine) InFlight(accountID int64) bool {
	s := e.session(accountID)

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.state != stateIdle
}

// HandleAdminDecision routes an approve/reject verdict straight into the
// approval workflow, bypassing any user session. It returns the
// admin-facing summary line.
func (e *Engine) HandleAdminDecision(ctx context.Context, kind ReviewKind, requestID uuid.UUID, approve bool) (string, error) {
	switch kind {
	case ReviewDeposit:
		req, err := e.core.SettleDeposit(ctx, requestID, approve)
		if err != nil {
			return "", err
		}

		if approve {
			return promptf("Deposit approved: +%d coins to account %d.", req.Amount, req.AccountID), nil
		}

		return promptf("Deposit rejected for account %d.", req.AccountID), nil

	case ReviewWithdrawal:
		w, err := e.core.SettleWithdrawal(ctx, requestID, approve)
		if err != nil {
			return "", err
		}

		if approve {
			return promptf("Withdrawal of %d coins marked paid for account %d.", w.Amount, w.AccountID), nil
		}

		return promptf("Withdrawal rejected; %d coins refunded to account %d.", w.Amount, w.AccountID), nil

	default:
		return "", errors.New("unknown review kind")
	}
}

// SweepIdle drops sessions that have not moved for maxAge, so abandoned
// scratch data cannot leak into a later operation. Returns the number of
// sessions dropped.
func (e *Engine) SweepIdle(maxAge time.Duration) int {
	e.mu.Lock()
	defer e.mu.Unlock()

	cutoff := e.now().Add(-maxAge)
	dropped := 0

	for id, s := range e.sessions {
		if !s.mu.TryLock() {
			continue
		}

		if s.updatedAt.Before(cutoff) {
			delete(e.sessions, id)
			dropped++
		}

		s.mu.Unlock()
	}

	return dropped
}

func isCancel(input string) bool {
	switch strings.ToLower(input) {
	case "/cancel", "cancel":
		return true
	}

	return false
}

func isYes(input string) bool {
	switch strings.ToLower(input) {
	case "yes", "y", "confirm":
		return true
	}

	return false
}

func isNo(input string) bool {
	switch strings.ToLower(input) {
	case "no", "n":
		return true
	}

	return false
}
