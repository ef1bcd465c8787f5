package seimart

import (
	"errors"
)

var (
	// preconditions the user can self-correct
	ErrWalletNotConnected  = errors.New("wallet not connected")
	ErrSellerUnresolved    = errors.New("recipient not resolved")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrBadAmount           = errors.New("invalid amount")

	// submission
	ErrTxSubmit = errors.New("transaction failed to submit")

	// confirmation
	ErrTxTimeout  = errors.New("confirmation timed out")
	ErrTxReverted = errors.New("transaction was reverted")

	// ledger call after a confirmed transfer; funds moved, access not granted
	ErrLedgerAfterPayment = errors.New("payment confirmed but access grant failed")

	// orchestrator usage
	ErrAttemptInFlight = errors.New("purchase already processing")
	ErrWrongPhase      = errors.New("wrong purchase phase")
)
