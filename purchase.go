package seimart

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/seimart/seimart/schema"
)

// Purchaser drives one marketplace purchase end to end: precondition checks,
// native transfer, confirmation wait, ledger call. Every surface that sells
// access goes through this one implementation.
//
// An attempt moves confirm -> processing -> success|failed; failed attempts
// re-enter confirm only via Retry. No step ever retries on its own.
type Purchaser struct {
	wallet Wallet
	ledger *LedgerCli

	confirmTimeout time.Duration

	mu   sync.Mutex
	busy bool
}

func NewPurchaser(wallet Wallet, ledger *LedgerCli) *Purchaser {
	return &Purchaser{
		wallet:         wallet,
		ledger:         ledger,
		confirmTimeout: schema.DefaultConfirmTimeout,
	}
}

// NewAttempt builds a fresh attempt in the confirm phase. The seller address
// must already be resolved from the listing's owner.
func NewAttempt(listing schema.Listing, session schema.Session) *schema.PurchaseAttempt {
	return &schema.PurchaseAttempt{
		ListingId:  listing.ListingId,
		ResearchId: listing.ResearchId,
		Seller:     listing.Seller,
		Price:      listing.Price,
		Session:    session,
		Phase:      schema.PhaseConfirm,
	}
}

// Confirm runs the attempt to a terminal phase. At most one attempt is
// processed at a time; a second call while one is in flight returns
// ErrAttemptInFlight without submitting anything.
func (p *Purchaser) Confirm(ctx context.Context, att *schema.PurchaseAttempt) error {
	p.mu.Lock()
	if p.busy {
		p.mu.Unlock()
		return ErrAttemptInFlight
	}
	if att.Phase != schema.PhaseConfirm {
		p.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrWrongPhase, att.Phase)
	}
	p.busy = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.busy = false
		p.mu.Unlock()
	}()

	if err := p.run(ctx, att); err != nil {
		att.Phase = schema.PhaseFailed
		att.ErrMsg = err.Error()
		log.Warn("purchase failed", "listing", att.ListingId, "tx", att.TxHash, "err", err)
		return err
	}
	att.Phase = schema.PhaseSuccess
	log.Info("purchase success", "listing", att.ListingId, "tx", att.TxHash)
	return nil
}

// Retry resets a failed attempt back to confirm, clearing every transient
// field except the listing/buyer/seller context.
func (p *Purchaser) Retry(att *schema.PurchaseAttempt) error {
	if att.Phase != schema.PhaseFailed {
		return fmt.Errorf("%w: %s", ErrWrongPhase, att.Phase)
	}
	att.Phase = schema.PhaseConfirm
	att.TxHash = ""
	att.ErrMsg = ""
	return nil
}

func (p *Purchaser) run(ctx context.Context, att *schema.PurchaseAttempt) error {
	value, to, err := p.preflight(ctx, att)
	if err != nil {
		return err
	}
	att.Phase = schema.PhaseProcessing

	// estimation failure is not a purchase failure; fall back to the plain
	// transfer cost
	gas, err := p.wallet.EstimateGas(ctx, to, value)
	if err != nil {
		log.Warn("gas estimation failed, using default", "err", err)
		gas = schema.DefaultTransferGas
	}
	gas += gas * schema.GasBufferPercent / 100

	txHash, err := p.wallet.SendTransfer(ctx, to, value, gas)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTxSubmit, err)
	}
	if txHash == (ethcommon.Hash{}) {
		return ErrTxSubmit
	}
	att.TxHash = txHash.Hex()

	waitCtx, cancel := context.WithTimeout(ctx, p.confirmTimeout)
	defer cancel()
	receipt, err := p.wallet.WaitConfirmed(waitCtx, txHash)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w after %s: tx %s", ErrTxTimeout, p.confirmTimeout, att.TxHash)
		}
		return fmt.Errorf("confirmation failed: %w", err)
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		// no value moved; never reach the ledger with a reverted tx
		return fmt.Errorf("%w: tx %s", ErrTxReverted, att.TxHash)
	}

	req := schema.LedgerRequest{
		ListingId:    att.ListingId,
		BuyerWallet:  p.wallet.Address().Hex(),
		SellerWallet: att.Seller,
		Amount:       att.Price,
		TxHash:       att.TxHash,
		IsDemo:       att.Session.IsDemo(),
		DemoId:       att.Session.DemoId,
	}
	if _, err := p.ledger.CompletePurchase(req); err != nil {
		// value moved but access was not granted; callers must surface this
		// as its own class, not a generic payment failure
		return fmt.Errorf("%w: tx %s confirmed, ledger said: %v", ErrLedgerAfterPayment, att.TxHash, err)
	}
	return nil
}

// preflight checks run synchronously before any side effect.
func (p *Purchaser) preflight(ctx context.Context, att *schema.PurchaseAttempt) (*big.Int, ethcommon.Address, error) {
	if p.wallet == nil {
		return nil, ethcommon.Address{}, ErrWalletNotConnected
	}
	if !ethcommon.IsHexAddress(att.Seller) {
		return nil, ethcommon.Address{}, fmt.Errorf("%w: %q", ErrSellerUnresolved, att.Seller)
	}
	value, err := ParseNative(att.Price, schema.NativeDecimals)
	if err != nil {
		return nil, ethcommon.Address{}, err
	}
	// balance is read fresh every attempt; it may have changed since the
	// listing page was loaded
	balance, err := p.wallet.Balance(ctx)
	if err != nil {
		return nil, ethcommon.Address{}, fmt.Errorf("balance query failed: %w", err)
	}
	if balance.Cmp(value) < 0 {
		return nil, ethcommon.Address{}, fmt.Errorf("%w: need %s %s, have %s %s",
			ErrInsufficientBalance,
			formatBalance(value), schema.NativeSymbol,
			formatBalance(balance), schema.NativeSymbol)
	}
	return value, ethcommon.HexToAddress(att.Seller), nil
}
