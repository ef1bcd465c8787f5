package seimart

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/seimart/seimart/schema"
	"github.com/stretchr/testify/assert"
)

type mockWallet struct {
	addr    ethcommon.Address
	balance *big.Int

	estimateGas uint64
	estimateErr error
	sendHash    ethcommon.Hash
	sendErr     error

	receiptStatus uint64
	receiptDelay  time.Duration

	mu           sync.Mutex
	submissions  int
	lastValue    *big.Int
	lastGasLimit uint64
}

func (m *mockWallet) Address() ethcommon.Address {
	return m.addr
}

func (m *mockWallet) Balance(ctx context.Context) (*big.Int, error) {
	return new(big.Int).Set(m.balance), nil
}

func (m *mockWallet) EstimateGas(ctx context.Context, to ethcommon.Address, value *big.Int) (uint64, error) {
	if m.estimateErr != nil {
		return 0, m.estimateErr
	}
	if m.estimateGas == 0 {
		return schema.DefaultTransferGas, nil
	}
	return m.estimateGas, nil
}

func (m *mockWallet) SendTransfer(ctx context.Context, to ethcommon.Address, value *big.Int, gasLimit uint64) (ethcommon.Hash, error) {
	m.mu.Lock()
	m.submissions++
	m.lastValue = new(big.Int).Set(value)
	m.lastGasLimit = gasLimit
	m.mu.Unlock()
	return m.sendHash, m.sendErr
}

func (m *mockWallet) WaitConfirmed(ctx context.Context, txHash ethcommon.Hash) (*types.Receipt, error) {
	if m.receiptDelay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(m.receiptDelay):
		}
	}
	return &types.Receipt{Status: m.receiptStatus, BlockNumber: big.NewInt(100)}, nil
}

func (m *mockWallet) submissionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.submissions
}

type mockLedger struct {
	mu     sync.Mutex
	calls  int
	status int
	body   schema.LedgerResponse
}

func newMockLedger() *mockLedger {
	return &mockLedger{
		status: http.StatusOK,
		body: schema.LedgerResponse{
			Success: true,
			Data:    schema.RespPurchase{OrderId: 1},
		},
	}
}

func (ml *mockLedger) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ml.mu.Lock()
		ml.calls++
		ml.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(ml.status)
		_ = json.NewEncoder(w).Encode(ml.body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func (ml *mockLedger) callCount() int {
	ml.mu.Lock()
	defer ml.mu.Unlock()
	return ml.calls
}

func seiAmount(t *testing.T, amount string) *big.Int {
	t.Helper()
	v, err := ParseNative(amount, schema.NativeDecimals)
	assert.NoError(t, err)
	return v
}

func testListing(price string) schema.Listing {
	return schema.Listing{
		ListingId:  "listing-1",
		ResearchId: "research-1",
		Seller:     "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
		Price:      price,
		Active:     true,
	}
}

func testWallet(balance string, t *testing.T) *mockWallet {
	return &mockWallet{
		addr:          ethcommon.HexToAddress("0x71C7656EC7ab88b098defB751B7401B5f6d8976F"),
		balance:       seiAmount(t, balance),
		sendHash:      ethcommon.HexToHash("0xabc"),
		receiptStatus: types.ReceiptStatusSuccessful,
	}
}

func TestPurchaseSuccess(t *testing.T) {
	wallet := testWallet("10.0", t)
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	assert.Equal(t, schema.PhaseConfirm, att.Phase)

	err := p.Confirm(context.Background(), att)
	assert.NoError(t, err)
	assert.Equal(t, schema.PhaseSuccess, att.Phase)
	assert.Equal(t, ethcommon.HexToHash("0xabc").Hex(), att.TxHash)
	assert.Equal(t, 1, ledger.callCount())
	assert.Equal(t, seiAmount(t, "2.5"), wallet.lastValue)
}

func TestPurchaseInsufficientBalance(t *testing.T) {
	wallet := testWallet("1.0", t)
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, schema.PhaseFailed, att.Phase)
	// both amounts surfaced with enough precision to tell small balances apart
	assert.Contains(t, att.ErrMsg, "2.500000")
	assert.Contains(t, att.ErrMsg, "1.000000")
	assert.Equal(t, 0, wallet.submissionCount())
	assert.Equal(t, 0, ledger.callCount())
}

func TestPurchaseSellerUnresolved(t *testing.T) {
	wallet := testWallet("10.0", t)
	p := NewPurchaser(wallet, NewLedgerCli(newMockLedger().server(t).URL))

	listing := testListing("2.5")
	listing.Seller = ""
	att := NewAttempt(listing, schema.WalletSession(wallet.addr.Hex()))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrSellerUnresolved)
	assert.Equal(t, 0, wallet.submissionCount())
}

func TestPurchaseWalletNotConnected(t *testing.T) {
	p := NewPurchaser(nil, NewLedgerCli(newMockLedger().server(t).URL))
	att := NewAttempt(testListing("2.5"), schema.DemoSession("203.0.113.7"))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrWalletNotConnected)
	assert.Equal(t, schema.PhaseFailed, att.Phase)
}

func TestPurchaseReverted(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.receiptStatus = types.ReceiptStatusFailed
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrTxReverted)
	assert.Equal(t, schema.PhaseFailed, att.Phase)
	assert.Contains(t, att.ErrMsg, "reverted")
	// a reverted transfer must never reach the ledger
	assert.Equal(t, 0, ledger.callCount())
}

func TestPurchaseLedgerFailure(t *testing.T) {
	wallet := testWallet("10.0", t)
	ledger := newMockLedger()
	ledger.status = http.StatusInternalServerError
	ledger.body = schema.LedgerResponse{Success: false, Error: "db down"}
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrLedgerAfterPayment)
	assert.NotErrorIs(t, err, ErrTxReverted)
	assert.NotErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, schema.PhaseFailed, att.Phase)
	// the message carries the confirmed hash so support can reconcile
	assert.Contains(t, att.ErrMsg, att.TxHash)
}

func TestPurchaseLedgerFalsePayload(t *testing.T) {
	wallet := testWallet("10.0", t)
	ledger := newMockLedger()
	ledger.body = schema.LedgerResponse{Success: false, Error: "listing not active"}
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrLedgerAfterPayment)
	assert.Contains(t, att.ErrMsg, "listing not active")
}

func TestPurchaseNoSubmitHash(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.sendHash = ethcommon.Hash{}
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrTxSubmit)
	assert.Equal(t, 0, ledger.callCount())
}

func TestPurchaseConfirmTimeout(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.receiptDelay = 10 * time.Second
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))
	p.confirmTimeout = 100 * time.Millisecond

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	start := time.Now()
	err := p.Confirm(context.Background(), att)
	assert.ErrorIs(t, err, ErrTxTimeout)
	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, schema.PhaseFailed, att.Phase)
	assert.Equal(t, 0, ledger.callCount())
}

func TestPurchaseSingleFlight(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.receiptDelay = 300 * time.Millisecond
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att1 := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	att2 := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))

	done := make(chan error, 1)
	go func() {
		done <- p.Confirm(context.Background(), att1)
	}()
	time.Sleep(100 * time.Millisecond)

	err := p.Confirm(context.Background(), att2)
	assert.ErrorIs(t, err, ErrAttemptInFlight)
	// the rejected attempt stays in confirm, untouched
	assert.Equal(t, schema.PhaseConfirm, att2.Phase)

	assert.NoError(t, <-done)
	assert.Equal(t, 1, wallet.submissionCount())
}

func TestPurchaseRetryResets(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.receiptStatus = types.ReceiptStatusFailed
	ledger := newMockLedger()
	p := NewPurchaser(wallet, NewLedgerCli(ledger.server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	assert.Error(t, p.Confirm(context.Background(), att))
	assert.Equal(t, schema.PhaseFailed, att.Phase)
	assert.NotEmpty(t, att.TxHash)
	assert.NotEmpty(t, att.ErrMsg)

	assert.NoError(t, p.Retry(att))
	assert.Equal(t, schema.PhaseConfirm, att.Phase)
	assert.Empty(t, att.TxHash)
	assert.Empty(t, att.ErrMsg)
	// context fields survive the reset
	assert.Equal(t, "listing-1", att.ListingId)
	assert.Equal(t, "2.5", att.Price)

	// retry only applies to failed attempts
	assert.ErrorIs(t, p.Retry(att), ErrWrongPhase)

	wallet.receiptStatus = types.ReceiptStatusSuccessful
	assert.NoError(t, p.Confirm(context.Background(), att))
	assert.Equal(t, schema.PhaseSuccess, att.Phase)
}

func TestPurchaseGasBuffer(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.estimateGas = 100000
	p := NewPurchaser(wallet, NewLedgerCli(newMockLedger().server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	assert.NoError(t, p.Confirm(context.Background(), att))
	assert.Equal(t, uint64(120000), wallet.lastGasLimit)
}

func TestPurchaseGasEstimateFallback(t *testing.T) {
	wallet := testWallet("10.0", t)
	wallet.estimateErr = assert.AnError
	p := NewPurchaser(wallet, NewLedgerCli(newMockLedger().server(t).URL))

	att := NewAttempt(testListing("2.5"), schema.WalletSession(wallet.addr.Hex()))
	// estimation failure falls back to the default, it does not abort
	assert.NoError(t, p.Confirm(context.Background(), att))
	assert.Equal(t, schema.DefaultTransferGas*120/100, wallet.lastGasLimit)
}
