package schema

import (
	"time"
)

const (
	// native SEI on the EVM side uses 18 decimals (asei)
	NativeDecimals = 18
	NativeSymbol   = "SEI"

	DefaultTransferGas    = uint64(21000)
	GasBufferPercent      = uint64(20)
	DefaultConfirmTimeout = 60 * time.Second
)

// purchase attempt phase
const (
	PhaseConfirm    = "confirm"
	PhaseProcessing = "processing"
	PhaseSuccess    = "success"
	PhaseFailed     = "failed"
)

// PurchaseAttempt is one in-flight purchase of a listing. It is transient;
// the only durable trace of a finished attempt is the ledger order row.
type PurchaseAttempt struct {
	ListingId  string
	ResearchId string
	Seller     string // receiving wallet address
	Price      string // decimal string, native SEI
	Session    Session

	Phase  string
	TxHash string // set once submission returned a hash
	ErrMsg string // set on failed
}

// session mode
const (
	SessionWallet = "wallet"
	SessionDemo   = "demo"
)

// Session identifies the buyer exactly once at the boundary: either a
// connected wallet or a demo identity keyed by an opaque identifier.
type Session struct {
	Mode    string
	Address string // wallet mode
	DemoId  string // demo mode
}

func WalletSession(addr string) Session {
	return Session{Mode: SessionWallet, Address: addr}
}

func DemoSession(id string) Session {
	return Session{Mode: SessionDemo, DemoId: id}
}

func (s Session) IsDemo() bool {
	return s.Mode == SessionDemo
}

// GranteeKey is the identity access grants and orders are recorded under.
func (s Session) GranteeKey() string {
	if s.IsDemo() {
		return "demo:" + s.DemoId
	}
	return s.Address
}

// LedgerRequest is the purchase-completion payload. The tx hash doubles as
// the idempotency key: replays must not double-record or double-grant.
type LedgerRequest struct {
	ListingId    string `json:"listing_id"`
	BuyerWallet  string `json:"buyer_wallet"`
	SellerWallet string `json:"seller_wallet"`
	Amount       string `json:"amount"`
	TxHash       string `json:"transaction_hash"`
	IsDemo       bool   `json:"is_demo"`
	DemoId       string `json:"demo_identifier,omitempty"`
}

type LedgerResponse struct {
	Success bool         `json:"success"`
	Error   string       `json:"error,omitempty"`
	Data    RespPurchase `json:"data,omitempty"`
}
