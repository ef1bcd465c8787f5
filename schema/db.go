package schema

import (
	"gorm.io/datatypes"
	"time"
)

const (
	// order payment status
	SuccPayment = "paid"
	DemoPayment = "demo"

	// order event export status
	UnSentEvent = "unsent"
	SentEvent   = "sent"

	// on-chain verification status; the sweep job moves orders out of waiting
	WaitingVerify = "waiting"
	SuccVerify    = "verified"
	FailedVerify  = "failed"

	MaxArtifactSize = 50 * 1024 * 1024 // 50 MB
)

type Research struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ResearchId string `gorm:"index:idx_research01,unique" json:"researchId"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	Category   string `json:"category"`
	Tags       datatypes.JSON `json:"tags"` // json.marshal([]string)

	Owner       string `gorm:"index:idx_research02" json:"owner"` // wallet address or demo key
	Public      bool   `json:"public"`
	Completed   bool   `json:"completed"`
	ContentSize int64  `json:"contentSize"`
}

type Listing struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ListingId  string `gorm:"index:idx_listing01,unique" json:"listingId"`
	ResearchId string `gorm:"index:idx_listing02" json:"researchId"`
	Seller     string `gorm:"index:idx_listing03" json:"seller"` // receiving wallet address
	Price      string `json:"price"`                             // positive decimal string, native SEI
	Active     bool   `json:"active"`
	ExpiredAt  int64  `json:"expiredAt"` // unix s; 0 means never
}

type PurchaseOrder struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	ListingId  string `gorm:"index:idx_order01" json:"listingId"`
	ResearchId string `json:"researchId"`
	Buyer      string `gorm:"index:idx_order02" json:"buyer"` // grantee key, see GranteeKey
	Seller     string `json:"seller"`
	Amount     string `json:"amount"` // decimal string, native SEI
	Decimals   int    `json:"decimals"`

	// platform cut of Amount per the fee config; SellerProceeds is the rest
	Fee            string `json:"fee"`
	FeeAddress     string `json:"feeAddress"`
	SellerProceeds string `json:"sellerProceeds"`

	TxHash string `gorm:"index:idx_order03,unique" json:"txHash"`
	IsDemo bool   `json:"isDemo"`
	DemoId string `json:"demoId"`

	PaymentStatus string `json:"paymentStatus"` // "paid", "demo"
	EventStatus   string `json:"-"`             // "unsent", "sent"
	VerifyStatus  string `gorm:"index:idx_order04" json:"-"` // "waiting", "verified", "failed"
}

type AccessGrant struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Buyer      string `gorm:"index:idx_grant01,unique" json:"buyer"`
	ListingId  string `gorm:"index:idx_grant01,unique" json:"listingId"`
	ResearchId string `gorm:"index:idx_grant02" json:"researchId"`
	TxHash     string `json:"txHash"`
}

type TokenPrice struct {
	Symbol    string `gorm:"primarykey"` // token symbol
	Decimals  int
	Price     float64 // unit is USD
	ManualSet bool    // manual set
	UpdatedAt time.Time
}
