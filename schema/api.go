package schema

const (
	AllowMaxRespDataSize = 50 * 1024 * 1024 // 50 MB
)

type ReqSubmitResearch struct {
	Title    string   `json:"title"`
	Summary  string   `json:"summary"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
	Public   bool     `json:"public"`
	Content  string   `json:"content"` // markdown body
}

type ReqCreateListing struct {
	ResearchId string `json:"researchId"`
	Price      string `json:"price"`     // decimal string, native SEI
	ExpiredAt  int64  `json:"expiredAt"` // unix s; 0 means never
}

type RespInfo struct {
	Network     string `json:"network"`
	ChainId     int64  `json:"chainId"`
	Treasury    string `json:"treasury"`
	FeePermille int64  `json:"feePermille"`
}

type RespResearch struct {
	Research
	Content string `json:"content,omitempty"` // only when the caller may read it
}

type RespPurchase struct {
	OrderId    uint   `json:"orderId"`
	ListingId  string `json:"listingId"`
	ResearchId string `json:"researchId"`
	Buyer      string `json:"buyer"`
	TxHash     string `json:"txHash"`
	Replayed   bool   `json:"replayed"` // true when the tx hash was already recorded
}

type RespAccess struct {
	Granted bool   `json:"granted"`
	TxHash  string `json:"txHash,omitempty"`
}

type RespErr struct {
	Err string `json:"error"`
}

func (r RespErr) Error() string {
	return r.Err
}
