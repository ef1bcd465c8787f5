package schema

type KafkaPurchaseEvent struct {
	OrderId    uint   `json:"orderId"`
	ListingId  string `json:"listingId"`
	ResearchId string `json:"researchId"`
	Buyer      string `json:"buyer"`
	Seller     string `json:"seller"`
	Amount     string `json:"amount"`
	TxHash     string `json:"txHash"`
	IsDemo     bool   `json:"isDemo"`
	Timestamp  int64  `json:"timestamp"` // unix s
}
