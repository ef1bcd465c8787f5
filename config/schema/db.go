package schema

type FeeConfig struct {
	ID                 uint   `gorm:"primarykey"`
	PlatformFeePermille int64 `json:"platformFeePermille"` // seller payout = amount * (1000 - permille) / 1000
	FeeCollectAddress  string `json:"feeCollectAddress"`    // fee collection address
}

type IpRateWhitelist struct {
	OriginOrIP  string // e.g "188.0.2.2"
	Available   bool   `gorm:"index:idx3"` // true means effective
	Description string
}

type Param struct {
	ID             uint  `gorm:"primarykey"`
	DemoDailyLimit int64 // max demo purchases per identity per day
}
