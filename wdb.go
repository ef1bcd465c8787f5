package seimart

import (
	"os"
	"path"
	"time"

	"github.com/seimart/seimart/schema"
	"github.com/shopspring/decimal"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const sqliteName = "seimart.sqlite"

type Wdb struct {
	Db *gorm.DB
}

func NewMysqlDb(dsn string) *Wdb {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect mysql db success")
	return &Wdb{Db: db}
}

func NewSqliteDb(dbDir string) *Wdb {
	if err := os.MkdirAll(dbDir, os.ModePerm); err != nil {
		panic(err)
	}
	db, err := gorm.Open(sqlite.Open(path.Join(dbDir, sqliteName)), &gorm.Config{
		Logger:          logger.Default.LogMode(logger.Error),
		CreateBatchSize: 200,
	})
	if err != nil {
		panic(err)
	}
	log.Info("connect sqlite db success")
	return &Wdb{Db: db}
}

func (w *Wdb) Migrate() error {
	return w.Db.AutoMigrate(
		&schema.Research{}, &schema.Listing{}, &schema.PurchaseOrder{},
		&schema.AccessGrant{}, &schema.TokenPrice{},
	)
}

func (w *Wdb) Close() {
	sql, err := w.Db.DB()
	if err == nil {
		sql.Close()
	}
}

// research

func (w *Wdb) InsertResearch(r schema.Research) error {
	return w.Db.Create(&r).Error
}

func (w *Wdb) GetResearch(researchId string) (res schema.Research, err error) {
	err = w.Db.Where("research_id = ?", researchId).First(&res).Error
	return
}

func (w *Wdb) GetResearchByOwner(owner string) ([]schema.Research, error) {
	res := make([]schema.Research, 0, 10)
	err := w.Db.Where("owner = ?", owner).Order("id desc").Find(&res).Error
	return res, err
}

// listings

func (w *Wdb) InsertListing(l schema.Listing) error {
	return w.Db.Create(&l).Error
}

func (w *Wdb) GetListing(listingId string) (res schema.Listing, err error) {
	err = w.Db.Where("listing_id = ?", listingId).First(&res).Error
	return
}

func (w *Wdb) GetActiveListings(limit int) ([]schema.Listing, error) {
	res := make([]schema.Listing, 0, limit)
	err := w.Db.Where("active = ?", true).Order("id desc").Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) DeactivateListing(listingId string) error {
	return w.Db.Model(&schema.Listing{}).Where("listing_id = ?", listingId).Update("active", false).Error
}

// ExpireListings deactivates listings whose expiry passed; returns how many.
func (w *Wdb) ExpireListings(nowUnix int64) (int64, error) {
	res := w.Db.Model(&schema.Listing{}).
		Where("active = ? and expired_at > 0 and expired_at <= ?", true, nowUnix).
		Update("active", false)
	return res.RowsAffected, res.Error
}

// orders

func (w *Wdb) GetOrdersByBuyer(buyer string) ([]schema.PurchaseOrder, error) {
	res := make([]schema.PurchaseOrder, 0, 10)
	err := w.Db.Where("buyer = ?", buyer).Order("id desc").Find(&res).Error
	return res, err
}

func (w *Wdb) GetOrderByTxHash(txHash string) (res schema.PurchaseOrder, err error) {
	err = w.Db.Where("tx_hash = ?", txHash).First(&res).Error
	return
}

func (w *Wdb) GetUnsentOrders(limit int) ([]schema.PurchaseOrder, error) {
	res := make([]schema.PurchaseOrder, 0, limit)
	err := w.Db.Where("event_status = ?", schema.UnSentEvent).Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) UpdateOrderEventStatus(id uint, status string) error {
	return w.Db.Model(&schema.PurchaseOrder{}).Where("id = ?", id).Update("event_status", status).Error
}

func (w *Wdb) GetWaitingVerifyOrders(limit int) ([]schema.PurchaseOrder, error) {
	res := make([]schema.PurchaseOrder, 0, limit)
	err := w.Db.Where("verify_status = ?", schema.WaitingVerify).Limit(limit).Find(&res).Error
	return res, err
}

func (w *Wdb) UpdateOrderVerifyStatus(id uint, status string) error {
	return w.Db.Model(&schema.PurchaseOrder{}).Where("id = ?", id).Update("verify_status", status).Error
}

func (w *Wdb) CountDemoOrders(buyer string, since time.Time) (int64, error) {
	var cnt int64
	err := w.Db.Model(&schema.PurchaseOrder{}).
		Where("buyer = ? and is_demo = ? and created_at >= ?", buyer, true, since).
		Count(&cnt).Error
	return cnt, err
}

// grants

func (w *Wdb) GetGrant(buyer, listingId string) (res schema.AccessGrant, err error) {
	err = w.Db.Where("buyer = ? and listing_id = ?", buyer, listingId).First(&res).Error
	return
}

func (w *Wdb) HasAccess(buyer, researchId string) bool {
	grant := schema.AccessGrant{}
	err := w.Db.Where("buyer = ? and research_id = ?", buyer, researchId).First(&grant).Error
	return err == nil
}

// CompletePurchase records the order and grants access in one transaction.
// The tx hash is the idempotency key: a replay returns the recorded order
// untouched, so access is never double-granted nor the payment double-counted.
// The platform fee is split out of the amount at record time; demo orders
// move no value so their split is zero and they need no chain verification.
func (w *Wdb) CompletePurchase(req schema.LedgerRequest, listing schema.Listing, buyer string, feePermille int64, feeAddress string) (order schema.PurchaseOrder, replayed bool, err error) {
	err = w.Db.Transaction(func(tx *gorm.DB) error {
		existing := schema.PurchaseOrder{}
		findErr := tx.Where("tx_hash = ?", req.TxHash).First(&existing).Error
		if findErr == nil {
			order = existing
			replayed = true
			return nil
		}
		if findErr != gorm.ErrRecordNotFound {
			return findErr
		}

		paymentStatus := schema.SuccPayment
		verifyStatus := schema.WaitingVerify
		fee, proceeds := decimal.Zero, decimal.Zero
		if req.IsDemo {
			paymentStatus = schema.DemoPayment
			verifyStatus = schema.SuccVerify
			feeAddress = ""
		} else {
			amount, decErr := decimal.NewFromString(req.Amount)
			if decErr != nil {
				return decErr
			}
			if feePermille > 0 {
				fee = amount.Mul(decimal.NewFromInt(feePermille)).
					Div(decimal.NewFromInt(1000)).Truncate(schema.NativeDecimals)
			} else {
				feeAddress = ""
			}
			proceeds = amount.Sub(fee)
		}
		order = schema.PurchaseOrder{
			ListingId:      listing.ListingId,
			ResearchId:     listing.ResearchId,
			Buyer:          buyer,
			Seller:         req.SellerWallet,
			Amount:         req.Amount,
			Decimals:       schema.NativeDecimals,
			Fee:            fee.String(),
			FeeAddress:     feeAddress,
			SellerProceeds: proceeds.String(),
			TxHash:         req.TxHash,
			IsDemo:         req.IsDemo,
			DemoId:         req.DemoId,
			PaymentStatus:  paymentStatus,
			EventStatus:    schema.UnSentEvent,
			VerifyStatus:   verifyStatus,
		}
		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		grant := schema.AccessGrant{
			Buyer:      buyer,
			ListingId:  listing.ListingId,
			ResearchId: listing.ResearchId,
			TxHash:     req.TxHash,
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&grant).Error
	})
	return
}

// prices

func (w *Wdb) InsertPrices(tps []schema.TokenPrice) error {
	return w.Db.Clauses(clause.OnConflict{DoNothing: true}).Create(&tps).Error
}

func (w *Wdb) UpdatePrice(symbol string, newPrice float64) error {
	return w.Db.Model(&schema.TokenPrice{}).Where("symbol = ?", symbol).
		Updates(map[string]interface{}{"price": newPrice, "updated_at": time.Now()}).Error
}

func (w *Wdb) GetPrices() ([]schema.TokenPrice, error) {
	res := make([]schema.TokenPrice, 0, 10)
	err := w.Db.Find(&res).Error
	return res, err
}
