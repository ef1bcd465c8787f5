package seimart

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/panjf2000/ants/v2"
	"github.com/seimart/seimart/schema"
	"github.com/tidwall/gjson"
)

var verifyReceiptTimeout = 15 * time.Second

func (s *Seimart) runJobs() {
	s.scheduler.Every(5).Minute().SingletonMode().Do(s.updateTokenPrice)
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.expireListings)
	s.scheduler.Every(30).Seconds().SingletonMode().Do(s.refreshListings)
	s.scheduler.Every(5).Seconds().SingletonMode().Do(s.publishPurchaseEvents)
	s.scheduler.Every(30).Seconds().SingletonMode().Do(s.verifyPendingOrders)
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.metricBalance)

	s.scheduler.StartAsync()
}

func (s *Seimart) updateTokenPrice() {
	// make sure the symbol row exists before the first price write
	tps := []schema.TokenPrice{
		{
			Symbol:   schema.NativeSymbol,
			Decimals: schema.NativeDecimals,
		},
	}
	if err := s.wdb.InsertPrices(tps); err != nil {
		log.Error("s.wdb.InsertPrices(tps)", "err", err)
		return
	}

	if s.priceFeedUrl == "" {
		return
	}
	price, err := fetchUsdPrice(s.priceFeedUrl)
	if err != nil {
		// keep the last stored price on feed failure
		log.Error("fetchUsdPrice(s.priceFeedUrl)", "err", err)
		return
	}

	existing, err := s.wdb.GetPrices()
	if err != nil {
		log.Error("s.wdb.GetPrices()", "err", err)
		return
	}
	for _, tp := range existing {
		if tp.ManualSet || !strings.EqualFold(tp.Symbol, schema.NativeSymbol) {
			continue
		}
		if err := s.wdb.UpdatePrice(tp.Symbol, price); err != nil {
			log.Error("s.wdb.UpdatePrice(tp.Symbol,price)", "err", err, "symbol", tp.Symbol, "price", price)
		}
	}
}

func fetchUsdPrice(feedUrl string) (float64, error) {
	client := http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(feedUrl)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, err
	}
	res := gjson.GetBytes(body, "price")
	if !res.Exists() {
		return 0, schema.ErrNotFound
	}
	return res.Float(), nil
}

// expired listings are deactivated here, never at purchase time
func (s *Seimart) expireListings() {
	cnt, err := s.wdb.ExpireListings(time.Now().Unix())
	if err != nil {
		log.Error("s.wdb.ExpireListings", "err", err)
		return
	}
	if cnt > 0 {
		log.Info("expired listings deactivated", "number", cnt)
	}
}

func (s *Seimart) refreshListings() {
	listings, err := s.wdb.GetActiveListings(500)
	if err != nil {
		log.Error("s.wdb.GetActiveListings(500)", "err", err)
		return
	}
	s.cache.UpdateListings(listings)
}

func (s *Seimart) publishPurchaseEvents() {
	if s.kwriter == nil {
		return
	}
	orders, err := s.wdb.GetUnsentOrders(50)
	if err != nil {
		log.Error("s.wdb.GetUnsentOrders(50)", "err", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	log.Debug("load unsent purchase events", "number", len(orders))
	var wg sync.WaitGroup
	p, _ := ants.NewPoolWithFunc(10, func(i interface{}) {
		defer wg.Done()
		order := i.(schema.PurchaseOrder)
		if err := s.publishPurchaseEvent(order); err != nil {
			log.Error("publishPurchaseEvent", "err", err, "orderId", order.ID)
			return
		}
	})
	defer p.Release()

	for _, order := range orders {
		wg.Add(1)
		_ = p.Invoke(order)
	}
	wg.Wait()
}

func (s *Seimart) publishPurchaseEvent(order schema.PurchaseOrder) error {
	event := schema.KafkaPurchaseEvent{
		OrderId:    order.ID,
		ListingId:  order.ListingId,
		ResearchId: order.ResearchId,
		Buyer:      order.Buyer,
		Seller:     order.Seller,
		Amount:     order.Amount,
		TxHash:     order.TxHash,
		IsDemo:     order.IsDemo,
		Timestamp:  order.CreatedAt.Unix(),
	}
	body, err := json.Marshal(&event)
	if err != nil {
		return err
	}
	if err := s.kwriter.Write(body); err != nil {
		return err
	}
	return s.wdb.UpdateOrderEventStatus(order.ID, schema.SentEvent)
}

// verifyPendingOrders re-checks receipts for orders the ledger recorded on
// the client's word. A reverted or vanished tx flags the order instead of
// leaving a grant backed by nothing.
func (s *Seimart) verifyPendingOrders() {
	if s.wallet == nil {
		return
	}
	orders, err := s.wdb.GetWaitingVerifyOrders(50)
	if err != nil {
		log.Error("s.wdb.GetWaitingVerifyOrders(50)", "err", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	var wg sync.WaitGroup
	p, _ := ants.NewPoolWithFunc(10, func(i interface{}) {
		defer wg.Done()
		order := i.(schema.PurchaseOrder)
		if err := s.verifyOrder(order); err != nil {
			log.Error("verifyOrder", "err", err, "orderId", order.ID)
		}
	})
	defer p.Release()

	for _, order := range orders {
		wg.Add(1)
		_ = p.Invoke(order)
	}
	wg.Wait()
}

func (s *Seimart) verifyOrder(order schema.PurchaseOrder) error {
	ctx, cancel := context.WithTimeout(context.Background(), verifyReceiptTimeout)
	defer cancel()
	receipt, err := s.wallet.WaitConfirmed(ctx, ethcommon.HexToHash(order.TxHash))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			// receipt not available yet; the next sweep retries
			return nil
		}
		return err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		log.Warn("recorded order tx reverted on chain", "orderId", order.ID, "tx", order.TxHash)
		return s.wdb.UpdateOrderVerifyStatus(order.ID, schema.FailedVerify)
	}
	return s.wdb.UpdateOrderVerifyStatus(order.ID, schema.SuccVerify)
}

func (s *Seimart) metricBalance() {
	if s.wallet == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	bal, err := s.wallet.Balance(ctx)
	if err != nil {
		log.Error("s.wallet.Balance(ctx)", "err", err)
		return
	}
	metricTreasuryBalance(bal, s.treasury)
}
