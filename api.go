package seimart

import (
	"encoding/json"
	"net/http"
	"time"

	ethcommon "github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/seimart/seimart/common"
	"github.com/seimart/seimart/schema"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func (s *Seimart) runAPI(port string) {
	r := s.engine
	r.Use(common.CORSMiddleware())
	r.Use(common.LimiterMiddleware(600, "M", s.config.GetIPWhiteList))
	v1 := r.Group("/")
	{
		v1.GET("/info", s.getInfo)

		// research artifacts
		v1.POST("/research", s.submitResearch)
		v1.GET("/research/:id", s.getResearch)

		// marketplace listings
		v1.POST("/listing", s.createListing)
		v1.POST("/listing/kill/:id", s.killListing)
		v1.GET("/listing/:id", s.getListing)
		v1.GET("/listings", s.getListings)

		// purchase ledger; the tx hash is the idempotency key
		v1.POST("/purchase/complete", s.completePurchase)
		v1.GET("/orders/:buyer", s.getOrders)
		v1.GET("/access/:buyer/:listing", s.getAccess)
	}

	if err := r.Run(port); err != nil {
		panic(err)
	}
}

// resolveSession derives the caller identity once at the boundary: a valid
// wallet address header, or a demo identity keyed by client IP.
func resolveSession(c *gin.Context) schema.Session {
	addr := c.GetHeader("X-Wallet-Address")
	if ethcommon.IsHexAddress(addr) {
		return schema.WalletSession(ethcommon.HexToAddress(addr).Hex())
	}
	return schema.DemoSession(c.ClientIP())
}

func (s *Seimart) getInfo(c *gin.Context) {
	info := s.cache.GetInfo()
	info.FeePermille = s.config.GetPlatformFeePermille()
	c.JSON(http.StatusOK, info)
}

func (s *Seimart) submitResearch(c *gin.Context) {
	req := schema.ReqSubmitResearch{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}
	if req.Title == "" {
		errorResponse(c, "title can not be null")
		return
	}
	if len(req.Content) == 0 {
		errorResponse(c, schema.ErrNullData.Error())
		return
	}
	if len(req.Content) > schema.MaxArtifactSize {
		errorResponse(c, schema.ErrDataTooBig.Error())
		return
	}

	session := resolveSession(c)
	researchId := uuid.NewString()
	if err := s.store.SaveArtifact(researchId, []byte(req.Content)); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}

	tags, err := json.Marshal(req.Tags)
	if err != nil {
		errorResponse(c, err.Error())
		return
	}
	research := schema.Research{
		ResearchId:  researchId,
		Title:       req.Title,
		Summary:     req.Summary,
		Category:    req.Category,
		Tags:        tags,
		Owner:       session.GranteeKey(),
		Public:      req.Public,
		Completed:   true,
		ContentSize: int64(len(req.Content)),
	}
	if err := s.wdb.InsertResearch(research); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespResearch{Research: research})
}

func (s *Seimart) getResearch(c *gin.Context) {
	researchId := c.Param("id")
	research, err := s.wdb.GetResearch(researchId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			notFoundResponse(c, schema.ErrNotFound.Error())
			return
		}
		internalErrorResponse(c, err.Error())
		return
	}

	session := resolveSession(c)
	caller := session.GranteeKey()
	if !research.Public && research.Owner != caller && !s.wdb.HasAccess(caller, researchId) {
		c.JSON(http.StatusForbidden, schema.RespErr{Err: schema.ErrNoAccess.Error()})
		return
	}

	content, err := s.cache.GetContent(researchId)
	if err != nil {
		content, err = s.store.LoadArtifact(researchId)
		if err != nil {
			internalErrorResponse(c, err.Error())
			return
		}
		if err := s.cache.SetContent(researchId, content); err != nil {
			log.Warn("cache research content", "err", err, "researchId", researchId)
		}
	}
	c.JSON(http.StatusOK, schema.RespResearch{Research: research, Content: string(content)})
}

func (s *Seimart) createListing(c *gin.Context) {
	req := schema.ReqCreateListing{}
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, err.Error())
		return
	}

	session := resolveSession(c)
	if session.IsDemo() {
		// only wallet-backed users can receive payments
		errorResponse(c, ErrWalletNotConnected.Error())
		return
	}
	if _, err := ParseNative(req.Price, schema.NativeDecimals); err != nil {
		errorResponse(c, err.Error())
		return
	}

	research, err := s.wdb.GetResearch(req.ResearchId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			notFoundResponse(c, schema.ErrNotFound.Error())
			return
		}
		internalErrorResponse(c, err.Error())
		return
	}
	if research.Owner != session.GranteeKey() {
		c.JSON(http.StatusForbidden, schema.RespErr{Err: schema.ErrNoAccess.Error()})
		return
	}
	if research.Public {
		errorResponse(c, "public research can not be listed")
		return
	}
	if !research.Completed {
		errorResponse(c, "research not completed")
		return
	}

	listing := schema.Listing{
		ListingId:  uuid.NewString(),
		ResearchId: req.ResearchId,
		Seller:     session.Address,
		Price:      req.Price,
		Active:     true,
		ExpiredAt:  req.ExpiredAt,
	}
	if err := s.wdb.InsertListing(listing); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Seimart) killListing(c *gin.Context) {
	listingId := c.Param("id")
	listing, err := s.wdb.GetListing(listingId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			notFoundResponse(c, schema.ErrNotFound.Error())
			return
		}
		internalErrorResponse(c, err.Error())
		return
	}

	session := resolveSession(c)
	if listing.Seller != session.GranteeKey() {
		c.JSON(http.StatusForbidden, schema.RespErr{Err: schema.ErrNoAccess.Error()})
		return
	}
	if err := s.wdb.DeactivateListing(listingId); err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"killed": listingId})
}

func (s *Seimart) getListing(c *gin.Context) {
	listing, err := s.wdb.GetListing(c.Param("id"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			notFoundResponse(c, schema.ErrNotFound.Error())
			return
		}
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, listing)
}

func (s *Seimart) getListings(c *gin.Context) {
	listings := s.cache.GetListings()
	if len(listings) == 0 {
		var err error
		listings, err = s.wdb.GetActiveListings(500)
		if err != nil {
			internalErrorResponse(c, err.Error())
			return
		}
		s.cache.UpdateListings(listings)
	}
	c.JSON(http.StatusOK, listings)
}

// completePurchase is the ledger endpoint: given a confirmed on-chain
// transfer it records the order, grants access and queues the export event,
// all in one transaction. Replays return the already-recorded order.
func (s *Seimart) completePurchase(c *gin.Context) {
	req := schema.LedgerRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		ledgerErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}
	if req.TxHash == "" {
		ledgerErrorResponse(c, http.StatusBadRequest, "transaction_hash can not be null")
		return
	}

	buyer := ""
	switch {
	case req.IsDemo && req.DemoId != "":
		buyer = schema.DemoSession(req.DemoId).GranteeKey()
	case ethcommon.IsHexAddress(req.BuyerWallet):
		buyer = ethcommon.HexToAddress(req.BuyerWallet).Hex()
	default:
		ledgerErrorResponse(c, http.StatusBadRequest, "buyer identity unresolved")
		return
	}

	listing, err := s.wdb.GetListing(req.ListingId)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			ledgerErrorResponse(c, http.StatusNotFound, schema.ErrNotFound.Error())
			return
		}
		ledgerErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if !listing.Active {
		ledgerErrorResponse(c, http.StatusBadRequest, "listing not active")
		return
	}

	// amounts compare as exact decimals, not strings
	want, err := decimal.NewFromString(listing.Price)
	if err != nil {
		ledgerErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	got, err := decimal.NewFromString(req.Amount)
	if err != nil || !got.Equal(want) {
		ledgerErrorResponse(c, http.StatusBadRequest, "amount does not match listing price")
		return
	}

	// demo identities get a hard daily cap; replays of an already-recorded
	// hash pass through so idempotent retries are never blocked
	if req.IsDemo {
		if _, findErr := s.wdb.GetOrderByTxHash(req.TxHash); findErr == gorm.ErrRecordNotFound {
			limit := s.config.GetDemoDailyLimit()
			cnt, cntErr := s.wdb.CountDemoOrders(buyer, time.Now().Add(-24*time.Hour))
			if cntErr != nil {
				ledgerErrorResponse(c, http.StatusInternalServerError, cntErr.Error())
				return
			}
			if limit > 0 && cnt >= limit {
				ledgerErrorResponse(c, http.StatusTooManyRequests, "demo purchase limit reached")
				return
			}
		}
	}

	order, replayed, err := s.wdb.CompletePurchase(req, listing, buyer,
		s.config.GetPlatformFeePermille(), s.config.GetFeeCollectAddress())
	if err != nil {
		ledgerErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}
	if replayed {
		metricPurchase("replayed")
	} else {
		metricPurchase("completed")
	}

	c.JSON(http.StatusOK, schema.LedgerResponse{
		Success: true,
		Data: schema.RespPurchase{
			OrderId:    order.ID,
			ListingId:  order.ListingId,
			ResearchId: order.ResearchId,
			Buyer:      order.Buyer,
			TxHash:     order.TxHash,
			Replayed:   replayed,
		},
	})
}

func (s *Seimart) getOrders(c *gin.Context) {
	orders, err := s.wdb.GetOrdersByBuyer(c.Param("buyer"))
	if err != nil {
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (s *Seimart) getAccess(c *gin.Context) {
	grant, err := s.wdb.GetGrant(c.Param("buyer"), c.Param("listing"))
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusOK, schema.RespAccess{Granted: false})
			return
		}
		internalErrorResponse(c, err.Error())
		return
	}
	c.JSON(http.StatusOK, schema.RespAccess{Granted: true, TxHash: grant.TxHash})
}

func errorResponse(c *gin.Context, err string) {
	// client error
	c.JSON(http.StatusBadRequest, schema.RespErr{
		Err: err,
	})
}

func notFoundResponse(c *gin.Context, err string) {
	c.JSON(http.StatusNotFound, schema.RespErr{
		Err: err,
	})
}

func internalErrorResponse(c *gin.Context, err string) {
	c.JSON(http.StatusInternalServerError, schema.RespErr{
		Err: err,
	})
}

// ledger responses always carry the success flag so clients can distinguish
// an explicit failure payload from transport errors.
func ledgerErrorResponse(c *gin.Context, status int, err string) {
	c.JSON(status, schema.LedgerResponse{
		Success: false,
		Error:   err,
	})
}
