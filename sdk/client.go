package sdk

import (
	"errors"
	"fmt"

	"github.com/seimart/seimart/schema"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"
)

// MartCli is the plain HTTP client for the marketplace API.
type MartCli struct {
	SCli *gentleman.Client
}

func NewMartCli(martUrl string) *MartCli {
	return &MartCli{
		SCli: gentleman.New().URL(martUrl),
	}
}

func (m *MartCli) GetInfo() (info schema.RespInfo, err error) {
	err = m.getJson("/info", &info)
	return
}

func (m *MartCli) GetListing(listingId string) (listing schema.Listing, err error) {
	err = m.getJson(fmt.Sprintf("/listing/%s", listingId), &listing)
	return
}

func (m *MartCli) GetListings() ([]schema.Listing, error) {
	listings := make([]schema.Listing, 0)
	err := m.getJson("/listings", &listings)
	return listings, err
}

func (m *MartCli) GetOrders(buyer string) ([]schema.PurchaseOrder, error) {
	orders := make([]schema.PurchaseOrder, 0)
	err := m.getJson(fmt.Sprintf("/orders/%s", buyer), &orders)
	return orders, err
}

func (m *MartCli) GetAccess(buyer, listingId string) (access schema.RespAccess, err error) {
	err = m.getJson(fmt.Sprintf("/access/%s/%s", buyer, listingId), &access)
	return
}

func (m *MartCli) SubmitResearch(req schema.ReqSubmitResearch, walletAddr string) (res schema.RespResearch, err error) {
	err = m.postJson("/research", req, walletAddr, &res)
	return
}

func (m *MartCli) CreateListing(req schema.ReqCreateListing, walletAddr string) (listing schema.Listing, err error) {
	err = m.postJson("/listing", req, walletAddr, &listing)
	return
}

func (m *MartCli) getJson(path string, out interface{}) error {
	req := m.SCli.Get()
	req.AddPath(path)
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	return resp.JSON(out)
}

func (m *MartCli) postJson(path string, payload interface{}, walletAddr string, out interface{}) error {
	req := m.SCli.Post()
	req.AddPath(path)
	if walletAddr != "" {
		req.SetHeader("X-Wallet-Address", walletAddr)
	}
	req.Use(body.JSON(payload))
	resp, err := req.Send()
	if err != nil {
		return err
	}
	defer resp.Close()
	if !resp.Ok {
		return errors.New(fmt.Sprintf("resp failed: %s", resp.String()))
	}
	return resp.JSON(out)
}
