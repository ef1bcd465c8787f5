package seimart

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/seimart/seimart/schema"
	"github.com/tidwall/gjson"
	"gopkg.in/h2non/gentleman.v2"
	"gopkg.in/h2non/gentleman.v2/plugins/body"
)

// LedgerCli talks to the purchase-completion endpoint. The on-chain transfer
// is the payment; this call is the access grant, so its result is the
// authoritative completion signal.
type LedgerCli struct {
	SCli *gentleman.Client
}

func NewLedgerCli(ledgerUrl string) *LedgerCli {
	return &LedgerCli{
		SCli: gentleman.New().URL(ledgerUrl),
	}
}

func (l *LedgerCli) CompletePurchase(req schema.LedgerRequest) (schema.RespPurchase, error) {
	r := l.SCli.Post()
	r.AddPath("/purchase/complete")
	r.Use(body.JSON(req))
	resp, err := r.Send()
	if err != nil {
		return schema.RespPurchase{}, err
	}
	defer resp.Close()

	raw := resp.Bytes()
	if !resp.Ok {
		errMsg := gjson.GetBytes(raw, "error").String()
		if errMsg == "" {
			errMsg = resp.String()
		}
		return schema.RespPurchase{}, fmt.Errorf("ledger status %d: %s", resp.StatusCode, errMsg)
	}

	res := schema.LedgerResponse{}
	if err := json.Unmarshal(raw, &res); err != nil {
		return schema.RespPurchase{}, err
	}
	if !res.Success {
		if res.Error == "" {
			res.Error = "ledger rejected purchase"
		}
		return schema.RespPurchase{}, errors.New(res.Error)
	}
	return res.Data, nil
}
