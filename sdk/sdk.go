package sdk

import (
	"context"

	"github.com/seimart/seimart"
	"github.com/seimart/seimart/schema"
)

// SDK bundles the marketplace client with a wallet-backed purchaser so one
// call drives a purchase end to end. Every buying surface shares this flow;
// there is exactly one implementation of the purchase sequence.
type SDK struct {
	Cli *MartCli

	wallet    *seimart.SeiWallet
	purchaser *seimart.Purchaser
	session   schema.Session
}

func New(martUrl, rpcUrl, prvHex string) (*SDK, error) {
	wallet, err := seimart.NewSeiWallet(rpcUrl, prvHex)
	if err != nil {
		return nil, err
	}
	return &SDK{
		Cli:       NewMartCli(martUrl),
		wallet:    wallet,
		purchaser: seimart.NewPurchaser(wallet, seimart.NewLedgerCli(martUrl)),
		session:   schema.WalletSession(wallet.Address().Hex()),
	}, nil
}

func (s *SDK) Address() string {
	return s.wallet.Address().Hex()
}

// Buy fetches the listing, then runs one purchase attempt to a terminal
// phase. The returned attempt carries the phase, tx hash and error message.
func (s *SDK) Buy(ctx context.Context, listingId string) (*schema.PurchaseAttempt, error) {
	listing, err := s.Cli.GetListing(listingId)
	if err != nil {
		return nil, err
	}
	att := seimart.NewAttempt(listing, s.session)
	if err := s.purchaser.Confirm(ctx, att); err != nil {
		return att, err
	}
	return att, nil
}

// Retry resets a failed attempt and runs it again.
func (s *SDK) Retry(ctx context.Context, att *schema.PurchaseAttempt) error {
	if err := s.purchaser.Retry(att); err != nil {
		return err
	}
	return s.purchaser.Confirm(ctx, att)
}
