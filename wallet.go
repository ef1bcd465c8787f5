package seimart

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
)

const receiptPollInterval = 2 * time.Second

// Wallet is the capability set the purchase orchestrator needs from a chain
// account. SeiWallet is the real implementation; tests substitute a fake.
type Wallet interface {
	Address() common.Address
	// Balance always queries the node; callers must not cache it across a
	// confirmation boundary.
	Balance(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, to common.Address, value *big.Int) (uint64, error)
	SendTransfer(ctx context.Context, to common.Address, value *big.Int, gasLimit uint64) (common.Hash, error)
	// WaitConfirmed blocks until the receipt is available or ctx is done.
	WaitConfirmed(ctx context.Context, txHash common.Hash) (*types.Receipt, error)
}

// SeiWallet drives a single account on the SEI EVM chain.
type SeiWallet struct {
	client  *ethclient.Client
	chainId *big.Int
	prvKey  *ecdsa.PrivateKey
	addr    common.Address
}

func NewSeiWallet(rpcUrl, prvHex string) (*SeiWallet, error) {
	client, err := ethclient.Dial(rpcUrl)
	if err != nil {
		return nil, err
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(prvHex, "0x"))
	if err != nil {
		return nil, err
	}
	chainId, err := client.ChainID(context.Background())
	if err != nil {
		return nil, err
	}
	return &SeiWallet{
		client:  client,
		chainId: chainId,
		prvKey:  key,
		addr:    crypto.PubkeyToAddress(key.PublicKey),
	}, nil
}

func (w *SeiWallet) Address() common.Address {
	return w.addr
}

func (w *SeiWallet) ChainId() *big.Int {
	return w.chainId
}

func (w *SeiWallet) Balance(ctx context.Context) (*big.Int, error) {
	return w.client.BalanceAt(ctx, w.addr, nil)
}

func (w *SeiWallet) EstimateGas(ctx context.Context, to common.Address, value *big.Int) (uint64, error) {
	return w.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  w.addr,
		To:    &to,
		Value: value,
	})
}

func (w *SeiWallet) SendTransfer(ctx context.Context, to common.Address, value *big.Int, gasLimit uint64) (common.Hash, error) {
	nonce, err := w.client.PendingNonceAt(ctx, w.addr)
	if err != nil {
		return common.Hash{}, err
	}
	gasPrice, err := w.client.SuggestGasPrice(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &to,
		Value:    value,
		Gas:      gasLimit,
		GasPrice: gasPrice,
	})
	signedTx, err := types.SignTx(tx, types.LatestSignerForChainID(w.chainId), w.prvKey)
	if err != nil {
		return common.Hash{}, err
	}
	if err := w.client.SendTransaction(ctx, signedTx); err != nil {
		return common.Hash{}, err
	}
	return signedTx.Hash(), nil
}

func (w *SeiWallet) WaitConfirmed(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := w.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
