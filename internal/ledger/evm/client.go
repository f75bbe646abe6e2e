// Package evm implements the ledger client against an Ethereum JSON-RPC
// endpoint using a bound contract instance and a server-held signing key.
package evm

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/smallbiznis/couponview/internal/ledger"
)

// Config holds the connection and signing parameters for the EVM client.
type Config struct {
	RPCURL          string
	ContractAddress string
	PrivateKey      string
	ChainID         int64
}

// Client talks to the coupon contract. It satisfies ledger.Client.
type Client struct {
	rpc      *ethclient.Client
	contract *bind.BoundContract
	key      *ecdsa.PrivateKey
	chainID  *big.Int
	log      *zap.Logger
}

var _ ledger.Client = (*Client)(nil)

// Dial connects to the RPC endpoint and binds the contract.
func Dial(ctx context.Context, cfg Config, log *zap.Logger) (*Client, error) {
	rpc, err := ethclient.DialContext(ctx, cfg.RPCURL)
	if err != nil {
		return nil, fmt.Errorf("dial ledger rpc: %w", err)
	}

	parsed, err := abi.JSON(strings.NewReader(couponABI))
	if err != nil {
		return nil, fmt.Errorf("parse contract abi: %w", err)
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse signing key: %w", err)
	}

	address := common.HexToAddress(cfg.ContractAddress)
	contract := bind.NewBoundContract(address, parsed, rpc, rpc, rpc)

	return &Client{
		rpc:      rpc,
		contract: contract,
		key:      key,
		chainID:  big.NewInt(cfg.ChainID),
		log:      log.Named("ledger.evm"),
	}, nil
}

// Close releases the underlying RPC connection.
func (c *Client) Close() {
	c.rpc.Close()
}

func (c *Client) OwnedOrganizationIDs(ctx context.Context, identity string) ([]uint64, error) {
	return c.callIDList(ctx, identity, "getMyOrganizations")
}

func (c *Client) OwnedCouponIDs(ctx context.Context, identity string) ([]uint64, error) {
	return c.callIDList(ctx, identity, "getMyCoupons")
}

func (c *Client) OrganizationCouponIDs(ctx context.Context, orgID uint64) ([]uint64, error) {
	return c.callIDList(ctx, "", "getOrganizationCoupons", new(big.Int).SetUint64(orgID))
}

func (c *Client) Organization(ctx context.Context, id uint64) (ledger.RawOrganization, error) {
	var out []any
	if err := c.contract.Call(c.callOpts(ctx, ""), &out, "getOrganization", new(big.Int).SetUint64(id)); err != nil {
		return ledger.RawOrganization{}, fmt.Errorf("getOrganization %d: %w", id, err)
	}
	return ledger.DecodeOrganizationRecord(out)
}

func (c *Client) Coupon(ctx context.Context, id uint64) (ledger.RawCoupon, error) {
	var out []any
	if err := c.contract.Call(c.callOpts(ctx, ""), &out, "getCoupon", new(big.Int).SetUint64(id)); err != nil {
		return ledger.RawCoupon{}, fmt.Errorf("getCoupon %d: %w", id, err)
	}
	return ledger.DecodeCouponRecord(out)
}

func (c *Client) CouponIDByCode(ctx context.Context, code string) (uint64, error) {
	var out []any
	if err := c.contract.Call(c.callOpts(ctx, ""), &out, "getCouponIdByCode", code); err != nil {
		return 0, fmt.Errorf("getCouponIdByCode: %w", err)
	}
	if len(out) != 1 {
		return 0, fmt.Errorf("%w: getCouponIdByCode returned %d values", ledger.ErrRecordLength, len(out))
	}
	id, ok := out[0].(*big.Int)
	if !ok || !id.IsUint64() {
		return 0, fmt.Errorf("%w: getCouponIdByCode returned %T", ledger.ErrRecordField, out[0])
	}
	return id.Uint64(), nil
}

func (c *Client) CreateOrganization(ctx context.Context, name, description string) (ledger.PendingTx, error) {
	return c.transact(ctx, "createOrganization", name, description)
}

func (c *Client) CreateCoupon(ctx context.Context, orgID uint64, code string, discountAmount uint64, recipientEmail string) (ledger.PendingTx, error) {
	return c.transact(ctx, "createCoupon",
		new(big.Int).SetUint64(orgID), code, new(big.Int).SetUint64(discountAmount), recipientEmail)
}

func (c *Client) UseCoupon(ctx context.Context, couponID uint64) (ledger.PendingTx, error) {
	return c.transact(ctx, "useCoupon", new(big.Int).SetUint64(couponID))
}

func (c *Client) ShareCoupon(ctx context.Context, couponID uint64, recipientEmail string) (ledger.PendingTx, error) {
	return c.transact(ctx, "shareCoupon", new(big.Int).SetUint64(couponID), recipientEmail)
}

func (c *Client) LinkCouponToWallet(ctx context.Context, code string) (ledger.PendingTx, error) {
	return c.transact(ctx, "linkCouponToWallet", code)
}

// callOpts builds read options. Identity-scoped contract views resolve their
// result set from the caller address, so From must carry the acting wallet.
func (c *Client) callOpts(ctx context.Context, identity string) *bind.CallOpts {
	opts := &bind.CallOpts{Context: ctx}
	if identity != "" {
		opts.From = common.HexToAddress(identity)
	}
	return opts
}

func (c *Client) callIDList(ctx context.Context, identity, method string, args ...any) ([]uint64, error) {
	var out []any
	if err := c.contract.Call(c.callOpts(ctx, identity), &out, method, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	if len(out) != 1 {
		return nil, fmt.Errorf("%w: %s returned %d values", ledger.ErrRecordLength, method, len(out))
	}
	raw, ok := out[0].([]*big.Int)
	if !ok {
		return nil, fmt.Errorf("%w: %s returned %T", ledger.ErrRecordField, method, out[0])
	}
	ids := make([]uint64, 0, len(raw))
	for _, v := range raw {
		if v == nil || !v.IsUint64() {
			return nil, fmt.Errorf("%w: %s returned out-of-range id", ledger.ErrRecordField, method)
		}
		ids = append(ids, v.Uint64())
	}
	return ids, nil
}

func (c *Client) transact(ctx context.Context, method string, args ...any) (ledger.PendingTx, error) {
	auth, err := bind.NewKeyedTransactorWithChainID(c.key, c.chainID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ledger.ErrSubmitFailed, err)
	}
	auth.Context = ctx

	tx, err := c.contract.Transact(auth, method, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ledger.ErrSubmitFailed, method, err)
	}

	c.log.Debug("transaction submitted",
		zap.String("method", method),
		zap.String("tx_hash", tx.Hash().Hex()),
	)
	return &pendingTx{rpc: c.rpc, tx: tx}, nil
}

type pendingTx struct {
	rpc *ethclient.Client
	tx  *types.Transaction
}

func (p *pendingTx) Hash() string { return p.tx.Hash().Hex() }

func (p *pendingTx) Wait(ctx context.Context) (ledger.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, p.rpc, p.tx)
	if err != nil {
		return ledger.Receipt{}, fmt.Errorf("wait for receipt %s: %w", p.tx.Hash().Hex(), err)
	}
	return ledger.Receipt{
		TxHash: receipt.TxHash.Hex(),
		Status: receipt.Status,
	}, nil
}
