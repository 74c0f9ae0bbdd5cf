// Package chain provides an in-process crowdfund.Backend: a single-node,
// block-per-transaction chain that hosts campaign factories and campaigns,
// tracks account balances and journals every transaction for replay.
package chain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/branched-services/go-crowdfund"
)

// ErrNoReceive is returned when a payout targets a contract address.
// Contracts on this chain have no receive hook, so the payout is refused
// and the completing transaction reverts as a whole.
var ErrNoReceive = errors.New("chain: contract cannot receive funds")

var _ crowdfund.Backend = (*Chain)(nil)

// Chain is an in-process chain backend. Transactions are applied one at a
// time in submission order, each in its own block. Read-only calls run
// concurrently with each other and with transactions; each campaign's own
// lock keeps them consistent.
type Chain struct {
	mu sync.Mutex // serializes transactions

	state        sync.RWMutex // guards the maps below
	nonces       map[common.Address]uint64
	factories    map[common.Address]*crowdfund.Factory
	factoryOrder []common.Address
	campaigns    map[common.Address]*crowdfund.Campaign
	block        uint64

	ledger    *crowdfund.Ledger
	genesis   []GenesisAccount
	journal   Journal
	replaying bool

	logger       *slog.Logger
	promRegistry prometheus.Registerer
	metrics      *chainMetrics
}

// New creates a chain. Genesis accounts are funded immediately.
func New(opts ...Option) *Chain {
	c := &Chain{
		nonces:    make(map[common.Address]uint64),
		factories: make(map[common.Address]*crowdfund.Factory),
		campaigns: make(map[common.Address]*crowdfund.Campaign),
		ledger:    crowdfund.NewLedger(),
		logger:    slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("component", "chain")
	c.metrics = newChainMetrics(c.promRegistry)
	for _, acct := range c.genesis {
		if err := c.ledger.Credit(acct.Address, acct.Balance); err != nil {
			c.logger.Warn("skipping genesis account",
				"account", acct.Address.Hex(),
				"error", err,
			)
		}
	}
	return c
}

// Accounts returns the genesis accounts in the order they were configured.
func (c *Chain) Accounts() []common.Address {
	out := make([]common.Address, len(c.genesis))
	for i, acct := range c.genesis {
		out[i] = acct.Address
	}
	return out
}

// BlockNumber returns the number of the latest block.
func (c *Chain) BlockNumber() uint64 {
	c.state.RLock()
	defer c.state.RUnlock()
	return c.block
}

// Factory returns the factory deployed at addr.
func (c *Chain) Factory(addr common.Address) (*crowdfund.Factory, bool) {
	c.state.RLock()
	defer c.state.RUnlock()
	f, ok := c.factories[addr]
	return f, ok
}

// Factories returns the addresses of all deployed factories, oldest first.
func (c *Chain) Factories() []common.Address {
	c.state.RLock()
	defer c.state.RUnlock()
	out := make([]common.Address, len(c.factoryOrder))
	copy(out, c.factoryOrder)
	return out
}

// Campaign returns the campaign deployed at addr, whether created directly
// or through a factory.
func (c *Chain) Campaign(addr common.Address) (*crowdfund.Campaign, bool) {
	c.state.RLock()
	defer c.state.RUnlock()
	cp, ok := c.campaigns[addr]
	return cp, ok
}

// BalanceAt returns the wei held by account. Campaign balances come from the
// campaign itself.
func (c *Chain) BalanceAt(ctx context.Context, account common.Address) (*big.Int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if cp, ok := c.Campaign(account); ok {
		return cp.Balance(), nil
	}
	return c.ledger.BalanceOf(account), nil
}

// DeployContract creates a factory or a standalone campaign.
func (c *Chain) DeployContract(ctx context.Context, msg crowdfund.DeployMsg) (*crowdfund.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := crowdfund.ContractABI(msg.Contract); err != nil {
		return nil, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submit(ctx, &record{
		Kind:     recordDeploy,
		From:     msg.From,
		Contract: msg.Contract,
		Value:    new(big.Int),
		Data:     msg.Args,
	})
}

// SendTransaction applies a state-changing call. Value is moved from the
// sender before the call runs and refunded if it reverts.
func (c *Chain) SendTransaction(ctx context.Context, msg crowdfund.CallMsg) (*crowdfund.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, crowdfund.ErrNoContract
	}
	value := msg.Value
	if value == nil {
		value = new(big.Int)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.submit(ctx, &record{
		Kind:  recordCall,
		From:  msg.From,
		To:    *msg.To,
		Value: new(big.Int).Set(value),
		Data:  msg.Data,
	})
}

// CallContract runs a view method and returns its packed outputs. It never
// changes state.
func (c *Chain) CallContract(ctx context.Context, msg crowdfund.CallMsg) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if msg.To == nil {
		return nil, crowdfund.ErrNoContract
	}
	if msg.Value != nil && msg.Value.Sign() != 0 {
		return nil, crowdfund.ErrNonPayable
	}
	tgt, err := c.resolve(*msg.To, msg.Data)
	if err != nil {
		return nil, err
	}
	if !tgt.method.IsConstant() {
		return nil, crowdfund.ErrReadOnly
	}
	out, err := c.execute(tgt, msg.From, new(big.Int))
	if err != nil {
		return nil, err
	}
	return tgt.method.Outputs.Pack(out...)
}

// Replay re-applies every journaled transaction in order. It must run on a
// fresh chain built with the same genesis; the journal is not appended to
// while replaying. It returns the number of transactions applied.
func (c *Chain) Replay(ctx context.Context) (int, error) {
	if c.journal == nil {
		return 0, nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.replaying = true
	defer func() { c.replaying = false }()

	applied := 0
	err := c.journal.Replay(ctx, func(raw []byte) error {
		rec, err := decodeRecord(raw)
		if err != nil {
			return fmt.Errorf("decoding journal record %d: %w", applied, err)
		}
		// A failed receipt is a faithful replay; only a rejection diverges.
		if receipt, err := c.submit(ctx, rec); err != nil && receipt == nil {
			return fmt.Errorf("replaying journal record %d: %w", applied, err)
		}
		applied++
		return nil
	})
	if err != nil {
		return applied, err
	}
	c.logger.Info("journal replayed",
		"transactions", applied,
		"block", c.BlockNumber(),
	)
	return applied, nil
}

// submit validates, journals and applies a transaction. It must be called
// with c.mu held.
//
// Validation failures reject the transaction outright: no nonce is used,
// nothing is journaled and no receipt is produced. Once accepted, a
// transaction consumes a nonce and a block whether it succeeds or reverts.
func (c *Chain) submit(ctx context.Context, rec *record) (*crowdfund.Receipt, error) {
	var (
		tgt      *target
		ctorArgs []any
		method   string
	)
	switch rec.Kind {
	case recordDeploy:
		contractABI, err := crowdfund.ContractABI(rec.Contract)
		if err != nil {
			return nil, err
		}
		if len(contractABI.Constructor.Inputs) > 0 {
			ctorArgs, err = contractABI.Constructor.Inputs.Unpack(rec.Data)
			if err != nil {
				return nil, &crowdfund.DecodeError{Method: "constructor", Err: err}
			}
		}
		method = "deploy" + rec.Contract
	case recordCall:
		if rec.Value.Sign() < 0 || rec.Value.Cmp(math.MaxBig256) > 0 {
			return nil, crowdfund.ErrInvalidAmount
		}
		var err error
		tgt, err = c.resolve(rec.To, rec.Data)
		if err != nil {
			return nil, err
		}
		if rec.Value.Sign() > 0 && !tgt.method.IsPayable() {
			return nil, crowdfund.ErrNonPayable
		}
		if c.ledger.BalanceOf(rec.From).Cmp(rec.Value) < 0 {
			return nil, crowdfund.ErrInsufficientBalance
		}
		method = tgt.method.Name
	default:
		return nil, fmt.Errorf("chain: unknown record kind %d", rec.Kind)
	}

	if c.journal != nil && !c.replaying {
		raw, err := rec.encode()
		if err != nil {
			return nil, fmt.Errorf("chain: encoding journal record: %w", err)
		}
		if err := c.journal.Append(ctx, raw); err != nil {
			return nil, fmt.Errorf("chain: appending to journal: %w", err)
		}
	}

	c.state.Lock()
	nonce := c.nonces[rec.From]
	c.nonces[rec.From] = nonce + 1
	c.block++
	block := c.block
	c.state.Unlock()

	receipt := &crowdfund.Receipt{
		TxHash:      txHash(nonce, rec),
		BlockNumber: block,
		From:        rec.From,
		Status:      types.ReceiptStatusSuccessful,
	}

	var err error
	if rec.Kind == recordDeploy {
		receipt.ContractAddress, err = c.deploy(rec, nonce, ctorArgs)
	} else {
		to := rec.To
		receipt.To = &to
		receipt.Return, err = c.transact(tgt, rec)
	}

	status := "success"
	if err != nil {
		receipt.Status = types.ReceiptStatusFailed
		receipt.RevertReason = crowdfund.ReasonOf(err)
		status = "reverted"
		c.logger.Debug("transaction reverted",
			"tx", receipt.TxHash.Hex(),
			"method", method,
			"from", rec.From.Hex(),
			"error", err,
		)
	} else {
		c.logger.Debug("transaction applied",
			"tx", receipt.TxHash.Hex(),
			"method", method,
			"from", rec.From.Hex(),
			"block", block,
		)
	}
	c.metrics.observe(method, status, block, c.campaignCount())
	return receipt, err
}

// transact moves the value into the target and runs the method, undoing
// the value transfer if the method fails.
func (c *Chain) transact(t *target, rec *record) ([]byte, error) {
	if rec.Value.Sign() > 0 {
		if err := c.ledger.Debit(rec.From, rec.Value); err != nil {
			return nil, err
		}
	}
	out, err := c.execute(t, rec.From, rec.Value)
	if err != nil {
		if rec.Value.Sign() > 0 {
			if rerr := c.ledger.Credit(rec.From, rec.Value); rerr != nil {
				c.logger.Error("refunding reverted transaction",
					"from", rec.From.Hex(),
					"value", rec.Value.String(),
					"error", rerr,
				)
			}
		}
		return nil, err
	}
	return t.method.Outputs.Pack(out...)
}

// deploy creates the contract named in rec at the CREATE address of its sender.
func (c *Chain) deploy(rec *record, nonce uint64, ctorArgs []any) (common.Address, error) {
	addr := crypto.CreateAddress(rec.From, nonce)
	opts := []crowdfund.Option{
		crowdfund.WithPayout(payout{chain: c}),
		crowdfund.WithLogger(c.logger),
	}

	switch rec.Contract {
	case crowdfund.FactoryContract:
		f := crowdfund.NewFactory(addr, opts...)
		c.state.Lock()
		c.factories[addr] = f
		c.factoryOrder = append(c.factoryOrder, addr)
		c.state.Unlock()
	case crowdfund.CampaignContract:
		minimum, err := argAs[*big.Int]("constructor", ctorArgs, 0)
		if err != nil {
			return common.Address{}, err
		}
		creator, err := argAs[common.Address]("constructor", ctorArgs, 1)
		if err != nil {
			return common.Address{}, err
		}
		cp, err := crowdfund.NewCampaign(addr, creator, minimum, opts...)
		if err != nil {
			return common.Address{}, err
		}
		c.registerCampaign(cp)
	default:
		return common.Address{}, crowdfund.ErrUnknownContract
	}

	c.logger.Info("contract deployed",
		"contract", rec.Contract,
		"address", addr.Hex(),
		"from", rec.From.Hex(),
	)
	return addr, nil
}

func (c *Chain) registerCampaign(cp *crowdfund.Campaign) {
	c.state.Lock()
	defer c.state.Unlock()
	c.campaigns[cp.Address()] = cp
}

func (c *Chain) campaignCount() int {
	c.state.RLock()
	defer c.state.RUnlock()
	return len(c.campaigns)
}

// hasCode reports whether addr holds a contract.
func (c *Chain) hasCode(addr common.Address) bool {
	c.state.RLock()
	defer c.state.RUnlock()
	_, isFactory := c.factories[addr]
	_, isCampaign := c.campaigns[addr]
	return isFactory || isCampaign
}

func txHash(nonce uint64, rec *record) common.Hash {
	raw, err := rlp.EncodeToBytes(&txEnvelope{Nonce: nonce, Record: *rec})
	if err != nil {
		// All fields are RLP-encodable; this cannot happen.
		panic(err)
	}
	return crypto.Keccak256Hash(raw)
}

// payout credits completed request funds to plain accounts.
type payout struct {
	chain *Chain
}

func (p payout) Credit(to common.Address, amount *big.Int) error {
	if p.chain.hasCode(to) {
		return ErrNoReceive
	}
	return p.chain.ledger.Credit(to, amount)
}

// target is a decoded call: the contract it reaches and the method it runs.
type target struct {
	factory  *crowdfund.Factory
	campaign *crowdfund.Campaign
	method   abi.Method
	args     []any
}

// resolve finds the contract at addr and decodes data against its ABI.
func (c *Chain) resolve(addr common.Address, data []byte) (*target, error) {
	t := &target{}
	var contractABI abi.ABI
	if f, ok := c.Factory(addr); ok {
		t.factory = f
		contractABI, _ = crowdfund.ContractABI(crowdfund.FactoryContract)
	} else if cp, ok := c.Campaign(addr); ok {
		t.campaign = cp
		contractABI, _ = crowdfund.ContractABI(crowdfund.CampaignContract)
	} else {
		return nil, crowdfund.ErrNoContract
	}

	if len(data) < 4 {
		return nil, &crowdfund.DecodeError{Err: errors.New("call data shorter than a selector")}
	}
	method, err := contractABI.MethodById(data[:4])
	if err != nil {
		return nil, &crowdfund.DecodeError{Err: err}
	}
	args, err := method.Inputs.Unpack(data[4:])
	if err != nil {
		return nil, &crowdfund.DecodeError{Method: method.Name, Err: err}
	}
	t.method = *method
	t.args = args
	return t, nil
}
