package crowdfund

import (
	"fmt"
	"log/slog"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
)

// Campaign is a single crowdfunding effort: a contributor registry, a ledger
// of spending requests, approval voting and fund release.
//
// Every mutating method takes the campaign lock for its whole duration, so
// mutations are totally ordered and a failed call leaves no trace. Readers
// share the lock and always see a state between two mutations.
type Campaign struct {
	mu sync.RWMutex

	address common.Address
	manager common.Address
	minimum *big.Int
	balance *big.Int

	contributors map[common.Address]struct{}
	joined       []common.Address
	requests     []*request

	payout Payout
	logger *slog.Logger
}

// NewCampaign creates a campaign at address managed by manager. Contributions
// must be strictly greater than minimum to register a contributor.
func NewCampaign(address, manager common.Address, minimum *big.Int, opts ...Option) (*Campaign, error) {
	return newCampaign(address, manager, minimum, newSettings(opts))
}

func newCampaign(address, manager common.Address, minimum *big.Int, s settings) (*Campaign, error) {
	minimum = amountOrZero(minimum)
	if !validAmount(minimum) {
		return nil, ErrInvalidAmount
	}
	return &Campaign{
		address:      address,
		manager:      manager,
		minimum:      new(big.Int).Set(minimum),
		balance:      new(big.Int),
		contributors: make(map[common.Address]struct{}),
		payout:       s.payout,
		logger:       s.logger.With("campaign", address.Hex()),
	}, nil
}

// Address returns the campaign's address.
func (c *Campaign) Address() common.Address {
	return c.address
}

// Manager returns the identity allowed to create and complete requests.
func (c *Campaign) Manager() common.Address {
	return c.manager
}

// MinimumContribution returns the contribution floor (exclusive).
func (c *Campaign) MinimumContribution() *big.Int {
	return new(big.Int).Set(c.minimum)
}

// Contribute records value sent by caller. The caller becomes a contributor
// on the first contribution strictly above the minimum; later contributions
// only grow the balance.
func (c *Campaign) Contribute(caller common.Address, value *big.Int) error {
	value = amountOrZero(value)
	if !validAmount(value) {
		return ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if value.Cmp(c.minimum) <= 0 {
		return revert(ErrInsufficientContribution, ReasonInsufficientContribution)
	}

	sum := new(big.Int).Add(c.balance, value)
	if sum.Cmp(math.MaxBig256) > 0 {
		return ErrInvalidAmount
	}
	c.balance = sum

	if _, ok := c.contributors[caller]; !ok {
		c.contributors[caller] = struct{}{}
		c.joined = append(c.joined, caller)
		c.logger.Debug("contributor joined",
			"contributor", caller.Hex(),
			"contributors", len(c.joined),
		)
	}
	return nil
}

// CreateRequest appends a spending request and returns its index. Only the
// manager may create requests. The value is not checked against the balance
// until completion.
func (c *Campaign) CreateRequest(caller common.Address, description string, value *big.Int, recipient common.Address) (uint64, error) {
	value = amountOrZero(value)
	if !validAmount(value) {
		return 0, ErrInvalidAmount
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.manager {
		return 0, revert(ErrUnauthorized, ReasonManagerOnly)
	}

	index := uint64(len(c.requests))
	c.requests = append(c.requests, newRequest(description, value, recipient))
	c.logger.Debug("request created",
		"index", index,
		"value", value.String(),
		"recipient", recipient.Hex(),
	)
	return index, nil
}

// ApproveRequest records caller's approval of the request at index. Approvals
// cannot be withdrawn.
func (c *Campaign) ApproveRequest(caller common.Address, index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.contributors[caller]; !ok {
		return revert(ErrUnauthorized, ReasonContributorsOnly)
	}
	req, err := c.requestAt(index)
	if err != nil {
		return err
	}
	if req.approvedBy(caller) {
		return revert(ErrAlreadyApproved, ReasonAlreadyApproved)
	}

	req.approvals[caller] = struct{}{}
	return nil
}

// CompleteRequest pays out the request at index once the quorum is met.
//
// Checks run in a fixed order: manager, index, contributors present, balance
// covers the value, not already complete, quorum. The request is marked
// complete and the balance debited before the payout sink is credited; if
// the sink fails both are restored before the lock is released.
func (c *Campaign) CompleteRequest(caller common.Address, index uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if caller != c.manager {
		return revert(ErrUnauthorized, ReasonManagerOnly)
	}
	req, err := c.requestAt(index)
	if err != nil {
		return err
	}
	contributors := uint64(len(c.contributors))
	if contributors == 0 {
		return revert(ErrNoContributors, ReasonNoContributors)
	}
	if c.balance.Cmp(req.value) < 0 {
		return revert(ErrInsufficientFunds, ReasonInsufficientFunds)
	}
	if req.complete {
		return revert(ErrAlreadyComplete, ReasonAlreadyComplete)
	}
	if !QuorumReached(uint64(len(req.approvals)), contributors) {
		return revert(ErrQuorumNotMet, ReasonQuorumNotMet)
	}

	req.complete = true
	c.balance.Sub(c.balance, req.value)

	if c.payout != nil {
		if err := c.payout.Credit(req.recipient, req.value); err != nil {
			req.complete = false
			c.balance.Add(c.balance, req.value)
			return fmt.Errorf("crowdfund: paying out request %d: %w", index, err)
		}
	}

	c.logger.Info("request completed",
		"index", index,
		"value", req.value.String(),
		"recipient", req.recipient.Hex(),
		"approvals", len(req.approvals),
		"contributors", contributors,
	)
	return nil
}

// IsRequestApprovedBy reports whether caller approved the request at index.
func (c *Campaign) IsRequestApprovedBy(caller common.Address, index uint64) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	req, err := c.requestAt(index)
	if err != nil {
		return false, err
	}
	return req.approvedBy(caller), nil
}

// IsContributor reports whether addr has made a qualifying contribution.
func (c *Campaign) IsContributor(addr common.Address) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.contributors[addr]
	return ok
}

// ContributorsCount returns the number of distinct contributors.
func (c *Campaign) ContributorsCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint64(len(c.contributors))
}

// Contributors returns the contributors in the order they joined.
func (c *Campaign) Contributors() []common.Address {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]common.Address, len(c.joined))
	copy(out, c.joined)
	return out
}

// Request returns the request at index.
func (c *Campaign) Request(index uint64) (Request, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	req, err := c.requestAt(index)
	if err != nil {
		return Request{}, err
	}
	return req.view(), nil
}

// RequestsCount returns the number of requests ever created.
func (c *Campaign) RequestsCount() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return uint64(len(c.requests))
}

// Balance returns the funds currently held by the campaign.
func (c *Campaign) Balance() *big.Int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return new(big.Int).Set(c.balance)
}

// Summary returns the campaign's headline figures from a single snapshot.
func (c *Campaign) Summary() Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Summary{
		MinimumContribution: new(big.Int).Set(c.minimum),
		Balance:             new(big.Int).Set(c.balance),
		RequestsCount:       uint64(len(c.requests)),
		ContributorsCount:   uint64(len(c.contributors)),
		Manager:             c.manager,
	}
}

// requestAt must be called with the lock held.
func (c *Campaign) requestAt(index uint64) (*request, error) {
	if index >= uint64(len(c.requests)) {
		return nil, revert(ErrOutOfRange, ReasonOutOfRange)
	}
	return c.requests[index], nil
}
