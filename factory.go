package crowdfund

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

// Factory creates campaigns and keeps them in creation order.
type Factory struct {
	mu        sync.RWMutex
	address   common.Address
	nonce     uint64
	campaigns []*Campaign
	byAddress map[common.Address]*Campaign
	settings  settings
}

// NewFactory creates an empty factory at address. The options are applied to
// the factory and passed on to every campaign it creates.
func NewFactory(address common.Address, opts ...Option) *Factory {
	s := newSettings(opts)
	s.logger = s.logger.With("factory", address.Hex())
	return &Factory{
		address:   address,
		nonce:     1, // contract accounts start at nonce 1 (EIP-161)
		byAddress: make(map[common.Address]*Campaign),
		settings:  s,
	}
}

// Address returns the factory's address.
func (f *Factory) Address() common.Address {
	return f.address
}

// CreateCampaign deploys a campaign managed by caller. Its address is derived
// from the factory address and nonce the same way CREATE derives it.
func (f *Factory) CreateCampaign(caller common.Address, minimum *big.Int) (*Campaign, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	addr := crypto.CreateAddress(f.address, f.nonce)
	campaign, err := newCampaign(addr, caller, minimum, f.settings)
	if err != nil {
		return nil, err
	}
	f.nonce++
	f.campaigns = append(f.campaigns, campaign)
	f.byAddress[addr] = campaign

	f.settings.logger.Info("campaign created",
		"campaign", addr.Hex(),
		"manager", caller.Hex(),
		"minimum", campaign.minimum.String(),
	)
	return campaign, nil
}

// DeployedCampaigns returns the addresses of all created campaigns, oldest first.
func (f *Factory) DeployedCampaigns() []common.Address {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]common.Address, len(f.campaigns))
	for i, c := range f.campaigns {
		out[i] = c.address
	}
	return out
}

// Campaign looks up a campaign created by this factory.
func (f *Factory) Campaign(addr common.Address) (*Campaign, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	c, ok := f.byAddress[addr]
	return c, ok
}

// Len returns the number of campaigns created.
func (f *Factory) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.campaigns)
}
