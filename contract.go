package crowdfund

import (
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Contract wraps a deployed contract's address and ABI for building calls.
type Contract struct {
	address common.Address
	abi     abi.ABI
}

// NewContract creates a Contract wrapper.
func NewContract(address common.Address, contractABI abi.ABI) *Contract {
	return &Contract{
		address: address,
		abi:     contractABI,
	}
}

// NewCampaignContract wraps a campaign at address.
func NewCampaignContract(address common.Address) *Contract {
	return NewContract(address, campaignABI)
}

// NewFactoryContract wraps a campaign factory at address.
func NewFactoryContract(address common.Address) *Contract {
	return NewContract(address, factoryABI)
}

// Address returns the contract address.
func (c *Contract) Address() common.Address {
	return c.address
}

// ABI returns the contract ABI.
func (c *Contract) ABI() abi.ABI {
	return c.abi
}

// Invoke creates a Call for the named method with the given arguments.
// Go integers are widened to *big.Int for uint256 parameters.
func (c *Contract) Invoke(methodName string, args ...any) (*Call, error) {
	method, ok := c.abi.Methods[methodName]
	if !ok {
		return nil, &MethodNotFoundError{Contract: c.address, Method: methodName}
	}

	return newCall(c, method, args)
}

// MustInvoke is like Invoke but panics on error.
func (c *Contract) MustInvoke(methodName string, args ...any) *Call {
	call, err := c.Invoke(methodName, args...)
	if err != nil {
		panic(err)
	}
	return call
}

// HasMethod returns true if the contract has a method with the given name.
func (c *Contract) HasMethod(methodName string) bool {
	_, ok := c.abi.Methods[methodName]
	return ok
}

// MethodNames returns all method names in the contract ABI, sorted.
func (c *Contract) MethodNames() []string {
	names := make([]string, 0, len(c.abi.Methods))
	for name := range c.abi.Methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseABI parses a JSON ABI string into an abi.ABI.
func ParseABI(abiJSON string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(abiJSON))
}

// MustParseABI is like ParseABI but panics on error.
func MustParseABI(abiJSON string) abi.ABI {
	parsed, err := ParseABI(abiJSON)
	if err != nil {
		panic(err)
	}
	return parsed
}

// ContractABI returns the ABI for a deployable contract name.
func ContractABI(name string) (abi.ABI, error) {
	switch name {
	case CampaignContract:
		return campaignABI, nil
	case FactoryContract:
		return factoryABI, nil
	default:
		return abi.ABI{}, ErrUnknownContract
	}
}
