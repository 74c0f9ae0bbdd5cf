package crowdfund

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// session pairs a contract with the backend it lives on.
type session struct {
	contract *Contract
	backend  Backend
}

func (s *session) transact(ctx context.Context, from common.Address, value *big.Int, method string, args ...any) (*Receipt, error) {
	call, err := s.contract.Invoke(method, args...)
	if err != nil {
		return nil, err
	}
	if value != nil {
		call = call.WithValue(value)
	}
	return call.Transact(ctx, s.backend, from)
}

func (s *session) query(ctx context.Context, from common.Address, method string, args ...any) ([]any, error) {
	call, err := s.contract.Invoke(method, args...)
	if err != nil {
		return nil, err
	}
	out, err := call.Query(ctx, s.backend, from)
	if err != nil {
		return nil, err
	}
	if len(out) != len(call.Method().Outputs) {
		return nil, &DecodeError{Method: method, Err: fmt.Errorf("expected %d outputs, got %d", len(call.Method().Outputs), len(out))}
	}
	return out, nil
}

// Address returns the bound contract's address.
func (s *session) Address() common.Address {
	return s.contract.Address()
}

// FactorySession is a typed binding to a deployed campaign factory.
type FactorySession struct {
	session
}

// NewFactorySession binds to the factory at address.
func NewFactorySession(address common.Address, backend Backend) *FactorySession {
	return &FactorySession{session{contract: NewFactoryContract(address), backend: backend}}
}

// DeployFactory creates a new factory on backend, sent by from.
func DeployFactory(ctx context.Context, backend Backend, from common.Address) (*FactorySession, *Receipt, error) {
	receipt, err := backend.DeployContract(ctx, DeployMsg{From: from, Contract: FactoryContract})
	if err != nil {
		return nil, receipt, err
	}
	return NewFactorySession(receipt.ContractAddress, backend), receipt, nil
}

// CreateCampaign creates a campaign managed by from.
func (s *FactorySession) CreateCampaign(ctx context.Context, from common.Address, minimum *big.Int) (*Receipt, error) {
	return s.transact(ctx, from, nil, "createCampaign", minimum)
}

// DeployedCampaigns returns the factory's campaigns in creation order.
func (s *FactorySession) DeployedCampaigns(ctx context.Context) ([]common.Address, error) {
	out, err := s.query(ctx, common.Address{}, "getDeployedContracts")
	if err != nil {
		return nil, err
	}
	addrs, ok := out[0].([]common.Address)
	if !ok {
		return nil, outputTypeError("getDeployedContracts", "[]common.Address", out[0])
	}
	return addrs, nil
}

// CampaignSession is a typed binding to a deployed campaign.
type CampaignSession struct {
	session
}

// NewCampaignSession binds to the campaign at address.
func NewCampaignSession(address common.Address, backend Backend) *CampaignSession {
	return &CampaignSession{session{contract: NewCampaignContract(address), backend: backend}}
}

// DeployCampaign creates a standalone campaign on backend managed by manager.
func DeployCampaign(ctx context.Context, backend Backend, from common.Address, minimum *big.Int, manager common.Address) (*CampaignSession, *Receipt, error) {
	ctor := campaignABI.Constructor
	args, err := ctor.Inputs.Pack(amountOrZero(minimum), manager)
	if err != nil {
		return nil, nil, &ArgumentError{Method: "constructor", Index: -1, Err: err}
	}
	receipt, err := backend.DeployContract(ctx, DeployMsg{From: from, Contract: CampaignContract, Args: args})
	if err != nil {
		return nil, receipt, err
	}
	return NewCampaignSession(receipt.ContractAddress, backend), receipt, nil
}

// Contribute sends value from from to the campaign.
func (s *CampaignSession) Contribute(ctx context.Context, from common.Address, value *big.Int) (*Receipt, error) {
	return s.transact(ctx, from, value, "contribute")
}

// CreateRequest proposes paying value to recipient.
func (s *CampaignSession) CreateRequest(ctx context.Context, from common.Address, description string, value *big.Int, recipient common.Address) (*Receipt, error) {
	return s.transact(ctx, from, nil, "createRequest", description, value, recipient)
}

// ApproveRequest approves the request at index on behalf of from.
func (s *CampaignSession) ApproveRequest(ctx context.Context, from common.Address, index uint64) (*Receipt, error) {
	return s.transact(ctx, from, nil, "approveRequest", index)
}

// CompleteRequest pays out the request at index.
func (s *CampaignSession) CompleteRequest(ctx context.Context, from common.Address, index uint64) (*Receipt, error) {
	return s.transact(ctx, from, nil, "completeRequest", index)
}

// IsRequestApprovedBy reports whether who approved the request at index.
func (s *CampaignSession) IsRequestApprovedBy(ctx context.Context, who common.Address, index uint64) (bool, error) {
	out, err := s.query(ctx, who, "isRequestApprovedByMe", index)
	if err != nil {
		return false, err
	}
	return asBool("isRequestApprovedByMe", out[0])
}

// Manager returns the campaign manager.
func (s *CampaignSession) Manager(ctx context.Context) (common.Address, error) {
	out, err := s.query(ctx, common.Address{}, "manager")
	if err != nil {
		return common.Address{}, err
	}
	return asAddress("manager", out[0])
}

// MinimumContribution returns the contribution floor.
func (s *CampaignSession) MinimumContribution(ctx context.Context) (*big.Int, error) {
	out, err := s.query(ctx, common.Address{}, "minimumContribution")
	if err != nil {
		return nil, err
	}
	return asBig("minimumContribution", out[0])
}

// IsContributor reports whether addr is a contributor.
func (s *CampaignSession) IsContributor(ctx context.Context, addr common.Address) (bool, error) {
	out, err := s.query(ctx, common.Address{}, "contributors", addr)
	if err != nil {
		return false, err
	}
	return asBool("contributors", out[0])
}

// ContributorsCount returns the number of contributors.
func (s *CampaignSession) ContributorsCount(ctx context.Context) (uint64, error) {
	out, err := s.query(ctx, common.Address{}, "contributorsCount")
	if err != nil {
		return 0, err
	}
	return asUint64("contributorsCount", out[0])
}

// RequestsCount returns the number of requests.
func (s *CampaignSession) RequestsCount(ctx context.Context) (uint64, error) {
	out, err := s.query(ctx, common.Address{}, "getRequestsCount")
	if err != nil {
		return 0, err
	}
	return asUint64("getRequestsCount", out[0])
}

// Request returns the request at index.
func (s *CampaignSession) Request(ctx context.Context, index uint64) (Request, error) {
	out, err := s.query(ctx, common.Address{}, "requests", index)
	if err != nil {
		return Request{}, err
	}
	var req Request
	if req.Description, err = asString("requests", out[0]); err != nil {
		return Request{}, err
	}
	if req.Value, err = asBig("requests", out[1]); err != nil {
		return Request{}, err
	}
	if req.Recipient, err = asAddress("requests", out[2]); err != nil {
		return Request{}, err
	}
	if req.Complete, err = asBool("requests", out[3]); err != nil {
		return Request{}, err
	}
	if req.ApprovalsCount, err = asUint64("requests", out[4]); err != nil {
		return Request{}, err
	}
	return req, nil
}

// Summary returns the campaign's headline figures.
func (s *CampaignSession) Summary(ctx context.Context) (Summary, error) {
	out, err := s.query(ctx, common.Address{}, "getSummary")
	if err != nil {
		return Summary{}, err
	}
	var sum Summary
	if sum.MinimumContribution, err = asBig("getSummary", out[0]); err != nil {
		return Summary{}, err
	}
	if sum.Balance, err = asBig("getSummary", out[1]); err != nil {
		return Summary{}, err
	}
	if sum.RequestsCount, err = asUint64("getSummary", out[2]); err != nil {
		return Summary{}, err
	}
	if sum.ContributorsCount, err = asUint64("getSummary", out[3]); err != nil {
		return Summary{}, err
	}
	if sum.Manager, err = asAddress("getSummary", out[4]); err != nil {
		return Summary{}, err
	}
	return sum, nil
}

func outputTypeError(method, want string, got any) error {
	return &DecodeError{Method: method, Err: fmt.Errorf("expected %s, got %T", want, got)}
}

func asBool(method string, v any) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, outputTypeError(method, "bool", v)
	}
	return b, nil
}

func asString(method string, v any) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", outputTypeError(method, "string", v)
	}
	return s, nil
}

func asAddress(method string, v any) (common.Address, error) {
	a, ok := v.(common.Address)
	if !ok {
		return common.Address{}, outputTypeError(method, "common.Address", v)
	}
	return a, nil
}

func asBig(method string, v any) (*big.Int, error) {
	b, ok := v.(*big.Int)
	if !ok {
		return nil, outputTypeError(method, "*big.Int", v)
	}
	return b, nil
}

func asUint64(method string, v any) (uint64, error) {
	b, err := asBig(method, v)
	if err != nil {
		return 0, err
	}
	if !b.IsUint64() {
		return 0, &DecodeError{Method: method, Err: fmt.Errorf("value %s overflows uint64", b)}
	}
	return b.Uint64(), nil
}
