package crowdfund

import (
	"bytes"
	"context"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// stubBackend answers calls from canned outputs and records what it was sent.
type stubBackend struct {
	sent    []CallMsg
	deploys []DeployMsg
	outputs map[string][]any
	err     error
}

func (b *stubBackend) DeployContract(_ context.Context, msg DeployMsg) (*Receipt, error) {
	b.deploys = append(b.deploys, msg)
	return &Receipt{ContractAddress: common.HexToAddress("0xde"), Status: types.ReceiptStatusSuccessful}, b.err
}

func (b *stubBackend) SendTransaction(_ context.Context, msg CallMsg) (*Receipt, error) {
	b.sent = append(b.sent, msg)
	if b.err != nil {
		return &Receipt{Status: types.ReceiptStatusFailed, RevertReason: ReasonOf(b.err)}, b.err
	}
	return &Receipt{Status: types.ReceiptStatusSuccessful}, nil
}

func (b *stubBackend) CallContract(_ context.Context, msg CallMsg) ([]byte, error) {
	b.sent = append(b.sent, msg)
	method, err := campaignABI.MethodById(msg.Data[:4])
	if err != nil {
		method, err = factoryABI.MethodById(msg.Data[:4])
		if err != nil {
			return nil, err
		}
	}
	return method.Outputs.Pack(b.outputs[method.Name]...)
}

func (b *stubBackend) BalanceAt(context.Context, common.Address) (*big.Int, error) {
	return new(big.Int), nil
}

func TestCampaignSessionTransactions(t *testing.T) {
	ctx := context.Background()
	addr := common.HexToAddress("0xc0")
	b := &stubBackend{}
	s := NewCampaignSession(addr, b)

	if _, err := s.Contribute(ctx, contributor(1), big.NewInt(101)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.CreateRequest(ctx, testManager, "parts", big.NewInt(5), testRecipient); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.ApproveRequest(ctx, contributor(1), 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, err := s.CompleteRequest(ctx, testManager, 0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(b.sent) != 4 {
		t.Fatalf("Expected 4 messages, got %d", len(b.sent))
	}
	contribute := b.sent[0]
	if contribute.From != contributor(1) || contribute.Value.Int64() != 101 || *contribute.To != addr {
		t.Errorf("Unexpected contribute message %+v", contribute)
	}
	if !bytes.Equal(contribute.Data, campaignABI.Methods["contribute"].ID) {
		t.Errorf("Unexpected contribute data %x", contribute.Data)
	}
	if b.sent[1].Value != nil {
		t.Error("Expected createRequest to carry no value")
	}
}

func TestCampaignSessionRevert(t *testing.T) {
	b := &stubBackend{err: revert(ErrQuorumNotMet, ReasonQuorumNotMet)}
	s := NewCampaignSession(common.HexToAddress("0xc0"), b)

	receipt, err := s.CompleteRequest(context.Background(), testManager, 0)
	if !errors.Is(err, ErrQuorumNotMet) {
		t.Fatalf("Expected ErrQuorumNotMet, got %v", err)
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusFailed {
		t.Errorf("Expected failed receipt, got %+v", receipt)
	}
}

func TestCampaignSessionViews(t *testing.T) {
	ctx := context.Background()
	b := &stubBackend{outputs: map[string][]any{
		"manager":               {testManager},
		"minimumContribution":   {big.NewInt(100)},
		"contributors":          {true},
		"contributorsCount":     {big.NewInt(3)},
		"getRequestsCount":      {big.NewInt(2)},
		"isRequestApprovedByMe": {true},
		"requests":              {"parts", big.NewInt(5), testRecipient, false, big.NewInt(1)},
		"getSummary":            {big.NewInt(100), big.NewInt(300), big.NewInt(2), big.NewInt(3), testManager},
	}}
	s := NewCampaignSession(common.HexToAddress("0xc0"), b)

	manager, err := s.Manager(ctx)
	if err != nil || manager != testManager {
		t.Errorf("Manager: got %s (%v)", manager.Hex(), err)
	}
	minimum, err := s.MinimumContribution(ctx)
	if err != nil || minimum.Int64() != 100 {
		t.Errorf("MinimumContribution: got %v (%v)", minimum, err)
	}
	ok, err := s.IsContributor(ctx, contributor(1))
	if err != nil || !ok {
		t.Errorf("IsContributor: got %v (%v)", ok, err)
	}
	count, err := s.ContributorsCount(ctx)
	if err != nil || count != 3 {
		t.Errorf("ContributorsCount: got %d (%v)", count, err)
	}
	count, err = s.RequestsCount(ctx)
	if err != nil || count != 2 {
		t.Errorf("RequestsCount: got %d (%v)", count, err)
	}

	approved, err := s.IsRequestApprovedBy(ctx, contributor(2), 1)
	if err != nil || !approved {
		t.Errorf("IsRequestApprovedBy: got %v (%v)", approved, err)
	}
	if last := b.sent[len(b.sent)-1]; last.From != contributor(2) {
		t.Errorf("Expected the approval query to be sent from the asker, got %s", last.From.Hex())
	}

	req, err := s.Request(ctx, 1)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if req.Description != "parts" || req.Value.Int64() != 5 || req.Recipient != testRecipient || req.Complete || req.ApprovalsCount != 1 {
		t.Errorf("Unexpected request %+v", req)
	}

	sum, err := s.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.Balance.Int64() != 300 || sum.RequestsCount != 2 || sum.ContributorsCount != 3 || sum.Manager != testManager {
		t.Errorf("Unexpected summary %+v", sum)
	}
}

func TestFactorySession(t *testing.T) {
	ctx := context.Background()
	campaigns := []common.Address{common.HexToAddress("0x01"), common.HexToAddress("0x02")}
	b := &stubBackend{outputs: map[string][]any{
		"getDeployedContracts": {campaigns},
	}}

	s, receipt, err := DeployFactory(ctx, b, testManager)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if s.Address() != receipt.ContractAddress {
		t.Error("Expected session bound to the deployed address")
	}
	if len(b.deploys) != 1 || b.deploys[0].Contract != FactoryContract {
		t.Errorf("Unexpected deploys %+v", b.deploys)
	}

	if _, err := s.CreateCampaign(ctx, testManager, big.NewInt(100)); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	got, err := s.DeployedCampaigns(ctx)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(got) != 2 || got[0] != campaigns[0] || got[1] != campaigns[1] {
		t.Errorf("Expected %v, got %v", campaigns, got)
	}
}

func TestDeployCampaignPacksConstructor(t *testing.T) {
	b := &stubBackend{}
	_, _, err := DeployCampaign(context.Background(), b, contributor(1), big.NewInt(100), testManager)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	args, err := campaignABI.Constructor.Inputs.Unpack(b.deploys[0].Args)
	if err != nil {
		t.Fatalf("Unpack: %v", err)
	}
	if args[0].(*big.Int).Int64() != 100 || args[1].(common.Address) != testManager {
		t.Errorf("Unexpected constructor args %v", args)
	}
}

func TestAsUint64Overflow(t *testing.T) {
	huge := new(big.Int).Lsh(big.NewInt(1), 70)
	if _, err := asUint64("contributorsCount", huge); err == nil {
		t.Error("Expected overflow error")
	}
	if _, err := asBool("x", "not a bool"); err == nil {
		t.Error("Expected type error")
	}
}
