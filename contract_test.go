package crowdfund

import (
	"errors"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewContract(t *testing.T) {
	addr := common.HexToAddress("0x1234567890123456789012345678901234567890")

	t.Run("campaign contract", func(t *testing.T) {
		c := NewCampaignContract(addr)
		if c.Address() != addr {
			t.Errorf("Expected address %s, got %s", addr.Hex(), c.Address().Hex())
		}
		for _, name := range []string{
			"contribute", "createRequest", "approveRequest", "completeRequest",
			"isRequestApprovedByMe", "manager", "minimumContribution",
			"contributors", "contributorsCount", "requests",
			"getRequestsCount", "getSummary",
		} {
			if !c.HasMethod(name) {
				t.Errorf("Expected method %q", name)
			}
		}
		if len(c.ABI().Constructor.Inputs) != 2 {
			t.Errorf("Expected 2 constructor inputs, got %d", len(c.ABI().Constructor.Inputs))
		}
	})

	t.Run("factory contract", func(t *testing.T) {
		c := NewFactoryContract(addr)
		names := c.MethodNames()
		if len(names) != 2 || names[0] != "createCampaign" || names[1] != "getDeployedContracts" {
			t.Errorf("Unexpected methods %v", names)
		}
	})
}

func TestMethodMutability(t *testing.T) {
	c := NewCampaignContract(common.Address{})
	abi := c.ABI()

	if !abi.Methods["contribute"].IsPayable() {
		t.Error("Expected contribute to be payable")
	}
	for _, name := range []string{"createRequest", "approveRequest", "completeRequest"} {
		m := abi.Methods[name]
		if m.IsPayable() || m.IsConstant() {
			t.Errorf("Expected %s to be nonpayable", name)
		}
	}
	for _, name := range []string{"getSummary", "requests", "isRequestApprovedByMe", "manager"} {
		if !abi.Methods[name].IsConstant() {
			t.Errorf("Expected %s to be a view", name)
		}
	}
}

func TestInvokeUnknownMethod(t *testing.T) {
	addr := common.HexToAddress("0xc0")
	c := NewCampaignContract(addr)

	_, err := c.Invoke("withdraw")
	var mnf *MethodNotFoundError
	if !errors.As(err, &mnf) {
		t.Fatalf("Expected *MethodNotFoundError, got %T", err)
	}
	if mnf.Method != "withdraw" || mnf.Contract != addr {
		t.Errorf("Unexpected error fields %+v", mnf)
	}
}

func TestMustInvokePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected panic")
		}
	}()
	NewCampaignContract(common.Address{}).MustInvoke("withdraw")
}

func TestContractABI(t *testing.T) {
	if _, err := ContractABI(CampaignContract); err != nil {
		t.Errorf("Expected campaign ABI, got %v", err)
	}
	if _, err := ContractABI(FactoryContract); err != nil {
		t.Errorf("Expected factory ABI, got %v", err)
	}
	if _, err := ContractABI("Token"); !errors.Is(err, ErrUnknownContract) {
		t.Errorf("Expected ErrUnknownContract, got %v", err)
	}
}

func TestParseABI(t *testing.T) {
	if _, err := ParseABI("not json"); err == nil {
		t.Error("Expected error for invalid ABI")
	}
	defer func() {
		if recover() == nil {
			t.Error("Expected MustParseABI to panic")
		}
	}()
	MustParseABI("not json")
}
