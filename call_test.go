package crowdfund

import (
	"bytes"
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestNewCall(t *testing.T) {
	addr := common.HexToAddress("0x1234567890123456789012345678901234567890")
	contract := NewCampaignContract(addr)

	t.Run("creates call with correct arguments", func(t *testing.T) {
		call, err := contract.Invoke("createRequest", "Buy batteries", big.NewInt(100), testRecipient)
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if call.Contract() != contract {
			t.Error("Call should reference original contract")
		}
		if call.Method().Name != "createRequest" {
			t.Errorf("Expected method name 'createRequest', got %q", call.Method().Name)
		}
		if len(call.Args()) != 3 {
			t.Errorf("Expected 3 args, got %d", len(call.Args()))
		}
	})

	t.Run("data starts with the selector", func(t *testing.T) {
		call := contract.MustInvoke("approveRequest", 3)
		sel := call.Selector()
		if !bytes.Equal(call.Data()[:4], sel[:]) {
			t.Error("Expected data to start with selector")
		}
		if !bytes.Equal(sel[:], contract.ABI().Methods["approveRequest"].ID) {
			t.Error("Selector does not match ABI method ID")
		}
		if len(call.Data()) != 4+32 {
			t.Errorf("Expected 36 bytes of call data, got %d", len(call.Data()))
		}
	})

	t.Run("Go integers widen to uint256", func(t *testing.T) {
		for _, v := range []any{int(7), int64(7), uint64(7), int32(7), uint32(7), uint(7)} {
			call, err := contract.Invoke("approveRequest", v)
			if err != nil {
				t.Fatalf("Invoke with %T: %v", v, err)
			}
			got, ok := call.Args()[0].(*big.Int)
			if !ok || got.Int64() != 7 {
				t.Errorf("Expected *big.Int 7 for %T, got %v", v, call.Args()[0])
			}
		}
	})

	t.Run("wrong argument count", func(t *testing.T) {
		_, err := contract.Invoke("createRequest", "x")
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("Expected *ArgumentError, got %T", err)
		}
		if !errors.Is(err, ErrArgumentCount) {
			t.Error("Expected ErrArgumentCount in chain")
		}
	})

	t.Run("wrong argument type", func(t *testing.T) {
		_, err := contract.Invoke("approveRequest", "zero")
		var argErr *ArgumentError
		if !errors.As(err, &argErr) {
			t.Fatalf("Expected *ArgumentError, got %T", err)
		}
		if argErr.Index != -1 {
			t.Errorf("Expected index -1 for pack failure, got %d", argErr.Index)
		}
	})

	t.Run("data is a copy", func(t *testing.T) {
		call := contract.MustInvoke("approveRequest", 1)
		data := call.Data()
		data[0] ^= 0xff
		if bytes.Equal(call.Data(), data) {
			t.Error("Mutating Data() result changed the call")
		}
	})
}

func TestCallModifiers(t *testing.T) {
	contract := NewCampaignContract(common.HexToAddress("0xc0"))
	base := contract.MustInvoke("contribute")

	withValue := base.WithValue(big.NewInt(101))
	if base.EthValue() != nil {
		t.Error("WithValue should not modify the original")
	}
	if withValue.EthValue().Int64() != 101 {
		t.Errorf("Expected value 101, got %s", withValue.EthValue())
	}

	static := base.Static()
	if base.IsStatic() || !static.IsStatic() {
		t.Error("Static should return a modified copy")
	}
}

func TestCallMsg(t *testing.T) {
	addr := common.HexToAddress("0xc0")
	from := contributor(1)
	call := NewCampaignContract(addr).MustInvoke("contribute").WithValue(big.NewInt(5))

	msg := call.Msg(from)
	if msg.From != from {
		t.Errorf("Expected from %s, got %s", from.Hex(), msg.From.Hex())
	}
	if msg.To == nil || *msg.To != addr {
		t.Errorf("Expected to %s, got %v", addr.Hex(), msg.To)
	}
	if msg.Value.Int64() != 5 {
		t.Errorf("Expected value 5, got %s", msg.Value)
	}
	if !bytes.Equal(msg.Data, call.Data()) {
		t.Error("Expected msg data to equal call data")
	}
}

func TestCallValidate(t *testing.T) {
	contract := NewCampaignContract(common.HexToAddress("0xc0"))

	tests := []struct {
		name string
		call *Call
		want error
	}{
		{"payable with value", contract.MustInvoke("contribute").WithValue(big.NewInt(1)), nil},
		{"nonpayable with value", contract.MustInvoke("approveRequest", 0).WithValue(big.NewInt(1)), ErrNonPayable},
		{"nonpayable with zero value", contract.MustInvoke("approveRequest", 0).WithValue(big.NewInt(0)), nil},
		{"static view", contract.MustInvoke("getSummary").Static(), nil},
		{"static mutating", contract.MustInvoke("completeRequest", 0).Static(), ErrReadOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.call.validate(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCallUnpack(t *testing.T) {
	contract := NewCampaignContract(common.HexToAddress("0xc0"))
	call := contract.MustInvoke("getRequestsCount")

	packed, err := call.Method().Outputs.Pack(big.NewInt(4))
	if err != nil {
		t.Fatal(err)
	}
	out, err := call.Unpack(packed)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out[0].(*big.Int).Int64() != 4 {
		t.Errorf("Expected 4, got %v", out[0])
	}

	_, err = call.Unpack([]byte{1, 2, 3})
	var decErr *DecodeError
	if !errors.As(err, &decErr) {
		t.Fatalf("Expected *DecodeError, got %T", err)
	}
	if decErr.Method != "getRequestsCount" {
		t.Errorf("Expected method getRequestsCount, got %q", decErr.Method)
	}
}
