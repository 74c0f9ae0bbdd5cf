package crowdfund

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Call represents a pending contract call that can be sent to a Backend.
// Call is immutable - modifier methods return new instances.
type Call struct {
	contract *Contract
	method   abi.Method
	args     []any
	data     []byte
	value    *big.Int // wei sent with the call
	static   bool     // read-only call
}

// newCall creates a Call from a contract, method, and arguments.
// The arguments are packed eagerly so type errors surface here.
func newCall(contract *Contract, method abi.Method, rawArgs []any) (*Call, error) {
	if len(rawArgs) != len(method.Inputs) {
		return nil, &ArgumentError{
			Method: method.Name,
			Index:  len(rawArgs),
			Err:    ErrArgumentCount,
		}
	}

	args := make([]any, len(rawArgs))
	for i, arg := range rawArgs {
		args[i] = convertToABIType(arg, method.Inputs[i].Type)
	}

	packed, err := method.Inputs.Pack(args...)
	if err != nil {
		return nil, &ArgumentError{
			Method: method.Name,
			Index:  -1,
			Err:    err,
		}
	}

	data := make([]byte, 0, 4+len(packed))
	data = append(data, method.ID...)
	data = append(data, packed...)

	return &Call{
		contract: contract,
		method:   method,
		args:     args,
		data:     data,
	}, nil
}

// Contract returns the target contract for this call.
func (c *Call) Contract() *Contract {
	return c.contract
}

// Method returns the ABI method for this call.
func (c *Call) Method() abi.Method {
	return c.method
}

// Args returns the converted arguments for this call.
func (c *Call) Args() []any {
	return c.args
}

// Data returns the call data: the 4-byte selector followed by the packed arguments.
func (c *Call) Data() []byte {
	out := make([]byte, len(c.data))
	copy(out, c.data)
	return out
}

// EthValue returns the wei value for this call (nil if none).
func (c *Call) EthValue() *big.Int {
	return c.value
}

// IsStatic reports whether the call is read-only.
func (c *Call) IsStatic() bool {
	return c.static
}

// Selector returns the 4-byte function selector.
func (c *Call) Selector() [4]byte {
	var sel [4]byte
	copy(sel[:], c.method.ID[:4])
	return sel
}

// WithValue attaches wei to the call.
//
// Returns a new Call with the value set.
func (c *Call) WithValue(amount *big.Int) *Call {
	clone := c.clone()
	clone.value = new(big.Int).Set(amount)
	return clone
}

// Static marks the call as read-only.
//
// Returns a new Call with the static flag set.
func (c *Call) Static() *Call {
	clone := c.clone()
	clone.static = true
	return clone
}

// Msg builds the message sending this call from the given identity.
func (c *Call) Msg(from common.Address) CallMsg {
	to := c.contract.Address()
	msg := CallMsg{
		From: from,
		To:   &to,
		Data: c.Data(),
	}
	if c.value != nil {
		msg.Value = new(big.Int).Set(c.value)
	}
	return msg
}

// Unpack decodes return data produced by this call.
func (c *Call) Unpack(ret []byte) ([]any, error) {
	out, err := c.method.Outputs.Unpack(ret)
	if err != nil {
		return nil, &DecodeError{Method: c.method.Name, Err: err}
	}
	return out, nil
}

// Transact validates the call and submits it as a transaction.
func (c *Call) Transact(ctx context.Context, backend Backend, from common.Address) (*Receipt, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	return backend.SendTransaction(ctx, c.Msg(from))
}

// Query runs the call read-only and decodes its outputs.
func (c *Call) Query(ctx context.Context, backend Backend, from common.Address) ([]any, error) {
	call := c.Static()
	if err := call.validate(); err != nil {
		return nil, err
	}
	ret, err := backend.CallContract(ctx, call.Msg(from))
	if err != nil {
		return nil, err
	}
	return call.Unpack(ret)
}

// clone creates a shallow copy of the Call.
func (c *Call) clone() *Call {
	clone := *c
	clone.args = make([]any, len(c.args))
	copy(clone.args, c.args)
	return &clone
}

// validate checks the call against the method's state mutability.
func (c *Call) validate() error {
	if c.value != nil && c.value.Sign() > 0 && !c.method.IsPayable() {
		return ErrNonPayable
	}
	if c.static && !c.method.IsConstant() {
		return ErrReadOnly
	}
	return nil
}

// convertToABIType handles common Go type conversions for ABI encoding.
func convertToABIType(value any, abiType abi.Type) any {
	if abiType.T != abi.UintTy && abiType.T != abi.IntTy {
		return value
	}
	if abiType.Size <= 64 {
		return value
	}
	switch v := value.(type) {
	case int:
		return big.NewInt(int64(v))
	case int64:
		return big.NewInt(v)
	case uint64:
		return new(big.Int).SetUint64(v)
	case int32:
		return big.NewInt(int64(v))
	case uint32:
		return new(big.Int).SetUint64(uint64(v))
	case uint:
		return new(big.Int).SetUint64(uint64(v))
	default:
		return v
	}
}
