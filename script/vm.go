package script

import (
	"bytes"
	"errors"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // required for HASH160

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
)

var (
	ErrUnknownOpcode = errors.New("script: unknown opcode")
	ErrTruncatedPush = errors.New("script: truncated push data")
	ErrStackUnderflow = errors.New("script: stack underflow")
	ErrVerifyFailed = errors.New("script: VERIFY failed")
	ErrFinalState = errors.New("script: final stack is not exactly [true]")
)

var trueVal = []byte{1}
var falseVal = []byte{0}

// Execute runs combined (an input's script followed by its referenced
// output's script) against shash, the signature hash bound to that input.
// Success requires the stack to end exactly as [[1]].
func Execute(combined []byte, shash blockchain.Hash) error {
	var stack [][]byte

	push := func(v []byte) { stack = append(stack, v) }
	pop := func() ([]byte, error) {
		if len(stack) == 0 {
			return nil, ErrStackUnderflow
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v, nil
	}

	for i := 0; i < len(combined); {
		op := combined[i]
		i++

		switch {
		case op == OpFalse:
			push(falseVal)
		case op >= OpPushMin && op <= OpPushMax:
			n := int(op)
			if i+n > len(combined) {
				return ErrTruncatedPush
			}
			data := make([]byte, n)
			copy(data, combined[i:i+n])
			push(data)
			i += n
		case op == OpTrue:
			push(trueVal)
		case op == OpDup:
			if len(stack) == 0 {
				return ErrStackUnderflow
			}
			top := stack[len(stack)-1]
			dup := make([]byte, len(top))
			copy(dup, top)
			push(dup)
		case op == OpEqual:
			a, err := pop()
			if err != nil {
				return err
			}
			b, err := pop()
			if err != nil {
				return err
			}
			if bytes.Equal(a, b) {
				push(trueVal)
			} else {
				push(falseVal)
			}
		case op == OpVerify:
			v, err := pop()
			if err != nil {
				return err
			}
			if isFalse(v) {
				return ErrVerifyFailed
			}
		case op == OpHash160:
			v, err := pop()
			if err != nil {
				return err
			}
			sha := blockchain.SingleSHA256(v)
			ripe := ripemd160.New()
			ripe.Write(sha[:])
			push(ripe.Sum(nil))
		case op == OpCheckSig:
			key, err := pop()
			if err != nil {
				return err
			}
			sig, err := pop()
			if err != nil {
				return err
			}
			if checkSig(sig, key, shash) {
				push(trueVal)
			} else {
				push(falseVal)
			}
		default:
			return ErrUnknownOpcode
		}
	}

	if len(stack) != 1 || !bytes.Equal(stack[0], trueVal) {
		return ErrFinalState
	}
	return nil
}

func isFalse(v []byte) bool {
	return len(v) == 0 || bytes.Equal(v, falseVal)
}

// checkSig verifies a DER-encoded secp256k1 signature over shash with a
// compressed or uncompressed public key.
func checkSig(sig, pubkeyBytes []byte, shash blockchain.Hash) bool {
	pubkey, err := secp256k1.ParsePubKey(pubkeyBytes)
	if err != nil {
		return false
	}
	signature, err := ecdsa.ParseDERSignature(sig)
	if err != nil {
		return false
	}
	return signature.Verify(shash[:], pubkey)
}
