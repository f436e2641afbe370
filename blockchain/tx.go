package blockchain

import (
	"bytes"
	"io"
	"strconv"

	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// TransactionOutput pays Value to Script. Value > 0 is expected but not
// enforced here.
type TransactionOutput struct {
	Value uint64
	Script []byte
}

func (o TransactionOutput) Encode(w io.Writer) error {
	if err := wire.WriteUint64(w, o.Value); err != nil {
		return err
	}
	return wire.WriteBytes(w, o.Script)
}

func DecodeTransactionOutput(r io.Reader) (TransactionOutput, error) {
	v, err := wire.ReadUint64(r)
	if err != nil {
		return TransactionOutput{}, err
	}
	script, err := wire.ReadBytes(r)
	if err != nil {
		return TransactionOutput{}, err
	}
	return TransactionOutput{Value: v, Script: script}, nil
}

// TransactionInput spends a previous output. Its Script is prepended
// to the referenced output's script to form the combined program.
type TransactionInput struct {
	PreviousOutput Outpoint
	Script []byte
}

func (in TransactionInput) Encode(w io.Writer) error {
	if err := in.PreviousOutput.Encode(w); err != nil {
		return err
	}
	return wire.WriteBytes(w, in.Script)
}

func DecodeTransactionInput(r io.Reader) (TransactionInput, error) {
	op, err := DecodeOutpoint(r)
	if err != nil {
		return TransactionInput{}, err
	}
	script, err := wire.ReadBytes(r)
	if err != nil {
		return TransactionInput{}, err
	}
	return TransactionInput{PreviousOutput: op, Script: script}, nil
}

// Transaction moves value from referenced outputs to new ones.
type Transaction struct {
	Version uint32
	Flags []string
	Inputs []TransactionInput
	Outputs []TransactionOutput
}

// Encode writes the canonical serialized form whose double-SHA-256 is the
// transaction's Hash.
func (tx *Transaction) Encode(w io.Writer) error {
	if err := wire.WriteUint32(w, tx.Version); err != nil {
		return err
	}
	if err := wire.WriteStringList(w, tx.Flags); err != nil {
		return err
	}
	if err := wire.WriteVarUint(w, uint64(len(tx.Inputs))); err != nil {
		return err
	}
	for _, in := range tx.Inputs {
		if err := in.Encode(w); err != nil {
			return err
		}
	}
	if err := wire.WriteVarUint(w, uint64(len(tx.Outputs))); err != nil {
		return err
	}
	for _, out := range tx.Outputs {
		if err := out.Encode(w); err != nil {
			return err
		}
	}
	return nil
}

func DecodeTransaction(r io.Reader) (*Transaction, error) {
	tx := &Transaction{}
	var err error
	if tx.Version, err = wire.ReadUint32(r); err != nil {
		return nil, err
	}
	if tx.Flags, err = wire.ReadStringList(r); err != nil {
		return nil, err
	}
	n, err := wire.ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	tx.Inputs = make([]TransactionInput, 0, n)
	for i := uint64(0); i < n; i++ {
		in, err := DecodeTransactionInput(r)
		if err != nil {
			return nil, err
		}
		tx.Inputs = append(tx.Inputs, in)
	}
	n, err = wire.ReadVarUint(r)
	if err != nil {
		return nil, err
	}
	tx.Outputs = make([]TransactionOutput, 0, n)
	for i := uint64(0); i < n; i++ {
		out, err := DecodeTransactionOutput(r)
		if err != nil {
			return nil, err
		}
		tx.Outputs = append(tx.Outputs, out)
	}
	return tx, nil
}

// Bytes returns the canonical serialized form.
func (tx *Transaction) Bytes() []byte {
	var buf bytes.Buffer
	_ = tx.Encode(&buf)
	return buf.Bytes()
}

// Hash is double-SHA-256 of the serialized transaction.
func (tx *Transaction) Hash() Hash {
	return DoubleSHA256(tx.Bytes())
}

// Sanity checks the structural invariants: non-empty inputs, non-empty
// outputs, all outputs positive.
func (tx *Transaction) Sanity() error {
	if len(tx.Inputs) == 0 {
		return errEmptyInputs
	}
	if len(tx.Outputs) == 0 {
		return errEmptyOutputs
	}
	for _, out := range tx.Outputs {
		if out.Value == 0 {
			return errNonPositiveOutput
		}
	}
	return nil
}

// IsCoinbaseHeightFlag reports whether flags[0] parses as the given block
// height, the invariant every coinbase transaction's first flag must satisfy.
func IsCoinbaseHeightFlag(flags []string, height uint32) bool {
	if len(flags) == 0 {
		return false
	}
	n, err := strconv.ParseUint(flags[0], 10, 32)
	if err != nil {
		return false
	}
	return uint32(n) == height
}
