package script

import (
	"bytes"

	"github.com/EnsicoinDevs/arcd-sub000/blockchain"
	"github.com/EnsicoinDevs/arcd-sub000/wire"
)

// SigHash computes the signature hash: double-SHA-256 of the
// concatenation, in order, of the transaction version; the serialized
// flags list; the double-SHA-256 of all inputs' previous_outputs
// ("outpoints_hash"); the current input's previous_output; the referenced
// output's value; and the single-SHA-256 of all serialized outputs.
//
// referencedValue is the value of the output referenced by
// tx.Inputs[inputIndex].PreviousOutput — the caller resolves it from the
// UTXO store or a linked-transaction dependency table, since script has no
// store access of its own.
func SigHash(tx *blockchain.Transaction, inputIndex int, referencedValue uint64) (blockchain.Hash, error) {
	var buf bytes.Buffer

	if err := wire.WriteUint32(&buf, tx.Version); err != nil {
		return blockchain.Hash{}, err
	}
	if err := wire.WriteStringList(&buf, tx.Flags); err != nil {
		return blockchain.Hash{}, err
	}

	var outpoints bytes.Buffer
	for _, in := range tx.Inputs {
		if err := in.PreviousOutput.Encode(&outpoints); err != nil {
			return blockchain.Hash{}, err
		}
	}
	outpointsHash := blockchain.DoubleSHA256(outpoints.Bytes())
	if err := wire.WriteHash(&buf, outpointsHash); err != nil {
		return blockchain.Hash{}, err
	}

	if err := tx.Inputs[inputIndex].PreviousOutput.Encode(&buf); err != nil {
		return blockchain.Hash{}, err
	}
	if err := wire.WriteUint64(&buf, referencedValue); err != nil {
		return blockchain.Hash{}, err
	}

	var outputs bytes.Buffer
	for _, out := range tx.Outputs {
		if err := out.Encode(&outputs); err != nil {
			return blockchain.Hash{}, err
		}
	}
	outputsHash := blockchain.SingleSHA256(outputs.Bytes())
	if err := wire.WriteHash(&buf, blockchain.Hash(outputsHash)); err != nil {
		return blockchain.Hash{}, err
	}

	return blockchain.DoubleSHA256(buf.Bytes()), nil
}

// CombinedProgram concatenates an input's script with its referenced
// output's script into the combined program the VM executes.
func CombinedProgram(inputScript, outputScript []byte) []byte {
	combined := make([]byte, 0, len(inputScript)+len(outputScript))
	combined = append(combined, inputScript...)
	combined = append(combined, outputScript...)
	return combined
}
