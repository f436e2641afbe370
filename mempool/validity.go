package mempool

import (
	"errors"

	"github.com/EnsicoinDevs/arcd-sub000/internal/xerrors"
	"github.com/EnsicoinDevs/arcd-sub000/script"
)

var (
	errIncompleteTx = errors.New("mempool: transaction has unresolved inputs")
	errInsufficientFee = errors.New("mempool: output sum exceeds input sum")
	errScriptVerification = errors.New("mempool: script verification failed")
)

// Validate checks sanity, full input resolution, script correctness for
// every input, and the standard fee rule.
func (lt *LinkedTransaction) Validate() error {
	if err := lt.Tx.Sanity(); err != nil {
		return xerrors.Wrap(xerrors.KindInvalidBlock, "transaction", err)
	}
	if !lt.Complete() {
		return errIncompleteTx
	}

	var inSum, outSum uint64
	for _, out := range lt.Tx.Outputs {
		outSum += out.Value
	}

	for i, in := range lt.Tx.Inputs {
		rec := lt.Deps[in.PreviousOutput]
		inSum += rec.Value

		shash, err := script.SigHash(lt.Tx, i, rec.Value)
		if err != nil {
			return err
		}
		combined := script.CombinedProgram(in.Script, rec.Script)
		if err := script.Execute(combined, shash); err != nil {
			return errScriptVerification
		}
	}

	if outSum > inSum {
		return errInsufficientFee
	}
	return nil
}
