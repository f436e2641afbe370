package chainstore

import "math/big"

// workSize bounds the big-endian encoding of a cumulative-work value: the
// largest possible per-block work is 2^256-1, and heights accumulate it at
// most a few billion times before overflowing any plausible chain, so 40
// bytes (320 bits) leaves ample headroom while staying fixed-width for
// lexicographic storage.
const workSize = 40

func encodeWork(w *big.Int) []byte {
	raw := w.Bytes()
	buf := make([]byte, workSize)
	copy(buf[workSize-len(raw):], raw)
	return buf
}

func decodeWork(b []byte) *big.Int {
	return new(big.Int).SetBytes(b)
}
