// Package script implements a deterministic stack machine: a handful of
// opcodes operating on byte-string values, evaluated over a 256-bit
// signature hash bound to each transaction input.
package script

// Opcode values.
const (
	OpFalse byte = 0
	// 1..75 are PUSH(n): consume the next n bytes as literal data.
	OpPushMin byte = 1
	OpPushMax byte = 75
	OpTrue byte = 80
	OpDup byte = 100
	OpEqual byte = 120
	OpVerify byte = 140
	OpHash160 byte = 160
	OpCheckSig byte = 170
)
