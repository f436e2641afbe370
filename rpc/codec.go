// Package rpc exposes the node's control surface over gRPC:
// GetInfo, PublishRawTx, PublishRawBlock, GetBestBlocks, GetBlockTemplate,
// ConnectPeer, DisconnectPeer, GetBlockByHash, GetBlockHeaderByHash and
// GetTxByHash. The service is hand-wired against google.golang.org/grpc's
// low-level grpc.ServiceDesc rather than generated from a .proto file,
// using encoding/json as the wire codec in place of protobuf's.
package rpc

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

const codecName = "json"

// jsonCodec implements encoding.Codec so grpc.Server can frame JSON
// payloads instead of requiring generated protobuf marshalers.
type jsonCodec struct{}

func (jsonCodec) Marshal(v interface{}) ([]byte, error) { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v interface{}) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string { return codecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}
