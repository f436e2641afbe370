package rpc

// Every request/reply pair below is framed over the codec registered in
// codec.go; the json struct tags give the wire JSON keys.

type GetInfoRequest struct{}

type GetInfoReply struct {
	Implementation  string `json:"implementation"`
	ProtocolVersion uint32 `json:"protocol_version"`
	BestBlockHash   []byte `json:"best_block_hash"`
	BestBlockHeight uint32 `json:"best_block_height"`
	ConnectionCount int    `json:"connection_count"`
}

type PublishRawTxRequest struct {
	Tx []byte `json:"tx"`
}

type PublishRawTxReply struct{}

type PublishRawBlockRequest struct {
	Block []byte `json:"block"`
}

type PublishRawBlockReply struct{}

type GetBestBlocksRequest struct {
	Count uint32 `json:"count"`
}

type GetBestBlocksReply struct {
	Hash   []byte `json:"hash"`
	Height uint32 `json:"height"`
}

type GetBlockTemplateRequest struct {
	CoinbaseScript []byte `json:"coinbase_script"`
}

type GetBlockTemplateReply struct {
	Header []byte   `json:"header"`
	Txs    [][]byte `json:"txs"`
}

type ConnectPeerRequest struct {
	Address string `json:"address"`
}

type ConnectPeerReply struct{}

type DisconnectPeerRequest struct {
	PeerID uint64 `json:"peer_id"`
}

type DisconnectPeerReply struct{}

type GetBlockByHashRequest struct {
	Hash []byte `json:"hash"`
}

type GetBlockByHashReply struct {
	Block []byte `json:"block"`
}

type GetBlockHeaderByHashRequest struct {
	Hash []byte `json:"hash"`
}

type GetBlockHeaderByHashReply struct {
	Header []byte `json:"header"`
}

type GetTxByHashRequest struct {
	Hash []byte `json:"hash"`
}

type GetTxByHashReply struct {
	Tx    []byte `json:"tx"`
	Found bool   `json:"found"`
}
