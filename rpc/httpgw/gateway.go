// Package httpgw exposes a subset of the rpc.Service surface over
// HTTP+JSON for debugging (curl-friendly), alongside the primary gRPC
// listener, so the same calls reach both raw protocol and HTTP clients.
package httpgw

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/rs/cors"

	"github.com/EnsicoinDevs/arcd-sub000/internal/elog"
	"github.com/EnsicoinDevs/arcd-sub000/rpc"
)

// Gateway wraps an rpc.Service with a plain net/http mux; every call goes
// straight through to the same Service the gRPC listener uses, so both
// surfaces observe identical coordinator semantics.
type Gateway struct {
	svc *rpc.Service
	log *elog.Logger
}

func New(svc *rpc.Service) *Gateway {
	return &Gateway{svc: svc, log: elog.New("httpgw")}
}

func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/info", g.handleInfo)
	mux.HandleFunc("/v1/tx", g.handlePublishTx)
	mux.HandleFunc("/v1/block", g.handlePublishBlock)
	mux.HandleFunc("/v1/block/", g.handleGetBlockByHash)
	mux.HandleFunc("/v1/tx/", g.handleGetTxByHash)

	return cors.New(cors.Options{
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}).Handler(mux)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErr(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (g *Gateway) handleInfo(w http.ResponseWriter, r *http.Request) {
	reply, err := g.svc.GetInfo(r.Context(), &rpc.GetInfoRequest{})
	if err != nil {
		writeErr(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (g *Gateway) handlePublishTx(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Tx string `json:"tx"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	raw, err := hex.DecodeString(body.Tx)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if _, err := g.svc.PublishRawTx(r.Context(), &rpc.PublishRawTxRequest{Tx: raw}); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func (g *Gateway) handlePublishBlock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var body struct {
		Block string `json:"block"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	raw, err := hex.DecodeString(body.Block)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	if _, err := g.svc.PublishRawBlock(r.Context(), &rpc.PublishRawBlockRequest{Block: raw}); err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, struct{}{})
}

func hashFromPath(prefix, path string) ([]byte, error) {
	return hex.DecodeString(path[len(prefix):])
}

func (g *Gateway) handleGetBlockByHash(w http.ResponseWriter, r *http.Request) {
	raw, err := hashFromPath("/v1/block/", r.URL.Path)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	reply, err := g.svc.GetBlockByHash(r.Context(), &rpc.GetBlockByHashRequest{Hash: raw})
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

func (g *Gateway) handleGetTxByHash(w http.ResponseWriter, r *http.Request) {
	raw, err := hashFromPath("/v1/tx/", r.URL.Path)
	if err != nil {
		writeErr(w, http.StatusBadRequest, err)
		return
	}
	reply, err := g.svc.GetTxByHash(r.Context(), &rpc.GetTxByHashRequest{Hash: raw})
	if err != nil {
		writeErr(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}
