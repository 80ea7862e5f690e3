package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestClientCallDecodesResult(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Method != "token_balance" {
			t.Fatalf("unexpected method: %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			ID:      req.ID,
			Result:  json.RawMessage(`{"balance":"1000"}`),
		})
	}))
	defer ts.Close()

	var out struct {
		Balance string `json:"balance"`
	}
	if err := newClient(ts.URL).call("token_balance", map[string]string{"owner": "G..."}, &out); err != nil {
		t.Fatalf("call returned error: %v", err)
	}
	if out.Balance != "1000" {
		t.Fatalf("unexpected balance: got %q want %q", out.Balance, "1000")
	}
}

func TestClientCallPropagatesRPCError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(rpcResponse{
			JSONRPC: "2.0",
			ID:      1,
			Error:   &rpcErrorPayload{Code: -32000, Message: "engine failure"},
		})
	}))
	defer ts.Close()

	var out map[string]interface{}
	err := newClient(ts.URL).call("staking_deposit", nil, &out)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}
