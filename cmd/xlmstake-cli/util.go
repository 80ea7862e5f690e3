package main

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// requestID mints a fresh idempotency key for a mutating call, so a retried
// request after a dropped connection cannot double-apply.
func requestID() string { return uuid.NewString() }

func printResult(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println(v)
		return
	}
	fmt.Println(string(out))
}

// callerParams is embedded in every request's params by value so a single
// struct literal carries both the RPC caller identity and the optional
// idempotency key, matching the baseParams envelope xlmstaked's rpc package
// decodes on the other end.
type callerParams struct {
	Caller    string `json:"caller,omitempty"`
	RequestID string `json:"requestId,omitempty"`
}
