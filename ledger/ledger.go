// Package ledger wraps storage.Database with Soroban-style per-entry TTL
// bookkeeping: every value is stored alongside the ledger sequence number
// past which it is archived, mirroring bump_instance/EntryArchived without
// pulling in a Merkle-proof storage layer the spec never needs.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"

	"xlmstake/storage"
)

var (
	ErrNotFound = errors.New("ledger: entry not found")
	ErrArchived = errors.New("ledger: entry archived (ttl expired)")
)

// DefaultTTL is the number of ledger-sequence ticks a freshly written entry
// survives before it is considered archived if never bumped again.
const DefaultTTL uint64 = 1_000_000

type envelope struct {
	Value    []byte `json:"value"`
	ExpireAt uint64 `json:"expire_at"`
}

// Ledger is the module-facing key/value store. Each module (token, staking,
// lending, amm, governance) owns a key namespace prefix and talks to the
// ledger through this type rather than storage.Database directly.
type Ledger struct {
	db  storage.Database
	seq func() uint64
}

// New builds a Ledger backed by db. seq returns the current logical ledger
// sequence number, advanced by the node's block/tick loop.
func New(db storage.Database, seq func() uint64) *Ledger {
	return &Ledger{db: db, seq: seq}
}

func (l *Ledger) currentSeq() uint64 {
	if l.seq == nil {
		return 0
	}
	return l.seq()
}

// Put writes value under key with a TTL of ttl sequence ticks from now.
func (l *Ledger) Put(key string, value []byte, ttl uint64) error {
	if ttl == 0 {
		ttl = DefaultTTL
	}
	env := envelope{Value: value, ExpireAt: l.currentSeq() + ttl}
	raw, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("ledger: marshal entry: %w", err)
	}
	return l.db.Put([]byte(key), raw)
}

// PutJSON is a convenience wrapper that marshals v before storing it.
func (l *Ledger) PutJSON(key string, v any, ttl uint64) error {
	value, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("ledger: marshal value: %w", err)
	}
	return l.Put(key, value, ttl)
}

// Get reads the raw value stored under key. It returns ErrArchived if the
// entry's TTL has elapsed, matching Soroban's EntryArchived trap instead of
// silently treating an expired entry as missing.
func (l *Ledger) Get(key string) ([]byte, error) {
	raw, err := l.db.Get([]byte(key))
	if err != nil {
		return nil, ErrNotFound
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("ledger: corrupt entry at %q: %w", key, err)
	}
	if env.ExpireAt != 0 && l.currentSeq() > env.ExpireAt {
		return nil, ErrArchived
	}
	return env.Value, nil
}

// GetJSON reads and unmarshals the value stored under key into v.
func (l *Ledger) GetJSON(key string, v any) error {
	raw, err := l.Get(key)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

// Has reports whether key exists and is not archived.
func (l *Ledger) Has(key string) bool {
	_, err := l.Get(key)
	return err == nil
}

// BumpTTL extends key's expiry by extendBy sequence ticks from now,
// analogous to Soroban's bump_instance / extend_ttl host calls. It fails
// with ErrArchived if the entry already expired — archived entries must be
// restored explicitly by rewriting them, not bumped back to life.
func (l *Ledger) BumpTTL(key string, extendBy uint64) error {
	raw, err := l.db.Get([]byte(key))
	if err != nil {
		return ErrNotFound
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("ledger: corrupt entry at %q: %w", key, err)
	}
	if env.ExpireAt != 0 && l.currentSeq() > env.ExpireAt {
		return ErrArchived
	}
	env.ExpireAt = l.currentSeq() + extendBy
	out, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return l.db.Put([]byte(key), out)
}

// Delete removes key unconditionally.
func (l *Ledger) Delete(key string) error {
	return l.db.Delete([]byte(key))
}

// KeysWithPrefix lists every non-archived key sharing prefix, ordered
// lexicographically. The staking engine uses it to enumerate every queued
// withdrawal when reconciling a slash.
func (l *Ledger) KeysWithPrefix(prefix string) ([]string, error) {
	iterable, ok := l.db.(storage.Iterable)
	if !ok {
		return nil, fmt.Errorf("ledger: backend does not support prefix iteration")
	}
	raw, err := iterable.KeysWithPrefix([]byte(prefix))
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, k := range raw {
		key := string(k)
		if _, err := l.Get(key); err != nil {
			continue
		}
		out = append(out, key)
	}
	return out, nil
}
