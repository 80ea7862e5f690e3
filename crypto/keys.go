// Package crypto provides the Stellar-style address and signing primitives
// used across xlmstake: StrKey account ids and ed25519 keypairs.
package crypto

import (
	"crypto/ed25519"
	"errors"
	"fmt"

	"github.com/stellar/go/keypair"
	"github.com/stellar/go/strkey"
)

// AddressKind distinguishes the two StrKey id spaces xlmstake cares about.
type AddressKind int

const (
	KindAccount AddressKind = iota
	KindContract
)

// Address is a 32-byte ed25519 public key rendered as a StrKey string
// ("G..." for accounts, "C..." for contracts). xlmstake treats both kinds
// as opaque callers; only the module layer distinguishes "is this the
// admin/minter/owner" by comparing Address values.
type Address struct {
	kind AddressKind
	raw  [32]byte
}

var ErrInvalidAddress = errors.New("crypto: invalid address")

// NewAccountAddress wraps a raw ed25519 public key as an account address.
func NewAccountAddress(raw []byte) (Address, error) {
	if len(raw) != 32 {
		return Address{}, ErrInvalidAddress
	}
	var a Address
	a.kind = KindAccount
	copy(a.raw[:], raw)
	return a, nil
}

// DecodeAddress parses a StrKey-encoded account ("G...") or contract ("C...")
// id into an Address.
func DecodeAddress(s string) (Address, error) {
	switch {
	case strkey.IsValidEd25519PublicKey(s):
		raw, err := strkey.Decode(strkey.VersionByteAccountID, s)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		a, err := NewAccountAddress(raw)
		if err != nil {
			return Address{}, err
		}
		return a, nil
	case strkey.IsValidContractAddress(s):
		raw, err := strkey.Decode(strkey.VersionByteContract, s)
		if err != nil {
			return Address{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
		}
		var a Address
		a.kind = KindContract
		copy(a.raw[:], raw)
		return a, nil
	default:
		return Address{}, ErrInvalidAddress
	}
}

// String renders the Address back to its StrKey form.
func (a Address) String() string {
	switch a.kind {
	case KindContract:
		s, err := strkey.Encode(strkey.VersionByteContract, a.raw[:])
		if err != nil {
			panic(err)
		}
		return s
	default:
		s, err := strkey.Encode(strkey.VersionByteAccountID, a.raw[:])
		if err != nil {
			panic(err)
		}
		return s
	}
}

func (a Address) Bytes() []byte { return a.raw[:] }

func (a Address) Kind() AddressKind { return a.kind }

func (a Address) IsZero() bool { return a.raw == [32]byte{} }

func (a Address) Equal(b Address) bool { return a.kind == b.kind && a.raw == b.raw }

// --- Signing ---

// Signer wraps a Stellar full keypair (seed + public key) and signs
// arbitrary payloads (RPC request digests, not Stellar transaction
// envelopes — xlmstake is not itself a Stellar network node).
type Signer struct {
	kp *keypair.Full
}

// NewSigner builds a Signer from a StrKey seed ("S...").
func NewSigner(secretSeed string) (*Signer, error) {
	kp, err := keypair.ParseFull(secretSeed)
	if err != nil {
		return nil, fmt.Errorf("crypto: parse seed: %w", err)
	}
	return &Signer{kp: kp}, nil
}

// GenerateSigner creates a fresh random keypair.
func GenerateSigner() (*Signer, error) {
	kp, err := keypair.Random()
	if err != nil {
		return nil, err
	}
	return &Signer{kp: kp}, nil
}

func (s *Signer) Address() Address {
	addr, err := DecodeAddress(s.kp.Address())
	if err != nil {
		panic(err)
	}
	return addr
}

func (s *Signer) Sign(message []byte) ([]byte, error) {
	return s.kp.Sign(message)
}

func (s *Signer) StrkeyAddress() string {
	return s.kp.Address()
}

// Verify checks a signature against the StrKey-encoded caller address, the
// analogue of Soroban's require_auth. Neither the engines nor the rpc
// package call it: they check role/ownership only, never signatures.
func Verify(addr Address, message, signature []byte) error {
	kp, err := keypair.ParseAddress(addr.String())
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if err := kp.Verify(message, signature); err != nil {
		return fmt.Errorf("crypto: signature verification failed: %w", err)
	}
	return nil
}

// PublicKeyToAddress converts a raw ed25519 public key to an Address.
func PublicKeyToAddress(pub ed25519.PublicKey) (Address, error) {
	return NewAccountAddress(pub)
}
