/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwk provides the JWK codec used by JOSE headers ("epk", "jwk") and
// by DID document JsonWebKey2020 verification methods.
package jwk

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"encoding/base64"
	"encoding/json"
	"fmt"

	josejwk "github.com/go-jose/go-jose/v3"
)

// JWK wraps go-jose's JSONWebKey, rounding it through the same marshal/unmarshal path used by
// every other JOSE struct in this engine so the full set of RFC 7517 fields (kty, crv, x, y, d,
// kid, ...) is preserved without this engine re-implementing field-by-field encoding.
//
// go-jose's own JSONWebKey (un)marshaling only understands the OKP curve Ed25519, not X25519
// (X25519 never signs, so go-jose has no Go key type to decode it into). X25519 keys are
// therefore held in x25519Pub directly, bypassing go-jose for that one curve.
type JWK struct {
	josejwk.JSONWebKey

	// KeyType/Curve mirror JSONWebKey.Kty/Crv for callers that only want the string labels
	// (e.g. to pick a signer) without reaching into the embedded type.
	KeyType string
	Curve   string

	x25519Pub []byte
}

// MarshalJSON serializes the JWK.
func (j *JWK) MarshalJSON() ([]byte, error) {
	if j.x25519Pub != nil {
		return json.Marshal(struct {
			Kty string `json:"kty"`
			Crv string `json:"crv"`
			X   string `json:"x"`
		}{Kty: "OKP", Crv: "X25519", X: base64.RawURLEncoding.EncodeToString(j.x25519Pub)})
	}

	return j.JSONWebKey.MarshalJSON()
}

// UnmarshalJSON parses a JWK and populates the KeyType/Curve convenience fields.
func (j *JWK) UnmarshalJSON(data []byte) error {
	var raw struct {
		Kty string `json:"kty"`
		Crv string `json:"crv"`
		X   string `json:"x"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parsing jwk kty/crv: %w", err)
	}

	j.KeyType = raw.Kty
	j.Curve = raw.Crv

	if raw.Kty == "OKP" && raw.Crv == "X25519" {
		x, err := base64.RawURLEncoding.DecodeString(raw.X)
		if err != nil {
			return fmt.Errorf("decoding X25519 jwk x value: %w", err)
		}

		j.x25519Pub = x

		return nil
	}

	if err := j.JSONWebKey.UnmarshalJSON(data); err != nil {
		return fmt.Errorf("parsing jwk: %w", err)
	}

	return nil
}

// FromPublicKey builds a JWK from a Go public key (*ecdsa.PublicKey or ed25519.PublicKey; X25519
// keys go through FromX25519PublicKey) by round-tripping it through go-jose's own encoder, the same pattern the teacher's
// jwksupport.go uses: marshal an opaque key into a JSONWebKey, then unmarshal to populate every
// derived field (kty/crv/x/y) go-jose knows how to compute.
func FromPublicKey(key interface{}) (*JWK, error) {
	raw := josejwk.JSONWebKey{Key: key}

	bits, err := raw.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshalling key to jwk: %w", err)
	}

	out := &JWK{}
	if err := out.UnmarshalJSON(bits); err != nil {
		return nil, fmt.Errorf("round-tripping jwk: %w", err)
	}

	return out, nil
}

// FromX25519PublicKey builds an OKP/X25519 JWK from raw public key bytes. go-jose has no native
// X25519 key type, so this is constructed directly rather than through the marshal round trip.
func FromX25519PublicKey(pub []byte) (*JWK, error) {
	return &JWK{KeyType: "OKP", Curve: "X25519", x25519Pub: pub}, nil
}

// PublicKeyBytes returns the raw public key bytes for the JWK: the Ed25519/X25519 "x" value for
// OKP keys, or the uncompressed EC point (0x04 || X || Y) for EC keys.
func (j *JWK) PublicKeyBytes() ([]byte, error) {
	if j.x25519Pub != nil {
		return j.x25519Pub, nil
	}

	switch k := j.Key.(type) {
	case ed25519.PublicKey:
		return k, nil
	case *ecdsa.PublicKey:
		return elliptic.Marshal(k.Curve, k.X, k.Y), nil
	case []byte:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported jwk key type %T", k)
	}
}

