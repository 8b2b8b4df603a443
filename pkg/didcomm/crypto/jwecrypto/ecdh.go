/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package jwecrypto implements the ECDH-1PU/ECDH-ES key agreement, key wrapping and content
// encryption primitives behind the authcrypt/anoncrypt packers. Key agreement and the
// concat-KDF are hand-rolled against crypto/ecdh and RFC 7518 Appendix C (go-jose/v3/cipher's
// DeriveECDHES is ECDSA-typed only and cannot take the X25519 shared secret this engine uses
// as its primary curve); key wrapping and CBC-HMAC content encryption reuse go-jose/v3/cipher
// directly, the same package the teacher's ECDH-1PU subtle code calls for those two steps.
package jwecrypto

import (
	"crypto/ecdh"
	"crypto/rand"
	"fmt"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
)

// ecdhCurve maps a verkey.KeyType to the crypto/ecdh curve used for key agreement. secp256k1 is
// a signature-only curve in this engine (ES256K) and has no ecdh.Curve, so it is absent here.
func ecdhCurve(kt verkey.KeyType) (ecdh.Curve, error) {
	switch kt {
	case verkey.X25519:
		return ecdh.X25519(), nil
	case verkey.P256:
		return ecdh.P256(), nil
	case verkey.P384:
		return ecdh.P384(), nil
	case verkey.P521:
		return ecdh.P521(), nil
	default:
		return nil, fmt.Errorf("key type %s is not usable for key agreement", kt)
	}
}

// PrivateKeyFromRaw parses raw scalar bytes (X25519) or a fixed-length big-endian scalar (NIST
// curves) into a crypto/ecdh private key.
func PrivateKeyFromRaw(kt verkey.KeyType, raw []byte) (*ecdh.PrivateKey, error) {
	curve, err := ecdhCurve(kt)
	if err != nil {
		return nil, err
	}

	priv, err := curve.NewPrivateKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s private key: %w", kt, err)
	}

	return priv, nil
}

// PublicKeyFromRaw parses raw public key bytes (X25519 raw bytes, or the uncompressed SEC1 point
// for NIST curves) into a crypto/ecdh public key.
func PublicKeyFromRaw(kt verkey.KeyType, raw []byte) (*ecdh.PublicKey, error) {
	curve, err := ecdhCurve(kt)
	if err != nil {
		return nil, err
	}

	pub, err := curve.NewPublicKey(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing %s public key: %w", kt, err)
	}

	return pub, nil
}

// GenerateEphemeral generates a fresh ephemeral key pair on the given curve, for use as the
// per-message sender-side key agreement key (the "epk" header).
func GenerateEphemeral(kt verkey.KeyType) (*ecdh.PrivateKey, error) {
	curve, err := ecdhCurve(kt)
	if err != nil {
		return nil, err
	}

	priv, err := curve.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generating ephemeral %s key: %w", kt, err)
	}

	return priv, nil
}

// ECDH computes the raw shared secret Z = priv x pub.
func ECDH(priv *ecdh.PrivateKey, pub *ecdh.PublicKey) ([]byte, error) {
	z, err := priv.ECDH(pub)
	if err != nil {
		return nil, fmt.Errorf("computing ECDH shared secret: %w", err)
	}

	return z, nil
}

