/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package signature implements the JWS signers/verifiers behind DIDComm v2 signed
// plaintext: EdDSA (Ed25519), ES256 (NIST P-256) and ES256K (secp256k1). Signature
// encoding follows RFC 7518 section 3.4: raw R||S, each padded to the curve's byte length,
// not an ASN.1 DER signature.
package signature

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	utilsig "github.com/hyperledger/aries-didcomm-go/pkg/doc/util/signature"
)

// JWS "alg" header values this package produces/verifies.
const (
	EdDSA  = "EdDSA"
	ES256  = "ES256"
	ES256K = "ES256K"
)

// Signer signs a JWS signing input (protected-header || "." || payload, both base64url
// encoded) and returns the raw signature bytes.
type Signer interface {
	Sign(data []byte) ([]byte, error)
	Algorithm() string
}

// AlgForKeyType returns the JWS "alg" this package uses for the given key type.
func AlgForKeyType(kt verkey.KeyType) (string, error) {
	switch kt {
	case verkey.Ed25519:
		return EdDSA, nil
	case verkey.P256:
		return ES256, nil
	case verkey.Secp256k1:
		return ES256K, nil
	default:
		return "", didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("key type %s has no signature algorithm", kt), nil)
	}
}

// NewSigner builds a Signer from a private key and its key type. priv is ed25519.PrivateKey
// for EdDSA, or raw big-endian scalar bytes for ES256/ES256K.
func NewSigner(kt verkey.KeyType, priv []byte) (Signer, error) {
	switch kt {
	case verkey.Ed25519:
		if len(priv) != ed25519.SeedSize && len(priv) != ed25519.PrivateKeySize {
			return nil, didcommerr.New(didcommerr.Malformed, "ed25519 private key has invalid length", nil)
		}

		if len(priv) == ed25519.SeedSize {
			priv = ed25519.NewKeyFromSeed(priv)
		}

		return &ed25519Signer{key: ed25519.PrivateKey(priv)}, nil
	case verkey.P256:
		return newECDSASigner(elliptic.P256(), crypto.SHA256, ES256, priv)
	case verkey.Secp256k1:
		return newECDSASigner(btcec.S256(), crypto.SHA256, ES256K, priv)
	default:
		return nil, didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("no signer for key type %s", kt), nil)
	}
}

// Verify checks a JWS signature against a public key. pub is ed25519.PublicKey for EdDSA, or
// the uncompressed SEC1 point for ES256/ES256K.
func Verify(alg string, pub, data, sig []byte) error {
	switch alg {
	case EdDSA:
		if len(pub) != ed25519.PublicKeySize {
			return didcommerr.New(didcommerr.Malformed, "ed25519 public key has invalid length", nil)
		}

		if !ed25519.Verify(ed25519.PublicKey(pub), data, sig) {
			return didcommerr.New(didcommerr.Malformed, "EdDSA signature verification failed", nil)
		}

		return nil
	case ES256:
		return verifyECDSA(elliptic.P256(), crypto.SHA256, pub, data, sig)
	case ES256K:
		return verifyECDSA(btcec.S256(), crypto.SHA256, pub, data, sig)
	default:
		return didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("unsupported signature algorithm %q", alg), nil)
	}
}

type ed25519Signer struct {
	key ed25519.PrivateKey
}

func (s *ed25519Signer) Sign(data []byte) ([]byte, error) {
	return ed25519.Sign(s.key, data), nil
}

func (s *ed25519Signer) Algorithm() string {
	return EdDSA
}

type ecdsaSigner struct {
	signer *utilsig.ECDSASigner
	alg    string
}

func newECDSASigner(curve elliptic.Curve, _ crypto.Hash, alg string, priv []byte) (Signer, error) {
	if len(priv) == 0 {
		return nil, didcommerr.New(didcommerr.Malformed, "empty ECDSA private key", nil)
	}

	d := new(big.Int).SetBytes(priv)
	x, y := curve.ScalarBaseMult(priv)

	key := &ecdsa.PrivateKey{
		PublicKey: ecdsa.PublicKey{Curve: curve, X: x, Y: y},
		D:         d,
	}

	var signer *utilsig.ECDSASigner

	if curve == btcec.S256() {
		signer = utilsig.GetECDSASecp256k1Signer(key)
	} else {
		signer = utilsig.GetECDSAP256Signer(key)
	}

	return &ecdsaSigner{signer: signer, alg: alg}, nil
}

func (s *ecdsaSigner) Sign(data []byte) ([]byte, error) {
	sig, err := s.signer.Sign(data)
	if err != nil {
		return nil, fmt.Errorf("signing with %s: %w", s.alg, err)
	}

	return sig, nil
}

func (s *ecdsaSigner) Algorithm() string {
	return s.alg
}

func verifyECDSA(curve elliptic.Curve, hash crypto.Hash, pub, data, sig []byte) error {
	size := curveByteSize(curve)
	if len(sig) != 2*size {
		return didcommerr.New(didcommerr.Malformed, "ECDSA signature has invalid length", nil)
	}

	x, y := elliptic.Unmarshal(curve, pub)
	if x == nil {
		return didcommerr.New(didcommerr.Malformed, "invalid ECDSA public key point", nil)
	}

	pubKey := &ecdsa.PublicKey{Curve: curve, X: x, Y: y}

	hasher := hash.New()
	hasher.Write(data)
	hashed := hasher.Sum(nil)

	r := new(big.Int).SetBytes(sig[:size])
	s := new(big.Int).SetBytes(sig[size:])

	if !ecdsa.Verify(pubKey, hashed, r, s) {
		return didcommerr.New(didcommerr.Malformed, "ECDSA signature verification failed", nil)
	}

	return nil
}

func curveByteSize(curve elliptic.Curve) int {
	bits := curve.Params().BitSize

	size := bits / 8
	if bits%8 != 0 {
		size++
	}

	return size
}

