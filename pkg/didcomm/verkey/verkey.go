/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package verkey maps between DID document verification-method types, JOSE
// curve/algorithm identifiers, and the raw key material carried in a
// did.VerificationMethod or didcomm.Secret.
package verkey

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"

	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/jwk"
)

// KeyType names a key algorithm independent of which DID verification-method encoding carries it.
type KeyType string

// Supported key types.
const (
	Ed25519    KeyType = "Ed25519"
	X25519     KeyType = "X25519"
	P256       KeyType = "P-256"
	P384       KeyType = "P-384"
	P521       KeyType = "P-521"
	Secp256k1  KeyType = "secp256k1"
)

// TypeFromVerificationMethod derives the KeyType from a did.VerificationMethod, consulting its
// Type (for the non-JWK, single-curve verification-method kinds) or its embedded JWK's crv.
func TypeFromVerificationMethod(vm *did.VerificationMethod) (KeyType, error) {
	switch vm.Type {
	case did.X25519KeyAgreementKey2019, did.X25519KeyAgreementKey2020:
		return X25519, nil
	case did.Ed25519VerificationKey2018, did.Ed25519VerificationKey2020:
		return Ed25519, nil
	case did.EcdsaSecp256k1VerificationKey2019:
		return Secp256k1, nil
	case did.JSONWebKey2020:
		if vm.JSONWebKeyValue == nil {
			return "", fmt.Errorf("verification method %s: type JsonWebKey2020 missing publicKeyJwk", vm.ID)
		}

		return typeFromCrv(vm.JSONWebKeyValue.Crv)
	default:
		return "", fmt.Errorf("verification method %s: unsupported type %q", vm.ID, vm.Type)
	}
}

func typeFromCrv(crv string) (KeyType, error) {
	switch crv {
	case "Ed25519":
		return Ed25519, nil
	case "X25519":
		return X25519, nil
	case elliptic.P256().Params().Name:
		return P256, nil
	case elliptic.P384().Params().Name:
		return P384, nil
	case elliptic.P521().Params().Name:
		return P521, nil
	case btcec.S256().Params().Name:
		return Secp256k1, nil
	default:
		return "", fmt.Errorf("unsupported jwk curve %q", crv)
	}
}

// Curve returns the elliptic.Curve for an EC key type, or nil for Ed25519/X25519 (OKP types).
func (kt KeyType) Curve() elliptic.Curve {
	switch kt {
	case P256:
		return elliptic.P256()
	case P384:
		return elliptic.P384()
	case P521:
		return elliptic.P521()
	case Secp256k1:
		return btcec.S256()
	default:
		return nil
	}
}

// IsOKP reports whether the key type uses the Octet Key Pair (Ed25519/X25519) JWK shape rather
// than the EC (x,y) shape.
func (kt KeyType) IsOKP() bool {
	return kt == Ed25519 || kt == X25519
}

// ParsePublicKey turns raw public key bytes for the given type into a typed Go public key
// (*ecdsa.PublicKey, ed25519.PublicKey, or the raw X25519 bytes).
func ParsePublicKey(kt KeyType, raw []byte) (interface{}, error) {
	switch kt {
	case Ed25519:
		if len(raw) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("ed25519 public key must be %d bytes, got %d", ed25519.PublicKeySize, len(raw))
		}

		return ed25519.PublicKey(raw), nil
	case X25519:
		return raw, nil
	case P256, P384, P521, Secp256k1:
		curve := kt.Curve()

		x, y := elliptic.Unmarshal(curve, raw)
		if x == nil {
			return nil, fmt.Errorf("invalid uncompressed point for curve %s", curve.Params().Name)
		}

		return &ecdsa.PublicKey{Curve: curve, X: x, Y: y}, nil
	default:
		return nil, fmt.Errorf("unsupported key type %s", kt)
	}
}

// JWKFromVerificationMethod decodes a verification method's key material into a jwk.JWK.
func JWKFromVerificationMethod(vm *did.VerificationMethod) (*jwk.JWK, error) {
	if vm.JSONWebKeyValue != nil {
		kt, err := TypeFromVerificationMethod(vm)
		if err != nil {
			return nil, err
		}

		if kt == X25519 {
			raw, rerr := vm.RawPublicKey()
			if rerr != nil {
				return nil, rerr
			}

			return jwk.FromX25519PublicKey(raw)
		}

		raw, rerr := vm.RawPublicKey()
		if rerr != nil {
			return nil, rerr
		}

		pub, perr := ParsePublicKey(kt, raw)
		if perr != nil {
			return nil, perr
		}

		return jwk.FromPublicKey(pub)
	}

	kt, err := TypeFromVerificationMethod(vm)
	if err != nil {
		return nil, err
	}

	raw, err := vm.RawPublicKey()
	if err != nil {
		return nil, err
	}

	if kt == X25519 {
		return jwk.FromX25519PublicKey(raw)
	}

	pub, err := ParsePublicKey(kt, raw)
	if err != nil {
		return nil, err
	}

	return jwk.FromPublicKey(pub)
}
