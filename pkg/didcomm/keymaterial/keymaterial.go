/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package keymaterial holds the secret-decoding and epk-header-decoding helpers shared by the
// authcrypt/anoncrypt packers and the pack pipeline, so callers agree on how a didcomm.Secret or
// a JWE "epk" header turns into usable key-agreement or signing material.
package keymaterial

import (
	"crypto/ecdh"
	"encoding/json"
	"fmt"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/crypto/jwecrypto"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/jwk"
)

// SecretKey decodes a didcomm.Secret into its key type and raw private key bytes, whether the
// secret carries its key as a JWK (Type == JsonWebKey2020) or as raw bytes under a
// verification-method-style Type.
func SecretKey(s *didcomm.Secret) (verkey.KeyType, []byte, error) {
	if s.JSONWebKeyValue != nil {
		kt, err := KeyTypeFromJWKCrv(s.JSONWebKeyValue.Crv)
		if err != nil {
			return "", nil, err
		}

		d, err := jwecrypto.DecodeHeader(s.JSONWebKeyValue.D)
		if err != nil {
			return "", nil, didcommerr.Wrapf(didcommerr.Malformed, err, "decoding secret private key")
		}

		return kt, d, nil
	}

	kt, err := keyTypeFromSecretType(s.Type)
	if err != nil {
		return "", nil, err
	}

	return kt, s.Value, nil
}

func keyTypeFromSecretType(t string) (verkey.KeyType, error) {
	switch t {
	case "X25519KeyAgreementKey2019", "X25519KeyAgreementKey2020":
		return verkey.X25519, nil
	case "Ed25519VerificationKey2018", "Ed25519VerificationKey2020":
		return verkey.Ed25519, nil
	case "EcdsaSecp256k1VerificationKey2019":
		return verkey.Secp256k1, nil
	default:
		return "", didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("unsupported secret type %q", t), nil)
	}
}

// KeyTypeFromJWKCrv maps a JWK "crv" value to a verkey.KeyType.
func KeyTypeFromJWKCrv(crv string) (verkey.KeyType, error) {
	switch crv {
	case "X25519":
		return verkey.X25519, nil
	case "Ed25519":
		return verkey.Ed25519, nil
	case "P-256":
		return verkey.P256, nil
	case "P-384":
		return verkey.P384, nil
	case "P-521":
		return verkey.P521, nil
	case "secp256k1":
		return verkey.Secp256k1, nil
	default:
		return "", didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("unsupported jwk curve %q", crv), nil)
	}
}

// EPKJWK builds the "epk" header value for an ephemeral public key generated on behalf of kt,
// branching on the curve the same way verkey.JWKFromVerificationMethod does: X25519 has no
// go-jose key type of its own and is built directly, every other curve goes through
// verkey.ParsePublicKey + jwk.FromPublicKey.
func EPKJWK(kt verkey.KeyType, raw []byte) (*jwk.JWK, error) {
	if kt == verkey.X25519 {
		return jwk.FromX25519PublicKey(raw)
	}

	pub, err := verkey.ParsePublicKey(kt, raw)
	if err != nil {
		return nil, err
	}

	return jwk.FromPublicKey(pub)
}

// EPKPublicKey decodes a protected header's "epk" value (a generic map after JSON unmarshal, or
// a *jwk.JWK if called before serialization) into a crypto/ecdh public key, inferring the curve
// from the JWK's own "crv".
func EPKPublicKey(epkRaw interface{}) (*ecdh.PublicKey, verkey.KeyType, error) {
	epkJSON, err := json.Marshal(epkRaw)
	if err != nil {
		return nil, "", fmt.Errorf("marshalling epk header: %w", err)
	}

	var epkJWK jwk.JWK
	if err := epkJWK.UnmarshalJSON(epkJSON); err != nil {
		return nil, "", fmt.Errorf("parsing epk jwk: %w", err)
	}

	kt, err := KeyTypeFromJWKCrv(epkJWK.Curve)
	if err != nil {
		return nil, "", err
	}

	raw, err := epkJWK.PublicKeyBytes()
	if err != nil {
		return nil, "", err
	}

	pub, err := jwecrypto.PublicKeyFromRaw(kt, raw)
	if err != nil {
		return nil, "", err
	}

	return pub, kt, nil
}

// ProtectedAAD computes the base64url(JSON(headers)) bytes used as AEAD additional
// authenticated data while sealing content, ahead of the JSONWebEncryption this header pairs
// with actually being constructed.
func ProtectedAAD(h map[string]interface{}) (string, error) {
	headerJSON, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("marshalling protected headers: %w", err)
	}

	return jwecrypto.EncodeHeader(headerJSON), nil
}
