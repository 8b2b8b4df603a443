/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package did

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/multiformats/go-multibase"
)

// Multicodec prefixes used by did:key/publicKeyMultibase (https://github.com/multiformats/multicodec).
var multicodecPrefix = map[string][]byte{ //nolint:gochecknoglobals
	"Ed25519": {0xed, 0x01},
	"X25519":  {0xec, 0x01},
}

// RawPublicKey decodes a verification method's key material into raw public key bytes, regardless
// of which verification-method encoding (JWK, multibase, base58, hex, or raw Value bytes) the DID document used.
func (vm *VerificationMethod) RawPublicKey() ([]byte, error) {
	switch {
	case vm.JSONWebKeyValue != nil:
		return decodeJWKKeyBytes(vm.JSONWebKeyValue)
	case vm.Multibase != "":
		return decodeMultibaseKey(vm.Multibase)
	case vm.Base58 != "":
		b, err := base58.Decode(vm.Base58)
		if err != nil {
			return nil, fmt.Errorf("decoding publicKeyBase58: %w", err)
		}

		return b, nil
	case vm.Hex != "":
		b, err := hex.DecodeString(vm.Hex)
		if err != nil {
			return nil, fmt.Errorf("decoding publicKeyHex: %w", err)
		}

		return b, nil
	case len(vm.Value) > 0:
		return vm.Value, nil
	default:
		return nil, fmt.Errorf("verification method %s has no recognized key material", vm.ID)
	}
}

func decodeMultibaseKey(encoded string) ([]byte, error) {
	_, data, err := multibase.Decode(encoded)
	if err != nil {
		return nil, fmt.Errorf("decoding publicKeyMultibase: %w", err)
	}

	for _, prefix := range multicodecPrefix {
		if len(data) > len(prefix) && hasPrefix(data, prefix) {
			return data[len(prefix):], nil
		}
	}

	return data, nil
}

func hasPrefix(b, prefix []byte) bool {
	if len(b) < len(prefix) {
		return false
	}

	for i, p := range prefix {
		if b[i] != p {
			return false
		}
	}

	return true
}

func decodeJWKKeyBytes(jwk *JSONWebKey) ([]byte, error) {
	if jwk.X == "" {
		return nil, fmt.Errorf("jwk missing x coordinate")
	}

	x, err := base64.RawURLEncoding.DecodeString(jwk.X)
	if err != nil {
		return nil, fmt.Errorf("decoding jwk.x: %w", err)
	}

	if jwk.Y == "" {
		// OKP (Ed25519/X25519): x alone is the raw public key.
		return x, nil
	}

	y, err := base64.RawURLEncoding.DecodeString(jwk.Y)
	if err != nil {
		return nil, fmt.Errorf("decoding jwk.y: %w", err)
	}

	// EC keys: return uncompressed point (0x04 || X || Y), matching crypto/elliptic.Marshal.
	out := make([]byte, 0, 1+len(x)+len(y))
	out = append(out, 0x04)
	out = append(out, x...)
	out = append(out, y...)

	return out, nil
}
