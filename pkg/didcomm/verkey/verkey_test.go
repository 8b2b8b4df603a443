/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package verkey_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
)

func TestTypeFromVerificationMethod(t *testing.T) {
	tests := []struct {
		name string
		vm   did.VerificationMethod
		want verkey.KeyType
	}{
		{"x25519 2019", did.VerificationMethod{Type: did.X25519KeyAgreementKey2019}, verkey.X25519},
		{"x25519 2020", did.VerificationMethod{Type: did.X25519KeyAgreementKey2020}, verkey.X25519},
		{"ed25519 2018", did.VerificationMethod{Type: did.Ed25519VerificationKey2018}, verkey.Ed25519},
		{"ed25519 2020", did.VerificationMethod{Type: did.Ed25519VerificationKey2020}, verkey.Ed25519},
		{"secp256k1", did.VerificationMethod{Type: did.EcdsaSecp256k1VerificationKey2019}, verkey.Secp256k1},
		{"jwk p-256", did.VerificationMethod{Type: did.JSONWebKey2020, JSONWebKeyValue: &did.JSONWebKey{Kty: "EC", Crv: "P-256"}}, verkey.P256},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kt, err := verkey.TypeFromVerificationMethod(&tc.vm)
			require.NoError(t, err)
			require.Equal(t, tc.want, kt)
		})
	}
}

func TestTypeFromVerificationMethod_UnsupportedType(t *testing.T) {
	_, err := verkey.TypeFromVerificationMethod(&did.VerificationMethod{Type: "SomeFutureKeyType2099"})
	require.Error(t, err)
}

func TestTypeFromVerificationMethod_JWKMissingValue(t *testing.T) {
	_, err := verkey.TypeFromVerificationMethod(&did.VerificationMethod{Type: did.JSONWebKey2020})
	require.Error(t, err)
}

func TestParsePublicKey_Ed25519(t *testing.T) {
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	key, err := verkey.ParsePublicKey(verkey.Ed25519, pub)
	require.NoError(t, err)
	require.Equal(t, ed25519.PublicKey(pub), key)
}

func TestParsePublicKey_Ed25519WrongLength(t *testing.T) {
	_, err := verkey.ParsePublicKey(verkey.Ed25519, []byte{1, 2, 3})
	require.Error(t, err)
}

func TestJWKFromVerificationMethod_RawX25519(t *testing.T) {
	pub := make([]byte, 32)
	for i := range pub {
		pub[i] = byte(i)
	}

	vm := &did.VerificationMethod{Type: did.X25519KeyAgreementKey2019, Value: pub}

	jwk, err := verkey.JWKFromVerificationMethod(vm)
	require.NoError(t, err)
	require.Equal(t, "X25519", jwk.Curve)

	raw, err := jwk.PublicKeyBytes()
	require.NoError(t, err)
	require.Equal(t, pub, raw)
}
