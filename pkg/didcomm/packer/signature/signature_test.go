/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package signature_test

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/signature"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
)

func TestAlgForKeyType(t *testing.T) {
	tests := []struct {
		kt      verkey.KeyType
		wantAlg string
	}{
		{verkey.Ed25519, signature.EdDSA},
		{verkey.P256, signature.ES256},
		{verkey.Secp256k1, signature.ES256K},
	}

	for _, tc := range tests {
		alg, err := signature.AlgForKeyType(tc.kt)
		require.NoError(t, err)
		require.Equal(t, tc.wantAlg, alg)
	}

	_, err := signature.AlgForKeyType(verkey.X25519)
	require.Error(t, err)
}

func TestEd25519SignVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	signer, err := signature.NewSigner(verkey.Ed25519, priv)
	require.NoError(t, err)
	require.Equal(t, signature.EdDSA, signer.Algorithm())

	data := []byte("header.payload")

	sig, err := signer.Sign(data)
	require.NoError(t, err)

	require.NoError(t, signature.Verify(signature.EdDSA, pub, data, sig))
	require.Error(t, signature.Verify(signature.EdDSA, pub, []byte("tampered"), sig))
}

func TestECDSAP256SignVerifyRoundTrip(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	privBytes := priv.D.FillBytes(make([]byte, 32))
	pubBytes := elliptic.Marshal(elliptic.P256(), priv.X, priv.Y)

	signer, err := signature.NewSigner(verkey.P256, privBytes)
	require.NoError(t, err)
	require.Equal(t, signature.ES256, signer.Algorithm())

	data := []byte("header.payload")

	sig, err := signer.Sign(data)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	require.NoError(t, signature.Verify(signature.ES256, pubBytes, data, sig))
	require.Error(t, signature.Verify(signature.ES256, pubBytes, []byte("tampered"), sig))
}

func TestECDSASecp256k1SignVerifyRoundTrip(t *testing.T) {
	privKey, err := btcec.NewPrivateKey()
	require.NoError(t, err)

	privBytes := privKey.Serialize()
	pubBytes := privKey.PubKey().SerializeUncompressed()

	signer, err := signature.NewSigner(verkey.Secp256k1, privBytes)
	require.NoError(t, err)
	require.Equal(t, signature.ES256K, signer.Algorithm())

	data := []byte("header.payload")

	sig, err := signer.Sign(data)
	require.NoError(t, err)
	require.Len(t, sig, 64)

	require.NoError(t, signature.Verify(signature.ES256K, pubBytes, data, sig))
}

func TestVerify_UnsupportedAlgorithm(t *testing.T) {
	err := signature.Verify("none", nil, nil, nil)
	require.Error(t, err)
}
