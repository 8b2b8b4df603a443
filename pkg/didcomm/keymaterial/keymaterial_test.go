/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package keymaterial_test

import (
	"crypto/ecdh"
	"crypto/rand"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/keymaterial"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/jwk"
)

func TestSecretKey_RawBytes(t *testing.T) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	require.NoError(t, err)

	secret := &didcomm.Secret{KID: "did:example:alice#key-1", Type: did.X25519KeyAgreementKey2019, Value: priv.Bytes()}

	kt, raw, err := keymaterial.SecretKey(secret)
	require.NoError(t, err)
	require.Equal(t, verkey.X25519, kt)
	require.Equal(t, priv.Bytes(), raw)
}

func TestSecretKey_UnsupportedType(t *testing.T) {
	secret := &didcomm.Secret{KID: "did:example:alice#key-1", Type: "SomeFutureType2099", Value: []byte("x")}

	_, _, err := keymaterial.SecretKey(secret)
	require.Error(t, err)
}

func TestKeyTypeFromJWKCrv(t *testing.T) {
	kt, err := keymaterial.KeyTypeFromJWKCrv("X25519")
	require.NoError(t, err)
	require.Equal(t, verkey.X25519, kt)

	_, err = keymaterial.KeyTypeFromJWKCrv("unknown-curve")
	require.Error(t, err)
}

func TestEPKPublicKey(t *testing.T) {
	priv, err := ecdh.X25519().GenerateKey(rand.Reader)
	require.NoError(t, err)

	epkJWK, err := jwk.FromX25519PublicKey(priv.PublicKey().Bytes())
	require.NoError(t, err)

	epkJSON, err := epkJWK.MarshalJSON()
	require.NoError(t, err)

	var epkRaw interface{}
	require.NoError(t, json.Unmarshal(epkJSON, &epkRaw))

	pub, kt, err := keymaterial.EPKPublicKey(epkRaw)
	require.NoError(t, err)
	require.Equal(t, verkey.X25519, kt)
	require.Equal(t, priv.PublicKey().Bytes(), pub.Bytes())
}

func TestProtectedAAD(t *testing.T) {
	aad, err := keymaterial.ProtectedAAD(map[string]interface{}{"alg": "ECDH-ES+A256KW"})
	require.NoError(t, err)
	require.NotEmpty(t, aad)
}

