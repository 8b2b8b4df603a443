/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package authcrypt_test

import (
	"context"
	"crypto/ecdh"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/pack/packtest"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/authcrypt"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
)

// p256Party builds a single P-256 keyAgreement verification method (JsonWebKey2020-encoded, the
// only verification-method shape this engine's did package carries EC key material in) and its
// matching secret.
func p256Party(t *testing.T, docID, kid string) (*did.Doc, *didcomm.Secret) {
	t.Helper()

	priv, err := ecdh.P256().GenerateKey(rand.Reader)
	require.NoError(t, err)

	pubBytes := priv.PublicKey().Bytes() // 0x04 || X || Y
	x := base64.RawURLEncoding.EncodeToString(pubBytes[1:33])
	y := base64.RawURLEncoding.EncodeToString(pubBytes[33:65])
	d := base64.RawURLEncoding.EncodeToString(priv.Bytes())

	vm := did.VerificationMethod{
		ID:   kid,
		Type: did.JSONWebKey2020,
		JSONWebKeyValue: &did.JSONWebKey{
			Kty: "EC",
			Crv: "P-256",
			X:   x,
			Y:   y,
		},
	}

	doc := &did.Doc{
		ID:                 docID,
		VerificationMethod: []did.VerificationMethod{vm},
		KeyAgreement:       []did.Verification{{VerificationMethod: vm}},
	}

	secret := &didcomm.Secret{
		KID: kid,
		JSONWebKeyValue: &did.JSONWebKey{
			Crv: "P-256",
			D:   d,
		},
	}

	return doc, secret
}

// Authcrypt between two P-256 parties (rather than the usual X25519) must round-trip: the epk
// header embedded in the JWE has to match the negotiated curve, not be hardcoded to X25519.
func TestPack_P256SenderAndRecipient(t *testing.T) {
	senderDocID, senderKID := "did:example:alice-p256", "did:example:alice-p256#key-p256-1"
	recipientDocID, recipientKID := "did:example:bob-p256", "did:example:bob-p256#key-p256-1"

	senderDoc, senderSecret := p256Party(t, senderDocID, senderKID)
	recipientDoc, recipientSecret := p256Party(t, recipientDocID, recipientKID)

	didResolver := packtest.NewMockDIDResolver().Add(senderDoc).Add(recipientDoc)
	secResolver := packtest.NewMockSecretsResolver().Add(senderSecret).Add(recipientSecret)

	plaintext := []byte(`{"hello":"world"}`)

	envelope, err := authcrypt.Pack(context.Background(), plaintext, senderKID, []string{recipientKID}, didResolver, secResolver)
	require.NoError(t, err)

	got, gotSenderKID, err := authcrypt.Unpack(context.Background(), envelope, recipientKID, didResolver, secResolver)
	require.NoError(t, err)
	require.Equal(t, plaintext, got)
	require.Equal(t, senderKID, gotSenderKID)
}
