/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pack_test

import (
	"context"
	"crypto/ecdh"
	"crypto/ed25519"
	"crypto/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/crypto/jwecrypto"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didrotate"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/pack"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/pack/packtest"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
)

// party bundles one test participant's DID document and matching secrets, so test cases can
// address it by DID and by key-agreement/authentication kid.
type party struct {
	did          string
	doc          *did.Doc
	kaKID        string
	authKID      string
	kaPriv       []byte
	authPriv     []byte
	didResolver  *packtest.MockDIDResolver
	secResolver  *packtest.MockSecretsResolver
}

// newParty builds a DID document with one X25519 keyAgreement key and one Ed25519
// authentication key, both encoded as raw verification-method bytes, plus the matching secrets.
func newParty(t *testing.T, name string) *party {
	t.Helper()

	kaPriv, err := ecdh.X25519().GenerateKey(rand.Reader)
	require.NoError(t, err)

	authPub, authPriv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	docID := "did:example:" + name
	kaID := docID + "#key-x25519-1"
	authID := docID + "#key-ed25519-1"

	doc := &did.Doc{
		ID: docID,
		VerificationMethod: []did.VerificationMethod{
			{ID: kaID, Type: did.X25519KeyAgreementKey2019, Controller: docID, Value: kaPriv.PublicKey().Bytes()},
			{ID: authID, Type: did.Ed25519VerificationKey2018, Controller: docID, Value: []byte(authPub)},
		},
		KeyAgreement: []did.Verification{
			{VerificationMethod: did.VerificationMethod{ID: kaID, Type: did.X25519KeyAgreementKey2019, Controller: docID, Value: kaPriv.PublicKey().Bytes()}},
		},
		Authentication: []did.Verification{
			{VerificationMethod: did.VerificationMethod{ID: authID, Type: did.Ed25519VerificationKey2018, Controller: docID, Value: []byte(authPub)}},
		},
	}

	didResolver := packtest.NewMockDIDResolver().Add(doc)

	secResolver := packtest.NewMockSecretsResolver().
		Add(&didcomm.Secret{KID: kaID, Type: did.X25519KeyAgreementKey2019, Value: kaPriv.Bytes()}).
		Add(&didcomm.Secret{KID: authID, Type: did.Ed25519VerificationKey2018, Value: authPriv})

	return &party{
		did:         docID,
		doc:         doc,
		kaKID:       kaID,
		authKID:     authID,
		kaPriv:      kaPriv.Bytes(),
		authPriv:    authPriv,
		didResolver: didResolver,
		secResolver: secResolver,
	}
}

// union combines two parties' DID documents and secrets into resolvers that know about both,
// the shape Unpack's caller-supplied resolvers take in a real two-party exchange.
func union(parties ...*party) (*packtest.MockDIDResolver, *packtest.MockSecretsResolver) {
	didResolver := packtest.NewMockDIDResolver()
	secResolver := packtest.NewMockSecretsResolver()

	for _, p := range parties {
		didResolver.Add(p.doc)

		for kid, secret := range p.secResolver.Secrets {
			secResolver.Secrets[kid] = secret
		}
	}

	return didResolver, secResolver
}

func testMessage(from string, to ...string) *didcomm.Message {
	return &didcomm.Message{
		ID:   "11223344-5566-7788-9900-aabbccddeeff",
		Type: "https://example.org/protocols/hello/1.0/greeting",
		Body: map[string]interface{}{"hello": "world"},
		From: from,
		To:   to,
	}
}

// S1: anoncrypt round-trips, with Metadata.AnonymousSender set on both pack and unpack.
func TestRoundTrip_Anoncrypt(t *testing.T) {
	alice := newParty(t, "alice")
	bob := newParty(t, "bob")

	didResolver, secResolver := union(alice, bob)

	msg := testMessage("", bob.did)

	envelope, packMeta, err := pack.PackEncrypted(context.Background(), msg, didResolver, secResolver,
		pack.WithEncAlgAnon(jwecrypto.XC20P))
	require.NoError(t, err)
	require.True(t, packMeta.AnonymousSender)
	require.False(t, packMeta.Authenticated)

	got, unpackMeta, err := pack.Unpack(context.Background(), envelope, didResolver, secResolver)
	require.NoError(t, err)
	require.True(t, unpackMeta.AnonymousSender)
	require.True(t, unpackMeta.Encrypted)
	require.Equal(t, msg.ID, got.ID)
	require.Equal(t, msg.Type, got.Type)
	require.Equal(t, msg.Body, got.Body)
	require.Contains(t, unpackMeta.EncryptedTo, bob.kaKID)
}

// S2: authcrypt with protect_sender set produces an outer anoncrypt layer hiding the inner
// apu/skid, and still round-trips to the same plaintext with Authenticated set.
func TestRoundTrip_AuthcryptProtectSender(t *testing.T) {
	alice := newParty(t, "alice")
	bob := newParty(t, "bob")

	didResolver, secResolver := union(alice, bob)

	msg := testMessage(alice.did, bob.did)

	envelope, packMeta, err := pack.PackEncrypted(context.Background(), msg, didResolver, secResolver,
		pack.WithFrom(alice.did), pack.WithProtectSender())
	require.NoError(t, err)
	require.True(t, packMeta.Authenticated)
	require.True(t, packMeta.AnonymousSender)

	got, unpackMeta, err := pack.Unpack(context.Background(), envelope, didResolver, secResolver)
	require.NoError(t, err)
	require.True(t, unpackMeta.Authenticated)
	require.True(t, unpackMeta.AnonymousSender)
	require.Equal(t, msg.ID, got.ID)
	require.Equal(t, msg.From, got.From)
}

// S3: plaintext pack emits a "typ" member and unpack returns the message's id and body, with
// no resolvers needed.
func TestRoundTrip_Plaintext(t *testing.T) {
	msg := testMessage("did:example:alice", "did:example:bob")

	envelope, err := pack.PackPlaintext(msg)
	require.NoError(t, err)
	require.Contains(t, envelope, `"typ"`)

	var empty packtest.MockDIDResolver

	got, meta, err := pack.Unpack(context.Background(), envelope, &empty, packtest.NewMockSecretsResolver())
	require.NoError(t, err)
	require.False(t, meta.Encrypted)
	require.False(t, meta.Authenticated)
	require.Equal(t, msg.ID, got.ID)
	require.Equal(t, msg.Body, got.Body)
}

// Signed plaintext round-trips and reports the signer kid/alg, with NonRepudiation set.
func TestRoundTrip_Signed(t *testing.T) {
	alice := newParty(t, "alice")

	msg := testMessage(alice.did, "did:example:bob")

	envelope, packMeta, err := pack.PackSigned(context.Background(), msg, []string{alice.authKID},
		alice.didResolver, alice.secResolver)
	require.NoError(t, err)
	require.Equal(t, alice.authKID, packMeta.SignFrom)

	got, unpackMeta, err := pack.Unpack(context.Background(), envelope, alice.didResolver, alice.secResolver)
	require.NoError(t, err)
	require.True(t, unpackMeta.NonRepudiation)
	require.Equal(t, alice.authKID, unpackMeta.SignFrom)
	require.Equal(t, msg.ID, got.ID)
}

// S5: a tampered JWS payload byte fails verification with Malformed.
func TestRoundTrip_Signed_TamperedPayloadFailsVerification(t *testing.T) {
	alice := newParty(t, "alice")

	msg := testMessage(alice.did, "did:example:bob")

	envelope, _, err := pack.PackSigned(context.Background(), msg, []string{alice.authKID},
		alice.didResolver, alice.secResolver)
	require.NoError(t, err)

	parts := strings.Split(envelope, ".")
	require.Len(t, parts, 3)

	payload := []byte(parts[1])
	if payload[0] == 'e' {
		payload[0] = 'f'
	} else {
		payload[0] = 'e'
	}

	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	_, _, err = pack.Unpack(context.Background(), tampered, alice.didResolver, alice.secResolver)
	require.Error(t, err)
	require.True(t, didcommerr.Is(err, didcommerr.Malformed))
}

// S4: a forward-wrapped envelope unwraps to the forward message by default, and re-enters the
// inner envelope when WithUnwrapReWrappingForward is set.
func TestRoundTrip_Forward(t *testing.T) {
	alice := newParty(t, "alice")
	bob := newParty(t, "bob")
	mediator := newParty(t, "mediator")

	bob.doc.Service = []did.Service{
		{
			ID:          bob.did + "#didcomm-1",
			Type:        did.DIDCommMessaging,
			RoutingKeys: []string{mediator.kaKID},
		},
	}

	didResolver, secResolver := union(alice, bob, mediator)

	msg := testMessage(alice.did, bob.did)

	envelope, packMeta, err := pack.PackEncrypted(context.Background(), msg, didResolver, secResolver,
		pack.WithForward())
	require.NoError(t, err)
	require.NotNil(t, packMeta.MessagingService)

	fwdMsg, fwdMeta, err := pack.Unpack(context.Background(), envelope, didResolver, secResolver)
	require.NoError(t, err)
	require.False(t, fwdMeta.ReWrappedInForward)
	require.Equal(t, "https://didcomm.org/routing/2.0/forward", fwdMsg.Type)

	got, unpackMeta, err := pack.Unpack(context.Background(), envelope, didResolver, secResolver,
		pack.WithUnwrapReWrappingForward())
	require.NoError(t, err)
	require.True(t, unpackMeta.ReWrappedInForward)
	require.Equal(t, msg.ID, got.ID)
	require.Equal(t, msg.Body, got.Body)
}

// S6: pack_from_prior/unpack_from_prior round-trips claims bit-for-bit and returns the signer kid.
func TestRoundTrip_FromPrior(t *testing.T) {
	alice := newParty(t, "alice-prior")
	aliceNew := newParty(t, "alice-new")

	didResolver, _ := union(alice, aliceNew)

	token, err := pack.PackFromPrior(context.Background(), alice.did, aliceNew.did, alice.authKID,
		alice.didResolver, alice.secResolver, &didrotate.Claims{})
	require.NoError(t, err)

	priorDID, newDID, signerKID, err := pack.UnpackFromPrior(context.Background(), token, didResolver)
	require.NoError(t, err)
	require.Equal(t, alice.did, priorDID)
	require.Equal(t, aliceNew.did, newDID)
	require.Equal(t, alice.authKID, signerKID)
}

// A from_prior claim embedded in a plaintext message is verified during Unpack, and the signer
// kid is reported in Metadata.FromPriorIssuerKID.
func TestRoundTrip_FromPriorInMessage(t *testing.T) {
	alice := newParty(t, "alice-prior-2")
	aliceNew := newParty(t, "alice-new-2")
	bob := newParty(t, "bob-2")

	didResolver, secResolver := union(alice, aliceNew, bob)

	token, err := pack.PackFromPrior(context.Background(), alice.did, aliceNew.did, alice.authKID,
		alice.didResolver, alice.secResolver, &didrotate.Claims{})
	require.NoError(t, err)

	msg := testMessage(aliceNew.did, bob.did)
	msg.FromPrior = token

	envelope, err := pack.PackPlaintext(msg)
	require.NoError(t, err)

	got, meta, err := pack.Unpack(context.Background(), envelope, didResolver, secResolver)
	require.NoError(t, err)
	require.Equal(t, alice.authKID, meta.FromPriorIssuerKID)
	require.Equal(t, aliceNew.did, got.From)
}

// A recipient whose DID document has no usable key-agreement key is rejected with
// NoCompatibleCrypto before any encryption is attempted (Invariant 2).
func TestPackEncrypted_NoCompatibleCrypto(t *testing.T) {
	alice := newParty(t, "alice-3")

	doc := &did.Doc{ID: "did:example:no-keys"}
	didResolver := packtest.NewMockDIDResolver().Add(alice.doc).Add(doc)

	msg := testMessage(alice.did, "did:example:no-keys")

	_, _, err := pack.PackEncrypted(context.Background(), msg, didResolver, alice.secResolver)
	require.Error(t, err)
	require.True(t, didcommerr.Is(err, didcommerr.NoCompatibleCrypto))
}

// sign_by and from asserting different controllers is rejected before any cryptography runs
// (Invariant 4: a signed-then-encrypted envelope must not claim two different authors).
func TestPackEncrypted_SignByFromControllerMismatch(t *testing.T) {
	alice := newParty(t, "alice-4")
	carol := newParty(t, "carol-4")
	bob := newParty(t, "bob-4")

	didResolver, secResolver := union(alice, carol, bob)

	msg := testMessage(carol.did, bob.did)

	_, _, err := pack.PackEncrypted(context.Background(), msg, didResolver, secResolver,
		pack.WithSignBy(alice.authKID), pack.WithFrom(carol.did))
	require.Error(t, err)
	require.True(t, didcommerr.Is(err, didcommerr.IllegalArgument))
}

// sign_by and from asserting the same controller is allowed and round-trips.
func TestPackEncrypted_SignByFromControllerMatch(t *testing.T) {
	alice := newParty(t, "alice-5")
	bob := newParty(t, "bob-5")

	didResolver, secResolver := union(alice, bob)

	msg := testMessage(alice.did, bob.did)

	envelope, packMeta, err := pack.PackEncrypted(context.Background(), msg, didResolver, secResolver,
		pack.WithSignBy(alice.authKID), pack.WithFrom(alice.did))
	require.NoError(t, err)
	require.True(t, packMeta.NonRepudiation)

	got, _, err := pack.Unpack(context.Background(), envelope, didResolver, secResolver)
	require.NoError(t, err)
	require.Equal(t, msg.ID, got.ID)
}
