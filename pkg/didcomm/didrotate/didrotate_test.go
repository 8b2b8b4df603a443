/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didrotate_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didrotate"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
)

func TestIssueParseVerifyRoundTrip(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	const priorDID = "did:example:alice"
	const newDID = "did:example:alice-new"
	const signingKID = priorDID + "#key-1"

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	token, err := didrotate.IssueFromPrior(priorDID, newDID, signingKID, verkey.Ed25519, priv, issuedAt,
		&didrotate.Claims{Audience: "did:example:mediator", ID: "jwt-1"})
	require.NoError(t, err)

	gotPrior, gotNew, gotKID, err := didrotate.ParseUnverified(token)
	require.NoError(t, err)
	require.Equal(t, priorDID, gotPrior)
	require.Equal(t, newDID, gotNew)
	require.Equal(t, signingKID, gotKID)

	vPrior, vNew, vKID, err := didrotate.VerifyFromPrior(token, pub, issuedAt.Add(time.Minute))
	require.NoError(t, err)
	require.Equal(t, priorDID, vPrior)
	require.Equal(t, newDID, vNew)
	require.Equal(t, signingKID, vKID)
}

func TestVerifyFromPrior_ExpiredToken(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	expiry := issuedAt.Add(time.Hour)

	token, err := didrotate.IssueFromPrior("did:example:alice", "did:example:alice-new", "did:example:alice#key-1",
		verkey.Ed25519, priv, issuedAt, &didrotate.Claims{Expiry: &expiry})
	require.NoError(t, err)

	_, _, _, err = didrotate.VerifyFromPrior(token, pub, expiry.Add(time.Minute))
	require.Error(t, err)
}

func TestVerifyFromPrior_WrongKeyFailsSignatureCheck(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	otherPub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	token, err := didrotate.IssueFromPrior("did:example:alice", "did:example:alice-new", "did:example:alice#key-1",
		verkey.Ed25519, priv, issuedAt, nil)
	require.NoError(t, err)

	_, _, _, err = didrotate.VerifyFromPrior(token, otherPub, issuedAt)
	require.Error(t, err)
}
