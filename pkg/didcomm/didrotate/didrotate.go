/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didrotate issues and verifies the from_prior JWT a DIDComm v2 message carries when its
// sender has rotated DIDs: a compact JWS over a jwt.Claims payload asserting that the new DID
// (the "sub") supersedes the prior one (the "iss").
package didrotate

import (
	"encoding/json"
	"fmt"
	"time"

	josejwt "github.com/go-jose/go-jose/v3/jwt"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/signature"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose"
)

// Claims carries the optional from_prior claims beyond iss/sub/iat.
type Claims struct {
	Audience  string
	Expiry    *time.Time
	NotBefore *time.Time
	ID        string
}

// IssueFromPrior builds and signs a from_prior JWT: iss=priorDID, sub=newDID, iat=issuedAt,
// signed by signingKID's key (a verification method belonging to priorDID). The signature
// algorithm follows kt the same way packer/signature picks an algorithm for signed plaintext.
func IssueFromPrior(
	priorDID, newDID, signingKID string,
	kt verkey.KeyType,
	priv []byte,
	issuedAt time.Time,
	extra *Claims,
) (string, error) {
	claims := josejwt.Claims{
		Issuer:   priorDID,
		Subject:  newDID,
		IssuedAt: josejwt.NewNumericDate(issuedAt),
	}

	if extra != nil {
		if extra.Audience != "" {
			claims.Audience = josejwt.Audience{extra.Audience}
		}

		if extra.Expiry != nil {
			claims.Expiry = josejwt.NewNumericDate(*extra.Expiry)
		}

		if extra.NotBefore != nil {
			claims.NotBefore = josejwt.NewNumericDate(*extra.NotBefore)
		}

		claims.ID = extra.ID
	}

	payload, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("marshalling from_prior claims: %w", err)
	}

	signer, err := signature.NewSigner(kt, priv)
	if err != nil {
		return "", err
	}

	protected := jose.Headers{
		jose.HeaderType:      "JWT",
		jose.HeaderAlgorithm: signer.Algorithm(),
		jose.HeaderKeyID:     signingKID,
	}

	jws := &jose.JSONWebSignature{Payload: payload}

	input, err := jws.SigningInput(protected)
	if err != nil {
		return "", fmt.Errorf("building from_prior signing input: %w", err)
	}

	sig, err := signer.Sign(input)
	if err != nil {
		return "", fmt.Errorf("signing from_prior jwt: %w", err)
	}

	jws.Signatures = []jose.Signature{{ProtectedHeaders: protected, Signature: sig}}

	return jws.SerializeCompact()
}

// parsed is a from_prior JWT's signature-checkable pieces, gathered once and shared between
// ParseUnverified (used to discover which key to resolve) and VerifyFromPrior (used once that
// key is in hand).
type parsed struct {
	jws    *jose.JSONWebSignature
	sig    jose.Signature
	alg    string
	kid    string
	claims josejwt.Claims
}

func parse(token string) (*parsed, error) {
	jws, err := jose.ParseJWS(token)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "parsing from_prior jwt")
	}

	if len(jws.Signatures) != 1 {
		return nil, didcommerr.New(didcommerr.Malformed, "from_prior jwt must carry exactly one signature", nil)
	}

	sig := jws.Signatures[0]

	alg, err := sig.ProtectedHeaders.RequireString(jose.HeaderAlgorithm)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "from_prior jwt missing alg header")
	}

	kid, _ := sig.ProtectedHeaders.KeyID()

	var claims josejwt.Claims
	if err := json.Unmarshal(jws.Payload, &claims); err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "parsing from_prior claims")
	}

	if claims.Issuer == "" || claims.Subject == "" {
		return nil, didcommerr.New(didcommerr.Malformed, "from_prior jwt missing iss or sub", nil)
	}

	return &parsed{jws: jws, sig: sig, alg: alg, kid: kid, claims: claims}, nil
}

// ParseUnverified extracts the issuer DID, new DID and signing kid from a from_prior JWT
// without checking its signature, so a caller can resolve the issuer's verification method
// before calling VerifyFromPrior.
func ParseUnverified(token string) (priorDID, newDID, signingKID string, err error) {
	p, err := parse(token)
	if err != nil {
		return "", "", "", err
	}

	return p.claims.Issuer, p.claims.Subject, p.kid, nil
}

// VerifyFromPrior checks a from_prior JWT's signature against pub (the issuer's resolved
// authentication key) and its exp/nbf claims against now, and returns the prior and new DIDs
// it asserts plus the signing kid.
func VerifyFromPrior(token string, pub []byte, now time.Time) (priorDID, newDID, signingKID string, err error) {
	p, err := parse(token)
	if err != nil {
		return "", "", "", err
	}

	input, err := p.jws.SigningInput(p.sig.ProtectedHeaders)
	if err != nil {
		return "", "", "", fmt.Errorf("building from_prior signing input: %w", err)
	}

	if err := signature.Verify(p.alg, pub, input, p.sig.Signature); err != nil {
		return "", "", "", didcommerr.Wrapf(didcommerr.Malformed, err, "from_prior signature verification failed")
	}

	if p.claims.Expiry != nil && now.After(p.claims.Expiry.Time()) {
		return "", "", "", didcommerr.New(didcommerr.Malformed, "from_prior jwt has expired", nil)
	}

	if p.claims.NotBefore != nil && now.Before(p.claims.NotBefore.Time()) {
		return "", "", "", didcommerr.New(didcommerr.Malformed, "from_prior jwt is not yet valid", nil)
	}

	return p.claims.Issuer, p.claims.Subject, p.kid, nil
}
