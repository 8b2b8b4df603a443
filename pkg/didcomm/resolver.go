/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package didcomm

import (
	"context"

	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
)

// DIDResolver resolves a DID into its DID document. Absence of a document for a
// syntactically valid DID is reported as (nil, nil); resolution failure is reported as
// (nil, err) with err tagged didcommerr.DIDNotResolved or didcommerr.Malformed.
//
// No implementation ships in this module: callers plug in their own resolver (a universal
// resolver client, a local did:key resolver, a ledger-backed did:indy resolver, ...).
type DIDResolver interface {
	Resolve(ctx context.Context, did string) (*did.Doc, error)
}

// Secret is the private key material behind one verification method.
type Secret struct {
	// KID is the DID URL (verification method id) this secret corresponds to.
	KID string
	// Type names the key type (e.g. "JsonWebKey2020", "X25519KeyAgreementKey2019") the same
	// way a did.VerificationMethod.Type does, so callers built around DID documents can share code.
	Type string
	// JSONWebKeyValue carries the private key as a JWK when Type == JsonWebKey2020.
	JSONWebKeyValue *did.JSONWebKey
	// Value carries the raw private key bytes for the non-JWK verification-method types.
	Value []byte
}

// SecretsResolver supplies private key material for a kid this party controls.
// Absence is reported as (nil, nil).
//
// No implementation ships in this module: callers plug in their own key store.
type SecretsResolver interface {
	GetSecret(ctx context.Context, kid string) (*Secret, error)
	FindSecrets(ctx context.Context, kids []string) ([]string, error)
}
