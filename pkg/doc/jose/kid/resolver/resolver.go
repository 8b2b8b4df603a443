/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package resolver resolves a JOSE 'kid'/'skid' header value, which this engine always sets to a
// DID URL, into the keyAgreement or authentication verification method it points at.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/jwk"
)

// ResolvedKey is a resolved verification method (keyAgreement or authentication): its DID URL,
// key type, the decoded JWK, and the raw public key bytes.
type ResolvedKey struct {
	KID     string
	KeyType verkey.KeyType
	JWK     *jwk.JWK
	Raw     []byte
}

// KeyAgreementKey is an alias kept for the key-agreement resolution path's call sites.
type KeyAgreementKey = ResolvedKey

// Resolve resolves kid (a DID URL of the form "did:...#fragment") against didResolver's DID
// document for the DID part, and returns the matching keyAgreement entry.
func Resolve(ctx context.Context, kid string, didResolver didcomm.DIDResolver) (*ResolvedKey, error) {
	return resolveFrom(ctx, kid, didResolver, "keyAgreement", func(doc *did.Doc) []did.Verification {
		return doc.KeyAgreement
	})
}

// ResolveAuthentication resolves kid against didResolver's DID document, restricted to the
// authentication relationship — used for signature-key and from_prior-issuer-key selection.
func ResolveAuthentication(ctx context.Context, kid string, didResolver didcomm.DIDResolver) (*ResolvedKey, error) {
	return resolveFrom(ctx, kid, didResolver, "authentication", func(doc *did.Doc) []did.Verification {
		return doc.Authentication
	})
}

func resolveFrom(
	ctx context.Context,
	kid string,
	didResolver didcomm.DIDResolver,
	relationship string,
	pick func(*did.Doc) []did.Verification,
) (*ResolvedKey, error) {
	i := strings.Index(kid, "#")
	if i < 0 {
		return nil, didcommerr.New(didcommerr.Malformed, fmt.Sprintf("kid %q is not a DID URL", kid), nil)
	}

	docDID := kid[:i]

	doc, err := didResolver.Resolve(ctx, docDID)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.DIDNotResolved, err, "resolving DID %s", docDID)
	}

	if doc == nil {
		return nil, didcommerr.New(didcommerr.DIDNotResolved, fmt.Sprintf("DID %s not found", docDID), nil)
	}

	for _, entry := range pick(doc) {
		vm := entry.VerificationMethod
		if !matchesKID(doc.ID, vm.ID, kid) {
			continue
		}

		return buildKey(&vm)
	}

	return nil, didcommerr.New(didcommerr.DIDUrlNotFound,
		fmt.Sprintf("kid %s not found in %s of DID document %s", kid, relationship, docDID), nil)
}

func matchesKID(docID, vmID, kid string) bool {
	if vmID == kid {
		return true
	}

	if strings.HasPrefix(vmID, "#") {
		return docID+vmID == kid
	}

	return false
}

func buildKey(vm *did.VerificationMethod) (*KeyAgreementKey, error) {
	kt, err := verkey.TypeFromVerificationMethod(vm)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Unsupported, err, "resolving key type for %s", vm.ID)
	}

	raw, err := vm.RawPublicKey()
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "decoding key material for %s", vm.ID)
	}

	keyJWK, err := verkey.JWKFromVerificationMethod(vm)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "building jwk for %s", vm.ID)
	}

	return &KeyAgreementKey{KID: vm.ID, KeyType: kt, JWK: keyJWK, Raw: raw}, nil
}
