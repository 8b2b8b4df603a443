/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pack

import "github.com/hyperledger/aries-didcomm-go/pkg/doc/did"

// Metadata reports what a pack or unpack call actually did: which cryptographic layers were
// applied (pack) or observed (unpack), and which keys/algorithms were involved. Fields are set
// as the pack or unpack walk reaches each layer; none is derived from the others afterward.
type Metadata struct {
	Encrypted           bool
	Authenticated       bool
	NonRepudiation      bool
	AnonymousSender     bool
	ReWrappedInForward  bool

	// EncryptedTo is the resolved recipient key-agreement kids, in the order they were
	// addressed (pack) or discovered (unpack).
	EncryptedTo []string
	// EncryptAlg is the JWE "enc" content encryption algorithm PackEncrypted used for the
	// message's own encryption layer: the authcrypt layer when a sender was given, otherwise the
	// anoncrypt layer. Sender-protection and forward layers do not change it, and Unpack does
	// not set it.
	EncryptAlg string

	// SignFrom/SignAlg name the signer kid/algorithm of the last JWS layer processed.
	SignFrom string
	SignAlg  string

	// FromPriorIssuerKID is set once a valid from_prior JWT was verified during unpack.
	FromPriorIssuerKID string

	// MessagingService is the DIDCommMessaging service entry a forward-wrap was built against.
	MessagingService *did.Service
}
