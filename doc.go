/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package aries provides a DIDComm v2 secure envelope engine: JWM plaintext
// construction, JWS signing, JWE authcrypt/anoncrypt encryption, mediator
// forward wrapping and from_prior DID-rotation JWTs.
//
// Packages for end developer usage
//
// pkg/didcomm/pack: Pack/unpack entry points tying the signing, encryption
// and forward-wrapping stages together.
// Reference: https://pkg.go.dev/github.com/hyperledger/aries-didcomm-go/pkg/didcomm/pack
//
// pkg/didcomm: the DIDResolver and SecretsResolver capability interfaces a
// caller implements to supply DID documents and key material; no resolver
// implementation ships in this module. pkg/doc/did holds the DID document model
// those resolvers return.
//
// Basic workflow
//
//	1) Implement DIDResolver and SecretsResolver for your environment.
//	2) Call pack.PackPlaintext, pack.PackSigned or pack.PackEncrypted, passing
//	   those resolvers, to seal an outbound message.
//	3) Call pack.Unpack with the same kind of resolvers to open a received one.
package aries
