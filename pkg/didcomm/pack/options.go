/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pack

import "github.com/hyperledger/aries-didcomm-go/pkg/didcomm/crypto/jwecrypto"

// Option configures PackEncrypted.
type Option func(*encryptOptions)

type encryptOptions struct {
	signBy        string
	from          string
	protectSender bool
	forward       bool
	encAlgAnon    string
}

func newEncryptOptions(opts []Option) *encryptOptions {
	o := &encryptOptions{encAlgAnon: jwecrypto.A256CBCHS512}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithSignBy signs the plaintext with signBy's key before encrypting, so the resulting envelope
// carries non-repudiable authorship in addition to confidentiality.
func WithSignBy(kid string) Option {
	return func(o *encryptOptions) { o.signBy = kid }
}

// WithFrom selects authcrypt, authenticating the sender via fromDID's key-agreement key.
// Without it, PackEncrypted produces an anoncrypt envelope.
func WithFrom(fromDID string) Option {
	return func(o *encryptOptions) { o.from = fromDID }
}

// WithProtectSender additionally wraps an authcrypt envelope in an anoncrypt layer, so the
// sender's identity (carried in "skid"/"apu") is not observable to an eavesdropper. Has no
// effect without WithFrom.
func WithProtectSender() Option {
	return func(o *encryptOptions) { o.protectSender = true }
}

// WithForward wraps the final envelope in the recipient's declared routing keys, if the
// recipient's resolved DIDCommMessaging service lists any.
func WithForward() Option {
	return func(o *encryptOptions) { o.forward = true }
}

// WithEncAlgAnon selects the anoncrypt content encryption algorithm (A256CBC-HS512, A256GCM or
// XC20P; default A256CBC-HS512). Authcrypt's content algorithm is always A256CBC-HS512 and is
// not configurable.
func WithEncAlgAnon(alg string) Option {
	return func(o *encryptOptions) { o.encAlgAnon = alg }
}

// UnpackOption configures Unpack.
type UnpackOption func(*unpackOptions)

type unpackOptions struct {
	expectDecryptByAllKeys  bool
	unwrapReWrappingForward bool
}

func newUnpackOptions(opts []UnpackOption) *unpackOptions {
	o := &unpackOptions{}

	for _, opt := range opts {
		opt(o)
	}

	return o
}

// WithExpectDecryptByAllKeys requires that every recipient kid present in a JWE is held locally
// and decrypts successfully; a recipient kid we cannot decrypt for fails the whole unpack with
// Malformed instead of being skipped.
func WithExpectDecryptByAllKeys() UnpackOption {
	return func(o *unpackOptions) { o.expectDecryptByAllKeys = true }
}

// WithUnwrapReWrappingForward re-enters unpack on a decrypted forward message's inner envelope
// instead of returning the forward message itself, setting Metadata.ReWrappedInForward.
func WithUnwrapReWrappingForward() UnpackOption {
	return func(o *unpackOptions) { o.unwrapReWrappingForward = true }
}
