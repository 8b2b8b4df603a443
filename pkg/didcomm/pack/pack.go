/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package pack orchestrates the sign, encrypt and forward-wrap layers behind the
// PackPlaintext/PackSigned/PackEncrypted operations and their Unpack counterpart, composing the
// lower-level packer/* and didrotate packages in the fixed order the wire format requires.
package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/hyperledger/aries-didcomm-go/component/log"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/keymaterial"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/anoncrypt"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/authcrypt"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/forward"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/signature"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/verkey"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/did"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/kid/resolver"
)

var logger = log.New("aries-didcomm-go/pkg/didcomm/pack")

// PackPlaintext serializes msg to canonical JSON with no cryptographic processing, forcing its
// "typ" to the DIDComm plaintext media type. It requires no resolvers.
func PackPlaintext(msg *didcomm.Message) (string, error) {
	b, err := plaintextJSON(msg)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

func plaintextJSON(msg *didcomm.Message) ([]byte, error) {
	out := *msg
	out.Typ = jose.MediaTypeDIDCommPlaintext

	b, err := json.Marshal(&out)
	if err != nil {
		return nil, fmt.Errorf("serializing plaintext message: %w", err)
	}

	return b, nil
}

// PackSigned signs msg's canonical plaintext with every kid in signByKIDs, returning a compact
// JWS when there is exactly one signer and a general-JSON JWS otherwise.
func PackSigned(
	ctx context.Context,
	msg *didcomm.Message,
	signByKIDs []string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
) (string, *Metadata, error) {
	if len(signByKIDs) == 0 {
		return "", nil, didcommerr.New(didcommerr.IllegalArgument, "pack_signed requires at least one sign_by kid", nil)
	}

	payload, err := plaintextJSON(msg)
	if err != nil {
		return "", nil, err
	}

	jws, meta, err := signPayload(ctx, payload, signByKIDs, didResolver, secretsResolver)
	if err != nil {
		return "", nil, err
	}

	serialized, err := serializeJWS(jws)
	if err != nil {
		return "", nil, err
	}

	return serialized, meta, nil
}

func signPayload(
	ctx context.Context,
	payload []byte,
	signByKIDs []string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
) (*jose.JSONWebSignature, *Metadata, error) {
	jws := &jose.JSONWebSignature{Payload: payload}
	sigs := make([]jose.Signature, 0, len(signByKIDs))

	var lastKID, lastAlg string

	for _, kid := range signByKIDs {
		if _, err := resolver.ResolveAuthentication(ctx, kid, didResolver); err != nil {
			return nil, nil, err
		}

		secret, err := secretsResolver.GetSecret(ctx, kid)
		if err != nil {
			return nil, nil, didcommerr.Wrapf(didcommerr.SecretNotFound, err, "resolving signer secret %s", kid)
		}

		if secret == nil {
			return nil, nil, didcommerr.New(didcommerr.SecretNotFound, fmt.Sprintf("no secret for signer %s", kid), nil)
		}

		kt, priv, err := keymaterial.SecretKey(secret)
		if err != nil {
			return nil, nil, err
		}

		signer, err := signature.NewSigner(kt, priv)
		if err != nil {
			return nil, nil, err
		}

		protected := jose.Headers{
			jose.HeaderType:      jose.MediaTypeDIDCommSigned,
			jose.HeaderAlgorithm: signer.Algorithm(),
			jose.HeaderKeyID:     kid,
		}

		input, err := jws.SigningInput(protected)
		if err != nil {
			return nil, nil, fmt.Errorf("building signing input for %s: %w", kid, err)
		}

		sig, err := signer.Sign(input)
		if err != nil {
			return nil, nil, fmt.Errorf("signing with %s: %w", kid, err)
		}

		sigs = append(sigs, jose.Signature{ProtectedHeaders: protected, Signature: sig})
		lastKID, lastAlg = kid, signer.Algorithm()
	}

	jws.Signatures = sigs

	return jws, &Metadata{
		Authenticated:  true,
		NonRepudiation: true,
		SignFrom:       lastKID,
		SignAlg:        lastAlg,
	}, nil
}

func serializeJWS(jws *jose.JSONWebSignature) (string, error) {
	if len(jws.Signatures) == 1 {
		return jws.SerializeCompact()
	}

	return jws.Serialize()
}

// PackEncrypted builds an encrypted DIDComm v2 envelope for msg addressed to msg.To, applying
// opts in the fixed order sign, then encrypt, then sender-protection, then forward.
func PackEncrypted(
	ctx context.Context,
	msg *didcomm.Message,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
	opts ...Option,
) (string, *Metadata, error) {
	o := newEncryptOptions(opts)

	if len(msg.To) == 0 {
		return "", nil, didcommerr.New(didcommerr.IllegalArgument, "pack_encrypted requires a non-empty to", nil)
	}

	if o.signBy != "" && o.from != "" {
		if err := checkSignByFromController(ctx, o.signBy, o.from, didResolver); err != nil {
			return "", nil, err
		}
	}

	recipientKIDs, err := recipientKeyAgreementKIDs(ctx, msg.To, didResolver)
	if err != nil {
		return "", nil, err
	}

	meta := &Metadata{EncryptedTo: recipientKIDs}

	var payload []byte

	if o.signBy != "" {
		plaintext, perr := plaintextJSON(msg)
		if perr != nil {
			return "", nil, perr
		}

		jws, signMeta, serr := signPayload(ctx, plaintext, []string{o.signBy}, didResolver, secretsResolver)
		if serr != nil {
			return "", nil, serr
		}

		signed, serr := serializeJWS(jws)
		if serr != nil {
			return "", nil, serr
		}

		payload = []byte(signed)
		meta.Authenticated = signMeta.Authenticated
		meta.NonRepudiation = signMeta.NonRepudiation
		meta.SignFrom = signMeta.SignFrom
		meta.SignAlg = signMeta.SignAlg
	} else {
		var perr error

		payload, perr = plaintextJSON(msg)
		if perr != nil {
			return "", nil, perr
		}
	}

	envelope, err := encryptPayload(ctx, payload, o, recipientKIDs, didResolver, secretsResolver, meta)
	if err != nil {
		return "", nil, err
	}

	if o.forward {
		wrapped, svc, werr := applyForward(ctx, msg.To[0], envelope, didResolver, o.encAlgAnon)
		if werr != nil {
			return "", nil, werr
		}

		if wrapped != "" {
			logger.Debugf("pack_encrypted: wrapped envelope for %s in %d forward layer(s)", msg.To[0], len(svc.RoutingKeys))
			envelope = wrapped
			meta.MessagingService = svc
		}
	}

	return envelope, meta, nil
}

func encryptPayload(
	ctx context.Context,
	payload []byte,
	o *encryptOptions,
	recipientKIDs []string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
	meta *Metadata,
) (string, error) {
	if o.from == "" {
		env, err := anoncrypt.Pack(ctx, payload, recipientKIDs, o.encAlgAnon, didResolver)
		if err != nil {
			return "", err
		}

		meta.Encrypted = true
		meta.AnonymousSender = true
		meta.EncryptAlg = o.encAlgAnon

		return env, nil
	}

	senderKID, err := senderKeyAgreementKID(ctx, o.from, recipientKIDs, didResolver)
	if err != nil {
		return "", err
	}

	env, err := authcrypt.Pack(ctx, payload, senderKID, recipientKIDs, didResolver, secretsResolver)
	if err != nil {
		return "", err
	}

	meta.Encrypted = true
	meta.Authenticated = true
	meta.EncryptAlg = authcrypt.ContentEncAlg

	if !o.protectSender {
		return env, nil
	}

	wrapped, err := anoncrypt.Pack(ctx, []byte(env), recipientKIDs, o.encAlgAnon, didResolver)
	if err != nil {
		return "", err
	}

	meta.AnonymousSender = true

	return wrapped, nil
}

// recipientKeyAgreementKIDs resolves each recipient DID's key-agreement keys, intersects their
// curves (Invariant 2), and returns one kid per recipient on a curve shared by all of them.
func recipientKeyAgreementKIDs(
	ctx context.Context,
	recipientDIDs []string,
	didResolver didcomm.DIDResolver,
) ([]string, error) {
	perRecipientKIDs := make([][]string, len(recipientDIDs))
	keyTypeByKID := make(map[string]verkey.KeyType)

	var curveSets []map[verkey.KeyType]bool

	for i, rdid := range recipientDIDs {
		doc, err := didResolver.Resolve(ctx, rdid)
		if err != nil {
			return nil, didcommerr.Wrapf(didcommerr.DIDNotResolved, err, "resolving recipient DID %s", rdid)
		}

		if doc == nil {
			return nil, didcommerr.New(didcommerr.DIDNotResolved, fmt.Sprintf("recipient DID %s not found", rdid), nil)
		}

		kids, curves := keyAgreementCurves(doc, keyTypeByKID)
		if len(kids) == 0 {
			return nil, didcommerr.New(didcommerr.NoCompatibleCrypto,
				fmt.Sprintf("recipient DID %s has no usable keyAgreement keys", rdid), nil)
		}

		perRecipientKIDs[i] = kids
		curveSets = append(curveSets, curves)
	}

	shared := curveSets[0]

	for _, c := range curveSets[1:] {
		for kt := range shared {
			if !c[kt] {
				delete(shared, kt)
			}
		}
	}

	if len(shared) == 0 {
		return nil, didcommerr.New(didcommerr.NoCompatibleCrypto, "recipients share no common key-agreement curve", nil)
	}

	chosen := make([]string, len(recipientDIDs))

	for i, kids := range perRecipientKIDs {
		for _, kid := range kids {
			if shared[keyTypeByKID[kid]] {
				chosen[i] = kid
				break
			}
		}

		if chosen[i] == "" {
			return nil, didcommerr.New(didcommerr.NoCompatibleCrypto,
				fmt.Sprintf("recipient %s has no key on a shared curve", recipientDIDs[i]), nil)
		}
	}

	return chosen, nil
}

func keyAgreementCurves(doc *did.Doc, keyTypeByKID map[string]verkey.KeyType) ([]string, map[verkey.KeyType]bool) {
	kids := make([]string, 0, len(doc.KeyAgreement))
	curves := make(map[verkey.KeyType]bool)

	for _, ka := range doc.KeyAgreement {
		vm := ka.VerificationMethod

		kt, err := verkey.TypeFromVerificationMethod(&vm)
		if err != nil {
			continue
		}

		kid := fullKID(doc.ID, vm.ID)
		kids = append(kids, kid)
		curves[kt] = true
		keyTypeByKID[kid] = kt
	}

	return kids, curves
}

func fullKID(docID, vmID string) string {
	if strings.HasPrefix(vmID, "#") {
		return docID + vmID
	}

	return vmID
}

// senderKeyAgreementKID picks fromDID's key-agreement key on the same curve as the already-
// resolved recipients (Invariant 3).
func senderKeyAgreementKID(
	ctx context.Context,
	fromDID string,
	recipientKIDs []string,
	didResolver didcomm.DIDResolver,
) (string, error) {
	if len(recipientKIDs) == 0 {
		return "", didcommerr.New(didcommerr.IllegalArgument, "authcrypt requires resolved recipient keys", nil)
	}

	recipientKey, err := resolver.Resolve(ctx, recipientKIDs[0], didResolver)
	if err != nil {
		return "", err
	}

	doc, err := didResolver.Resolve(ctx, fromDID)
	if err != nil {
		return "", didcommerr.Wrapf(didcommerr.DIDNotResolved, err, "resolving sender DID %s", fromDID)
	}

	if doc == nil {
		return "", didcommerr.New(didcommerr.DIDNotResolved, fmt.Sprintf("sender DID %s not found", fromDID), nil)
	}

	for _, ka := range doc.KeyAgreement {
		vm := ka.VerificationMethod

		kt, kerr := verkey.TypeFromVerificationMethod(&vm)
		if kerr != nil || kt != recipientKey.KeyType {
			continue
		}

		return fullKID(doc.ID, vm.ID), nil
	}

	return "", didcommerr.New(didcommerr.NoCompatibleCrypto,
		fmt.Sprintf("sender DID %s has no keyAgreement key matching recipient curve %s", fromDID, recipientKey.KeyType), nil)
}

// checkSignByFromController enforces that signByKID and fromDID, when both set, are controlled
// by the same DID (Invariant 4): a signed-then-encrypted envelope must not assert authorship
// from one party while claiming sender identity as another.
func checkSignByFromController(
	ctx context.Context,
	signByKID string,
	fromDID string,
	didResolver didcomm.DIDResolver,
) error {
	i := strings.Index(signByKID, "#")
	if i < 0 {
		return didcommerr.New(didcommerr.Malformed, fmt.Sprintf("sign_by %q is not a DID URL", signByKID), nil)
	}

	signByDocID := signByKID[:i]

	doc, err := didResolver.Resolve(ctx, signByDocID)
	if err != nil {
		return didcommerr.Wrapf(didcommerr.DIDNotResolved, err, "resolving sign_by DID %s", signByDocID)
	}

	if doc == nil {
		return didcommerr.New(didcommerr.DIDNotResolved, fmt.Sprintf("sign_by DID %s not found", signByDocID), nil)
	}

	vm, ok := doc.VerificationMethodByID(signByKID)
	if !ok {
		return didcommerr.New(didcommerr.DIDUrlNotFound,
			fmt.Sprintf("sign_by kid %s not found in DID document %s", signByKID, signByDocID), nil)
	}

	controller := vm.Controller
	if controller == "" {
		controller = doc.ID
	}

	if controller != fromDID {
		return didcommerr.New(didcommerr.IllegalArgument,
			fmt.Sprintf("sign_by %s is controlled by %s, which does not match from %s", signByKID, controller, fromDID), nil)
	}

	return nil
}

// applyForward wraps envelope in nested anoncrypt forward messages if recipientDID's resolved
// DIDCommMessaging service declares routing keys, innermost wrapper first (addressed to the
// last routing key, whose "next" is recipientDID itself).
func applyForward(
	ctx context.Context,
	recipientDID string,
	envelope string,
	didResolver didcomm.DIDResolver,
	encAlgAnon string,
) (string, *did.Service, error) {
	doc, err := didResolver.Resolve(ctx, recipientDID)
	if err != nil {
		return "", nil, didcommerr.Wrapf(didcommerr.DIDNotResolved, err, "resolving recipient DID %s", recipientDID)
	}

	if doc == nil {
		return "", nil, didcommerr.New(didcommerr.DIDNotResolved, fmt.Sprintf("recipient DID %s not found", recipientDID), nil)
	}

	svc, ok := doc.DIDCommService()
	if !ok || len(svc.RoutingKeys) == 0 {
		return "", nil, nil
	}

	next := recipientDID
	current := []byte(envelope)

	for i := len(svc.RoutingKeys) - 1; i >= 0; i-- {
		routingKey := svc.RoutingKeys[i]

		fwdMsg, ferr := forward.Wrap(routingKey, next, current)
		if ferr != nil {
			return "", nil, ferr
		}

		fwdPlaintext, merr := json.Marshal(fwdMsg)
		if merr != nil {
			return "", nil, fmt.Errorf("serializing forward message: %w", merr)
		}

		wrapped, perr := anoncrypt.Pack(ctx, fwdPlaintext, []string{routingKey}, encAlgAnon, didResolver)
		if perr != nil {
			return "", nil, perr
		}

		current = []byte(wrapped)
		next = routingKey
	}

	return string(current), &svc, nil
}
