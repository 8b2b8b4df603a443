/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package pack

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/crypto/jwecrypto"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didrotate"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/anoncrypt"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/authcrypt"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/forward"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/signature"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/kid/resolver"
)

// envelopeKind classifies one layer of an on-wire envelope during Unpack's walk.
type envelopeKind int

const (
	envelopePlaintext envelopeKind = iota
	envelopeJWS
	envelopeJWEAuth
	envelopeJWEAnon
)

// Unpack inspects serialized (the on-wire envelope), classifies its outermost layer, and walks
// JWE/JWS/forward layers inward — the {JWE-anon, JWE-auth, JWS, Plaintext, Forward} state
// machine — until it reaches a plaintext Message, applying opts along the way.
func Unpack(
	ctx context.Context,
	serialized string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
	opts ...UnpackOption,
) (*didcomm.Message, *Metadata, error) {
	o := newUnpackOptions(opts)
	meta := &Metadata{}
	current := serialized

	for {
		kind, err := classify(current)
		if err != nil {
			return nil, nil, err
		}

		switch kind {
		case envelopeJWEAuth, envelopeJWEAnon:
			plaintext, anonymous, recipientKID, err := unpackJWE(ctx, current, kind, o, didResolver, secretsResolver)
			if err != nil {
				return nil, nil, err
			}

			meta.Encrypted = true
			meta.EncryptedTo = append(meta.EncryptedTo, recipientKID)

			if anonymous {
				meta.AnonymousSender = true
			} else {
				meta.Authenticated = true
			}

			current = string(plaintext)

			continue
		case envelopeJWS:
			plaintext, signFrom, signAlg, err := unpackJWS(ctx, current, didResolver)
			if err != nil {
				return nil, nil, err
			}

			meta.Authenticated = true
			meta.NonRepudiation = true
			meta.SignFrom = signFrom
			meta.SignAlg = signAlg

			current = string(plaintext)

			continue
		case envelopePlaintext:
			msg, err := parsePlaintext(current)
			if err != nil {
				return nil, nil, err
			}

			if msg.FromPrior != "" {
				issuerKID, ferr := verifyFromPriorClaim(ctx, msg, didResolver)
				if ferr != nil {
					return nil, nil, ferr
				}

				meta.FromPriorIssuerKID = issuerKID
			}

			isForward, next, inner, ferr := forward.Unwrap(msg)
			if ferr != nil {
				return nil, nil, ferr
			}

			if isForward && o.unwrapReWrappingForward {
				logger.Debugf("unpack: re-entering forward envelope addressed to next %s", next)
				meta.ReWrappedInForward = true
				current = string(inner)

				continue
			}

			return msg, meta, nil
		}
	}
}

// classify inspects serialized's outermost JSON shape to decide which envelope layer it is.
// JWE general-JSON (the only form this engine emits) is distinguished from JWS by the
// "ciphertext" member; a non-JSON-object string is always a compact JWS (this engine never
// emits compact JWE). Anything else is plaintext.
func classify(serialized string) (envelopeKind, error) {
	trimmed := strings.TrimSpace(serialized)

	if !strings.HasPrefix(trimmed, "{") {
		return envelopeJWS, nil
	}

	var generic map[string]interface{}
	if err := json.Unmarshal([]byte(trimmed), &generic); err != nil {
		return 0, didcommerr.Wrapf(didcommerr.Malformed, err, "parsing envelope JSON")
	}

	if _, ok := generic["ciphertext"]; ok {
		if alg, ok := algFromProtected(generic); ok && alg == jose.ECDH1PUA256KW {
			return envelopeJWEAuth, nil
		}

		return envelopeJWEAnon, nil
	}

	if _, ok := generic["signatures"]; ok {
		return envelopeJWS, nil
	}

	if _, ok := generic["signature"]; ok {
		return envelopeJWS, nil
	}

	return envelopePlaintext, nil
}

func algFromProtected(generic map[string]interface{}) (string, bool) {
	protB64, ok := generic["protected"].(string)
	if !ok {
		return "", false
	}

	headerJSON, err := jwecrypto.DecodeHeader(protB64)
	if err != nil {
		return "", false
	}

	var h jose.Headers
	if err := json.Unmarshal(headerJSON, &h); err != nil {
		return "", false
	}

	return h.Algorithm()
}

// unpackJWE decrypts a general-JSON JWE, trying every recipient kid find_secrets reports we
// hold (default: stop at the first that decrypts; WithExpectDecryptByAllKeys requires every
// recipient kid present to be held and to decrypt).
func unpackJWE(
	ctx context.Context,
	serialized string,
	kind envelopeKind,
	o *unpackOptions,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
) (plaintext []byte, anonymous bool, recipientKID string, err error) {
	jwe, derr := jose.Deserialize(serialized)
	if derr != nil {
		return nil, false, "", didcommerr.Wrapf(didcommerr.Malformed, derr, "parsing JWE envelope")
	}

	candidateKIDs := make([]string, 0, len(jwe.Recipients))
	for _, r := range jwe.Recipients {
		candidateKIDs = append(candidateKIDs, r.Header.KID)
	}

	heldKIDs, herr := secretsResolver.FindSecrets(ctx, candidateKIDs)
	if herr != nil {
		return nil, false, "", didcommerr.Wrapf(didcommerr.IoError, herr, "checking held secrets")
	}

	if len(heldKIDs) == 0 {
		return nil, false, "", didcommerr.New(didcommerr.SecretNotFound,
			"no recipient kid in this envelope is held locally", nil)
	}

	if o.expectDecryptByAllKeys {
		for _, kid := range candidateKIDs {
			if !contains(heldKIDs, kid) {
				return nil, false, "", didcommerr.New(didcommerr.Malformed,
					fmt.Sprintf("recipient kid %s not held locally, expect_decrypt_by_all_keys is set", kid), nil)
			}
		}
	}

	var lastErr error

	for _, kid := range heldKIDs {
		if kind == envelopeJWEAuth {
			pt, _, perr := authcrypt.Unpack(ctx, serialized, kid, didResolver, secretsResolver)
			if perr != nil {
				logger.Debugf("unpack: authcrypt decryption failed for held recipient kid %s: %v", kid, perr)
				if o.expectDecryptByAllKeys {
					return nil, false, "", didcommerr.Wrapf(didcommerr.Malformed, perr, "decryption failed for recipient kid %s, expect_decrypt_by_all_keys is set", kid)
				}
				lastErr = perr
				continue
			}

			if !o.expectDecryptByAllKeys || kid == heldKIDs[len(heldKIDs)-1] {
				return pt, false, kid, nil
			}

			continue
		}

		pt, perr := anoncrypt.Unpack(ctx, serialized, kid, secretsResolver)
		if perr != nil {
			logger.Debugf("unpack: anoncrypt decryption failed for held recipient kid %s: %v", kid, perr)
			if o.expectDecryptByAllKeys {
				return nil, false, "", didcommerr.Wrapf(didcommerr.Malformed, perr, "decryption failed for recipient kid %s, expect_decrypt_by_all_keys is set", kid)
			}
			lastErr = perr
			continue
		}

		if !o.expectDecryptByAllKeys || kid == heldKIDs[len(heldKIDs)-1] {
			return pt, true, kid, nil
		}
	}

	return nil, false, "", didcommerr.Wrapf(didcommerr.Malformed, lastErr, "decryption failed for every held recipient kid")
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}

	return false
}

// unpackJWS verifies every signature on a JWS (compact or general-JSON) against its resolved
// authentication key, returning the last signer's kid/algorithm in sign_from/sign_alg.
func unpackJWS(ctx context.Context, serialized string, didResolver didcomm.DIDResolver) (payload []byte, signFrom, signAlg string, err error) {
	jws, perr := jose.ParseJWS(serialized)
	if perr != nil {
		return nil, "", "", didcommerr.Wrapf(didcommerr.Malformed, perr, "parsing JWS envelope")
	}

	if len(jws.Signatures) == 0 {
		return nil, "", "", didcommerr.New(didcommerr.Malformed, "JWS envelope carries no signatures", nil)
	}

	for _, sig := range jws.Signatures {
		kid, ok := sig.ProtectedHeaders.KeyID()
		if !ok {
			return nil, "", "", didcommerr.New(didcommerr.Malformed, "JWS signature missing kid header", nil)
		}

		alg, aerr := sig.ProtectedHeaders.RequireString(jose.HeaderAlgorithm)
		if aerr != nil {
			return nil, "", "", didcommerr.Wrapf(didcommerr.Malformed, aerr, "JWS signature missing alg header")
		}

		signerKey, rerr := resolver.ResolveAuthentication(ctx, kid, didResolver)
		if rerr != nil {
			return nil, "", "", rerr
		}

		input, ierr := jws.SigningInput(sig.ProtectedHeaders)
		if ierr != nil {
			return nil, "", "", fmt.Errorf("building verification input for %s: %w", kid, ierr)
		}

		if verr := signature.Verify(alg, signerKey.Raw, input, sig.Signature); verr != nil {
			return nil, "", "", didcommerr.Wrapf(didcommerr.Malformed, verr, "JWS signature verification failed for %s", kid)
		}

		signFrom, signAlg = kid, alg
	}

	return jws.Payload, signFrom, signAlg, nil
}

func parsePlaintext(serialized string) (*didcomm.Message, error) {
	var msg didcomm.Message
	if err := json.Unmarshal([]byte(serialized), &msg); err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "parsing plaintext message")
	}

	return &msg, nil
}

// verifyFromPriorClaim validates msg.FromPrior per Invariant 7: the issuer's DID document must
// resolve, the JWT's kid must belong to its authentication set, the signature must verify, and
// msg.From must equal the JWT's "sub".
func verifyFromPriorClaim(ctx context.Context, msg *didcomm.Message, didResolver didcomm.DIDResolver) (string, error) {
	iss, sub, kid, err := didrotate.ParseUnverified(msg.FromPrior)
	if err != nil {
		return "", err
	}

	if !strings.HasPrefix(kid, iss+"#") {
		return "", didcommerr.New(didcommerr.Malformed, "from_prior kid does not belong to the issuer DID", nil)
	}

	if msg.From != sub {
		return "", didcommerr.New(didcommerr.Malformed, "from_prior sub does not match message from", nil)
	}

	issuerKey, err := resolver.ResolveAuthentication(ctx, kid, didResolver)
	if err != nil {
		return "", err
	}

	_, _, signerKID, err := didrotate.VerifyFromPrior(msg.FromPrior, issuerKey.Raw, time.Now())
	if err != nil {
		return "", err
	}

	return signerKID, nil
}
