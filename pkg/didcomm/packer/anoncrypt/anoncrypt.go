/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package anoncrypt implements DIDComm v2 anonymous encryption: a general-JSON JWE using
// ECDH-ES+A256KW per recipient, carrying no sender identity at all (not even under
// encryption) — the envelope authenticates nothing about who sent it.
package anoncrypt

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/crypto/jwecrypto"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/keymaterial"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose"
	"github.com/hyperledger/aries-didcomm-go/pkg/doc/jose/kid/resolver"
)

const keyWrapAlg = jose.ECDHESA256KW

// kekLenBits is the AES-256 key-encryption-key length A256KW wraps/unwraps.
const kekLenBits = 256

// Pack encrypts plaintext to recipientKIDs using ECDH-ES+A256KW under the given content
// encryption algorithm (A256CBC-HS512, A256GCM or XC20P), returning the general-JSON JWE
// serialization. There is no sender key: anoncrypt carries no "skid", "apu" or any other
// sender-identifying header.
func Pack(
	ctx context.Context,
	plaintext []byte,
	recipientKIDs []string,
	enc string,
	didResolver didcomm.DIDResolver,
) (string, error) {
	if len(recipientKIDs) == 0 {
		return "", didcommerr.New(didcommerr.IllegalArgument, "anoncrypt pack requires at least one recipient", nil)
	}

	recipientKeys := make([]*resolver.KeyAgreementKey, 0, len(recipientKIDs))

	for _, kid := range recipientKIDs {
		rk, err := resolver.Resolve(ctx, kid, didResolver)
		if err != nil {
			return "", err
		}

		recipientKeys = append(recipientKeys, rk)
	}

	ephemeralPriv, err := jwecrypto.GenerateEphemeral(recipientKeys[0].KeyType)
	if err != nil {
		return "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, err, "generating ephemeral key")
	}

	epkJWK, err := keymaterial.EPKJWK(recipientKeys[0].KeyType, ephemeralPriv.PublicKey().Bytes())
	if err != nil {
		return "", fmt.Errorf("building epk jwk: %w", err)
	}

	apv := jwecrypto.BuildAPV(recipientKIDs)

	protected := jose.Headers{
		jose.HeaderAlgorithm:  keyWrapAlg,
		jose.HeaderEncryption: enc,
		jose.HeaderAPV:        jwecrypto.EncodeHeader(apv),
		jose.HeaderEPK:        epkJWK,
	}

	aadB64, err := keymaterial.ProtectedAAD(protected)
	if err != nil {
		return "", err
	}

	cek, err := jwecrypto.GenerateCEK(enc)
	if err != nil {
		return "", fmt.Errorf("generating content encryption key: %w", err)
	}

	iv, ciphertext, tag, err := jwecrypto.Seal(enc, cek, plaintext, []byte(aadB64))
	if err != nil {
		return "", fmt.Errorf("encrypting content: %w", err)
	}

	recipients := make([]jose.Recipient, 0, len(recipientKeys))

	for i, rk := range recipientKeys {
		recipientPub, perr := jwecrypto.PublicKeyFromRaw(rk.KeyType, rk.Raw)
		if perr != nil {
			return "", didcommerr.Wrapf(didcommerr.Malformed, perr, "parsing recipient key %s", rk.KID)
		}

		z, zerr := jwecrypto.ECDH(ephemeralPriv, recipientPub)
		if zerr != nil {
			return "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, zerr, "ephemeral-static agreement for %s", rk.KID)
		}

		kek := jwecrypto.DeriveECDHES(keyWrapAlg, z, nil, apv, kekLenBits)

		encryptedKey, werr := jwecrypto.WrapCEK(kek, cek)
		if werr != nil {
			return "", fmt.Errorf("wrapping cek for recipient %d: %w", i, werr)
		}

		recipients = append(recipients, jose.Recipient{
			EncryptedKey: jwecrypto.EncodeHeader(encryptedKey),
			Header:       jose.RecipientHeaders{KID: rk.KID},
		})
	}

	jwe := &jose.JSONWebEncryption{
		ProtectedHeaders: protected,
		Recipients:       recipients,
		IV:               string(iv),
		Ciphertext:       string(ciphertext),
		Tag:              string(tag),
	}

	return jwe.Serialize(json.Marshal)
}

// Unpack decrypts a general-JSON anoncrypt JWE addressed to recipientKID.
func Unpack(
	ctx context.Context,
	serialized string,
	recipientKID string,
	secretsResolver didcomm.SecretsResolver,
) ([]byte, error) {
	jwe, err := jose.Deserialize(serialized)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "parsing anoncrypt envelope")
	}

	alg, _ := jwe.ProtectedHeaders.Algorithm()
	if alg != keyWrapAlg {
		return nil, didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("unsupported anoncrypt alg %q", alg), nil)
	}

	enc, err := jwe.ProtectedHeaders.RequireString(jose.HeaderEncryption)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "anoncrypt envelope missing enc header")
	}

	var encryptedKey string

	for _, r := range jwe.Recipients {
		if r.Header.KID == recipientKID {
			encryptedKey = r.EncryptedKey
			break
		}
	}

	if encryptedKey == "" {
		return nil, didcommerr.New(didcommerr.DIDUrlNotFound,
			fmt.Sprintf("recipient kid %s not found among envelope recipients", recipientKID), nil)
	}

	recipientSecret, err := secretsResolver.GetSecret(ctx, recipientKID)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.SecretNotFound, err, "resolving recipient secret %s", recipientKID)
	}

	if recipientSecret == nil {
		return nil, didcommerr.New(didcommerr.SecretNotFound, fmt.Sprintf("no secret for kid %s", recipientKID), nil)
	}

	recipientKeyType, recipientPrivRaw, err := keymaterial.SecretKey(recipientSecret)
	if err != nil {
		return nil, err
	}

	recipientPriv, err := jwecrypto.PrivateKeyFromRaw(recipientKeyType, recipientPrivRaw)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "parsing recipient private key")
	}

	epkRaw, ok := jwe.ProtectedHeaders[jose.HeaderEPK]
	if !ok {
		return nil, didcommerr.New(didcommerr.Malformed, "anoncrypt envelope missing epk header", nil)
	}

	epkPub, _, err := keymaterial.EPKPublicKey(epkRaw)
	if err != nil {
		return nil, err
	}

	z, err := jwecrypto.ECDH(recipientPriv, epkPub)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, err, "ephemeral-static agreement")
	}

	apvB64, err := jwe.ProtectedHeaders.RequireString(jose.HeaderAPV)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "anoncrypt envelope missing apv")
	}

	apv, err := jwecrypto.DecodeHeader(apvB64)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "decoding apv")
	}

	kek := jwecrypto.DeriveECDHES(alg, z, nil, apv, kekLenBits)

	wrapped, err := jwecrypto.DecodeHeader(encryptedKey)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "decoding encrypted key")
	}

	cek, err := jwecrypto.UnwrapCEK(kek, wrapped)
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "unwrapping content encryption key")
	}

	aadB64, err := jwe.ProtectedHeaderB64()
	if err != nil {
		return nil, fmt.Errorf("computing aad: %w", err)
	}

	plaintext, err := jwecrypto.Open(enc, cek, []byte(jwe.IV), []byte(jwe.Ciphertext), []byte(jwe.Tag), []byte(aadB64))
	if err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "decrypting content")
	}

	return plaintext, nil
}

