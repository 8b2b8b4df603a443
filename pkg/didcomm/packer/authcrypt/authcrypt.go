/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package authcrypt implements DIDComm v2 authenticated encryption: a general-JSON JWE using
// ECDH-1PU+A256KW per recipient over a shared A256CBC-HS512 content encryption key, so a
// recipient both decrypts the message and authenticates the sender as part of the same
// operation (draft-madden-jose-ecdh-1pu).
package authcrypt

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

// ContentEncAlg is the content encryption algorithm authcrypt always uses. DIDComm v2 fixes
// authcrypt to A256CBC-HS512 rather than making it configurable, so that authenticated
// encryption always carries the stronger, sender-binding AEAD construction.
const ContentEncAlg = jwecrypto.A256CBCHS512

const keyWrapAlg = jose.ECDH1PUA256KW

// kekLenBits is the AES-256 key-encryption-key length A256KW wraps/unwraps, independent of the
// content encryption algorithm's own key length.
const kekLenBits = 256

// Pack encrypts plaintext from senderKID to recipientKIDs using ECDH-1PU+A256KW/A256CBC-HS512,
// returning the general-JSON JWE serialization.
func Pack(
	ctx context.Context,
	plaintext []byte,
	senderKID string,
	recipientKIDs []string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
) (string, error) {
	if len(recipientKIDs) == 0 {
		return "", didcommerr.New(didcommerr.IllegalArgument, "authcrypt pack requires at least one recipient", nil)
	}

	senderSecret, err := secretsResolver.GetSecret(ctx, senderKID)
	if err != nil {
		return "", didcommerr.Wrapf(didcommerr.SecretNotFound, err, "resolving sender secret %s", senderKID)
	}

	if senderSecret == nil {
		return "", didcommerr.New(didcommerr.SecretNotFound, fmt.Sprintf("no secret for sender kid %s", senderKID), nil)
	}

	senderKeyType, senderPriv, err := keymaterial.SecretKey(senderSecret)
	if err != nil {
		return "", err
	}

	recipientKeys := make([]*resolver.KeyAgreementKey, 0, len(recipientKIDs))

	for _, kid := range recipientKIDs {
		rk, rerr := resolver.Resolve(ctx, kid, didResolver)
		if rerr != nil {
			return "", rerr
		}

		recipientKeys = append(recipientKeys, rk)
	}

	ephemeralPriv, err := jwecrypto.GenerateEphemeral(recipientKeys[0].KeyType)
	if err != nil {
		return "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, err, "generating ephemeral key")
	}

	senderStaticPriv, err := jwecrypto.PrivateKeyFromRaw(senderKeyType, senderPriv)
	if err != nil {
		return "", didcommerr.Wrapf(didcommerr.Malformed, err, "parsing sender static key")
	}

	epkJWK, err := keymaterial.EPKJWK(recipientKeys[0].KeyType, ephemeralPriv.PublicKey().Bytes())
	if err != nil {
		return "", fmt.Errorf("building epk jwk: %w", err)
	}

	apu := jwecrypto.BuildAPU(senderKID)
	apv := jwecrypto.BuildAPV(recipientKIDs)

	protected := jose.Headers{
		jose.HeaderAlgorithm:   keyWrapAlg,
		jose.HeaderEncryption:  ContentEncAlg,
		jose.HeaderSenderKeyID: senderKID,
		jose.HeaderAPU:         jwecrypto.EncodeHeader(apu),
		jose.HeaderAPV:         jwecrypto.EncodeHeader(apv),
		jose.HeaderEPK:         epkJWK,
	}

	aadB64, err := keymaterial.ProtectedAAD(protected)
	if err != nil {
		return "", err
	}

	cek, err := jwecrypto.GenerateCEK(ContentEncAlg)
	if err != nil {
		return "", fmt.Errorf("generating content encryption key: %w", err)
	}

	iv, ciphertext, tag, err := jwecrypto.Seal(ContentEncAlg, cek, plaintext, []byte(aadB64))
	if err != nil {
		return "", fmt.Errorf("encrypting content: %w", err)
	}

	recipients := make([]jose.Recipient, 0, len(recipientKeys))

	for i, rk := range recipientKeys {
		recipientPub, perr := jwecrypto.PublicKeyFromRaw(rk.KeyType, rk.Raw)
		if perr != nil {
			return "", didcommerr.Wrapf(didcommerr.Malformed, perr, "parsing recipient key %s", rk.KID)
		}

		ze, zerr := jwecrypto.ECDH(ephemeralPriv, recipientPub)
		if zerr != nil {
			return "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, zerr, "ephemeral-static agreement for %s", rk.KID)
		}

		zs, zerr := jwecrypto.ECDH(senderStaticPriv, recipientPub)
		if zerr != nil {
			return "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, zerr, "static-static agreement for %s", rk.KID)
		}

		kek := jwecrypto.DeriveECDH1PU(keyWrapAlg, ze, zs, apu, apv, kekLenBits)

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

// Unpack decrypts a general-JSON authcrypt JWE addressed to recipientKID, returning the
// plaintext and the sender kid asserted in "skid".
func Unpack(
	ctx context.Context,
	serialized string,
	recipientKID string,
	didResolver didcomm.DIDResolver,
	secretsResolver didcomm.SecretsResolver,
) ([]byte, string, error) {
	jwe, err := jose.Deserialize(serialized)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "parsing authcrypt envelope")
	}

	alg, _ := jwe.ProtectedHeaders.Algorithm()
	if alg != keyWrapAlg {
		return nil, "", didcommerr.New(didcommerr.Unsupported, fmt.Sprintf("unsupported authcrypt alg %q", alg), nil)
	}

	enc, _ := jwe.ProtectedHeaders.Encryption()

	senderKID, ok := jwe.ProtectedHeaders.SenderKeyID()
	if !ok {
		return nil, "", didcommerr.New(didcommerr.Malformed, "authcrypt envelope missing skid header", nil)
	}

	var encryptedKey string

	for _, r := range jwe.Recipients {
		if r.Header.KID == recipientKID {
			encryptedKey = r.EncryptedKey
			break
		}
	}

	if encryptedKey == "" {
		return nil, "", didcommerr.New(didcommerr.DIDUrlNotFound,
			fmt.Sprintf("recipient kid %s not found among envelope recipients", recipientKID), nil)
	}

	recipientSecret, err := secretsResolver.GetSecret(ctx, recipientKID)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.SecretNotFound, err, "resolving recipient secret %s", recipientKID)
	}

	if recipientSecret == nil {
		return nil, "", didcommerr.New(didcommerr.SecretNotFound, fmt.Sprintf("no secret for kid %s", recipientKID), nil)
	}

	recipientKeyType, recipientPrivRaw, err := keymaterial.SecretKey(recipientSecret)
	if err != nil {
		return nil, "", err
	}

	recipientPriv, err := jwecrypto.PrivateKeyFromRaw(recipientKeyType, recipientPrivRaw)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "parsing recipient private key")
	}

	epkRaw, ok := jwe.ProtectedHeaders[jose.HeaderEPK]
	if !ok {
		return nil, "", didcommerr.New(didcommerr.Malformed, "authcrypt envelope missing epk header", nil)
	}

	epkPub, _, err := keymaterial.EPKPublicKey(epkRaw)
	if err != nil {
		return nil, "", err
	}

	ze, err := jwecrypto.ECDH(recipientPriv, epkPub)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, err, "ephemeral-static agreement")
	}

	senderKey, err := resolver.Resolve(ctx, senderKID, didResolver)
	if err != nil {
		return nil, "", err
	}

	senderPub, err := jwecrypto.PublicKeyFromRaw(senderKey.KeyType, senderKey.Raw)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "parsing sender public key")
	}

	zs, err := jwecrypto.ECDH(recipientPriv, senderPub)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.NoCompatibleCrypto, err, "static-static agreement")
	}

	apuB64, err := jwe.ProtectedHeaders.RequireString(jose.HeaderAPU)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "authcrypt envelope missing apu")
	}

	apu, err := jwecrypto.DecodeHeader(apuB64)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "decoding apu")
	}

	apvB64, err := jwe.ProtectedHeaders.RequireString(jose.HeaderAPV)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "authcrypt envelope missing apv")
	}

	apv, err := jwecrypto.DecodeHeader(apvB64)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "decoding apv")
	}

	kek := jwecrypto.DeriveECDH1PU(alg, ze, zs, apu, apv, kekLenBits)

	wrapped, err := jwecrypto.DecodeHeader(encryptedKey)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "decoding encrypted key")
	}

	cek, err := jwecrypto.UnwrapCEK(kek, wrapped)
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "unwrapping content encryption key")
	}

	aadB64, err := jwe.ProtectedHeaderB64()
	if err != nil {
		return nil, "", fmt.Errorf("computing aad: %w", err)
	}

	plaintext, err := jwecrypto.Open(enc, cek, []byte(jwe.IV), []byte(jwe.Ciphertext), []byte(jwe.Tag), []byte(aadB64))
	if err != nil {
		return nil, "", didcommerr.Wrapf(didcommerr.Malformed, err, "decrypting content")
	}

	return plaintext, senderKID, nil
}

