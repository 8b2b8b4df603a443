/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/base64"
	"encoding/json"
	"errors"
)

// JSONWebEncryption represents the general-JSON JWE serialization DIDComm v2 uses, trimmed to
// the members DIDComm v2 envelopes carry: it has no per-message "unprotected" header and no
// top-level "aad" (https://tools.ietf.org/html/rfc7516).
type JSONWebEncryption struct {
	ProtectedHeaders Headers
	Recipients       []Recipient
	IV               string
	Ciphertext       string
	Tag              string

	// rawProtected caches the exact base64url protected-header bytes this JWE was parsed
	// from or last serialized with: the correct additional authenticated data for content
	// decryption, since re-marshaling parsed headers is not guaranteed byte-identical to the
	// bytes the sender actually authenticated.
	rawProtected string
}

// ProtectedHeaderB64 returns the base64url (no padding) encoded protected header.
func (e *JSONWebEncryption) ProtectedHeaderB64() (string, error) {
	if e.rawProtected != "" {
		return e.rawProtected, nil
	}

	if e.ProtectedHeaders == nil {
		return "", nil
	}

	headerJSON, err := json.Marshal(e.ProtectedHeaders)
	if err != nil {
		return "", err
	}

	e.rawProtected = base64.RawURLEncoding.EncodeToString(headerJSON)

	return e.rawProtected, nil
}

// Recipient is a recipient of a JWE including the shared encryption key
type Recipient struct {
	EncryptedKey string           `json:"encrypted_key,omitempty"`
	Header       RecipientHeaders `json:"header,omitempty"`
}

// RecipientHeaders are the per-recipient JWE headers. DIDComm v2 never varies the key-wrap
// algorithm, ephemeral key or any other per-recipient parameter, so the only field a recipient
// ever carries is its own "kid".
type RecipientHeaders struct {
	KID string `json:"kid,omitempty"`
}

// rawJSONWebEncryption represents a RAW JWE that is used for serialization/deserialization.
type rawJSONWebEncryption struct {
	ProtectedHeaders string          `json:"protected,omitempty"`
	Recipients       json.RawMessage `json:"recipients,omitempty"`
	IV               string          `json:"iv,omitempty"`
	Ciphertext       string          `json:"ciphertext,omitempty"`
	Tag              string          `json:"tag,omitempty"`
}

var errEmptyCiphertext = errors.New("ciphertext cannot be empty")

type marshalFunc func(interface{}) ([]byte, error)

// Serialize serializes the given JWE into JSON as defined in https://tools.ietf.org/html/rfc7516#section-7.2.
func (e *JSONWebEncryption) Serialize(marshal marshalFunc) (string, error) {
	b64ProtectedHeaders, err := e.prepareHeaders(marshal)
	if err != nil {
		return "", err
	}

	var recipientsJSON json.RawMessage
	if e.Recipients == nil {
		// The spec requires that the "recipients" must always be an array and be present,
		// even if some or all of the array values are the empty JSON object "{}".
		recipientsJSON = json.RawMessage("[{}]")
	} else {
		nonEmptyRecipientsJSON, errMarshal := marshal(e.Recipients)
		if errMarshal != nil {
			return "", errMarshal
		}

		recipientsJSON = nonEmptyRecipientsJSON
	}

	b64IV := base64.RawURLEncoding.EncodeToString([]byte(e.IV))

	if e.Ciphertext == "" {
		return "", errEmptyCiphertext
	}

	b64Ciphertext := base64.RawURLEncoding.EncodeToString([]byte(e.Ciphertext))

	b64Tag := base64.RawURLEncoding.EncodeToString([]byte(e.Tag))

	preparedJWE := rawJSONWebEncryption{
		ProtectedHeaders: b64ProtectedHeaders,
		Recipients:       recipientsJSON,
		IV:               b64IV,
		Ciphertext:       b64Ciphertext,
		Tag:              b64Tag,
	}

	serializedJWE, err := marshal(preparedJWE)
	if err != nil {
		return "", err
	}

	return string(serializedJWE), nil
}

func (e *JSONWebEncryption) prepareHeaders(marshal marshalFunc) (string, error) {
	var b64ProtectedHeaders string

	if e.ProtectedHeaders != nil {
		protectedHeadersJSON, err := marshal(e.ProtectedHeaders)
		if err != nil {
			return "", err
		}

		b64ProtectedHeaders = base64.RawURLEncoding.EncodeToString(protectedHeadersJSON)
		e.rawProtected = b64ProtectedHeaders
	}

	return b64ProtectedHeaders, nil
}
