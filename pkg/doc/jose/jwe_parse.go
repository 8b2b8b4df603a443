/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package jose

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Deserialize parses either general-JSON or compact JWE serialization into a JSONWebEncryption.
func Deserialize(serialized string) (*JSONWebEncryption, error) {
	trimmed := strings.TrimSpace(serialized)
	if strings.HasPrefix(trimmed, "{") {
		return deserializeGeneral(trimmed)
	}

	return deserializeCompact(trimmed)
}

func deserializeGeneral(serialized string) (*JSONWebEncryption, error) {
	var raw rawJSONWebEncryption

	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		return nil, fmt.Errorf("parsing JWE JSON: %w", err)
	}

	jwe := &JSONWebEncryption{rawProtected: raw.ProtectedHeaders}

	if raw.ProtectedHeaders != "" {
		headerBytes, err := base64.RawURLEncoding.DecodeString(raw.ProtectedHeaders)
		if err != nil {
			return nil, fmt.Errorf("decoding protected headers: %w", err)
		}

		if err := json.Unmarshal(headerBytes, &jwe.ProtectedHeaders); err != nil {
			return nil, fmt.Errorf("parsing protected headers: %w", err)
		}
	}

	if len(raw.Recipients) > 0 {
		var recipients []Recipient
		if err := json.Unmarshal(raw.Recipients, &recipients); err != nil {
			return nil, fmt.Errorf("parsing recipients: %w", err)
		}

		jwe.Recipients = recipients
	}

	var err error

	if jwe.IV, err = decodeB64ToString(raw.IV); err != nil {
		return nil, fmt.Errorf("decoding iv: %w", err)
	}

	if jwe.Ciphertext, err = decodeB64ToString(raw.Ciphertext); err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}

	if jwe.Tag, err = decodeB64ToString(raw.Tag); err != nil {
		return nil, fmt.Errorf("decoding tag: %w", err)
	}

	return jwe, nil
}

func deserializeCompact(serialized string) (*JSONWebEncryption, error) {
	parts := strings.Split(serialized, ".")
	if len(parts) != 5 { //nolint:gomnd
		return nil, fmt.Errorf("compact JWE must have 5 parts, got %d", len(parts))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, fmt.Errorf("decoding protected headers: %w", err)
	}

	jwe := &JSONWebEncryption{rawProtected: parts[0]}
	if err := json.Unmarshal(headerBytes, &jwe.ProtectedHeaders); err != nil {
		return nil, fmt.Errorf("parsing protected headers: %w", err)
	}

	encryptedKey, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decoding encrypted key: %w", err)
	}

	if len(encryptedKey) > 0 {
		jwe.Recipients = []Recipient{{EncryptedKey: base64.RawURLEncoding.EncodeToString(encryptedKey)}}
	}

	if jwe.IV, err = decodeB64ToString(parts[2]); err != nil {
		return nil, fmt.Errorf("decoding iv: %w", err)
	}

	if jwe.Ciphertext, err = decodeB64ToString(parts[3]); err != nil {
		return nil, fmt.Errorf("decoding ciphertext: %w", err)
	}

	if jwe.Tag, err = decodeB64ToString(parts[4]); err != nil {
		return nil, fmt.Errorf("decoding tag: %w", err)
	}

	return jwe, nil
}

func decodeB64ToString(s string) (string, error) {
	if s == "" {
		return "", nil
	}

	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// SerializeCompact renders a single-recipient JWE as compact serialization.
func (e *JSONWebEncryption) SerializeCompact() (string, error) {
	if len(e.Recipients) != 1 {
		return "", fmt.Errorf("compact JWE serialization requires exactly one recipient, got %d", len(e.Recipients))
	}

	headerJSON, err := json.Marshal(e.ProtectedHeaders)
	if err != nil {
		return "", fmt.Errorf("marshalling protected headers: %w", err)
	}

	encryptedKey, err := base64.RawURLEncoding.DecodeString(e.Recipients[0].EncryptedKey)
	if err != nil {
		return "", fmt.Errorf("decoding encrypted key: %w", err)
	}

	return strings.Join([]string{
		base64.RawURLEncoding.EncodeToString(headerJSON),
		base64.RawURLEncoding.EncodeToString(encryptedKey),
		base64.RawURLEncoding.EncodeToString([]byte(e.IV)),
		base64.RawURLEncoding.EncodeToString([]byte(e.Ciphertext)),
		base64.RawURLEncoding.EncodeToString([]byte(e.Tag)),
	}, "."), nil
}
