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

// JSONWebSignature represents a JWS as defined in https://tools.ietf.org/html/rfc7515.
type JSONWebSignature struct {
	Payload    []byte
	Signatures []Signature
}

// Signature is one signature over a JWS payload: its protected (integrity-covered) headers,
// optional unprotected per-signature headers, and the raw signature bytes.
type Signature struct {
	ProtectedHeaders   Headers
	UnprotectedHeaders Headers
	Signature          []byte
}

type rawJWS struct {
	Payload    string          `json:"payload"`
	Signatures []rawSignature  `json:"signatures,omitempty"`
	Protected  string          `json:"protected,omitempty"`
	Header     json.RawMessage `json:"header,omitempty"`
	SignatureB string          `json:"signature,omitempty"`
}

type rawSignature struct {
	Protected string          `json:"protected,omitempty"`
	Header    json.RawMessage `json:"header,omitempty"`
	Signature string          `json:"signature"`
}

// SigningInput returns the bytes each signature is computed over, using that signature's own
// protected headers: BASE64URL(protected header) || "." || BASE64URL(payload).
func (j *JSONWebSignature) SigningInput(protected Headers) ([]byte, error) {
	var b64Header string

	if protected != nil {
		headerJSON, err := json.Marshal(protected)
		if err != nil {
			return nil, fmt.Errorf("marshalling protected headers: %w", err)
		}

		b64Header = base64.RawURLEncoding.EncodeToString(headerJSON)
	}

	b64Payload := base64.RawURLEncoding.EncodeToString(j.Payload)

	return []byte(b64Header + "." + b64Payload), nil
}

// Serialize renders the JWS using general-JSON serialization (RFC 7515 section 7.2.1).
func (j *JSONWebSignature) Serialize() (string, error) {
	raw := rawJWS{Payload: base64.RawURLEncoding.EncodeToString(j.Payload)}

	for _, sig := range j.Signatures {
		rs, err := toRawSignature(sig)
		if err != nil {
			return "", err
		}

		raw.Signatures = append(raw.Signatures, rs)
	}

	out, err := json.Marshal(raw)
	if err != nil {
		return "", fmt.Errorf("marshalling JWS: %w", err)
	}

	return string(out), nil
}

// SerializeCompact renders a single-signature JWS using compact serialization. Fails if the
// JWS has more or fewer than one signature, or if that signature carries unprotected headers
// (compact serialization has no room for them).
func (j *JSONWebSignature) SerializeCompact() (string, error) {
	if len(j.Signatures) != 1 {
		return "", fmt.Errorf("compact JWS serialization requires exactly one signature, got %d", len(j.Signatures))
	}

	sig := j.Signatures[0]
	if len(sig.UnprotectedHeaders) > 0 {
		return "", fmt.Errorf("compact JWS serialization cannot carry unprotected headers")
	}

	headerJSON, err := json.Marshal(sig.ProtectedHeaders)
	if err != nil {
		return "", fmt.Errorf("marshalling protected headers: %w", err)
	}

	return strings.Join([]string{
		base64.RawURLEncoding.EncodeToString(headerJSON),
		base64.RawURLEncoding.EncodeToString(j.Payload),
		base64.RawURLEncoding.EncodeToString(sig.Signature),
	}, "."), nil
}

func toRawSignature(sig Signature) (rawSignature, error) {
	headerJSON, err := json.Marshal(sig.ProtectedHeaders)
	if err != nil {
		return rawSignature{}, fmt.Errorf("marshalling protected headers: %w", err)
	}

	rs := rawSignature{
		Protected: base64.RawURLEncoding.EncodeToString(headerJSON),
		Signature: base64.RawURLEncoding.EncodeToString(sig.Signature),
	}

	if len(sig.UnprotectedHeaders) > 0 {
		unprotectedJSON, err := json.Marshal(sig.UnprotectedHeaders)
		if err != nil {
			return rawSignature{}, fmt.Errorf("marshalling unprotected headers: %w", err)
		}

		rs.Header = unprotectedJSON
	}

	return rs, nil
}

// ParseJWS parses either general-JSON or compact JWS serialization.
func ParseJWS(serialized string) (*JSONWebSignature, error) {
	trimmed := strings.TrimSpace(serialized)
	if strings.HasPrefix(trimmed, "{") {
		return parseGeneralJWS(trimmed)
	}

	return parseCompactJWS(trimmed)
}

func parseGeneralJWS(serialized string) (*JSONWebSignature, error) {
	var raw rawJWS

	if err := json.Unmarshal([]byte(serialized), &raw); err != nil {
		return nil, fmt.Errorf("parsing JWS JSON: %w", err)
	}

	payload, err := base64.RawURLEncoding.DecodeString(raw.Payload)
	if err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	jws := &JSONWebSignature{Payload: payload}

	rawSigs := raw.Signatures
	if len(rawSigs) == 0 && raw.SignatureB != "" {
		// flattened single-signature JSON form.
		rawSigs = []rawSignature{{Protected: raw.Protected, Header: raw.Header, Signature: raw.SignatureB}}
	}

	for _, rs := range rawSigs {
		sig, err := fromRawSignature(rs)
		if err != nil {
			return nil, err
		}

		jws.Signatures = append(jws.Signatures, sig)
	}

	return jws, nil
}

func parseCompactJWS(serialized string) (*JSONWebSignature, error) {
	parts := strings.Split(serialized, ".")
	if len(parts) != 3 { //nolint:gomnd
		return nil, fmt.Errorf("compact JWS must have 3 parts, got %d", len(parts))
	}

	payload, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}

	sig, err := fromRawSignature(rawSignature{Protected: parts[0], Signature: parts[2]})
	if err != nil {
		return nil, err
	}

	return &JSONWebSignature{Payload: payload, Signatures: []Signature{sig}}, nil
}

func fromRawSignature(rs rawSignature) (Signature, error) {
	var sig Signature

	if rs.Protected != "" {
		headerBytes, err := base64.RawURLEncoding.DecodeString(rs.Protected)
		if err != nil {
			return Signature{}, fmt.Errorf("decoding protected headers: %w", err)
		}

		if err := json.Unmarshal(headerBytes, &sig.ProtectedHeaders); err != nil {
			return Signature{}, fmt.Errorf("parsing protected headers: %w", err)
		}
	}

	if len(rs.Header) > 0 {
		if err := json.Unmarshal(rs.Header, &sig.UnprotectedHeaders); err != nil {
			return Signature{}, fmt.Errorf("parsing unprotected headers: %w", err)
		}
	}

	signatureBytes, err := base64.RawURLEncoding.DecodeString(rs.Signature)
	if err != nil {
		return Signature{}, fmt.Errorf("decoding signature: %w", err)
	}

	sig.Signature = signatureBytes

	return sig, nil
}
