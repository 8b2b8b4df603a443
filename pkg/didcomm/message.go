/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package didcomm defines the core DIDComm v2 domain types shared across the
// pack/unpack pipeline: the plaintext message model, and the DID/secrets
// resolver capability interfaces a caller supplies.
package didcomm

import (
	utiljson "github.com/hyperledger/aries-didcomm-go/pkg/doc/util/json"
)

// Message is a DIDComm v2 plaintext (JWM) message.
type Message struct {
	ID             string                 `json:"id"`
	Typ            string                 `json:"typ,omitempty"`
	Type           string                 `json:"type"`
	Body           map[string]interface{} `json:"body"`
	From           string                 `json:"from,omitempty"`
	To             []string               `json:"to,omitempty"`
	ThreadID       string                 `json:"thid,omitempty"`
	ParentThreadID string                 `json:"pthid,omitempty"`
	CreatedTime    *int64                 `json:"created_time,omitempty"`
	ExpiresTime    *int64                 `json:"expires_time,omitempty"`
	FromPrior      string                 `json:"from_prior,omitempty"`
	Attachments    []Attachment           `json:"attachments,omitempty"`

	// Additional carries any other top-level headers the caller set, so unknown fields
	// round-trip instead of being silently dropped.
	Additional map[string]interface{} `json:"-"`
}

// Attachment is a DIDComm v2 attachment descriptor.
type Attachment struct {
	ID          string                 `json:"id,omitempty"`
	Description string                 `json:"description,omitempty"`
	MediaType   string                 `json:"media_type,omitempty"`
	Filename    string                 `json:"filename,omitempty"`
	LastModTime *int64                 `json:"lastmod_time,omitempty"`
	ByteCount   *int64                 `json:"byte_count,omitempty"`
	Data        AttachmentData         `json:"data"`
}

// AttachmentData carries exactly one of the three attachment data encodings
// (base64, JSON, or links) plus an optional detached JWS over the payload.
type AttachmentData struct {
	Base64 string                 `json:"base64,omitempty"`
	JSON   map[string]interface{} `json:"json,omitempty"`
	Links  []string               `json:"links,omitempty"`
	Hash   string                 `json:"hash,omitempty"`
	JWS    map[string]interface{} `json:"jws,omitempty"`
}

// MarshalJSON merges Additional into the top-level object alongside the named fields.
func (m *Message) MarshalJSON() ([]byte, error) {
	type alias Message

	return utiljson.MarshalWithCustomFields((*alias)(m), m.Additional)
}

// UnmarshalJSON populates the named fields and stashes everything else in Additional.
func (m *Message) UnmarshalJSON(data []byte) error {
	type alias Message

	m.Additional = make(map[string]interface{})

	return utiljson.UnmarshalWithCustomFields(data, (*alias)(m), m.Additional)
}
