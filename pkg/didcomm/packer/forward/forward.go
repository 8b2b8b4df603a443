/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Package forward builds and unwraps DIDComm v2 mediator forward messages: a plaintext JWM
// of type forwardMsgTypeV2 whose body names the next recipient and whose single attachment
// carries an already-packed envelope addressed to that recipient, for a mediator to route on
// without being able to read the envelope it is carrying.
package forward

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/didcommerr"
)

// forwardMsgTypeV2 is the DIDComm v2 forward message type URI.
const forwardMsgTypeV2 = "https://didcomm.org/routing/2.0/forward"

// attachmentMediaType is the media type a wrapped envelope's attachment carries: the forwarded
// envelope is itself a DIDComm v2 encrypted JWE, so its attachment is tagged accordingly.
const attachmentMediaType = "application/didcomm-encrypted+json"

// Wrap builds a forward message addressed to mediatorTo, instructing the mediator to deliver
// the already-packed envelope (packedEnvelope, a serialized JWE) on to next.
func Wrap(mediatorTo, next string, packedEnvelope []byte) (*didcomm.Message, error) {
	if mediatorTo == "" {
		return nil, didcommerr.New(didcommerr.IllegalArgument, "forward wrap requires a mediator recipient", nil)
	}

	if next == "" {
		return nil, didcommerr.New(didcommerr.IllegalArgument, "forward wrap requires a next recipient", nil)
	}

	var envelopeJSON map[string]interface{}
	if err := json.Unmarshal(packedEnvelope, &envelopeJSON); err != nil {
		return nil, didcommerr.Wrapf(didcommerr.Malformed, err, "forwarded envelope is not valid JSON")
	}

	return &didcomm.Message{
		ID:   uuid.NewString(),
		Type: forwardMsgTypeV2,
		To:   []string{mediatorTo},
		Body: map[string]interface{}{"next": next},
		Attachments: []didcomm.Attachment{
			{
				ID:        uuid.NewString(),
				MediaType: attachmentMediaType,
				Data:      didcomm.AttachmentData{JSON: envelopeJSON},
			},
		},
	}, nil
}

// Unwrap extracts the next recipient and the nested envelope JSON from a forward message. It
// returns (false, nil) if msg is not a forward message, so callers can fall through to treating
// the message as an ordinary plaintext payload.
func Unwrap(msg *didcomm.Message) (isForward bool, next string, envelope []byte, err error) {
	if msg.Type != forwardMsgTypeV2 {
		return false, "", nil, nil
	}

	nextVal, ok := msg.Body["next"]
	if !ok {
		return true, "", nil, didcommerr.New(didcommerr.Malformed, "forward message missing body.next", nil)
	}

	next, ok = nextVal.(string)
	if !ok {
		return true, "", nil, didcommerr.New(didcommerr.Malformed, "forward message body.next is not a string", nil)
	}

	if len(msg.Attachments) != 1 {
		return true, "", nil, didcommerr.New(didcommerr.Malformed,
			"forward message must carry exactly one attachment", nil)
	}

	attachmentData := msg.Attachments[0].Data
	if attachmentData.JSON == nil {
		return true, "", nil, didcommerr.New(didcommerr.Malformed,
			"forward message attachment must carry the nested envelope as inline JSON", nil)
	}

	envelope, err = json.Marshal(attachmentData.JSON)
	if err != nil {
		return true, "", nil, didcommerr.Wrapf(didcommerr.Malformed, err, "re-marshalling nested envelope")
	}

	return true, next, envelope, nil
}
