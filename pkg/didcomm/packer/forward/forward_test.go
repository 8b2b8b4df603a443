/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package forward_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm"
	"github.com/hyperledger/aries-didcomm-go/pkg/didcomm/packer/forward"
)

func TestWrapUnwrapRoundTrip(t *testing.T) {
	envelope := []byte(`{"ciphertext":"abc","protected":"xyz"}`)

	msg, err := forward.Wrap("did:example:mediator#key-1", "did:example:bob", envelope)
	require.NoError(t, err)
	require.Equal(t, []string{"did:example:mediator#key-1"}, msg.To)
	require.Equal(t, "did:example:bob", msg.Body["next"])
	require.Len(t, msg.Attachments, 1)

	isForward, next, inner, err := forward.Unwrap(msg)
	require.NoError(t, err)
	require.True(t, isForward)
	require.Equal(t, "did:example:bob", next)

	var innerJSON, originalJSON map[string]interface{}
	require.NoError(t, json.Unmarshal(inner, &innerJSON))
	require.NoError(t, json.Unmarshal(envelope, &originalJSON))
	require.Equal(t, originalJSON, innerJSON)
}

func TestWrap_RequiresMediatorAndNext(t *testing.T) {
	_, err := forward.Wrap("", "did:example:bob", []byte(`{}`))
	require.Error(t, err)

	_, err = forward.Wrap("did:example:mediator#key-1", "", []byte(`{}`))
	require.Error(t, err)
}

func TestWrap_RejectsNonJSONEnvelope(t *testing.T) {
	_, err := forward.Wrap("did:example:mediator#key-1", "did:example:bob", []byte("not json"))
	require.Error(t, err)
}

func TestUnwrap_NotAForwardMessage(t *testing.T) {
	msg := &didcomm.Message{Type: "https://example.org/protocols/hello/1.0/greeting"}

	isForward, _, _, err := forward.Unwrap(msg)
	require.NoError(t, err)
	require.False(t, isForward)
}

func TestUnwrap_MissingNext(t *testing.T) {
	msg := &didcomm.Message{
		Type: "https://didcomm.org/routing/2.0/forward",
		Body: map[string]interface{}{},
	}

	_, _, _, err := forward.Unwrap(msg)
	require.Error(t, err)
}
