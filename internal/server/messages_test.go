package server

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrDeniedCodes(t *testing.T) {
	tcases := []struct {
		name string
		err  error
		code int
	}{
		{name: "not friends", err: ErrNotFriends, code: http.StatusForbidden},
		{name: "not a member", err: ErrNotAMember, code: http.StatusForbidden},
		{name: "post not owned by recipient", err: ErrPostNotOwnedByRecipient, code: http.StatusForbidden},
		{name: "not authorized to mark read", err: ErrNotAuthorizedToMarkRead, code: http.StatusForbidden},
		{name: "invalid recipient", err: ErrInvalidRecipient, code: http.StatusNotFound},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			msg := ErrDenied(5, tc.err)
			assert.Equal(t, tc.code, msg.Response.ResponseCode)
			assert.Equal(t, tc.err.Error(), msg.Response.Error)
			assert.Equal(t, 5, msg.Id, "expected the client message id to be echoed")
		})
	}
}

func TestErrPersistenceFailure(t *testing.T) {
	msg := ErrPersistenceFailure(9)
	assert.Equal(t, http.StatusServiceUnavailable, msg.Response.ResponseCode)
	assert.Equal(t, "persistence failure, retry", msg.Response.Error)
}

func TestErrInvalidMessage(t *testing.T) {
	msg := ErrInvalidMessage(-1)
	assert.Equal(t, 0, msg.Id, "expected unusable client id to be dropped")
	assert.Equal(t, http.StatusBadRequest, msg.Response.ResponseCode)

	msg = ErrInvalidMessage(4)
	assert.Equal(t, 4, msg.Id)
}

func TestClientMessageParsing(t *testing.T) {
	raw := `{"id":1,"publish":{"peer_id":2,"content":"hi","kind":"text","post_id":7}}`

	var msg ClientMessage
	assert.NoError(t, json.Unmarshal([]byte(raw), &msg))
	assert.NotNil(t, msg.Publish)
	assert.Nil(t, msg.Typing)
	assert.Equal(t, 2, msg.Publish.PeerId)
	assert.Equal(t, 7, msg.Publish.PostId)
}
