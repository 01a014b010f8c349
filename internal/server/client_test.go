package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/agrolink/chat-service/internal/database"
	"github.com/agrolink/chat-service/internal/testutil"
	"github.com/agrolink/chat-service/internal/types"
)

func TestClientQueueMessage(t *testing.T) {
	c := &Client{
		log:  testutil.TestLogger(t),
		send: make(chan *ServerMessage, 1),
		stop: make(chan struct{}),
	}

	assert.True(t, c.queueMessage(NoErrOK(1, nil)), "expected queueing on an empty channel to succeed")
	assert.False(t, c.queueMessage(NoErrOK(2, nil)), "expected queueing on a full channel to be dropped")

	queued := <-c.send
	assert.Equal(t, 1, queued.Id, "expected the first message to remain queued")
}

func TestClientStopIdempotent(t *testing.T) {
	c := &Client{
		log:  testutil.TestLogger(t),
		send: make(chan *ServerMessage, 1),
		stop: make(chan struct{}),
	}

	c.stopClient()
	assert.NotPanics(t, func() { c.stopClient() }, "expected repeated stop to be a no-op")

	select {
	case <-c.stop:
	default:
		t.Error("expected stop channel to be closed")
	}
}

func Test_serializeMessage(t *testing.T) {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{Id: 3, Timestamp: Now()},
		Message: &types.Message{
			Id:       42,
			SenderId: 1,
			Content:  "hello",
			Kind:     MessageKindText,
		},
	}

	bytes, err := serializeMessage(msg)
	assert.NoError(t, err, "expected message to serialize")

	var decoded map[string]any
	assert.NoError(t, json.Unmarshal(bytes, &decoded))
	assert.Contains(t, decoded, "message")
	assert.NotContains(t, decoded, "response", "expected empty response to be omitted")
	assert.NotContains(t, decoded, "notification", "expected empty notification to be omitted")
}

func TestNewClientUniqueConnIds(t *testing.T) {
	cs := newTestChatServer(t, &database.MockChatRepository{})

	c1 := NewClient(types.User{Id: 1}, nil, cs, testutil.TestLogger(t))
	c2 := NewClient(types.User{Id: 1}, nil, cs, testutil.TestLogger(t))

	assert.NotEmpty(t, c1.connId)
	assert.NotEqual(t, c1.connId, c2.connId, "expected each connection to get its own id")
}
