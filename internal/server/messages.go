package server

import (
	"net/http"
	"time"

	"github.com/agrolink/chat-service/internal/types"
)

const (
	MessageKindText    = "text"
	MessageKindImage   = "image"
	MessageKindFile    = "file"
	MessageKindVoice   = "voice"
	MessageKindBargain = "bargain"
)

var messageKinds = map[string]struct{}{
	MessageKindText:    {},
	MessageKindImage:   {},
	MessageKindFile:    {},
	MessageKindVoice:   {},
	MessageKindBargain: {},
}

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Publish *Publish `json:"publish,omitempty"`
	Typing  *Typing  `json:"typing,omitempty"`
	Read    *Read    `json:"read,omitempty"`
	UserId  int      `json:"-"`
	client  *Client
}

type Publish struct {
	PeerId     int               `json:"peer_id,omitempty"`
	GroupId    int               `json:"group_id,omitempty"`
	Content    string            `json:"content"`
	Kind       string            `json:"kind"`
	Attachment *types.Attachment `json:"attachment,omitempty"`
	PostId     int               `json:"post_id,omitempty"`
}

type Typing struct {
	PeerId  int  `json:"peer_id,omitempty"`
	GroupId int  `json:"group_id,omitempty"`
	Started bool `json:"started"`
}

type Read struct {
	PeerId     int   `json:"peer_id,omitempty"`
	GroupId    int   `json:"group_id,omitempty"`
	MessageIds []int `json:"message_ids"`
}

type ServerMessage struct {
	BaseMessage
	Response     *Response      `json:"response,omitempty"`
	Message      *types.Message `json:"message,omitempty"`
	Notification *Notification  `json:"notification,omitempty"`
	SkipClient   *Client        `json:"-"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

type Notification struct {
	Typing      *TypingNotification `json:"typing,omitempty"`
	ReadReceipt *ReadReceipt        `json:"read_receipt,omitempty"`
	Presence    *Presence           `json:"presence,omitempty"`
}

type TypingNotification struct {
	UserId  int  `json:"user_id"`
	PeerId  int  `json:"peer_id,omitempty"`
	GroupId int  `json:"group_id,omitempty"`
	Started bool `json:"started"`
}

type ReadReceipt struct {
	ReaderId   int       `json:"reader_id"`
	PeerId     int       `json:"peer_id,omitempty"`
	GroupId    int       `json:"group_id,omitempty"`
	MessageIds []int     `json:"message_ids"`
	ReadAt     time.Time `json:"read_at"`
}

type Presence struct {
	UserId   int        `json:"user_id"`
	Online   bool       `json:"online"`
	LastSeen *time.Time `json:"last_seen,omitempty"`
}

func NoErrOK(id int, data map[string]any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusOK,
			Data:         data,
		},
	}
}

func ErrValidation(id int, reason string) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        reason,
		},
	}
}

// ErrDenied translates an authorization gate error into a failure
// acknowledgment for the sender.
func ErrDenied(id int, err error) *ServerMessage {
	code := http.StatusForbidden
	if err == ErrInvalidRecipient {
		code = http.StatusNotFound
	}

	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: code,
			Error:        err.Error(),
		},
	}
}

// ErrPersistenceFailure tells the sender storage was unavailable and the
// send may be retried; nothing was persisted or delivered.
func ErrPersistenceFailure(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusServiceUnavailable,
			Error:        "persistence failure, retry",
		},
	}
}

func ErrInternalError(id int) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusInternalServerError,
			Error:        "internal server error",
		},
	}
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: http.StatusBadRequest,
			Error:        "invalid message format",
		},
	}

	if id > 0 {
		msg.Id = id
	}
	return msg
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
