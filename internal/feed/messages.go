package feed

import (
	"net/http"
	"time"

	"github.com/mapleins/community/internal/types"
)

const EventInsert = "INSERT"

type BaseMessage struct {
	Id        int       `json:"id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type ClientMessage struct {
	BaseMessage
	Subscribe   *Subscribe   `json:"subscribe,omitempty"`
	Unsubscribe *Unsubscribe `json:"unsubscribe,omitempty"`
	UserId      string       `json:"-"`
	client      *Client      `json:"-"`
}

type Subscribe struct {
	RoomId string `json:"room_id"`
}

type Unsubscribe struct {
	RoomId string `json:"room_id"`
}

type ServerMessage struct {
	BaseMessage
	Response *Response `json:"response,omitempty"`
	Event    *Event    `json:"event,omitempty"`
}

type Response struct {
	ResponseCode int            `json:"response_code"`
	Error        string         `json:"error,omitempty"`
	Data         map[string]any `json:"data,omitempty"`
}

// Event is a change on a room's message set.
type Event struct {
	Type    string        `json:"type"`
	RoomId  string        `json:"room_id"`
	Message types.Message `json:"message"`
}

func NoErrOK(id int, data map[string]any) *ServerMessage {
	return response(id, http.StatusOK, "", data)
}

func ErrRoomNotFound(id int) *ServerMessage {
	return response(id, http.StatusNotFound, "room not found", nil)
}

func ErrForbidden(id int) *ServerMessage {
	return response(id, http.StatusForbidden, "not a member of this room", nil)
}

func ErrInternalError(id int) *ServerMessage {
	return response(id, http.StatusInternalServerError, "internal server error", nil)
}

func ErrServiceUnavailable(id int) *ServerMessage {
	return response(id, http.StatusServiceUnavailable, "service unavailable", nil)
}

func ErrInvalidMessage(id int) *ServerMessage {
	msg := response(0, http.StatusBadRequest, "invalid message format", nil)
	if id > 0 {
		msg.Id = id
	}
	return msg
}

func response(id, code int, errText string, data map[string]any) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Id:        id,
			Timestamp: Now(),
		},
		Response: &Response{
			ResponseCode: code,
			Error:        errText,
			Data:         data,
		},
	}
}

func EventMessage(ev Event) *ServerMessage {
	return &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Event: &ev,
	}
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
