package callbacks

import (
	"errors"

	"github.com/Freeeeeet/gatekeeper_bot/internal/messages"
)

var (
	ErrInvalidFormat    = errors.New("invalid callback format")
	ErrInvalidRequestID = errors.New("invalid request id")
	ErrUnknownAction    = errors.New("unknown action")
	ErrNoMessage        = errors.New("no message in callback")
)

// errorKey ключ сообщения для ошибки разбора callback
func errorKey(err error) string {
	switch {
	case errors.Is(err, ErrInvalidFormat), errors.Is(err, ErrNoMessage):
		return messages.InvalidCallback
	case errors.Is(err, ErrUnknownAction):
		return messages.UnknownAction
	default:
		return messages.CallbackError
	}
}
