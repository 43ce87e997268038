package model

import "errors"

// TransitionErrorCode классифицирует отказ в переходе
type TransitionErrorCode string

const (
	ErrCodeInvalidState     TransitionErrorCode = "invalid_state"
	ErrCodeValidationFailed TransitionErrorCode = "validation_failed"
	ErrCodeAlreadyProcessed TransitionErrorCode = "already_processed"
)

// TransitionError результат неуспешного перехода автомата
type TransitionError struct {
	Code    TransitionErrorCode
	Message string
	Cause   error
}

func (e *TransitionError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *TransitionError) Unwrap() error {
	return e.Cause
}

func invalidState(message string) error {
	return &TransitionError{Code: ErrCodeInvalidState, Message: message}
}

func validationFailed(cause error) error {
	return &TransitionError{Code: ErrCodeValidationFailed, Message: "validation failed", Cause: cause}
}

func alreadyProcessed() error {
	return &TransitionError{Code: ErrCodeAlreadyProcessed, Message: "request has already been processed"}
}

// IsTransitionError проверяет код ошибки перехода
func IsTransitionError(err error, code TransitionErrorCode) bool {
	var te *TransitionError
	if errors.As(err, &te) {
		return te.Code == code
	}
	return false
}

// AsValidationError извлекает ошибку валидации, если она есть
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}
