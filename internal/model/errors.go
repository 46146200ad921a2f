package model

import (
	"errors"
	"fmt"
)

// 错误分类：调用方用 errors.Is 判断类别，用 Error.Msg 展示给用户。
var (
	ErrNotFound            = errors.New("not found")
	ErrConstraintViolation = errors.New("constraint violation")
	ErrInsufficientStock   = errors.New("insufficient stock")
	ErrValidation          = errors.New("validation error")
)

// Error carries one of the kinds above plus a message safe to show to users.
// Err keeps the underlying storage error for logs.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func NotFound(entity string, id uint) error {
	return &Error{Kind: ErrNotFound, Msg: fmt.Sprintf("%s %d not found", entity, id)}
}

func Validation(format string, args ...any) error {
	return &Error{Kind: ErrValidation, Msg: fmt.Sprintf(format, args...)}
}

func InsufficientStock(productID uint, available, requested int) error {
	return &Error{
		Kind: ErrInsufficientStock,
		Msg:  fmt.Sprintf("insufficient stock for product %d: available %d, requested %d", productID, available, requested),
	}
}

func Constraint(msg string, cause error) error {
	return &Error{Kind: ErrConstraintViolation, Msg: msg, Err: cause}
}

// UserMessage returns the message of a classified error, or false for
// anything that must not be shown verbatim.
func UserMessage(err error) (string, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Msg, true
	}
	return "", false
}
