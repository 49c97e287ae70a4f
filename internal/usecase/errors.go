package usecase

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	CodeInvalid   ErrorCode = "invalid"
	CodeNotFound  ErrorCode = "not_found"
	CodeForbidden ErrorCode = "forbidden"
	CodeInactive  ErrorCode = "inactive"
	CodeEmptyCart ErrorCode = "empty_cart"
	CodeInternal  ErrorCode = "internal"
)

// usecase が返すエラー（ルーターがユーザー向け文言に変換する）
type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error { return e.Err }

func NewAppError(code ErrorCode, message string) error {
	return &AppError{Code: code, Message: message}
}

// DBエラーなどを包む
func internalError(message string, err error) error {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}

func AsAppError(err error) (*AppError, bool) {
	var ae *AppError
	ok := errors.As(err, &ae)
	return ae, ok
}

// エラーコードの判定（AppError 以外は internal 扱い）
func CodeOf(err error) ErrorCode {
	if err == nil {
		return ""
	}
	if ae, ok := AsAppError(err); ok {
		return ae.Code
	}
	return CodeInternal
}
