// Package apperror はアプリケーション全体で使うエラー型と、
// それを HTTP 応答に変換する分類器を提供します。
package apperror

import (
	"errors"
	"net/http"
)

var (
	// ErrTokenMissing は Authorization ヘッダーが無い場合のエラーです。
	ErrTokenMissing = errors.New("missing token")
	// ErrTokenMalformed は署名や形式が不正なトークンのエラーです。
	ErrTokenMalformed = errors.New("invalid token")
	// ErrTokenExpired は有効期限切れのトークンのエラーです。
	ErrTokenExpired = errors.New("expired token")
	// ErrInvalidFormat は値の形式が不正な場合のエラーです。
	ErrInvalidFormat = errors.New("invalid data format")
)

// Error はステータスコードと利用者向けメッセージを宣言したエラーです。
type Error struct {
	Status  int
	Message string
	Err     error
}

// Error はメッセージに原因を連結して返します。
func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap は原因となるエラーを返します。
func (e *Error) Unwrap() error { return e.Err }

// New は宣言済みエラーを作成します。
func New(status int, message string) *Error {
	return &Error{Status: status, Message: message}
}

// Wrap は原因となるエラーを保持した宣言済みエラーを作成します。
func Wrap(status int, message string, err error) *Error {
	return &Error{Status: status, Message: message, Err: err}
}

// NotFound は 404 の宣言済みエラーを作成します。
func NotFound(message string) *Error { return New(http.StatusNotFound, message) }

// Unauthorized は 401 の宣言済みエラーを作成します。
func Unauthorized(message string) *Error { return New(http.StatusUnauthorized, message) }

// Conflict は 409 の宣言済みエラーを作成します。
func Conflict(message string) *Error { return New(http.StatusConflict, message) }

// TooManyRequests は 429 の宣言済みエラーを作成します。
func TooManyRequests(message string) *Error {
	return New(http.StatusTooManyRequests, message)
}

// ValidationError は特定フィールドの入力エラーです。
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Validation は ValidationError を作成します。
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}
