package errs

import (
	"errors"
	"fmt"
)

// Error 业务错误码及底层原因
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Code.Message()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New 使用默认提示创建错误
func New(code Code) *Error {
	return &Error{Code: code, Message: code.Message()}
}

// Newf 使用格式化提示创建错误
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap 为 err 附加错误码，已是 *Error 的保留原错误码
func Wrap(err error, code Code) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Code: code, Message: code.Message(), Err: err}
}

// Wrapf 同 Wrap，附带自定义提示
func Wrapf(err error, code Code, format string, args ...interface{}) *Error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf 提取错误码，非 *Error 一律视为 InternalError
func CodeOf(err error) Code {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return InternalError
}

// Is 判断 err 是否携带指定错误码
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
