package errors

import (
	"errors"
	"fmt"
)

// Kind 业务错误分类，决定 HTTP 状态码
type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	KindPrecondition
)

// String 返回分类名称（用于日志）
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_failed"
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindPrecondition:
		return "precondition_failed"
	default:
		return "internal"
	}
}

// AppError 携带业务码与提示信息的错误
// 作为哨兵值使用，比较时用 errors.Is
type AppError struct {
	Kind    Kind
	Code    int
	Message string
}

func (e *AppError) Error() string {
	return e.Message
}

// New 创建业务错误
func New(kind Kind, code int, message string) *AppError {
	return &AppError{Kind: kind, Code: code, Message: message}
}

// Validation 带字段信息的校验错误，Unwrap 到对应的哨兵
type Validation struct {
	Base   *AppError
	Detail string
}

func (e *Validation) Error() string {
	return fmt.Sprintf("%s: %s", e.Base.Message, e.Detail)
}

func (e *Validation) Unwrap() error {
	return e.Base
}

// WithDetail 为哨兵错误附加细节
func WithDetail(base *AppError, detail string) error {
	return &Validation{Base: base, Detail: detail}
}

// As 提取错误链上的 AppError
func As(err error) (*AppError, bool) {
	var ae *AppError
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// Detail 提取附加细节（没有则为空）
func Detail(err error) string {
	var v *Validation
	if errors.As(err, &v) {
		return v.Detail
	}
	return ""
}

// ErrOptimisticLock 乐观锁冲突：记录已被其他操作修改
var ErrOptimisticLock = New(KindConflict, 10009, "数据已被其他操作修改，请刷新后重试")
