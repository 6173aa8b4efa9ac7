package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	pkgerrors "campus-events/backend/pkg/errors"
	"campus-events/backend/pkg/response"
)

// kindStatus 业务错误分类 → HTTP 状态码
var kindStatus = map[pkgerrors.Kind]int{
	pkgerrors.KindValidation:   http.StatusBadRequest,
	pkgerrors.KindUnauthorized: http.StatusUnauthorized,
	pkgerrors.KindForbidden:    http.StatusForbidden,
	pkgerrors.KindNotFound:     http.StatusNotFound,
	pkgerrors.KindConflict:     http.StatusConflict,
	pkgerrors.KindPrecondition: http.StatusPreconditionFailed,
}

// respondError 将 Service 返回的错误写为统一响应
// 非业务错误一律返回 500，细节只进日志
func respondError(c *gin.Context, err error) {
	ae, ok := pkgerrors.As(err)
	if !ok {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	status, ok := kindStatus[ae.Kind]
	if !ok {
		_ = c.Error(err)
		response.InternalError(c)
		return
	}

	if detail := pkgerrors.Detail(err); detail != "" {
		response.ErrorWithDetails(c, status, ae.Code, ae.Message, detail)
		return
	}
	response.Error(c, status, ae.Code, ae.Message)
}

// bindError 请求参数绑定失败
func bindError(c *gin.Context, err error) {
	response.ErrorWithDetails(c, http.StatusBadRequest, 10001, "参数校验失败", err.Error())
}
