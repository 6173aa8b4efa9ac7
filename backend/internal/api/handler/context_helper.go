package handler

import (
	"mime/multipart"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"campus-events/backend/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	s := c.GetString("user_id")
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetRole 从 Gin 上下文中安全提取 role。
func MustGetRole(c *gin.Context) (string, bool) {
	s := c.GetString("role")
	if s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 同时提取 user_id 与 role
func MustGetCaller(c *gin.Context) (string, string, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return "", "", false
	}
	role, ok := MustGetRole(c)
	if !ok {
		return "", "", false
	}
	return userID, role, true
}

// viewer 可选认证路由上的访问者，匿名时均为空串
func viewer(c *gin.Context) (string, string) {
	return c.GetString("user_id"), c.GetString("role")
}

// tokenMeta 当前 Access Token 的 jti 与过期时间
func tokenMeta(c *gin.Context) (string, time.Time) {
	exp, _ := c.Get("token_exp")
	t, _ := exp.(time.Time)
	return c.GetString("jti"), t
}

// pathID 读取 UUID 路径参数，格式不合法时按资源不存在处理
func pathID(c *gin.Context, name string, notFound error) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		respondError(c, notFound)
		return "", false
	}
	return id, true
}

// formFile 读取 multipart 上传字段，调用方负责关闭返回的文件
func formFile(c *gin.Context, field string) (multipart.File, string, bool) {
	fh, err := c.FormFile(field)
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件: "+field)
		return nil, "", false
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, 10001, "无法读取上传文件")
		return nil, "", false
	}
	return f, fh.Filename, true
}
