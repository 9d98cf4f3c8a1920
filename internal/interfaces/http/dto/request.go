// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// PageRequest 分页请求参数
type PageRequest struct {
	Page     int `form:"page" json:"page"`
	PageSize int `form:"page_size" json:"page_size"`
}

// Normalize 规范化分页参数
func (r *PageRequest) Normalize() {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.PageSize < 1 {
		r.PageSize = 20
	}
	if r.PageSize > 100 {
		r.PageSize = 100
	}
}

// Offset 计算偏移量
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.PageSize
}

// Limit 返回限制数
func (r *PageRequest) Limit() int {
	return r.PageSize
}

// BindPage 从 Gin Context 绑定分页参数
func BindPage(c *gin.Context) PageRequest {
	page := parseIntWithDefault(c.Query("page"), 1)
	pageSize := parseIntWithDefault(c.Query("page_size"), 20)

	req := PageRequest{
		Page:     page,
		PageSize: pageSize,
	}
	req.Normalize()
	return req
}

// parseIntWithDefault 解析整数，失败时返回默认值
func parseIntWithDefault(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return v
}

// SessionIDRequest 会话 ID 请求
type SessionIDRequest struct {
	SessionID string `uri:"sid" binding:"required"`
}

// BindSessionID 从 URI 绑定会话 ID
func BindSessionID(c *gin.Context) string {
	return c.Param("sid")
}
