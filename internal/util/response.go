package util

import (
	"errors"
	"net/http"

	"berdoz-admin/internal/store"

	"github.com/gin-gonic/gin"
)

// 通用返回结构里的 data 使用 map
type Response map[string]interface{}

// 业务错误码
const (
	CodeOK           = 0
	CodeInvalidParam = 40001
	CodeAuth         = 40101
	CodeForbidden    = 40301
	CodeNotFound     = 40401
	CodeConflict     = 40901
	CodeServerErr    = 50001
)

// Success 统一成功返回
func Success(c *gin.Context, data Response) {
	c.JSON(http.StatusOK, gin.H{
		"code": CodeOK,
		"data": data,
	})
}

// Error 统一错误返回
func Error(c *gin.Context, httpStatus int, code int, msg string) {
	c.AbortWithStatusJSON(httpStatus, gin.H{
		"code":    code,
		"message": msg,
	})
}

// StoreError 把存储层错误映射成响应，其余错误记入 c.Errors 由请求日志输出
func StoreError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		Error(c, http.StatusNotFound, CodeNotFound, what+" not found")
	case errors.Is(err, store.ErrConflict):
		Error(c, http.StatusConflict, CodeConflict, what+" was changed by someone else, reload and try again")
	default:
		_ = c.Error(err)
		Error(c, http.StatusInternalServerError, CodeServerErr, "failed to access "+what)
	}
}
