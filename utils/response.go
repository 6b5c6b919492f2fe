package utils

import (
	"net/http"

	"manualctf/errs"
	"manualctf/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Response struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, msg string, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: int(errs.OK), Msg: msg, Data: data})
}

// Error 业务错误统一返回 200 + code，与前端约定一致
func Error(c *gin.Context, code errs.Code, msg string) {
	if msg == "" {
		msg = code.Message()
	}
	c.JSON(http.StatusOK, Response{Code: int(code), Msg: msg})
}

// Fail 根据错误码写出对应的 HTTP 状态，服务端错误额外记录日志
func Fail(c *gin.Context, err error) {
	code := errs.CodeOf(err)
	status := code.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "request failed",
			zap.Int("code", int(code)),
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		msg = code.Message()
	}
	c.AbortWithStatusJSON(status, Response{Code: int(code), Msg: msg})
}
