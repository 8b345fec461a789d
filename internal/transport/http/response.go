package httptransport

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// StatusResponse 提交成功的响应体
type StatusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// MessageResponse 只含一条消息的响应体
type MessageResponse struct {
	Message string `json:"message"`
}

// DetailResponse 错误响应体，detail 为字符串或字段错误列表
type DetailResponse struct {
	Detail interface{} `json:"detail"`
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// Success 提交成功响应（200）
func Success(c *gin.Context) {
	c.JSON(http.StatusOK, StatusResponse{
		Status:  "success",
		Message: MsgSubmitted,
	})
}

// Detail 返回带 detail 字段的错误响应
func Detail(c *gin.Context, status int, detail interface{}) {
	c.AbortWithStatusJSON(status, DetailResponse{Detail: detail})
}

// InternalError 服务器内部错误（500）
func InternalError(c *gin.Context, detail string) {
	Detail(c, http.StatusInternalServerError, detail)
}

// UnprocessableEntity 表单字段校验失败（422）
func UnprocessableEntity(c *gin.Context, errs []FieldError) {
	Detail(c, http.StatusUnprocessableEntity, errs)
}
