package httptransport

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"logicleafs/backend/internal/service"
)

// 对外返回的固定消息
const (
	MsgRunning       = "Logic Leafs API server is running"
	MsgSubmitted     = "Form submitted successfully!"
	MsgNotConfigured = "The server is not configured to send emails."
	MsgNoDatabase    = "Database connection is not configured."
	MsgAuthFailed    = "Server email error: Authentication failed."
	MsgInternal      = "An internal server error occurred. Please try again later."

	MsgBadBody          = "There was an error parsing the body"
	MsgNotFound         = "Not Found"
	MsgMethodNotAllowed = "Method Not Allowed"
)

// 失败分类 -> 对外消息；底层错误只写日志
var kindMessages = map[service.ErrorKind]string{
	service.KindMisconfigured:    MsgNotConfigured,
	service.KindStoreUnavailable: MsgNoDatabase,
	service.KindAuthFailed:       MsgAuthFailed,
	service.KindInternal:         MsgInternal,
}

// GetErrorMessage 返回提交失败时对外展示的消息
func GetErrorMessage(err error) string {
	if msg, ok := kindMessages[service.KindOf(err)]; ok {
		return msg
	}
	return MsgInternal
}

// fieldErrors 把表单绑定的校验错误转换为逐字段的错误列表。
// 第二个返回值为 false 表示不是校验错误（例如请求体无法解析）。
func fieldErrors(err error) ([]FieldError, bool) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, false
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, FieldError{
			Loc:  []string{"body", fe.Field()},
			Msg:  "field required",
			Type: "value_error.missing",
		})
	}
	return out, true
}
