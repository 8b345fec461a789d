package httptransport

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"logicleafs/backend/internal/monitoring"
	"logicleafs/backend/internal/service"
)

// submitFormRequest 联系表单。字段名与前端表单保持一致（首字母大写）。
type submitFormRequest struct {
	Name    string `form:"Name" binding:"required"`
	Email   string `form:"Email" binding:"required"`
	Phone   string `form:"Phone" binding:"required"`
	Subject string `form:"Subject" binding:"required"`
	Message string `form:"Message" binding:"required"`
}

func (r submitFormRequest) input() service.SubmissionInput {
	return service.SubmissionInput{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Subject: r.Subject,
		Message: r.Message,
	}
}

// SubmissionHandler 处理联系表单相关请求
type SubmissionHandler struct {
	submissions *service.SubmissionService
	metrics     *monitoring.Metrics
	logger      *zap.Logger
}

// NewSubmissionHandler 创建表单处理器
func NewSubmissionHandler(submissions *service.SubmissionService, metrics *monitoring.Metrics, logger *zap.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		submissions: submissions,
		metrics:     metrics,
		logger:      logger,
	}
}

// Root 存活探测，不依赖任何外部服务
func (h *SubmissionHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, MessageResponse{Message: MsgRunning})
}

// SubmitForm 保存表单并发送通知邮件
func (h *SubmissionHandler) SubmitForm(c *gin.Context) {
	var req submitFormRequest
	if err := c.ShouldBindWith(&req, formBinding(c)); err != nil {
		if errs, ok := fieldErrors(err); ok {
			UnprocessableEntity(c, errs)
			return
		}
		h.logger.Warn("failed to parse form body", zap.Error(err))
		Detail(c, http.StatusBadRequest, MsgBadBody)
		return
	}

	// 客户端断开后仍然完成写入和发送
	ctx := context.WithoutCancel(c.Request.Context())

	start := time.Now()
	_, err := h.submissions.Submit(ctx, req.input())
	if err != nil {
		h.metrics.RecordSubmission(service.KindOf(err).String(), time.Since(start))
		InternalError(c, GetErrorMessage(err))
		return
	}

	h.metrics.RecordSubmission("success", time.Since(start))
	Success(c)
}

// formBinding 只读取请求体中的表单字段，忽略查询参数
func formBinding(c *gin.Context) binding.Binding {
	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		return binding.FormMultipart
	}
	return binding.FormPost
}
