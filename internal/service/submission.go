package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/domain"
	"logicleafs/backend/internal/smtp"
	"logicleafs/backend/internal/storage"
)

// ErrorKind 提交失败的分类，决定对外返回的错误信息
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindMisconfigured
	KindStoreUnavailable
	KindAuthFailed
)

// String 用于日志和指标标签
func (k ErrorKind) String() string {
	switch k {
	case KindMisconfigured:
		return "misconfigured"
	case KindStoreUnavailable:
		return "store_unavailable"
	case KindAuthFailed:
		return "auth_failed"
	default:
		return "internal"
	}
}

// SubmitError 携带失败分类和底层错误
type SubmitError struct {
	Kind ErrorKind
	Err  error
}

func (e *SubmitError) Error() string {
	if e.Err == nil {
		return e.Kind.String()
	}
	return e.Kind.String() + ": " + e.Err.Error()
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// KindOf 返回错误的分类，非 SubmitError 一律视为内部错误
func KindOf(err error) ErrorKind {
	var submitErr *SubmitError
	if errors.As(err, &submitErr) {
		return submitErr.Kind
	}
	return KindInternal
}

var (
	errMailNotConfigured  = errors.New("sender or recipient credentials not configured")
	errStoreNotConfigured = errors.New("submission store not available")
)

// Mailer 投递一封已组装好的邮件
type Mailer interface {
	Send(ctx context.Context, creds smtp.Credentials, from string, to []string, msg []byte) error
}

// SubmissionInput 表单提交的五个字段，原样保存和转发
type SubmissionInput struct {
	Name    string
	Email   string
	Phone   string
	Subject string
	Message string
}

// SubmissionService 保存联系表单并通知站点所有者。
//
// store 为 nil 表示启动时存储初始化失败，此时所有提交都会被拒绝。
type SubmissionService struct {
	mail   config.MailConfig
	store  storage.Store
	mailer Mailer
	log    *zap.Logger
	now    func() time.Time
}

// NewSubmissionService 创建提交服务
func NewSubmissionService(mail config.MailConfig, store storage.Store, mailer Mailer, log *zap.Logger) *SubmissionService {
	return &SubmissionService{
		mail:   mail,
		store:  store,
		mailer: mailer,
		log:    log,
		now:    time.Now,
	}
}

// StoreAvailable 报告存储是否在启动时成功初始化
func (s *SubmissionService) StoreAvailable() bool {
	return s.store != nil
}

// Store 返回底层存储，不可用时为 nil
func (s *SubmissionService) Store() storage.Store {
	return s.store
}

// Submit 依次检查配置、检查存储、写入记录、发送通知。
//
// 写入与发送不在同一事务中：邮件失败时已写入的记录保留。
// 同样的输入重复提交会产生多条记录和多封邮件。
func (s *SubmissionService) Submit(ctx context.Context, input SubmissionInput) (*domain.Submission, error) {
	if !s.mail.Complete() {
		s.log.Error("submission rejected: mail settings incomplete",
			zap.Bool("sender_email_set", s.mail.SenderEmail != ""),
			zap.Bool("sender_password_set", s.mail.SenderPassword != ""),
			zap.Bool("recipient_email_set", s.mail.RecipientEmail != ""),
		)
		return nil, &SubmitError{Kind: KindMisconfigured, Err: errMailNotConfigured}
	}

	if s.store == nil {
		s.log.Error("submission rejected: store unavailable")
		return nil, &SubmitError{Kind: KindStoreUnavailable, Err: errStoreNotConfigured}
	}

	submission := domain.NewSubmission(input.Name, input.Email, input.Phone, input.Subject, input.Message, s.now())

	id, err := s.store.AddSubmission(ctx, submission)
	if err != nil {
		s.log.Error("failed to persist submission", zap.Error(err))
		return nil, &SubmitError{Kind: KindInternal, Err: err}
	}
	submission.ID = id

	err = s.mailer.Send(ctx,
		smtp.Credentials{Username: s.mail.SenderEmail, Password: s.mail.SenderPassword},
		s.mail.SenderEmail,
		[]string{s.mail.RecipientEmail},
		smtp.ComposeNotification(submission),
	)
	if err != nil {
		if errors.Is(err, smtp.ErrAuthFailed) {
			s.log.Error("relay rejected sender credentials",
				zap.String("submission_id", id),
				zap.Error(err),
			)
			return submission, &SubmitError{Kind: KindAuthFailed, Err: err}
		}
		s.log.Error("failed to send notification",
			zap.String("submission_id", id),
			zap.Error(err),
		)
		return submission, &SubmitError{Kind: KindInternal, Err: err}
	}

	s.log.Info("submission processed",
		zap.String("submission_id", id),
		zap.Time("timestamp", submission.Timestamp),
	)

	return submission, nil
}
