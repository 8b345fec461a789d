package storage

import (
	"context"
	"errors"

	"logicleafs/backend/internal/domain"
)

// ErrStoreClosed 存储已关闭
var ErrStoreClosed = errors.New("store closed")

// SubmissionRepository 定义提交记录的追加写入操作。
//
// 实现必须可被多个请求并发调用。
type SubmissionRepository interface {
	// AddSubmission 追加一条记录并返回存储分配的文档ID
	AddSubmission(ctx context.Context, submission *domain.Submission) (string, error)
}

// Store 聚合文档存储需要实现的全部接口
type Store interface {
	SubmissionRepository

	// Health 检查存储连接是否可用
	Health(ctx context.Context) error
	// Close 释放底层连接
	Close() error
}
