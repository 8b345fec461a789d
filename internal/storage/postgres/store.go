package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"logicleafs/backend/internal/domain"
	"logicleafs/backend/internal/storage"
)

// Store 将每条提交保存为 submissions 表中的一个 JSONB 文档。
//
// 表结构需预先创建：
//
//	CREATE TABLE submissions (
//	    id         uuid PRIMARY KEY,
//	    document   jsonb NOT NULL,
//	    created_at timestamptz NOT NULL
//	);
type Store struct {
	client *Client
}

var _ storage.Store = (*Store)(nil)

// NewStore 基于已连接的客户端创建存储
func NewStore(client *Client) *Store {
	return &Store{client: client}
}

const insertSubmissionSQL = `INSERT INTO ` + domain.SubmissionsCollection + ` (id, document, created_at) VALUES ($1, $2, $3)`

// AddSubmission 插入一条 JSONB 文档记录
func (s *Store) AddSubmission(ctx context.Context, submission *domain.Submission) (string, error) {
	document, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}

	id := uuid.NewString()
	if _, err := s.client.Pool().Exec(ctx, insertSubmissionSQL, id, document, submission.Timestamp); err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}

	return id, nil
}

// Health 检查连接池
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close 关闭连接池
func (s *Store) Close() error {
	s.client.Close()
	return nil
}
