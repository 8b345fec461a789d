package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"logicleafs/backend/internal/domain"
	"logicleafs/backend/internal/storage"
)

// Store 将提交追加到 Redis Stream，流条目ID即文档ID。
//
// Stream 天然只追加，不提供更新或删除路径。
type Store struct {
	client *Client
	stream string
}

var _ storage.Store = (*Store)(nil)

// NewStore 创建写入 submissions 流的存储
func NewStore(client *Client) *Store {
	return &Store{client: client, stream: domain.SubmissionsCollection}
}

// submissionValues 将提交转换为流条目字段
func submissionValues(s *domain.Submission) map[string]interface{} {
	return map[string]interface{}{
		"name":      s.Name,
		"email":     s.Email,
		"phone":     s.Phone,
		"subject":   s.Subject,
		"message":   s.Message,
		"timestamp": s.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// AddSubmission 执行 XADD 并返回服务端分配的条目ID
func (s *Store) AddSubmission(ctx context.Context, submission *domain.Submission) (string, error) {
	id, err := s.client.Client().XAdd(ctx, &goredis.XAddArgs{
		Stream: s.stream,
		Values: submissionValues(submission),
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd submission: %w", err)
	}
	return id, nil
}

// Health 检查 Redis 连接
func (s *Store) Health(ctx context.Context) error {
	return s.client.Ping(ctx)
}

// Close 关闭 Redis 连接
func (s *Store) Close() error {
	return s.client.Close()
}
