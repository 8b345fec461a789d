package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"logicleafs/backend/internal/domain"
	"logicleafs/backend/internal/storage"
)

// Store 使用内存保存提交记录，主要用于开发验证和测试。
type Store struct {
	mu          sync.RWMutex
	submissions []domain.Submission
	closed      bool
}

var _ storage.Store = (*Store)(nil)

// NewStore 创建一个内存存储实例。
func NewStore() *Store {
	return &Store{}
}

// AddSubmission 追加一条提交记录，返回新分配的 UUID。
func (s *Store) AddSubmission(_ context.Context, submission *domain.Submission) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", storage.ErrStoreClosed
	}

	id := uuid.NewString()
	record := *submission
	record.ID = id
	s.submissions = append(s.submissions, record)

	return id, nil
}

// List 按写入顺序返回所有记录的副本
func (s *Store) List() []domain.Submission {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Submission, len(s.submissions))
	copy(out, s.submissions)
	return out
}

// Count 返回已写入的记录数
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.submissions)
}

// Health 内存存储在关闭前始终可用
func (s *Store) Health(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return storage.ErrStoreClosed
	}
	return nil
}

// Close 关闭存储，之后的写入返回 ErrStoreClosed
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
