package firestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	gcfirestore "cloud.google.com/go/firestore"
	"go.uber.org/zap"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/domain"
	"logicleafs/backend/internal/storage"
)

// ErrCredentialsNotFound 服务账号凭证文件不存在
var ErrCredentialsNotFound = errors.New("firestore credentials file not found")

// Store 使用 Firestore 的 submissions 集合保存提交，每条提交一个文档。
type Store struct {
	client     *gcfirestore.Client
	collection string
	log        *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// Open 使用服务账号凭证文件创建 Firestore 客户端
//
// 项目ID未配置时从凭证文件中检测。凭证文件不存在时返回 ErrCredentialsNotFound。
func Open(ctx context.Context, cfg config.FirestoreConfig, log *zap.Logger) (*Store, error) {
	if _, err := os.Stat(cfg.CredentialsFile); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrCredentialsNotFound, cfg.CredentialsFile)
		}
		return nil, fmt.Errorf("stat credentials file: %w", err)
	}

	projectID := cfg.ProjectID
	if projectID == "" {
		projectID = gcfirestore.DetectProjectID
	}

	client, err := gcfirestore.NewClient(ctx, projectID, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("create firestore client: %w", err)
	}

	log.Info("firestore client initialized",
		zap.String("credentials_file", cfg.CredentialsFile),
		zap.String("collection", domain.SubmissionsCollection),
	)

	return &Store{
		client:     client,
		collection: domain.SubmissionsCollection,
		log:        log,
	}, nil
}

// AddSubmission 在集合中新建一个自动ID的文档
func (s *Store) AddSubmission(ctx context.Context, submission *domain.Submission) (string, error) {
	ref, _, err := s.client.Collection(s.collection).Add(ctx, submission)
	if err != nil {
		return "", fmt.Errorf("add firestore document: %w", err)
	}
	return ref.ID, nil
}

// Health 读取集合中的一个文档以确认凭证与连接可用
func (s *Store) Health(ctx context.Context) error {
	it := s.client.Collection(s.collection).Limit(1).Documents(ctx)
	defer it.Stop()

	if _, err := it.Next(); err != nil && !errors.Is(err, iterator.Done) {
		return err
	}
	return nil
}

// Close 关闭 Firestore 客户端
func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		s.log.Error("failed to close firestore client", zap.Error(err))
		return err
	}
	s.log.Info("firestore client closed")
	return nil
}
