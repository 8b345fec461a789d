package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/domain"
	"logicleafs/backend/internal/storage"
)

// Store MySQL 5.7+ 文档存储，每条提交保存为 JSON 列中的一个文档。
//
// 表结构需预先创建：
//
//	CREATE TABLE submissions (
//	    id         CHAR(36) PRIMARY KEY,
//	    document   JSON NOT NULL,
//	    created_at DATETIME(6) NOT NULL
//	);
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

var _ storage.Store = (*Store)(nil)

// Open 解析 DSN、建立连接池并验证连接
func Open(ctx context.Context, cfg config.DatabaseConfig, log *zap.Logger) (*Store, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("database DSN is required")
	}

	driverCfg, err := mysqldriver.ParseDSN(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database DSN: %w", err)
	}
	driverCfg.ParseTime = true
	driverCfg.Loc = time.UTC

	connector, err := mysqldriver.NewConnector(driverCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create connector: %w", err)
	}

	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info("connected to MySQL", zap.String("address", driverCfg.Addr), zap.String("database", driverCfg.DBName))

	return NewStore(db, log), nil
}

// NewStore 基于已打开的连接池创建存储
func NewStore(db *sql.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

const insertSubmissionSQL = "INSERT INTO " + domain.SubmissionsCollection + " (id, document, created_at) VALUES (?, ?, ?)"

// AddSubmission 插入一条 JSON 文档记录
func (s *Store) AddSubmission(ctx context.Context, submission *domain.Submission) (string, error) {
	document, err := json.Marshal(submission)
	if err != nil {
		return "", fmt.Errorf("encode submission: %w", err)
	}

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx, insertSubmissionSQL, id, string(document), submission.Timestamp); err != nil {
		return "", fmt.Errorf("insert submission: %w", err)
	}

	return id, nil
}

// Health 检查数据库连接
func (s *Store) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close 关闭连接池
func (s *Store) Close() error {
	err := s.db.Close()
	if err != nil {
		s.log.Error("failed to close MySQL connection", zap.Error(err))
		return err
	}
	s.log.Info("MySQL connection closed")
	return nil
}
