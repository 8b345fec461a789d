package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/health"
	"logicleafs/backend/internal/monitoring"
	"logicleafs/backend/internal/service"
	"logicleafs/backend/internal/smtp"
	"logicleafs/backend/internal/storage"
	"logicleafs/backend/internal/storage/firestore"
	"logicleafs/backend/internal/storage/memory"
	"logicleafs/backend/internal/storage/mysql"
	"logicleafs/backend/internal/storage/postgres"
	"logicleafs/backend/internal/storage/redis"
	httptransport "logicleafs/backend/internal/transport/http"
)

// App 启动时组装好的全部依赖，之后只读
type App struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       storage.Store // 初始化失败时为 nil
	Relay       *smtp.Relay
	Submissions *service.SubmissionService
	Metrics     *monitoring.Metrics
	Health      *health.HealthChecker
}

// New 组装应用。存储初始化失败不会中断启动，只会让之后的提交被拒绝。
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) *App {
	if !cfg.Mail.Complete() {
		log.Warn("mail settings incomplete, submissions will be rejected",
			zap.Bool("sender_email_set", cfg.Mail.SenderEmail != ""),
			zap.Bool("sender_password_set", cfg.Mail.SenderPassword != ""),
			zap.Bool("recipient_email_set", cfg.Mail.RecipientEmail != ""),
		)
	}

	store := OpenStore(ctx, cfg, log)
	relay := smtp.NewRelay(cfg.SMTP, log.Named("smtp"))

	return &App{
		Config:      cfg,
		Logger:      log,
		Store:       store,
		Relay:       relay,
		Submissions: service.NewSubmissionService(cfg.Mail, store, relay, log.Named("submission")),
		Metrics:     monitoring.NewMetrics(nil),
		Health:      health.NewHealthChecker(store, log.Named("health")),
	}
}

// Router 创建 HTTP 路由
func (a *App) Router() *gin.Engine {
	return httptransport.NewRouter(httptransport.RouterDependencies{
		Config:            a.Config,
		SubmissionService: a.Submissions,
		Metrics:           a.Metrics,
		Health:            a.Health,
		Logger:            a.Logger,
	})
}

// Close 释放存储连接
func (a *App) Close() error {
	if a.Store == nil {
		return nil
	}
	return a.Store.Close()
}

// OpenStore 按配置创建提交存储。任何失败都只记录日志并返回 nil。
func OpenStore(ctx context.Context, cfg *config.Config, log *zap.Logger) storage.Store {
	store, err := openStore(ctx, cfg, log)
	if err != nil {
		if errors.Is(err, firestore.ErrCredentialsNotFound) {
			log.Error("firestore credentials file not found, submissions will be rejected",
				zap.String("credentials_file", cfg.Firestore.CredentialsFile),
			)
			return nil
		}
		log.Error("failed to initialize submission store, submissions will be rejected",
			zap.String("type", cfg.Store.Type),
			zap.Error(err),
		)
		return nil
	}

	log.Info("submission store initialized", zap.String("type", cfg.Store.Type))
	return store
}

// openStore 每个分支单独返回，保证失败时得到的是无类型的 nil
func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger) (storage.Store, error) {
	switch cfg.Store.Type {
	case config.StoreFirestore:
		store, err := firestore.Open(ctx, cfg.Firestore, log.Named("firestore"))
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StorePostgres:
		client, err := postgres.New(ctx, cfg.Database, log.Named("postgres"))
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(client), nil

	case config.StoreMySQL:
		store, err := mysql.Open(ctx, cfg.Database, log.Named("mysql"))
		if err != nil {
			return nil, err
		}
		return store, nil

	case config.StoreRedis:
		client, err := redis.New(ctx, cfg.Redis, log.Named("redis"))
		if err != nil {
			return nil, err
		}
		return redis.NewStore(client), nil

	case config.StoreMemory:
		log.Warn("using in-memory submission store, records are lost on restart")
		return memory.NewStore(), nil

	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Store.Type)
	}
}
