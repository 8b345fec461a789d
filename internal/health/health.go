package health

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"logicleafs/backend/internal/storage"
)

// ErrStoreUnavailable 启动时存储没有初始化成功
var ErrStoreUnavailable = errors.New("submission store not initialized")

const (
	storeCheckTimeout = 5 * time.Second
	maxGoroutineCount = 10000
)

// HealthChecker 健康检查器
type HealthChecker struct {
	health healthcheck.Handler
	store  storage.Store
	logger *zap.Logger
}

// NewHealthChecker 创建健康检查器，store 可以为 nil
func NewHealthChecker(store storage.Store, logger *zap.Logger) *HealthChecker {
	hc := &HealthChecker{
		health: healthcheck.NewHandler(),
		store:  store,
		logger: logger,
	}

	hc.addChecks()

	return hc
}

// addChecks 存活检查只看进程本身；就绪检查要求存储可写
func (hc *HealthChecker) addChecks() {
	hc.health.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(maxGoroutineCount))

	hc.health.AddReadinessCheck("store", healthcheck.Timeout(hc.checkStore, storeCheckTimeout))
}

func (hc *HealthChecker) checkStore() error {
	if hc.store == nil {
		return ErrStoreUnavailable
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeCheckTimeout)
	defer cancel()

	if err := hc.store.Health(ctx); err != nil {
		hc.logger.Warn("store health check failed", zap.Error(err))
		return err
	}
	return nil
}

// LiveEndpoint 处理 /health/live
func (hc *HealthChecker) LiveEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.LiveEndpoint(w, r)
}

// ReadyEndpoint 处理 /health/ready
func (hc *HealthChecker) ReadyEndpoint(w http.ResponseWriter, r *http.Request) {
	hc.health.ReadyEndpoint(w, r)
}
