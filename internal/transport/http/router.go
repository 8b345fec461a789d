package httptransport

import (
	"net/http"
	"time"

	gincors "github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"logicleafs/backend/internal/config"
	"logicleafs/backend/internal/health"
	"logicleafs/backend/internal/middleware"
	"logicleafs/backend/internal/monitoring"
	"logicleafs/backend/internal/service"
)

// RouterDependencies 路由器依赖项
type RouterDependencies struct {
	Config            *config.Config
	SubmissionService *service.SubmissionService
	Metrics           *monitoring.Metrics   // 为空时使用独立注册表
	Health            *health.HealthChecker // 为空时按提交服务的存储创建
	Logger            *zap.Logger
}

// NewRouter 创建并返回 Gin 路由实例。
func NewRouter(deps RouterDependencies) *gin.Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := deps.Metrics
	if metrics == nil {
		metrics = monitoring.NewMetrics(nil)
	}
	checker := deps.Health
	if checker == nil {
		checker = health.NewHealthChecker(deps.SubmissionService.Store(), logger)
	}
	metrics.SetStoreAvailable(deps.SubmissionService.StoreAvailable())

	router := gin.New()
	router.HandleMethodNotAllowed = true

	monitor := middleware.NewMonitoringMiddleware(metrics, logger)
	router.Use(monitor.PanicRecovery(MsgInternal))
	router.Use(middleware.RequestLogger(logger))
	router.Use(monitor.HTTPMetrics())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.ReflectRequestedHeaders())
	router.Use(gincors.New(corsConfig(deps.Config.CORS)))

	handler := NewSubmissionHandler(deps.SubmissionService, metrics, logger)

	router.GET("/", handler.Root)
	router.POST("/submit-form", handler.SubmitForm)

	router.GET("/health/live", gin.WrapF(checker.LiveEndpoint))
	router.GET("/health/ready", gin.WrapF(checker.ReadyEndpoint))
	router.GET("/metrics", gin.WrapH(metrics.HTTPHandler()))

	router.NoRoute(func(c *gin.Context) {
		Detail(c, http.StatusNotFound, MsgNotFound)
	})
	router.NoMethod(func(c *gin.Context) {
		Detail(c, http.StatusMethodNotAllowed, MsgMethodNotAllowed)
	})

	return router
}

// corsConfig 允许携带凭证的跨域请求。
// 配置为 "*" 时回显请求的 Origin，因为携带凭证时浏览器不接受通配符；
// 允许的头部由 ReflectRequestedHeaders 按预检请求回显，这里不设置 AllowHeaders。
func corsConfig(cfg config.CORSConfig) gincors.Config {
	c := gincors.Config{
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
			http.MethodDelete, http.MethodHead, http.MethodOptions,
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if allowsAnyOrigin(cfg.AllowedOrigins) {
		c.AllowOriginFunc = func(string) bool { return true }
		return c
	}
	c.AllowOrigins = cfg.AllowedOrigins
	return c
}

func allowsAnyOrigin(origins []string) bool {
	if len(origins) == 0 {
		return true
	}
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}
