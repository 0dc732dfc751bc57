package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mindflow-app/mindflow-BE/internal/app/handler"
	"github.com/mindflow-app/mindflow-BE/internal/app/model"
	"github.com/mindflow-app/mindflow-BE/internal/app/repository"
	"github.com/mindflow-app/mindflow-BE/internal/app/service"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/clock"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/config"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/logger"
	"github.com/mindflow-app/mindflow-BE/internal/pkg/middleware"
	util "github.com/mindflow-app/mindflow-BE/pkg/mypubliclib/util"
)

// Deps 构建路由需要的依赖；Clock 和 IDs 为空时使用真实实现
type Deps struct {
	Cfg   *config.Config
	Log   *logger.Logger
	Store *repository.Store
	Clock clock.Clock
	IDs   clock.IDGenerator
}

// New 组装完整的 HTTP 处理链：请求 ID -> 恢复 -> 限流 -> gin
func New(d Deps) http.Handler {
	if d.Clock == nil {
		d.Clock = clock.Real{}
	}
	if d.IDs == nil {
		d.IDs = clock.UUID{}
	}
	timeout := d.Cfg.PingTimeout

	stress := service.NewRecords[model.StressEntry](model.Stress, d.Store.Stress, d.Clock, d.IDs, d.Log, timeout)
	breathing := service.NewRecords[model.BreathingSession](model.Breathing, d.Store.Breathing, d.Clock, d.IDs, d.Log, timeout)
	meditation := service.NewRecords[model.MeditationSession](model.Meditation, d.Store.Meditation, d.Clock, d.IDs, d.Log, timeout)
	status := service.NewStatusService(d.Store.Pinger, timeout)

	r := gin.New()
	r.Use(util.Cors(d.Cfg.AllowOrigins)) // CORS 跨域支持
	r.Use(middleware.RequestLog(d.Log))
	r.Use(middleware.Auth())   // 可选 token
	r.Use(middleware.UserID()) // 识别当前用户

	r.GET("/", gin.WrapH(handler.NewRootHandler(status)))

	api := r.Group("/api")
	api.GET("/status", gin.WrapH(handler.NewStatusHandler(status)))
	api.POST("/guest-login", handler.NewGuestHandler(service.NewGuestService(d.Clock), d.Log).GuestLogin)

	handler.NewRecordHandler(stress, d.Log).Register(api)
	handler.NewRecordHandler(breathing, d.Log).Register(api)
	handler.NewRecordHandler(meditation, d.Log).Register(api)
	handler.RegisterPlaceholderBreathing(api)

	return middleware.RequestID(middleware.Recovery(d.Log)(
		middleware.RateLimit(r, middleware.UserKey, d.Cfg.RateRPS, d.Cfg.RateBurst),
	))
}
