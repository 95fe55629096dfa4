package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"listable/internal/api/auth"
	"listable/internal/api/middleware"
	"listable/internal/board"
	"listable/internal/config"
	"listable/internal/pkg/metrics"
	"listable/internal/pkg/notify"
	"listable/internal/pkg/queue"
	"listable/internal/pkg/ratelimit"
	"listable/internal/pkg/revoke"
	"listable/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Server 封装了 API 服务所需的依赖和路由处理。
//
// 它持有数据库存储、可选的 Redis 客户端、清单服务以及 Gin 路由引擎。
type Server struct {
	cfg     *config.Config
	logger  *slog.Logger
	store   *store.Store
	rdb     *redis.Client
	router  *gin.Engine
	board   *board.Service
	auth    *auth.Handler
	revoker *revoke.Store
	limiter ratelimit.Limiter
	mail    *queue.Queue
}

// NewServer 初始化 API 服务器。
//
// 它负责：
// 1. 打开数据库（MySQL 或 SQLite）并执行自动迁移
// 2. 启用时连接 Redis
// 3. SMTP 配置完整时启动邮件 Worker Pool
// 4. 初始化 Gin 路由引擎
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	st, err := store.Open(cfg.Database)
	if err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if cfg.Redis.Enabled {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = st.Close()
			_ = rdb.Close()
			return nil, err
		}
	}

	var mail *queue.Queue
	if cfg.Email.MailEnabled() {
		mail = queue.NewQueue(logger, cfg.App.WorkerPoolSize, cfg.App.QueueCapacity)
		mail.Start(context.WithoutCancel(ctx))
	}

	metrics.InitMetrics()
	gin.SetMode(gin.ReleaseMode)
	return newServer(cfg, logger, st, rdb, mail), nil
}

// newServer 用已建立的依赖组装服务器，mail 为空时不发送欢迎邮件。
func newServer(cfg *config.Config, logger *slog.Logger, st *store.Store, rdb *redis.Client, mail *queue.Queue) *Server {
	s := &Server{
		cfg:    cfg,
		logger: logger,
		store:  st,
		rdb:    rdb,
		board: board.NewService(st, board.Options{
			MultiUser:            cfg.App.MultiUser,
			StrictStatus:         cfg.App.StrictStatus,
			CheckMoveDestination: cfg.App.CheckMoveDestination,
		}, logger),
		mail: mail,
	}

	if rdb != nil {
		s.revoker = revoke.NewStore(rdb)
		s.limiter = ratelimit.NewRedisLimiter(rdb, logger, "listable:ratelimit", cfg.App.RateLimit, cfg.App.RateBurst)
	} else {
		s.limiter = ratelimit.NewLocalLimiter(cfg.App.RateLimit, cfg.App.RateBurst)
	}

	if cfg.App.MultiUser {
		var revoker auth.TokenRevoker
		if s.revoker != nil {
			revoker = s.revoker
		}
		s.auth = auth.NewHandler(st, cfg.Security.JWTSecret, cfg.App.TokenTTL, revoker, logger)
		if mail != nil {
			s.auth.WithWelcomeMail(notify.New(&cfg.Email, logger), mail)
		}
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(logger))
	if c, ok := corsConfig(cfg.App.CORSOrigins); ok {
		r.Use(cors.New(c))
	}
	s.router = r
	s.registerRoutes()
	return s
}

func corsConfig(origins []string) (cors.Config, bool) {
	if len(origins) == 0 {
		return cors.Config{}, false
	}
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range origins {
		if o == "*" {
			c.AllowAllOrigins = true
			return c, true
		}
	}
	c.AllowOrigins = origins
	return c, true
}

// Router 返回 HTTP 路由处理器。
func (s *Server) Router() http.Handler {
	return s.router
}

// Shutdown 等待邮件队列中剩余的任务发送完毕。
func (s *Server) Shutdown(timeout time.Duration) error {
	if s.mail == nil {
		return nil
	}
	return s.mail.Shutdown(timeout)
}

// Close 关闭数据库与缓存连接。
func (s *Server) Close() error {
	var firstErr error
	if s.rdb != nil {
		if err := s.rdb.Close(); err != nil {
			firstErr = err
		}
	}
	if s.store != nil {
		if err := s.store.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// registerRoutes 注册所有的 API 路由。
func (s *Server) registerRoutes() {
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.router.GET("/healthz", s.handleHealthz)
	s.router.GET("/statuses", s.handleStatuses)

	app := s.router.Group("/")
	if s.cfg.App.MultiUser {
		s.router.POST("/register", middleware.RateLimit(s.limiter, "register", s.logger), s.auth.Register)
		s.router.POST("/login", middleware.RateLimit(s.limiter, "login", s.logger), s.auth.Login)

		var revoker middleware.Revoker
		if s.revoker != nil {
			revoker = s.revoker
		}
		app.Use(middleware.AuthMiddleware(s.cfg.Security.JWTSecret, revoker, s.logger))
		app.POST("/logout", s.auth.Logout)
	}

	app.GET("/lists", s.handleListLists)
	app.POST("/lists", s.handleCreateList)
	app.GET("/lists/:id", s.handleGetList)
	app.PUT("/lists/:id", s.handleUpdateList)
	app.DELETE("/lists/:id", s.handleDeleteList)
	app.POST("/lists/:id/tasks", s.handleCreateTask)

	app.GET("/tasks/:id", s.handleGetTask)
	app.PUT("/tasks/:id", s.handleUpdateTask)
	app.DELETE("/tasks/:id", s.handleDeleteTask)
	app.POST("/tasks/:id/move/:list_id", s.handleMoveTask)
}

func (s *Server) handleHealthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("healthz database ping failed", slog.String("error", err.Error()))
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
		return
	}
	if s.rdb != nil {
		if err := s.rdb.Ping(ctx).Err(); err != nil {
			s.logger.Warn("healthz redis ping failed", slog.String("error", err.Error()))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "error"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// identity 解析当前请求的调用者，单用户模式下为匿名身份。
func (s *Server) identity(c *gin.Context) board.Identity {
	if !s.board.Options().MultiUser {
		return board.Anonymous()
	}
	return board.User(middleware.UserID(c))
}

// respondError 将服务层错误映射为 HTTP 响应。
//
// 归属校验失败静默重定向到清单列表；存储错误只记录日志，不向客户端暴露细节。
func (s *Server) respondError(c *gin.Context, op string, err error) {
	switch {
	case board.IsDenied(err):
		c.Redirect(http.StatusSeeOther, "/lists")
	case errors.Is(err, board.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, board.ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
	default:
		s.logger.Error(op+" failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": op + " failed"})
	}
}
