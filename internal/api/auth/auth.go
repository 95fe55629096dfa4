package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"listable/internal/api/middleware"
	"listable/internal/model"
	"listable/internal/pkg/metrics"
	"listable/internal/pkg/notify"
	"listable/internal/pkg/queue"
	"listable/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/gofrs/uuid"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// UserStore 用户持久化接口。
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

// TokenRevoker 记录已注销的令牌。
type TokenRevoker interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) error
}

// JobQueue 异步任务队列。
type JobQueue interface {
	Enqueue(job queue.Job) bool
}

// Handler 提供注册、登录与注销接口。
type Handler struct {
	users     UserStore
	jwtSecret []byte
	tokenTTL  time.Duration
	revoker   TokenRevoker
	notifier  notify.Notifier
	jobs      JobQueue
	logger    *slog.Logger
}

// NewHandler 创建 Auth Handler。
func NewHandler(users UserStore, jwtSecret string, tokenTTL time.Duration, revoker TokenRevoker, logger *slog.Logger) *Handler {
	RegisterValidators()
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Handler{
		users:     users,
		jwtSecret: []byte(jwtSecret),
		tokenTTL:  tokenTTL,
		revoker:   revoker,
		logger:    logger,
	}
}

// WithWelcomeMail 注册成功后通过 jobs 异步发送欢迎邮件。
func (h *Handler) WithWelcomeMail(notifier notify.Notifier, jobs JobQueue) *Handler {
	h.notifier = notifier
	h.jobs = jobs
	return h
}

var (
	usernamePattern = regexp.MustCompile(`^\w+$`)
	registerOnce    sync.Once
)

// RegisterValidators 向 gin 的 validator 引擎注册自定义校验规则 username。
func RegisterValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			_ = v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
				return usernamePattern.MatchString(fl.Field().String())
			})
		}
	})
}

type registerRequest struct {
	Username string `json:"username" binding:"required,min=3,max=32,username"`
	Email    string `json:"email" binding:"required,email,max=120"`
	Password string `json:"password" binding:"required,min=8,max=64"`
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

// Register 创建新用户并直接返回令牌。
func (h *Handler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		metrics.ObserveAuth("register", "invalid")
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid registration data"})
		return
	}
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(strings.ToLower(req.Email))

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logError("hash password failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	user := model.User{
		Username: username,
		Email:    email,
		Password: string(hash),
	}
	if err := h.users.CreateUser(c.Request.Context(), &user); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			metrics.ObserveAuth("register", "duplicate")
			c.JSON(http.StatusConflict, gin.H{"error": "name already taken"})
			return
		}
		h.logError("create user failed", err)
		metrics.ObserveAuth("register", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.logError("sign token failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "register failed"})
		return
	}

	metrics.ObserveAuth("register", "ok")
	if h.logger != nil {
		h.logger.Info("user registered", slog.String("username", username), slog.Uint64("user_id", uint64(user.ID)))
	}
	h.sendWelcome(email, username)
	c.JSON(http.StatusCreated, tokenResponse{Token: token})
}

// Login 校验用户名与密码并返回 JWT。
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid login data"})
		return
	}
	username := strings.TrimSpace(req.Username)

	user, err := h.users.GetUserByUsername(c.Request.Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			metrics.ObserveAuth("login", "rejected")
			c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
			return
		}
		h.logError("query user failed", err)
		metrics.ObserveAuth("login", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		metrics.ObserveAuth("login", "rejected")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "incorrect username or password"})
		return
	}

	token, err := h.issueToken(user.ID)
	if err != nil {
		h.logError("sign token failed", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	metrics.ObserveAuth("login", "ok")
	if h.logger != nil {
		h.logger.Info("user logged in", slog.String("username", username))
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

// Logout 吊销当前令牌，吊销记录在令牌过期时自动清除。
//
// 未配置吊销存储时令牌在过期前仍然有效，响应中 revoked 为 false。
func (h *Handler) Logout(c *gin.Context) {
	if h.revoker == nil {
		metrics.ObserveAuth("logout", "not_revoked")
		c.JSON(http.StatusOK, gin.H{
			"message": "logged out, token remains valid until it expires",
			"revoked": false,
		})
		return
	}

	jti := c.GetString(middleware.ContextTokenID)
	expiry := c.GetTime(middleware.ContextTokenExpiry)
	if err := h.revoker.Revoke(c.Request.Context(), jti, time.Until(expiry)); err != nil {
		h.logError("revoke token failed", err)
		metrics.ObserveAuth("logout", "error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "logout failed"})
		return
	}

	metrics.ObserveAuth("logout", "ok")
	c.JSON(http.StatusOK, gin.H{"message": "logged out", "revoked": true})
}

func (h *Handler) sendWelcome(email, username string) {
	if h.notifier == nil || h.jobs == nil {
		return
	}
	notifier := h.notifier
	ok := h.jobs.Enqueue(func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := notifier.SendWelcome(ctx, email, username); err != nil {
			metrics.ObserveMail("error")
			return err
		}
		metrics.ObserveMail("ok")
		return nil
	})
	if !ok {
		metrics.ObserveMail("dropped")
	}
}

func (h *Handler) issueToken(userID uint) (string, error) {
	jti, err := uuid.NewV4()
	if err != nil {
		return "", err
	}
	now := time.Now()
	claims := middleware.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			ID:        jti.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(h.tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(h.jwtSecret)
}

func (h *Handler) logError(msg string, err error) {
	if h.logger != nil {
		h.logger.Error(msg, slog.String("error", err.Error()))
	}
}
