package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"LrcSync/cache"
	"LrcSync/config"
	"LrcSync/core/auth"
	"LrcSync/core/library"
	"LrcSync/core/session"
	"LrcSync/db"
	"LrcSync/logger"
	"LrcSync/repository"
	"LrcSync/storage"

	"github.com/gorilla/mux"
)

const (
	sessionSweepInterval = 5 * time.Minute
	sessionMaxIdle       = 2 * time.Hour
)

// Handler 所有 HTTP 接口共用的依赖
type Handler struct {
	lyrics    *library.Service
	sessions  *session.Manager
	issuer    *auth.Issuer
	delayStep float64
}

// NewHandler delayStep 为 WebSocket "delay" 消息未给出 delta 时的默认步长（秒）
func NewHandler(lyrics *library.Service, sessions *session.Manager, issuer *auth.Issuer, delayStep float64) *Handler {
	return &Handler{lyrics: lyrics, sessions: sessions, issuer: issuer, delayStep: delayStep}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Max-Age", "86400") // 24 hours

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Router 注册所有路由
func (h *Handler) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(corsMiddleware)

	router.HandleFunc("/api/auth/login", h.LoginHandler).Methods(http.MethodPost)

	// 歌词
	router.HandleFunc("/api/lyrics/parse", h.ParseLyricHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/lyrics", h.ListLyricsHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/lyrics/{trackKey}", h.GetLyricHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/lyrics/{trackKey}", h.AuthMiddleware(h.SaveLyricHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/lyrics/{trackKey}", h.AuthMiddleware(h.DeleteLyricHandler)).Methods(http.MethodDelete)
	router.HandleFunc("/api/lyrics/{trackKey}/locate", h.LocateLyricHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/lyrics/{trackKey}/describe", h.DescribeLyricHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/lyrics/{trackKey}/offset", h.AuthMiddleware(h.SetOffsetHandler)).Methods(http.MethodPut)
	router.HandleFunc("/api/lyrics/{trackKey}/offset", h.AuthMiddleware(h.ResetOffsetHandler)).Methods(http.MethodDelete)

	// 播放会话
	router.HandleFunc("/api/sessions", h.CreateSessionHandler).Methods(http.MethodPost)
	router.HandleFunc("/api/sessions/{id}/locate", h.LocateSessionHandler).Methods(http.MethodGet)
	router.HandleFunc("/api/sessions/{id}/delay", h.AdjustDelayHandler).Methods(http.MethodPut)
	router.HandleFunc("/api/sessions/{id}", h.CloseSessionHandler).Methods(http.MethodDelete)
	router.HandleFunc("/ws/sessions/{id}", h.SyncWebSocketHandler).Methods(http.MethodGet)

	return router
}

// buildService 按配置选择 MySQL 或内存仓库，Redis 与 MinIO 可选
func buildService(cfg *config.Config) (*library.Service, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	repo := repository.NewMemoryLyricRepository()
	if cfg.DBEnabled {
		if err := db.ConnectGormDB(cfg); err != nil {
			return nil, nil, fmt.Errorf("连接数据库失败: %w", err)
		}
		cleanups = append(cleanups, func() { _ = db.CloseGormDB() })
		if err := db.AutoMigrate(); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("初始化数据表失败: %w", err)
		}
		repo = repository.NewGormLyricRepository(db.GormDB)
	} else {
		logger.Warn("数据库未启用，歌词仅保存在内存中")
	}

	var recordCache library.RecordCache
	if cfg.RedisEnabled {
		if err := cache.ConnectRedis(cfg); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("连接 Redis 失败: %w", err)
		}
		cleanups = append(cleanups, func() { _ = cache.CloseRedis() })
		recordCache = cache.NewLyricCache(cache.RedisClient, cfg.LyricCacheTTL)
	}

	var archive library.Archive
	if cfg.MinioEnabled {
		a, err := storage.NewLyricArchive(cfg)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("初始化 MinIO 失败: %w", err)
		}
		archive = a
	}

	logger.Info("歌词服务就绪",
		logger.Bool("mysql", cfg.DBEnabled),
		logger.Bool("redis", cfg.RedisEnabled),
		logger.Bool("minio", cfg.MinioEnabled))
	return library.NewService(repo, recordCache, archive), cleanup, nil
}

// Start 启动 HTTP 服务，收到 SIGINT/SIGTERM 后优雅退出
func Start(cfg *config.Config) error {
	svc, cleanup, err := buildService(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	if cfg.AdminPasswordHash == "" {
		logger.Warn("未配置 ADMIN_PASSWORD_HASH，写接口将无法登录")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sessions := session.NewManager()
	go sessions.RunJanitor(ctx, sessionSweepInterval, sessionMaxIdle)
	logger.Debug("会话清理已启动",
		logger.Duration("interval", sessionSweepInterval),
		logger.Duration("maxIdle", sessionMaxIdle))

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.JWTExpire, cfg.AdminPasswordHash)
	handler := NewHandler(svc, sessions, issuer, cfg.DelayStep)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动", logger.String("addr", cfg.ServerAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("服务启动失败: %w", err)
	case <-stop:
	}
	logger.Info("正在关闭服务...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("服务关闭超时: %w", err)
	}

	logger.Info("服务已停止")
	return nil
}
