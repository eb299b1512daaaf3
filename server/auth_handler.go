package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"LrcSync/core/auth"
	"LrcSync/logger"

	"go.uber.org/zap"
)

type contextKey string

const subjectKey contextKey = "subject"

// LoginRequest 管理员登录
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse 登录成功返回的令牌
type LoginResponse struct {
	Token string `json:"token"`
}

// LoginHandler 校验管理员密码并签发 JWT
func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("[Login] 解析请求体失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username and password are required")
		return
	}

	token, err := h.issuer.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			logger.Warn("[Login] 密码错误", logger.String("username", req.Username))
			writeError(w, http.StatusUnauthorized, "invalid username or password")
			return
		}
		logger.Error("[Login] 签发令牌失败", logger.ErrorField(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", req.Username))
	writeJSON(w, http.StatusOK, LoginResponse{Token: token})
}

// AuthMiddleware 要求 Authorization: Bearer <token>
func (h *Handler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			writeError(w, http.StatusUnauthorized, "authorization header is required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeError(w, http.StatusUnauthorized, "invalid authorization header format")
			return
		}

		claims, err := h.issuer.ParseToken(parts[1])
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		ctx := context.WithValue(r.Context(), subjectKey, claims.Subject)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// SubjectFromContext 取出 AuthMiddleware 写入的登录名
func SubjectFromContext(ctx context.Context) (string, bool) {
	subject, ok := ctx.Value(subjectKey).(string)
	return subject, ok
}

// operatorField 写接口日志中的操作者
func operatorField(r *http.Request) zap.Field {
	subject, ok := SubjectFromContext(r.Context())
	if !ok {
		subject = "anonymous"
	}
	return logger.String("operator", subject)
}
