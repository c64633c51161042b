package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"civicsim/internal/activity"
	"civicsim/internal/config"
	"civicsim/internal/domain"
	"civicsim/internal/integrations/telegram"
	"civicsim/internal/service/quota"
	"civicsim/internal/service/report"
	"civicsim/internal/service/scheduler"
	"civicsim/internal/state"
)

type contextKey string

const contextKeyAdminSubject contextKey = "admin_subject"

const maxProvisionBatch = 100

type Engine interface {
	Start() bool
	Stop() bool
	State() scheduler.Status
}

type Provisioner interface {
	CreateAccounts(ctx context.Context, count int) domain.ProvisionResult
}

type Server struct {
	cfg         config.Config
	state       *state.BotState
	engine      Engine
	provisioner Provisioner
	recorder    *activity.Recorder
	quota       *quota.Engine
	notifier    *telegram.Notifier
	logger      *zap.Logger
	now         func() time.Time

	baseCtx context.Context
	cancel  context.CancelFunc
	bg      sync.WaitGroup

	provMu       sync.Mutex
	provisioning bool
}

func NewServer(
	cfg config.Config,
	st *state.BotState,
	engine Engine,
	provisioner Provisioner,
	recorder *activity.Recorder,
	quotaEngine *quota.Engine,
	notifier *telegram.Notifier,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:         cfg,
		state:       st,
		engine:      engine,
		provisioner: provisioner,
		recorder:    recorder,
		quota:       quotaEngine,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
		baseCtx:     ctx,
		cancel:      cancel,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, s.accessLog, middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Post("/admin/login", s.handleAdminLogin)

	r.Group(func(protected chi.Router) {
		protected.Use(s.requireAdmin)
		protected.Post("/bot/start", s.handleStart)
		protected.Post("/bot/stop", s.handleStop)
		protected.Get("/status", s.handleStatus)
		protected.Get("/events", s.handleListEvents)
		protected.Post("/accounts", s.handleCreateAccounts)
	})

	return r
}

// Close cancels background provisioning and waits for it to return.
func (s *Server) Close() {
	s.cancel()
	s.bg.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"engine": s.engine.State(),
		"time":   s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Username != s.cfg.AdminUsername || req.Password != s.cfg.AdminPassword {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	token, expiresAt, err := s.signAdminToken(req.Username)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create admin token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
		"type":       "Bearer",
	})
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	changed := s.engine.Start()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"changed": changed,
		"engine":  s.engine.State(),
	})
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	changed := s.engine.Stop()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"ok":      true,
		"changed": changed,
		"engine":  s.engine.State(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	maxPosts, maxEngagements := s.quota.Limits()
	summary := report.Summarize(s.state.Snapshot(), s.now(), maxPosts, maxEngagements)

	s.provMu.Lock()
	provisioning := s.provisioning
	s.provMu.Unlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"engine":       s.engine.State(),
		"provisioning": provisioning,
		"summary":      summary,
	})
}

func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	events := s.recorder.List(limit)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"events": events,
		"count":  len(events),
	})
}

func (s *Server) handleCreateAccounts(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Count <= 0 {
		req.Count = s.cfg.AccountsToCreate
	}
	if req.Count > maxProvisionBatch {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("count must be at most %d", maxProvisionBatch))
		return
	}

	s.provMu.Lock()
	if s.provisioning {
		s.provMu.Unlock()
		writeError(w, http.StatusConflict, "provisioning already in progress")
		return
	}
	s.provisioning = true
	s.provMu.Unlock()

	s.bg.Add(1)
	go s.provision(req.Count)

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"ok":        true,
		"requested": req.Count,
	})
}

func (s *Server) provision(count int) {
	defer s.bg.Done()
	defer func() {
		s.provMu.Lock()
		s.provisioning = false
		s.provMu.Unlock()
	}()

	res := s.provisioner.CreateAccounts(s.baseCtx, count)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	msg := fmt.Sprintf("civicsim provisioning: %d created, %d failed", res.SuccessCount, res.ErrorCount)
	if err := s.notifier.Notify(ctx, msg); err != nil {
		s.logger.Warn("operator notify failed", zap.Error(err))
	}
}

func (s *Server) signAdminToken(subject string) (string, time.Time, error) {
	now := s.now().UTC()
	expiresAt := now.Add(12 * time.Hour)
	claims := jwt.MapClaims{
		"sub": subject,
		"exp": expiresAt.Unix(),
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		parsed, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
			return []byte(s.cfg.JWTSecret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil || !parsed.Valid {
			writeError(w, http.StatusUnauthorized, "invalid admin token")
			return
		}
		claims, ok := parsed.Claims.(jwt.MapClaims)
		if !ok {
			writeError(w, http.StatusUnauthorized, "invalid admin claims")
			return
		}
		sub, _ := claims["sub"].(string)
		ctx := context.WithValue(r.Context(), contextKeyAdminSubject, sub)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func bearerToken(header string) string {
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func parseInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func decodeJSON(r *http.Request, target interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(target)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
