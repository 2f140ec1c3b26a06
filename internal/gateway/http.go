package gateway

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"

	"github.com/mpetrov/chipsync/internal/payout"
	"github.com/mpetrov/chipsync/internal/services"
)

// syncHTTPResponse is the HTTP rendering of a handled action: the prefixed
// data message plus any notification, both omitted when empty.
type syncHTTPResponse struct {
	Message      string `json:"message,omitempty"`
	Notification string `json:"notification,omitempty"`
}

type httpServer struct {
	gw        *Gateway
	admin     *services.AdminService
	engine    *payout.Engine
	jwtSecret string
	log       zerolog.Logger
}

// NewRouter builds the HTTP surface: the sync endpoint as an alternate
// transport for the web app, a payout evaluation endpoint for callers that
// want the multiplier computed server-side, a health check, and a
// JWT-guarded admin reset. An empty jwtSecret disables the admin route
// entirely.
func NewRouter(gw *Gateway, admin *services.AdminService, engine *payout.Engine, jwtSecret string, log zerolog.Logger) chi.Router {
	s := &httpServer{
		gw:        gw,
		admin:     admin,
		engine:    engine,
		jwtSecret: jwtSecret,
		log:       log.With().Str("component", "http").Logger(),
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.Recoverer)

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	router.Post("/v1/sync/{userID}", s.handleSync)
	router.Post("/v1/payout/evaluate", s.handleEvaluate)
	if jwtSecret != "" {
		router.Post("/v1/admin/reset", s.handleAdminReset)
	}
	return router
}

type evaluateRequest struct {
	Symbols []payout.Symbol `json:"symbols"`
}

type evaluateResponse struct {
	Multiplier string `json:"multiplier"`
}

func (s *httpServer) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid body", http.StatusBadRequest)
		return
	}
	if len(req.Symbols) != payout.SpinLength {
		http.Error(w, "a spin has exactly 3 symbols", http.StatusBadRequest)
		return
	}

	multiplier := s.engine.Evaluate(req.Symbols)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(evaluateResponse{Multiplier: multiplier.String()})
}

func (s *httpServer) handleSync(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "failed to read body", http.StatusBadRequest)
		return
	}

	dataMsg, notification := s.gw.OnIncomingAction(r.Context(), userID, string(body))
	if dataMsg == "" && notification == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(syncHTTPResponse{
		Message:      dataMsg,
		Notification: notification,
	})
}

func (s *httpServer) handleAdminReset(w http.ResponseWriter, r *http.Request) {
	callerID, err := s.callerFromToken(r)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	count, err := s.admin.ResetBalances(r.Context(), callerID)
	if errors.Is(err, services.ErrNotAuthorized) {
		http.Error(w, "forbidden", http.StatusForbidden)
		return
	}
	if err != nil {
		s.log.Error().Err(err).Msg("balance reset failed")
		http.Error(w, "reset failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"accounts_reset": count})
}

// callerFromToken extracts the calling user ID from a Bearer JWT signed
// with the shared secret. Authorization (admin or not) stays with the
// service; this only authenticates who is asking.
func (s *httpServer) callerFromToken(r *http.Request) (int64, error) {
	header := r.Header.Get("Authorization")
	tokenStr, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return 0, errors.New("missing bearer token")
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("unexpected claims type")
	}
	userID, ok := claims["user_id"].(float64)
	if !ok {
		return 0, errors.New("missing user_id claim")
	}
	return int64(userID), nil
}
