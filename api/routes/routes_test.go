package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/config"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/handlers"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/metrics"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/memory"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/seed"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/payments"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T, burst int) (*gin.Engine, *services.AuthService) {
	t.Helper()
	cfg := &config.Config{
		Server:    config.ServerConfig{AllowedHosts: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{RequestsPerMinute: 1, Burst: burst},
	}
	repos := memory.NewRegistry()
	m := metrics.New()
	processor := payments.NewClient("", "", true)

	settings := services.NewSettingsService(repos.Settings, gateway.Mock, 7)
	notifications := services.NewNotificationService(repos.Notifications, settings, m, gateway.NewMockGateway())
	ledger := services.NewLedgerService(repos, m)
	auth := services.NewAuthService(repos.Users, settings, "routes-secret", 3600)
	rewards := services.NewRewardService(repos, ledger, notifications, m, 30)
	raffles := services.NewRaffleService(repos, ledger, notifications, m)
	surveys := services.NewSurveyService(repos, ledger, notifications)
	trivia := services.NewTriviaService(repos, ledger)
	purchases := services.NewPurchaseService(repos, ledger, processor, notifications)
	users := services.NewUserService(repos.Users, ledger, processor, notifications, 1000, "NGN")

	_, err := seed.Catalog(context.Background(), repos.Rewards, seed.Services{
		Rewards: rewards, Raffles: raffles, Surveys: surveys, Trivia: trivia, Purchases: purchases,
	}, time.Now())
	require.NoError(t, err)

	router := SetupRouter(cfg, HandlerDependencies{
		AuthHandler:           handlers.NewAuthHandler(auth),
		UserHandler:           handlers.NewUserHandler(users, ledger),
		RewardHandler:         handlers.NewRewardHandler(rewards),
		RaffleHandler:         handlers.NewRaffleHandler(raffles),
		SurveyHandler:         handlers.NewSurveyHandler(surveys),
		TriviaHandler:         handlers.NewTriviaHandler(trivia),
		PurchaseHandler:       handlers.NewPurchaseHandler(purchases),
		NotificationHandler:   handlers.NewNotificationHandler(notifications),
		SystemSettingsHandler: handlers.NewSystemSettingsHandler(settings),
		TokenParser:           auth,
		Metrics:               m,
	})
	return router, auth
}

func call(router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, router *gin.Engine, email string) models.AuthResponse {
	t.Helper()
	w := call(router, http.MethodPost, "/api/v1/auth/register", "", gin.H{"name": "Route User", "email": email, "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	router, _ := newTestRouter(t, 5)

	w := call(router, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	w = call(router, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "rewards_http_requests_total"))
}

func TestDemoUserJourney(t *testing.T) {
	router, _ := newTestRouter(t, 5)
	resp := register(t, router, "journey@example.com")

	w := call(router, http.MethodGet, "/api/v1/me/access", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status models.AccessStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &status))
	assert.True(t, status.IsDemoUser)
	assert.True(t, status.CanViewRewards)
	assert.False(t, status.CanRedeem)

	w = call(router, http.MethodGet, "/api/v1/rewards", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var rewards []models.Reward
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rewards))
	require.NotEmpty(t, rewards)

	w = call(router, http.MethodPost, "/api/v1/rewards/"+rewards[0].ID.Hex()+"/redeem", resp.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = call(router, http.MethodPost, "/api/v1/me/subscription", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = call(router, http.MethodGet, "/api/v1/notifications/unread-count", resp.Token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"count":1}`, w.Body.String())
}

func TestAuthAndAdminGuards(t *testing.T) {
	router, auth := newTestRouter(t, 5)
	resp := register(t, router, "plain@example.com")

	w := call(router, http.MethodGet, "/api/v1/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(router, http.MethodGet, "/api/v1/me", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = call(router, http.MethodGet, "/api/v1/admin/settings", resp.Token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, auth.EnsureAdmin(context.Background(), "admin@example.com", "admin-pass"))
	w = call(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "admin@example.com", "password": "admin-pass"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var admin models.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &admin))

	w = call(router, http.MethodGet, "/api/v1/admin/settings", admin.Token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuthRateLimit(t *testing.T) {
	router, _ := newTestRouter(t, 2)

	for i := 0; i < 2; i++ {
		w := call(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "nobody@example.com", "password": "whatever"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	}
	w := call(router, http.MethodPost, "/api/v1/auth/login", "", gin.H{"email": "nobody@example.com", "password": "whatever"})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _ := newTestRouter(t, 5)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/rewards", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))
}
