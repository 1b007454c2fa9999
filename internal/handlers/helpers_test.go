package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/middleware"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/repositories/memory"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/gateway"
	"github.com/ArowuTest/bridgetunes-rewards-backend/pkg/payments"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	testUserHeader = "X-Test-User"
	testRoleHeader = "X-Test-Role"
)

// fakeAuth trusts the test headers in place of a bearer token
func fakeAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := primitive.ObjectIDFromHex(c.GetHeader(testUserHeader))
		if err != nil {
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Set(middleware.ContextUserID, id)
		c.Set(middleware.ContextUserRole, c.GetHeader(testRoleHeader))
		c.Set(middleware.ContextUserEmail, "tester@example.com")
		c.Next()
	}
}

type harness struct {
	t      *testing.T
	ctx    context.Context
	repos  *repositories.Registry
	router *gin.Engine

	settings      *services.SettingsService
	notifications *services.NotificationService
	ledger        *services.LedgerService
	rewards       *services.RewardService
	raffles       *services.RaffleService
	surveys       *services.SurveyService
	trivia        *services.TriviaService
	purchases     *services.PurchaseService
	users         *services.UserService
	auth          *services.AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{t: t, ctx: context.Background(), repos: memory.NewRegistry()}
	processor := payments.NewClient("", "", true)

	h.settings = services.NewSettingsService(h.repos.Settings, gateway.Mock, 7)
	h.notifications = services.NewNotificationService(h.repos.Notifications, h.settings, nil, gateway.NewMockGateway())
	h.ledger = services.NewLedgerService(h.repos, nil)
	h.rewards = services.NewRewardService(h.repos, h.ledger, h.notifications, nil, 30)
	h.raffles = services.NewRaffleService(h.repos, h.ledger, h.notifications, nil)
	h.surveys = services.NewSurveyService(h.repos, h.ledger, h.notifications)
	h.trivia = services.NewTriviaService(h.repos, h.ledger)
	h.purchases = services.NewPurchaseService(h.repos, h.ledger, processor, h.notifications)
	h.users = services.NewUserService(h.repos.Users, h.ledger, processor, h.notifications, 1000, "NGN")
	h.auth = services.NewAuthService(h.repos.Users, h.settings, "handler-secret", 3600)

	authHandler := NewAuthHandler(h.auth)
	userHandler := NewUserHandler(h.users, h.ledger)
	rewardHandler := NewRewardHandler(h.rewards)
	raffleHandler := NewRaffleHandler(h.raffles)
	surveyHandler := NewSurveyHandler(h.surveys)
	triviaHandler := NewTriviaHandler(h.trivia)
	purchaseHandler := NewPurchaseHandler(h.purchases)
	notificationHandler := NewNotificationHandler(h.notifications)
	settingsHandler := NewSystemSettingsHandler(h.settings)

	r := gin.New()
	r.POST("/auth/register", authHandler.Register)
	r.POST("/auth/login", authHandler.Login)

	a := r.Group("/", fakeAuth())
	a.GET("/me", userHandler.GetMe)
	a.POST("/me/subscription", userHandler.Subscribe)
	a.GET("/me/rewards", rewardHandler.ListUserRewards)
	a.POST("/me/rewards/:id/use", rewardHandler.UseReward)
	a.GET("/me/raffles/results", raffleHandler.CheckResults)
	a.GET("/me/purchases", purchaseHandler.ListPurchases)
	a.GET("/points/balance", userHandler.GetBalance)
	a.GET("/points/transactions", userHandler.GetTransactions)
	a.GET("/rewards", rewardHandler.ListRewards)
	a.GET("/rewards/:id", rewardHandler.GetReward)
	a.POST("/rewards/:id/redeem", rewardHandler.Redeem)
	a.GET("/raffles", raffleHandler.ListRaffles)
	a.POST("/raffles/:id/participate", raffleHandler.Participate)
	a.GET("/surveys", surveyHandler.ListSurveys)
	a.POST("/surveys/:id/responses", surveyHandler.Submit)
	a.GET("/trivia/questions", triviaHandler.ListQuestions)
	a.POST("/trivia/questions/:id/answer", triviaHandler.Answer)
	a.GET("/trivia/stats", triviaHandler.Stats)
	a.GET("/packages", purchaseHandler.ListPackages)
	a.POST("/packages/:id/purchase", purchaseHandler.Purchase)
	a.GET("/notifications", notificationHandler.List)
	a.GET("/notifications/unread-count", notificationHandler.UnreadCount)
	a.POST("/notifications/read-all", notificationHandler.MarkAllRead)
	a.POST("/notifications/:id/read", notificationHandler.MarkRead)
	a.DELETE("/notifications/:id", notificationHandler.Delete)
	a.POST("/admin/rewards", rewardHandler.CreateReward)
	a.PUT("/admin/rewards/:id", rewardHandler.UpdateReward)
	a.POST("/admin/raffles", raffleHandler.CreateRaffle)
	a.POST("/admin/raffles/:id/draw", raffleHandler.DrawRaffle)
	a.POST("/admin/surveys", surveyHandler.CreateSurvey)
	a.POST("/admin/trivia/questions", triviaHandler.CreateQuestion)
	a.POST("/admin/packages", purchaseHandler.CreatePackage)
	a.POST("/admin/points/grant", userHandler.GrantPoints)
	a.GET("/admin/settings", settingsHandler.GetSettings)
	a.PUT("/admin/settings", settingsHandler.UpdateSettings)
	h.router = r
	return h
}

func (h *harness) createUser(status models.SubscriptionStatus) *models.User {
	h.t.Helper()
	expires := time.Now().AddDate(0, 0, 7)
	user := &models.User{
		Email:              uuid.NewString() + "@example.com",
		Name:               "Handler User",
		Role:               models.RoleUser,
		SubscriptionStatus: status,
		CreatedAt:          time.Now(),
	}
	if status == models.SubscriptionDemo {
		user.DemoExpiresAt = &expires
	}
	require.NoError(h.t, h.repos.Users.Create(h.ctx, user))
	return user
}

func (h *harness) fund(userID primitive.ObjectID, amount int64) {
	h.t.Helper()
	_, err := h.ledger.Earn(h.ctx, userID, amount, "test funding", nil)
	require.NoError(h.t, err)
}

// do sends body as JSON on behalf of user; a nil user sends no identity
func (h *harness) do(method, path string, user *models.User, body interface{}) *httptest.ResponseRecorder {
	h.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(h.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != nil {
		req.Header.Set(testUserHeader, user.ID.Hex())
		req.Header.Set(testRoleHeader, user.Role)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorBody
	decode(t, w, &body)
	return body.Code
}
