package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/models"
	"github.com/ArowuTest/bridgetunes-rewards-backend/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondErrorStatuses(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{services.ErrRewardNotFound, http.StatusNotFound, "REWARD_NOT_FOUND"},
		{services.ErrInsufficientPoints, http.StatusUnprocessableEntity, "INSUFFICIENT_POINTS"},
		{services.ErrDemoRestricted, http.StatusForbidden, "DEMO_RESTRICTED"},
		{services.ErrAlreadyParticipated, http.StatusConflict, "ALREADY_PARTICIPATED"},
		{services.ErrInvalidOption, http.StatusBadRequest, "INVALID_OPTION"},
		{services.ErrPaymentFailed, http.StatusBadGateway, "PAYMENT_FAILED"},
		{services.ErrInvalidToken, http.StatusUnauthorized, "INVALID_TOKEN"},
		{fmt.Errorf("wrapped: %w", services.ErrOutOfStock), http.StatusUnprocessableEntity, "OUT_OF_STOCK"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			respondError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.code, errorCode(t, w))
		})
	}
}

func TestRegisterAndLogin(t *testing.T) {
	h := newHarness(t)

	w := h.do(http.MethodPost, "/auth/register", nil, gin.H{"name": "Ada", "email": "Ada@Example.com", "password": "secret1"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var registered models.AuthResponse
	decode(t, w, &registered)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "ada@example.com", registered.User.Email)
	assert.Equal(t, models.SubscriptionDemo, registered.User.SubscriptionStatus)

	w = h.do(http.MethodPost, "/auth/register", nil, gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/auth/register", nil, gin.H{"name": "Ada", "email": "not-an-email", "password": "secret1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, "/auth/login", nil, gin.H{"email": "ada@example.com", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = h.do(http.MethodPost, "/auth/login", nil, gin.H{"email": "ada@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRedeemReward(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin
	user := h.createUser(models.SubscriptionSubscribed)
	h.fund(user.ID, 1000)

	w := h.do(http.MethodPost, "/admin/rewards", admin, gin.H{
		"name": "Cinema Ticket", "category": "Entertainment", "pointsRequired": 300, "stock": 5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reward models.Reward
	decode(t, w, &reward)
	assert.Equal(t, "entertainment", reward.Category)
	assert.True(t, reward.IsActive)

	w = h.do(http.MethodGet, "/rewards?category=ENTERTAINMENT", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed []models.Reward
	decode(t, w, &listed)
	assert.Len(t, listed, 1)

	w = h.do(http.MethodPost, "/rewards/"+reward.ID.Hex()+"/redeem", user, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.RedemptionResult
	decode(t, w, &result)
	assert.Equal(t, int64(700), result.Balance.Total)
	assert.NotEmpty(t, result.UserReward.RedemptionCode)

	w = h.do(http.MethodGet, "/rewards/"+reward.ID.Hex(), user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &reward)
	assert.Equal(t, 4, reward.Stock)

	w = h.do(http.MethodPost, "/me/rewards/"+result.UserReward.ID.Hex()+"/use", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = h.do(http.MethodPost, "/me/rewards/"+result.UserReward.ID.Hex()+"/use", user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestRedeemRejections(t *testing.T) {
	h := newHarness(t)
	reward, err := h.rewards.CreateReward(h.ctx, &models.Reward{
		Name: "Shopping Voucher", Category: "shopping", PointsRequired: 500, Stock: 1, IsActive: true,
	})
	require.NoError(t, err)

	demo := h.createUser(models.SubscriptionDemo)
	h.fund(demo.ID, 1000)
	w := h.do(http.MethodPost, "/rewards/"+reward.ID.Hex()+"/redeem", demo, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "DEMO_RESTRICTED", errorCode(t, w))

	poor := h.createUser(models.SubscriptionSubscribed)
	h.fund(poor.ID, 100)
	w = h.do(http.MethodPost, "/rewards/"+reward.ID.Hex()+"/redeem", poor, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "INSUFFICIENT_POINTS", errorCode(t, w))

	w = h.do(http.MethodPost, "/rewards/not-an-id/redeem", poor, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/rewards", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBalanceAndTransactions(t *testing.T) {
	h := newHarness(t)
	user := h.createUser(models.SubscriptionSubscribed)
	for i := 0; i < 3; i++ {
		h.fund(user.ID, 100)
	}

	w := h.do(http.MethodGet, "/points/balance", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var balance models.PointBalance
	decode(t, w, &balance)
	assert.Equal(t, int64(300), balance.Total)
	assert.Equal(t, int64(300), balance.Real)

	w = h.do(http.MethodGet, "/points/transactions?page=1&limit=2", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var page struct {
		Transactions []models.PointTransaction `json:"transactions"`
		Total        int64                     `json:"total"`
		Limit        int                       `json:"limit"`
	}
	decode(t, w, &page)
	assert.Len(t, page.Transactions, 2)
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, 2, page.Limit)
}

func TestGrantPoints(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin
	user := h.createUser(models.SubscriptionDemo)

	w := h.do(http.MethodPost, "/admin/points/grant", admin, gin.H{"userId": user.ID.Hex(), "amount": 250, "reason": "goodwill"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = h.do(http.MethodPost, "/admin/points/grant", admin, gin.H{"userId": "bogus", "amount": 250})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodGet, "/points/balance", user, nil)
	var balance models.PointBalance
	decode(t, w, &balance)
	assert.Equal(t, int64(250), balance.Total)
	assert.Equal(t, int64(250), balance.Demo)
}

func TestRaffleParticipateAndDraw(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin
	user := h.createUser(models.SubscriptionSubscribed)
	h.fund(user.ID, 500)

	w := h.do(http.MethodPost, "/admin/raffles", admin, gin.H{
		"name": "Weekend Raffle", "prize": "Smartphone", "requiredPoints": 200,
		"endDate": time.Now().Add(time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var raffle models.Raffle
	decode(t, w, &raffle)

	w = h.do(http.MethodPost, "/raffles/"+raffle.ID.Hex()+"/participate", user, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.ParticipationResult
	decode(t, w, &result)
	assert.Equal(t, int64(300), result.Balance.Total)

	w = h.do(http.MethodPost, "/raffles/"+raffle.ID.Hex()+"/participate", user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodPost, "/admin/raffles/"+raffle.ID.Hex()+"/draw", admin, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestSurveySubmission(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin
	user := h.createUser(models.SubscriptionDemo)

	w := h.do(http.MethodPost, "/admin/surveys", admin, gin.H{
		"title":        "Listening Habits",
		"rewardPoints": 50,
		"questions": []gin.H{
			{"text": "Favourite genre?", "type": models.QuestionSingleChoice, "options": []string{"Afrobeats", "Gospel"}, "required": true},
			{"text": "Rate the app", "type": models.QuestionRating, "required": true},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var survey models.Survey
	decode(t, w, &survey)
	require.Len(t, survey.Questions, 2)

	answers := gin.H{"answers": []gin.H{
		{"questionId": survey.Questions[0].ID, "values": []string{"Gospel"}},
		{"questionId": survey.Questions[1].ID, "values": []string{"9"}},
	}}
	w = h.do(http.MethodPost, "/surveys/"+survey.ID.Hex()+"/responses", user, answers)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	answers["answers"].([]gin.H)[1]["values"] = []string{"4"}
	w = h.do(http.MethodPost, "/surveys/"+survey.ID.Hex()+"/responses", user, answers)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var submission services.SurveySubmission
	decode(t, w, &submission)
	assert.Equal(t, int64(50), submission.Balance.Total)

	w = h.do(http.MethodPost, "/surveys/"+survey.ID.Hex()+"/responses", user, answers)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodGet, "/surveys", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summaries []struct {
		ID        string `json:"id"`
		Completed bool   `json:"completed"`
	}
	decode(t, w, &summaries)
	require.Len(t, summaries, 1)
	assert.True(t, summaries[0].Completed)
}

func TestTriviaAnswer(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin
	user := h.createUser(models.SubscriptionSubscribed)

	w := h.do(http.MethodPost, "/admin/trivia/questions", admin, gin.H{
		"category": "Music", "question": "Keys on a piano?", "options": []string{"66", "88"}, "correctIndex": 1, "points": 20,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		Question     models.TriviaQuestion `json:"question"`
		CorrectIndex int                   `json:"correctIndex"`
	}
	decode(t, w, &created)
	assert.Equal(t, 1, created.CorrectIndex)
	questionPath := "/trivia/questions/" + created.Question.ID.Hex() + "/answer"

	w = h.do(http.MethodGet, "/trivia/questions?category=music", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "correctIndex")

	w = h.do(http.MethodPost, questionPath, user, gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPost, questionPath, user, gin.H{"selectedIndex": 5})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "INVALID_OPTION", errorCode(t, w))

	w = h.do(http.MethodPost, questionPath, user, gin.H{"selectedIndex": 1})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var result models.TriviaResult
	decode(t, w, &result)
	assert.True(t, result.Answer.IsCorrect)
	assert.Equal(t, int64(20), result.Balance.Total)

	w = h.do(http.MethodPost, questionPath, user, gin.H{"selectedIndex": 0})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = h.do(http.MethodGet, "/trivia/stats", user, nil)
	var stats models.TriviaStats
	decode(t, w, &stats)
	assert.Equal(t, 1, stats.Correct)
}

func TestPackagePurchase(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin
	user := h.createUser(models.SubscriptionSubscribed)

	w := h.do(http.MethodPost, "/admin/packages", admin, gin.H{"name": "Value", "points": 1000, "bonusPoints": 100, "price": 1000})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var pkg models.PointPackage
	decode(t, w, &pkg)
	assert.Equal(t, "NGN", pkg.Currency)

	w = h.do(http.MethodPost, "/packages/"+pkg.ID.Hex()+"/purchase", user, nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var result services.PurchaseResult
	decode(t, w, &result)
	assert.Equal(t, models.PurchaseStatus("COMPLETED"), result.Purchase.Status)
	assert.Equal(t, int64(1100), result.Balance.Purchased)

	demo := h.createUser(models.SubscriptionDemo)
	w = h.do(http.MethodPost, "/packages/"+pkg.ID.Hex()+"/purchase", demo, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = h.do(http.MethodGet, "/me/purchases", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var purchases []models.Purchase
	decode(t, w, &purchases)
	assert.Len(t, purchases, 1)
}

func TestNotificationInbox(t *testing.T) {
	h := newHarness(t)
	user := h.createUser(models.SubscriptionSubscribed)
	for i := 0; i < 2; i++ {
		_, err := h.notifications.Notify(h.ctx, user.ID, "SYSTEM", "Hello", fmt.Sprintf("message %d", i), nil)
		require.NoError(t, err)
	}

	w := h.do(http.MethodGet, "/notifications/unread-count", user, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count struct {
		Count int64 `json:"count"`
	}
	decode(t, w, &count)
	assert.Equal(t, int64(2), count.Count)

	w = h.do(http.MethodGet, "/notifications", user, nil)
	var notifications []models.Notification
	decode(t, w, &notifications)
	require.Len(t, notifications, 2)

	w = h.do(http.MethodPost, "/notifications/"+notifications[0].ID.Hex()+"/read", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	other := h.createUser(models.SubscriptionSubscribed)
	w = h.do(http.MethodDelete, "/notifications/"+notifications[1].ID.Hex(), other, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = h.do(http.MethodGet, "/notifications?unread=true", user, nil)
	decode(t, w, &notifications)
	assert.Len(t, notifications, 1)

	w = h.do(http.MethodPost, "/notifications/read-all", user, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = h.do(http.MethodDelete, "/notifications/"+notifications[0].ID.Hex(), user, nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestSystemSettings(t *testing.T) {
	h := newHarness(t)
	admin := h.createUser(models.SubscriptionSubscribed)
	admin.Role = models.RoleAdmin

	w := h.do(http.MethodGet, "/admin/settings", admin, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var settings models.SystemSettings
	decode(t, w, &settings)
	assert.Equal(t, "MOCK", settings.NotificationGateway)
	assert.Equal(t, 7, settings.DemoDurationDays)

	w = h.do(http.MethodPut, "/admin/settings", admin, gin.H{"notificationGateway": "carrier-pigeon", "demoDurationDays": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = h.do(http.MethodPut, "/admin/settings", admin, gin.H{"notificationGateway": "webhook", "demoDurationDays": 14})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &settings)
	assert.Equal(t, "WEBHOOK", settings.NotificationGateway)
	assert.Equal(t, "tester@example.com", settings.UpdatedBy)
}
