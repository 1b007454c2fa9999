package services

import "errors"

// Kind classifies a business error so transports can map it to a status
type Kind int

const (
	KindNotFound Kind = iota + 1
	KindPrecondition
	KindForbidden
	KindConflict
	KindInvalid
	KindUnavailable
	KindUnauthorized
)

// Error is a business-rule failure with a stable machine-readable code
type Error struct {
	Code    string
	Message string
	Kind    Kind
}

func (e *Error) Error() string { return e.Message }

func newError(kind Kind, code, message string) *Error {
	return &Error{Code: code, Message: message, Kind: kind}
}

// KindOf returns the Kind of err, or 0 when err is not a business error
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// Ledger errors
var (
	ErrInvalidAmount      = newError(KindInvalid, "INVALID_AMOUNT", "amount must be greater than zero")
	ErrInsufficientPoints = newError(KindPrecondition, "INSUFFICIENT_POINTS", "insufficient points")
	ErrHoldNotFound       = newError(KindNotFound, "HOLD_NOT_FOUND", "point hold not found")
	ErrHoldNotActive      = newError(KindConflict, "HOLD_NOT_ACTIVE", "point hold is already settled")
)

// Access errors
var (
	ErrUserNotFound         = newError(KindNotFound, "USER_NOT_FOUND", "user not found")
	ErrAccessDenied         = newError(KindForbidden, "ACCESS_DENIED", "your demo period has ended, subscribe to continue")
	ErrDemoRestricted       = newError(KindForbidden, "DEMO_RESTRICTED", "demo users cannot perform this action, subscribe to continue")
	ErrSubscriptionRequired = newError(KindForbidden, "SUBSCRIPTION_REQUIRED", "an active subscription is required")
	ErrAlreadySubscribed    = newError(KindConflict, "ALREADY_SUBSCRIBED", "user is already subscribed")
	ErrNotSubscribed        = newError(KindConflict, "NOT_SUBSCRIBED", "user has no active subscription")
)

// Reward errors
var (
	ErrRewardNotFound     = newError(KindNotFound, "REWARD_NOT_FOUND", "reward not found")
	ErrRewardInactive     = newError(KindPrecondition, "REWARD_INACTIVE", "reward is not available")
	ErrRewardExpired      = newError(KindPrecondition, "REWARD_EXPIRED", "reward has expired")
	ErrOutOfStock         = newError(KindPrecondition, "OUT_OF_STOCK", "reward is out of stock")
	ErrUserRewardNotFound = newError(KindNotFound, "USER_REWARD_NOT_FOUND", "redeemed reward not found")
	ErrRewardAlreadyUsed  = newError(KindConflict, "REWARD_ALREADY_USED", "reward has already been used")
	ErrRedemptionExpired  = newError(KindPrecondition, "REDEMPTION_EXPIRED", "redemption code has expired")
	ErrInvalidReward      = newError(KindInvalid, "INVALID_REWARD", "reward requires a name, a category and positive points")
)

// Raffle errors
var (
	ErrRaffleNotFound        = newError(KindNotFound, "RAFFLE_NOT_FOUND", "raffle not found")
	ErrRaffleInactive        = newError(KindPrecondition, "RAFFLE_INACTIVE", "raffle is not active")
	ErrRaffleExpired         = newError(KindPrecondition, "RAFFLE_EXPIRED", "raffle has ended")
	ErrRaffleNotStarted      = newError(KindPrecondition, "RAFFLE_NOT_STARTED", "raffle has not started yet")
	ErrAlreadyParticipated   = newError(KindConflict, "ALREADY_PARTICIPATED", "you have already entered this raffle")
	ErrRaffleFull            = newError(KindPrecondition, "RAFFLE_FULL", "raffle has reached its participant limit")
	ErrRaffleNotEnded        = newError(KindPrecondition, "RAFFLE_NOT_ENDED", "raffle is still open")
	ErrRaffleAlreadyDrawn    = newError(KindConflict, "RAFFLE_ALREADY_DRAWN", "raffle has already been drawn")
	ErrParticipationNotFound = newError(KindNotFound, "PARTICIPATION_NOT_FOUND", "participation not found")
	ErrInvalidRaffle         = newError(KindInvalid, "INVALID_RAFFLE", "raffle requires a name, positive points and an end date after its start")
)

// Survey errors
var (
	ErrSurveyNotFound         = newError(KindNotFound, "SURVEY_NOT_FOUND", "survey not found")
	ErrSurveyInactive         = newError(KindPrecondition, "SURVEY_INACTIVE", "survey is not active")
	ErrSurveyExpired          = newError(KindPrecondition, "SURVEY_EXPIRED", "survey has expired")
	ErrSurveyAlreadyCompleted = newError(KindConflict, "SURVEY_ALREADY_COMPLETED", "you have already completed this survey")
	ErrInvalidSurveyAnswer    = newError(KindInvalid, "INVALID_SURVEY_ANSWER", "survey answers are incomplete or invalid")
	ErrInvalidSurvey          = newError(KindInvalid, "INVALID_SURVEY", "survey requires a title and valid questions")
)

// Trivia errors
var (
	ErrQuestionNotFound = newError(KindNotFound, "QUESTION_NOT_FOUND", "trivia question not found")
	ErrAlreadyAnswered  = newError(KindConflict, "ALREADY_ANSWERED", "you have already answered this question")
	ErrInvalidOption    = newError(KindInvalid, "INVALID_OPTION", "selected option does not exist")
	ErrInvalidQuestion  = newError(KindInvalid, "INVALID_QUESTION", "question requires text, at least two options and a valid answer")
)

// Purchase errors
var (
	ErrPackageNotFound = newError(KindNotFound, "PACKAGE_NOT_FOUND", "point package not found")
	ErrPaymentFailed   = newError(KindUnavailable, "PAYMENT_FAILED", "payment could not be completed")
	ErrInvalidPackage  = newError(KindInvalid, "INVALID_PACKAGE", "package requires a name, positive points and a positive price")
)

// Notification errors
var (
	ErrNotificationNotFound = newError(KindNotFound, "NOTIFICATION_NOT_FOUND", "notification not found")
)

// Auth and settings errors
var (
	ErrEmailTaken         = newError(KindConflict, "EMAIL_TAKEN", "an account with this email already exists")
	ErrInvalidCredentials = newError(KindUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
	ErrInvalidToken       = newError(KindUnauthorized, "INVALID_TOKEN", "invalid or expired token")
	ErrInvalidSettings    = newError(KindInvalid, "INVALID_SETTINGS", "unknown notification gateway or invalid demo duration")
)
