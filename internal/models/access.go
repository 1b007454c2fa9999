package models

// AccessStatus is the derived demo/subscription view of a user at a point in time.
// It is never stored.
type AccessStatus struct {
	Status         SubscriptionStatus `json:"status"`
	IsDemoUser     bool               `json:"isDemoUser"`
	IsExpiredDemo  bool               `json:"isExpiredDemo"`
	IsSubscribed   bool               `json:"isSubscribed"`
	DaysLeft       int                `json:"daysLeft"`
	CanViewRewards bool               `json:"canViewRewards"`
	CanViewRaffles bool               `json:"canViewRaffles"`
	CanViewSurveys bool               `json:"canViewSurveys"`
	CanRedeem      bool               `json:"canRedeem"`
	CanParticipate bool               `json:"canParticipate"`
	CanPurchase    bool               `json:"canPurchase"`
}
