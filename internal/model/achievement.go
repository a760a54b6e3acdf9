package model

import "time"

type AchievementType string

const (
	AchievementFirstPost         AchievementType = "first_post"
	AchievementPost5             AchievementType = "post_5"
	AchievementPost10            AchievementType = "post_10"
	AchievementPost20            AchievementType = "post_20"
	AchievementFirstMessage      AchievementType = "first_message"
	AchievementMessage10         AchievementType = "message_10"
	AchievementMessage50         AchievementType = "message_50"
	AchievementFirstWishlist     AchievementType = "first_wishlist"
	AchievementWishlist5         AchievementType = "wishlist_5"
	AchievementWishlist10        AchievementType = "wishlist_10"
	AchievementFirstExchange     AchievementType = "first_exchange"
	AchievementExchange5         AchievementType = "exchange_5"
	AchievementExchange10        AchievementType = "exchange_10"
	AchievementPriceAlert        AchievementType = "price_alert"
	AchievementPriceAlertSuccess AchievementType = "price_alert_success"
	AchievementStoryTeller       AchievementType = "story_teller"
	AchievementStory5            AchievementType = "story_5"
	AchievementCategoryExpert    AchievementType = "category_expert"
)

type UserAchievement struct {
	UserID     string          `json:"user_id"`
	Type       AchievementType `json:"type"`
	Progress   int             `json:"progress"`
	Target     int             `json:"target"`
	UnlockedAt *time.Time      `json:"unlocked_at,omitempty"`
}

func (a UserAchievement) Unlocked() bool {
	return a.Progress >= a.Target
}
