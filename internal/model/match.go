package model

// ExchangeMatch pairs a wishlist entry with a listing that may satisfy it.
// Reverse is set when the wish belongs to another user and the item to the
// requesting user.
type ExchangeMatch struct {
	Wish    WishlistItem `json:"wishlist_item"`
	Item    Item         `json:"available_item"`
	Score   float64      `json:"match_score"`
	Reasons []string     `json:"match_reasons"`
	Reverse bool         `json:"is_reverse_match"`
}

type RecommendationReason string

const (
	ReasonCurrentTerm RecommendationReason = "CURRENT_TERM"
	ReasonPreviewTerm RecommendationReason = "PREVIEW_TERM"
	ReasonCETSeason   RecommendationReason = "CET_SEASON"
)

type RecommendedItem struct {
	Item    Item                   `json:"item"`
	Reasons []RecommendationReason `json:"reasons"`
}

// Label is one image-labeling result.
type Label struct {
	Keyword    string  `json:"keyword"`
	Root       string  `json:"root"`
	Confidence float64 `json:"confidence"`
}

type RecommendedProduct struct {
	Item    Item     `json:"item"`
	Score   float64  `json:"score"`
	Reasons []string `json:"reasons"`
}
