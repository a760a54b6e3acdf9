package match

import (
	"math"
	"strings"

	"campusmarket/trading/internal/model"
)

// Component weights of Score; they sum to 100.
const (
	weightTitle       = 40
	weightDescription = 20
	weightPrice       = 30
	weightCategory    = 10
)

const (
	ReasonHigh            = "High match"
	ReasonGood            = "Good match"
	ReasonPossible        = "Possible match"
	ReasonPriceFits       = "Price fits"
	ReasonSimilarItem     = "Similar item"
	ReasonSameCategory    = "Same category"
	ReasonRelatedCategory = "Related category"
)

// PriceMatch scores how well price fits the wish's band. Zero bounds are
// open. With no band at all the score is a neutral 0.6.
func PriceMatch(w model.WishlistItem, price float64) float64 {
	lo, hi := w.MinPrice, w.MaxPrice
	if lo == 0 && hi == 0 {
		return 0.6
	}

	inRange := (lo == 0 || price >= lo) && (hi == 0 || price <= hi)
	if inRange {
		var mid float64
		switch {
		case lo > 0 && hi > 0:
			mid = (lo + hi) / 2
		case lo > 0:
			mid = lo * 1.5
		default:
			mid = hi * 0.7
		}
		return 1 - clamp(math.Abs(price-mid)/(mid*0.5), 0, 1)
	}

	var span float64
	switch {
	case lo > 0 && hi > 0:
		span = hi - lo
	case lo > 0:
		span = lo * 0.5
	default:
		span = hi * 0.3
	}

	var distance float64
	switch {
	case lo > 0 && price < lo:
		distance = lo - price
	case hi > 0 && price > hi:
		distance = price - hi
	}

	if distance < span {
		return 0.3 * (1 - distance/span)
	}
	return 0
}

// CategoryMatch scores the item against the wish's category. A wish without
// a category accepts anything.
func CategoryMatch(w model.WishlistItem, item model.Item) float64 {
	if w.Category == "" {
		return 1
	}
	wc := strings.ToLower(w.Category)
	switch {
	case item.Category != "" && item.Category == w.Category:
		return 1
	case item.Category != "" && strings.Contains(item.Category, w.Category):
		return 0.7
	case strings.Contains(strings.ToLower(item.Title), wc),
		strings.Contains(strings.ToLower(item.Description), wc):
		return 0.5
	}
	return 0
}

// Score rates item against w on a 0..100 scale.
func Score(w model.WishlistItem, item model.Item) float64 {
	s := weightTitle*TextSimilarity(w.Title, item.Title) +
		weightDescription*TextSimilarity(w.Description, item.Description) +
		weightPrice*PriceMatch(w, item.Price) +
		weightCategory*CategoryMatch(w, item)
	return clamp(s, 0, 100)
}

// Reasons explains a score in a few short labels, most important first.
func Reasons(w model.WishlistItem, item model.Item, score float64) []string {
	var reasons []string
	switch {
	case score > 70:
		reasons = append(reasons, ReasonHigh)
	case score > 50:
		reasons = append(reasons, ReasonGood)
	default:
		reasons = append(reasons, ReasonPossible)
	}

	if PriceMatch(w, item.Price) > 0.7 {
		reasons = append(reasons, ReasonPriceFits)
	}
	if TextSimilarity(w.Title, item.Title) > 0.5 {
		reasons = append(reasons, ReasonSimilarItem)
	}
	if w.Category != "" && item.Category != "" {
		switch {
		case item.Category == w.Category:
			reasons = append(reasons, ReasonSameCategory)
		case strings.Contains(item.Category, w.Category), strings.Contains(w.Category, item.Category):
			reasons = append(reasons, ReasonRelatedCategory)
		}
	}
	return reasons
}
