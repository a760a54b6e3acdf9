package match

import (
	"sort"

	"campusmarket/trading/internal/model"
)

const (
	DefaultMinScore       = 30
	DefaultMaxResults     = 50
	DefaultWishMaxResults = 20
)

// Options bounds a match run. MaxResults <= 0 means unlimited.
type Options struct {
	MinScore   float64
	MaxResults int
}

// FindMatches pairs the user's wishes with other users' items, and other
// users' wishes with the user's own items (Reverse). Results are sorted by
// score, highest first.
func FindMatches(uid string, wishes []model.WishlistItem, items []model.Item, opts Options) []model.ExchangeMatch {
	var mine, theirs []model.Item
	for _, it := range items {
		if it.OwnerUID == uid {
			mine = append(mine, it)
		} else {
			theirs = append(theirs, it)
		}
	}

	var matches []model.ExchangeMatch
	for _, w := range wishes {
		if w.UserID == uid {
			matches = appendMatches(matches, w, theirs, opts.MinScore, false)
		} else if len(mine) > 0 {
			matches = appendMatches(matches, w, mine, opts.MinScore, true)
		}
	}
	return rank(matches, opts.MaxResults)
}

// MatchWish scores a single wish against items not owned by its user.
func MatchWish(w model.WishlistItem, items []model.Item, opts Options) []model.ExchangeMatch {
	var candidates []model.Item
	for _, it := range items {
		if it.OwnerUID != w.UserID {
			candidates = append(candidates, it)
		}
	}
	return rank(appendMatches(nil, w, candidates, opts.MinScore, false), opts.MaxResults)
}

func appendMatches(dst []model.ExchangeMatch, w model.WishlistItem, items []model.Item, minScore float64, reverse bool) []model.ExchangeMatch {
	for _, it := range items {
		score := Score(w, it)
		if score < minScore {
			continue
		}
		dst = append(dst, model.ExchangeMatch{
			Wish:    w,
			Item:    it,
			Score:   score,
			Reasons: Reasons(w, it, score),
			Reverse: reverse,
		})
	}
	return dst
}

func rank(matches []model.ExchangeMatch, maxResults int) []model.ExchangeMatch {
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if maxResults > 0 && len(matches) > maxResults {
		matches = matches[:maxResults]
	}
	if matches == nil {
		return []model.ExchangeMatch{}
	}
	return matches
}
