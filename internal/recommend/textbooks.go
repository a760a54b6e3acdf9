// Package recommend ranks listings for a student from their timetable, their
// wishlist and, for image search, recognised labels.
package recommend

import (
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"campusmarket/trading/internal/model"
)

const MaxTextbooks = 20

const (
	weightLow  = 0.3
	weightMid  = 0.6
	weightHigh = 1.0
)

var cetKeywords = []string{
	"四级", "六级", "四六级", "英语四级", "英语六级", "真题", "词汇", "听力",
	"cet-4", "cet4", "cet 4",
	"cet-6", "cet6", "cet 6",
	"college english test", "english exam", "english test",
	"vocabulary", "word list", "listening", "mock test",
}

// TextbookInput is everything a textbook ranking depends on. Items must
// already exclude the student's own listings.
type TextbookInput struct {
	Month    time.Month
	Term1    []model.Course
	Term2    []model.Course
	Items    []model.Item
	Wishlist []model.WishlistItem
}

type termWeights struct {
	term1, term2 float64
}

// weightsForMonth favours the term about to start or under way: term 2
// peaks in January and February, term 1 in July and August.
func weightsForMonth(m time.Month) termWeights {
	var w termWeights
	switch {
	case m <= time.February:
		w.term2 = weightHigh
	case m <= time.June:
		w.term2 = weightMid
	default:
		w.term2 = weightLow
	}
	switch {
	case m == time.July || m == time.August:
		w.term1 = weightHigh
	case m >= time.September:
		w.term1 = weightMid
	default:
		w.term1 = weightLow
	}
	return w
}

// IsCETSeason covers the run-up to both English test sittings.
func IsCETSeason(m time.Month) bool {
	return (m >= time.February && m <= time.May) || (m >= time.August && m <= time.November)
}

// courseKeywords collects distinct course names and codes.
func courseKeywords(courses []model.Course) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(k string, minLen int) {
		k = strings.TrimSpace(k)
		if utf8.RuneCountInString(k) < minLen {
			return
		}
		if _, ok := seen[k]; ok {
			return
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	for _, c := range courses {
		add(c.CourseNameCN, 2)
		add(c.CourseNameEN, 2)
		add(c.CourseCode, 1)
	}
	return out
}

func wishlistKeywords(wishes []model.WishlistItem) []string {
	var out []string
	for _, w := range wishes {
		for _, k := range []string{w.Title, w.Category, w.Description} {
			k = strings.TrimSpace(k)
			if utf8.RuneCountInString(k) >= 2 {
				out = append(out, k)
			}
		}
	}
	return out
}

// keywordScore is the share of keywords found in the item's text.
func keywordScore(item model.Item, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	text := strings.ToLower(item.Title + " " + item.Description + " " + item.Category)

	used := make(map[string]struct{})
	for _, raw := range keywords {
		k := strings.ToLower(strings.TrimSpace(raw))
		if utf8.RuneCountInString(k) < 2 {
			continue
		}
		if _, ok := used[k]; ok {
			continue
		}
		if strings.Contains(text, k) {
			used[k] = struct{}{}
		}
	}
	return min(float64(len(used))/float64(len(keywords)), 1)
}

// Textbooks ranks in.Items by relevance to the student's courses, the CET
// season and their wishlist, best first.
func Textbooks(in TextbookInput) []model.RecommendedItem {
	term1 := courseKeywords(in.Term1)
	term2 := courseKeywords(in.Term2)
	cet := IsCETSeason(in.Month)
	if len(term1) == 0 && len(term2) == 0 && !cet {
		return []model.RecommendedItem{}
	}

	weights := weightsForMonth(in.Month)
	linked := make(map[string]struct{})
	for _, w := range in.Wishlist {
		if w.ItemID != "" {
			linked[w.ItemID] = struct{}{}
		}
	}
	wishKeywords := wishlistKeywords(in.Wishlist)

	type scored struct {
		rec   model.RecommendedItem
		score float64
	}
	var ranked []scored
	for _, item := range in.Items {
		s1 := keywordScore(item, term1)
		s2 := keywordScore(item, term2)
		var sc float64
		if cet {
			sc = keywordScore(item, cetKeywords)
		}

		score := weights.term1*s1 + weights.term2*s2 + sc
		if _, ok := linked[item.ID]; ok {
			score += 0.5
		}
		score += 0.5 * keywordScore(item, wishKeywords)

		if score <= 0 {
			continue
		}
		ranked = append(ranked, scored{
			rec:   model.RecommendedItem{Item: item, Reasons: reasons(s1, s2, sc, weights)},
			score: score,
		})
	}

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	if len(ranked) > MaxTextbooks {
		ranked = ranked[:MaxTextbooks]
	}

	out := make([]model.RecommendedItem, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.rec)
	}
	return out
}

// reasons labels which term matched as current or upcoming, whichever
// weighs more this month.
func reasons(s1, s2, sc float64, w termWeights) []model.RecommendationReason {
	term1Current := w.term1 > w.term2
	var out []model.RecommendationReason
	has := func(r model.RecommendationReason) bool {
		for _, x := range out {
			if x == r {
				return true
			}
		}
		return false
	}

	if s1 > 0 {
		if term1Current {
			out = append(out, model.ReasonCurrentTerm)
		} else {
			out = append(out, model.ReasonPreviewTerm)
		}
	}
	if s2 > 0 {
		r := model.ReasonPreviewTerm
		if !term1Current {
			r = model.ReasonCurrentTerm
		}
		if !has(r) {
			out = append(out, r)
		}
	}
	if sc > 0 {
		out = append(out, model.ReasonCETSeason)
	}
	if out == nil {
		out = []model.RecommendationReason{}
	}
	return out
}

// ExcludeOwner drops listings owned by uid or, case-insensitively, email.
func ExcludeOwner(items []model.Item, uid, email string) []model.Item {
	out := make([]model.Item, 0, len(items))
	for _, it := range items {
		if uid != "" && it.OwnerUID == uid {
			continue
		}
		if email != "" && strings.EqualFold(it.OwnerEmail, email) {
			continue
		}
		out = append(out, it)
	}
	return out
}
