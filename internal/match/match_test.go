package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusmarket/trading/internal/model"
)

func TestTokenize(t *testing.T) {
	t.Run("CJK runs become 2 to 4 character grams", func(t *testing.T) {
		got := Tokenize("二手自行车 Bike!")
		assert.Equal(t, []string{
			"二手", "二手自", "二手自行",
			"手自", "手自行", "手自行车",
			"自行", "自行车",
			"行车",
			"bike",
		}, got)
	})

	t.Run("short words and punctuation are dropped", func(t *testing.T) {
		assert.Equal(t, []string{"cd"}, Tokenize("a b，cd。"))
	})

	t.Run("mixed scripts stay whole", func(t *testing.T) {
		assert.Equal(t, []string{"iphone13手机"}, Tokenize("iPhone13手机"))
	})

	t.Run("duplicates removed", func(t *testing.T) {
		assert.Equal(t, []string{"desk", "lamp"}, Tokenize("Desk lamp desk LAMP"))
	})

	t.Run("empty", func(t *testing.T) {
		assert.Empty(t, Tokenize("  ，。 "))
	})
}

func TestLevenshtein(t *testing.T) {
	assert.Equal(t, 3, Levenshtein("kitten", "sitting"))
	assert.Equal(t, 1, Levenshtein("自行车", "自行"))
	assert.Equal(t, 4, Levenshtein("", "lamp"))
	assert.InDelta(t, 1.0, LevenshteinSimilarity("same", "same"), 1e-9)
	assert.InDelta(t, 0.0, LevenshteinSimilarity("", "x"), 1e-9)
}

func TestTextSimilarity(t *testing.T) {
	t.Run("identical text is a perfect match", func(t *testing.T) {
		assert.InDelta(t, 1.0, TextSimilarity("Calculus textbook", "calculus TEXTBOOK"), 1e-9)
		assert.InDelta(t, 1.0, TextSimilarity("高等数学教材", "高等数学教材"), 1e-9)
	})

	t.Run("empty input scores zero", func(t *testing.T) {
		assert.Zero(t, TextSimilarity("", "lamp"))
		assert.Zero(t, TextSimilarity("a", "lamp"))
	})

	t.Run("partial overlap", func(t *testing.T) {
		assert.InDelta(t, 0.8, TextSimilarity("calculus textbook", "calculus"), 1e-9)
	})

	t.Run("symmetric under argument swap", func(t *testing.T) {
		pairs := [][2]string{
			{"calculus textbook", "calculus"},
			{"desk lamp", "lamp"},
			{"二手自行车", "自行车 bike"},
			{"iPhone 13 pro", "iphone 12"},
			{"mountain bike", "road bicycle helmet"},
		}
		for _, p := range pairs {
			assert.InDelta(t, TextSimilarity(p[0], p[1]), TextSimilarity(p[1], p[0]), 1e-12, "%q vs %q", p[0], p[1])
		}
	})

	t.Run("unrelated text", func(t *testing.T) {
		assert.Zero(t, TextSimilarity("sofa", "bike"))
	})
}

func TestPriceMatch(t *testing.T) {
	tests := []struct {
		name     string
		min, max float64
		price    float64
		want     float64
	}{
		{"no band is neutral", 0, 0, 999, 0.6},
		{"band midpoint", 100, 200, 150, 1},
		{"band edge", 100, 200, 100, 1 - 50.0/75.0},
		{"above band but close", 100, 200, 250, 0.15},
		{"far above band", 100, 200, 400, 0},
		{"only max at sweet spot", 0, 100, 70, 1},
		{"only max exceeded", 0, 100, 120, 0.3 * (1 - 20.0/30.0)},
		{"only min at sweet spot", 20, 0, 30, 1},
		{"only min undershot", 20, 0, 15, 0.3 * (1 - 5.0/10.0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := model.WishlistItem{MinPrice: tt.min, MaxPrice: tt.max}
			assert.InDelta(t, tt.want, PriceMatch(w, tt.price), 1e-9)
		})
	}
}

func TestCategoryMatch(t *testing.T) {
	item := model.Item{Title: "电子词典", Category: "电子产品"}

	assert.Equal(t, 1.0, CategoryMatch(model.WishlistItem{}, item))
	assert.Equal(t, 1.0, CategoryMatch(model.WishlistItem{Category: "电子产品"}, item))
	assert.Equal(t, 0.7, CategoryMatch(model.WishlistItem{Category: "电子"}, item))
	assert.Equal(t, 0.5, CategoryMatch(model.WishlistItem{Category: "词典"}, model.Item{Title: "电子词典"}))
	assert.Equal(t, 0.0, CategoryMatch(model.WishlistItem{Category: "服装配饰"}, item))
}

func TestScore(t *testing.T) {
	wish := model.WishlistItem{
		Title:       "Calculus textbook",
		Description: "second edition good condition",
		Category:    "图书文具",
		MinPrice:    20,
		MaxPrice:    40,
	}
	self := model.Item{
		Title:       "Calculus textbook",
		Description: "second edition good condition",
		Category:    "图书文具",
		Price:       30,
	}

	t.Run("self match is maximal", func(t *testing.T) {
		best := Score(wish, self)
		assert.InDelta(t, 100.0, best, 1e-9)

		others := []model.Item{
			{Title: "Calculus", Price: 30, Category: "图书文具"},
			{Title: "Linear algebra textbook", Price: 25},
			{Title: "Desk lamp", Price: 30},
		}
		for _, o := range others {
			assert.LessOrEqual(t, Score(wish, o), best)
		}
	})

	t.Run("outside the price band scores lower", func(t *testing.T) {
		inside := self
		inside.Price = 35
		outside := self
		outside.Price = 55
		assert.Greater(t, Score(wish, inside), Score(wish, outside))
	})

	t.Run("stays within bounds", func(t *testing.T) {
		s := Score(model.WishlistItem{}, model.Item{})
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 100.0)
	})
}

func TestReasons(t *testing.T) {
	wish := model.WishlistItem{Title: "desk lamp", Category: "家具家电", MinPrice: 10, MaxPrice: 30}
	item := model.Item{Title: "desk lamp", Category: "家具家电", Price: 20}

	reasons := Reasons(wish, item, Score(wish, item))
	assert.Equal(t, []string{ReasonHigh, ReasonPriceFits, ReasonSimilarItem, ReasonSameCategory}, reasons)

	assert.Equal(t, []string{ReasonPossible}, Reasons(model.WishlistItem{Title: "sofa"}, model.Item{Title: "bike"}, 10))
}

func TestFindMatches(t *testing.T) {
	wishes := []model.WishlistItem{
		{ID: "w1", UserID: "u1", Title: "bike"},
		{ID: "w2", UserID: "u2", Title: "lamp"},
	}
	items := []model.Item{
		{ID: "i1", OwnerUID: "u2", Title: "bike"},
		{ID: "i2", OwnerUID: "u1", Title: "desk lamp"},
		{ID: "i3", OwnerUID: "u2", Title: "sofa"},
	}

	got := FindMatches("u1", wishes, items, Options{MinScore: DefaultMinScore, MaxResults: DefaultMaxResults})
	require.Len(t, got, 2)

	assert.Equal(t, "i1", got[0].Item.ID)
	assert.False(t, got[0].Reverse)
	assert.InDelta(t, 68.0, got[0].Score, 1e-9)
	assert.Equal(t, []string{ReasonGood, ReasonSimilarItem}, got[0].Reasons)

	assert.Equal(t, "i2", got[1].Item.ID)
	assert.True(t, got[1].Reverse)
	assert.InDelta(t, 60.0, got[1].Score, 1e-9)

	limited := FindMatches("u1", wishes, items, Options{MinScore: DefaultMinScore, MaxResults: 1})
	require.Len(t, limited, 1)
	assert.Equal(t, "i1", limited[0].Item.ID)
}

func TestFindMatches_NoOwnItemsSkipsReverse(t *testing.T) {
	wishes := []model.WishlistItem{{UserID: "u2", Title: "lamp"}}
	items := []model.Item{{OwnerUID: "u2", Title: "lamp"}}

	got := FindMatches("u1", wishes, items, Options{MinScore: DefaultMinScore})
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMatchWish_ExcludesOwnItems(t *testing.T) {
	wish := model.WishlistItem{UserID: "u1", Title: "bike"}
	items := []model.Item{
		{ID: "mine", OwnerUID: "u1", Title: "bike"},
		{ID: "theirs", OwnerUID: "u2", Title: "bike"},
	}

	got := MatchWish(wish, items, Options{MinScore: DefaultMinScore, MaxResults: DefaultWishMaxResults})
	require.Len(t, got, 1)
	assert.Equal(t, "theirs", got[0].Item.ID)
}
