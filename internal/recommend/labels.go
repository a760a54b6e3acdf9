package recommend

import (
	"fmt"
	"sort"
	"strings"

	"campusmarket/trading/internal/model"
)

const MaxProducts = 10

type labelMapping struct {
	fragment string
	value    string
}

// Mappings are checked in order; the first fragment contained in the label
// wins, so longer words come before their substrings.
var labelCategories = []labelMapping{
	{"headphone", "电子产品"}, {"earphone", "电子产品"},
	{"laptop", "电子产品"}, {"computer", "电子产品"},
	{"smartphone", "电子产品"}, {"mobile phone", "电子产品"}, {"phone", "电子产品"},
	{"book", "图书文具"},
	{"clothing", "服装配饰"}, {"clothes", "服装配饰"}, {"shirt", "服装配饰"}, {"pants", "服装配饰"},
	{"shoe", "服装配饰"}, {"sunglasses", "服装配饰"}, {"eyeglasses", "服装配饰"}, {"glasses", "服装配饰"},
	{"furniture", "家具家电"}, {"chair", "家具家电"}, {"table", "家具家电"}, {"sofa", "家具家电"},
	{"curtain", "家具家电"}, {"bed", "家具家电"}, {"lamp", "家具家电"},
	{"sports", "运动健身"}, {"bicycle", "运动健身"}, {"bike", "运动健身"},
	{"cosmetics", "美妆护肤"}, {"makeup", "美妆护肤"},
	{"food", "食品饮料"}, {"drink", "食品饮料"},
	{"toy", "玩具模型"},
	{"car", "汽车用品"}, {"vehicle", "汽车用品"},
}

var labelKeywords = []labelMapping{
	{"headphone", "耳机"}, {"earphone", "耳机"},
	{"laptop", "笔记本电脑"}, {"computer", "电脑"},
	{"smartphone", "智能手机"}, {"mobile phone", "手机"}, {"phone", "手机"},
	{"book", "书籍"},
	{"clothing", "服装"}, {"clothes", "衣服"}, {"shirt", "衬衫"}, {"pants", "裤子"}, {"shoe", "鞋子"},
	{"chair", "椅子"}, {"table", "桌子"}, {"sofa", "沙发"},
	{"bicycle", "自行车"}, {"bike", "自行车"}, {"car", "汽车"},
	{"sunglasses", "太阳镜"}, {"eyeglasses", "眼镜"}, {"glasses", "眼镜"},
	{"curtain", "窗帘"}, {"furniture", "家具"}, {"window", "窗户"}, {"door", "门"},
	{"bed", "床"}, {"pillow", "枕头"}, {"lamp", "台灯"}, {"clock", "时钟"},
	{"picture", "图片"}, {"frame", "相框"},
	{"smile", "微笑"}, {"person", "人物"}, {"face", "人脸"}, {"wall", "墙壁"},
}

func lookup(mappings []labelMapping, label string) (string, bool) {
	l := strings.ToLower(label)
	for _, m := range mappings {
		if strings.Contains(l, m.fragment) {
			return m.value, true
		}
	}
	return "", false
}

// LabelCategory maps a recognised label to a listing category, 其他 when
// nothing fits.
func LabelCategory(l model.Label) string {
	if c, ok := lookup(labelCategories, l.Keyword); ok {
		return c
	}
	if c, ok := lookup(labelCategories, l.Root); ok {
		return c
	}
	if model.IsValidCategory(l.Keyword) {
		return l.Keyword
	}
	return "其他"
}

// LabelKeyword maps a label to the word sellers are likely to use, or the
// label itself.
func LabelKeyword(l model.Label) string {
	if k, ok := lookup(labelKeywords, l.Keyword); ok {
		return k
	}
	return l.Keyword
}

func distinct(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0:0]
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}

// Products ranks items against recognised labels. labels are expected best
// first; a confident top label boosts every score by 20%.
func Products(labels []model.Label, items []model.Item) []model.RecommendedProduct {
	if len(labels) == 0 {
		return []model.RecommendedProduct{}
	}

	var categories, keywords []string
	for _, l := range labels {
		categories = append(categories, LabelCategory(l))
		keywords = append(keywords, LabelKeyword(l))
	}
	categories = distinct(categories)
	keywords = distinct(keywords)
	confident := labels[0].Confidence > 0.7

	var out []model.RecommendedProduct
	for _, it := range items {
		score, why := productScore(it, categories, keywords)
		if confident {
			score *= 1.2
		}
		score = min(score, 100)
		if score <= 0 {
			continue
		}
		out = append(out, model.RecommendedProduct{Item: it, Score: score, Reasons: why})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if len(out) > MaxProducts {
		out = out[:MaxProducts]
	}
	if out == nil {
		out = []model.RecommendedProduct{}
	}
	return out
}

func productScore(it model.Item, categories, keywords []string) (float64, []string) {
	var (
		score float64
		why   []string
	)
	for _, c := range categories {
		if it.Category != "" && it.Category == c {
			score += 40
			why = append(why, "Category match")
			break
		}
	}

	title := strings.ToLower(it.Title)
	desc := strings.ToLower(it.Description)
	if len(keywords) == 0 {
		return score, why
	}
	share := 1 / float64(len(keywords))
	for _, k := range keywords {
		lk := strings.ToLower(k)
		if strings.Contains(title, lk) {
			score += 50 * share
			why = append(why, fmt.Sprintf("Title mentions %q", k))
		}
		if strings.Contains(desc, lk) {
			score += 10 * share
		}
	}
	return score, why
}
