package vision

import (
	"sort"
	"strings"

	"campusmarket/trading/internal/model"
)

const minConfidence = 0.3

// Material and texture words describe a photo, not a product.
var genericLabels = []string{
	"metal", "glass", "plastic", "wood", "fabric", "leather",
	"ceramic", "stone", "paper", "cardboard", "foam",
	"surface", "material", "texture", "pattern", "color",
}

func isGeneric(label string) bool {
	l := strings.ToLower(label)
	for _, g := range genericLabels {
		if strings.Contains(l, g) {
			return true
		}
	}
	return false
}

func priority(l model.Label) int {
	generic := isGeneric(l.Keyword)
	switch {
	case !generic && l.Confidence > 0.6:
		return 3
	case !generic:
		return 2
	case l.Confidence > 0.7:
		return 1
	default:
		return 0
	}
}

// Rank drops weak and generic labels and orders the rest with specific
// products first, then by confidence.
func Rank(labels []model.Label) []model.Label {
	out := make([]model.Label, 0, len(labels))
	for _, l := range labels {
		if l.Confidence <= minConfidence {
			continue
		}
		if isGeneric(l.Keyword) && l.Confidence <= 0.8 {
			continue
		}
		out = append(out, l)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := priority(out[i]), priority(out[j])
		if pi != pj {
			return pi > pj
		}
		return out[i].Confidence > out[j].Confidence
	})
	return out
}
