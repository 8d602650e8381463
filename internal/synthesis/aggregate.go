package synthesis

import (
	"sort"
	"strings"

	"github.com/jonathan/hiring-panel/internal/types"
)

// maxMentions caps aggregated strengths and risks
const maxMentions = 5

type mention struct {
	text  string
	key   string
	count int
}

// topMentions deduplicates phrases across reviews (case and whitespace insensitive) and
// ranks them by how many agents raised them. Reviews must already be sorted by agent.
func topMentions(reviews []types.AgentReview, pick func(types.AgentReview) []string) []string {
	byKey := map[string]*mention{}
	for _, r := range reviews {
		seen := map[string]bool{}
		for _, item := range pick(r) {
			key := normalize(item)
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			if m, ok := byKey[key]; ok {
				m.count++
				continue
			}
			byKey[key] = &mention{text: strings.TrimSpace(item), key: key, count: 1}
		}
	}

	ranked := make([]*mention, 0, len(byKey))
	for _, m := range byKey {
		ranked = append(ranked, m)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].key < ranked[j].key
	})

	out := []string{}
	for i := 0; i < len(ranked) && i < maxMentions; i++ {
		out = append(out, ranked[i].text)
	}
	return out
}

func normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
