package services

import (
	"sort"

	"github.com/nordvik-labs/kilde/internal/core/domain"
	"github.com/nordvik-labs/kilde/internal/core/ports/driven"
)

// Fused is a document with its reciprocal rank fusion score.
type Fused struct {
	Hit   driven.Hit
	Score float64
}

// Fuse merges rankings with reciprocal rank fusion: each document scores
// the sum of 1/(k+rank) over the rankings it appears in, rank starting at 1.
// Results are sorted by score. Equal scores keep the order in which the
// documents first appeared, scanning the rankings in argument order.
// The first hit seen for an ID supplies its fields; a later highlight
// fills an empty one.
func Fuse(k int, rankings ...[]driven.Hit) []Fused {
	if k <= 0 {
		k = domain.DefaultRRFK
	}

	index := make(map[string]int)
	var fused []Fused
	for _, ranking := range rankings {
		inRanking := make(map[string]struct{}, len(ranking))
		for rank, hit := range ranking {
			if _, dup := inRanking[hit.ID]; dup {
				continue
			}
			inRanking[hit.ID] = struct{}{}

			contribution := 1.0 / float64(k+rank+1)
			if i, ok := index[hit.ID]; ok {
				fused[i].Score += contribution
				if fused[i].Hit.Highlight == "" {
					fused[i].Hit.Highlight = hit.Highlight
				}
				continue
			}
			index[hit.ID] = len(fused)
			fused = append(fused, Fused{Hit: hit, Score: contribution})
		}
	}

	sort.SliceStable(fused, func(i, j int) bool { return fused[i].Score > fused[j].Score })
	return fused
}
