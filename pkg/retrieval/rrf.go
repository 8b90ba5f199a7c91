package retrieval

import "sort"

// RankedDoc is one document as ranked by a single retriever.
type RankedDoc struct {
	ListingID string
	Rank      int // 1-based position within that retriever's result list
	RawScore  float64
}

// RetrieverResult is one retriever's ranked output, in rank order.
type RetrieverResult struct {
	Name   string
	Weight float64 // 0 disables weighting (treated as 1.0)
	Docs   []RankedDoc
}

// FusedDoc is one document's fused result.
type FusedDoc struct {
	ListingID  string
	HybridScore float64
	MinRank    int // lowest (best) rank across contributing retrievers
}

// RRFConfig tunes Fuse.
type RRFConfig struct {
	// RankConstant is k in the RRF formula. Default: 60.
	RankConstant int

	// RankWindowSize truncates each retriever's input to its first N docs
	// before fusing, and truncates the fused output to the same size before
	// the caller applies its own requested page size. Default: 100.
	RankWindowSize int
}

func (c RRFConfig) withDefaults() RRFConfig {
	if c.RankConstant <= 0 {
		c.RankConstant = 60
	}
	if c.RankWindowSize <= 0 {
		c.RankWindowSize = 100
	}
	return c
}

// Fuse combines one or more RetrieverResults via Reciprocal Rank Fusion:
//
//	score(d) = Σ_i weight_i / (k + rank_i(d))
//
// summed over every retriever i that returned d within RankWindowSize.
// Documents absent from a retriever contribute 0 from that retriever
// (spec.md §4.F). Ties break by higher fused score, then lower minimum rank,
// then lexicographic listing_id.
func Fuse(results []RetrieverResult, cfg RRFConfig) []FusedDoc {
	cfg = cfg.withDefaults()
	k := float64(cfg.RankConstant)

	type acc struct {
		score   float64
		minRank int
	}
	byID := make(map[string]*acc)
	var order []string

	for _, r := range results {
		weight := r.Weight
		if weight <= 0 {
			weight = 1.0
		}
		docs := r.Docs
		if len(docs) > cfg.RankWindowSize {
			docs = docs[:cfg.RankWindowSize]
		}
		for _, d := range docs {
			a, ok := byID[d.ListingID]
			if !ok {
				a = &acc{minRank: d.Rank}
				byID[d.ListingID] = a
				order = append(order, d.ListingID)
			}
			a.score += weight / (k + float64(d.Rank))
			if d.Rank < a.minRank {
				a.minRank = d.Rank
			}
		}
	}

	fused := make([]FusedDoc, 0, len(order))
	for _, id := range order {
		a := byID[id]
		fused = append(fused, FusedDoc{ListingID: id, HybridScore: a.score, MinRank: a.minRank})
	}

	sort.Slice(fused, func(i, j int) bool {
		if fused[i].HybridScore != fused[j].HybridScore {
			return fused[i].HybridScore > fused[j].HybridScore
		}
		if fused[i].MinRank != fused[j].MinRank {
			return fused[i].MinRank < fused[j].MinRank
		}
		return fused[i].ListingID < fused[j].ListingID
	})

	if len(fused) > cfg.RankWindowSize {
		fused = fused[:cfg.RankWindowSize]
	}
	return fused
}
