package match

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/similarity"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/metrics"
)

// embedAll vectorizes one text per row. The returned slices are index
// aligned with texts: a row either has a vector or a non-nil error, never
// both. A batch-capable embedder gets a single call; when that call fails
// the rows are retried one by one so a single poisoned input cannot take
// down the whole partition.
func (s *Service) embedAll(ctx context.Context, texts []string) ([][]float32, []error) {
	vecs := make([][]float32, len(texts))
	errs := make([]error, len(texts))
	if len(texts) == 0 {
		return vecs, errs
	}

	if batcher, ok := s.embed.(domain.BatchEmbedder); ok {
		res, err := batcher.BatchEmbed(ctx, texts)
		if err == nil && len(res.Embeddings) == len(texts) {
			copy(vecs, res.Embeddings)
			return vecs, errs
		}
		if err != nil {
			s.logger.Warn("Batch embedding failed, retrying rows individually", zap.Error(err))
		}
	}

	for i, text := range texts {
		res, err := s.embed.Embed(ctx, text)
		if err != nil {
			errs[i] = err
			continue
		}
		vecs[i] = res.Embedding
	}
	return vecs, errs
}

// textSimMatrix computes cosine similarity for every reference/competitor
// vector pair. Rows index the reference catalog, columns the competitor
// partition. A nil vector on either side yields 0 for its cells.
func (s *Service) textSimMatrix(refVecs, compVecs [][]float32) [][]float64 {
	sims := make([][]float64, len(refVecs))
	sem := make(chan struct{}, s.opts.Parallelism)
	var wg sync.WaitGroup

	for i := range refVecs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			row := make([]float64, len(compVecs))
			for j := range compVecs {
				row[j] = similarity.Cosine(refVecs[i], compVecs[j])
			}
			sims[i] = row
		}(i)
	}
	wg.Wait()

	metrics.MatchPairsScoredTotal.Add(float64(len(refVecs) * len(compVecs)))
	return sims
}

// bestCandidates picks, for each competitor column, the reference row with
// the highest composite score. Ties keep the earliest reference row: the
// comparison is strictly greater-than and rows are scanned in catalog
// order. Rows whose embedding failed are skipped, so they can never win.
func (s *Service) bestCandidates(
	reference []room.Offer, refVecs [][]float32,
	competitors []room.Offer, compVecs [][]float32,
	sims [][]float64,
) []room.Candidate {
	cands := make([]room.Candidate, len(competitors))
	for j := range competitors {
		cands[j] = room.Candidate{
			Competitor:     competitors[j],
			ReferenceIndex: -1,
			Score:          sentinelScore,
		}
		if compVecs[j] == nil {
			continue
		}
		for i := range reference {
			if refVecs[i] == nil {
				continue
			}
			score := similarity.Composite(
				sims[i][j],
				similarity.AreaScore(reference[i].Area, competitors[j].Area),
				similarity.OccupancyScore(reference[i].Occupancy, competitors[j].Occupancy),
				s.opts.Weights,
			)
			if score > cands[j].Score {
				cands[j].Reference = &reference[i]
				cands[j].ReferenceIndex = i
				cands[j].Score = score
			}
		}
	}
	return cands
}
