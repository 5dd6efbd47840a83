// Package match implements the date-partitioned room matcher: for every
// competitor offer, find the most similar offer in the operator's own
// catalog, accept it when the composite score clears the threshold, and
// keep an audit trail of everything that fell below it.
package match

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/feature"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/room"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/domain/similarity"
	"github.com/novotnakristyna1203/hotel-price-prediction/internal/metrics"
)

// sentinelScore marks a competitor row that no reference row could be
// scored against. It sits below any real threshold, so such rows always
// fall through to rejection.
const sentinelScore = -1

// Options are the tunable policy parameters of one matching run.
type Options struct {
	Weights   similarity.Weights
	Threshold float64
	// SelfMarker is the substring of a competitor source link that marks
	// the operator's own listings seen through the competitor feed.
	SelfMarker string
	// AreaFallback is substituted for a missing area on competitor rows
	// only; 0 disables the substitution.
	AreaFallback float64
	Parallelism  int
}

// Service matches competitor offers against the reference catalog.
type Service struct {
	embed  Embedder
	opts   Options
	logger *zap.Logger
}

// New creates a matching service. Options are validated eagerly: a bad
// weight triple or threshold is rejected here, before any scoring work.
func New(embed Embedder, opts Options, logger *zap.Logger) (*Service, error) {
	if err := opts.Weights.Validate(); err != nil {
		return nil, err
	}
	if opts.Threshold < 0 || opts.Threshold > 1 {
		return nil, fmt.Errorf("threshold %v outside [0,1]: %w", opts.Threshold, domain.ErrInvalidThreshold)
	}
	if opts.Parallelism <= 0 {
		opts.Parallelism = 8
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{embed: embed, opts: opts, logger: logger}, nil
}

// Run matches every competitor offer against the full reference catalog,
// partitioned by check-in date. Both input slices are read-only; the
// reference catalog is reused unchanged across all partitions.
//
// The assignment is intentionally greedy: each competitor row gets its own
// best-scoring reference row, and one reference row may win several
// competitor rows. Per-row embedding failures degrade to rejection notes
// instead of aborting the batch.
func (s *Service) Run(ctx context.Context, reference, competitors []room.Offer) (room.MatchResult, error) {
	comps := s.withAreaFallback(competitors)

	refVecs, refErrs := s.embedAll(ctx, descriptors(reference))
	for i, err := range refErrs {
		if err != nil {
			s.logger.Warn("Reference row excluded: embedding failed",
				zap.Int("index", i),
				zap.String("room_type", reference[i].RoomType),
				zap.Error(err),
			)
		}
	}
	if err := ctx.Err(); err != nil {
		return room.MatchResult{}, fmt.Errorf("matching cancelled: %w", err)
	}

	var result room.MatchResult
	for _, p := range partitionByCheckin(comps) {
		s.matchPartition(ctx, reference, refVecs, p, &result)
		if err := ctx.Err(); err != nil {
			return room.MatchResult{}, fmt.Errorf("matching cancelled: %w", err)
		}
	}

	s.logger.Info("Matching run complete",
		zap.Int("reference_rooms", len(reference)),
		zap.Int("competitor_rooms", len(competitors)),
		zap.Int("accepted_competitor", len(result.Competitors)),
		zap.Int("accepted_own", len(result.Own)),
		zap.Int("rejected", len(result.Rejections)),
	)
	return result, nil
}

// withAreaFallback copies the competitor rows, substituting the configured
// default area where one is missing. Source rows are never mutated.
func (s *Service) withAreaFallback(competitors []room.Offer) []room.Offer {
	comps := make([]room.Offer, len(competitors))
	copy(comps, competitors)
	if s.opts.AreaFallback <= 0 {
		return comps
	}
	for i := range comps {
		if comps[i].Area == nil {
			fb := s.opts.AreaFallback
			comps[i].Area = &fb
		}
	}
	return comps
}

// partition is one check-in date's slice of the competitor dataset.
type partition struct {
	checkin string
	offers  []room.Offer
}

// partitionByCheckin groups competitor offers by exact check-in value,
// ordered by date ascending with row order preserved within a group.
func partitionByCheckin(offers []room.Offer) []partition {
	groups := make(map[string][]room.Offer)
	for _, o := range offers {
		groups[o.Checkin] = append(groups[o.Checkin], o)
	}

	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]partition, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, partition{checkin: k, offers: groups[k]})
	}
	return parts
}

// matchPartition scores one date partition and appends its accepted and
// rejected outcomes to result.
func (s *Service) matchPartition(
	ctx context.Context, reference []room.Offer, refVecs [][]float32,
	p partition, result *room.MatchResult,
) {
	start := time.Now()
	log := s.logger.With(zap.String("checkin", p.checkin))
	log.Debug("Matching partition", zap.Int("competitor_rooms", len(p.offers)))

	// Competitor embeddings are recomputed per partition; the cache layer
	// absorbs the repeat cost because the embedding function is pure.
	compVecs, compErrs := s.embedAll(ctx, descriptors(p.offers))

	sims := s.textSimMatrix(refVecs, compVecs)
	cands := s.bestCandidates(reference, refVecs, p.offers, compVecs, sims)

	for j, cand := range cands {
		if compErrs[j] != nil {
			metrics.MatchOutcomesTotal.WithLabelValues("embed_failed").Inc()
			result.Rejections = append(result.Rejections, room.Rejection{
				Checkin:        p.checkin,
				CompetitorRoom: p.offers[j].RoomType,
				BestScore:      sentinelScore,
				Reason:         room.RejectEmbedFailed,
			})
			continue
		}

		if cand.Reference == nil || cand.Score < s.opts.Threshold {
			metrics.MatchOutcomesTotal.WithLabelValues("rejected").Inc()
			log.Info("No strong match",
				zap.String("competitor_room", p.offers[j].RoomType),
				zap.Float64("best_score", similarity.Round3(cand.Score)),
			)
			result.Rejections = append(result.Rejections, room.Rejection{
				Checkin:        p.checkin,
				CompetitorRoom: p.offers[j].RoomType,
				BestScore:      similarity.Round3(cand.Score),
				Reason:         room.RejectBelowThreshold,
			})
			continue
		}

		rec := buildRecord(cand)
		if s.isSelfListing(cand.Competitor.SourceLink) {
			metrics.MatchOutcomesTotal.WithLabelValues("accepted_own").Inc()
			result.Own = append(result.Own, rec)
		} else {
			metrics.MatchOutcomesTotal.WithLabelValues("accepted_competitor").Inc()
			result.Competitors = append(result.Competitors, rec)
		}
	}

	metrics.MatchPartitionDuration.Observe(time.Since(start).Seconds())
	metrics.MatchPartitionSize.Observe(float64(len(p.offers)))
}

// isSelfListing reports whether a competitor source link carries the
// self-identifying marker, case-insensitively.
func (s *Service) isSelfListing(link string) bool {
	if s.opts.SelfMarker == "" {
		return false
	}
	return strings.Contains(strings.ToLower(link), strings.ToLower(s.opts.SelfMarker))
}

// buildRecord denormalizes both sides of an accepted pairing into an
// immutable match record. Missing passthrough fields stay nil rather than
// failing the record.
func buildRecord(c room.Candidate) room.MatchRecord {
	ref := c.Reference
	return room.MatchRecord{
		Checkin:  c.Competitor.Checkin,
		Checkout: c.Competitor.Checkout,

		CompetitorRoom:       c.Competitor.RoomType,
		CompetitorHighlights: c.Competitor.Highlights,
		CompetitorLink:       c.Competitor.SourceLink,
		CompetitorArea:       c.Competitor.Area,
		CompetitorOccupancy:  c.Competitor.Occupancy,
		CompetitorBreakfast:  c.Competitor.Breakfast,
		CompetitorNonref:     c.Competitor.NonRefundable,
		CompetitorPrice:      c.Competitor.Price,
		ScrapingDate:         c.Competitor.ScrapingDate,

		MyRoom:       ref.RoomType,
		MyHighlights: ref.Highlights,
		MyArea:       ref.Area,
		MyOccupancy:  ref.Occupancy,
		MyBreakfast:  ref.Breakfast,
		MyNonref:     ref.NonRefundable,

		Similarity: similarity.Round3(c.Score),
	}
}

// descriptors collects the embedding input for a slice of offers. The
// descriptor is rebuilt from raw fields when the reader did not set one,
// so embedding never sees missing input.
func descriptors(offers []room.Offer) []string {
	texts := make([]string, len(offers))
	for i := range offers {
		texts[i] = descriptorOf(&offers[i])
	}
	return texts
}

func descriptorOf(o *room.Offer) string {
	if o.Descriptor != "" {
		return o.Descriptor
	}
	occ := ""
	if o.Occupancy != nil {
		occ = strconv.Itoa(*o.Occupancy)
	}
	return feature.Descriptor(o.RoomType, o.Breakfast, o.NonRefundable, occ, o.Highlights)
}
