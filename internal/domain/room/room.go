// Package room holds the data model shared by the matching pipeline:
// room offers on both sides of the comparison, accepted match records
// and the rejection audit trail.
package room

// Offer is one listed room configuration at a point in time, either from
// the operator's own catalog or from the competitor feed.
//
// Area and Occupancy are pointers: nil encodes "unknown", which the scorer
// treats as an explicit penalty. Zero must never be silently assumed.
type Offer struct {
	RoomType   string
	Highlights string

	// Descriptor is the normalized descriptive text (room type + markers +
	// occupancy digit + highlights, cleaned). Always set, possibly empty,
	// so embedding never fails on missing input.
	Descriptor string

	Area      *float64 // square meters
	Occupancy *int     // max guests

	Price        *float64
	Checkin      string
	Checkout     string
	SourceLink   string
	ScrapingDate string

	Breakfast     bool
	NonRefundable bool
}

// Candidate is the best pairing found for one competitor offer within its
// date partition, before thresholding. Reference is nil (and Score is the
// −1 sentinel) when no reference row could be scored against it.
type Candidate struct {
	Competitor     Offer
	Reference      *Offer
	ReferenceIndex int
	Score          float64
}

// MatchRecord is the persisted result of one accepted pairing. It owns a
// denormalized copy of both sides' attributes and is immutable once created.
type MatchRecord struct {
	Checkin  string
	Checkout string

	CompetitorRoom       string
	CompetitorHighlights string
	CompetitorLink       string
	CompetitorArea       *float64
	CompetitorOccupancy  *int
	CompetitorBreakfast  bool
	CompetitorNonref     bool
	CompetitorPrice      *float64
	ScrapingDate         string

	MyRoom       string
	MyHighlights string
	MyArea       *float64
	MyOccupancy  *int
	MyBreakfast  bool
	MyNonref     bool

	// Similarity is the composite score rounded to 3 decimal digits for
	// stable downstream comparison and display.
	Similarity float64
}

// RejectReason explains why a competitor offer produced no match record.
type RejectReason string

// Rejection reasons.
const (
	// RejectBelowThreshold means the best composite score did not clear
	// the acceptance threshold.
	RejectBelowThreshold RejectReason = "below_threshold"
	// RejectEmbedFailed means the offer's descriptive text could not be
	// embedded; the row was skipped rather than aborting the batch.
	RejectEmbedFailed RejectReason = "embed_failed"
)

// Rejection records a competitor offer that produced no accepted match,
// with the best score it achieved, so operators can tune the threshold or
// investigate data-quality gaps.
type Rejection struct {
	Checkin        string
	CompetitorRoom string
	BestScore      float64
	Reason         RejectReason
}

// MatchResult is the full outcome of one matching run. Competitors and Own
// are a disjoint, exhaustive split of the accepted records: Own holds the
// operator's listings seen through the competitor feed, segregated rather
// than discarded to preserve auditability.
type MatchResult struct {
	Competitors []MatchRecord
	Own         []MatchRecord
	Rejections  []Rejection
}

// Accepted returns the total number of accepted match records.
func (r *MatchResult) Accepted() int {
	return len(r.Competitors) + len(r.Own)
}
