package recommend

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ewilliams-labs/acoustic-print/internal/core/domain"
)

// DefaultK is the number of recommendations per genre when none is given.
const DefaultK = 3

var ErrInvalidK = errors.New("recommend: k must be a positive integer")

// Session accumulates the candidates already emitted for one album or track
// view. It is not safe for concurrent use and must not outlive the view.
type Session struct {
	ID      uuid.UUID
	emitted map[int64]struct{}
}

// NewSession starts an empty accumulator.
func NewSession() *Session {
	return &Session{ID: uuid.New(), emitted: make(map[int64]struct{})}
}

// Emitted reports whether id was already recommended in this session.
func (s *Session) Emitted(id int64) bool {
	_, ok := s.emitted[id]
	return ok
}

// Len returns the number of distinct candidates emitted so far.
func (s *Session) Len() int { return len(s.emitted) }

func (s *Session) mark(matches []Match) {
	for _, m := range matches {
		s.emitted[m.ID] = struct{}{}
	}
}

// Partition is the candidate pool of one genre.
type Partition struct {
	Genre      domain.Genre
	Candidates []Candidate
}

// GenreMatches is the ranked list emitted for one genre.
type GenreMatches struct {
	Genre   domain.Genre `json:"genre" yaml:"genre"`
	Matches []Match      `json:"matches" yaml:"matches"`
}

// Recommender ranks genre partitions against a target.
type Recommender struct {
	K int
}

// New returns a recommender with k results per genre. Non-positive k falls
// back to DefaultK.
func New(k int) *Recommender {
	if k <= 0 {
		k = DefaultK
	}
	return &Recommender{K: k}
}

// Recommend returns up to k matches per partition, in partition order.
// The target id is never recommended and a candidate emitted for an earlier
// partition, or earlier call with the same session, is not eligible again.
// Distances are scored concurrently; selection runs in order so the session
// sees every earlier genre.
func (r *Recommender) Recommend(ctx context.Context, target Candidate, partitions []Partition, session *Session) ([]GenreMatches, error) {
	if r.K <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidK, r.K)
	}
	if session == nil {
		session = NewSession()
	}

	scored := make([][]Match, len(partitions))
	g, gctx := errgroup.WithContext(ctx)
	for i, p := range partitions {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scored[i] = Distances(target.Features, p.Candidates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	skip := func(id int64) bool {
		return id == target.ID || session.Emitted(id)
	}

	out := make([]GenreMatches, len(partitions))
	for i, p := range partitions {
		top := TopK(scored[i], r.K, skip)
		session.mark(top)
		out[i] = GenreMatches{Genre: p.Genre, Matches: top}
	}
	return out, nil
}
