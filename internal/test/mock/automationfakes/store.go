package automationfakes

import (
	"context"
	"fmt"
	"sync"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
)

// TournamentStore is an in-memory storage.TournamentStore. Reads return deep
// copies so callers mutating a loaded aggregate never touch stored state
// until they save it.
type TournamentStore struct {
	mu          sync.Mutex
	tournaments map[int64]*domain.Tournament
	adjustments []domain.RatingAdjustment
	stats       map[int64]storage.Statistics

	GetErr     error
	SaveErr    error
	ReplaceErr error
	Saves      int
}

// NewTournamentStore returns a store seeded with tournaments.
func NewTournamentStore(tournaments ...*domain.Tournament) *TournamentStore {
	s := &TournamentStore{
		tournaments: make(map[int64]*domain.Tournament),
		stats:       make(map[int64]storage.Statistics),
	}
	for _, t := range tournaments {
		s.tournaments[t.ID] = Clone(t)
	}
	return s
}

func (s *TournamentStore) PutTournament(_ context.Context, t *domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tournaments[t.ID] = Clone(t)
	return nil
}

func (s *TournamentStore) GetTournament(_ context.Context, id int64) (*domain.Tournament, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	t, ok := s.tournaments[id]
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("tournament %d not found", id))
	}
	return Clone(t), nil
}

func (s *TournamentStore) SaveAutomation(_ context.Context, t *domain.Tournament) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.Saves++
	s.tournaments[t.ID] = Clone(t)
	return nil
}

func (s *TournamentStore) PutRatingAdjustments(_ context.Context, adjustments []domain.RatingAdjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.adjustments = append(s.adjustments, adjustments...)
	return nil
}

func (s *TournamentStore) ListRatingAdjustments(_ context.Context, tournamentID int64) ([]domain.RatingAdjustment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tournaments[tournamentID]
	if !ok {
		return nil, nil
	}
	matchIDs := make(map[int64]struct{}, len(t.Matches))
	for _, m := range t.Matches {
		matchIDs[m.ID] = struct{}{}
	}
	var out []domain.RatingAdjustment
	for _, adj := range s.adjustments {
		if _, ok := matchIDs[adj.MatchID]; ok {
			out = append(out, adj)
		}
	}
	return out, nil
}

func (s *TournamentStore) ReplaceStatistics(_ context.Context, stats storage.Statistics) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ReplaceErr != nil {
		return s.ReplaceErr
	}
	s.stats[stats.TournamentID] = stats
	return nil
}

func (s *TournamentStore) GetStatistics(_ context.Context, tournamentID int64) (storage.Statistics, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats, ok := s.stats[tournamentID]
	if !ok {
		return storage.Statistics{TournamentID: tournamentID}, nil
	}
	return stats, nil
}

var _ storage.TournamentStore = (*TournamentStore)(nil)

// Clone deep-copies a tournament aggregate.
func Clone(t *domain.Tournament) *domain.Tournament {
	if t == nil {
		return nil
	}
	out := *t
	out.PooledBeatmapIDs = append([]int64(nil), t.PooledBeatmapIDs...)
	out.Matches = make([]*domain.Match, 0, len(t.Matches))
	for _, m := range t.Matches {
		match := *m
		match.Rosters = append([]domain.MatchRoster(nil), m.Rosters...)
		match.Games = make([]*domain.Game, 0, len(m.Games))
		for _, g := range m.Games {
			game := *g
			game.Rosters = append([]domain.GameRoster(nil), g.Rosters...)
			game.Scores = make([]*domain.Score, 0, len(g.Scores))
			for _, sc := range g.Scores {
				score := *sc
				game.Scores = append(game.Scores, &score)
			}
			match.Games = append(match.Games, &game)
		}
		out.Matches = append(out.Matches, &match)
	}
	return &out
}
