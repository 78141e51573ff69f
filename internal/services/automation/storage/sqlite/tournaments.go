package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	apperrors "github.com/louisbranch/tournament.archive/internal/platform/errors"
	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
)

const tournamentMatchIDs = `SELECT id FROM matches WHERE tournament_id = ?`

const tournamentGameIDs = `SELECT g.id FROM games g JOIN matches m ON m.id = g.match_id WHERE m.tournament_id = ?`

// PutTournament replaces a tournament aggregate, dropping derived rosters and
// statistics. Rating adjustments are kept.
func (s *Store) PutTournament(ctx context.Context, t *domain.Tournament) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if t == nil || t.ID == 0 {
		return fmt.Errorf("tournament id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		if err := deleteTournament(ctx, tx, t.ID); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
INSERT INTO tournaments (
	id,
	name,
	abbreviation,
	ruleset,
	lobby_size,
	verification_status,
	rejection_reason
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
			t.ID,
			t.Name,
			t.Abbreviation,
			t.Ruleset,
			t.LobbySize,
			t.VerificationStatus,
			t.RejectionReason,
		); err != nil {
			return fmt.Errorf("insert tournament %d: %w", t.ID, err)
		}
		for _, beatmapID := range t.PooledBeatmapIDs {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO pooled_beatmaps (tournament_id, beatmap_id) VALUES (?, ?)`,
				t.ID, beatmapID,
			); err != nil {
				return fmt.Errorf("insert pooled beatmap %d: %w", beatmapID, err)
			}
		}
		for _, match := range t.Matches {
			if err := insertMatch(ctx, tx, t.ID, match); err != nil {
				return err
			}
		}
		return nil
	})
}

func deleteTournament(ctx context.Context, tx *sql.Tx, id int64) error {
	statements := []string{
		`DELETE FROM scores WHERE game_id IN (` + tournamentGameIDs + `)`,
		`DELETE FROM game_rosters WHERE game_id IN (` + tournamentGameIDs + `)`,
		`DELETE FROM games WHERE match_id IN (` + tournamentMatchIDs + `)`,
		`DELETE FROM match_rosters WHERE match_id IN (` + tournamentMatchIDs + `)`,
		`DELETE FROM player_match_stats WHERE match_id IN (` + tournamentMatchIDs + `)`,
		`DELETE FROM matches WHERE tournament_id = ?`,
		`DELETE FROM player_tournament_stats WHERE tournament_id = ?`,
		`DELETE FROM pooled_beatmaps WHERE tournament_id = ?`,
		`DELETE FROM tournaments WHERE id = ?`,
	}
	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return fmt.Errorf("delete tournament %d: %w", id, err)
		}
	}
	return nil
}

func insertMatch(ctx context.Context, tx *sql.Tx, tournamentID int64, m *domain.Match) error {
	if _, err := tx.ExecContext(ctx, `
INSERT INTO matches (
	id,
	tournament_id,
	name,
	start_time,
	end_time,
	verification_status,
	rejection_reason,
	warning_flags
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`,
		m.ID,
		tournamentID,
		m.Name,
		toMillis(m.StartTime),
		toMillis(m.EndTime),
		m.VerificationStatus,
		m.RejectionReason,
		m.WarningFlags,
	); err != nil {
		return fmt.Errorf("insert match %d: %w", m.ID, err)
	}
	for _, g := range m.Games {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO games (
	id,
	match_id,
	beatmap_id,
	ruleset,
	scoring_type,
	team_type,
	mods,
	start_time,
	end_time,
	verification_status,
	rejection_reason,
	warning_flags
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
			g.ID,
			m.ID,
			g.BeatmapID,
			g.Ruleset,
			g.ScoringType,
			g.TeamType,
			g.Mods,
			toMillis(g.StartTime),
			toMillis(g.EndTime),
			g.VerificationStatus,
			g.RejectionReason,
			g.WarningFlags,
		); err != nil {
			return fmt.Errorf("insert game %d: %w", g.ID, err)
		}
		for _, sc := range g.Scores {
			if _, err := tx.ExecContext(ctx, `
INSERT INTO scores (
	id,
	game_id,
	player_id,
	score,
	team,
	ruleset,
	mods,
	max_combo,
	count_300,
	count_100,
	count_50,
	count_geki,
	count_katu,
	count_miss,
	verification_status,
	rejection_reason
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
				sc.ID,
				g.ID,
				sc.PlayerID,
				sc.Score,
				sc.Team,
				sc.Ruleset,
				sc.Mods,
				sc.MaxCombo,
				sc.Count300,
				sc.Count100,
				sc.Count50,
				sc.CountGeki,
				sc.CountKatu,
				sc.CountMiss,
				sc.VerificationStatus,
				sc.RejectionReason,
			); err != nil {
				return fmt.Errorf("insert score %d: %w", sc.ID, err)
			}
		}
	}
	return nil
}

// GetTournament loads a tournament with its mappool, matches, games and scores.
// Matches and games are ordered by start time, then id.
func (s *Store) GetTournament(ctx context.Context, id int64) (*domain.Tournament, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}

	t := &domain.Tournament{ID: id}
	err := s.sqlDB.QueryRowContext(ctx, `
SELECT name, abbreviation, ruleset, lobby_size, verification_status, rejection_reason
FROM tournaments
WHERE id = ?
`, id).Scan(
		&t.Name,
		&t.Abbreviation,
		&t.Ruleset,
		&t.LobbySize,
		&t.VerificationStatus,
		&t.RejectionReason,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.WithMetadata(apperrors.CodeNotFound,
			fmt.Sprintf("tournament %d not found", id),
			map[string]string{"TournamentID": fmt.Sprint(id)}).WithCause(err)
	}
	if err != nil {
		return nil, fmt.Errorf("get tournament %d: %w", id, err)
	}

	if t.PooledBeatmapIDs, err = s.listPooledBeatmaps(ctx, id); err != nil {
		return nil, err
	}
	if t.Matches, err = s.listMatches(ctx, id); err != nil {
		return nil, err
	}
	games, err := s.listGames(ctx, id)
	if err != nil {
		return nil, err
	}
	scores, err := s.listScores(ctx, id)
	if err != nil {
		return nil, err
	}

	gamesByID := make(map[int64]*domain.Game, len(games))
	for _, g := range games {
		gamesByID[g.ID] = g
	}
	for _, sc := range scores {
		if g, ok := gamesByID[sc.GameID]; ok {
			g.Scores = append(g.Scores, sc)
		}
	}
	matchesByID := make(map[int64]*domain.Match, len(t.Matches))
	for _, m := range t.Matches {
		matchesByID[m.ID] = m
	}
	for _, g := range games {
		if m, ok := matchesByID[g.MatchID]; ok {
			m.Games = append(m.Games, g)
		}
	}
	return t, nil
}

func (s *Store) listPooledBeatmaps(ctx context.Context, tournamentID int64) ([]int64, error) {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT beatmap_id FROM pooled_beatmaps WHERE tournament_id = ? ORDER BY beatmap_id`,
		tournamentID,
	)
	if err != nil {
		return nil, fmt.Errorf("list pooled beatmaps: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pooled beatmap: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pooled beatmaps: %w", err)
	}
	return ids, nil
}

func (s *Store) listMatches(ctx context.Context, tournamentID int64) ([]*domain.Match, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	id,
	name,
	start_time,
	end_time,
	verification_status,
	rejection_reason,
	warning_flags
FROM matches
WHERE tournament_id = ?
ORDER BY start_time, id
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list matches: %w", err)
	}
	defer rows.Close()

	var matches []*domain.Match
	for rows.Next() {
		m := &domain.Match{TournamentID: tournamentID}
		var start, end int64
		if err := rows.Scan(
			&m.ID,
			&m.Name,
			&start,
			&end,
			&m.VerificationStatus,
			&m.RejectionReason,
			&m.WarningFlags,
		); err != nil {
			return nil, fmt.Errorf("scan match: %w", err)
		}
		m.StartTime = fromMillis(start)
		m.EndTime = fromMillis(end)
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matches: %w", err)
	}
	return matches, nil
}

func (s *Store) listGames(ctx context.Context, tournamentID int64) ([]*domain.Game, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	g.id,
	g.match_id,
	g.beatmap_id,
	g.ruleset,
	g.scoring_type,
	g.team_type,
	g.mods,
	g.start_time,
	g.end_time,
	g.verification_status,
	g.rejection_reason,
	g.warning_flags
FROM games g
JOIN matches m ON m.id = g.match_id
WHERE m.tournament_id = ?
ORDER BY g.start_time, g.id
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []*domain.Game
	for rows.Next() {
		g := &domain.Game{}
		var start, end int64
		if err := rows.Scan(
			&g.ID,
			&g.MatchID,
			&g.BeatmapID,
			&g.Ruleset,
			&g.ScoringType,
			&g.TeamType,
			&g.Mods,
			&start,
			&end,
			&g.VerificationStatus,
			&g.RejectionReason,
			&g.WarningFlags,
		); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		g.StartTime = fromMillis(start)
		g.EndTime = fromMillis(end)
		games = append(games, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return games, nil
}

func (s *Store) listScores(ctx context.Context, tournamentID int64) ([]*domain.Score, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	s.id,
	s.game_id,
	s.player_id,
	s.score,
	s.team,
	s.ruleset,
	s.mods,
	s.max_combo,
	s.count_300,
	s.count_100,
	s.count_50,
	s.count_geki,
	s.count_katu,
	s.count_miss,
	s.verification_status,
	s.rejection_reason
FROM scores s
JOIN games g ON g.id = s.game_id
JOIN matches m ON m.id = g.match_id
WHERE m.tournament_id = ?
ORDER BY s.id
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list scores: %w", err)
	}
	defer rows.Close()

	var scores []*domain.Score
	for rows.Next() {
		sc := &domain.Score{}
		if err := rows.Scan(
			&sc.ID,
			&sc.GameID,
			&sc.PlayerID,
			&sc.Score,
			&sc.Team,
			&sc.Ruleset,
			&sc.Mods,
			&sc.MaxCombo,
			&sc.Count300,
			&sc.Count100,
			&sc.Count50,
			&sc.CountGeki,
			&sc.CountKatu,
			&sc.CountMiss,
			&sc.VerificationStatus,
			&sc.RejectionReason,
		); err != nil {
			return nil, fmt.Errorf("scan score: %w", err)
		}
		scores = append(scores, sc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate scores: %w", err)
	}
	return scores, nil
}

// SaveAutomation writes automation output for the whole aggregate in one
// transaction.
func (s *Store) SaveAutomation(ctx context.Context, t *domain.Tournament) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if t == nil || t.ID == 0 {
		return fmt.Errorf("tournament id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`UPDATE tournaments SET verification_status = ?, rejection_reason = ? WHERE id = ?`,
			t.VerificationStatus, t.RejectionReason, t.ID,
		)
		if err != nil {
			return fmt.Errorf("update tournament %d: %w", t.ID, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return apperrors.New(apperrors.CodeNotFound, fmt.Sprintf("tournament %d not found", t.ID))
		}
		for _, m := range t.Matches {
			if _, err := tx.ExecContext(ctx,
				`UPDATE matches SET verification_status = ?, rejection_reason = ?, warning_flags = ? WHERE id = ?`,
				m.VerificationStatus, m.RejectionReason, m.WarningFlags, m.ID,
			); err != nil {
				return fmt.Errorf("update match %d: %w", m.ID, err)
			}
			for _, g := range m.Games {
				if _, err := tx.ExecContext(ctx,
					`UPDATE games SET team_type = ?, verification_status = ?, rejection_reason = ?, warning_flags = ? WHERE id = ?`,
					g.TeamType, g.VerificationStatus, g.RejectionReason, g.WarningFlags, g.ID,
				); err != nil {
					return fmt.Errorf("update game %d: %w", g.ID, err)
				}
				for _, sc := range g.Scores {
					if _, err := tx.ExecContext(ctx,
						`UPDATE scores SET team = ?, verification_status = ?, rejection_reason = ? WHERE id = ?`,
						sc.Team, sc.VerificationStatus, sc.RejectionReason, sc.ID,
					); err != nil {
						return fmt.Errorf("update score %d: %w", sc.ID, err)
					}
				}
			}
		}
		return nil
	})
}

// PutRatingAdjustments appends rating adjustments.
func (s *Store) PutRatingAdjustments(ctx context.Context, adjustments []domain.RatingAdjustment) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		for _, adj := range adjustments {
			if adj.PlayerID == 0 || adj.MatchID == 0 {
				return fmt.Errorf("rating adjustment requires player and match ids")
			}
			if _, err := tx.ExecContext(ctx, `
INSERT INTO rating_adjustments (
	player_id,
	match_id,
	rating_before,
	rating_after,
	volatility_before,
	volatility_after,
	created_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
`,
				adj.PlayerID,
				adj.MatchID,
				adj.RatingBefore,
				adj.RatingAfter,
				adj.VolatilityBefore,
				adj.VolatilityAfter,
				toMillis(adj.Timestamp),
			); err != nil {
				return fmt.Errorf("insert rating adjustment: %w", err)
			}
		}
		return nil
	})
}

// ListRatingAdjustments lists adjustments attributed to the tournament's matches.
func (s *Store) ListRatingAdjustments(ctx context.Context, tournamentID int64) ([]domain.RatingAdjustment, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	r.player_id,
	r.match_id,
	r.rating_before,
	r.rating_after,
	r.volatility_before,
	r.volatility_after,
	r.created_at
FROM rating_adjustments r
JOIN matches m ON m.id = r.match_id
WHERE m.tournament_id = ?
ORDER BY r.created_at, r.id
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list rating adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []domain.RatingAdjustment
	for rows.Next() {
		var adj domain.RatingAdjustment
		var createdAt int64
		if err := rows.Scan(
			&adj.PlayerID,
			&adj.MatchID,
			&adj.RatingBefore,
			&adj.RatingAfter,
			&adj.VolatilityBefore,
			&adj.VolatilityAfter,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan rating adjustment: %w", err)
		}
		adj.Timestamp = fromMillis(createdAt)
		adjustments = append(adjustments, adj)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rating adjustments: %w", err)
	}
	return adjustments, nil
}
