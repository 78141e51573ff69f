package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/louisbranch/tournament.archive/internal/services/automation/domain"
	"github.com/louisbranch/tournament.archive/internal/services/automation/storage"
)

// ReplaceStatistics swaps the tournament's rosters and statistics in one
// transaction.
func (s *Store) ReplaceStatistics(ctx context.Context, stats storage.Statistics) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if stats.TournamentID == 0 {
		return fmt.Errorf("tournament id is required")
	}
	return s.withTx(ctx, func(tx *sql.Tx) error {
		deletes := []string{
			`DELETE FROM game_rosters WHERE game_id IN (` + tournamentGameIDs + `)`,
			`DELETE FROM match_rosters WHERE match_id IN (` + tournamentMatchIDs + `)`,
			`DELETE FROM player_match_stats WHERE match_id IN (` + tournamentMatchIDs + `)`,
			`DELETE FROM player_tournament_stats WHERE tournament_id = ?`,
		}
		for _, stmt := range deletes {
			if _, err := tx.ExecContext(ctx, stmt, stats.TournamentID); err != nil {
				return fmt.Errorf("clear statistics: %w", err)
			}
		}

		for _, r := range stats.GameRosters {
			ids, err := encodeIDs(r.PlayerIDs)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO game_rosters (game_id, team, player_ids, score) VALUES (?, ?, ?, ?)`,
				r.GameID, r.Team, ids, r.Score,
			); err != nil {
				return fmt.Errorf("insert game roster %d/%s: %w", r.GameID, r.Team, err)
			}
		}
		for _, r := range stats.MatchRosters {
			ids, err := encodeIDs(r.PlayerIDs)
			if err != nil {
				return err
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO match_rosters (match_id, team, player_ids, points) VALUES (?, ?, ?, ?)`,
				r.MatchID, r.Team, ids, r.Points,
			); err != nil {
				return fmt.Errorf("insert match roster %d/%s: %w", r.MatchID, r.Team, err)
			}
		}
		for _, p := range stats.PlayerMatchStats {
			if err := insertPlayerMatchStats(ctx, tx, p); err != nil {
				return err
			}
		}
		for _, p := range stats.PlayerTournamentStats {
			if err := insertPlayerTournamentStats(ctx, tx, p); err != nil {
				return err
			}
		}
		return nil
	})
}

func insertPlayerMatchStats(ctx context.Context, tx *sql.Tx, p domain.PlayerMatchStats) error {
	teammates, err := encodeIDs(p.TeammateIDs)
	if err != nil {
		return err
	}
	opponents, err := encodeIDs(p.OpponentIDs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO player_match_stats (
	player_id,
	match_id,
	match_cost,
	average_score,
	average_placement,
	average_misses,
	average_accuracy,
	games_played,
	games_won,
	games_lost,
	won,
	teammate_ids,
	opponent_ids
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		p.PlayerID,
		p.MatchID,
		p.MatchCost,
		p.AverageScore,
		p.AveragePlacement,
		p.AverageMisses,
		p.AverageAccuracy,
		p.GamesPlayed,
		p.GamesWon,
		p.GamesLost,
		boolToInt(p.Won),
		teammates,
		opponents,
	)
	if err != nil {
		return fmt.Errorf("insert player match stats %d/%d: %w", p.PlayerID, p.MatchID, err)
	}
	return nil
}

func insertPlayerTournamentStats(ctx context.Context, tx *sql.Tx, p domain.PlayerTournamentStats) error {
	teammates, err := encodeIDs(p.TeammateIDs)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
INSERT INTO player_tournament_stats (
	player_id,
	tournament_id,
	average_rating_delta,
	average_match_cost,
	average_score,
	average_placement,
	average_accuracy,
	matches_played,
	matches_won,
	matches_lost,
	games_played,
	games_won,
	games_lost,
	match_win_rate,
	teammate_ids
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`,
		p.PlayerID,
		p.TournamentID,
		p.AverageRatingDelta,
		p.AverageMatchCost,
		p.AverageScore,
		p.AveragePlacement,
		p.AverageAccuracy,
		p.MatchesPlayed,
		p.MatchesWon,
		p.MatchesLost,
		p.GamesPlayed,
		p.GamesWon,
		p.GamesLost,
		p.MatchWinRate,
		teammates,
	)
	if err != nil {
		return fmt.Errorf("insert player tournament stats %d/%d: %w", p.PlayerID, p.TournamentID, err)
	}
	return nil
}

// GetStatistics reads back the rosters and statistics stored for a tournament.
func (s *Store) GetStatistics(ctx context.Context, tournamentID int64) (storage.Statistics, error) {
	if err := s.ready(ctx); err != nil {
		return storage.Statistics{}, err
	}
	out := storage.Statistics{TournamentID: tournamentID}
	var err error
	if out.GameRosters, err = s.listGameRosters(ctx, tournamentID); err != nil {
		return storage.Statistics{}, err
	}
	if out.MatchRosters, err = s.listMatchRosters(ctx, tournamentID); err != nil {
		return storage.Statistics{}, err
	}
	if out.PlayerMatchStats, err = s.listPlayerMatchStats(ctx, tournamentID); err != nil {
		return storage.Statistics{}, err
	}
	if out.PlayerTournamentStats, err = s.listPlayerTournamentStats(ctx, tournamentID); err != nil {
		return storage.Statistics{}, err
	}
	return out, nil
}

func (s *Store) listGameRosters(ctx context.Context, tournamentID int64) ([]domain.GameRoster, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT r.game_id, r.team, r.player_ids, r.score
FROM game_rosters r
WHERE r.game_id IN (`+tournamentGameIDs+`)
ORDER BY r.game_id, r.team
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list game rosters: %w", err)
	}
	defer rows.Close()

	var rosters []domain.GameRoster
	for rows.Next() {
		var r domain.GameRoster
		var ids string
		if err := rows.Scan(&r.GameID, &r.Team, &ids, &r.Score); err != nil {
			return nil, fmt.Errorf("scan game roster: %w", err)
		}
		if r.PlayerIDs, err = decodeIDs(ids); err != nil {
			return nil, err
		}
		rosters = append(rosters, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate game rosters: %w", err)
	}
	return rosters, nil
}

func (s *Store) listMatchRosters(ctx context.Context, tournamentID int64) ([]domain.MatchRoster, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT r.match_id, r.team, r.player_ids, r.points
FROM match_rosters r
WHERE r.match_id IN (`+tournamentMatchIDs+`)
ORDER BY r.match_id, r.team
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list match rosters: %w", err)
	}
	defer rows.Close()

	var rosters []domain.MatchRoster
	for rows.Next() {
		var r domain.MatchRoster
		var ids string
		if err := rows.Scan(&r.MatchID, &r.Team, &ids, &r.Points); err != nil {
			return nil, fmt.Errorf("scan match roster: %w", err)
		}
		if r.PlayerIDs, err = decodeIDs(ids); err != nil {
			return nil, err
		}
		rosters = append(rosters, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate match rosters: %w", err)
	}
	return rosters, nil
}

func (s *Store) listPlayerMatchStats(ctx context.Context, tournamentID int64) ([]domain.PlayerMatchStats, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	p.player_id,
	p.match_id,
	p.match_cost,
	p.average_score,
	p.average_placement,
	p.average_misses,
	p.average_accuracy,
	p.games_played,
	p.games_won,
	p.games_lost,
	p.won,
	p.teammate_ids,
	p.opponent_ids
FROM player_match_stats p
WHERE p.match_id IN (`+tournamentMatchIDs+`)
ORDER BY p.match_id, p.player_id
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list player match stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PlayerMatchStats
	for rows.Next() {
		var p domain.PlayerMatchStats
		var won int
		var teammates, opponents string
		if err := rows.Scan(
			&p.PlayerID,
			&p.MatchID,
			&p.MatchCost,
			&p.AverageScore,
			&p.AveragePlacement,
			&p.AverageMisses,
			&p.AverageAccuracy,
			&p.GamesPlayed,
			&p.GamesWon,
			&p.GamesLost,
			&won,
			&teammates,
			&opponents,
		); err != nil {
			return nil, fmt.Errorf("scan player match stats: %w", err)
		}
		p.Won = won != 0
		if p.TeammateIDs, err = decodeIDs(teammates); err != nil {
			return nil, err
		}
		if p.OpponentIDs, err = decodeIDs(opponents); err != nil {
			return nil, err
		}
		stats = append(stats, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player match stats: %w", err)
	}
	return stats, nil
}

func (s *Store) listPlayerTournamentStats(ctx context.Context, tournamentID int64) ([]domain.PlayerTournamentStats, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT
	player_id,
	tournament_id,
	average_rating_delta,
	average_match_cost,
	average_score,
	average_placement,
	average_accuracy,
	matches_played,
	matches_won,
	matches_lost,
	games_played,
	games_won,
	games_lost,
	match_win_rate,
	teammate_ids
FROM player_tournament_stats
WHERE tournament_id = ?
ORDER BY player_id
`, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("list player tournament stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.PlayerTournamentStats
	for rows.Next() {
		var p domain.PlayerTournamentStats
		var teammates string
		if err := rows.Scan(
			&p.PlayerID,
			&p.TournamentID,
			&p.AverageRatingDelta,
			&p.AverageMatchCost,
			&p.AverageScore,
			&p.AveragePlacement,
			&p.AverageAccuracy,
			&p.MatchesPlayed,
			&p.MatchesWon,
			&p.MatchesLost,
			&p.GamesPlayed,
			&p.GamesWon,
			&p.GamesLost,
			&p.MatchWinRate,
			&teammates,
		); err != nil {
			return nil, fmt.Errorf("scan player tournament stats: %w", err)
		}
		if p.TeammateIDs, err = decodeIDs(teammates); err != nil {
			return nil, err
		}
		stats = append(stats, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate player tournament stats: %w", err)
	}
	return stats, nil
}
