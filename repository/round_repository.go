package repository

import (
	"context"
	"fmt"

	"rocketbet/database"
	"rocketbet/models"

	"github.com/jackc/pgx/v5"
)

// RoundRepository implements the service.RoundRepository interface
type RoundRepository struct {
	q queryable
}

// NewRoundRepository creates a new round repository
func NewRoundRepository(db *database.DB) *RoundRepository {
	return &RoundRepository{q: db.Pool}
}

// newRoundRepositoryWithTx creates a new round repository with a transaction
func newRoundRepositoryWithTx(tx queryable) *RoundRepository {
	return &RoundRepository{q: tx}
}

const roundColumns = `round_number, name, description, min_bet, max_bet, sub_rounds, is_active, is_completed, created_at, updated_at`

func scanRound(row pgx.Row) (*models.Round, error) {
	var round models.Round
	err := row.Scan(
		&round.Number,
		&round.Name,
		&round.Description,
		&round.MinBet,
		&round.MaxBet,
		&round.SubRounds,
		&round.IsActive,
		&round.IsCompleted,
		&round.CreatedAt,
		&round.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// Upsert inserts or refreshes a round definition keyed by number.
// Completion state and results survive re-seeding.
func (r *RoundRepository) Upsert(ctx context.Context, round *models.Round) error {
	query := `
		INSERT INTO rounds (round_number, name, description, min_bet, max_bet, sub_rounds, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (round_number) DO UPDATE
		SET name = EXCLUDED.name,
		    description = EXCLUDED.description,
		    min_bet = EXCLUDED.min_bet,
		    max_bet = EXCLUDED.max_bet,
		    sub_rounds = EXCLUDED.sub_rounds,
		    updated_at = NOW()
	`

	_, err := r.q.Exec(ctx, query,
		round.Number, round.Name, round.Description,
		round.MinBet, round.MaxBet, round.SubRounds, round.IsActive)
	if err != nil {
		return fmt.Errorf("failed to upsert round %d: %w", round.Number, err)
	}

	return nil
}

// GetByNumber retrieves a round definition
func (r *RoundRepository) GetByNumber(ctx context.Context, number int) (*models.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds WHERE round_number = $1`, roundColumns)

	round, err := scanRound(r.q.QueryRow(ctx, query, number))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round %d: %w", number, err)
	}

	return round, nil
}

// GetAll returns all round definitions ordered by number
func (r *RoundRepository) GetAll(ctx context.Context) ([]*models.Round, error) {
	query := fmt.Sprintf(`SELECT %s FROM rounds ORDER BY round_number`, roundColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get rounds: %w", err)
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		round, err := scanRound(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan round: %w", err)
		}
		rounds = append(rounds, round)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate rounds: %w", err)
	}

	return rounds, nil
}

// AppendResult records a published answer for a sub-round. ON CONFLICT
// DO NOTHING keeps the first answer authoritative: re-running settlement
// for the same sub-round never rewrites history.
func (r *RoundRepository) AppendResult(ctx context.Context, round, subRound int, answer string) (bool, error) {
	query := `
		INSERT INTO round_results (round_number, sub_round, correct_answer)
		VALUES ($1, $2, $3)
		ON CONFLICT (round_number, sub_round) DO NOTHING
	`

	result, err := r.q.Exec(ctx, query, round, subRound, answer)
	if err != nil {
		return false, fmt.Errorf("failed to record result for round %d/%d: %w", round, subRound, err)
	}

	return result.RowsAffected() > 0, nil
}

// GetResults returns the published answers for a round in sub-round order
func (r *RoundRepository) GetResults(ctx context.Context, round int) ([]*models.RoundResult, error) {
	query := `
		SELECT round_number, sub_round, correct_answer, created_at
		FROM round_results
		WHERE round_number = $1
		ORDER BY sub_round
	`

	rows, err := r.q.Query(ctx, query, round)
	if err != nil {
		return nil, fmt.Errorf("failed to get results for round %d: %w", round, err)
	}
	defer rows.Close()

	var results []*models.RoundResult
	for rows.Next() {
		var result models.RoundResult
		if err := rows.Scan(&result.Round, &result.SubRound, &result.Answer, &result.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan round result: %w", err)
		}
		results = append(results, &result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round results: %w", err)
	}

	return results, nil
}

// CountResults returns how many sub-rounds of a round have answers
func (r *RoundRepository) CountResults(ctx context.Context, round int) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM round_results WHERE round_number = $1`, round).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count results for round %d: %w", round, err)
	}
	return count, nil
}

// MarkCompleted flags a round as completed
func (r *RoundRepository) MarkCompleted(ctx context.Context, round int) error {
	query := `
		UPDATE rounds
		SET is_completed = TRUE, is_active = FALSE, updated_at = NOW()
		WHERE round_number = $1
	`

	result, err := r.q.Exec(ctx, query, round)
	if err != nil {
		return fmt.Errorf("failed to mark round %d completed: %w", round, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrRoundNotFound
	}

	return nil
}

// LockForSettlement takes a transaction-scoped advisory lock keyed by
// (round, subRound). The lock is released automatically at commit or
// rollback; false means another settlement pass is running.
func (r *RoundRepository) LockForSettlement(ctx context.Context, round, subRound int) (bool, error) {
	var acquired bool
	err := r.q.QueryRow(ctx, `SELECT pg_try_advisory_xact_lock($1, $2)`, round, subRound).Scan(&acquired)
	if err != nil {
		return false, fmt.Errorf("failed to acquire settlement lock for round %d/%d: %w", round, subRound, err)
	}
	return acquired, nil
}

// ResetAll clears results and completion flags for every round
func (r *RoundRepository) ResetAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM round_results`); err != nil {
		return fmt.Errorf("failed to delete round results: %w", err)
	}

	query := `
		UPDATE rounds
		SET is_active = FALSE, is_completed = FALSE, updated_at = NOW()
	`
	if _, err := r.q.Exec(ctx, query); err != nil {
		return fmt.Errorf("failed to reset rounds: %w", err)
	}

	return nil
}
