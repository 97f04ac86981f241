package repository

import (
	"context"
	"fmt"

	"rocketbet/database"
	"rocketbet/models"

	"github.com/jackc/pgx/v5"
)

// BetRepository implements the service.BetRepository interface
type BetRepository struct {
	q queryable
}

// NewBetRepository creates a new bet repository
func NewBetRepository(db *database.DB) *BetRepository {
	return &BetRepository{q: db.Pool}
}

// newBetRepositoryWithTx creates a new bet repository with a transaction
func newBetRepositoryWithTx(tx queryable) *BetRepository {
	return &BetRepository{q: tx}
}

const betColumns = `id, user_id, round, sub_round, amount, choice, status, win_amount, processed, created_at, updated_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	var bet models.Bet
	err := row.Scan(
		&bet.ID,
		&bet.UserID,
		&bet.Round,
		&bet.SubRound,
		&bet.Amount,
		&bet.Choice,
		&bet.Status,
		&bet.WinAmount,
		&bet.Processed,
		&bet.CreatedAt,
		&bet.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &bet, nil
}

func (r *BetRepository) queryBets(ctx context.Context, query string, args ...any) ([]*models.Bet, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}

	return bets, rows.Err()
}

// Create appends a new pending bet
func (r *BetRepository) Create(ctx context.Context, bet *models.Bet) error {
	query := `
		INSERT INTO bets (user_id, round, sub_round, amount, choice)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, status, win_amount, processed, created_at, updated_at
	`

	err := r.q.QueryRow(ctx, query, bet.UserID, bet.Round, bet.SubRound, bet.Amount, bet.Choice).Scan(
		&bet.ID,
		&bet.Status,
		&bet.WinAmount,
		&bet.Processed,
		&bet.CreatedAt,
		&bet.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ErrDuplicatePendingBet
		}
		return fmt.Errorf("failed to create bet for user %d: %w", bet.UserID, err)
	}

	return nil
}

// FindPending returns all pending bets for a (round, subRound). Rows
// are locked until the enclosing transaction ends so a concurrent
// settlement pass cannot classify the same bets.
func (r *BetRepository) FindPending(ctx context.Context, round, subRound int) ([]*models.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bets
		WHERE round = $1 AND sub_round = $2 AND status = 'pending' AND processed = FALSE
		ORDER BY id
		FOR UPDATE
	`, betColumns)

	bets, err := r.queryBets(ctx, query, round, subRound)
	if err != nil {
		return nil, fmt.Errorf("failed to find pending bets for round %d/%d: %w", round, subRound, err)
	}

	return bets, nil
}

// GetPendingByUser returns the user's pending bet for a (round, subRound)
func (r *BetRepository) GetPendingByUser(ctx context.Context, userID int64, round, subRound int) (*models.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bets
		WHERE user_id = $1 AND round = $2 AND sub_round = $3 AND status = 'pending'
	`, betColumns)

	bet, err := scanBet(r.q.QueryRow(ctx, query, userID, round, subRound))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending bet for user %d: %w", userID, err)
	}

	return bet, nil
}

// GetByUser returns a user's bets, newest first
func (r *BetRepository) GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM bets
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, betColumns)

	bets, err := r.queryBets(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get bets for user %d: %w", userID, err)
	}

	return bets, nil
}

// MarkSettled records the settlement outcome for a bet. The status
// guard makes settlement idempotent: a bet leaves pending exactly once,
// and a second attempt reports false instead of overwriting.
func (r *BetRepository) MarkSettled(ctx context.Context, betID int64, status models.BetStatus, winAmount int64) (bool, error) {
	query := `
		UPDATE bets
		SET status = $1, win_amount = $2, processed = TRUE, updated_at = NOW()
		WHERE id = $3 AND status = 'pending' AND processed = FALSE
	`

	result, err := r.q.Exec(ctx, query, status, winAmount, betID)
	if err != nil {
		return false, fmt.Errorf("failed to settle bet %d: %w", betID, err)
	}

	return result.RowsAffected() > 0, nil
}

// TotalsByChoice aggregates pending stake per choice for a (round, subRound)
func (r *BetRepository) TotalsByChoice(ctx context.Context, round, subRound int) ([]*models.ChoiceTotal, error) {
	query := `
		SELECT choice, COUNT(*), SUM(amount)
		FROM bets
		WHERE round = $1 AND sub_round = $2 AND status = 'pending'
		GROUP BY choice
		ORDER BY SUM(amount) DESC, choice ASC
	`

	rows, err := r.q.Query(ctx, query, round, subRound)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate bets for round %d/%d: %w", round, subRound, err)
	}
	defer rows.Close()

	var totals []*models.ChoiceTotal
	for rows.Next() {
		var total models.ChoiceTotal
		if err := rows.Scan(&total.Choice, &total.BetCount, &total.TotalAmount); err != nil {
			return nil, fmt.Errorf("failed to scan choice total: %w", err)
		}
		totals = append(totals, &total)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate choice totals: %w", err)
	}

	return totals, nil
}

// Recent returns the latest bets joined with their players' names
func (r *BetRepository) Recent(ctx context.Context, limit int) ([]*models.BetActivity, error) {
	query := `
		SELECT b.id, u.name, b.round, b.sub_round, b.amount, b.choice, b.status, b.win_amount, b.created_at
		FROM bets b
		JOIN users u ON u.id = b.user_id
		ORDER BY b.created_at DESC, b.id DESC
		LIMIT $1
	`

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent bets: %w", err)
	}
	defer rows.Close()

	var activity []*models.BetActivity
	for rows.Next() {
		var row models.BetActivity
		err := rows.Scan(
			&row.BetID,
			&row.UserName,
			&row.Round,
			&row.SubRound,
			&row.Amount,
			&row.Choice,
			&row.Status,
			&row.WinAmount,
			&row.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan recent bet: %w", err)
		}
		activity = append(activity, &row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recent bets: %w", err)
	}

	return activity, nil
}

// Count returns the total number of bets
func (r *BetRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM bets`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count bets: %w", err)
	}
	return count, nil
}

// DeleteAll clears the wager ledger
func (r *BetRepository) DeleteAll(ctx context.Context) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM bets`); err != nil {
		return fmt.Errorf("failed to delete bets: %w", err)
	}
	return nil
}
