package repository

import (
	"context"
	"fmt"

	"rocketbet/database"
	"rocketbet/models"

	"github.com/jackc/pgx/v5"
)

// UserRepository implements the service.UserRepository interface
type UserRepository struct {
	q queryable
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) *UserRepository {
	return &UserRepository{q: db.Pool}
}

// newUserRepositoryWithTx creates a new user repository with a transaction
func newUserRepositoryWithTx(tx queryable) *UserRepository {
	return &UserRepository{q: tx}
}

const userColumns = `id, name, ip_address, credits, current_round, total_winnings, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.IPAddress,
		&user.Credits,
		&user.CurrentRound,
		&user.TotalWinnings,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by id
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}

	return user, nil
}

// GetByName retrieves a user by name
func (r *UserRepository) GetByName(ctx context.Context, name string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE name = $1`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, name))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by name %q: %w", name, err)
	}

	return user, nil
}

// Create creates a new user with the starting credit balance
func (r *UserRepository) Create(ctx context.Context, name, ipAddress string, startingCredits int64) (*models.User, error) {
	query := fmt.Sprintf(`
		INSERT INTO users (name, ip_address, credits)
		VALUES ($1, $2, $3)
		RETURNING %s
	`, userColumns)

	user, err := scanUser(r.q.QueryRow(ctx, query, name, ipAddress, startingCredits))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, models.ErrNameTaken
		}
		return nil, fmt.Errorf("failed to create user %q: %w", name, err)
	}

	return user, nil
}

// Update persists name, address, active flag and current round changes
func (r *UserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users
		SET name = $1, ip_address = $2, current_round = $3, is_active = $4, updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.q.Exec(ctx, query, user.Name, user.IPAddress, user.CurrentRound, user.IsActive, user.ID)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// DeductCredits debits a stake atomically. The WHERE guard makes the
// balance check and the debit a single statement, so two concurrent
// placements cannot both succeed against one balance.
func (r *UserRepository) DeductCredits(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET credits = credits - $1, updated_at = NOW()
		WHERE id = $2 AND credits >= $1
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to deduct credits for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		user, err := r.GetByID(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to check user: %w", err)
		}
		if user == nil {
			return models.ErrUserNotFound
		}
		return models.ErrInsufficientCredits
	}

	return nil
}

// CreditWinnings credits a payout and bumps total winnings atomically
func (r *UserRepository) CreditWinnings(ctx context.Context, userID int64, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("amount must be positive")
	}

	query := `
		UPDATE users
		SET credits = credits + $1, total_winnings = total_winnings + $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, amount, userID)
	if err != nil {
		return fmt.Errorf("failed to credit winnings for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// SetCredits overwrites a user's balance
func (r *UserRepository) SetCredits(ctx context.Context, userID int64, credits int64) error {
	if credits < 0 {
		return fmt.Errorf("credits must not be negative")
	}

	query := `
		UPDATE users
		SET credits = $1, updated_at = NOW()
		WHERE id = $2
	`

	result, err := r.q.Exec(ctx, query, credits, userID)
	if err != nil {
		return fmt.Errorf("failed to set credits for user %d: %w", userID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrUserNotFound
	}

	return nil
}

// Leaderboard returns active users ordered by credits descending
func (r *UserRepository) Leaderboard(ctx context.Context, limit int) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE is_active = TRUE
		ORDER BY credits DESC, total_winnings DESC, name ASC
		LIMIT $1
	`, userColumns)

	rows, err := r.q.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// GetAll returns every account, newest first
func (r *UserRepository) GetAll(ctx context.Context) ([]*models.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		ORDER BY created_at DESC
	`, userColumns)

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get all users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// CountByRound counts active users per current round
func (r *UserRepository) CountByRound(ctx context.Context) (map[int]int, error) {
	query := `
		SELECT current_round, COUNT(*)
		FROM users
		WHERE is_active = TRUE
		GROUP BY current_round
	`

	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to count users by round: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var round, count int
		if err := rows.Scan(&round, &count); err != nil {
			return nil, fmt.Errorf("failed to scan round count: %w", err)
		}
		counts[round] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate round counts: %w", err)
	}

	return counts, nil
}

// CountActive returns the number of active users
func (r *UserRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_active = TRUE`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count active users: %w", err)
	}
	return count, nil
}

// ResetAll restores every account to the starting state
func (r *UserRepository) ResetAll(ctx context.Context, startingCredits int64) error {
	query := `
		UPDATE users
		SET credits = $1, current_round = 1, total_winnings = 0, updated_at = NOW()
	`

	if _, err := r.q.Exec(ctx, query, startingCredits); err != nil {
		return fmt.Errorf("failed to reset users: %w", err)
	}

	return nil
}
