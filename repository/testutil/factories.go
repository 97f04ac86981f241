package testutil

import (
	"context"
	"fmt"
	"testing"

	"rocketbet/database"
	"rocketbet/models"

	"github.com/stretchr/testify/require"
)

// CreateTestUser inserts a user directly and returns it
func CreateTestUser(t *testing.T, db *database.DB, name string, credits int64) *models.User {
	ctx := context.Background()

	query := `
		INSERT INTO users (name, ip_address, credits)
		VALUES ($1, $2, $3)
		RETURNING id, name, ip_address, credits, current_round, total_winnings, is_active, created_at, updated_at
	`

	var user models.User
	err := db.Pool.QueryRow(ctx, query, name, "127.0.0.1", credits).Scan(
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
	require.NoError(t, err)

	return &user
}

// CreateTestBet inserts a pending bet directly and returns it
func CreateTestBet(t *testing.T, db *database.DB, userID int64, round, subRound int, amount int64, choice string) *models.Bet {
	ctx := context.Background()

	query := `
		INSERT INTO bets (user_id, round, sub_round, amount, choice)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, round, sub_round, amount, choice, status, win_amount, processed, created_at, updated_at
	`

	var bet models.Bet
	err := db.Pool.QueryRow(ctx, query, userID, round, subRound, amount, choice).Scan(
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
	require.NoError(t, err)

	return &bet
}

// SeedRounds inserts the three round definitions
func SeedRounds(t *testing.T, db *database.DB) {
	ctx := context.Background()

	for _, round := range models.SeedRounds() {
		_, err := db.Pool.Exec(ctx, `
			INSERT INTO rounds (round_number, name, description, min_bet, max_bet, sub_rounds)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (round_number) DO NOTHING
		`, round.Number, round.Name, round.Description, round.MinBet, round.MaxBet, round.SubRounds)
		require.NoError(t, err)
	}
}

// UniqueName returns a name unlikely to collide within a test run
var nameCounter int

func UniqueName(prefix string) string {
	nameCounter++
	return fmt.Sprintf("%s-%d", prefix, nameCounter)
}
