package models

import (
	"time"
)

// User represents a player account with a credit balance
type User struct {
	ID            int64     `db:"id"`
	Name          string    `db:"name"`
	IPAddress     string    `db:"ip_address"`
	Credits       int64     `db:"credits"`
	CurrentRound  int       `db:"current_round"`
	TotalWinnings int64     `db:"total_winnings"`
	IsActive      bool      `db:"is_active"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// CanAfford checks whether the user can cover a stake of the given size
func (u *User) CanAfford(amount int64) bool {
	return amount > 0 && u.Credits >= amount
}

// LeaderboardEntry is a single row of the credits leaderboard
type LeaderboardEntry struct {
	Rank          int
	UserID        int64
	Name          string
	Credits       int64
	TotalWinnings int64
	CurrentRound  int
}
