package models

import (
	"time"
)

// BetStatus represents the settlement state of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusWon     BetStatus = "won"
	BetStatusLost    BetStatus = "lost"
)

// Bet represents a single wager placed by a user on a round outcome.
// Choice holds the canonical text encoding produced by Choice.Encode;
// settlement compares it against the published answer without assuming
// it is well formed.
type Bet struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Round     int       `db:"round"`
	SubRound  int       `db:"sub_round"`
	Amount    int64     `db:"amount"`
	Choice    string    `db:"choice"`
	Status    BetStatus `db:"status"`
	WinAmount int64     `db:"win_amount"`
	Processed bool      `db:"processed"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// IsPending checks if the bet is still awaiting settlement
func (b *Bet) IsPending() bool {
	return b.Status == BetStatusPending && !b.Processed
}

// ChoiceTotal aggregates the stake placed on a single choice of a
// (round, subRound), used by the admin overview.
type ChoiceTotal struct {
	Choice      string
	BetCount    int
	TotalAmount int64
}

// BetActivity is one row of the admin dashboard's recent-wagers feed:
// a bet joined with the name of the player who placed it.
type BetActivity struct {
	BetID     int64
	UserName  string
	Round     int
	SubRound  int
	Amount    int64
	Choice    string
	Status    BetStatus
	WinAmount int64
	CreatedAt time.Time
}
