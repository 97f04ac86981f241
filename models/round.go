package models

import (
	"time"
)

// Round represents one of the three round definitions: betting bounds,
// sub-round count and completion state.
type Round struct {
	Number      int       `db:"round_number"`
	Name        string    `db:"name"`
	Description string    `db:"description"`
	MinBet      int64     `db:"min_bet"`
	MaxBet      int64     `db:"max_bet"`
	SubRounds   int       `db:"sub_rounds"`
	IsActive    bool      `db:"is_active"`
	IsCompleted bool      `db:"is_completed"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// RoundResult is a published answer for one sub-round, immutable once recorded
type RoundResult struct {
	Round     int       `db:"round_number"`
	SubRound  int       `db:"sub_round"`
	Answer    string    `db:"correct_answer"`
	CreatedAt time.Time `db:"created_at"`
}

// ValidBetAmount checks a stake against the round's betting bounds
func (r *Round) ValidBetAmount(amount int64) bool {
	return amount >= r.MinBet && amount <= r.MaxBet
}

// ValidSubRound checks a sub-round index against the round's sub-round count
func (r *Round) ValidSubRound(subRound int) bool {
	return subRound >= 1 && subRound <= r.SubRounds
}

// SeedRounds returns the fixed three-round game definition. Round numbers are
// the unique keys; initialization upserts by number so re-seeding is a no-op.
func SeedRounds() []*Round {
	return []*Round{
		{
			Number:      RoundRocketDistance,
			Name:        "Rocket Distance Gamble",
			Description: "Choose which rocket will go the farthest",
			MinBet:      10,
			MaxBet:      500,
			SubRounds:   1,
		},
		{
			Number:      RoundRangeGuess,
			Name:        "Projectile Range Prediction",
			Description: "Predict the range of the syringe rocket",
			MinBet:      10,
			MaxBet:      500,
			SubRounds:   1,
		},
		{
			Number:      RoundDogFights,
			Name:        "Nexus Dog Fights",
			Description: "20 rounds of epic dog fight predictions",
			MinBet:      10,
			MaxBet:      200,
			SubRounds:   20,
		},
	}
}
