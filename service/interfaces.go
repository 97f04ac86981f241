package service

import (
	"context"

	"rocketbet/events"
	"rocketbet/models"
)

// UserRepository defines the interface for player account data access
type UserRepository interface {
	// GetByID retrieves a user by id; nil when not found
	GetByID(ctx context.Context, id int64) (*models.User, error)

	// GetByName retrieves a user by name; nil when not found
	GetByName(ctx context.Context, name string) (*models.User, error)

	// Create creates a new user with the starting credit balance
	Create(ctx context.Context, name, ipAddress string, startingCredits int64) (*models.User, error)

	// Update persists name/ip/active/current-round changes
	Update(ctx context.Context, user *models.User) error

	// DeductCredits debits a stake atomically, failing with
	// models.ErrInsufficientCredits when the balance cannot cover it
	DeductCredits(ctx context.Context, userID int64, amount int64) error

	// CreditWinnings credits a payout and bumps total winnings atomically
	CreditWinnings(ctx context.Context, userID int64, amount int64) error

	// SetCredits overwrites a user's balance (admin correction)
	SetCredits(ctx context.Context, userID int64, credits int64) error

	// Leaderboard returns active users ordered by credits descending
	Leaderboard(ctx context.Context, limit int) ([]*models.User, error)

	// GetAll returns every account, active or not, newest first
	GetAll(ctx context.Context) ([]*models.User, error)

	// CountByRound counts active users per current round
	CountByRound(ctx context.Context) (map[int]int, error)

	// CountActive returns the number of active users
	CountActive(ctx context.Context) (int, error)

	// ResetAll restores every account to the starting state
	ResetAll(ctx context.Context, startingCredits int64) error
}

// BetRepository defines the interface for wager ledger data access
type BetRepository interface {
	// Create appends a new pending bet
	Create(ctx context.Context, bet *models.Bet) error

	// FindPending returns all pending bets for a (round, subRound),
	// locked for the duration of the enclosing transaction
	FindPending(ctx context.Context, round, subRound int) ([]*models.Bet, error)

	// GetPendingByUser returns the user's pending bet for a
	// (round, subRound); nil when there is none
	GetPendingByUser(ctx context.Context, userID int64, round, subRound int) (*models.Bet, error)

	// GetByUser returns a user's bets, newest first
	GetByUser(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)

	// MarkSettled records the settlement outcome for a bet. Only pending
	// bets are updated; settling an already-processed bet is a no-op
	// reported through the returned flag.
	MarkSettled(ctx context.Context, betID int64, status models.BetStatus, winAmount int64) (bool, error)

	// TotalsByChoice aggregates pending stake per choice for a (round, subRound)
	TotalsByChoice(ctx context.Context, round, subRound int) ([]*models.ChoiceTotal, error)

	// Recent returns the latest bets joined with their players' names
	Recent(ctx context.Context, limit int) ([]*models.BetActivity, error)

	// Count returns the total number of bets
	Count(ctx context.Context) (int, error)

	// DeleteAll clears the wager ledger (full game reset only)
	DeleteAll(ctx context.Context) error
}

// RoundRepository defines the interface for round registry data access
type RoundRepository interface {
	// Upsert inserts or refreshes a round definition keyed by number
	Upsert(ctx context.Context, round *models.Round) error

	// GetByNumber retrieves a round definition; nil when not found
	GetByNumber(ctx context.Context, number int) (*models.Round, error)

	// GetAll returns all round definitions ordered by number
	GetAll(ctx context.Context) ([]*models.Round, error)

	// AppendResult records a published answer for a sub-round. Returns
	// false when a result already exists; existing results are never
	// overwritten.
	AppendResult(ctx context.Context, round, subRound int, answer string) (bool, error)

	// GetResults returns the published answers for a round in sub-round order
	GetResults(ctx context.Context, round int) ([]*models.RoundResult, error)

	// CountResults returns how many sub-rounds of a round have answers
	CountResults(ctx context.Context, round int) (int, error)

	// MarkCompleted flags a round as completed
	MarkCompleted(ctx context.Context, round int) error

	// LockForSettlement takes the transaction-scoped settlement lock for a
	// (round, subRound); false means another settlement pass holds it
	LockForSettlement(ctx context.Context, round, subRound int) (bool, error)

	// ResetAll clears results and completion flags for every round
	ResetAll(ctx context.Context) error
}

// UserService defines the interface for player account operations
type UserService interface {
	// Login finds or creates the account for a name, enforcing the
	// one-active-account-per-address rule, and reactivates it
	Login(ctx context.Context, name, ipAddress string) (*models.User, error)

	// Logout deactivates the account, keeping its history
	Logout(ctx context.Context, userID int64) error

	// GetUser retrieves an account by id
	GetUser(ctx context.Context, userID int64) (*models.User, error)

	// AdvanceRound moves the player to the next round, capped at round 3
	AdvanceRound(ctx context.Context, userID int64) (int, error)

	// SetCredits overwrites an account balance (admin correction)
	SetCredits(ctx context.Context, userID int64, credits int64) (*models.User, error)

	// ListUsers returns every account for the admin console
	ListUsers(ctx context.Context) ([]*models.User, error)
}

// BettingService defines the interface for wager placement
type BettingService interface {
	// PlaceBet validates and places a wager, debiting the stake in the
	// same transaction that creates the pending bet
	PlaceBet(ctx context.Context, userID int64, round int, amount int64, choice models.Choice, subRound int) (*models.Bet, error)

	// GetUserBets returns a user's bets, newest first
	GetUserBets(ctx context.Context, userID int64, limit int) ([]*models.Bet, error)
}

// SettlementService defines the interface for the settlement engine
type SettlementService interface {
	// SettleRound settles all pending bets for a (round, subRound)
	// against the published answer: classifies winners and losers,
	// redistributes the losing pool pro-rata, records the answer, and
	// marks the round completed once every sub-round has one.
	SettleRound(ctx context.Context, round int, answer string, subRound int) (*models.SettlementResult, error)
}

// RoundService defines the interface for the round registry
type RoundService interface {
	// Initialize idempotently seeds the three round definitions
	Initialize(ctx context.Context) error

	// GetRound retrieves a round definition by number
	GetRound(ctx context.Context, number int) (*models.Round, error)

	// GetRounds returns all round definitions with their results
	GetRounds(ctx context.Context) ([]*models.Round, error)

	// GetResults returns the published answers for a round
	GetResults(ctx context.Context, round int) ([]*models.RoundResult, error)

	// PublishResult records an answer without settling; duplicates are
	// rejected with models.ErrResultAlreadyPublished
	PublishResult(ctx context.Context, round int, answer string, subRound int) error
}

// StatsService defines the interface for leaderboard and overview reads
type StatsService interface {
	// Leaderboard returns ranked active users by credits
	Leaderboard(ctx context.Context, limit int) ([]*models.LeaderboardEntry, error)

	// RoundTotals aggregates pending stake per choice for a (round, subRound)
	RoundTotals(ctx context.Context, round, subRound int) ([]*models.ChoiceTotal, error)

	// Overview returns admin dashboard counters
	Overview(ctx context.Context) (*Overview, error)
}

// Overview holds the admin dashboard counters
type Overview struct {
	ActiveUsers  int
	TotalBets    int
	UsersByRound map[int]int
	TopPlayers   []*models.LeaderboardEntry
	RecentBets   []*models.BetActivity
}

// GameService defines the interface for whole-game operations
type GameService interface {
	// Reset zeroes accounts, clears the wager ledger and round history
	Reset(ctx context.Context) error
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and flushes pending events
	Commit() error

	// Rollback rolls back the transaction and discards pending events
	Rollback() error

	// Repository getters
	UserRepository() UserRepository
	BetRepository() BetRepository
	RoundRepository() RoundRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
