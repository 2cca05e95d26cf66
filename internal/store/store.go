package store

import (
	"context"
	"errors"
	"time"

	"github.com/fatflowers/quitsmart/internal/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// DateRange bounds a daily-log query; zero values are open ends.
type DateRange struct {
	From time.Time
	To   time.Time
}

// LeaderboardRow is one account's achievement tally.
type LeaderboardRow struct {
	AccountID     string `json:"account_id"`
	UnlockedCount int64  `json:"unlocked_count"`
	Points        int64  `json:"points"`
}

// ProfileStats is the cached part of a smoking profile.
type ProfileStats struct {
	CurrentStreak     int
	LongestStreak     int
	CigarettesAvoided int
	MoneySaved        float64
	RecomputedAt      time.Time
}

// Store is the persistence boundary of the engine. Every read and write is
// scoped by account id except the catalog and population queries.
//
// Implementations translate uniqueness violations into ErrDuplicate and
// missing rows into ErrNotFound.
type Store interface {
	// InTx runs fn inside one transaction. Returning an error rolls back.
	InTx(ctx context.Context, fn func(tx Store) error) error

	InsertDailyEntry(ctx context.Context, e *models.DailyLogEntry) error
	GetDailyEntry(ctx context.Context, accountID, id string) (*models.DailyLogEntry, error)
	UpdateDailyEntry(ctx context.Context, e *models.DailyLogEntry) error
	DeleteDailyEntry(ctx context.Context, accountID, id string) error
	// ListDailyEntries returns entries ordered by date ascending.
	ListDailyEntries(ctx context.Context, accountID string, r DateRange) ([]*models.DailyLogEntry, error)

	GetProfile(ctx context.Context, accountID string) (*models.SmokingProfile, error)
	// SaveProfile inserts or replaces the account's profile.
	SaveProfile(ctx context.Context, p *models.SmokingProfile) error
	// UpdateProfileStats writes only the cached statistics columns, leaving
	// the baseline untouched. ErrNotFound when the account has no profile.
	UpdateProfileStats(ctx context.Context, accountID string, st ProfileStats) error
	ListProfiles(ctx context.Context) ([]*models.SmokingProfile, error)

	// ListSubscriptions returns the account's history ordered by start date.
	ListSubscriptions(ctx context.Context, accountID string) ([]*models.Subscription, error)
	// LockSubscriptions is ListSubscriptions holding row locks until the
	// surrounding transaction ends.
	LockSubscriptions(ctx context.Context, accountID string) ([]*models.Subscription, error)
	InsertSubscription(ctx context.Context, s *models.Subscription) error
	UpdateSubscription(ctx context.Context, s *models.Subscription) error
	// ListActiveSubscriptions returns ACTIVE rows of every account.
	ListActiveSubscriptions(ctx context.Context) ([]*models.Subscription, error)
	InsertSubscriptionLog(ctx context.Context, l *models.SubscriptionLog) error
	UpsertSnapshots(ctx context.Context, snaps []*models.SubscriptionDailySnapshot) error

	// ListStages returns the account's stage records ordered by start date.
	ListStages(ctx context.Context, accountID string) ([]*models.StageProgress, error)
	// GetOpenStage returns the record without an end date. With lock set the
	// row stays locked until the surrounding transaction ends.
	GetOpenStage(ctx context.Context, accountID string, lock bool) (*models.StageProgress, error)
	CountStages(ctx context.Context, accountID string) (int64, error)
	InsertStage(ctx context.Context, s *models.StageProgress) error
	UpdateStage(ctx context.Context, s *models.StageProgress) error
	InsertStageLog(ctx context.Context, l *models.StageLog) error

	ListAchievements(ctx context.Context, activeOnly bool) ([]*models.Achievement, error)
	InsertAchievement(ctx context.Context, a *models.Achievement) error
	ListUnlocked(ctx context.Context, accountID string) ([]*models.UnlockedAchievement, error)
	// InsertUnlock inserts the pair unless it already exists and reports
	// whether this call created it.
	InsertUnlock(ctx context.Context, u *models.UnlockedAchievement) (bool, error)
	// Leaderboard ranks accounts by unlock count, then points.
	Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error)

	CountPosts(ctx context.Context, accountID string) (int64, error)
	CountComments(ctx context.Context, accountID string) (int64, error)
	CountCompletedPlans(ctx context.Context, accountID string) (int64, error)
}
