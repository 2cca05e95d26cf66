package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fatflowers/quitsmart/internal/models"
)

// GormStore implements Store on gorm. The *gorm.DB must be opened with
// TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore { return &GormStore{db: db} }

var _ Store = (*GormStore)(nil)

func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

func (s *GormStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// updated maps a zero-row update onto ErrNotFound.
func updated(res *gorm.DB) error {
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Daily log entries.

func (s *GormStore) InsertDailyEntry(ctx context.Context, e *models.DailyLogEntry) error {
	return translate(s.db.WithContext(ctx).Create(e).Error)
}

func (s *GormStore) GetDailyEntry(ctx context.Context, accountID, id string) (*models.DailyLogEntry, error) {
	var e models.DailyLogEntry
	if err := s.db.WithContext(ctx).Where("account_id = ? AND id = ?", accountID, id).First(&e).Error; err != nil {
		return nil, translate(err)
	}
	return &e, nil
}

func (s *GormStore) UpdateDailyEntry(ctx context.Context, e *models.DailyLogEntry) error {
	res := s.db.WithContext(ctx).Model(&models.DailyLogEntry{}).
		Where("id = ? AND account_id = ?", e.ID, e.AccountID).
		Select("cigarettes_avoided", "money_saved", "health_score", "mood", "craving_level",
			"weight", "exercise_minutes", "sleep_hours", "notes", "recorded_by", "updated_at").
		Updates(e)
	return updated(res)
}

func (s *GormStore) DeleteDailyEntry(ctx context.Context, accountID, id string) error {
	res := s.db.WithContext(ctx).Where("account_id = ? AND id = ?", accountID, id).Delete(&models.DailyLogEntry{})
	return updated(res)
}

func (s *GormStore) ListDailyEntries(ctx context.Context, accountID string, r DateRange) ([]*models.DailyLogEntry, error) {
	q := s.db.WithContext(ctx).Where("account_id = ?", accountID)
	if !r.From.IsZero() {
		q = q.Where("date >= ?", r.From)
	}
	if !r.To.IsZero() {
		q = q.Where("date <= ?", r.To)
	}
	var items []*models.DailyLogEntry
	if err := q.Order("date asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Smoking profiles.

func (s *GormStore) GetProfile(ctx context.Context, accountID string) (*models.SmokingProfile, error) {
	var p models.SmokingProfile
	if err := s.db.WithContext(ctx).Where("account_id = ?", accountID).First(&p).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (s *GormStore) SaveProfile(ctx context.Context, p *models.SmokingProfile) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "account_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"quit_date", "cigarettes_per_day", "years_smoked", "cost_per_pack", "cigarettes_per_pack",
			"current_streak", "longest_streak", "cigarettes_avoided", "money_saved",
			"stats_recomputed_at", "updated_at",
		}),
	}).Create(p).Error
	return translate(err)
}

func (s *GormStore) UpdateProfileStats(ctx context.Context, accountID string, st ProfileStats) error {
	res := s.db.WithContext(ctx).Model(&models.SmokingProfile{}).
		Where("account_id = ?", accountID).
		Updates(map[string]any{
			"current_streak":      st.CurrentStreak,
			"longest_streak":      st.LongestStreak,
			"cigarettes_avoided":  st.CigarettesAvoided,
			"money_saved":         st.MoneySaved,
			"stats_recomputed_at": st.RecomputedAt,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ListProfiles(ctx context.Context) ([]*models.SmokingProfile, error) {
	var items []*models.SmokingProfile
	if err := s.db.WithContext(ctx).Order("account_id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Subscriptions.

func (s *GormStore) ListSubscriptions(ctx context.Context, accountID string) ([]*models.Subscription, error) {
	return s.listSubscriptions(s.db.WithContext(ctx), accountID)
}

func (s *GormStore) LockSubscriptions(ctx context.Context, accountID string) ([]*models.Subscription, error) {
	return s.listSubscriptions(s.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}), accountID)
}

func (s *GormStore) listSubscriptions(q *gorm.DB, accountID string) ([]*models.Subscription, error) {
	var items []*models.Subscription
	if err := q.Where("account_id = ?", accountID).Order("start_date asc, created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) InsertSubscription(ctx context.Context, sub *models.Subscription) error {
	return translate(s.db.WithContext(ctx).Create(sub).Error)
}

func (s *GormStore) UpdateSubscription(ctx context.Context, sub *models.Subscription) error {
	res := s.db.WithContext(ctx).Model(&models.Subscription{}).
		Where("id = ?", sub.ID).
		Select("status", "end_date", "assigned_coach_id", "notes", "updated_at").
		Updates(sub)
	return updated(res)
}

func (s *GormStore) ListActiveSubscriptions(ctx context.Context) ([]*models.Subscription, error) {
	var items []*models.Subscription
	err := s.db.WithContext(ctx).
		Where("status = ?", models.SubscriptionStatusActive).
		Order("account_id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) InsertSubscriptionLog(ctx context.Context, l *models.SubscriptionLog) error {
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

func (s *GormStore) UpsertSnapshots(ctx context.Context, snaps []*models.SubscriptionDailySnapshot) error {
	if len(snaps) == 0 {
		return nil
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account_id"}, {Name: "snapshot_date"}},
		DoUpdates: clause.AssignmentColumns([]string{"subscription_id", "tier", "status", "end_date", "extra", "snapshot_created_at"}),
	}).CreateInBatches(snaps, 200).Error
	return translate(err)
}

// Stages.

func (s *GormStore) ListStages(ctx context.Context, accountID string) ([]*models.StageProgress, error) {
	var items []*models.StageProgress
	err := s.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("start_date asc, created_at asc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) GetOpenStage(ctx context.Context, accountID string, lock bool) (*models.StageProgress, error) {
	q := s.db.WithContext(ctx)
	if lock {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var st models.StageProgress
	if err := q.Where("account_id = ? AND end_date IS NULL", accountID).First(&st).Error; err != nil {
		return nil, translate(err)
	}
	return &st, nil
}

func (s *GormStore) CountStages(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.StageProgress{}).Where("account_id = ?", accountID).Count(&n).Error
	return n, err
}

func (s *GormStore) InsertStage(ctx context.Context, st *models.StageProgress) error {
	return translate(s.db.WithContext(ctx).Create(st).Error)
}

func (s *GormStore) UpdateStage(ctx context.Context, st *models.StageProgress) error {
	res := s.db.WithContext(ctx).Model(&models.StageProgress{}).
		Where("id = ?", st.ID).
		Select("end_date", "percentage", "goals", "coach_notes", "user_notes", "cigarettes_smoked",
			"craving_level", "stress_level", "support_level", "challenges", "wins", "updated_at").
		Updates(st)
	return updated(res)
}

func (s *GormStore) InsertStageLog(ctx context.Context, l *models.StageLog) error {
	return translate(s.db.WithContext(ctx).Create(l).Error)
}

// Achievements.

func (s *GormStore) ListAchievements(ctx context.Context, activeOnly bool) ([]*models.Achievement, error) {
	q := s.db.WithContext(ctx)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	var items []*models.Achievement
	if err := q.Order("category, required_value, name").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) InsertAchievement(ctx context.Context, a *models.Achievement) error {
	return translate(s.db.WithContext(ctx).Create(a).Error)
}

func (s *GormStore) ListUnlocked(ctx context.Context, accountID string) ([]*models.UnlockedAchievement, error) {
	var items []*models.UnlockedAchievement
	err := s.db.WithContext(ctx).Where("account_id = ?", accountID).Order("unlocked_at asc").Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *GormStore) InsertUnlock(ctx context.Context, u *models.UnlockedAchievement) (bool, error) {
	res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(u)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *GormStore) Leaderboard(ctx context.Context, limit int) ([]LeaderboardRow, error) {
	var rows []LeaderboardRow
	err := s.db.WithContext(ctx).Table("unlocked_achievement AS u").
		Select("u.account_id AS account_id, COUNT(*) AS unlocked_count, COALESCE(SUM(a.points), 0) AS points").
		Joins("JOIN achievement AS a ON a.id = u.achievement_id").
		Group("u.account_id").
		Order("unlocked_count DESC, points DESC, u.account_id").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Activity counts owned by other services.

func (s *GormStore) CountPosts(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.CommunityPost{}).Where("account_id = ?", accountID).Count(&n).Error
	return n, err
}

func (s *GormStore) CountComments(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.PostComment{}).Where("account_id = ?", accountID).Count(&n).Error
	return n, err
}

func (s *GormStore) CountCompletedPlans(ctx context.Context, accountID string) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.QuitPlan{}).
		Where("member_id = ? AND status = ?", accountID, models.QuitPlanStatusCompleted).
		Count(&n).Error
	return n, err
}
