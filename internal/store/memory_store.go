package store

import (
	"cmp"
	"context"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/samber/lo"

	"github.com/fatflowers/quitsmart/internal/models"
)

type memData struct {
	entries      map[string]models.DailyLogEntry
	profiles     map[string]models.SmokingProfile // by account id
	subs         map[string]models.Subscription
	subLogs      []models.SubscriptionLog
	snapshots    map[string]models.SubscriptionDailySnapshot // by account id + date
	stages       map[string]models.StageProgress
	stageLogs    []models.StageLog
	achievements map[string]models.Achievement
	unlocked     map[string]models.UnlockedAchievement // by account id + achievement id
	posts        map[string]int64
	comments     map[string]int64
	plans        []models.QuitPlan
}

func newMemData() *memData {
	return &memData{
		entries:      map[string]models.DailyLogEntry{},
		profiles:     map[string]models.SmokingProfile{},
		subs:         map[string]models.Subscription{},
		snapshots:    map[string]models.SubscriptionDailySnapshot{},
		stages:       map[string]models.StageProgress{},
		achievements: map[string]models.Achievement{},
		unlocked:     map[string]models.UnlockedAchievement{},
		posts:        map[string]int64{},
		comments:     map[string]int64{},
	}
}

func (d *memData) clone() *memData {
	return &memData{
		entries:      maps.Clone(d.entries),
		profiles:     maps.Clone(d.profiles),
		subs:         maps.Clone(d.subs),
		subLogs:      slices.Clone(d.subLogs),
		snapshots:    maps.Clone(d.snapshots),
		stages:       maps.Clone(d.stages),
		stageLogs:    slices.Clone(d.stageLogs),
		achievements: maps.Clone(d.achievements),
		unlocked:     maps.Clone(d.unlocked),
		posts:        maps.Clone(d.posts),
		comments:     maps.Clone(d.comments),
		plans:        slices.Clone(d.plans),
	}
}

type memRoot struct {
	mu   sync.Mutex
	data *memData
}

// MemoryStore is an in-process Store used by tests and the "memory" database
// driver. Transactions are serialised by one mutex and restored from a
// snapshot when fn fails, which gives the same all-or-nothing behaviour as
// the database for a single process.
type MemoryStore struct {
	root *memRoot
	inTx bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{root: &memRoot{data: newMemData()}}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) lock() func() {
	if m.inTx {
		return func() {}
	}
	m.root.mu.Lock()
	return m.root.mu.Unlock
}

func (m *MemoryStore) d() *memData { return m.root.data }

func (m *MemoryStore) InTx(ctx context.Context, fn func(tx Store) error) error {
	if m.inTx {
		return fn(m)
	}
	m.root.mu.Lock()
	defer m.root.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	saved := m.root.data.clone()
	if err := fn(&MemoryStore{root: m.root, inTx: true}); err != nil {
		m.root.data = saved
		return err
	}
	return nil
}

func stamp(created, updated *time.Time) {
	now := time.Now().UTC()
	if created != nil && created.IsZero() {
		*created = now
	}
	if updated != nil {
		*updated = now
	}
}

func ptr[T any](v T) *T { return &v }

// Daily log entries.

func (m *MemoryStore) InsertDailyEntry(_ context.Context, e *models.DailyLogEntry) error {
	defer m.lock()()
	for _, cur := range m.d().entries {
		if cur.ID == e.ID || (cur.AccountID == e.AccountID && cur.Date.Equal(e.Date)) {
			return ErrDuplicate
		}
	}
	stamp(&e.CreatedAt, &e.UpdatedAt)
	m.d().entries[e.ID] = *e
	return nil
}

func (m *MemoryStore) GetDailyEntry(_ context.Context, accountID, id string) (*models.DailyLogEntry, error) {
	defer m.lock()()
	e, ok := m.d().entries[id]
	if !ok || e.AccountID != accountID {
		return nil, ErrNotFound
	}
	return &e, nil
}

func (m *MemoryStore) UpdateDailyEntry(_ context.Context, e *models.DailyLogEntry) error {
	defer m.lock()()
	cur, ok := m.d().entries[e.ID]
	if !ok || cur.AccountID != e.AccountID {
		return ErrNotFound
	}
	stamp(nil, &e.UpdatedAt)
	next := *e
	next.Date, next.CreatedAt = cur.Date, cur.CreatedAt
	m.d().entries[e.ID] = next
	return nil
}

func (m *MemoryStore) DeleteDailyEntry(_ context.Context, accountID, id string) error {
	defer m.lock()()
	cur, ok := m.d().entries[id]
	if !ok || cur.AccountID != accountID {
		return ErrNotFound
	}
	delete(m.d().entries, id)
	return nil
}

func (m *MemoryStore) ListDailyEntries(_ context.Context, accountID string, r DateRange) ([]*models.DailyLogEntry, error) {
	defer m.lock()()
	var out []*models.DailyLogEntry
	for _, e := range m.d().entries {
		if e.AccountID != accountID {
			continue
		}
		if !r.From.IsZero() && e.Date.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && e.Date.After(r.To) {
			continue
		}
		out = append(out, ptr(e))
	}
	slices.SortFunc(out, func(a, b *models.DailyLogEntry) int { return a.Date.Compare(b.Date) })
	return out, nil
}

// Smoking profiles.

func (m *MemoryStore) GetProfile(_ context.Context, accountID string) (*models.SmokingProfile, error) {
	defer m.lock()()
	p, ok := m.d().profiles[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MemoryStore) SaveProfile(_ context.Context, p *models.SmokingProfile) error {
	defer m.lock()()
	if cur, ok := m.d().profiles[p.AccountID]; ok {
		p.ID, p.CreatedAt = cur.ID, cur.CreatedAt
	}
	stamp(&p.CreatedAt, &p.UpdatedAt)
	m.d().profiles[p.AccountID] = *p
	return nil
}

func (m *MemoryStore) UpdateProfileStats(_ context.Context, accountID string, st ProfileStats) error {
	defer m.lock()()
	p, ok := m.d().profiles[accountID]
	if !ok {
		return ErrNotFound
	}
	p.CurrentStreak, p.LongestStreak = st.CurrentStreak, st.LongestStreak
	p.CigarettesAvoided, p.MoneySaved = st.CigarettesAvoided, st.MoneySaved
	p.StatsRecomputedAt = ptr(st.RecomputedAt)
	stamp(nil, &p.UpdatedAt)
	m.d().profiles[accountID] = p
	return nil
}

func (m *MemoryStore) ListProfiles(_ context.Context) ([]*models.SmokingProfile, error) {
	defer m.lock()()
	out := lo.MapToSlice(m.d().profiles, func(_ string, p models.SmokingProfile) *models.SmokingProfile { return ptr(p) })
	slices.SortFunc(out, func(a, b *models.SmokingProfile) int { return cmp.Compare(a.AccountID, b.AccountID) })
	return out, nil
}

// Subscriptions.

func (m *MemoryStore) ListSubscriptions(_ context.Context, accountID string) ([]*models.Subscription, error) {
	defer m.lock()()
	return m.subscriptionsOf(accountID), nil
}

func (m *MemoryStore) LockSubscriptions(ctx context.Context, accountID string) ([]*models.Subscription, error) {
	return m.ListSubscriptions(ctx, accountID)
}

func (m *MemoryStore) subscriptionsOf(accountID string) []*models.Subscription {
	var out []*models.Subscription
	for _, s := range m.d().subs {
		if s.AccountID == accountID {
			out = append(out, ptr(s))
		}
	}
	slices.SortFunc(out, func(a, b *models.Subscription) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out
}

func (m *MemoryStore) activeConflict(s *models.Subscription) bool {
	if s.Status != models.SubscriptionStatusActive {
		return false
	}
	for _, cur := range m.d().subs {
		if cur.ID != s.ID && cur.AccountID == s.AccountID && cur.Status == models.SubscriptionStatusActive {
			return true
		}
	}
	return false
}

func (m *MemoryStore) InsertSubscription(_ context.Context, s *models.Subscription) error {
	defer m.lock()()
	if _, ok := m.d().subs[s.ID]; ok || m.activeConflict(s) {
		return ErrDuplicate
	}
	stamp(&s.CreatedAt, &s.UpdatedAt)
	m.d().subs[s.ID] = *s
	return nil
}

func (m *MemoryStore) UpdateSubscription(_ context.Context, s *models.Subscription) error {
	defer m.lock()()
	cur, ok := m.d().subs[s.ID]
	if !ok {
		return ErrNotFound
	}
	if m.activeConflict(s) {
		return ErrDuplicate
	}
	stamp(nil, &s.UpdatedAt)
	cur.Status, cur.EndDate, cur.AssignedCoachID, cur.Notes, cur.UpdatedAt = s.Status, s.EndDate, s.AssignedCoachID, s.Notes, s.UpdatedAt
	m.d().subs[s.ID] = cur
	return nil
}

func (m *MemoryStore) ListActiveSubscriptions(_ context.Context) ([]*models.Subscription, error) {
	defer m.lock()()
	out := lo.FilterMap(lo.Values(m.d().subs), func(s models.Subscription, _ int) (*models.Subscription, bool) {
		return ptr(s), s.Status == models.SubscriptionStatusActive
	})
	slices.SortFunc(out, func(a, b *models.Subscription) int { return cmp.Compare(a.AccountID, b.AccountID) })
	return out, nil
}

func (m *MemoryStore) InsertSubscriptionLog(_ context.Context, l *models.SubscriptionLog) error {
	defer m.lock()()
	stamp(&l.CreatedAt, nil)
	m.d().subLogs = append(m.d().subLogs, *l)
	return nil
}

func (m *MemoryStore) UpsertSnapshots(_ context.Context, snaps []*models.SubscriptionDailySnapshot) error {
	defer m.lock()()
	for _, s := range snaps {
		key := s.AccountID + "|" + s.SnapshotDate
		if cur, ok := m.d().snapshots[key]; ok {
			s.ID = cur.ID
		}
		m.d().snapshots[key] = *s
	}
	return nil
}

// Stages.

func (m *MemoryStore) ListStages(_ context.Context, accountID string) ([]*models.StageProgress, error) {
	defer m.lock()()
	var out []*models.StageProgress
	for _, s := range m.d().stages {
		if s.AccountID == accountID {
			out = append(out, ptr(s))
		}
	}
	slices.SortFunc(out, func(a, b *models.StageProgress) int {
		if c := a.StartDate.Compare(b.StartDate); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return out, nil
}

func (m *MemoryStore) GetOpenStage(_ context.Context, accountID string, _ bool) (*models.StageProgress, error) {
	defer m.lock()()
	for _, s := range m.d().stages {
		if s.AccountID == accountID && s.EndDate == nil {
			return ptr(s), nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) CountStages(_ context.Context, accountID string) (int64, error) {
	defer m.lock()()
	return int64(lo.CountBy(lo.Values(m.d().stages), func(s models.StageProgress) bool { return s.AccountID == accountID })), nil
}

func (m *MemoryStore) openConflict(st *models.StageProgress) bool {
	if st.EndDate != nil {
		return false
	}
	for _, cur := range m.d().stages {
		if cur.ID != st.ID && cur.AccountID == st.AccountID && cur.EndDate == nil {
			return true
		}
	}
	return false
}

func (m *MemoryStore) InsertStage(_ context.Context, st *models.StageProgress) error {
	defer m.lock()()
	if _, ok := m.d().stages[st.ID]; ok || m.openConflict(st) {
		return ErrDuplicate
	}
	stamp(&st.CreatedAt, &st.UpdatedAt)
	m.d().stages[st.ID] = *st
	return nil
}

func (m *MemoryStore) UpdateStage(_ context.Context, st *models.StageProgress) error {
	defer m.lock()()
	cur, ok := m.d().stages[st.ID]
	if !ok {
		return ErrNotFound
	}
	if m.openConflict(st) {
		return ErrDuplicate
	}
	stamp(nil, &st.UpdatedAt)
	next := *st
	next.AccountID, next.Stage, next.StartDate, next.CreatedAt = cur.AccountID, cur.Stage, cur.StartDate, cur.CreatedAt
	m.d().stages[st.ID] = next
	return nil
}

func (m *MemoryStore) InsertStageLog(_ context.Context, l *models.StageLog) error {
	defer m.lock()()
	stamp(&l.CreatedAt, nil)
	m.d().stageLogs = append(m.d().stageLogs, *l)
	return nil
}

// Achievements.

func (m *MemoryStore) ListAchievements(_ context.Context, activeOnly bool) ([]*models.Achievement, error) {
	defer m.lock()()
	out := lo.FilterMap(lo.Values(m.d().achievements), func(a models.Achievement, _ int) (*models.Achievement, bool) {
		return ptr(a), a.IsActive || !activeOnly
	})
	slices.SortFunc(out, func(a, b *models.Achievement) int {
		return cmp.Or(
			cmp.Compare(a.Category, b.Category),
			cmp.Compare(a.RequiredValue, b.RequiredValue),
			cmp.Compare(a.Name, b.Name),
		)
	})
	return out, nil
}

func (m *MemoryStore) InsertAchievement(_ context.Context, a *models.Achievement) error {
	defer m.lock()()
	for _, cur := range m.d().achievements {
		if cur.ID == a.ID || cur.Name == a.Name {
			return ErrDuplicate
		}
	}
	stamp(&a.CreatedAt, &a.UpdatedAt)
	m.d().achievements[a.ID] = *a
	return nil
}

func (m *MemoryStore) ListUnlocked(_ context.Context, accountID string) ([]*models.UnlockedAchievement, error) {
	defer m.lock()()
	var out []*models.UnlockedAchievement
	for _, u := range m.d().unlocked {
		if u.AccountID == accountID {
			out = append(out, ptr(u))
		}
	}
	slices.SortFunc(out, func(a, b *models.UnlockedAchievement) int { return a.UnlockedAt.Compare(b.UnlockedAt) })
	return out, nil
}

func (m *MemoryStore) InsertUnlock(_ context.Context, u *models.UnlockedAchievement) (bool, error) {
	defer m.lock()()
	key := u.AccountID + "|" + u.AchievementID
	if _, ok := m.d().unlocked[key]; ok {
		return false, nil
	}
	m.d().unlocked[key] = *u
	return true, nil
}

func (m *MemoryStore) Leaderboard(_ context.Context, limit int) ([]LeaderboardRow, error) {
	defer m.lock()()
	byAccount := map[string]*LeaderboardRow{}
	for _, u := range m.d().unlocked {
		row, ok := byAccount[u.AccountID]
		if !ok {
			row = &LeaderboardRow{AccountID: u.AccountID}
			byAccount[u.AccountID] = row
		}
		row.UnlockedCount++
		row.Points += int64(m.d().achievements[u.AchievementID].Points)
	}
	rows := lo.Map(lo.Values(byAccount), func(r *LeaderboardRow, _ int) LeaderboardRow { return *r })
	slices.SortFunc(rows, func(a, b LeaderboardRow) int {
		return cmp.Or(
			cmp.Compare(b.UnlockedCount, a.UnlockedCount),
			cmp.Compare(b.Points, a.Points),
			cmp.Compare(a.AccountID, b.AccountID),
		)
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

// Activity counts.

func (m *MemoryStore) CountPosts(_ context.Context, accountID string) (int64, error) {
	defer m.lock()()
	return m.d().posts[accountID], nil
}

func (m *MemoryStore) CountComments(_ context.Context, accountID string) (int64, error) {
	defer m.lock()()
	return m.d().comments[accountID], nil
}

func (m *MemoryStore) CountCompletedPlans(_ context.Context, accountID string) (int64, error) {
	defer m.lock()()
	return int64(lo.CountBy(m.d().plans, func(p models.QuitPlan) bool {
		return p.MemberID == accountID && p.Status == models.QuitPlanStatusCompleted
	})), nil
}

// Helpers for seeding rows owned by other services and inspecting logs.

func (m *MemoryStore) AddPosts(accountID string, n int64) {
	defer m.lock()()
	m.d().posts[accountID] += n
}

func (m *MemoryStore) AddComments(accountID string, n int64) {
	defer m.lock()()
	m.d().comments[accountID] += n
}

func (m *MemoryStore) AddQuitPlan(memberID string, status models.QuitPlanStatus) {
	defer m.lock()()
	m.d().plans = append(m.d().plans, models.QuitPlan{MemberID: memberID, Status: status, CreatedAt: time.Now().UTC()})
}

func (m *MemoryStore) SubscriptionLogs() []models.SubscriptionLog {
	defer m.lock()()
	return slices.Clone(m.d().subLogs)
}

func (m *MemoryStore) StageLogs() []models.StageLog {
	defer m.lock()()
	return slices.Clone(m.d().stageLogs)
}

func (m *MemoryStore) Snapshots() []models.SubscriptionDailySnapshot {
	defer m.lock()()
	return lo.Values(m.d().snapshots)
}
