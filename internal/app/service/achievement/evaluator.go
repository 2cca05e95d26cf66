package achievement

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/fatflowers/quitsmart/internal/app/service/statistics"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
)

// Progress is the account's current value per category.
type Progress map[models.AchievementCategory]int

// Of returns the progress of c; unknown categories are 0.
func (p Progress) Of(c models.AchievementCategory) int {
	return p[c]
}

// ProgressPercent is min(100, progress/required*100). A zero requirement is
// always complete.
func ProgressPercent(progress, required int) float64 {
	if required <= 0 {
		return 100
	}
	return math.Min(100, float64(progress)/float64(required)*100)
}

// collectProgress derives statistic-based categories from stats and counts
// activity-based ones from the store concurrently.
func collectProgress(ctx context.Context, st store.Store, accountID string, stats statistics.Statistics) (Progress, error) {
	var posts, comments, plans int64
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		posts, err = st.CountPosts(gctx, accountID)
		return err
	})
	g.Go(func() (err error) {
		comments, err = st.CountComments(gctx, accountID)
		return err
	})
	g.Go(func() (err error) {
		plans, err = st.CountCompletedPlans(gctx, accountID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("count activity: %w", err)
	}
	return Progress{
		models.AchievementCategorySmokeFreeDays:  stats.CurrentStreak,
		models.AchievementCategoryMoneySaved:     int(stats.TotalMoneySaved),
		models.AchievementCategoryPostsCreated:   int(posts),
		models.AchievementCategoryCommentsMade:   int(comments),
		models.AchievementCategoryPlansCompleted: int(plans),
	}, nil
}
