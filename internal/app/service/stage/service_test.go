package stage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/quitsmart/internal/app/service/changelog"
	"github.com/fatflowers/quitsmart/internal/app/service/entitlement"
	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
	"github.com/fatflowers/quitsmart/pkg/apperr"
	"github.com/fatflowers/quitsmart/pkg/tool"
)

var now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type gateFunc func(accountID string) error

func (g gateFunc) RequirePremium(_ context.Context, accountID string) (entitlement.Entitlement, error) {
	return entitlement.Entitlement{}, g(accountID)
}

var allowAll = gateFunc(func(string) error { return nil })

func newTestService(t *testing.T, gate Gate) (*Service, *store.MemoryStore, *changelog.Service, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	log := zap.New(core).Sugar()
	st := store.NewMemoryStore()
	cl := changelog.New(st, log)
	return newService(st, gate, cl, nil, log).WithClock(tool.FixedClock(now)), st, cl, logs
}

func TestService_GatedOnPremium(t *testing.T) {
	deny := gateFunc(func(string) error { return apperr.Entitlement("premium required") })
	svc, _, _, _ := newTestService(t, deny)
	ctx := context.Background()

	_, err := svc.StartInitialStage(ctx, "acc")
	require.ErrorIs(t, err, apperr.ErrEntitlement)
	_, err = svc.CurrentStage(ctx, "acc")
	require.ErrorIs(t, err, apperr.ErrEntitlement)
	_, err = svc.History(ctx, "acc")
	require.ErrorIs(t, err, apperr.ErrEntitlement)
	_, err = svc.UpdateCurrentStage(ctx, "acc", Metrics{})
	require.ErrorIs(t, err, apperr.ErrEntitlement)
	_, err = svc.AdvanceStage(ctx, "acc", "", "acc")
	require.ErrorIs(t, err, apperr.ErrEntitlement)
}

func TestService_StartInitialStage(t *testing.T) {
	svc, _, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	has, err := svc.HasStages(ctx, "acc")
	require.NoError(t, err)
	require.False(t, has)

	rec, err := svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, models.StagePreparation, rec.Stage)
	require.Zero(t, rec.Percentage)
	require.Nil(t, rec.EndDate)
	tpl, _ := TemplateFor(models.StagePreparation)
	require.Equal(t, tpl.Goals, rec.Goals)

	_, err = svc.StartInitialStage(ctx, "acc")
	require.ErrorIs(t, err, apperr.ErrConflict)

	has, err = svc.HasStages(ctx, "acc")
	require.NoError(t, err)
	require.True(t, has)
}

func TestService_UpdateCurrentStage(t *testing.T) {
	svc, _, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	_, err := svc.UpdateCurrentStage(ctx, "acc", Metrics{Percentage: ptr(10)})
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)

	for name, m := range map[string]Metrics{
		"percentage over 100": {Percentage: ptr(101)},
		"negative percentage": {Percentage: ptr(-1)},
		"craving 0":           {CravingLevel: ptr(0)},
		"stress 11":           {StressLevel: ptr(11)},
		"negative cigarettes": {CigarettesSmoked: ptr(-2)},
	} {
		_, err := svc.UpdateCurrentStage(ctx, "acc", m)
		require.ErrorIs(t, err, apperr.ErrValidation, name)
	}

	notes := "slept well"
	rec, err := svc.UpdateCurrentStage(ctx, "acc", Metrics{Percentage: ptr(40), CravingLevel: ptr(6), UserNotes: &notes})
	require.NoError(t, err)
	require.Equal(t, 40, rec.Percentage)
	require.Equal(t, 6, *rec.CravingLevel)

	rec, err = svc.UpdateCurrentStage(ctx, "acc", Metrics{StressLevel: ptr(3)})
	require.NoError(t, err)
	require.Equal(t, 40, rec.Percentage)
	require.Equal(t, 6, *rec.CravingLevel)
	require.Equal(t, 3, *rec.StressLevel)
	require.Equal(t, notes, rec.UserNotes)
}

func TestService_AdvanceStage(t *testing.T) {
	svc, st, cl, logs := newTestService(t, allowAll)
	ctx := context.Background()

	_, err := svc.AdvanceStage(ctx, "acc", "", "acc")
	require.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)
	_, err = svc.UpdateCurrentStage(ctx, "acc", Metrics{CravingLevel: ptr(8), Percentage: ptr(70)})
	require.NoError(t, err)

	svc.WithClock(tool.FixedClock(now.AddDate(0, 0, 7)))
	res, err := svc.AdvanceStage(ctx, "acc", "", "acc")
	require.NoError(t, err)
	require.False(t, res.OffSequence)
	require.Equal(t, models.StageInitialQuit, res.Opened.Stage)
	require.Equal(t, 100, res.Closed.Percentage)
	require.Equal(t, now.AddDate(0, 0, 7), *res.Closed.EndDate)
	// metrics do not carry over
	require.Nil(t, res.Opened.CravingLevel)
	require.Zero(t, res.Opened.Percentage)

	hist, err := svc.History(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, hist, 2)
	require.Len(t, openStages(hist), 1)

	cl.Wait()
	require.Len(t, st.StageLogs(), 2)
	require.Zero(t, logs.FilterMessage("stage_advance_off_sequence").Len())
}

func TestService_AdvanceStageOffSequence(t *testing.T) {
	svc, st, cl, logs := newTestService(t, allowAll)
	ctx := context.Background()

	_, err := svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)

	res, err := svc.AdvanceStage(ctx, "acc", models.StageMaintenance, "coach-1")
	require.NoError(t, err)
	require.True(t, res.OffSequence)
	require.Equal(t, models.StageInitialQuit, res.Expected)
	require.Equal(t, models.StageMaintenance, res.Opened.Stage)
	require.Equal(t, 1, logs.FilterMessage("stage_advance_off_sequence").Len())

	cl.Wait()
	stageLogs := st.StageLogs()
	require.True(t, stageLogs[len(stageLogs)-1].OffSequence)
	require.Equal(t, "coach-1", stageLogs[len(stageLogs)-1].ActorID)
}

func TestService_AdvanceStageToUndefinedStage(t *testing.T) {
	svc, st, cl, logs := newTestService(t, allowAll)
	ctx := context.Background()

	_, err := svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)

	res, err := svc.AdvanceStage(ctx, "acc", "COACH_OVERRIDE", "coach-1")
	require.NoError(t, err)
	require.True(t, res.OffSequence)
	require.Equal(t, models.StageInitialQuit, res.Expected)
	require.Equal(t, models.StageName("COACH_OVERRIDE"), res.Opened.Stage)
	require.Empty(t, res.Opened.Goals)
	require.Equal(t, 1, logs.FilterMessage("stage_advance_off_sequence").Len())

	cur, err := svc.CurrentStage(ctx, "acc")
	require.NoError(t, err)
	require.Equal(t, res.Opened.ID, cur.ID)

	cl.Wait()
	stageLogs := st.StageLogs()
	last := stageLogs[len(stageLogs)-1]
	require.True(t, last.OffSequence)
	require.Equal(t, models.StageName("COACH_OVERRIDE"), last.ToStage)

	// an undefined stage has no successor to default to
	_, err = svc.AdvanceStage(ctx, "acc", "", "coach-1")
	require.ErrorIs(t, err, apperr.ErrValidation)

	res, err = svc.AdvanceStage(ctx, "acc", models.StageEarlyRecovery, "coach-1")
	require.NoError(t, err)
	require.True(t, res.OffSequence)
	require.Equal(t, models.StageName(""), res.Expected)

	_, err = svc.AdvanceStage(ctx, "acc", models.StageName(strings.Repeat("X", 33)), "coach-1")
	require.ErrorIs(t, err, apperr.ErrValidation)
}

func TestService_AdvanceFromMaintenanceIsNoOp(t *testing.T) {
	svc, _, _, _ := newTestService(t, allowAll)
	ctx := context.Background()

	_, err := svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)
	first, err := svc.AdvanceStage(ctx, "acc", models.StageMaintenance, "acc")
	require.NoError(t, err)

	res, err := svc.AdvanceStage(ctx, "acc", "", "acc")
	require.NoError(t, err)
	require.True(t, res.NoOp)
	require.Equal(t, first.Opened.ID, res.Opened.ID)

	hist, err := svc.History(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, hist, 2)
}

func TestService_ConcurrentAdvanceKeepsOneOpen(t *testing.T) {
	svc, st, _, _ := newTestService(t, allowAll)
	ctx := context.Background()
	_, err := svc.StartInitialStage(ctx, "acc")
	require.NoError(t, err)

	done := make(chan struct{})
	for i := 0; i < 6; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = svc.AdvanceStage(ctx, "acc", "", "acc")
		}()
	}
	for i := 0; i < 6; i++ {
		<-done
	}

	stages, err := st.ListStages(ctx, "acc")
	require.NoError(t, err)
	require.Len(t, openStages(stages), 1)
}

func ptr(v int) *int { return &v }

func openStages(stages []*models.StageProgress) []*models.StageProgress {
	return lo.Filter(stages, func(s *models.StageProgress, _ int) bool { return s.Open() })
}
