package changelog

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fatflowers/quitsmart/internal/models"
	"github.com/fatflowers/quitsmart/internal/store"
)

func TestService_SavesAsynchronously(t *testing.T) {
	st := store.NewMemoryStore()
	s := New(st, zap.NewNop().Sugar())

	ctx, cancel := context.WithCancel(context.Background())
	s.SaveSubscriptionLog(ctx, &models.SubscriptionLog{AccountID: "acc-1", Reason: models.SubscriptionChangeReasonUpgrade})
	s.SaveStageLog(ctx, &models.StageLog{AccountID: "acc-1", ToStage: models.StageInitialQuit})
	s.SaveStageLog(ctx, nil)
	cancel()
	s.Wait()

	subLogs := st.SubscriptionLogs()
	require.Len(t, subLogs, 1)
	require.NotEmpty(t, subLogs[0].ID)
	require.Len(t, st.StageLogs(), 1)
}

type failingStore struct {
	store.Store
}

func (failingStore) InsertStageLog(context.Context, *models.StageLog) error {
	return errors.New("db down")
}

func TestService_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	s := New(failingStore{Store: store.NewMemoryStore()}, zap.New(core).Sugar())

	s.SaveStageLog(context.Background(), &models.StageLog{AccountID: "acc-1"})
	s.Wait()

	require.Equal(t, 1, logs.Len())
	require.Contains(t, logs.All()[0].Message, "failed to save stage_log")
}
