package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/warm/internal/app"
	"go.trai.ch/warm/internal/core/domain"
	"go.trai.ch/warm/internal/core/ports"
	"go.trai.ch/warm/internal/core/ports/mocks"
	"go.trai.ch/warm/internal/engine/pipeline"
	"go.trai.ch/warm/internal/engine/planner"
	"go.trai.ch/zerr"
	"go.uber.org/mock/gomock"
)

type appTestMocks struct {
	loader        *mocks.MockConfigLoader
	fingerprinter *mocks.MockFingerprinter
	store         *mocks.MockCacheStore
	executor      *mocks.MockExecutor
}

func setupAppTest(t *testing.T) (*app.App, appTestMocks) {
	t.Helper()
	ctrl := gomock.NewController(t)
	m := appTestMocks{
		loader:        mocks.NewMockConfigLoader(ctrl),
		fingerprinter: mocks.NewMockFingerprinter(ctrl),
		store:         mocks.NewMockCacheStore(ctrl),
		executor:      mocks.NewMockExecutor(ctrl),
	}

	vertex := mocks.NewMockVertex(ctrl)
	vertex.EXPECT().Stdout().Return(nil).AnyTimes()
	vertex.EXPECT().Stderr().Return(nil).AnyTimes()
	vertex.EXPECT().Cached().AnyTimes()
	vertex.EXPECT().Complete(gomock.Any()).AnyTimes()

	telemetry := mocks.NewMockTelemetry(ctrl)
	telemetry.EXPECT().Record(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, _ string) (context.Context, ports.Vertex) {
			return ctx, vertex
		},
	).AnyTimes()

	logger := mocks.NewMockLogger(ctrl)
	logger.EXPECT().Info(gomock.Any(), gomock.Any()).AnyTimes()
	logger.EXPECT().Warn(gomock.Any(), gomock.Any()).AnyTimes()

	runner := pipeline.NewRunner(planner.New(), m.fingerprinter, m.store, m.executor, telemetry, logger)
	a := app.New(m.loader, runner, logger).WithClock(func() time.Time {
		return time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)
	})
	return a, m
}

func appTestPipeline() *domain.Pipeline {
	return &domain.Pipeline{
		Root:      "/tmp/project",
		Manifests: []string{"Cargo.lock"},
		Classes: []domain.CacheClass{
			{Name: "registry", Path: "/tmp/registry"},
		},
		Steps: []domain.Step{
			{Name: "build", Command: []string{"cargo", "build", "--release"}},
		},
	}
}

func TestApp_Run_ThreadsDateStampIntoKeys(t *testing.T) {
	a, m := setupAppTest(t)
	p := appTestPipeline()

	m.loader.EXPECT().Load(".").Return(p, nil)
	m.fingerprinter.EXPECT().ComputeFingerprint(p.Root, p.Manifests).Return(domain.Fingerprint("f1"), nil)
	m.store.EXPECT().Restore(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, plan domain.KeyPlan) (domain.RestoreResult, error) {
			assert.Equal(t, "registry-f1-2024-01-01", plan.ExactKey.String())
			return domain.RestoreResult{Outcome: domain.RestoreMiss}, nil
		})
	m.executor.EXPECT().Execute(gomock.Any(), gomock.Any(), p.Root, gomock.Any(), gomock.Any()).Return(nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, plan domain.KeyPlan) error {
			assert.Equal(t, "registry-f1-2024-01-01", plan.ExactKey.String())
			return nil
		})

	require.NoError(t, a.Run(context.Background()))
}

func TestApp_Run_ConfigFailure(t *testing.T) {
	a, m := setupAppTest(t)
	m.loader.EXPECT().Load(".").Return(nil, zerr.New("no config"))

	err := a.Run(context.Background())
	require.Error(t, err)
}

func TestApp_Plan_ReturnsKeyPlans(t *testing.T) {
	a, m := setupAppTest(t)
	p := appTestPipeline()

	m.loader.EXPECT().Load(".").Return(p, nil)
	m.fingerprinter.EXPECT().ComputeFingerprint(p.Root, p.Manifests).Return(domain.Fingerprint("f1"), nil)

	plans, err := a.Plan(context.Background())
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, "registry-f1-2024-01-01", plans[0].ExactKey.String())
	assert.Equal(t, domain.RestoreKeyChain{"registry-f1"}, plans[0].RestoreKeys)
}

func TestApp_Restore_SoftOnCacheFault(t *testing.T) {
	a, m := setupAppTest(t)
	p := appTestPipeline()

	m.loader.EXPECT().Load(".").Return(p, nil)
	m.fingerprinter.EXPECT().ComputeFingerprint(p.Root, p.Manifests).Return(domain.Fingerprint("f1"), nil)
	m.store.EXPECT().Restore(gomock.Any(), gomock.Any()).
		Return(domain.RestoreResult{}, zerr.New("store unavailable"))

	require.NoError(t, a.Restore(context.Background()))
}

func TestApp_Save_PersistsEveryClass(t *testing.T) {
	a, m := setupAppTest(t)
	p := appTestPipeline()
	p.Classes = append(p.Classes, domain.CacheClass{Name: "index", Path: "/tmp/index"})

	m.loader.EXPECT().Load(".").Return(p, nil)
	m.fingerprinter.EXPECT().ComputeFingerprint(p.Root, p.Manifests).Return(domain.Fingerprint("f1"), nil)
	m.store.EXPECT().Save(gomock.Any(), gomock.Any()).Return(nil).Times(2)

	require.NoError(t, a.Save(context.Background()))
}
