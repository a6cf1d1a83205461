package scheduler_test

import (
	"context"
	"errors"
	"strconv"
	"sync/atomic"
	"testing"
	"testing/synctest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/kiln/internal/core/domain"
	"go.trai.ch/kiln/internal/core/ports"
	"go.trai.ch/kiln/internal/core/ports/mocks"
	"go.trai.ch/kiln/internal/engine/scheduler"
	"go.uber.org/mock/gomock"
)

func quietTracer(t *testing.T) *mocks.MockTracer {
	t.Helper()
	ctrl := gomock.NewController(t)

	span := mocks.NewMockSpan(ctrl)
	span.EXPECT().End().AnyTimes()
	span.EXPECT().RecordError(gomock.Any()).AnyTimes()
	span.EXPECT().SetAttribute(gomock.Any(), gomock.Any()).AnyTimes()

	tracer := mocks.NewMockTracer(ctrl)
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
			return ctx, span
		}).AnyTimes()
	return tracer
}

func double(_ context.Context, n int) (int, error) {
	return n * 2, nil
}

func TestNew_DefaultsToCPUCount(t *testing.T) {
	s := scheduler.New(quietTracer(t), 0)
	assert.Positive(t, s.Parallelism())

	assert.Equal(t, 3, scheduler.New(quietTracer(t), 3).Parallelism())
}

func TestRun_FoldsEveryResult(t *testing.T) {
	s := scheduler.New(quietTracer(t), 4)

	sum := 0
	seen := 0
	err := scheduler.Run(context.Background(), s, scheduler.Stage[int, int]{
		Name:  "double",
		Items: []int{1, 2, 3, 4, 5},
		Work:  double,
	}, func(_ int, res int) {
		sum += res
		seen++
	})

	require.NoError(t, err)
	assert.Equal(t, 5, seen)
	assert.Equal(t, 30, sum)
}

func TestRun_NoItems(t *testing.T) {
	s := scheduler.New(quietTracer(t), 2)

	err := scheduler.Run(context.Background(), s, scheduler.Stage[int, int]{
		Name: "empty",
		Work: double,
	}, func(int, int) {
		t.Fatal("fold must not be called")
	})

	require.NoError(t, err)
}

func TestRun_BoundsParallelism(t *testing.T) {
	synctest.Test(t, func(t *testing.T) {
		s := scheduler.New(quietTracer(t), 2)

		var active, peak atomic.Int32
		err := scheduler.Run(context.Background(), s, scheduler.Stage[int, int]{
			Name:  "slow",
			Items: []int{1, 2, 3, 4, 5, 6, 7, 8},
			Work: func(_ context.Context, n int) (int, error) {
				cur := active.Add(1)
				for {
					old := peak.Load()
					if cur <= old || peak.CompareAndSwap(old, cur) {
						break
					}
				}
				time.Sleep(10 * time.Millisecond)
				active.Add(-1)
				return n, nil
			},
		}, func(int, int) {})

		require.NoError(t, err)
		assert.Equal(t, int32(2), peak.Load())
	})
}

func TestRun_FatalErrorStopsFurtherItems(t *testing.T) {
	s := scheduler.New(quietTracer(t), 1)
	fatal := errors.New("exporter exited with code 2")

	var calls atomic.Int32
	folded := 0
	err := scheduler.Run(context.Background(), s, scheduler.Stage[int, int]{
		Name:  "animations",
		Items: []int{1, 2, 3, 4, 5},
		Work: func(_ context.Context, n int) (int, error) {
			calls.Add(1)
			if n == 2 {
				return 0, fatal
			}
			return n, nil
		},
	}, func(int, int) { folded++ })

	require.ErrorIs(t, err, fatal)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 1, folded)
}

func TestRun_CancelledContext(t *testing.T) {
	s := scheduler.New(quietTracer(t), 2)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	err := scheduler.Run(ctx, s, scheduler.Stage[int, int]{
		Name:  "cancelled",
		Items: []int{1, 2, 3},
		Work: func(_ context.Context, n int) (int, error) {
			calls.Add(1)
			return n, nil
		},
	}, func(int, int) {})

	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls.Load())
}

func TestRun_TracesStageAndItems(t *testing.T) {
	ctrl := gomock.NewController(t)
	tracer := mocks.NewMockTracer(ctrl)

	stageSpan := mocks.NewMockSpan(ctrl)
	stageSpan.EXPECT().End()

	okSpan := mocks.NewMockSpan(ctrl)
	okSpan.EXPECT().End()

	failSpan := mocks.NewMockSpan(ctrl)
	failSpan.EXPECT().RecordError(gomock.Any()).Do(func(err error) {
		assert.EqualError(t, err, "odd")
	})
	failSpan.EXPECT().End()

	spans := map[string]ports.Span{"lipsync": stageSpan, "item-2": okSpan, "item-1": failSpan}
	tracer.EXPECT().Start(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, name string, opts ...ports.SpanOption) (context.Context, ports.Span) {
			var cfg ports.SpanConfig
			for _, opt := range opts {
				opt(&cfg)
			}
			assert.Equal(t, "lipsync", cfg.Attributes[domain.AttrStage])
			return ctx, spans[name]
		}).Times(3)

	s := scheduler.New(tracer, 1)
	err := scheduler.Run(context.Background(), s, scheduler.Stage[int, int]{
		Name:  "lipsync",
		Items: []int{1, 2},
		Label: func(n int) string { return "item-" + strconv.Itoa(n) },
		Work:  func(_ context.Context, n int) (int, error) { return n, nil },
		Failure: func(n int) error {
			if n%2 == 1 {
				return errors.New("odd")
			}
			return nil
		},
	}, func(int, int) {})

	require.NoError(t, err)
}
