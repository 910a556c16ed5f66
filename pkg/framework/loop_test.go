package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

func (r *recorder) at(name string) Controller {
	return ControlFunc(func(cc ControlContext) error {
		r.calls = append(r.calls, name)
		return nil
	})
}

func TestLoopPriorityOrder(t *testing.T) {
	var r recorder
	l := NewLoop()
	l.AddController(PrLvApp, r.at("app"))
	l.AddController(PrLvSense, r.at("sense"))
	l.AddController(PrLvControl, r.at("control1"), r.at("control2"))
	l.RunOnce(context.Background(), time.Unix(0, 0))
	assert.Equal(t, []string{"sense", "control1", "control2", "app"}, r.calls)
}

func TestLoopIterationTime(t *testing.T) {
	var times []time.Time
	var seqs []uint64
	l := NewLoop()
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		times = append(times, cc.Time())
		seqs = append(seqs, cc.Iteration())
		return errors.New("logged, not fatal")
	}))
	t0 := time.Unix(100, 0)
	l.RunOnce(context.Background(), t0)
	l.RunOnce(context.Background(), t0.Add(10*time.Millisecond))
	require.Len(t, times, 2)
	assert.Equal(t, t0, times[0])
	assert.Equal(t, t0.Add(10*time.Millisecond), times[1])
	assert.Equal(t, []uint64{1, 2}, seqs)
}

func TestLoopMessages(t *testing.T) {
	l := NewLoop()
	var taken, seen []Message
	l.AddController(PrLvSense, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			if n, ok := mc.CurrentMessage().(int); ok && n%2 == 0 {
				taken = append(taken, n)
				mc.MessageTaken()
			}
		}))
		return nil
	}))
	l.AddController(PrLvApp, ControlFunc(func(cc ControlContext) error {
		cc.Messages().ProcessMessages(ProcessMessageFunc(func(mc MessageProcessingContext) {
			seen = append(seen, mc.CurrentMessage())
			mc.MessageTaken()
			if mc.CurrentMessage() == 3 {
				mc.StopProcessing()
			}
		}))
		return nil
	}))
	for i := 1; i <= 5; i++ {
		l.PostMessage(i)
	}
	l.RunOnce(context.Background(), time.Now())
	assert.Equal(t, []Message{2, 4}, taken)
	assert.Equal(t, []Message{1, 3}, seen)

	// messages not taken are dropped at the end of the iteration.
	seen = nil
	l.RunOnce(context.Background(), time.Now())
	assert.Empty(t, seen)
}

func TestLoopRun(t *testing.T) {
	l := NewLoop()
	l.Interval = time.Millisecond
	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	l.AddRunnable(RunFunc(func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	}))
	count := 0
	l.AddController(PrLvControl, ControlFunc(func(cc ControlContext) error {
		if count++; count == 3 {
			cancel()
		}
		return nil
	}))
	err := l.Run(ctx)
	assert.Equal(t, context.Canceled, err)
	<-started
	assert.True(t, count >= 3)
}

func TestRunnerAggregatesErrors(t *testing.T) {
	r := NewRunner()
	r.Go(
		NamedRun("ok", RunFunc(func(context.Context) error { return nil })),
		NamedRun("canceled", RunFunc(func(context.Context) error { return context.Canceled })),
		RunFunc(func(context.Context) error { return errors.New("boom") }),
	)
	err := r.Wait()
	require.Error(t, err)
	agg, ok := err.(*AggregatedError)
	require.True(t, ok)
	require.Len(t, agg.Errors, 1)
	assert.Equal(t, "boom", err.Error())

	assert.NoError(t, NewRunner().Wait())
}
