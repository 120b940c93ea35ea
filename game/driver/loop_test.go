package driver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wricardo/snake-arcade/game/engine"
)

func newTestLoop(t *testing.T, opts ...Option) (*Loop, context.CancelFunc) {
	t.Helper()

	eng, err := engine.NewEngine(engine.DefaultGameConfig(), engine.WithRandom(engine.NewRandom(1)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}

	loop := New(eng, opts...)
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		_ = loop.Run(ctx)
	}()

	t.Cleanup(func() {
		cancel()
		<-loop.Done()
	})
	return loop, cancel
}

func TestLoopDoAppliesCommandsInOrder(t *testing.T) {
	loop, _ := newTestLoop(t, WithTickInterval(time.Hour))
	ctx := context.Background()

	if _, err := loop.Do(ctx, engine.Command{Type: engine.CommandSetDirection, DX: 0, DY: -1}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}
	state, err := loop.Do(ctx, engine.Command{Type: engine.CommandTick})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if state.Head() != (engine.Position{X: 10, Y: 9}) {
		t.Errorf("head = %+v, want (10,9)", state.Head())
	}
	if !loop.Snapshot().Equal(state) {
		t.Error("snapshot does not match the last applied state")
	}
}

func TestLoopSendIsAppliedBeforeLaterDo(t *testing.T) {
	loop, _ := newTestLoop(t, WithTickInterval(time.Hour))

	if err := loop.Send(engine.Command{Type: engine.CommandTogglePause}); err != nil {
		t.Fatalf("Send failed: %v", err)
	}
	state, err := loop.Do(context.Background(), engine.Command{Type: engine.CommandTick})
	if err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	if !state.IsPaused {
		t.Error("expected the queued pause to be applied first")
	}
	if state.Ticks != 0 {
		t.Errorf("tick ran while paused: ticks = %d", state.Ticks)
	}
}

func TestLoopTickerAdvancesSnake(t *testing.T) {
	loop, _ := newTestLoop(t, WithTickInterval(5*time.Millisecond))

	states, unsubscribe := loop.Subscribe()
	defer unsubscribe()

	select {
	case state := <-states:
		if state.Ticks == 0 {
			t.Errorf("expected a ticked state, got %+v", state)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a tick")
	}
}

func TestLoopSubscribeReceivesChanges(t *testing.T) {
	loop, _ := newTestLoop(t, WithTickInterval(time.Hour))

	states, unsubscribe := loop.Subscribe()
	defer unsubscribe()

	if _, err := loop.Do(context.Background(), engine.Command{Type: engine.CommandTogglePause}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	select {
	case state := <-states:
		if !state.IsPaused {
			t.Error("expected paused state")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for state")
	}
}

func TestLoopSkipsUnchangedStates(t *testing.T) {
	loop, _ := newTestLoop(t, WithTickInterval(time.Hour))

	states, unsubscribe := loop.Subscribe()
	defer unsubscribe()

	// Reversing the applied direction is ignored, so nothing is published
	if _, err := loop.Do(context.Background(), engine.Command{Type: engine.CommandSetDirection, DX: -1, DY: 0}); err != nil {
		t.Fatalf("Do failed: %v", err)
	}

	select {
	case state := <-states:
		t.Errorf("unexpected publish: %+v", state)
	default:
	}
}

func TestLoopUnsubscribeClosesChannel(t *testing.T) {
	loop, _ := newTestLoop(t, WithTickInterval(time.Hour))

	states, unsubscribe := loop.Subscribe()
	unsubscribe()
	unsubscribe()

	if _, ok := <-states; ok {
		t.Error("expected closed channel after unsubscribe")
	}
}

func TestLoopStop(t *testing.T) {
	loop, cancel := newTestLoop(t, WithTickInterval(time.Hour))

	states, _ := loop.Subscribe()
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	if _, ok := <-states; ok {
		t.Error("expected subscriber channel to be closed")
	}
	if err := loop.Send(engine.Command{Type: engine.CommandTick}); !errors.Is(err, ErrStopped) {
		t.Errorf("Send error = %v, want ErrStopped", err)
	}
	if _, err := loop.Do(context.Background(), engine.Command{Type: engine.CommandTick}); !errors.Is(err, ErrStopped) {
		t.Errorf("Do error = %v, want ErrStopped", err)
	}
	if err := loop.Run(context.Background()); !errors.Is(err, ErrStopped) {
		t.Errorf("Run error = %v, want ErrStopped", err)
	}

	late, _ := loop.Subscribe()
	if _, ok := <-late; ok {
		t.Error("subscribing to a stopped loop should return a closed channel")
	}
}

func TestLoopStopDropsQueuedCommands(t *testing.T) {
	eng, err := engine.NewEngine(engine.DefaultGameConfig(), engine.WithRandom(engine.NewRandom(1)))
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	loop := New(eng, WithTickInterval(time.Hour))
	before := loop.Snapshot()

	// queued but never applied: the loop is not running
	for i := 0; i < 3; i++ {
		if err := loop.Send(engine.Command{Type: engine.CommandTick}); err != nil {
			t.Fatalf("Send error = %v", err)
		}
	}

	loop.stop()

	if n := len(loop.requests); n != 0 {
		t.Errorf("expected queue to be drained, %d commands left", n)
	}
	if err := loop.Send(engine.Command{Type: engine.CommandTick}); !errors.Is(err, ErrStopped) {
		t.Errorf("Send error = %v, want ErrStopped", err)
	}
	if !loop.Snapshot().Equal(before) {
		t.Error("dropped commands must not change the state")
	}
}

func TestLoopDoHonoursContext(t *testing.T) {
	eng := engine.NewEngineWithDefaults()
	loop := New(eng) // never started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := loop.Do(ctx, engine.Command{Type: engine.CommandTick}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Do error = %v, want deadline exceeded", err)
	}
}
