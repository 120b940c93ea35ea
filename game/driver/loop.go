package driver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/wricardo/snake-arcade/game/engine"
)

// ErrStopped is returned when a command reaches a loop that is no longer running
var ErrStopped = errors.New("game loop stopped")

const (
	commandBufferSize    = 64
	subscriberBufferSize = 16
)

// Option customizes a Loop
type Option func(*Loop)

// WithTickInterval overrides the tick period taken from the game config
func WithTickInterval(d time.Duration) Option {
	return func(l *Loop) {
		l.interval = d
	}
}

// WithName labels the loop in log lines
func WithName(name string) Option {
	return func(l *Loop) {
		l.name = name
	}
}

type request struct {
	cmd   engine.Command
	reply chan engine.GameState
}

// Loop owns one engine and serializes every command against it.
// Commands are applied in arrival order; the ticker contributes a tick
// followed by an expire_bonus on every period.
type Loop struct {
	name     string
	engine   *engine.GameEngine
	interval time.Duration
	requests chan request
	done     chan struct{}

	mu       sync.RWMutex
	snapshot engine.GameState
	subs     map[int]chan engine.GameState
	nextSub  int
	running  bool
	stopped  bool
}

// New creates a loop around eng. Run must be called to start it.
func New(eng *engine.GameEngine, opts ...Option) *Loop {
	l := &Loop{
		engine:   eng,
		interval: eng.GetConfig().GameSpeed(),
		requests: make(chan request, commandBufferSize),
		done:     make(chan struct{}),
		snapshot: eng.GetState(),
		subs:     make(map[int]chan engine.GameState),
	}
	for _, opt := range opts {
		opt(l)
	}
	if l.interval <= 0 {
		l.interval = time.Duration(engine.DefaultGameSpeedMs) * time.Millisecond
	}
	return l
}

// Run drives the engine until ctx is cancelled. It returns ErrStopped if the
// loop already ran.
func (l *Loop) Run(ctx context.Context) error {
	l.mu.Lock()
	if l.running || l.stopped {
		l.mu.Unlock()
		return ErrStopped
	}
	l.running = true
	l.mu.Unlock()

	defer l.stop()

	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()

	log.Debug().Str("session", l.name).Dur("interval", l.interval).Msg("game loop started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("session", l.name).Msg("game loop stopped")
			return ctx.Err()

		case req := <-l.requests:
			state := l.engine.Apply(req.cmd)
			l.publish(state)
			if req.reply != nil {
				req.reply <- state
			}

		case <-ticker.C:
			l.engine.Tick()
			state := l.engine.ExpireBonus()
			l.publish(state)
		}
	}
}

// Send queues a command without waiting for it to be applied. Delivery is
// best-effort: a command that races the loop stopping may be accepted and
// then dropped.
func (l *Loop) Send(cmd engine.Command) error {
	select {
	case <-l.done:
		return ErrStopped
	default:
	}

	select {
	case l.requests <- request{cmd: cmd}:
		return nil
	case <-l.done:
		return ErrStopped
	}
}

// Do queues a command and waits for the resulting state
func (l *Loop) Do(ctx context.Context, cmd engine.Command) (engine.GameState, error) {
	select {
	case <-l.done:
		return engine.GameState{}, ErrStopped
	default:
	}

	req := request{cmd: cmd, reply: make(chan engine.GameState, 1)}
	select {
	case l.requests <- req:
	case <-l.done:
		return engine.GameState{}, ErrStopped
	case <-ctx.Done():
		return engine.GameState{}, ctx.Err()
	}

	select {
	case state := <-req.reply:
		return state, nil
	case <-l.done:
		return engine.GameState{}, ErrStopped
	case <-ctx.Done():
		return engine.GameState{}, ctx.Err()
	}
}

// Snapshot returns the latest published state
func (l *Loop) Snapshot() engine.GameState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot.Clone()
}

// Config returns the rules the loop plays by
func (l *Loop) Config() *engine.GameConfig {
	return l.engine.GetConfig()
}

// Subscribe returns a channel that receives every changed state and a
// function that cancels the subscription. A subscriber that falls behind
// misses intermediate states; the channel is closed when the loop stops.
func (l *Loop) Subscribe() (<-chan engine.GameState, func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	ch := make(chan engine.GameState, subscriberBufferSize)
	if l.stopped {
		close(ch)
		return ch, func() {}
	}

	id := l.nextSub
	l.nextSub++
	l.subs[id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if sub, ok := l.subs[id]; ok {
				delete(l.subs, id)
				close(sub)
			}
		})
	}
}

// Done is closed once Run has returned
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) publish(state engine.GameState) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.snapshot.Equal(state) {
		return
	}
	l.snapshot = state

	for id, ch := range l.subs {
		select {
		case ch <- state.Clone():
		default:
			log.Debug().Str("session", l.name).Int("subscriber", id).Msg("subscriber behind, dropping state")
		}
	}
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.stopped = true
	for id, ch := range l.subs {
		delete(l.subs, id)
		close(ch)
	}
	close(l.done)

	for {
		select {
		case req := <-l.requests:
			log.Debug().Str("session", l.name).Str("cmd", req.cmd.String()).Msg("loop stopped, dropping command")
		default:
			return
		}
	}
}
