package glrender

import (
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

// Scheduler advances registered layer systems, one frame per tick.
// It is safe for concurrent use.
type Scheduler struct {
	mu      sync.Mutex
	systems []*LayerSystem
	stopped bool
	ticks   uint64
}

// Register adds ls to the systems ticked. Registering twice is a no-op.
func (s *Scheduler) Register(ls *LayerSystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !slices.Contains(s.systems, ls) {
		s.systems = append(s.systems, ls)
	}
}

// Unregister removes ls from the systems ticked.
func (s *Scheduler) Unregister(ls *LayerSystem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := slices.Index(s.systems, ls); i >= 0 {
		s.systems = slices.Delete(s.systems, i, i+1)
	}
}

// Tick renders one frame of every active system in registration order and
// returns the amount of systems rendered. After [Scheduler.Stop] it does nothing.
func (s *Scheduler) Tick(nowMs float32) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return 0
	}
	n := 0
	for _, ls := range s.systems {
		if !ls.IsActive() {
			continue
		}
		ls.RenderFrame(nowMs)
		n++
	}
	s.ticks++
	return n
}

// Stop prevents any further tick. When Stop returns no tick is in progress.
// It is safe to call more than once.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}

// Stopped reports whether Stop was called.
func (s *Scheduler) Stopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

// Ticks returns the amount of ticks issued.
func (s *Scheduler) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// DefaultFrameInterval is the frame interval of a [FrameTimer] with zero configuration.
const DefaultFrameInterval = time.Second / 60

var errTimerStarted = errors.New("frame timer already started")

// FrameTimerConfig configures a [FrameTimer].
type FrameTimerConfig struct {
	// Interval between ticks. Zero uses [DefaultFrameInterval].
	Interval time.Duration
	// AfterTick is called on the timer goroutine after each tick, i.e. to present surfaces. May be nil.
	AfterTick func(rendered int)
}

// FrameTimer drives a Scheduler from a time.Ticker on its own goroutine,
// passing the milliseconds elapsed since Start.
type FrameTimer struct {
	sched    *Scheduler
	cfg      FrameTimerConfig
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
	running  atomic.Bool
	started  atomic.Bool
}

// NewFrameTimer returns a stopped timer for s.
func NewFrameTimer(s *Scheduler, cfg FrameTimerConfig) *FrameTimer {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultFrameInterval
	}
	return &FrameTimer{sched: s, cfg: cfg, stopChan: make(chan struct{})}
}

// Start begins ticking. A timer can only be started once.
func (ft *FrameTimer) Start() error {
	if !ft.started.CompareAndSwap(false, true) {
		return errTimerStarted
	}
	ft.running.Store(true)
	ft.wg.Add(1)
	go ft.loop(time.Now())
	return nil
}

// Stop halts the timer and waits for the loop to exit. It is safe to call more than once.
func (ft *FrameTimer) Stop() {
	ft.stopOnce.Do(func() {
		close(ft.stopChan)
		ft.wg.Wait()
		ft.running.Store(false)
	})
}

// Running reports whether the timer loop is running.
func (ft *FrameTimer) Running() bool { return ft.running.Load() }

func (ft *FrameTimer) loop(start time.Time) {
	defer ft.wg.Done()
	ticker := time.NewTicker(ft.cfg.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ft.stopChan:
			return
		case now := <-ticker.C:
			elapsed := float32(now.Sub(start).Microseconds()) / 1000
			n := ft.sched.Tick(elapsed)
			if ft.cfg.AfterTick != nil {
				ft.cfg.AfterTick(n)
			}
		}
	}
}
