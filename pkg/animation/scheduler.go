package animation

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrEmptyPath    = errors.New("path has no steps")
	ErrNotAnimating = errors.New("no path is animating")
	ErrInvalidSpeed = errors.New("unsupported animation speed")
)

// State of the playback machine
type State int

const (
	Idle State = iota
	Playing
	Paused
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Playing:
		return "playing"
	case Paused:
		return "paused"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Speed is the delay between steps
type Speed time.Duration

const (
	SpeedHalf   = Speed(2000 * time.Millisecond)
	SpeedNormal = Speed(1000 * time.Millisecond)
	SpeedDouble = Speed(500 * time.Millisecond)
	SpeedQuad   = Speed(250 * time.Millisecond)

	DefaultSpeed = SpeedNormal
)

// Speeds lists the supported speeds, slowest first
var Speeds = []Speed{SpeedHalf, SpeedNormal, SpeedDouble, SpeedQuad}

// ParseSpeedMillis maps a per-step delay in milliseconds to a supported speed
func ParseSpeedMillis(ms int) (Speed, error) {
	for _, s := range Speeds {
		if time.Duration(s) == time.Duration(ms)*time.Millisecond {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %dms", ErrInvalidSpeed, ms)
}

// Millis returns the delay in milliseconds
func (s Speed) Millis() int {
	return int(time.Duration(s) / time.Millisecond)
}

func (s Speed) String() string {
	switch s {
	case SpeedHalf:
		return "0.5x"
	case SpeedNormal:
		return "1x"
	case SpeedDouble:
		return "2x"
	case SpeedQuad:
		return "4x"
	}
	return time.Duration(s).String()
}

// Snapshot is a point-in-time copy of the scheduler
type Snapshot struct {
	State   State  `json:"-"`
	Status  string `json:"status"`
	PathID  string `json:"pathId,omitempty"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
	Playing bool   `json:"playing"`
	SpeedMS int    `json:"speedMs"`
}

// Event names what caused a change notification
type Event string

const (
	EventStart  Event = "start"
	EventTick   Event = "tick"
	EventPause  Event = "pause"
	EventResume Event = "resume"
	EventStop   Event = "stop"
	EventStep   Event = "step"
	EventSpeed  Event = "speed"
	EventFinish Event = "finish"
)

// Scheduler drives step-by-step playback of one path. It owns at most one
// pending timer; every state change that affects timing cancels it, and a
// generation counter drops fires that lost the race with Stop.
type Scheduler struct {
	mu       sync.Mutex
	clock    Clock
	state    State
	pathID   string
	total    int
	step     int
	speed    Speed
	gen      uint64
	timer    Timer
	listener func(Snapshot, Event)
}

// NewScheduler creates an idle scheduler. A nil clock uses RealClock.
func NewScheduler(clock Clock) *Scheduler {
	if clock == nil {
		clock = RealClock{}
	}
	return &Scheduler{
		clock: clock,
		step:  -1,
		speed: DefaultSpeed,
	}
}

// OnChange registers a listener invoked after every state change, outside the lock
func (s *Scheduler) OnChange(fn func(Snapshot, Event)) {
	s.mu.Lock()
	s.listener = fn
	s.mu.Unlock()
}

// Start begins playback of pathID from step 0. totalSteps is the node count.
func (s *Scheduler) Start(pathID string, totalSteps int) error {
	if totalSteps <= 0 {
		return fmt.Errorf("start %q: %w", pathID, ErrEmptyPath)
	}
	s.mu.Lock()
	s.cancelLocked()
	s.pathID = pathID
	s.total = totalSteps
	s.step = 0
	s.state = Playing
	s.scheduleLocked()
	return s.notifyUnlock(EventStart)
}

// Stop returns to Idle and clears the path
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.state = Idle
	s.pathID = ""
	s.total = 0
	s.step = -1
	s.notifyUnlock(EventStop)
}

// Replay stops and restarts the current path
func (s *Scheduler) Replay() error {
	s.mu.Lock()
	pathID, total := s.pathID, s.total
	s.mu.Unlock()
	if pathID == "" {
		return ErrNotAnimating
	}
	s.Stop()
	return s.Start(pathID, total)
}

// Pause halts playback at the current step
func (s *Scheduler) Pause() {
	s.mu.Lock()
	if s.state != Playing {
		s.mu.Unlock()
		return
	}
	s.cancelLocked()
	s.state = Paused
	s.notifyUnlock(EventPause)
}

// Resume continues from the current step. Resuming on the last step pauses
// again on the next tick.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	switch s.state {
	case Idle:
		s.mu.Unlock()
		return ErrNotAnimating
	case Playing:
		s.mu.Unlock()
		return nil
	}
	s.state = Playing
	s.scheduleLocked()
	return s.notifyUnlock(EventResume)
}

// SetStep jumps to step i, clamped to the path. A playing scheduler restarts its
// timer from the new step.
func (s *Scheduler) SetStep(i int) error {
	s.mu.Lock()
	if s.state == Idle {
		s.mu.Unlock()
		return ErrNotAnimating
	}
	s.step = max(0, min(i, s.total-1))
	if s.state == Playing {
		s.cancelLocked()
		s.scheduleLocked()
	}
	return s.notifyUnlock(EventStep)
}

// SetSpeed changes the per-step delay. A pending tick is rescheduled at the new speed.
func (s *Scheduler) SetSpeed(sp Speed) error {
	if !validSpeed(sp) {
		return fmt.Errorf("%w: %s", ErrInvalidSpeed, time.Duration(sp))
	}
	s.mu.Lock()
	s.speed = sp
	if s.state == Playing {
		s.cancelLocked()
		s.scheduleLocked()
	}
	return s.notifyUnlock(EventSpeed)
}

// Snapshot returns the current state
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Scheduler) snapshotLocked() Snapshot {
	return Snapshot{
		State:   s.state,
		Status:  s.state.String(),
		PathID:  s.pathID,
		Step:    s.step,
		Total:   s.total,
		Playing: s.state == Playing,
		SpeedMS: s.speed.Millis(),
	}
}

func (s *Scheduler) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.gen || s.state != Playing {
		s.mu.Unlock()
		return
	}
	s.timer = nil
	if s.step >= s.total-1 {
		s.state = Paused
		s.notifyUnlock(EventFinish)
		return
	}
	s.step++
	s.scheduleLocked()
	s.notifyUnlock(EventTick)
}

func (s *Scheduler) scheduleLocked() {
	s.gen++
	gen := s.gen
	s.timer = s.clock.AfterFunc(time.Duration(s.speed), func() { s.tick(gen) })
}

func (s *Scheduler) cancelLocked() {
	s.gen++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}

// notifyUnlock releases the lock and then calls the listener
func (s *Scheduler) notifyUnlock(ev Event) error {
	snap := s.snapshotLocked()
	fn := s.listener
	s.mu.Unlock()
	if fn != nil {
		fn(snap, ev)
	}
	return nil
}

func validSpeed(sp Speed) bool {
	for _, v := range Speeds {
		if v == sp {
			return true
		}
	}
	return false
}
