package service

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// HeartbeatService is the background task started and stopped over the
// API. It only ticks and logs; it never touches the store.
type HeartbeatService struct {
	Logger   *slog.Logger
	Interval time.Duration

	mu     sync.Mutex
	stopCh chan struct{}
	doneCh chan struct{}

	ticks atomic.Int64
}

// NewHeartbeatService creates a stopped heartbeat. If interval is 0 or
// negative, defaults to 5 seconds.
func NewHeartbeatService(logger *slog.Logger, interval time.Duration) *HeartbeatService {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &HeartbeatService{Logger: logger, Interval: interval}
}

// Start launches the worker. It reports false if it was already running.
func (s *HeartbeatService) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh != nil {
		return false
	}
	s.stopCh = make(chan struct{})
	s.doneCh = make(chan struct{})
	go s.run(s.stopCh, s.doneCh)

	s.Logger.Info("heartbeat started", "interval", s.Interval)
	return true
}

// Stop signals the worker and waits for it to exit. It reports false if
// the worker was not running.
func (s *HeartbeatService) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopCh == nil {
		return false
	}
	close(s.stopCh)
	<-s.doneCh
	s.stopCh, s.doneCh = nil, nil

	s.Logger.Info("heartbeat stopped", "ticks", s.ticks.Load())
	return true
}

// Running reports whether the worker is active.
func (s *HeartbeatService) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopCh != nil
}

// Ticks returns the number of ticks since the service was created.
func (s *HeartbeatService) Ticks() int64 { return s.ticks.Load() }

func (s *HeartbeatService) run(stopCh <-chan struct{}, doneCh chan<- struct{}) {
	defer close(doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			n := s.ticks.Add(1)
			s.Logger.Debug("heartbeat tick", "tick", n)
		case <-stopCh:
			return
		}
	}
}
