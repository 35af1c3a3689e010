package utils

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"
)

// BackgroundProcessManager runs the long lived loops (dashboard, channel
// stats, status API) and stops them together.
type BackgroundProcessManager struct {
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	processes map[string]context.CancelFunc
}

func NewBackgroundProcessManager(parent context.Context) *BackgroundProcessManager {
	ctx, cancel := context.WithCancel(parent)
	return &BackgroundProcessManager{
		ctx:       ctx,
		cancel:    cancel,
		processes: make(map[string]context.CancelFunc),
	}
}

// StartProcess runs fn in its own goroutine. A process with the same name is
// stopped first. A panic is logged and ends only that process.
func (m *BackgroundProcessManager) StartProcess(name string, fn func(ctx context.Context)) {
	m.mu.Lock()
	if stop, ok := m.processes[name]; ok {
		slog.Warn("Process already running, restarting", slog.String("type", "sys"), slog.String("process", name))
		stop()
	}
	ctx, cancel := context.WithCancel(m.ctx)
	m.processes[name] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				slog.Error("Background process panic",
					slog.String("type", "error"),
					slog.String("process", name),
					slog.Any("panic", r))
			}
		}()

		slog.Info("Starting background process", slog.String("type", "sys"), slog.String("process", name))
		fn(ctx)
		slog.Info("Background process ended", slog.String("type", "sys"), slog.String("process", name))
	}()
}

// Names lists registered processes, sorted.
func (m *BackgroundProcessManager) Names() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.processes))
	for name := range m.processes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Shutdown cancels every process and waits up to timeout for them to return.
func (m *BackgroundProcessManager) Shutdown(timeout time.Duration) error {
	m.cancel()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		slog.Info("All background processes stopped", slog.String("type", "sys"))
		return nil
	case <-time.After(timeout):
		slog.Warn("Timeout waiting for background processes",
			slog.String("type", "sys"),
			slog.Duration("timeout", timeout))
		return context.DeadlineExceeded
	}
}
