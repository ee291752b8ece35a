package testutil

import (
	"sync"
	"time"

	"github.com/vk/cdf2fhir/internal/registry"
)

// SleeperModule is a module whose single callable, sleep(id), sleeps and
// records when it ran. It lets tests observe which evaluations overlapped.
type SleeperModule struct {
	ExecutionTimes map[string]*ExecutionRecord
	mu             sync.Mutex
	sleepDuration  time.Duration
}

// NewSleeperModule creates a sleeper module for testing.
func NewSleeperModule(sleep time.Duration) *SleeperModule {
	return &SleeperModule{
		ExecutionTimes: make(map[string]*ExecutionRecord),
		sleepDuration:  sleep,
	}
}

func (m *SleeperModule) Name() string {
	return "sleeper"
}

func (m *SleeperModule) Exports() registry.Exports {
	return registry.Funcs(map[string]any{
		"sleep": func(id string) string {
			start := time.Now()
			time.Sleep(m.sleepDuration)
			end := time.Now()

			m.mu.Lock()
			m.ExecutionTimes[id] = &ExecutionRecord{Start: start, End: end}
			m.mu.Unlock()
			return id
		},
	})
}

// Record returns the execution record of id.
func (m *SleeperModule) Record(id string) (*ExecutionRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.ExecutionTimes[id]
	return r, ok
}
