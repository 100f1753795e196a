package memory

import (
	"context"
	"slices"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/bellkey/pkg/domain/interfaces"
	"github.com/secmon-lab/bellkey/pkg/utils/errutil"
)

// Memory is a process-local KVStore. Values are copied on the way in and
// out so callers cannot mutate stored data.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte

	// Call counter for tracking method invocations
	callCounts map[string]int
	callMu     sync.RWMutex

	eb *goerr.Builder
}

var _ interfaces.KVStore = &Memory{}

func New() *Memory {
	return &Memory{
		data:       make(map[string][]byte),
		callCounts: make(map[string]int),
		eb:         goerr.NewBuilder(goerr.TV(errutil.StoreKey, "memory")),
	}
}

func (m *Memory) incrementCallCount(method string) {
	m.callMu.Lock()
	defer m.callMu.Unlock()
	m.callCounts[method]++
}

// CallCount returns how many times method was invoked.
func (m *Memory) CallCount(method string) int {
	m.callMu.RLock()
	defer m.callMu.RUnlock()
	return m.callCounts[method]
}

func (m *Memory) Get(ctx context.Context, key string) ([]byte, error) {
	m.incrementCallCount("Get")

	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	return slices.Clone(v), nil
}

func (m *Memory) Put(ctx context.Context, key string, value []byte) error {
	m.incrementCallCount("Put")

	if key == "" {
		return m.eb.New("empty key")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = slices.Clone(value)
	return nil
}

func (m *Memory) Delete(ctx context.Context, key string) error {
	m.incrementCallCount("Delete")

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.data, key)
	return nil
}

// Clear drops every key, like wiping client storage.
func (m *Memory) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = make(map[string][]byte)
}
