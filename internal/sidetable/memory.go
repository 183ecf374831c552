package sidetable

import "errors"

// MemoryEngine creates tables that are held in main memory.
type MemoryEngine struct{}

var _ Engine = MemoryEngine{}

func (MemoryEngine) Open(name string) (Table, error) {
	return &Memory{mp: make(map[string][]string)}, nil
}

// Memory is a Table held in main memory.
type Memory struct {
	mp       map[string][]string
	finished bool
}

var (
	errMemoryClosed   = errors.New("table closed")
	errMemoryFinished = errors.New("table finalized")
)

func (m *Memory) Append(key string, values ...string) error {
	if m.mp == nil {
		return errMemoryClosed
	}
	if m.finished {
		return errMemoryFinished
	}
	m.mp[key] = append(m.mp[key], values...)
	return nil
}

func (m *Memory) Get(key string) ([]string, bool, error) {
	if m.mp == nil {
		return nil, false, errMemoryClosed
	}
	values, ok := m.mp[key]
	return values, ok, nil
}

func (m *Memory) Has(key string) (bool, error) {
	if m.mp == nil {
		return false, errMemoryClosed
	}
	_, ok := m.mp[key]
	return ok, nil
}

func (m *Memory) Iterate(f func(key string, values []string) error) error {
	if m.mp == nil {
		return errMemoryClosed
	}
	for key, values := range m.mp {
		if err := f(key, values); err != nil {
			return err
		}
	}
	return nil
}

func (m *Memory) Count() (uint64, error) {
	if m.mp == nil {
		return 0, errMemoryClosed
	}
	return uint64(len(m.mp)), nil
}

func (m *Memory) Finalize() error {
	m.finished = true
	return nil
}

func (m *Memory) Close() error {
	m.mp = nil
	return nil
}
