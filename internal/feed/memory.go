package feed

import "sync"

// Memory is the in-process hub used for single-node deployments and tests.
type Memory struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
}

func NewMemory() *Memory {
	return &Memory{subs: make(map[int]chan Event)}
}

// Publish fans the event out to every live subscriber. A subscriber that
// has fallen behind drops the event rather than blocking the mutation path.
func (m *Memory) Publish(evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	for _, ch := range m.subs {
		select {
		case ch <- evt:
		default:
		}
	}
	return nil
}

func (m *Memory) Subscribe() (<-chan Event, func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	id := m.nextID
	m.nextID++
	ch := make(chan Event, 64)
	m.subs[id] = ch
	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.subs[id]; ok {
			delete(m.subs, id)
			close(ch)
		}
	}
	return ch, cancel, nil
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return nil
	}
	m.closed = true
	for id, ch := range m.subs {
		delete(m.subs, id)
		close(ch)
	}
	return nil
}
