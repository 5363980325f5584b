package staging

import "sync"

// MemorySlot 把数据保存在进程内，主要用于测试和未配置持久化的场景
type MemorySlot struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemorySlot() *MemorySlot {
	return &MemorySlot{data: make(map[string][]byte)}
}

func (m *MemorySlot) Load(scope string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.data[scope]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MemorySlot) Save(scope string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[scope] = append([]byte(nil), data...)
	return nil
}
