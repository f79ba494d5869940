package discovery

import "sync"

// set 并发安全集合，snapshot 返回调用瞬间的成员副本，
// 迭代期间的增删不影响已返回的快照。
type set[T comparable] struct {
	mu    sync.RWMutex
	items map[T]struct{}
}

func newSet[T comparable]() *set[T] {
	return &set[T]{
		items: make(map[T]struct{}),
	}
}

func (s *set[T]) add(item T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[item] = struct{}{}
}

// remove 返回成员是否原本在集合中
func (s *set[T]) remove(item T) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.items[item]
	delete(s.items, item)
	return ok
}

func (s *set[T]) snapshot() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	return out
}

// drain 清空集合并返回清空前的成员
func (s *set[T]) drain() []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(s.items))
	for item := range s.items {
		out = append(out, item)
	}
	s.items = make(map[T]struct{})
	return out
}

func (s *set[T]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}
