package eventbus

import (
	"context"
	"sync"
)

// Local 进程内广播总线，按 address 分发给所有订阅者
type Local struct {
	mu   sync.RWMutex
	subs map[string][]chan []byte
}

func NewLocal() *Local {
	return &Local{
		subs: make(map[string][]chan []byte),
	}
}

func (l *Local) Publish(ctx context.Context, address string, payload []byte) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, ch := range l.subs[address] {
		// 非阻塞推送，慢订阅者丢弃
		select {
		case ch <- payload:
		default:
		}
	}
	return nil
}

// Subscribe 订阅指定地址，ctx 结束时自动移除订阅并关闭通道
func (l *Local) Subscribe(ctx context.Context, address string) <-chan []byte {
	ch := make(chan []byte, 16)
	l.mu.Lock()
	l.subs[address] = append(l.subs[address], ch)
	l.mu.Unlock()

	// 监听 context 关闭，自动移除订阅
	go func() {
		<-ctx.Done()
		l.mu.Lock()
		defer l.mu.Unlock()
		subs := l.subs[address]
		for i, s := range subs {
			if s == ch {
				l.subs[address] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(ch)
	}()
	return ch
}
