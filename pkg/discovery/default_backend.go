package discovery

import (
	"context"
	"fmt"
	"sync"

	"github.com/code-sigs/go-disco/pkg/utils"
)

// defaultBackend 内置内存 backend，未配置任何持久化实现时的默认选择
type defaultBackend struct {
	mu      sync.RWMutex
	records map[string]*Record
}

func newDefaultBackend() *defaultBackend {
	return &defaultBackend{
		records: make(map[string]*Record),
	}
}

func (b *defaultBackend) Init(ctx context.Context, config Config) error {
	return nil
}

func (b *defaultBackend) Store(ctx context.Context, record *Record) (*Record, error) {
	if record.Registration != "" {
		return nil, fmt.Errorf("record %q has already been registered", record.Name)
	}
	record.Registration = utils.GenerateUUID()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.records[record.Registration] = record.Copy()
	return record, nil
}

func (b *defaultBackend) Update(ctx context.Context, record *Record) error {
	if record.Registration == "" {
		return ErrMissingRegistration
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.records[record.Registration]; !ok {
		return ErrRecordNotFound
	}
	b.records[record.Registration] = record.Copy()
	return nil
}

func (b *defaultBackend) Remove(ctx context.Context, registration string) (*Record, error) {
	if registration == "" {
		return nil, ErrMissingRegistration
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	record, ok := b.records[registration]
	if !ok {
		return nil, ErrRecordNotFound
	}
	delete(b.records, registration)
	return record, nil
}

func (b *defaultBackend) List(ctx context.Context) ([]*Record, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*Record, 0, len(b.records))
	for _, record := range b.records {
		out = append(out, record.Copy())
	}
	return out, nil
}

func (b *defaultBackend) Name() string {
	return DefaultBackendName
}
