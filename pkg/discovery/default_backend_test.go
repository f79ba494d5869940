package discovery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultBackendStore(t *testing.T) {
	ctx := context.Background()
	backend := newDefaultBackend()

	stored, err := backend.Store(ctx, &Record{Name: "svc"})
	assert.NoError(t, err)
	assert.NotEmpty(t, stored.Registration)

	// 已带 registration 的记录不能重复发布
	_, err = backend.Store(ctx, stored)
	assert.Error(t, err)
}

func TestDefaultBackendUpdate(t *testing.T) {
	ctx := context.Background()
	backend := newDefaultBackend()

	assert.ErrorIs(t, backend.Update(ctx, &Record{Name: "svc"}), ErrMissingRegistration)
	assert.ErrorIs(t, backend.Update(ctx, &Record{Registration: "missing"}), ErrRecordNotFound)

	stored, err := backend.Store(ctx, &Record{Name: "svc"})
	assert.NoError(t, err)

	stored.Status = StatusOutOfService
	assert.NoError(t, backend.Update(ctx, stored))

	records, err := backend.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, StatusOutOfService, records[0].Status)
}

func TestDefaultBackendRemove(t *testing.T) {
	ctx := context.Background()
	backend := newDefaultBackend()

	_, err := backend.Remove(ctx, "")
	assert.ErrorIs(t, err, ErrMissingRegistration)
	_, err = backend.Remove(ctx, "missing")
	assert.ErrorIs(t, err, ErrRecordNotFound)

	stored, err := backend.Store(ctx, &Record{Name: "svc"})
	assert.NoError(t, err)

	removed, err := backend.Remove(ctx, stored.Registration)
	assert.NoError(t, err)
	assert.Equal(t, stored.Registration, removed.Registration)

	records, err := backend.List(ctx)
	assert.NoError(t, err)
	assert.Empty(t, records)
}

func TestDefaultBackendListReturnsCopies(t *testing.T) {
	ctx := context.Background()
	backend := newDefaultBackend()

	_, err := backend.Store(ctx, &Record{Name: "svc", Metadata: map[string]any{"version": "1"}})
	assert.NoError(t, err)

	records, err := backend.List(ctx)
	assert.NoError(t, err)
	records[0].Metadata["version"] = "2"

	records, err = backend.List(ctx)
	assert.NoError(t, err)
	assert.Equal(t, "1", records[0].Metadata["version"])
}
