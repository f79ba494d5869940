package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordMatch(t *testing.T) {
	record := &Record{
		Registration: "reg-1",
		Name:         "orders",
		Type:         "http-endpoint",
		Status:       StatusUp,
		Metadata:     map[string]any{"version": "2.1", "zone": "cn-north"},
	}

	assert.True(t, record.Match(nil))
	assert.True(t, record.Match(map[string]any{"name": "orders"}))
	assert.True(t, record.Match(map[string]any{"name": "orders", "type": "http-endpoint"}))
	assert.True(t, record.Match(map[string]any{"registration": "reg-1"}))
	assert.True(t, record.Match(map[string]any{"status": "UP"}))
	assert.False(t, record.Match(map[string]any{"name": "payments"}))
	assert.False(t, record.Match(map[string]any{"status": "DOWN"}))

	// 非保留 key 匹配 metadata
	assert.True(t, record.Match(map[string]any{"version": "2.1"}))
	assert.False(t, record.Match(map[string]any{"version": "1.0"}))
	assert.False(t, record.Match(map[string]any{"region": "eu"}))
}

func TestRecordMatchWildcard(t *testing.T) {
	record := &Record{Name: "orders", Metadata: map[string]any{"zone": "cn-north"}}

	// "*" 只要求字段存在
	assert.True(t, record.Match(map[string]any{"name": "*"}))
	assert.True(t, record.Match(map[string]any{"zone": "*"}))
	assert.False(t, record.Match(map[string]any{"type": "*"}))
	assert.False(t, record.Match(map[string]any{"region": "*"}))
}

func TestRecordCopy(t *testing.T) {
	record := &Record{
		Registration: "reg-1",
		Name:         "orders",
		Metadata:     map[string]any{"version": "2.1"},
		Location:     map[string]any{"endpoint": "http://localhost:8080"},
	}

	dup := record.Copy()
	assert.Equal(t, record, dup)

	dup.Metadata["version"] = "3.0"
	dup.Location["endpoint"] = "changed"
	assert.Equal(t, "2.1", record.Metadata["version"])
	assert.Equal(t, "http://localhost:8080", record.Location["endpoint"])

	var nilRecord *Record
	assert.Nil(t, nilRecord.Copy())
}
