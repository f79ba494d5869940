package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlug(t *testing.T) {
	assert.Equal(t, "hello-world", Slug("Hello World"))
	assert.Equal(t, "api-v2", Slug("api_v2"))
	assert.Equal(t, "orders", Slug("  orders!  "))
	// 中文按拼音转写
	assert.Equal(t, "ding-dan-fu-wu", Slug("订单服务"))
	assert.Equal(t, "order-fu-wu", Slug("order服务"))
	assert.Equal(t, "", Slug("!!!"))
}

func TestGenerateUUID(t *testing.T) {
	a := GenerateUUID()
	b := GenerateUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("  Hello  "))
	assert.Equal(t, "", SanitizeString("   "))
}
