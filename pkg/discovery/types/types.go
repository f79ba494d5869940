// Package types 提供内置的服务类型引用工厂。
// 引入本包后即可用 Discovery.GetReference 按记录的 type 标签
// 物化出对应的客户端对象；工厂本身不依赖注册表内部实现。
package types

import (
	"fmt"
	"strconv"
)

// 内置服务类型标签
const (
	HTTPEndpoint    = "http-endpoint"
	GRPCEndpoint    = "grpc-endpoint"
	MessageSource   = "message-source"
	RedisDataSource = "redis-datasource"
	MongoDataSource = "mongo-datasource"
	ObjectStore     = "object-store"
)

// locString 从 location/config 中取字符串字段
func locString(m map[string]any, key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// locStrings 取字符串列表字段（JSON 反序列化后是 []any）
func locStrings(m map[string]any, key string) []string {
	v, ok := m[key]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{list}
	}
	return nil
}

// locBool 取布尔字段
func locBool(m map[string]any, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// locInt 取整数字段（兼容 JSON 的 float64）
func locInt(m map[string]any, key string) int {
	v, ok := m[key]
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case string:
		i, _ := strconv.Atoi(n)
		return i
	}
	return 0
}

func missingLocation(serviceType, key string) error {
	return fmt.Errorf("service type %s: record location missing %q", serviceType, key)
}
