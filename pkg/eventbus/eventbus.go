// Package eventbus 提供发布式广播通道，服务发现用它发送
// announce / usage 事件，不保证送达、不等待确认。
package eventbus

import "context"

// Bus 广播总线接口，address 为逻辑地址（本地总线为订阅键，kafka 为 topic）
type Bus interface {
	Publish(ctx context.Context, address string, payload []byte) error
}
