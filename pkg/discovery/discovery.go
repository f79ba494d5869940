// Package discovery 实现进程内的服务发现注册表：
// 记录的发布/更新/下线、按引用计数跟踪的绑定、importer/exporter
// 桥接组件生命周期，以及可插拔的持久化 backend。
package discovery

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/code-sigs/go-disco/pkg/errs"
	"github.com/code-sigs/go-disco/pkg/eventbus"
	"github.com/code-sigs/go-disco/pkg/logger"
)

const (
	usageBind    = "bind"
	usageRelease = "release"
)

// Discovery 服务发现注册表核心。
// importer/exporter/binding 三个集合都支持并发增删和快照迭代，
// 调用方不需要额外加锁；backend 自身保证存储原子性。
type Discovery struct {
	opts    *Options
	backend Backend
	bus     eventbus.Bus
	id      string

	importers *set[Importer]
	exporters *set[Exporter]
	bindings  *set[Reference]
}

// New 创建注册表。opts 为 nil 时使用 DefaultOptions；
// backend 按 opts.Backend 选择并完成 Init。
func New(bus eventbus.Bus, opts *Options) (*Discovery, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	backend, err := newBackend(opts.Backend)
	if err != nil {
		return nil, err
	}
	if err := backend.Init(context.Background(), opts.BackendConfig); err != nil {
		return nil, errs.Wrap(err, fmt.Sprintf("init backend %q failed", backend.Name()))
	}

	return &Discovery{
		opts:      opts,
		backend:   backend,
		bus:       bus,
		id:        opts.instanceID(),
		importers: newSet[Importer](),
		exporters: newSet[Exporter](),
		bindings:  newSet[Reference](),
	}, nil
}

// ID 注册表实例标识（usage 事件携带）
func (d *Discovery) ID() string {
	return d.id
}

// Publish 发布记录：状态为空/UNKNOWN/DOWN 时归一化为 UP，
// 交给 backend 持久化并返回带 registration 的记录。
// exporter 通知和 announce 广播不依赖 backend 的执行结果，总会执行；
// exporter 拿到的是调用方记录的副本，而不是 backend 返回的存储结果。
func (d *Discovery) Publish(ctx context.Context, record *Record) (*Record, error) {
	status := StatusUp
	if record.Status != "" && record.Status != StatusUnknown && record.Status != StatusDown {
		status = record.Status
	}
	record.Status = status

	stored, err := d.backend.Store(ctx, record)

	for _, exporter := range d.exporters.snapshot() {
		exporter.OnPublish(record.Copy())
	}

	announced := record.Copy()
	announced.Registration = ""
	announced.Status = status
	d.sendAnnounce(ctx, announced)

	if err != nil {
		return nil, err
	}
	return stored, nil
}

// Unpublish 按 registration 下线记录。backend 删除失败时直接返回错误，
// 不产生任何副作用；成功后通知 exporter 并广播状态为 DOWN 的记录。
func (d *Discovery) Unpublish(ctx context.Context, registration string) error {
	removed, err := d.backend.Remove(ctx, registration)
	if err != nil {
		return err
	}

	for _, exporter := range d.exporters.snapshot() {
		exporter.OnUnpublish(registration)
	}

	announced := removed.Copy()
	announced.Registration = ""
	announced.Status = StatusDown
	d.sendAnnounce(ctx, announced)
	return nil
}

// Update 更新记录（必须带 registration）。backend 失败时无副作用；
// 成功后通知 exporter 并广播完整记录——注意这里 registration 保留，
// 与 publish/unpublish 的清除行为不同。
func (d *Discovery) Update(ctx context.Context, record *Record) (*Record, error) {
	if err := d.backend.Update(ctx, record); err != nil {
		return nil, err
	}

	for _, exporter := range d.exporters.snapshot() {
		exporter.OnUpdate(record.Copy())
	}

	d.sendAnnounce(ctx, record.Copy())
	return record, nil
}

// GetRecord 按结构化过滤条件取任意一条匹配记录，无匹配时返回 (nil, nil)。
// 过滤条件显式约束 status 时自动放行 OUT_OF_SERVICE 记录。
func (d *Discovery) GetRecord(ctx context.Context, filter map[string]any) (*Record, error) {
	match, includeOutOfService := compileFilter(filter)
	return d.GetRecordMatching(ctx, match, includeOutOfService)
}

// GetRecordMatching 按谓词取任意一条匹配记录
func (d *Discovery) GetRecordMatching(ctx context.Context, match func(*Record) bool, includeOutOfService bool) (*Record, error) {
	records, err := d.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, record := range records {
		if match(record) && (includeOutOfService || record.Status == StatusUp) {
			return record, nil
		}
	}
	return nil, nil
}

// GetRecords 按结构化过滤条件取全部匹配记录，顺序即 backend 返回顺序
func (d *Discovery) GetRecords(ctx context.Context, filter map[string]any) ([]*Record, error) {
	match, includeOutOfService := compileFilter(filter)
	return d.GetRecordsMatching(ctx, match, includeOutOfService)
}

// GetRecordsMatching 按谓词取全部匹配记录
func (d *Discovery) GetRecordsMatching(ctx context.Context, match func(*Record) bool, includeOutOfService bool) ([]*Record, error) {
	records, err := d.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Record, 0, len(records))
	for _, record := range records {
		if match(record) && (includeOutOfService || record.Status == StatusUp) {
			out = append(out, record)
		}
	}
	return out, nil
}

func compileFilter(filter map[string]any) (func(*Record) bool, bool) {
	if filter == nil {
		return func(*Record) bool { return true }, false
	}
	// 过滤条件显式约束 status 时才放行非 UP 记录
	includeOutOfService := false
	if v, ok := filter["status"]; ok && v != nil && v != "" {
		includeOutOfService = true
	}
	return func(r *Record) bool { return r.Match(filter) }, includeOutOfService
}

// GetReference 按记录类型分发到对应工厂物化一个绑定，
// 加入未释放集合并发送 bind 事件。工厂未注册或构造失败时返回错误。
func (d *Discovery) GetReference(record *Record, config Config) (Reference, error) {
	factory, ok := referenceFactory(record.Type)
	if !ok {
		return nil, errs.WithCode(
			errs.New(fmt.Sprintf("no reference factory registered for service type %q", record.Type)),
			errs.ErrorNoFactory)
	}
	if config == nil {
		config = Config{}
	}
	reference, err := factory(d, record, config)
	if err != nil {
		return nil, err
	}
	d.bindings.add(reference)
	d.sendUsageEvent(usageBind, reference)
	return reference, nil
}

// Release 释放绑定：先从集合摘除，无论是否在集合中都执行绑定自身的清理，
// 并发送 release 事件；返回绑定此前是否被跟踪。
func (d *Discovery) Release(reference Reference) bool {
	removed := d.bindings.remove(reference)
	reference.Release()
	d.sendUsageEvent(usageRelease, reference)
	return removed
}

// Unbind 外部触发的绑定失效：只从集合摘除，不执行绑定清理；
// 只有绑定确实被跟踪时才发送 release 事件。
func (d *Discovery) Unbind(reference Reference) {
	if d.bindings.remove(reference) {
		d.sendUsageEvent(usageRelease, reference)
	}
}

// Bindings 当前未释放绑定的快照
func (d *Discovery) Bindings() []Reference {
	return d.bindings.snapshot()
}

// RegisterServiceImporter 注册 importer：异步执行 Start，调用立即返回。
// Start 失败时只记日志，importer 不进入活跃集合，不重试。
func (d *Discovery) RegisterServiceImporter(importer Importer, config Config) *Discovery {
	if config == nil {
		config = Config{}
	}
	go func() {
		ctx := context.Background()
		if err := importer.Start(ctx, d, config); err != nil {
			logger.Errorw(ctx, "cannot start the service importer", "error", err)
			return
		}
		d.importers.add(importer)
		logger.Infow(ctx, "discovery importer started")
	}()
	return d
}

// RegisterServiceExporter 注册 exporter，立即进入活跃集合
func (d *Discovery) RegisterServiceExporter(exporter Exporter) *Discovery {
	d.exporters.add(exporter)
	logger.Infow(context.Background(), "discovery exporter started")
	return d
}

// Close 关闭注册表：触发所有桥接组件的停止，同步释放全部未释放绑定并
// 清空集合（不等待桥接组件停完）。桥接停止结果异步汇总后只记日志，
// Close 本身永不失败。
func (d *Discovery) Close() {
	ctx := context.Background()
	logger.Infof(ctx, "stopping service discovery")

	var wg sync.WaitGroup
	importers := d.importers.drain()
	exporters := d.exporters.drain()
	failures := make(chan error, len(importers)+len(exporters))

	for _, importer := range importers {
		wg.Add(1)
		go func(imp Importer) {
			defer wg.Done()
			if err := imp.Stop(ctx, d); err != nil {
				failures <- err
			}
		}(importer)
	}
	for _, exporter := range exporters {
		wg.Add(1)
		go func(exp Exporter) {
			defer wg.Done()
			if err := exp.Close(); err != nil {
				failures <- err
			}
		}(exporter)
	}

	for _, reference := range d.bindings.drain() {
		reference.Release()
	}

	go func() {
		wg.Wait()
		close(failures)
		var errs []error
		for err := range failures {
			errs = append(errs, err)
		}
		if len(errs) == 0 {
			logger.Infof(ctx, "discovery bridges stopped")
		} else {
			logger.Warnw(ctx, "some discovery bridges did not stop smoothly", "errors", errs)
		}
	}()
}

func (d *Discovery) sendAnnounce(ctx context.Context, record *Record) {
	if d.bus == nil || d.opts.AnnounceAddress == "" {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		logger.Warnw(ctx, "marshal announce record failed", "error", err)
		return
	}
	if err := d.bus.Publish(ctx, d.opts.AnnounceAddress, payload); err != nil {
		logger.Warnw(ctx, "publish announce event failed", "error", err)
	}
}

func (d *Discovery) sendUsageEvent(kind string, reference Reference) {
	if d.bus == nil || d.opts.UsageAddress == "" {
		return
	}
	ctx := context.Background()
	payload, err := json.Marshal(map[string]any{
		"type":   kind,
		"record": reference.Record(),
		"id":     d.id,
	})
	if err != nil {
		logger.Warnw(ctx, "marshal usage event failed", "error", err)
		return
	}
	if err := d.bus.Publish(ctx, d.opts.UsageAddress, payload); err != nil {
		logger.Warnw(ctx, "publish usage event failed", "error", err)
	}
}
