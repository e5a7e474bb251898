/*
 * @module service/utils/worker_pool
 * @description 有界工作池，批处理作业用固定数量的并发工作者遍历独立实体
 * @architecture 工具层 - 并发原语
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 任务入队 -> 占用工作槽位 -> 执行 -> 释放槽位
 * @rules 单个实体失败只计数不中断批次，上下文取消后不再派发新任务
 * @dependencies sync, context
 * @refs service/scoring, service/benchmark
 */

package utils

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// ForEachBounded 以最多workers个并发工作者对items逐一执行fn
// 返回成功数与失败数，实体级错误记日志并计数，不中断其余任务
func ForEachBounded(ctx context.Context, workers int, items []string, fn func(ctx context.Context, item string) error) (int, int) {
	if workers < 1 {
		workers = 1
	}

	var processed, failed int64
	var wg sync.WaitGroup
	slots := make(chan struct{}, workers)

loop:
	for _, item := range items {
		// 已取消时优先停止派发，避免与空闲槽位竞争
		if ctx.Err() != nil {
			break loop
		}

		select {
		case <-ctx.Done():
			break loop
		case slots <- struct{}{}:
		}

		wg.Add(1)
		go func(it string) {
			defer wg.Done()
			defer func() { <-slots }()

			if err := fn(ctx, it); err != nil {
				atomic.AddInt64(&failed, 1)
				slog.Error("批处理实体失败", "item", it, "error", err)
				return
			}
			atomic.AddInt64(&processed, 1)
		}(item)
	}

	wg.Wait()
	return int(processed), int(failed)
}
