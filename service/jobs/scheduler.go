/*
 * @module service/jobs/scheduler
 * @description 作业调度器，按固定节奏触发各聚合作业
 * @architecture 业务服务层 - 作业框架
 * @documentReference ai_docs/scoring_pipeline_impl.md
 * @stateFlow 注册作业 -> cron触发 -> 运行器执行 -> 记录结果
 * @rules 调度表达式支持秒字段，作业失败只记录不中断调度器
 * @dependencies github.com/robfig/cron/v3
 * @refs service/init.go
 */

package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler 作业调度器
type Scheduler struct {
	cron    *cron.Cron
	runner  *Runner
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler 创建作业调度器实例
func NewScheduler(runner *Runner) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		runner: runner,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register 按调度表达式注册作业
func (s *Scheduler) Register(spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		if err := s.runner.RunJob(s.ctx, job); err != nil {
			slog.Error("调度作业运行失败", "job", job.Name(), "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("注册调度作业失败 [%s]: %w", job.Name(), err)
	}

	slog.Info("注册调度作业", "job", job.Name(), "cron", spec)
	return nil
}

// Start 启动调度器
func (s *Scheduler) Start() {
	if s.started {
		return
	}
	s.cron.Start()
	s.started = true
	slog.Info("作业调度器启动完成")
}

// Stop 停止调度器并取消在途作业的上下文
func (s *Scheduler) Stop() {
	if !s.started {
		return
	}
	s.cancel()
	s.cron.Stop()
	s.started = false
	slog.Info("作业调度器已停止")
}
