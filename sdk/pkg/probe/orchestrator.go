package probe

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/histogram"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
)

// defaultMaxWorkers 未显式配置工作协程数时的并发上限
const defaultMaxWorkers = 8

// FetchTask 单个分区的拉取任务
// 生产实现为 PartitionFetcher.Fetch，测试中可替换为桩实现
type FetchTask func(ctx context.Context, partition int32, startOffset, budget int64, hist *histogram.Histogram) (FetchResult, error)

// FetchOrchestrator 拉取编排器
// 负责预算切分、有界并发执行分区拉取任务、结果归并；
// 任何一个任务失败都会中止整次运行，不保留部分结果
type FetchOrchestrator struct {
	workers  int
	deadline time.Duration
	logger   *zap.Logger
}

// NewFetchOrchestrator 创建拉取编排器
// workers 为 0 时按分区数取值（上限 defaultMaxWorkers）
func NewFetchOrchestrator(workers int, deadline time.Duration) *FetchOrchestrator {
	return &FetchOrchestrator{
		workers:  workers,
		deadline: deadline,
		logger:   logger.Logger,
	}
}

// splitBudget 把全局采样预算切分到各个分区
// 每个分区分到 budget/n，除不尽的余数全部归最后一个分区；
// 负预算表示全部分区不限量
func splitBudget(budget int64, n int) []int64 {
	budgets := make([]int64, n)
	if budget < 0 {
		for i := range budgets {
			budgets[i] = BudgetUnlimited
		}
		return budgets
	}

	quota := budget / int64(n)
	for i := range budgets {
		budgets[i] = quota
	}
	budgets[n-1] += budget % int64(n)
	return budgets
}

// Run 对全部分区执行拉取并归并结果
// 所有任务共享一个直方图；等待时间超过 deadline 时整次运行失败，
// 已在途的任务收到取消信号后被放弃，不再等待
func (o *FetchOrchestrator) Run(ctx context.Context, partitions []int32, startOffset, budget int64, hist *histogram.Histogram, task FetchTask) (GlobalResult, error) {
	if len(partitions) == 0 {
		return GlobalResult{}, fmt.Errorf("%w: no partitions to fetch", ErrDiscovery)
	}

	workers := o.workers
	if workers <= 0 {
		workers = len(partitions)
		if workers > defaultMaxWorkers {
			workers = defaultMaxWorkers
		}
	}

	budgets := splitBudget(budget, len(partitions))
	results := make([]FetchResult, len(partitions))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	o.logger.Info("Starting partition fetches",
		zap.Int("partitions", len(partitions)),
		zap.Int("workers", workers),
		zap.Int64("budget", budget))

	// 派发和汇合放在同一个后台协程：并发到达上限时 g.Go 会阻塞派发，
	// 不能让它挡住超时判定
	done := make(chan error, 1)
	go func() {
		for i, partition := range partitions {
			// go.mod 声明 go 1.21：循环变量按整个循环共享，这里按迭代重新
			// 绑定，闭包才能拿到本迭代的分区和预算下标
			i, partition := i, partition
			g.Go(func() error {
				res, err := task(gctx, partition, startOffset, budgets[i], hist)
				if err != nil {
					o.logger.Error("Partition fetch failed",
						zap.Int32("partition", partition),
						zap.Error(err))
					return err
				}
				results[i] = res
				return nil
			})
		}
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return GlobalResult{}, err
		}
	case <-time.After(o.deadline):
		return GlobalResult{}, fmt.Errorf("%w: partition fetches did not finish within %s", ErrDeadlineExceeded, o.deadline)
	}

	var global GlobalResult
	for _, r := range results {
		global = global.Merge(r)
	}
	return global, nil
}
