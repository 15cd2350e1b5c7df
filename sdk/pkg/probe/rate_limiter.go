package probe

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/config"
	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
)

// RateLimiter 拉取流量控制器
// 限制探针消费标记记录的速率，避免一次测量运行打满目标集群的读带宽
type RateLimiter struct {
	limiter   *rate.Limiter
	burstSize int
	rateLimit rate.Limit
	enabled   bool
	logger    *zap.Logger
}

// NewRateLimiter 创建流量控制器
func NewRateLimiter(cfg config.RateLimitConfig) *RateLimiter {
	if !cfg.Enabled {
		return &RateLimiter{
			enabled: false,
			logger:  logger.Logger,
		}
	}

	rateLimit := rate.Limit(cfg.RatePerSecond)
	limiter := rate.NewLimiter(rateLimit, cfg.BurstSize)

	return &RateLimiter{
		limiter:   limiter,
		burstSize: cfg.BurstSize,
		rateLimit: rateLimit,
		enabled:   true,
		logger:    logger.Logger,
	}
}

// Wait 等待令牌，实现背压机制
func (rl *RateLimiter) Wait(ctx context.Context) error {
	if !rl.enabled {
		return nil // 未启用流量控制，直接通过
	}

	start := time.Now()
	err := rl.limiter.Wait(ctx)
	if err != nil {
		rl.logger.Error("Rate limiter wait failed", zap.Error(err))
		return err
	}

	waitTime := time.Since(start)
	if waitTime > 100*time.Millisecond {
		rl.logger.Warn("Rate limiter caused significant delay",
			zap.Duration("waitTime", waitTime),
			zap.Float64("rateLimit", float64(rl.rateLimit)),
			zap.Int("burstSize", rl.burstSize))
	}

	return nil
}

// Allow 检查是否允许立即处理（非阻塞）
func (rl *RateLimiter) Allow() bool {
	if !rl.enabled {
		return true
	}
	return rl.limiter.Allow()
}

// Enabled 返回流量控制是否启用
func (rl *RateLimiter) Enabled() bool {
	return rl.enabled
}
