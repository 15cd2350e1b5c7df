package probe

import (
	"os"
	"testing"

	"go.uber.org/zap"

	"github.com/ChenBigdata421/jxt-latency-probe/sdk/pkg/logger"
)

// TestMain 为包内测试准备全局logger
func TestMain(m *testing.M) {
	logger.Logger = zap.NewNop()
	logger.DefaultLogger = logger.Logger.Sugar()
	os.Exit(m.Run())
}
