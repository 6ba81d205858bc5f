package loyalty

import (
	"go.uber.org/zap"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// configSource 每次操作讀取一次設定，讀取失敗或設定無效時回退到預設等級表
type configSource struct {
	provider loyalty.ConfigProvider
	logger   *zap.Logger
	metrics  Metrics
}

func newConfigSource(provider loyalty.ConfigProvider, logger *zap.Logger, metrics Metrics) *configSource {
	return &configSource{provider: provider, logger: logger, metrics: metrics}
}

// load 返回已排序且通過驗證的設定
func (c *configSource) load() loyalty.LoyaltyConfig {
	if c.provider == nil {
		return loyalty.DefaultConfig()
	}

	raw, err := c.provider.LoadLoyaltyConfig()
	if err != nil {
		c.fallback(err)
		return loyalty.DefaultConfig()
	}

	config, err := raw.Normalize()
	if err != nil {
		c.fallback(err)
	}
	return config
}

func (c *configSource) fallback(err error) {
	c.logger.Warn("loyalty config unusable, falling back to default tier table", zap.Error(err))
	c.metrics.ConfigFallback()
}
