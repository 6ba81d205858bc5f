package config

import (
	"fmt"
	"os"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// ===========================
// 會員積分設定來源
// ===========================

// DefaultProvider 內建預設等級表
type DefaultProvider struct{}

// LoadLoyaltyConfig 實現 loyalty.ConfigProvider
func (DefaultProvider) LoadLoyaltyConfig() (loyalty.LoyaltyConfig, error) {
	return loyalty.DefaultConfig(), nil
}

// FileProvider 每次調用時讀取設定檔，後台修改後下一次購物車計算即生效
type FileProvider struct {
	path string
}

// NewFileProvider 建構函數
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: path}
}

// Path 設定檔路徑
func (p *FileProvider) Path() string {
	return p.path
}

// LoadLoyaltyConfig 實現 loyalty.ConfigProvider
//
// 檔案不存在或格式錯誤時返回錯誤，由調用方回退到預設等級表。
func (p *FileProvider) LoadLoyaltyConfig() (loyalty.LoyaltyConfig, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return loyalty.LoyaltyConfig{}, fmt.Errorf("reading loyalty config %s: %w", p.path, err)
	}
	return ParseLoyaltyConfig(data)
}

// ProviderSource 解析出的設定來源種類
type ProviderSource string

const (
	SourceCompanion ProviderSource = "companion"
	SourceFile      ProviderSource = "file"
	SourceDefault   ProviderSource = "default"
)

// ResolveProvider 啟動時決定一次設定來源，之後不再重新探測
//
// 優先順序：
// 1. 伴隨模組的覆寫設定檔（路徑非空且檔案存在）
// 2. 後台設定檔（路徑非空）
// 3. 內建預設
func ResolveProvider(files LoyaltyFiles) (loyalty.ConfigProvider, ProviderSource) {
	if files.CompanionConfigPath != "" {
		if _, err := os.Stat(files.CompanionConfigPath); err == nil {
			return NewFileProvider(files.CompanionConfigPath), SourceCompanion
		}
	}
	if files.ConfigPath != "" {
		return NewFileProvider(files.ConfigPath), SourceFile
	}
	return DefaultProvider{}, SourceDefault
}
