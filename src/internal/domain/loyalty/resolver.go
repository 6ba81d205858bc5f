package loyalty

// ===========================
// TierResolver 領域服務
// ===========================

// TierResolver 積分 → 會員等級（純函數，無狀態）
type TierResolver struct{}

// NewTierResolver 建構函數
func NewTierResolver() *TierResolver {
	return &TierResolver{}
}

// Resolve 根據積分返回所屬等級
//
// 演算法：
// - 依 MinPoints 升序掃描，返回第一個 points >= MinPoints 且
//   (MaxPoints 無上限或 points <= MaxPoints) 的等級
// - 沒有任何等級命中（設定錯誤）時返回最低等級，永不失敗
//
// 對合法（切分 [0, ∞)）的等級表，任何非負整數恰好命中一個等級。
func (r *TierResolver) Resolve(points int, config LoyaltyConfig) Tier {
	tiers := sortedTiers(config.Tiers)
	if len(tiers) == 0 {
		return DefaultConfig().Tiers[0]
	}

	for _, tier := range tiers {
		if tier.Contains(points) {
			return tier
		}
	}

	return tiers[0]
}

// NextTier 返回比當前積分更高的下一個等級
// 已在最高等級時第二個返回值為 false
func (r *TierResolver) NextTier(points int, config LoyaltyConfig) (Tier, bool) {
	for _, tier := range sortedTiers(config.Tiers) {
		if tier.MinPoints > points {
			return tier, true
		}
	}
	return Tier{}, false
}
