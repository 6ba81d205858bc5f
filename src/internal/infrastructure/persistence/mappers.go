package persistence

import (
	"github.com/jackyeh168/shop_loyalty/src/internal/domain/loyalty"
)

// ===========================
// Domain ↔ GORM Model 轉換函數
// ===========================

// accountToDomain 以 ReconstructMemberAccount 重建聚合（不發布事件）
// 資料庫中的負數餘額在重建時截斷為零
func accountToDomain(model *MemberAccountModel) (*loyalty.MemberAccount, error) {
	return loyalty.ReconstructMemberAccount(
		loyalty.UserID(model.UserID),
		model.Points,
		model.LegacyPoints,
		model.TierLabel,
		model.LegacyMigrated,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func accountToGORM(account *loyalty.MemberAccount) *MemberAccountModel {
	return &MemberAccountModel{
		UserID:         int64(account.UserID()),
		Points:         account.Balance().Value(),
		LegacyPoints:   account.LegacyPoints(),
		LegacyMigrated: account.LegacyMigrated(),
		TierLabel:      account.TierLabel(),
		CreatedAt:      account.CreatedAt(),
		UpdatedAt:      account.UpdatedAt(),
	}
}

func orderRecordToDomain(model *OrderRedemptionRecordModel) (*loyalty.OrderRedemptionRecord, error) {
	return loyalty.ReconstructOrderRedemptionRecord(
		loyalty.OrderID(model.OrderID),
		loyalty.UserID(model.UserID),
		model.RedeemedPoints,
		model.RedeemedAmount,
		model.Deducted,
		model.Awarded,
		model.AwardedPoints,
		model.CreatedAt,
		model.UpdatedAt,
	)
}

func orderRecordToGORM(record *loyalty.OrderRedemptionRecord) *OrderRedemptionRecordModel {
	return &OrderRedemptionRecordModel{
		OrderID:        int64(record.OrderID()),
		UserID:         int64(record.UserID()),
		RedeemedPoints: record.RedeemedPoints().Value(),
		RedeemedAmount: record.RedeemedAmount(),
		Deducted:       record.Deducted(),
		Awarded:        record.Awarded(),
		AwardedPoints:  record.AwardedPoints().Value(),
		CreatedAt:      record.CreatedAt(),
		UpdatedAt:      record.UpdatedAt(),
	}
}

func ledgerEntryToDomain(model *LedgerEntryModel) (loyalty.LedgerEntry, error) {
	id, err := loyalty.LedgerEntryIDFromString(model.EntryID)
	if err != nil {
		return loyalty.LedgerEntry{}, err
	}
	return loyalty.LedgerEntry{
		ID:           id,
		UserID:       loyalty.UserID(model.UserID),
		OrderID:      loyalty.OrderID(model.OrderID),
		Delta:        model.Delta,
		BalanceAfter: model.BalanceAfter,
		Reason:       loyalty.LedgerReason(model.Reason),
		CreatedAt:    model.CreatedAt,
	}, nil
}

func ledgerEntryToGORM(entry loyalty.LedgerEntry) LedgerEntryModel {
	return LedgerEntryModel{
		EntryID:      entry.ID.String(),
		UserID:       int64(entry.UserID),
		OrderID:      int64(entry.OrderID),
		Delta:        entry.Delta,
		BalanceAfter: entry.BalanceAfter,
		Reason:       string(entry.Reason),
		CreatedAt:    entry.CreatedAt,
	}
}
