package loyalty

import (
	"time"

	"github.com/jackyeh168/shop_loyalty/src/internal/domain/shared"
)

// LedgerReason 積分流水原因
type LedgerReason string

const (
	LedgerReasonAward           LedgerReason = "order_award"
	LedgerReasonRedemption      LedgerReason = "order_redemption"
	LedgerReasonLegacyMigration LedgerReason = "legacy_migration"
)

// LedgerEntry 積分流水（只追加，不修改）
type LedgerEntry struct {
	ID           LedgerEntryID
	UserID       UserID
	OrderID      OrderID // 0 代表與訂單無關
	Delta        int
	BalanceAfter int
	Reason       LedgerReason
	CreatedAt    time.Time
}

// LedgerEntriesFromEvents 由帳戶事件推導積分流水
// 不改變餘額的事件（初始化、等級變更）不產生流水
func LedgerEntriesFromEvents(events []shared.DomainEvent) []LedgerEntry {
	entries := make([]LedgerEntry, 0, len(events))

	for _, event := range events {
		switch e := event.(type) {
		case *PointsAwardedEvent:
			entries = append(entries, newLedgerEntry(e.UserID(), e.OrderID(), e.Amount().Value(), e.BalanceAfter(), LedgerReasonAward, e.OccurredAt()))
		case *PointsDeductedEvent:
			if e.Deducted().IsZero() {
				continue
			}
			entries = append(entries, newLedgerEntry(e.UserID(), e.OrderID(), -e.Deducted().Value(), e.BalanceAfter(), LedgerReasonRedemption, e.OccurredAt()))
		case *LegacyBalanceMigratedEvent:
			entries = append(entries, newLedgerEntry(e.UserID(), 0, e.Adopted().Value(), e.BalanceAfter(), LedgerReasonLegacyMigration, e.OccurredAt()))
		}
	}

	return entries
}

func newLedgerEntry(
	userID UserID,
	orderID OrderID,
	delta int,
	balanceAfter PointsAmount,
	reason LedgerReason,
	at time.Time,
) LedgerEntry {
	return LedgerEntry{
		ID:           NewLedgerEntryID(),
		UserID:       userID,
		OrderID:      orderID,
		Delta:        delta,
		BalanceAfter: balanceAfter.Value(),
		Reason:       reason,
		CreatedAt:    at,
	}
}
