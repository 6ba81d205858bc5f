package shared

// TransactionContext 事務上下文介面（標記介面）
//
// 行為約定：
// - ctx != nil: 在調用者的事務中執行
// - ctx == nil: auto-commit 模式（僅適用於單一讀操作）
//
// 寫操作（初始化帳戶、發放積分、扣減積分、寫入訂單兌換記錄）必須在事務中執行。
// 扣減的「檢查旗標 + 扣減餘額 + 設置旗標」是同一個事務內的原子單元：
//
//   txManager.InTransaction(func(ctx TransactionContext) error {
//       claimed, _ := orderRepo.ClaimDeduction(ctx, orderID)
//       if !claimed {
//           return nil // 已扣減過
//       }
//       account, _ := accountRepo.FindByUserID(ctx, userID)
//       account.DeductRedeemedPoints(points, orderID)
//       return accountRepo.Update(ctx, account)
//   })
//
// Infrastructure Layer 負責具體實作（GORM），Domain 與 Application 只依賴此介面。
type TransactionContext interface {
}

// TransactionManager 事務管理器介面
type TransactionManager interface {
	InTransaction(fn func(ctx TransactionContext) error) error
}
