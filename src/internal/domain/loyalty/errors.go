package loyalty

import "fmt"

// ===========================
// 錯誤代碼定義
// ===========================

// ErrorCode 錯誤代碼類型
type ErrorCode string

const (
	// 核心內部可恢復的錯誤（永遠不會以用戶可見的失敗呈現）
	ErrCodeConfigurationInvalid ErrorCode = "CONFIG_INVALID"
	ErrCodeArithmeticGuard      ErrorCode = "ARITHMETIC_GUARD"
	ErrCodeAlreadyDeducted      ErrorCode = "ALREADY_DEDUCTED"
	ErrCodeAlreadyAwarded       ErrorCode = "ALREADY_AWARDED"
	ErrCodeScopeResolution      ErrorCode = "SCOPE_RESOLUTION_FAILED"

	// 輸入相關
	ErrCodeNegativePointsAmount ErrorCode = "POINTS_NEGATIVE"
	ErrCodeInvalidUserID        ErrorCode = "USER_ID_INVALID"
	ErrCodeInvalidOrderID       ErrorCode = "ORDER_ID_INVALID"
	ErrCodeInvalidLedgerEntryID ErrorCode = "LEDGER_ENTRY_ID_INVALID"

	// 倉儲相關
	ErrCodeAccountNotFound          ErrorCode = "ACCOUNT_NOT_FOUND"
	ErrCodeAccountAlreadyExists     ErrorCode = "ACCOUNT_ALREADY_EXISTS"
	ErrCodeOrderRecordNotFound      ErrorCode = "ORDER_RECORD_NOT_FOUND"
	ErrCodeOrderRecordAlreadyExists ErrorCode = "ORDER_RECORD_ALREADY_EXISTS"
	ErrCodeRepositoryError          ErrorCode = "REPOSITORY_ERROR"
)

// ===========================
// DomainError 結構
// ===========================

// DomainError 領域錯誤
// 包含結構化錯誤代碼與上下文信息，創建後不可修改
type DomainError struct {
	Code    ErrorCode
	Message string
	Context map[string]interface{}
}

// Error 實現 error 接口
func (e *DomainError) Error() string {
	if len(e.Context) == 0 {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return fmt.Sprintf("[%s] %s (context: %+v)", e.Code, e.Message, e.Context)
}

// WithContext 添加上下文信息（返回新的錯誤實例）
func (e *DomainError) WithContext(keyValues ...interface{}) error {
	if len(keyValues)%2 != 0 {
		panic("WithContext requires even number of arguments (key-value pairs)")
	}

	ctx := make(map[string]interface{}, len(e.Context)+len(keyValues)/2)
	for k, v := range e.Context {
		ctx[k] = v
	}
	for i := 0; i < len(keyValues); i += 2 {
		key, ok := keyValues[i].(string)
		if !ok {
			panic(fmt.Sprintf("context key must be string, got %T", keyValues[i]))
		}
		ctx[key] = keyValues[i+1]
	}

	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Context: ctx,
	}
}

// Is 以錯誤代碼判斷是否為同類錯誤（供 errors.Is 使用）
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ===========================
// 預定義錯誤
// ===========================

// 可恢復錯誤
var (
	// ErrConfigurationInvalid 等級表或兌換規則格式錯誤，調用方回退到預設等級表
	ErrConfigurationInvalid = &DomainError{
		Code:    ErrCodeConfigurationInvalid,
		Message: "會員等級設定無效",
	}

	// ErrArithmeticGuard 除以零或負數餘額等算術保護
	ErrArithmeticGuard = &DomainError{
		Code:    ErrCodeArithmeticGuard,
		Message: "算術保護觸發",
	}

	// ErrAlreadyDeducted 訂單已扣減過兌換積分
	ErrAlreadyDeducted = &DomainError{
		Code:    ErrCodeAlreadyDeducted,
		Message: "訂單兌換積分已扣減",
	}

	// ErrAlreadyAwarded 訂單已發放過消費積分
	ErrAlreadyAwarded = &DomainError{
		Code:    ErrCodeAlreadyAwarded,
		Message: "訂單消費積分已發放",
	}

	// ErrScopeResolution 宿主無法解析商品分類
	ErrScopeResolution = &DomainError{
		Code:    ErrCodeScopeResolution,
		Message: "無法解析商品分類",
	}
)

// 輸入相關錯誤
var (
	ErrNegativePointsAmount = &DomainError{
		Code:    ErrCodeNegativePointsAmount,
		Message: "積分數量不能為負數",
	}

	ErrInvalidUserID = &DomainError{
		Code:    ErrCodeInvalidUserID,
		Message: "無效的用戶 ID",
	}

	ErrInvalidOrderID = &DomainError{
		Code:    ErrCodeInvalidOrderID,
		Message: "無效的訂單 ID",
	}

	ErrInvalidLedgerEntryID = &DomainError{
		Code:    ErrCodeInvalidLedgerEntryID,
		Message: "無效的積分流水 ID",
	}
)

// 倉儲相關錯誤
var (
	ErrAccountNotFound = &DomainError{
		Code:    ErrCodeAccountNotFound,
		Message: "會員積分帳戶不存在",
	}

	ErrAccountAlreadyExists = &DomainError{
		Code:    ErrCodeAccountAlreadyExists,
		Message: "會員積分帳戶已存在",
	}

	ErrOrderRecordNotFound = &DomainError{
		Code:    ErrCodeOrderRecordNotFound,
		Message: "訂單兌換記錄不存在",
	}

	ErrOrderRecordAlreadyExists = &DomainError{
		Code:    ErrCodeOrderRecordAlreadyExists,
		Message: "訂單兌換記錄已存在",
	}

	ErrRepositoryError = &DomainError{
		Code:    ErrCodeRepositoryError,
		Message: "倉儲操作失敗",
	}
)
