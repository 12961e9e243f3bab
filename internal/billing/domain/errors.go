package domain

import "errors"

// 领域错误哨兵。应用层包装上下文后由接口层通过 errors.Is 映射为 HTTP 状态码。
var (
	// ErrNotFound 合同/发票/报价单不存在
	ErrNotFound = errors.New("not found")
	// ErrNoTarget 支付既未指定合同也未指定发票
	ErrNoTarget = errors.New("payment requires a contract id or an invoice id")
	// ErrInvoiceClosed 发票已支付或已作废，不可再收款
	ErrInvoiceClosed = errors.New("invoice is already closed")
	// ErrInsufficientBalance 支付金额超过余额（及明细待收合计）
	ErrInsufficientBalance = errors.New("amount exceeds outstanding balance")
	// ErrQuoteAlreadyConverted 报价单已生成过合同
	ErrQuoteAlreadyConverted = errors.New("quote already converted to a contract")
	// ErrInvalidTransition 非法状态迁移
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrInvariantViolation 账务不变量被破坏，属于缺陷，必须向上抛出而不是吞掉
	ErrInvariantViolation = errors.New("billing invariant violation")
)
