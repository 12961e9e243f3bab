// Package tenantctx 租户上下文传递
package tenantctx

import "context"

type tenantKey struct{}

// DefaultTenant 未指定租户时使用的缺省值
const DefaultTenant = "default"

// WithTenant 将租户标识写入 Context
func WithTenant(ctx context.Context, tenantID string) context.Context {
	if tenantID == "" {
		tenantID = DefaultTenant
	}
	return context.WithValue(ctx, tenantKey{}, tenantID)
}

// Tenant 从 Context 中读取租户标识，缺省返回 DefaultTenant
func Tenant(ctx context.Context) string {
	if v, ok := ctx.Value(tenantKey{}).(string); ok && v != "" {
		return v
	}
	return DefaultTenant
}
