package utils

import (
	"context"

	"github.com/mmdatafocus/ledger_backend/appctx"
)

// Alias the shared context key type so existing code keeps working.
type contextKey = appctx.ContextKey

var (
	ContextKeyCompany          = appctx.ContextKeyCompany
	ContextKeyUsername         = appctx.ContextKeyUsername
	ContextKeyCorrelationId    = appctx.ContextKeyCorrelationId
	ContextKeySkipCompanyScope = appctx.ContextKeySkipCompanyScope
)

func GetCompanyFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCompany)
}

func GetUsernameFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyUsername)
}

func GetCorrelationIdFromContext(ctx context.Context) (string, bool) {
	return appctx.GetString(ctx, ContextKeyCorrelationId)
}

func SetCompanyInContext(ctx context.Context, company string) context.Context {
	return appctx.Set(ctx, ContextKeyCompany, company)
}

func SetUsernameInContext(ctx context.Context, username string) context.Context {
	return appctx.Set(ctx, ContextKeyUsername, username)
}

func SetCorrelationIdInContext(ctx context.Context, correlationId string) context.Context {
	return appctx.Set(ctx, ContextKeyCorrelationId, correlationId)
}

func SkipCompanyScope(ctx context.Context) context.Context {
	return appctx.Set(ctx, ContextKeySkipCompanyScope, true)
}

func IsCompanyScopeSkipped(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, ContextKeySkipCompanyScope)
	return ok && v
}
