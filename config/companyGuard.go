package config

import (
	"context"
	"strings"

	"github.com/mmdatafocus/ledger_backend/appctx"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompanyGuardPlugin scopes ORM queries to the request's company when the model has a company column.
//
// NOTE:
// - Raw SQL is not touched. Report queries add the company condition themselves.
// - Internal tools bypass the guard with appctx.ContextKeySkipCompanyScope.
type CompanyGuardPlugin struct{}

func NewCompanyGuardPlugin() *CompanyGuardPlugin { return &CompanyGuardPlugin{} }

func (p *CompanyGuardPlugin) Name() string { return "company_guard" }

func (p *CompanyGuardPlugin) Initialize(db *gorm.DB) error {
	if err := db.Callback().Query().Before("gorm:query").Register("company_guard:query", companyGuardCallback); err != nil {
		return err
	}
	if err := db.Callback().Row().Before("gorm:row").Register("company_guard:row", companyGuardCallback); err != nil {
		return err
	}
	return nil
}

func companyGuardCallback(db *gorm.DB) {
	if db == nil || db.Statement == nil || db.Statement.Schema == nil {
		return
	}
	ctx := db.Statement.Context
	if ctx == nil || skipCompanyScope(ctx) {
		return
	}
	company, _ := appctx.GetString(ctx, appctx.ContextKeyCompany)
	if company == "" {
		return
	}
	if _, ok := db.Statement.Schema.FieldsByDBName["company"]; !ok {
		return
	}
	if whereHasCompany(db.Statement.Clauses["WHERE"]) {
		return
	}
	db.Statement.AddClause(clause.Where{
		Exprs: []clause.Expression{
			clause.Eq{
				Column: clause.Column{Table: db.Statement.Table, Name: "company"},
				Value:  company,
			},
		},
	})
}

func skipCompanyScope(ctx context.Context) bool {
	v, ok := appctx.GetBool(ctx, appctx.ContextKeySkipCompanyScope)
	return ok && v
}

func whereHasCompany(c clause.Clause) bool {
	w, ok := c.Expression.(clause.Where)
	if !ok {
		return false
	}
	for _, e := range w.Exprs {
		if exprHasCompany(e) {
			return true
		}
	}
	return false
}

func exprHasCompany(e clause.Expression) bool {
	switch v := e.(type) {
	case clause.Eq:
		return isCompanyColumn(v.Column)
	case clause.IN:
		return isCompanyColumn(v.Column)
	case clause.AndConditions:
		for _, x := range v.Exprs {
			if exprHasCompany(x) {
				return true
			}
		}
	case clause.Expr:
		return strings.Contains(strings.ToLower(v.SQL), "company")
	}
	return false
}

func isCompanyColumn(col any) bool {
	switch c := col.(type) {
	case string:
		return strings.EqualFold(c, "company")
	case clause.Column:
		return strings.EqualFold(c.Name, "company")
	}
	return false
}
