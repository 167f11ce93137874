// Package tenant scopes GORM queries to the organization carried by the
// request context and carries the active transaction through the context.
//
//	db := tenant.NewDB(gormDB)
//	db.Scoped(ctx).Find(&rows)   // WHERE table.tenant_id = <ctx tenant>
//	db.WithinTx(ctx, func(ctx context.Context) error { ... })
package tenant

import (
	"context"
	"errors"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrTenantIDRequired is returned when tenant_id is required but not found
var ErrTenantIDRequired = errors.New("tenant_id is required but not found in context")

// ErrInvalidTenantID is returned when tenant_id format is invalid
var ErrInvalidTenantID = errors.New("invalid tenant_id format")

type txKey struct{}

// Scope filters on the current table's tenant_id column
func Scope(tenantID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(clause.Eq{
			Column: clause.Column{Table: clause.CurrentTable, Name: "tenant_id"},
			Value:  tenantID,
		})
	}
}

// FromContext returns the organization id stored on ctx
func FromContext(ctx context.Context) (uuid.UUID, error) {
	raw := logger.GetTenantID(ctx)
	if raw == "" {
		return uuid.Nil, ErrTenantIDRequired
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidTenantID
	}
	return id, nil
}

// DB wraps GORM with tenant scoping and context-carried transactions
type DB struct {
	db *gorm.DB
}

// NewDB creates a DB
func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Conn returns the transaction on ctx, or the pool, bound to ctx. It does
// not filter by tenant; use it for global tables such as users.
func (t *DB) Conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return t.db.WithContext(ctx)
}

// Scoped is Conn filtered to the tenant on ctx. A missing or malformed
// tenant id turns every statement into an error.
func (t *DB) Scoped(ctx context.Context) *gorm.DB {
	conn := t.Conn(ctx)
	id, err := FromContext(ctx)
	if err != nil {
		_ = conn.AddError(err)
		return conn
	}
	return conn.Scopes(Scope(id))
}

// TenantID returns the tenant on ctx for stamping new rows
func (t *DB) TenantID(ctx context.Context) (uuid.UUID, error) {
	return FromContext(ctx)
}

// WithinTx runs fn in a transaction. Nested calls join the outer one.
func (t *DB) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Unscoped returns the pool without tenant filtering or transaction.
// Only background jobs that sweep every organization use it.
func (t *DB) Unscoped(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx)
}
