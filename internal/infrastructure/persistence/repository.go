package persistence

import (
	"errors"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// translateError maps gorm's not-found error to the domain sentinel
func translateError(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.ErrNotFound
	}
	return err
}

// updateVersioned writes every column of model when the stored version still
// equals expected. A miss means someone else saved first.
func updateVersioned(q *gorm.DB, model any, expected int) error {
	result := q.Model(model).
		Select("*").
		Omit("created_at", clause.Associations).
		Where("version = ?", expected).
		Updates(model)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// paginate applies offset and limit after clamping paging values
func paginate(q *gorm.DB, page, pageSize int) *gorm.DB {
	f := shared.Filter{Page: page, PageSize: pageSize}.Normalize()
	return q.Offset(f.Offset()).Limit(f.PageSize)
}

// orderBy builds a whitelisted ORDER BY clause
func orderBy(sortBy, sortOrder string, allowed sortColumns, defaultField string) clause.OrderByColumn {
	return clause.OrderByColumn{
		Column: clause.Column{Name: allowed.column(sortBy, defaultField)},
		Desc:   descending(sortOrder),
	}
}
