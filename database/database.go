package database

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"gorm.io/gorm"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// ValueTaken reports whether another row of table already holds value in column.
// excludeID skips the row being updated; pass 0 on create.
func ValueTaken(ctx context.Context, db *gorm.DB, table, column string, value interface{}, excludeID uint) (bool, error) {
	queryBuilder := psql.Select("COUNT(*)").
		From(table).
		Where(sq.Eq{column: value})
	if excludeID != 0 {
		queryBuilder = queryBuilder.Where(sq.NotEq{"id": excludeID})
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build SQL query for ValueTaken(%s.%s): %w", table, column, err)
	}

	var count int64
	if err := db.WithContext(ctx).Raw(sqlStr, args...).Scan(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check uniqueness of %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

// CountRows returns the number of rows in table.
func CountRows(ctx context.Context, db *gorm.DB, table string) (int64, error) {
	sqlStr, args, err := psql.Select("COUNT(*)").From(table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("failed to build SQL query for CountRows(%s): %w", table, err)
	}
	var count int64
	if err := db.WithContext(ctx).Raw(sqlStr, args...).Scan(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows of %s: %w", table, err)
	}
	return count, nil
}
