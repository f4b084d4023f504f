package db

import (
	"gorm.io/gorm"
)

// QueryExecutor runs the hand-built read queries (admin aggregates) that
// do not map cleanly onto the gorm models.
type QueryExecutor struct {
	DB *gorm.DB
}

// NewQueryExecutor creates a new instance of QueryExecutor.
func NewQueryExecutor(db *gorm.DB) *QueryExecutor {
	return &QueryExecutor{DB: db}
}

// Select executes a raw select query and returns the rows as generic maps.
func (qe *QueryExecutor) Select(query string, args ...interface{}) ([]map[string]interface{}, error) {
	rows, err := qe.DB.Raw(query, args...).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []map[string]interface{}{}
	cols, _ := rows.Columns()
	for rows.Next() {
		rowData := make([]interface{}, len(cols))
		scanArgs := make([]interface{}, len(cols))
		for i := range rowData {
			scanArgs[i] = &rowData[i]
		}
		if err := rows.Scan(scanArgs...); err != nil {
			return nil, err
		}
		record := make(map[string]interface{}, len(cols))
		for i, col := range cols {
			record[col] = rowData[i]
		}
		results = append(results, record)
	}
	return results, rows.Err()
}

// Count executes a raw query expected to yield a single count column.
func (qe *QueryExecutor) Count(query string, args ...interface{}) (int64, error) {
	var count int64
	err := qe.DB.Raw(query, args...).Scan(&count).Error
	return count, err
}
