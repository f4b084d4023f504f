package repository

import (
	"strconv"

	"cdr-backend-V1.0/internal/db"
	"cdr-backend-V1.0/internal/db/query"
)

// UserStats is one row of the admin user listing: how many tests the user
// has started and their mean score (unfinished tests count as zero, like
// the dashboard always has).
type UserStats struct {
	ID         uint    `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	TotalTests int64   `json:"totalTests"`
	AvgScore   float64 `json:"avgScore"`
}

type AdminRepository interface {
	ListUserStats(search string, page, pageSize int) ([]UserStats, error)
}

type adminRepository struct {
	executor *db.QueryExecutor
}

func NewAdminRepository() AdminRepository {
	return &adminRepository{executor: db.NewQueryExecutor(db.GetDB())}
}

func (r *adminRepository) ListUserStats(search string, page, pageSize int) ([]UserStats, error) {
	qb := query.NewQueryBuilder().
		Select(
			"users.id",
			"users.name",
			"users.email",
			"COUNT(tests.id) AS total_tests",
			"COALESCE(AVG(COALESCE(tests.score, 0)), 0) AS avg_score",
		).
		From("users").
		LeftJoin("tests ON tests.user_id = users.id").
		GroupBy("users.id", "users.name", "users.email").
		OrderBy("users.id").
		Paginate(page, pageSize)

	if search != "" {
		cond, args := query.NewFilterPredicate().
			Open().
			Like("users.name", search).
			Or().
			Like("users.email", search).
			Close().
			Build()
		qb.Where(cond, args...)
	}

	sql, args := qb.Build()
	rows, err := r.executor.Select(sql, args...)
	if err != nil {
		return nil, err
	}

	stats := make([]UserStats, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, UserStats{
			ID:         uint(asInt64(row["id"])),
			Name:       asString(row["name"]),
			Email:      asString(row["email"]),
			TotalTests: asInt64(row["total_tests"]),
			AvgScore:   asFloat64(row["avg_score"]),
		})
	}
	return stats, nil
}

// Raw rows come back with driver-dependent value types.

func asInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int32:
		return int64(n)
	case float64:
		return int64(n)
	case []byte:
		i, _ := strconv.ParseInt(string(n), 10, 64)
		return i
	case string:
		i, _ := strconv.ParseInt(n, 10, 64)
		return i
	default:
		return 0
	}
}

func asFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int64:
		return float64(n)
	case []byte:
		f, _ := strconv.ParseFloat(string(n), 64)
		return f
	case string:
		f, _ := strconv.ParseFloat(n, 64)
		return f
	default:
		return 0
	}
}

func asString(v interface{}) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	default:
		return ""
	}
}
