package query

import (
	"fmt"
	"strings"
)

// QueryBuilder assembles the parameterized SELECT statements used by the
// admin read side (per-user aggregates, searches). Writes go through the
// gorm models, never through here.
type QueryBuilder struct {
	table      string
	columns    []string
	joins      []string
	conditions []string
	groupBy    []string
	orderBy    []string
	limit      int
	offset     int
	values     []interface{}
}

func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{limit: -1, offset: -1}
}

func (qb *QueryBuilder) Select(columns ...string) *QueryBuilder {
	qb.columns = append(qb.columns, columns...)
	return qb
}

func (qb *QueryBuilder) From(table string) *QueryBuilder {
	qb.table = table
	return qb
}

func (qb *QueryBuilder) LeftJoin(join string) *QueryBuilder {
	qb.joins = append(qb.joins, "LEFT JOIN "+join)
	return qb
}

func (qb *QueryBuilder) Where(condition string, args ...interface{}) *QueryBuilder {
	if condition == "" {
		return qb
	}
	qb.conditions = append(qb.conditions, condition)
	qb.values = append(qb.values, args...)
	return qb
}

func (qb *QueryBuilder) GroupBy(columns ...string) *QueryBuilder {
	qb.groupBy = append(qb.groupBy, columns...)
	return qb
}

func (qb *QueryBuilder) OrderBy(clauses ...string) *QueryBuilder {
	qb.orderBy = append(qb.orderBy, clauses...)
	return qb
}

func (qb *QueryBuilder) Paginate(page, pageSize int) *QueryBuilder {
	if pageSize <= 0 {
		return qb
	}
	if page < 1 {
		page = 1
	}
	qb.limit = pageSize
	qb.offset = (page - 1) * pageSize
	return qb
}

func (qb *QueryBuilder) Build() (string, []interface{}) {
	var query strings.Builder

	if len(qb.columns) > 0 {
		query.WriteString(fmt.Sprintf("SELECT %s FROM %s", strings.Join(qb.columns, ", "), qb.table))
	} else {
		query.WriteString(fmt.Sprintf("SELECT * FROM %s", qb.table))
	}
	for _, join := range qb.joins {
		query.WriteString(" " + join)
	}
	if len(qb.conditions) > 0 {
		query.WriteString(" WHERE " + strings.Join(qb.conditions, " AND "))
	}
	if len(qb.groupBy) > 0 {
		query.WriteString(" GROUP BY " + strings.Join(qb.groupBy, ", "))
	}
	if len(qb.orderBy) > 0 {
		query.WriteString(" ORDER BY " + strings.Join(qb.orderBy, ", "))
	}
	if qb.limit >= 0 {
		query.WriteString(fmt.Sprintf(" LIMIT %d", qb.limit))
	}
	if qb.offset > 0 {
		query.WriteString(fmt.Sprintf(" OFFSET %d", qb.offset))
	}

	return query.String(), qb.values
}
