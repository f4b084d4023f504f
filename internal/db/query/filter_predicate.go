package query

// FilterPredicate builds a parameterized condition fragment for
// QueryBuilder.Where. Values are always bound, never inlined.
type FilterPredicate struct {
	predicate string
	args      []interface{}
}

func NewFilterPredicate() *FilterPredicate {
	return &FilterPredicate{}
}

func (fp *FilterPredicate) Open() *FilterPredicate {
	fp.predicate += "("
	return fp
}

func (fp *FilterPredicate) Close() *FilterPredicate {
	fp.predicate += ")"
	return fp
}

func (fp *FilterPredicate) And() *FilterPredicate {
	fp.predicate += " AND "
	return fp
}

func (fp *FilterPredicate) Or() *FilterPredicate {
	fp.predicate += " OR "
	return fp
}

func (fp *FilterPredicate) Equal(column string, value interface{}) *FilterPredicate {
	fp.predicate += column + " = ?"
	fp.args = append(fp.args, value)
	return fp
}

func (fp *FilterPredicate) NotEqual(column string, value interface{}) *FilterPredicate {
	fp.predicate += column + " <> ?"
	fp.args = append(fp.args, value)
	return fp
}

// Like matches the pattern anywhere in the column, case-insensitively.
func (fp *FilterPredicate) Like(column, pattern string) *FilterPredicate {
	fp.predicate += column + " ILIKE ?"
	fp.args = append(fp.args, "%"+pattern+"%")
	return fp
}

func (fp *FilterPredicate) IsNull(column string) *FilterPredicate {
	fp.predicate += column + " IS NULL"
	return fp
}

func (fp *FilterPredicate) Build() (string, []interface{}) {
	return fp.predicate, fp.args
}
