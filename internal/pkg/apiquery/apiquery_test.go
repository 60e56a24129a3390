package apiquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/utils/tests"
)

// dryRunDB builds SQL without a live connection.
func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(tests.DummyDialector{}, &gorm.Config{DryRun: true})
	require.NoError(t, err)
	return db
}

func TestParse_Defaults(t *testing.T) {
	opts := Parse(map[string]string{})

	assert.Equal(t, DefaultPage, opts.Page)
	assert.Equal(t, DefaultLimit, opts.Limit)
	assert.Empty(t, opts.Filters)
	assert.Empty(t, opts.Fields)
	require.Len(t, opts.Sort, 1)
	assert.Equal(t, SortField{Field: "createdAt", Desc: true}, opts.Sort[0])
	assert.Equal(t, 0, opts.Offset())
}

func TestParse_ReservedKeysAreNotFilters(t *testing.T) {
	opts := Parse(map[string]string{
		"page":   "2",
		"sort":   "income",
		"limit":  "10",
		"fields": "status",
	})

	assert.Empty(t, opts.Filters)
}

func TestParse_ExactMatchFilter(t *testing.T) {
	opts := Parse(map[string]string{"status": "Pending"})

	require.Len(t, opts.Filters, 1)
	assert.Equal(t, Filter{Field: "status", Column: "status", Op: "=", Value: "Pending"}, opts.Filters[0])
}

func TestParse_ResolvesColumns(t *testing.T) {
	opts := Parse(map[string]string{
		"applicantName":         "Priya",
		"collateralDescription": "Two-bedroom flat",
		"loanAmount[gte]":       "100000",
	})

	byField := map[string]Filter{}
	for _, f := range opts.Filters {
		byField[f.Field] = f
	}

	require.Len(t, byField, 3)
	assert.Equal(t, "applicant_name", byField["applicantName"].Column)
	assert.Equal(t, "collateral_description", byField["collateralDescription"].Column)
	assert.Equal(t, "loan_amount", byField["loanAmount"].Column)
}

func TestParse_UnknownFieldHasNoColumn(t *testing.T) {
	opts := Parse(map[string]string{"notAField": "x"})

	require.Len(t, opts.Filters, 1)
	assert.Equal(t, "notAField", opts.Filters[0].Field)
	assert.Empty(t, opts.Filters[0].Column)
}

func TestParse_OperatorSuffixes(t *testing.T) {
	tests := []struct {
		key string
		op  string
	}{
		{"income[gte]", ">="},
		{"income[gt]", ">"},
		{"loanAmount[lte]", "<="},
		{"loanAmount[lt]", "<"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			opts := Parse(map[string]string{tt.key: "50000"})
			require.Len(t, opts.Filters, 1)
			assert.Equal(t, tt.op, opts.Filters[0].Op)
			assert.Equal(t, "50000", opts.Filters[0].Value)
		})
	}
}

func TestParse_UnknownOperatorSuffixIsExactMatch(t *testing.T) {
	opts := Parse(map[string]string{"income[like]": "5"})

	require.Len(t, opts.Filters, 1)
	assert.Equal(t, "=", opts.Filters[0].Op)
	assert.Equal(t, "income[like]", opts.Filters[0].Field)
	assert.Empty(t, opts.Filters[0].Column)
}

func TestParse_Sort(t *testing.T) {
	opts := Parse(map[string]string{"sort": "-income,createdAt"})

	require.Len(t, opts.Sort, 2)
	assert.Equal(t, SortField{Field: "income", Desc: true}, opts.Sort[0])
	assert.Equal(t, SortField{Field: "createdAt", Desc: false}, opts.Sort[1])
}

func TestParse_Fields(t *testing.T) {
	opts := Parse(map[string]string{"fields": "applicantName, income ,status"})

	assert.Equal(t, []string{"applicantName", "income", "status"}, opts.Fields)
}

func TestParse_Pagination(t *testing.T) {
	opts := Parse(map[string]string{"page": "2", "limit": "10"})

	assert.Equal(t, 2, opts.Page)
	assert.Equal(t, 10, opts.Limit)
	assert.Equal(t, 10, opts.Offset())
}

func TestParse_InvalidPaginationFallsBack(t *testing.T) {
	opts := Parse(map[string]string{"page": "zero", "limit": "-5"})

	assert.Equal(t, DefaultPage, opts.Page)
	assert.Equal(t, DefaultLimit, opts.Limit)
}

func TestApply_UnknownFilterMatchesNothing(t *testing.T) {
	opts := Parse(map[string]string{"notAField": "x"})

	var rows []map[string]interface{}
	stmt := opts.Apply(dryRunDB(t).Table("applications")).Find(&rows).Statement

	assert.Contains(t, stmt.SQL.String(), "1 = 0")
}

func TestApply_KnownFilterUsesColumn(t *testing.T) {
	opts := Parse(map[string]string{"status": "Pending"})

	var rows []map[string]interface{}
	stmt := opts.Apply(dryRunDB(t).Table("applications")).Find(&rows).Statement

	assert.Contains(t, stmt.SQL.String(), "status = ?")
	assert.NotContains(t, stmt.SQL.String(), "1 = 0")
}

func TestSplitOperator(t *testing.T) {
	field, op := splitOperator("income[gte]")
	assert.Equal(t, "income", field)
	assert.Equal(t, ">=", op)

	field, op = splitOperator("status")
	assert.Equal(t, "status", field)
	assert.Equal(t, "=", op)

	// Bracket at position 0 is not an operator suffix
	field, op = splitOperator("[gte]")
	assert.Equal(t, "[gte]", field)
	assert.Equal(t, "=", op)
}
