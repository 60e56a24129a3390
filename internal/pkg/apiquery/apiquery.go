// Package apiquery composes filtering, sorting, field projection and
// pagination from raw request query parameters into a single lazy
// store query.
package apiquery

import (
	"strconv"
	"strings"

	"gorm.io/gorm"
)

// Reserved control keys never treated as filter criteria.
var reservedKeys = map[string]bool{
	"page":   true,
	"sort":   true,
	"limit":  true,
	"fields": true,
}

// Comparison operator suffixes and their SQL translation.
var operators = map[string]string{
	"gte": ">=",
	"gt":  ">",
	"lte": "<=",
	"lt":  "<",
}

// columns maps exposed JSON field names to database columns. Only
// values from this table ever reach SQL as identifiers; a filter on a
// key not listed here matches no rows.
var columns = map[string]string{
	"applicationId":         "application_id",
	"applicantName":         "applicant_name",
	"dob":                   "dob",
	"gender":                "gender",
	"nationality":           "nationality",
	"aadharNumber":          "aadhar_number",
	"panNumber":             "pan_number",
	"emailId":               "email_id",
	"phoneNumber":           "phone_number",
	"residentialAddress":    "residential_address",
	"permanentAddress":      "permanent_address",
	"employmentType":        "employment_type",
	"companyName":           "company_name",
	"selfEmploymentType":    "self_employment_type",
	"businessType":          "business_type",
	"income":                "income",
	"bankName":              "bank_name",
	"accountNumber":         "account_number",
	"ifscCode":              "ifsc_code",
	"loanType":              "loan_type",
	"loanAmount":            "loan_amount",
	"loanTenure":            "loan_tenure",
	"loanPurpose":           "loan_purpose",
	"collateralType":        "collateral_type",
	"collateralValue":       "collateral_value",
	"collateralDescription": "collateral_description",
	"status":                "status",
	"createdAt":             "created_at",
	"updatedAt":             "updated_at",
}

// Pagination defaults
const (
	DefaultPage  = 1
	DefaultLimit = 100
)

// Filter is a single criterion: exact match when Op is "=", otherwise
// one of the comparison operators. Column is the resolved database
// column, empty when Field is not an exposed field name.
type Filter struct {
	Field  string
	Column string
	Op     string
	Value  string
}

// SortField is one element of the order clause.
type SortField struct {
	Field string
	Desc  bool
}

// Options is the parsed, not-yet-executed query description. The
// caller applies it to a *gorm.DB and triggers execution.
type Options struct {
	Filters []Filter
	Sort    []SortField
	Fields  []string
	Page    int
	Limit   int
}

// Offset returns the row offset implied by page and limit.
func (o *Options) Offset() int {
	return (o.Page - 1) * o.Limit
}

// Parse builds Options from the raw query-parameter map in four
// stages: filter, sort, field selection, pagination. Each stage is
// independently optional.
func Parse(params map[string]string) *Options {
	opts := &Options{
		Page:  DefaultPage,
		Limit: DefaultLimit,
	}

	// 1. Filter: everything except reserved control keys. A trailing
	// [gte|gt|lte|lt] selects a comparison; otherwise exact match.
	for key, value := range params {
		if reservedKeys[key] {
			continue
		}
		field, op := splitOperator(key)
		opts.Filters = append(opts.Filters, Filter{
			Field:  field,
			Column: columns[field],
			Op:     op,
			Value:  value,
		})
	}

	// 2. Sort: comma-separated, leading '-' means descending. Default
	// is newest first.
	if raw := params["sort"]; raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if strings.HasPrefix(part, "-") {
				opts.Sort = append(opts.Sort, SortField{Field: part[1:], Desc: true})
			} else {
				opts.Sort = append(opts.Sort, SortField{Field: part})
			}
		}
	}
	if len(opts.Sort) == 0 {
		opts.Sort = []SortField{{Field: "createdAt", Desc: true}}
	}

	// 3. Field selection: comma-separated allow-list; default all.
	if raw := params["fields"]; raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				opts.Fields = append(opts.Fields, part)
			}
		}
	}

	// 4. Pagination.
	if page, err := strconv.Atoi(params["page"]); err == nil && page > 0 {
		opts.Page = page
	}
	if limit, err := strconv.Atoi(params["limit"]); err == nil && limit > 0 {
		opts.Limit = limit
	}

	return opts
}

// splitOperator separates a trailing bracketed operator suffix from a
// filter key, e.g. "income[gte]" -> ("income", ">=").
func splitOperator(key string) (string, string) {
	if open := strings.IndexByte(key, '['); open > 0 && strings.HasSuffix(key, "]") {
		if sql, ok := operators[key[open+1:len(key)-1]]; ok {
			return key[:open], sql
		}
	}
	return key, "="
}

// Apply translates the options onto a gorm query. The result is still
// lazy; nothing executes until the caller issues Find.
func (o *Options) Apply(db *gorm.DB) *gorm.DB {
	for _, f := range o.Filters {
		// A filter on an unknown field matches no rows rather than
		// silently widening the result set.
		if f.Column == "" {
			db = db.Where("1 = 0")
			continue
		}
		db = db.Where(f.Column+" "+f.Op+" ?", f.Value)
	}

	for _, s := range o.Sort {
		col, ok := columns[s.Field]
		if !ok {
			continue
		}
		if s.Desc {
			db = db.Order(col + " DESC")
		} else {
			db = db.Order(col + " ASC")
		}
	}

	if len(o.Fields) > 0 {
		selected := []string{"application_id"}
		for _, f := range o.Fields {
			if col, ok := columns[f]; ok && col != "application_id" {
				selected = append(selected, col)
			}
		}
		db = db.Select(selected)
	}

	return db.Offset(o.Offset()).Limit(o.Limit)
}
