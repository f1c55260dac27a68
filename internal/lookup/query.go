// Package lookup resolves DNI and RUC queries against external registry
// providers, falling back to the next provider when one has no data.
package lookup

import (
	"fmt"
	"regexp"
)

// Kind identifies what a query looks up.
type Kind int

const (
	// KindPersonID is a DNI: exactly 8 decimal digits.
	KindPersonID Kind = iota + 1
	// KindEntityID is a RUC: exactly 11 decimal digits.
	KindEntityID
)

var patterns = map[Kind]*regexp.Regexp{
	KindPersonID: regexp.MustCompile(`^\d{8}$`),
	KindEntityID: regexp.MustCompile(`^\d{11}$`),
}

// String returns the command-style name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPersonID:
		return "dni"
	case KindEntityID:
		return "ruc"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Valid reports whether value has the exact digit length required by k.
func (k Kind) Valid(value string) bool {
	re, ok := patterns[k]
	return ok && re.MatchString(value)
}

// FieldName is a provider-independent display field.
type FieldName string

// Canonical fields.
const (
	FieldFullName         FieldName = "full_name"
	FieldGivenNames       FieldName = "given_names"
	FieldPaternalSurname  FieldName = "paternal_surname"
	FieldMaternalSurname  FieldName = "maternal_surname"
	FieldVerificationCode FieldName = "verification_code"

	FieldStatus     FieldName = "status"
	FieldCondition  FieldName = "condition"
	FieldAddress    FieldName = "address"
	FieldStreet     FieldName = "street"
	FieldDistrict   FieldName = "district"
	FieldProvince   FieldName = "province"
	FieldDepartment FieldName = "department"
	FieldUbigeo     FieldName = "ubigeo"
)

var canonicalFields = map[Kind][]FieldName{
	KindPersonID: {
		FieldFullName,
		FieldGivenNames,
		FieldPaternalSurname,
		FieldMaternalSurname,
		FieldVerificationCode,
	},
	KindEntityID: {
		FieldFullName,
		FieldStatus,
		FieldCondition,
		FieldAddress,
		FieldStreet,
		FieldDistrict,
		FieldProvince,
		FieldDepartment,
		FieldUbigeo,
	},
}

// Fields returns the canonical display order for k.
func (k Kind) Fields() []FieldName {
	fields := canonicalFields[k]
	out := make([]FieldName, len(fields))
	copy(out, fields)
	return out
}

// Query is a single lookup request as typed by the user.
type Query struct {
	Kind  Kind
	Value string
}

// Valid reports whether the query value matches its kind's pattern.
func (q Query) Valid() bool {
	return q.Kind.Valid(q.Value)
}

// Field is one canonical field and its display value.
type Field struct {
	Name  FieldName
	Value string
}

// Result is the normalized outcome of a lookup. It is never persisted.
type Result struct {
	Query Query
	Found bool
	// Fields holds every canonical field of the query kind in display order.
	// Fields a provider did not return are present with an empty value.
	Fields []Field
	// Source names the provider that answered. For diagnostics only.
	Source string
	// Fallback is true when a provider other than the first one answered.
	Fallback bool
}

// Value returns the value of the named field, or "" if absent.
func (r Result) Value(name FieldName) string {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value
		}
	}
	return ""
}

// Record is a provider answer keyed by canonical field.
type Record map[FieldName]string

func canonicalize(kind Kind, rec Record) []Field {
	names := canonicalFields[kind]
	fields := make([]Field, 0, len(names))
	for _, name := range names {
		fields = append(fields, Field{Name: name, Value: rec[name]})
	}
	return fields
}
