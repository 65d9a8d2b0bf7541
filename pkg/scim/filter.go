package scim

import (
	"errors"
	"fmt"
	"strings"
)

type FilterOperator string

const (
	FilterOperatorEqual      FilterOperator = "eq"
	FilterOperatorNotEqual   FilterOperator = "ne"
	FilterOperatorContains   FilterOperator = "co"
	FilterOperatorStartsWith FilterOperator = "sw"
	FilterOperatorEndsWith   FilterOperator = "ew"
)

var (
	ErrEmptyFilter       = errors.New("empty filter expression")
	ErrUnsupportedFilter = errors.New("unsupported filter expression")
)

// FilterComparison is a single attribute comparison, e.g. `userName eq "alice"`.
type FilterComparison struct {
	Attribute string
	Operator  FilterOperator
	Value     string
}

func (f FilterComparison) ToString() string {
	return fmt.Sprintf("%s %s \"%s\"", f.Attribute, f.Operator, f.Value)
}

// ParseFilter parses a single-attribute equality filter. Logical groups and
// non-equality operators are not supported; identity providers drive
// provisioning lookups exclusively through userName/displayName equality.
func ParseFilter(expr string) (FilterComparison, error) {
	if strings.TrimSpace(expr) == "" {
		return FilterComparison{}, ErrEmptyFilter
	}

	parts := strings.SplitN(strings.TrimSpace(expr), " ", 3)
	if len(parts) != 3 {
		return FilterComparison{}, fmt.Errorf("%w: %q", ErrUnsupportedFilter, expr)
	}

	if FilterOperator(parts[1]) != FilterOperatorEqual {
		return FilterComparison{}, fmt.Errorf("%w: operator %q", ErrUnsupportedFilter, parts[1])
	}

	return FilterComparison{
		Attribute: parts[0],
		Operator:  FilterOperatorEqual,
		Value:     strings.Trim(parts[2], `"`),
	}, nil
}
