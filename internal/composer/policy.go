package composer

import (
	"fmt"
	"strings"

	"github.com/fjglira/visualtestgen/internal/domain"
)

// Policy selects which rows seed the representative examples.
type Policy string

const (
	PolicyFirst Policy = "first"
	PolicyAll   Policy = "all"
	PolicyNone  Policy = "none"
)

// Policies lists the accepted policy names.
var Policies = []Policy{PolicyFirst, PolicyAll, PolicyNone}

// ParsePolicy converts a configuration value to a Policy. The empty string
// selects PolicyFirst.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyFirst, nil
	case PolicyFirst, PolicyAll, PolicyNone:
		return p, nil
	default:
		return "", domain.NewErrorWithSuggestion("compose", "", 0,
			fmt.Sprintf("unknown representative policy %q", s),
			"use one of: first, all, none", nil)
	}
}

// RepresentativeRows returns the rows selected by policy. An unknown policy
// behaves like PolicyFirst.
func RepresentativeRows(rows []domain.TestCaseRow, policy Policy) []domain.TestCaseRow {
	switch policy {
	case PolicyNone:
		return nil
	case PolicyAll:
		return rows
	default:
		if len(rows) == 0 {
			return nil
		}
		return rows[:1]
	}
}
