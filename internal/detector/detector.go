package detector

import (
	"github.com/fjglira/visualtestgen/internal/domain"
)

// Detect computes the feature flags for a parsed table. A flag is set when its
// column is present in the headers and at least one row carries a non-empty value.
func Detect(table *domain.ParsedTable) domain.FeatureFlags {
	if table == nil {
		return domain.FeatureFlags{}
	}
	return domain.FeatureFlags{
		HasHideSelectors: hasValues(table, domain.ColumnHide),
		HasTestActions:   hasValues(table, domain.ColumnAction),
		HasTestEnv:       hasValues(table, domain.ColumnEnv),
		HasSelectorText:  hasValues(table, domain.ColumnSelectorText),
	}
}

func hasValues(table *domain.ParsedTable, column string) bool {
	if !table.HasColumn(column) {
		return false
	}
	for _, row := range table.Rows {
		if row.Get(column) != "" {
			return true
		}
	}
	return false
}
