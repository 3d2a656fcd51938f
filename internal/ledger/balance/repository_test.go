package balance

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// The window scan must filter status and date on the inner line/entry join.
// If the predicates migrate to an outer LEFT JOIN on journal_entries they stop
// excluding anything: the line row still joins with a NULL entry and its
// amounts land in the sums, so drafts and out-of-window entries would count.
func TestActivityQueryFiltersLinesNotEntries(t *testing.T) {
	inner := regexp.MustCompile(`(?s)LEFT JOIN \(journal_lines l\s+JOIN journal_entries e ON e\.id = l\.entry_id\s+AND e\.status IN \('POSTED','REVERSED'\)\s+AND e\.date >= \$2 AND e\.date <= \$3\)\s+ON l\.account_id = a\.id`)
	require.Regexp(t, inner, activityQuery,
		"status/date predicates must constrain the line join, not the entry columns")

	require.NotContains(t, activityQuery, "LEFT JOIN journal_entries",
		"journal_entries must inner-join the lines so filtered lines drop out")
	require.Equal(t, 1, strings.Count(activityQuery, "ON l.account_id = a.id"),
		"accounts attach to the filtered line set by account id only")
}
