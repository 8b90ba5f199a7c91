package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

func toLower(s string) string { return strings.ToLower(s) }

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// daysAgoExpr renders an Elasticsearch date-math expression meaning "N days
// ago, rounded to the day" so max_days_on_market filtering happens on the
// backend's clock rather than the caller's.
func daysAgoExpr(days int) string {
	return fmt.Sprintf("now-%dd/d", days)
}
