package emissions

import "strings"

// Query is a normalized lookup triple
type Query struct {
	VehicleType string
	Fuel        string
	Region      string
}

// NewQuery normalizes a free-text lookup triple
func NewQuery(vehicleType, fuel, region string) Query {
	return Query{
		VehicleType: Normalize(vehicleType),
		Fuel:        Normalize(fuel),
		Region:      Normalize(region),
	}
}

// Matcher decides whether a reference row satisfies a query
type Matcher interface {
	Match(row Row, q Query) bool
}

// MatcherFunc adapts a function to the Matcher interface
type MatcherFunc func(row Row, q Query) bool

// Match calls f(row, q)
func (f MatcherFunc) Match(row Row, q Query) bool {
	return f(row, q)
}

// FirstTokenMatcher requires exact region and fuel, and that the row's vehicle class
// contains the first whitespace-delimited token of the query's vehicle type.
//
// Short tokens match broadly ("van" matches any class containing "van"). That
// permissiveness decides which free-text labels resolve and is kept as is.
type FirstTokenMatcher struct{}

// Match implements Matcher
func (FirstTokenMatcher) Match(row Row, q Query) bool {
	if row.Region != q.Region || row.Fuel != q.Fuel {
		return false
	}
	token := FirstToken(q.VehicleType)
	if token == "" {
		return false
	}
	return strings.Contains(row.VehicleClass, token)
}

// FirstToken returns the first whitespace-delimited token of a normalized label
func FirstToken(label string) string {
	fields := strings.Fields(label)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToLower(fields[0])
}
