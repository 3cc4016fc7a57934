package emissions

import "log/slog"

// Resolver looks up emission factors in a shared reference table
type Resolver struct {
	table   *Table
	matcher Matcher
	logger  *slog.Logger
}

// Option configures a Resolver
type Option func(*Resolver)

// WithMatcher replaces the default first-token matching policy
func WithMatcher(m Matcher) Option {
	return func(r *Resolver) {
		if m != nil {
			r.matcher = m
		}
	}
}

// WithLogger sets the logger used for lookup diagnostics
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewResolver creates a resolver over table
func NewResolver(table *Table, opts ...Option) *Resolver {
	r := &Resolver{
		table:   table,
		matcher: FirstTokenMatcher{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Table returns the reference table backing the resolver
func (r *Resolver) Table() *Table {
	return r.table
}

// Resolve returns the factors of the first row matching the triple
func (r *Resolver) Resolve(vehicleType, fuel, region string) (ResolvedFactors, error) {
	_, factors, err := r.ResolveRow(vehicleType, fuel, region)
	return factors, err
}

// ResolveRow is Resolve that also returns the matched row.
// Ties are broken by table order; no further disambiguation is attempted.
func (r *Resolver) ResolveRow(vehicleType, fuel, region string) (Row, ResolvedFactors, error) {
	q := NewQuery(vehicleType, fuel, region)

	if r.table != nil {
		for _, row := range r.table.rows {
			if r.matcher.Match(row, q) {
				r.logger.Debug("emission factors resolved",
					"vehicle_type", q.VehicleType,
					"fuel", q.Fuel,
					"region", q.Region,
					"vehicle_class", row.VehicleClass,
					"wtw_derived", row.WTW == nil)
				return row, row.Factors(), nil
			}
		}
	}

	r.logger.Debug("no emission factor match",
		"vehicle_type", q.VehicleType,
		"fuel", q.Fuel,
		"region", q.Region)
	return Row{}, ResolvedFactors{}, &NoMatchError{VehicleType: vehicleType, Fuel: fuel, Region: region}
}
