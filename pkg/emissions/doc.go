// Package emissions resolves GLEC-style emission factors from a reference table
// and converts them into absolute emissions for a freight movement.
//
// The reference table is loaded once and shared read-only. Lookups go through a
// Resolver whose matching policy is pluggable; the default policy filters by exact
// region and fuel and by the first token of the vehicle label, and takes the first
// matching row in table order.
package emissions
