// Package trip turns a route polyline into per-segment emissions, compares
// alternative fuels over the same segmentation, and computes savings between
// a baseline and an optimized trip.
package trip
