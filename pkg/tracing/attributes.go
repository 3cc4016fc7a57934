package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys
const (
	AttrMCPToolName     = "mcp.tool.name"
	AttrMCPToolStatus   = "mcp.tool.status"
	AttrMCPToolDuration = "mcp.tool.duration_ms"
	AttrMCPResultSize   = "mcp.tool.result_size"

	AttrServiceName      = "greenroute.service.name"
	AttrServiceOperation = "greenroute.service.operation"
	AttrServiceURL       = "greenroute.service.url"

	AttrRateLimitService = "greenroute.ratelimit.service"
	AttrRateLimitWaitMs  = "greenroute.ratelimit.wait_ms"

	AttrVehicleType = "greenroute.trip.vehicle_type"
	AttrFuel        = "greenroute.trip.fuel"
	AttrRegion      = "greenroute.trip.region"
	AttrDistanceKm  = "greenroute.trip.distance_km"
	AttrLoadTons    = "greenroute.trip.load_tons"
	AttrSegments    = "greenroute.trip.segments"

	AttrHTTPMethod     = "http.method"
	AttrHTTPStatusCode = "http.status_code"
	AttrHTTPPath       = "http.path"
	AttrHTTPSessionID  = "http.session_id"
)

// Status values
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Upstream services
const (
	ServiceNominatim = "nominatim"
	ServiceOSRM      = "osrm"
	ServiceLLM       = "llm"
	ServiceRegistry  = "registry"
)

// Cache types
const (
	CacheTypeRoute   = "route"
	CacheTypeGeocode = "geocode"
)

// MCPToolAttributes returns attributes for a finished tool call
func MCPToolAttributes(toolName string, status string, durationMs int64, resultSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMCPToolName, toolName),
		attribute.String(AttrMCPToolStatus, status),
		attribute.Int64(AttrMCPToolDuration, durationMs),
		attribute.Int(AttrMCPResultSize, resultSize),
	}
}

// TripAttributes describes the movement an operation is estimating
func TripAttributes(vehicleType, fuel, region string, distanceKm, loadTons float64) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrVehicleType, vehicleType),
		attribute.String(AttrFuel, fuel),
		attribute.String(AttrRegion, region),
		attribute.Float64(AttrDistanceKm, distanceKm),
		attribute.Float64(AttrLoadTons, loadTons),
	}
}
