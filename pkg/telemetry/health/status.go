package health

// Status is a health severity level, for individual checks and for the
// aggregated service status.
type Status string

const (
	// StatusHealthy means the last check succeeded.
	StatusHealthy Status = "HEALTHY"

	// StatusDegraded means a check failed fewer than three consecutive
	// times.
	StatusDegraded Status = "DEGRADED"

	// StatusUnhealthy means a non-critical check failed at least three
	// consecutive times.
	StatusUnhealthy Status = "UNHEALTHY"

	// StatusCritical means a critical check failed at least three
	// consecutive times. Only critical checks can reach this level.
	StatusCritical Status = "CRITICAL"
)

// severity orders statuses for aggregation; higher is worse.
func severity(s Status) int {
	switch s {
	case StatusHealthy:
		return 0
	case StatusDegraded:
		return 1
	case StatusUnhealthy:
		return 2
	case StatusCritical:
		return 3
	default:
		return 0
	}
}

// maxStatus returns the more severe of two statuses.
func maxStatus(a, b Status) Status {
	if severity(b) > severity(a) {
		return b
	}
	return a
}
