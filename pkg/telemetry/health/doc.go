// Package health implements a multi-check health monitor with
// consecutive-failure escalation.
//
// Checks are registered by name with a check function and a
// configuration marking them critical or not. The Monitor runs them on
// demand or on a fixed schedule, tracks consecutive failures per check
// and escalates: one or two consecutive failures mark a check DEGRADED,
// three or more mark it UNHEALTHY, or CRITICAL when the check is
// registered as critical. A single success resets the count.
//
// The service-level status is the maximum severity across all enabled
// checks. Status transitions are delivered to subscribed
// StatusListener implementations.
//
// The package also provides HTTP handlers for the conventional
// /health, /ready and /alive endpoints.
package health
