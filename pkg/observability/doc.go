/*
Package observability turns editor lifecycle events into logs and Prometheus metrics.

Both outputs are plain domain.LifecycleHooks; Combine lets a host attach several.
*/
package observability
