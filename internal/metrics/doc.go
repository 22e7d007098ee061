// Package metrics provides internal Prometheus metrics collection for
// stream accumulation and history stores.
// This package is internal and should not be imported by external projects.
package metrics
