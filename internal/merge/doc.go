// Package merge implements recursive merging of JSON-like values, the
// foundation for streamed message-chunk accumulation.
// This package is internal and should not be imported by external projects.
package merge
