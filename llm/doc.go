// Package llm defines the provider-facing surface of the framework: the
// Provider interface every model adapter implements, the request/response
// types, a provider registry, and the stream accumulator that folds partial
// message chunks into finalized messages.
package llm
