// Package messages provides the core conversational message model: a closed
// set of typed message roles, streaming chunk variants with a pure combination
// operator, tool-call fragments, dict/tuple normalization, the persistence wire
// format, and buffer-string rendering.
//
// This package has ZERO dependencies on other packages in this module except
// internal/merge, so every other package can import it freely.
package messages
