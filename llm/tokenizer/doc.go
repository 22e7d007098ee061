// Package tokenizer provides token counting for chat messages, backed by
// tiktoken for OpenAI-family models with a character-based estimator as the
// fallback.
package tokenizer
