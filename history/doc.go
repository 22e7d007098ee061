// Package history provides chat message history stores. Each store persists
// a session's messages in the {"type", "data"} wire shape so histories
// written by one backend can be read back by any other.
package history
