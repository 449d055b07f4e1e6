// Package storage persists conversations, the outbound message log, and the
// runtime-editable settings rows.
//
// The message log doubles as the idempotence record: every outbound entry
// carries the event reference, and the dispatcher checks for an existing
// reference in a conversation before sending. Settings are a flat key/value
// table; list-or-scalar legacy values are normalized by the config layer,
// not here.
package storage
