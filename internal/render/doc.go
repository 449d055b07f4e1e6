// Package render turns business events into admin-facing notification text.
//
// It covers three concerns: resolving the ordered positional-argument list
// the messaging provider requires for its approved templates, rendering
// named {{variable}} templates for free-form notifications, and building the
// candidate summary (including the Chilean RUT check and the contact
// recommendation) at a configurable detail level.
//
// Rendering never fails: missing variables collapse to empty text, an empty
// result falls back to a hardcoded per-event message, and oversized output
// is truncated, so a malformed custom template can never silently suppress a
// notification.
package render
