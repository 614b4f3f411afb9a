// Package phpserial decodes the legacy field encodings found in WordPress
// CSV exports: plain integers, PHP serialized-array headers (a:N:{...}),
// and empty or null sentinels.
//
// Only the declared array length is trusted; the braces' contents are never
// deep-parsed. The completion heuristic for short arrays is a deliberate
// carry-over from the legacy data assumptions and lives here so it can be
// swapped for a real lenient PHP deserializer without touching callers.
package phpserial
