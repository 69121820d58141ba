// Package logstore keeps rotating, size- and age-bounded append-only log
// files for the server and for browser clients, and reads them back.
//
// Layout under the configured root:
//
//	<root>/server/server-YYYY-MM-DD.log
//	<root>/client/client-YYYY-MM-DD.log
//	<root>/<origin>/<origin>-YYYY-MM-DD-<timestamp>.log   (rotated)
//
// Appends are best-effort: failures are reported on the diagnostic logger and
// never returned to the caller. Reads are typed: ErrNotFound, ErrAccessDenied.
package logstore
