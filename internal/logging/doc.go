// Package logging is the application-facing side of the log store.
//
// Logger formats leveled records with an icon, an ISO-8601 timestamp and a
// source tag, echoes them to the console and appends them to the store's
// server origin. ClientReport does the same for records relayed by browser
// clients.
//
// Setup builds a separate diagnostic slog logger backed by a RotatingWriter.
// The store reports its own suppressed failures there, never into the files it
// manages. Viewer reads store files back for the terminal log viewer.
package logging
