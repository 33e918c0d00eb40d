// Package logging builds the slog loggers used across labeld.
//
// Two handler formats exist: a console handler that renders one aligned line
// per record with a [component] prefix, and a JSON handler for machine
// consumption. Output fans out to stdout plus a labeld.log file in the
// configured log directory. Standardized attribute keys live here so store,
// daemon, and CLI log shapes stay consistent.
package logging
