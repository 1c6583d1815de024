// SPDX-License-Identifier: Unlicense OR MIT

// Package log adapts logging to platform logs. Handler turns slog records
// into single prioritized lines. On Android, importing the package also
// forwards the process's standard output and error to logcat, and
// NewLogcatHandler writes records there directly.
package log
