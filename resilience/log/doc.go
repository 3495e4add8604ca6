// Package log defines the logging interface used across the library.
//
// Adapters (such as the zap package) implement Logger so library internals
// can log consistently regardless of the backend the host application uses.
// GoLogger offers a stdlib-backed default and NoneLogger a silent one for
// tests and callers that opt out of logging.
package log
