// Package zap provides a go.uber.org/zap backed implementation of the
// library's log.Logger interface.
//
// Use InitializeLogger for an environment-driven setup, or NewLogger with an
// explicit Config when embedding into an application that manages its own
// logging configuration.
package zap
