// Package telemetry provides structured logging and Prometheus metrics for
// the mutor runtime.
//
// Logging is built on zerolog. A Logger is created from a LoggingConfig and
// handed to the reactive runtime and the component owner, which derive
// per-package child loggers from it:
//
//	logger, err := telemetry.NewLogger(telemetry.LoggingConfig{Level: "debug", Format: "console", Output: "stderr"})
//	rt := reactive.NewRuntime(reactive.WithLogger(logger.Component("reactive")))
//
// Metrics count lifecycle operations (mounts, destroys, updates, effect runs,
// flush passes) on a private registry so several runtimes can coexist in one
// process. A disabled Metrics value is safe to use and records nothing.
package telemetry
