/*
Package observability turns controller lifecycle events into metrics and logs.

Both Metrics.Hooks and LoggingHooks return domain.LifecycleHooks, so they can
be combined with domain.CombineHooks and passed to the controller.
*/
package observability
