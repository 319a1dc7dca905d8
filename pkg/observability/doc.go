/*
Package observability turns engine lifecycle hooks into Prometheus metrics.

Metrics registers its collectors on a caller-supplied registry and exposes a
domain.LifecycleHooks value that can be passed to colloquy.WithLifecycleHooks,
possibly merged with logging hooks via LifecycleHooks.Merge.
*/
package observability
