/*
Package session serializes turns per session and orchestrates persistence.

The engine assumes a single writer per session. Manager provides that guarantee
for hosts (HTTP, MCP, CLI) with an in-process ref-counted mutex per session and,
optionally, a distributed lock so several replicas can share one store.
*/
package session
