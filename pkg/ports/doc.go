/*
Package ports defines the driven ports (interfaces) for the Colloquy engine.

These interfaces decouple the script executor from external implementations,
allowing the engine to work with various LLM backends, template sources and
storage backends.

# Key Interfaces

  - LLMProvider: Generates text for actions and for the monitor (e.g., Gemini, Ollama).
  - TemplateProvider: Resolves prompt templates by project and virtual path.
  - StateStore: Persists and loads session ExecutionState (used by hosts, not by the core).
  - DistributedLocker: Provides distributed locking for handling concurrent session access.
*/
package ports
