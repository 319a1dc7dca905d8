/*
Package domain contains the core data model of the Colloquy script executor.

It defines the serializable execution state that a host persists between turns,
the script structure (phases, topics, actions), scoped variables and the results
produced by actions and the advisory monitor. This package is kept free of I/O
and persistence concerns.

# Key Entities

  - Script: The parsed conversation script (Phase > Topic > Action).
  - ExecutionState: The runtime snapshot of a session, including Position and Metadata.
  - VariableStore: Four scoped partitions (global, session, phase, topic).
  - ActionResult: The outcome of one action turn.
  - MonitorAnalysis: The advisory verdict produced after an in-progress action turn.
*/
package domain
