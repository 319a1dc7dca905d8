/*
Package colloquy executes structured conversation scripts (phases, topics and
actions) that drive a multi-turn dialogue with a language model.

Each user message is an independent call. The engine takes the persisted
domain.ExecutionState, resumes the action at its position, performs at most one
LLM round for it and returns the next state, which the caller stores until the
next message arrives. Nothing is kept in process between calls.

# Concepts

  - Actions are the steps of a script. ai_say delivers a message; ai_ask keeps
    asking until the answer qualifies or its round limit is reached.
  - Variables live in four scopes (global, session, phase, topic) and are looked
    up from the narrowest to the widest.
  - A monitor reviews every in-progress round and queues advice for the next
    one. It never changes the control flow.

# Usage

	eng := colloquy.New(colloquy.WithLLM(provider))

	var state *domain.ExecutionState
	state, err := eng.ExecuteSession(ctx, script, "session-1", state, nil)
	if err != nil {
		log.Fatal(err) // invalid script
	}
	fmt.Println(state.LastAIMessage)

	answer := "My name is Bo"
	state, err = eng.ExecuteSession(ctx, script, "session-1", state, &answer)

Hosts that serve many sessions use pkg/session to serialize turns and a
ports.StateStore (memory or Redis) to persist states.
*/
package colloquy
