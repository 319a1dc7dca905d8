package colloquy_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/testutils"
)

func ExampleEngine_ExecuteSession() {
	script := []byte(`
session:
  session_id: hello
  phases:
    - phase_id: p
      topics:
        - topic_id: t
          actions:
            - action_id: hi
              action_type: ai_say
              config: {content: Greet the user}
`)
	// Any ports.LLMProvider works here; see pkg/adapters/llm for Gemini and Ollama.
	llm := testutils.NewScriptedLLM(`{"message":"Hello there!"}`)
	eng := colloquy.New(colloquy.WithLLM(llm))

	state, err := eng.ExecuteSession(context.Background(), script, "demo", nil, nil)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(state.LastAIMessage)
	fmt.Println(state.Status)
	// Output:
	// Hello there!
	// completed
}
