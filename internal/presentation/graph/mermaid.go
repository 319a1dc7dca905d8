// Package graph renders conversation scripts as Mermaid flowcharts.
package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Overlay contains session data to visualize on the graph.
type Overlay struct {
	VisitedActions []string
	CurrentAction  string
}

// OverlayFromState marks every action before the session position as visited
// and the action at the position as current. A completed session has no current action.
func OverlayFromState(script *domain.Script, state *domain.ExecutionState) *Overlay {
	o := &Overlay{}
	if state == nil {
		return o
	}
	pos := state.Position
	for pi, p := range script.Phases {
		for ti, t := range p.Topics {
			for ai, a := range t.Actions {
				before := pi < pos.PhaseIndex ||
					(pi == pos.PhaseIndex && ti < pos.TopicIndex) ||
					(pi == pos.PhaseIndex && ti == pos.TopicIndex && ai < pos.ActionIndex)
				switch {
				case before || state.Status == domain.StatusCompleted:
					o.VisitedActions = append(o.VisitedActions, nodeID(p.ID, t.ID, a.ID))
				case pi == pos.PhaseIndex && ti == pos.TopicIndex && ai == pos.ActionIndex:
					o.CurrentAction = nodeID(p.ID, t.ID, a.ID)
				}
			}
		}
	}
	return o
}

// GenerateMermaid produces a top-down flowchart with one subgraph per phase and topic.
// Action shapes follow the action type:
//   - ai_ask: [/Parallelogram/] (waits for the user)
//   - ai_say: [Rectangle]
//   - anything else: [[Subroutine]]
//
// Actions are chained in execution order from a start circle to an end circle.
func GenerateMermaid(script *domain.Script, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")
	sb.WriteString("    start((\"start\"))\n")

	prev := "start"
	for _, p := range script.Phases {
		fmt.Fprintf(&sb, "    subgraph %s[\"%s\"]\n", sanitizeMermaidID("phase_"+p.ID), label(p.ID, p.Name))
		for _, t := range p.Topics {
			fmt.Fprintf(&sb, "        subgraph %s[\"%s\"]\n", sanitizeMermaidID("topic_"+p.ID+"_"+t.ID), label(t.ID, t.Name))
			for _, a := range t.Actions {
				opener, closer := "[[", "]]"
				switch a.Type {
				case "ai_ask":
					opener, closer = "[/", "/]"
				case "ai_say":
					opener, closer = "[", "]"
				}
				text := a.ID
				if rounds, ok := a.Config["max_rounds"]; ok {
					text = fmt.Sprintf("%s <br/> ↻ %v", a.ID, rounds)
				}
				fmt.Fprintf(&sb, "            %s%s\"%s\"%s\n", nodeID(p.ID, t.ID, a.ID), opener, escape(text), closer)
			}
			sb.WriteString("        end\n")
		}
		sb.WriteString("    end\n")

		for _, t := range p.Topics {
			for _, a := range t.Actions {
				id := nodeID(p.ID, t.ID, a.ID)
				fmt.Fprintf(&sb, "    %s --> %s\n", prev, id)
				prev = id
			}
		}
	}
	sb.WriteString("    done((\"end\"))\n")
	fmt.Fprintf(&sb, "    %s --> done\n", prev)

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// color:#000 keeps labels readable on both light and dark themes.
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		seen := make(map[string]bool)
		for _, id := range overlay.VisitedActions {
			if id != "" && !seen[id] {
				seen[id] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", id)
			}
		}
		if overlay.CurrentAction != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", overlay.CurrentAction)
		}
	}
	return sb.String()
}

func nodeID(phase, topic, action string) string {
	return sanitizeMermaidID(phase + "__" + topic + "__" + action)
}

func label(id, name string) string {
	if name == "" {
		return escape(id)
	}
	return escape(name)
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", " ", "_")
	return r.Replace(id)
}
