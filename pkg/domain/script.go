package domain

// Script is a parsed conversation script: Phase > Topic > Action.
type Script struct {
	ID             string                `json:"session_id" yaml:"session_id"`
	Name           string                `json:"session_name,omitempty" yaml:"session_name,omitempty"`
	ProjectID      string                `json:"project_id,omitempty" yaml:"project_id,omitempty"`
	TemplateScheme string                `json:"template_scheme,omitempty" yaml:"template_scheme,omitempty"`
	Globals        map[string]any        `json:"globals,omitempty" yaml:"globals,omitempty"`
	Declarations   []VariableDeclaration `json:"declare,omitempty" yaml:"declare,omitempty"`
	Phases         []Phase               `json:"phases" yaml:"phases"`
}

// Phase groups topics.
type Phase struct {
	ID           string                `json:"phase_id" yaml:"phase_id"`
	Name         string                `json:"phase_name,omitempty" yaml:"phase_name,omitempty"`
	Declarations []VariableDeclaration `json:"declare,omitempty" yaml:"declare,omitempty"`
	Topics       []Topic               `json:"topics" yaml:"topics"`
}

// Topic groups actions.
type Topic struct {
	ID           string                `json:"topic_id" yaml:"topic_id"`
	Name         string                `json:"topic_name,omitempty" yaml:"topic_name,omitempty"`
	Declarations []VariableDeclaration `json:"declare,omitempty" yaml:"declare,omitempty"`
	Actions      []ActionConfig        `json:"actions" yaml:"actions"`
}

// ActionConfig is the static definition of a script step.
type ActionConfig struct {
	ID     string         `json:"action_id" yaml:"action_id"`
	Type   string         `json:"action_type" yaml:"action_type"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// VariableDeclaration declares the scope (and optionally type) of a variable.
// An empty Scope means the scope of the container that declares it.
type VariableDeclaration struct {
	Name        string `json:"var_name" yaml:"var_name"`
	Scope       Scope  `json:"scope,omitempty" yaml:"scope,omitempty"`
	Type        string `json:"type,omitempty" yaml:"type,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ActionAt returns the action config at the given indices, if any.
func (s *Script) ActionAt(phase, topic, action int) (*ActionConfig, bool) {
	if phase < 0 || phase >= len(s.Phases) {
		return nil, false
	}
	p := &s.Phases[phase]
	if topic < 0 || topic >= len(p.Topics) {
		return nil, false
	}
	t := &p.Topics[topic]
	if action < 0 || action >= len(t.Actions) {
		return nil, false
	}
	return &t.Actions[action], true
}

// ScopeDeclarations flattens every declaration of the script, resolving implicit scopes.
// Later (narrower) declarations of the same name win.
func (s *Script) ScopeDeclarations() map[string]VariableDeclaration {
	out := make(map[string]VariableDeclaration)
	add := func(decls []VariableDeclaration, implicit Scope) {
		for _, d := range decls {
			if d.Scope == "" {
				d.Scope = implicit
			}
			out[d.Name] = d
		}
	}
	add(s.Declarations, ScopeSession)
	for _, p := range s.Phases {
		add(p.Declarations, ScopePhase)
		for _, t := range p.Topics {
			add(t.Declarations, ScopeTopic)
		}
	}
	return out
}
