// Package compiler turns script sources into validated domain.Script values.
package compiler

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// document is the on-disk root: every script lives under the "session" key.
type document struct {
	Session *domain.Script `yaml:"session"`
}

// Parser is responsible for converting raw bytes into a Script.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML (or JSON) script.
func (p *Parser) Parse(data []byte) (*domain.Script, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: failed to parse script: %v", domain.ErrScriptInvalid, err)
	}
	if doc.Session == nil {
		return nil, fmt.Errorf("%w: missing root key \"session\"", domain.ErrScriptInvalid)
	}
	return doc.Session, nil
}
