// Package llmutil parses structured replies from language models.
package llmutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Strategy names the parse attempt that succeeded.
type Strategy string

const (
	StrategyRaw     Strategy = "raw"
	StrategyTrimmed Strategy = "trimmed"
	StrategyFenced  Strategy = "fenced"
)

// ErrNoJSON is returned when no strategy produced valid JSON.
var ErrNoJSON = errors.New("no parseable JSON in response")

// fencedRegex extracts the body of a markdown code block, with or without a language tag.
// \x60 is a backtick; raw strings cannot contain one.
var fencedRegex = regexp.MustCompile("(?s)\x60\x60\x60[a-zA-Z]*\\s*(.*?)\\s*\x60\x60\x60")

// Outcome reports how a reply was parsed.
type Outcome struct {
	Strategy Strategy
	// Attempts is the number of strategies tried, including the successful one.
	Attempts int
}

// ParseJSON decodes response into T trying, in order: the raw text, the text with
// surrounding whitespace and byte-order marks removed, and the first fenced code block.
// On failure the returned Outcome still reports how many attempts were made.
func ParseJSON[T any](response string) (*T, Outcome, error) {
	var out Outcome

	out.Attempts++
	if v, err := decode[T](response); err == nil {
		out.Strategy = StrategyRaw
		return v, out, nil
	}

	trimmed := Trim(response)
	out.Attempts++
	if v, err := decode[T](trimmed); err == nil {
		out.Strategy = StrategyTrimmed
		return v, out, nil
	}

	out.Attempts++
	block, ok := ExtractFenced(trimmed)
	if ok {
		if v, err := decode[T](block); err == nil {
			out.Strategy = StrategyFenced
			return v, out, nil
		}
	}

	return nil, out, fmt.Errorf("%w (tried %d strategies): %s", ErrNoJSON, out.Attempts, truncate(trimmed, 200))
}

// Trim removes surrounding whitespace and UTF-8 byte-order marks.
func Trim(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "\ufeff"))
}

// ExtractFenced returns the body of the first fenced code block in s.
func ExtractFenced(s string) (string, bool) {
	m := fencedRegex.FindStringSubmatch(s)
	if len(m) < 2 {
		return "", false
	}
	return m[1], true
}

func decode[T any](s string) (*T, error) {
	var v T
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
