package parsers

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	errx "github.com/pollenai/assistant/internal/core/error"
	logx "github.com/pollenai/assistant/pkg/logger"
)

// ErrNoBraces signals that the planner output contains no JSON object at all.
// The orchestrator treats this as "no tool call occurred" and falls back to
// the knowledge answerer instead of reporting a parse failure.
var ErrNoBraces = errors.New("planner output contains no braces")

// basic safety limit to avoid pathological inputs
const maxContentLen = 128 * 1024 // 128KB

// ToolCall is a structured invocation located inside free-form planner text.
type ToolCall struct {
	Tool    string
	Input   map[string]any
	Variant string // which extractor matched, for diagnostics
}

// extractor is one candidate pattern. Extractors run in order; the first
// that yields a parseable JSON object wins. New model-output shapes are
// added as new variants without touching existing ones.
type extractor struct {
	name string
	fn   func(content string, toolNames []string) (string, bool)
}

var extractors = []extractor{
	{"fenced_json", extractFenced},
	{"braces_after_tool", extractBracesAfterTool},
	{"action_input", extractActionInput},
	{"any_json_object", extractAnyObject},
}

var fencedRe = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// ExtractToolCall locates a structured tool invocation in planner output.
// It returns ErrNoBraces when the text has no JSON object at all, and a
// ToolParseFailed error when braces exist but nothing parses.
func ExtractToolCall(content string, toolNames []string) (*ToolCall, error) {
	if len(content) > maxContentLen {
		logx.Warn().
			Str("component", "toolcall_parser").
			Int("orig_len", len(content)).
			Msg("content truncated due to size limit")
		content = content[:maxContentLen]
	}

	content = normalizeQuotes(content)

	if !strings.Contains(content, "{") && !strings.Contains(content, "}") {
		return nil, ErrNoBraces
	}

	for _, ex := range extractors {
		candidate, ok := ex.fn(content, toolNames)
		if !ok {
			continue
		}
		call, err := parseCandidate(candidate, content, toolNames)
		if err != nil {
			logx.Debug().
				Str("variant", ex.name).
				Err(err).
				Msg("extractor candidate did not parse, trying next")
			continue
		}
		call.Variant = ex.name
		return call, nil
	}

	return nil, errx.ToolParseFailed(fmt.Errorf("no extractor matched"))
}

// parseCandidate decodes a JSON candidate. The planner may emit either the
// envelope form {"tool": ..., "tool_input": {...}} or the bare argument
// object following the tool name in prose.
func parseCandidate(candidate, fullContent string, toolNames []string) (*ToolCall, error) {
	candidate = strings.ReplaceAll(candidate, "\n", " ")
	candidate = strings.TrimSpace(candidate)

	var raw map[string]any
	if err := json.Unmarshal([]byte(candidate), &raw); err != nil {
		return nil, err
	}

	if name, ok := raw["tool"].(string); ok && name != "" {
		input, _ := raw["tool_input"].(map[string]any)
		if input == nil {
			input = map[string]any{}
		}
		return &ToolCall{Tool: name, Input: input}, nil
	}

	// Bare argument object: the tool name must appear somewhere in the text.
	name := findToolName(fullContent, toolNames)
	if name == "" {
		return nil, fmt.Errorf("json object without tool name")
	}
	return &ToolCall{Tool: name, Input: raw}, nil
}

func extractFenced(content string, toolNames []string) (string, bool) {
	for _, m := range fencedRe.FindAllStringSubmatch(content, -1) {
		if obj, ok := firstObject(m[1]); ok {
			return obj, true
		}
	}
	return "", false
}

func extractBracesAfterTool(content string, toolNames []string) (string, bool) {
	name := findToolName(content, toolNames)
	if name == "" {
		return "", false
	}
	idx := strings.Index(strings.ToUpper(content), strings.ToUpper(name))
	return firstObject(content[idx+len(name):])
}

func extractActionInput(content string, toolNames []string) (string, bool) {
	idx := strings.Index(content, "Action Input:")
	if idx < 0 {
		return "", false
	}
	return firstObject(content[idx+len("Action Input:"):])
}

func extractAnyObject(content string, toolNames []string) (string, bool) {
	return firstObject(content)
}

// firstObject returns the first balanced top-level {...} in s, honoring
// string literals and escapes so braces inside values do not end the match.
func firstObject(s string) (string, bool) {
	start := strings.Index(s, "{")
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return s[start : i+1], true
				}
			}
		}
	}
	return "", false
}

func findToolName(content string, toolNames []string) string {
	upper := strings.ToUpper(content)
	for _, name := range toolNames {
		if strings.Contains(upper, strings.ToUpper(name)) {
			return name
		}
	}
	return ""
}

var quoteReplacer = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

func normalizeQuotes(s string) string {
	return quoteReplacer.Replace(s)
}
