// Package planning turns free-form model output into study tasks and plans.
//
// Language models rarely return exactly what they are asked for: the JSON
// array comes wrapped in markdown fences, preceded by a greeting, or not at
// all. The extractors here walk a fixed fallback chain and always hand back
// a usable (possibly empty) result together with the tier that produced it.
package planning

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Source identifies the tier of the fallback chain that produced a result.
type Source string

const (
	SourceJSON         Source = "json"
	SourceEmbeddedJSON Source = "embedded_json"
	SourceLines        Source = "lines"
	SourceRecovered    Source = "recovered"
	SourceEmpty        Source = "empty"
)

// Diagnostic reason codes attached to every extraction.
const (
	ReasonOK            = "ok"
	ReasonBlankInput    = "blank_input"
	ReasonNotAList      = "not_a_list"
	ReasonNoListFound   = "no_list_found"
	ReasonNothingUsable = "nothing_usable"
)

const fence = "```"

// ErrNoList is wrapped by ParseError when neither the whole text nor any
// bracketed span of it decodes as JSON.
var ErrNoList = errors.New("no recognizable list found")

// ParseError describes why the structured tiers of the chain gave up.
type ParseError struct {
	Candidate string
	Err       error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return ErrNoList.Error() + ": " + e.Err.Error()
	}
	return ErrNoList.Error()
}

func (e *ParseError) Unwrap() error { return e.Err }

// Is allows errors.Is(err, ErrNoList).
func (e *ParseError) Is(target error) bool {
	return target == ErrNoList
}

// Extraction is the tagged result of ExtractTaskList.
type Extraction struct {
	Tasks  []string `json:"tasks"`
	Source Source   `json:"source"`
	Reason string   `json:"reason"`
}

// Empty reports whether no task survived extraction.
func (e Extraction) Empty() bool {
	return len(e.Tasks) == 0
}

var (
	fencedBlock = regexp.MustCompile("(?s)```(?i:json)?(.*?)```")
	greedyArray = regexp.MustCompile(`(?s)\[.*\]`)
	bracketLine = regexp.MustCompile(`^[\[\]{}]*,?$`)
)

var noiseTokens = map[string]struct{}{
	"[":       {},
	"]":       {},
	"{":       {},
	"}":       {},
	"```":     {},
	"```json": {},
}

// ExtractTaskList converts raw model text into an ordered task list.
// It never fails; callers decide whether an empty list is an error.
func ExtractTaskList(raw string) Extraction {
	cleaned := strings.TrimSpace(stripFences(raw))
	if cleaned == "" {
		return Extraction{Tasks: []string{}, Source: SourceEmpty, Reason: ReasonBlankInput}
	}

	value, source, err := parseValue(cleaned)
	if err != nil {
		return result(recoverLines(cleaned), SourceRecovered, ReasonNoListFound)
	}

	items, ok := value.([]any)
	if !ok {
		return result(splitLines(cleaned), SourceLines, ReasonNotAList)
	}
	return result(cleanElements(items), source, ReasonOK)
}

func result(tasks []string, source Source, reason string) Extraction {
	if len(tasks) == 0 {
		if reason == ReasonOK {
			reason = ReasonNothingUsable
		}
		return Extraction{Tasks: []string{}, Source: SourceEmpty, Reason: reason}
	}
	return Extraction{Tasks: tasks, Source: source, Reason: reason}
}

// stripFences removes markdown code-fence delimiters and keeps their content.
func stripFences(text string) string {
	if !strings.Contains(text, fence) {
		return text
	}
	text = fencedBlock.ReplaceAllString(text, "$1")
	// An unterminated fence survives the pairwise replacement.
	text = strings.ReplaceAll(text, fence+"json", "")
	return strings.ReplaceAll(text, fence, "")
}

func parseValue(cleaned string) (any, Source, error) {
	if value, err := parseStrict(cleaned); err == nil {
		return value, SourceJSON, nil
	}
	value, err := parseEmbeddedArray(cleaned)
	if err != nil {
		return nil, "", err
	}
	return value, SourceEmbeddedJSON, nil
}

func parseStrict(text string) (any, error) {
	var value any
	if err := json.Unmarshal([]byte(text), &value); err != nil {
		return nil, err
	}
	return value, nil
}

// parseEmbeddedArray looks for a JSON array inside surrounding prose. The
// first balanced span is tried before the widest first-to-last bracket span.
func parseEmbeddedArray(text string) (any, error) {
	var candidates []string
	if span, ok := firstBalancedArray(text); ok {
		candidates = append(candidates, span)
	}
	if span := greedyArray.FindString(text); span != "" && (len(candidates) == 0 || candidates[0] != span) {
		candidates = append(candidates, span)
	}
	if len(candidates) == 0 {
		return nil, &ParseError{}
	}

	var lastErr error
	for _, candidate := range candidates {
		value, err := parseStrict(candidate)
		if err == nil {
			return value, nil
		}
		lastErr = &ParseError{Candidate: candidate, Err: err}
	}
	return nil, lastErr
}

// firstBalancedArray returns the span from the first '[' to its matching ']',
// ignoring brackets inside JSON string literals.
func firstBalancedArray(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	if start < 0 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return text[start : i+1], true
			}
		}
	}
	return "", false
}

// cleanElements keeps the string elements of a decoded array, unquoted and
// trimmed, minus punctuation debris and single characters.
func cleanElements(items []any) []string {
	tasks := make([]string, 0, len(items))
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = unquote(s)
		if isNoise(s) {
			continue
		}
		tasks = append(tasks, s)
	}
	return tasks
}

// splitLines is the fallback for JSON that decoded to something other than
// an array.
func splitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if keepLine(line, 1) {
			lines = append(lines, line)
		}
	}
	return lines
}

// recoverLines is the last resort when nothing decodes. Its length threshold
// is stricter than splitLines because the lines may be prose or JSON debris.
func recoverLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !keepLine(line, 5) {
			continue
		}
		line = unquote(line)
		if isNoise(line) {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func keepLine(line string, minLen int) bool {
	if line == "" || bracketLine.MatchString(line) || strings.Contains(line, fence) {
		return false
	}
	return utf8.RuneCountInString(line) > minLen
}

// unquote peels surrounding quotes and trailing commas until none remain.
func unquote(s string) string {
	for {
		next := strings.TrimSpace(strings.TrimRight(strings.TrimSpace(s), ","))
		next = strings.TrimSpace(strings.Trim(next, `"'`))
		if next == s {
			return s
		}
		s = next
	}
}

func isNoise(s string) bool {
	if s == "" {
		return true
	}
	if _, ok := noiseTokens[s]; ok {
		return true
	}
	return utf8.RuneCountInString(s) <= 1
}
