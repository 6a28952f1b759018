package planning

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xeipuuv/gojsonschema"
)

// DateLayout is the day format used in plans and prompts.
const DateLayout = "2006-01-02"

// StudyPlan is the structured plan a model returns for a goal.
type StudyPlan struct {
	Summary              string    `json:"summary"`
	RecommendedMaterials []string  `json:"recommendedMaterials"`
	DailyTasks           []DayPlan `json:"dailyTasks"`
}

// DayPlan is one study day of a plan.
type DayPlan struct {
	Day   LenientInt    `json:"day"`
	Date  string        `json:"date"`
	Tasks []PlannedTask `json:"tasks"`
}

// PlannedTask is a single task of a study day.
type PlannedTask struct {
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	EstimatedMinutes LenientInt `json:"estimatedMinutes"`
}

// LenientInt decodes JSON numbers, fractional numbers and numeric strings.
// Anything else decodes to zero instead of failing the whole plan.
type LenientInt int

func (n *LenientInt) UnmarshalJSON(data []byte) error {
	raw := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if raw == "" || raw == "null" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = LenientInt(math.Round(f))
	return nil
}

// TaskCount returns the number of tasks across all days.
func (p *StudyPlan) TaskCount() int {
	if p == nil {
		return 0
	}
	count := 0
	for _, day := range p.DailyTasks {
		count += len(day.Tasks)
	}
	return count
}

// DateOf resolves the calendar date of a plan day. Days whose date is
// missing or malformed are placed relative to start using their day number
// (or position when that is missing too).
func (d DayPlan) DateOf(start time.Time, index int) time.Time {
	if t, err := time.ParseInLocation(DateLayout, strings.TrimSpace(d.Date), start.Location()); err == nil {
		return t
	}
	offset := index
	if d.Day > 0 {
		offset = int(d.Day) - 1
	}
	return startOfDay(start).AddDate(0, 0, offset)
}

// PlanFromTaskList spreads a flat task list over consecutive days starting at
// start, one task per day.
func PlanFromTaskList(tasks []string, start time.Time) *StudyPlan {
	plan := &StudyPlan{DailyTasks: make([]DayPlan, 0, len(tasks))}
	day := startOfDay(start)
	for i, task := range tasks {
		plan.DailyTasks = append(plan.DailyTasks, DayPlan{
			Day:   LenientInt(i + 1),
			Date:  day.AddDate(0, 0, i).Format(DateLayout),
			Tasks: []PlannedTask{{Title: task}},
		})
	}
	return plan
}

// PlanExtraction is the tagged result of ExtractStudyPlan. Plan is nil when
// nothing usable was found.
type PlanExtraction struct {
	Plan   *StudyPlan `json:"plan,omitempty"`
	Source Source     `json:"source"`
	Reason string     `json:"reason"`
	Issues []string   `json:"issues,omitempty"`
}

// Empty reports whether no plan was recovered.
func (e PlanExtraction) Empty() bool {
	return e.Plan == nil
}

// Plan-specific reason codes.
const (
	ReasonNoPlanFound    = "no_plan_found"
	ReasonSchemaMismatch = "schema_mismatch"
)

const studyPlanSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["dailyTasks"],
  "properties": {
    "summary": { "type": "string" },
    "recommendedMaterials": { "type": "array", "items": { "type": "string" } },
    "dailyTasks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["tasks"],
        "properties": {
          "day": { "type": ["integer", "string"] },
          "date": { "type": "string" },
          "tasks": {
            "type": "array",
            "items": {
              "type": "object",
              "properties": {
                "title": { "type": "string" },
                "description": { "type": "string" },
                "estimatedMinutes": { "type": ["number", "string"] }
              },
              "anyOf": [
                { "required": ["title"] },
                { "required": ["description"] }
              ]
            }
          }
        }
      }
    }
  }
}`

var studyPlanSchema = gojsonschema.NewStringLoader(studyPlanSchemaJSON)

var (
	jsonFenceBlock  = regexp.MustCompile("(?s)```(?i:json)[ \t]*\r?\n(.*?)\r?\n[ \t]*```")
	plainFenceBlock = regexp.MustCompile("(?s)```[ \t]*\r?\n(.*?)\r?\n[ \t]*```")
	objectSpan      = regexp.MustCompile(`(?s)\{.*\}`)
	fenceMarker     = regexp.MustCompile("```(?i:json)?")
)

// ExtractStudyPlan recovers a StudyPlan from raw model text. Like
// ExtractTaskList it never fails.
func ExtractStudyPlan(raw string) PlanExtraction {
	if strings.TrimSpace(raw) == "" {
		return PlanExtraction{Source: SourceEmpty, Reason: ReasonBlankInput}
	}

	payload, source := isolatePlanJSON(raw)
	payload = scrubPlanJSON(payload)

	var plan StudyPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return PlanExtraction{Source: SourceEmpty, Reason: ReasonNoPlanFound, Issues: []string{err.Error()}}
	}

	issues := validatePlan(payload)
	normalizePlan(&plan)
	if plan.TaskCount() == 0 {
		return PlanExtraction{Source: SourceEmpty, Reason: ReasonNothingUsable, Issues: issues}
	}

	reason := ReasonOK
	if len(issues) > 0 {
		reason = ReasonSchemaMismatch
	}
	return PlanExtraction{Plan: &plan, Source: source, Reason: reason, Issues: issues}
}

func isolatePlanJSON(text string) (string, Source) {
	if m := jsonFenceBlock.FindStringSubmatch(text); m != nil {
		return m[1], SourceEmbeddedJSON
	}
	if m := plainFenceBlock.FindStringSubmatch(text); m != nil {
		return m[1], SourceEmbeddedJSON
	}
	trimmed := strings.TrimSpace(text)
	if span := objectSpan.FindString(text); span != "" {
		if span == trimmed {
			return span, SourceJSON
		}
		return span, SourceEmbeddedJSON
	}
	return trimmed, SourceJSON
}

// scrubPlanJSON removes the usual non-JSON decorations: stray fences,
// comments and trailing commas. String literals are left untouched.
func scrubPlanJSON(payload string) string {
	payload = fenceMarker.ReplaceAllString(payload, "")

	var b strings.Builder
	b.Grow(len(payload))
	inString, escaped := false, false
	for i := 0; i < len(payload); i++ {
		c := payload[i]
		if inString {
			b.WriteByte(c)
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
		switch {
		case c == '"':
			inString = true
		case strings.HasPrefix(payload[i:], "//"):
			end := strings.IndexByte(payload[i:], '\n')
			if end < 0 {
				i = len(payload)
			} else {
				i += end - 1
			}
			continue
		case strings.HasPrefix(payload[i:], "/*"):
			end := strings.Index(payload[i+2:], "*/")
			if end < 0 {
				i = len(payload)
			} else {
				i += end + 3
			}
			continue
		case c == ',' && closesNext(payload[i+1:]):
			continue
		}
		b.WriteByte(c)
	}
	return strings.TrimSpace(b.String())
}

// closesNext reports whether the next token in rest, skipping whitespace and
// comments, closes an object or array.
func closesNext(rest string) bool {
	for {
		rest = strings.TrimLeft(rest, " \t\r\n")
		switch {
		case strings.HasPrefix(rest, "//"):
			end := strings.IndexByte(rest, '\n')
			if end < 0 {
				return false
			}
			rest = rest[end:]
		case strings.HasPrefix(rest, "/*"):
			end := strings.Index(rest[2:], "*/")
			if end < 0 {
				return false
			}
			rest = rest[end+4:]
		default:
			return rest != "" && (rest[0] == '}' || rest[0] == ']')
		}
	}
}

func validatePlan(payload string) []string {
	result, err := gojsonschema.Validate(studyPlanSchema, gojsonschema.NewStringLoader(payload))
	if err != nil {
		return []string{fmt.Sprintf("schema validation: %v", err)}
	}
	if result.Valid() {
		return nil
	}
	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return issues
}

func normalizePlan(plan *StudyPlan) {
	plan.Summary = strings.TrimSpace(plan.Summary)

	materials := plan.RecommendedMaterials[:0]
	for _, m := range plan.RecommendedMaterials {
		if m = strings.TrimSpace(m); m != "" {
			materials = append(materials, m)
		}
	}
	plan.RecommendedMaterials = materials

	days := make([]DayPlan, 0, len(plan.DailyTasks))
	for _, day := range plan.DailyTasks {
		tasks := make([]PlannedTask, 0, len(day.Tasks))
		for _, task := range day.Tasks {
			task.Title = strings.TrimSpace(task.Title)
			task.Description = strings.TrimSpace(task.Description)
			if task.Title == "" {
				task.Title = summarizeText(task.Description)
			}
			if task.Title == "" {
				continue
			}
			if task.EstimatedMinutes < 0 {
				task.EstimatedMinutes = 0
			}
			tasks = append(tasks, task)
		}
		if len(tasks) == 0 {
			continue
		}
		day.Date = strings.TrimSpace(day.Date)
		day.Tasks = tasks
		days = append(days, day)
	}
	plan.DailyTasks = days
}

const maxTitleRunes = 80

// summarizeText derives a short title from a description: its first
// sentence, or the first maxTitleRunes runes.
func summarizeText(text string) string {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ""
	}
	if idx := strings.IndexAny(trimmed, ".。"); idx > 0 && utf8.RuneCountInString(trimmed[:idx]) < maxTitleRunes {
		return strings.TrimSpace(trimmed[:idx])
	}
	runes := []rune(trimmed)
	if len(runes) > maxTitleRunes {
		return strings.TrimSpace(string(runes[:maxTitleRunes])) + "…"
	}
	return trimmed
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
