package planning_test

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
)

func TestExtractTaskList(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   []string
		source planning.Source
		reason string
	}{
		{
			name:   "bare array",
			input:  `["Read chapter 1", "Solve exercises 1-10"]`,
			want:   []string{"Read chapter 1", "Solve exercises 1-10"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "json fence",
			input:  "```json\n[\"Task A\", \"Task B\"]\n```",
			want:   []string{"Task A", "Task B"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "untagged fence",
			input:  "```\n[\"Task A\", \"Task B\"]\n```",
			want:   []string{"Task A", "Task B"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "unterminated fence",
			input:  "```json\n[\"Task A\", \"Task B\"]",
			want:   []string{"Task A", "Task B"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "array inside prose",
			input:  "Here are your tasks:\n[\"Read ch.1\", \"Do 10 problems\"]\nGood luck!",
			want:   []string{"Read ch.1", "Do 10 problems"},
			source: planning.SourceEmbeddedJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "two arrays in prose picks the first",
			input:  "Week 1: [\"Vocabulary drill\", \"Grammar basics\"] Week 2: [\"Mock exam\"]",
			want:   []string{"Vocabulary drill", "Grammar basics"},
			source: planning.SourceEmbeddedJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "brackets inside strings",
			input:  "Plan: [\"Review [unit 3] notes\", \"Quiz\"] done",
			want:   []string{"Review [unit 3] notes", "Quiz"},
			source: planning.SourceEmbeddedJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "plain lines",
			input:  "Day 1: review vocab\nDay 2: practice listening",
			want:   []string{"Day 1: review vocab", "Day 2: practice listening"},
			source: planning.SourceRecovered,
			reason: planning.ReasonNoListFound,
		},
		{
			name:   "recovered lines are unquoted",
			input:  "[\n\"Read the first chapter\",\n\"Summarize it in a page\",\n",
			want:   []string{"Read the first chapter", "Summarize it in a page"},
			source: planning.SourceRecovered,
			reason: planning.ReasonNoListFound,
		},
		{
			name:   "recovered lines drop short debris",
			input:  "[\n\"ok\",\nWrite an essay outline\n]",
			want:   []string{"Write an essay outline"},
			source: planning.SourceRecovered,
			reason: planning.ReasonNoListFound,
		},
		{
			name:   "object falls back to lines",
			input:  "{\n\"plan\": \"read\"\n}",
			want:   []string{`"plan": "read"`},
			source: planning.SourceLines,
			reason: planning.ReasonNotAList,
		},
		{
			name:   "non-string elements dropped",
			input:  `["Read chapter 1", 42, null, {"x": 1}, ["nested"], "Do problems"]`,
			want:   []string{"Read chapter 1", "Do problems"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "quotes and commas stripped",
			input:  `["\"Read chapter 1\",", "'Do problems'", "  spaced out  "]`,
			want:   []string{"Read chapter 1", "Do problems", "spaced out"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "layered decoration stripped",
			input:  `["\"'Read chapter one'\"", "Read chapter two,\"", "Read chapter three,,"]`,
			want:   []string{"Read chapter one", "Read chapter two", "Read chapter three"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "punctuation tokens dropped",
			input:  `["[", "]", "{", "}", "a", "Real task"]`,
			want:   []string{"Real task"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "duplicates kept",
			input:  `["Review", "Review"]`,
			want:   []string{"Review", "Review"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "multibyte tasks",
			input:  `["単語を復習する", "文法", "聞"]`,
			want:   []string{"単語を復習する", "文法"},
			source: planning.SourceJSON,
			reason: planning.ReasonOK,
		},
		{
			name:   "empty",
			input:  "",
			want:   []string{},
			source: planning.SourceEmpty,
			reason: planning.ReasonBlankInput,
		},
		{
			name:   "whitespace only",
			input:  " \n\t \n",
			want:   []string{},
			source: planning.SourceEmpty,
			reason: planning.ReasonBlankInput,
		},
		{
			name:   "fence only",
			input:  "```json\n```",
			want:   []string{},
			source: planning.SourceEmpty,
			reason: planning.ReasonBlankInput,
		},
		{
			name:   "short prose",
			input:  "Sorry\nNo.",
			want:   []string{},
			source: planning.SourceEmpty,
			reason: planning.ReasonNoListFound,
		},
		{
			name:   "array of debris",
			input:  `["[", "]", "x"]`,
			want:   []string{},
			source: planning.SourceEmpty,
			reason: planning.ReasonNothingUsable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := planning.ExtractTaskList(tt.input)
			if diff := cmp.Diff(tt.want, got.Tasks); diff != "" {
				t.Errorf("tasks mismatch (-want +got):\n%s", diff)
			}
			if got.Source != tt.source {
				t.Errorf("source = %q, want %q", got.Source, tt.source)
			}
			if got.Reason != tt.reason {
				t.Errorf("reason = %q, want %q", got.Reason, tt.reason)
			}
			if got.Tasks == nil {
				t.Error("tasks must never be nil")
			}
		})
	}
}

func TestExtractTaskList_Invariant(t *testing.T) {
	inputs := []string{
		"```json\n[\"[\", \"Read\", \"]\", \"```\", \"x\", \"Read chapter two\"]\n```",
		"[\n{\n}\n]\n```\nsomething long enough\n",
		"Here:\n[\"a\", \"bb\", \" \", \"\"]",
		"just some prose without structure at all",
		"{\"tasks\": [\"one\", \"two\"]}",
		"[1, 2, 3]",
	}

	for _, input := range inputs {
		got := planning.ExtractTaskList(input)
		for _, task := range got.Tasks {
			if strings.TrimSpace(task) == "" {
				t.Errorf("input %q produced blank task", input)
			}
			switch task {
			case "[", "]", "{", "}", "```", "```json":
				t.Errorf("input %q produced punctuation task %q", input, task)
			}
			if len([]rune(task)) <= 1 {
				t.Errorf("input %q produced short task %q", input, task)
			}
		}
	}
}

func TestExtractTaskList_Idempotent(t *testing.T) {
	inputs := []string{
		"```json\n[\"Task A\", \"Task B\"]\n```",
		"Here are your tasks:\n[\"Read ch.1\", \"Do 10 problems\"]\nGood luck!",
		"Day 1: review vocab\nDay 2: practice listening",
		`["'quoted'", "trailing,", "<b>markup</b> & more"]`,
		`["\"'Read chapter one'\"", "Read chapter two,\"", "Read chapter three,,"]`,
		"[\n\"'Summarize the lecture notes',\",\n\"Review flashcards,,\"\n",
	}

	for _, input := range inputs {
		first := planning.ExtractTaskList(input)
		data, err := json.Marshal(first.Tasks)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		second := planning.ExtractTaskList(string(data))
		if diff := cmp.Diff(first.Tasks, second.Tasks); diff != "" {
			t.Errorf("re-extraction of %q changed tasks (-first +second):\n%s", input, diff)
		}
	}
}

func TestParseError(t *testing.T) {
	cause := errors.New("unexpected end of JSON input")
	err := &planning.ParseError{Candidate: "[", Err: cause}

	if !errors.Is(err, planning.ErrNoList) {
		t.Error("expected ParseError to match ErrNoList")
	}
	if !errors.Is(err, cause) {
		t.Error("expected ParseError to unwrap its cause")
	}
	if !strings.Contains(err.Error(), "no recognizable list found") {
		t.Errorf("unexpected message: %s", err.Error())
	}
}
