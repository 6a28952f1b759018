package planning_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/bskcorona-github/studyflow/pkg/domain/planning"
)

const fencedPlan = "Here is your plan:\n```json\n" + `{
  "summary": " Four weeks of TOEIC prep ",
  "recommendedMaterials": ["Official guide", " ", "Vocabulary app"],
  "dailyTasks": [
    {
      "day": 1,
      "date": "2026-10-19",
      "tasks": [
        {"title": "Listening part 1", "description": "Photos, 20 questions", "estimatedMinutes": 30},
        {"title": "", "description": "Memorize 50 words. Use the app.", "estimatedMinutes": "25"},
      ]
    },
    // rest day
    {"day": 2, "date": "2026-10-20", "tasks": []},
    /* weekend */
    {"day": 3, "date": "not a date", "tasks": [{"title": "Mock test", "estimatedMinutes": 45.5}]}
  ]
}` + "\n```\nGood luck!"

func TestExtractStudyPlan_Fenced(t *testing.T) {
	got := planning.ExtractStudyPlan(fencedPlan)
	if got.Empty() {
		t.Fatalf("expected plan, got reason %q issues %v", got.Reason, got.Issues)
	}
	if got.Source != planning.SourceEmbeddedJSON {
		t.Errorf("source = %q", got.Source)
	}

	want := &planning.StudyPlan{
		Summary:              "Four weeks of TOEIC prep",
		RecommendedMaterials: []string{"Official guide", "Vocabulary app"},
		DailyTasks: []planning.DayPlan{
			{
				Day:  1,
				Date: "2026-10-19",
				Tasks: []planning.PlannedTask{
					{Title: "Listening part 1", Description: "Photos, 20 questions", EstimatedMinutes: 30},
					{Title: "Memorize 50 words", Description: "Memorize 50 words. Use the app.", EstimatedMinutes: 25},
				},
			},
			{
				Day:   3,
				Date:  "not a date",
				Tasks: []planning.PlannedTask{{Title: "Mock test", EstimatedMinutes: 46}},
			},
		},
	}
	if diff := cmp.Diff(want, got.Plan); diff != "" {
		t.Errorf("plan mismatch (-want +got):\n%s", diff)
	}
	if got.Plan.TaskCount() != 3 {
		t.Errorf("TaskCount = %d, want 3", got.Plan.TaskCount())
	}
}

func TestExtractStudyPlan_BareObject(t *testing.T) {
	raw := `{"summary": "s", "dailyTasks": [{"day": 1, "date": "2026-10-19", "tasks": [{"title": "Read"}]}]}`
	got := planning.ExtractStudyPlan(raw)
	if got.Empty() {
		t.Fatalf("expected plan, got %q", got.Reason)
	}
	if got.Source != planning.SourceJSON {
		t.Errorf("source = %q, want %q", got.Source, planning.SourceJSON)
	}
	if got.Reason != planning.ReasonOK {
		t.Errorf("reason = %q, issues %v", got.Reason, got.Issues)
	}
}

func TestExtractStudyPlan_SchemaMismatch(t *testing.T) {
	raw := `{"dailyTasks": [{"day": 1, "tasks": [{"title": "Read", "estimatedMinutes": true}]}]}`
	got := planning.ExtractStudyPlan(raw)
	if got.Empty() {
		t.Fatalf("expected plan, got %q", got.Reason)
	}
	if got.Reason != planning.ReasonSchemaMismatch {
		t.Errorf("reason = %q, want %q", got.Reason, planning.ReasonSchemaMismatch)
	}
	if len(got.Issues) == 0 {
		t.Error("expected schema issues")
	}
	if got.Plan.DailyTasks[0].Tasks[0].EstimatedMinutes != 0 {
		t.Errorf("minutes = %d", got.Plan.DailyTasks[0].Tasks[0].EstimatedMinutes)
	}

	// recommendedMaterials as a string fails decoding into []string.
	raw = `{"dailyTasks": [{"day": "one", "tasks": [{"title": "Read"}]}], "recommendedMaterials": "book"}`
	got = planning.ExtractStudyPlan(raw)
	if !got.Empty() {
		t.Fatalf("expected empty plan, got %+v", got.Plan)
	}
	if got.Reason != planning.ReasonNoPlanFound {
		t.Errorf("reason = %q", got.Reason)
	}

	raw = `{"dailyTasks": [{"tasks": [{"description": "Read the intro. Then rest."}]}]}`
	got = planning.ExtractStudyPlan(raw)
	if got.Empty() {
		t.Fatalf("expected plan, got %q", got.Reason)
	}
	if got.Plan.DailyTasks[0].Tasks[0].Title != "Read the intro" {
		t.Errorf("title = %q", got.Plan.DailyTasks[0].Tasks[0].Title)
	}
}

func TestExtractStudyPlan_Empty(t *testing.T) {
	tests := []struct{ input, reason string }{
		{"", planning.ReasonBlankInput},
		{"   ", planning.ReasonBlankInput},
		{"I cannot help with that.", planning.ReasonNoPlanFound},
		{`["Read", "Write"]`, planning.ReasonNoPlanFound},
		{`{"summary": "no days"}`, planning.ReasonNothingUsable},
		{`{"dailyTasks": [{"tasks": []}]}`, planning.ReasonNothingUsable},
	}
	for _, tt := range tests {
		got := planning.ExtractStudyPlan(tt.input)
		if !got.Empty() {
			t.Errorf("ExtractStudyPlan(%q) returned a plan", tt.input)
		}
		if got.Reason != tt.reason {
			t.Errorf("ExtractStudyPlan(%q) reason = %q, want %q", tt.input, got.Reason, tt.reason)
		}
		if got.Source != planning.SourceEmpty {
			t.Errorf("ExtractStudyPlan(%q) source = %q", tt.input, got.Source)
		}
	}
}

func TestExtractStudyPlan_CommentMarkersInStrings(t *testing.T) {
	raw := `{
  "summary": "C basics, ]",
  "dailyTasks": [
    {
      "day": 1, // first day
      "tasks": [
        {"title": "Learn C /* comments */ syntax", "description": "Read https://go.dev/doc // later", "estimatedMinutes": 30},
        {"title": "Escaped \"quote\" /* kept */",},
      ],
    },
  ],
}`
	got := planning.ExtractStudyPlan(raw)
	if got.Empty() {
		t.Fatalf("expected plan, got reason %q issues %v", got.Reason, got.Issues)
	}
	if got.Plan.Summary != "C basics, ]" {
		t.Errorf("summary = %q", got.Plan.Summary)
	}
	want := []planning.PlannedTask{
		{Title: "Learn C /* comments */ syntax", Description: "Read https://go.dev/doc // later", EstimatedMinutes: 30},
		{Title: `Escaped "quote" /* kept */`},
	}
	if diff := cmp.Diff(want, got.Plan.DailyTasks[0].Tasks); diff != "" {
		t.Errorf("tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestExtractStudyPlan_TitleFromMultibyteDescription(t *testing.T) {
	sentence := strings.Repeat("漢", 40)
	raw := `{"dailyTasks": [{"day": 1, "tasks": [{"description": "` + sentence + `。続きの説明"}]}]}`
	got := planning.ExtractStudyPlan(raw)
	if got.Empty() {
		t.Fatalf("expected plan, got %q", got.Reason)
	}
	if title := got.Plan.DailyTasks[0].Tasks[0].Title; title != sentence {
		t.Errorf("title = %q, want the first sentence", title)
	}

	long := strings.Repeat("字", 100)
	raw = `{"dailyTasks": [{"day": 1, "tasks": [{"description": "` + long + `"}]}]}`
	got = planning.ExtractStudyPlan(raw)
	if title := got.Plan.DailyTasks[0].Tasks[0].Title; title != strings.Repeat("字", 80)+"…" {
		t.Errorf("title = %q, want 80 runes and an ellipsis", title)
	}
}

func TestLenientInt(t *testing.T) {
	tests := map[string]planning.LenientInt{
		`30`:     30,
		`29.6`:   30,
		`"45"`:   45,
		`"half"`: 0,
		`null`:   0,
	}
	for input, want := range tests {
		var got planning.LenientInt
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("unmarshal %s: %v", input, err)
		}
		if got != want {
			t.Errorf("LenientInt(%s) = %d, want %d", input, got, want)
		}
	}
}

func TestDayPlanDateOf(t *testing.T) {
	start := time.Date(2026, 10, 18, 15, 30, 0, 0, time.UTC)

	day := planning.DayPlan{Date: "2026-11-01"}
	if got := day.DateOf(start, 0); !got.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("explicit date = %v", got)
	}

	day = planning.DayPlan{Day: 3, Date: "soon"}
	if got := day.DateOf(start, 0); !got.Equal(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("day-number date = %v", got)
	}

	day = planning.DayPlan{}
	if got := day.DateOf(start, 4); !got.Equal(time.Date(2026, 10, 22, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("positional date = %v", got)
	}
}

func TestPlanFromTaskList(t *testing.T) {
	start := time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	plan := planning.PlanFromTaskList([]string{"Read", "Write", "Review"}, start)

	if plan.TaskCount() != 3 {
		t.Fatalf("TaskCount = %d", plan.TaskCount())
	}
	wantDates := []string{"2026-10-18", "2026-10-19", "2026-10-20"}
	for i, day := range plan.DailyTasks {
		if day.Date != wantDates[i] {
			t.Errorf("day %d date = %s, want %s", i, day.Date, wantDates[i])
		}
		if int(day.Day) != i+1 {
			t.Errorf("day %d number = %d", i, day.Day)
		}
	}
}
