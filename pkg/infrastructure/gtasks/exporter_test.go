package gtasks_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/oauth2"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/bskcorona-github/studyflow/pkg/domain/study"
	"github.com/bskcorona-github/studyflow/pkg/infrastructure/gtasks"
)

type fakeTasksAPI struct {
	mu     sync.Mutex
	lists  []string
	tasks  []tasks.Task
	status int
}

func (f *fakeTasksAPI) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /tasks/v1/users/@me/lists", func(w http.ResponseWriter, r *http.Request) {
		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error":{"code":401,"message":"unauthorized"}}`))
			return
		}
		var list tasks.TaskList
		if err := json.NewDecoder(r.Body).Decode(&list); err != nil {
			t.Errorf("decode list: %v", err)
		}
		f.mu.Lock()
		f.lists = append(f.lists, list.Title)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"list-1","title":"` + list.Title + `"}`))
	})
	mux.HandleFunc("POST /tasks/v1/lists/{list}/tasks", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("list") != "list-1" {
			t.Errorf("list = %q", r.PathValue("list"))
		}
		if r.Header.Get("Authorization") != "Bearer at" {
			t.Errorf("authorization = %q", r.Header.Get("Authorization"))
		}
		var task tasks.Task
		if err := json.NewDecoder(r.Body).Decode(&task); err != nil {
			t.Errorf("decode task: %v", err)
		}
		f.mu.Lock()
		f.tasks = append(f.tasks, task)
		f.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"t"}`))
	})
	return mux
}

func goal() *study.Goal {
	d1 := time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)
	return &study.Goal{
		Title: "TOEIC 800",
		Schedules: []study.Schedule{
			{Date: d1, Tasks: []study.Task{
				{Title: "Listening", Description: "Part 1", EstimatedMinutes: 30, Status: study.StatusDone},
				{Title: "Vocabulary", Status: study.StatusPending},
			}},
			{Date: d1.AddDate(0, 0, 1), Tasks: []study.Task{{Title: "Mock test", EstimatedMinutes: 60}}},
		},
	}
}

func token(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(&oauth2.Token{AccessToken: "at", TokenType: "Bearer", Expiry: time.Now().Add(time.Hour)})
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func TestExporter_ExportGoal(t *testing.T) {
	api := &fakeTasksAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	exp := gtasks.NewExporterWithEndpoint(&oauth2.Config{}, srv.URL+"/")
	res, err := exp.ExportGoal(context.Background(), token(t), goal())
	if err != nil {
		t.Fatalf("ExportGoal: %v", err)
	}
	if res.ListID != "list-1" || res.Exported != 3 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Token) == 0 {
		t.Error("expected current token in result")
	}

	if diff := cmp.Diff([]string{"TOEIC 800"}, api.lists); diff != "" {
		t.Errorf("lists (-want +got):\n%s", diff)
	}
	type sent struct{ Title, Notes, Due, Status string }
	var got []sent
	for _, task := range api.tasks {
		got = append(got, sent{task.Title, task.Notes, task.Due, task.Status})
	}
	want := []sent{
		{"Listening", "Part 1\nEstimated: 30 min", "2026-10-18T00:00:00Z", "completed"},
		{"Vocabulary", "", "2026-10-18T00:00:00Z", ""},
		{"Mock test", "Estimated: 60 min", "2026-10-19T00:00:00Z", ""},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("tasks (-want +got):\n%s", diff)
	}
}

func TestExporter_Errors(t *testing.T) {
	exp := gtasks.NewExporter(&oauth2.Config{})
	if _, err := exp.ExportGoal(context.Background(), []byte("not json"), goal()); err == nil {
		t.Error("expected error for corrupt token")
	}

	api := &fakeTasksAPI{status: http.StatusUnauthorized}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	exp = gtasks.NewExporterWithEndpoint(&oauth2.Config{}, srv.URL+"/")
	_, err := exp.ExportGoal(context.Background(), token(t), goal())
	if !errors.Is(err, study.ErrNotConnected) {
		t.Errorf("err = %v, want ErrNotConnected", err)
	}
}
