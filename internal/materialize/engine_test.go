package materialize

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

func newTestStore(t *testing.T) (*db.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "taskflow.db")
	s, err := db.Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func at(day, hour int) time.Time {
	return time.Date(2025, 1, day, hour, 0, 0, 0, time.UTC)
}

func ptr(t time.Time) *time.Time { return &t }

func createPlan(t *testing.T, s *db.Store, p models.Plan) models.Plan {
	t.Helper()
	if err := s.CreatePlan(&p); err != nil {
		t.Fatalf("create plan: %v", err)
	}
	return p
}

func TestMaterializeTodayIsIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	plan := createPlan(t, s, models.Plan{Name: "Read", StartAt: at(1, 9), EstimatedEndAt: ptr(at(3, 9))})
	e := NewEngine(s)
	ctx := context.Background()

	res, err := e.MaterializeToday(ctx, at(2, 8))
	if err != nil {
		t.Fatal(err)
	}
	if res.AlreadyMaterialized {
		t.Fatal("first call should materialize")
	}
	if len(res.CreatedTasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(res.CreatedTasks))
	}
	task := res.CreatedTasks[0]
	if task.Name != "Read" || !task.Date.Equal(at(2, 0)) || task.PlanID == nil || *task.PlanID != plan.ID {
		t.Fatalf("unexpected task: %+v", task)
	}
	if len(res.PromotedPlans) != 1 || res.PromotedPlans[0].Status != models.PlanInProgress {
		t.Fatalf("expected plan promoted, got %+v", res.PromotedPlans)
	}
	if res.Marker == nil || res.Marker.Day != "2025-01-02" {
		t.Fatalf("expected marker for 2025-01-02, got %+v", res.Marker)
	}

	again, err := e.MaterializeToday(ctx, at(2, 22))
	if err != nil {
		t.Fatal(err)
	}
	if !again.AlreadyMaterialized || len(again.CreatedTasks) != 0 || len(again.PromotedPlans) != 0 {
		t.Fatalf("second call should be a no-op, got %+v", again)
	}

	tasks, _ := s.ListTasks(db.TaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected 1 stored task, got %d", len(tasks))
	}
	markers, _ := s.ListDayMarkers()
	if len(markers) != 1 {
		t.Fatalf("expected 1 marker, got %d", len(markers))
	}
}

func TestMaterializeWindowBoundaries(t *testing.T) {
	s, _ := newTestStore(t)
	createPlan(t, s, models.Plan{Name: "today only", StartAt: at(5, 14), EstimatedEndAt: ptr(at(5, 18))})
	createPlan(t, s, models.Plan{Name: "no end", StartAt: at(5, 7)})
	createPlan(t, s, models.Plan{Name: "ended yesterday", StartAt: at(1, 0), EstimatedEndAt: ptr(at(4, 23))})
	createPlan(t, s, models.Plan{Name: "starts tomorrow", StartAt: at(6, 0)})
	createPlan(t, s, models.Plan{Name: "finished", StartAt: at(5, 0), Status: models.PlanFinished, EndedAt: ptr(at(5, 1))})
	createPlan(t, s, models.Plan{Name: "abandoned", StartAt: at(5, 0), Status: models.PlanAbandoned, EndedAt: ptr(at(5, 1))})
	createPlan(t, s, models.Plan{Name: "delayed", StartAt: at(4, 0), EstimatedEndAt: ptr(at(6, 0)), Status: models.PlanDelayed, Priority: models.PriorityHigh, Urgent: true})

	res, err := NewEngine(s).MaterializeToday(context.Background(), at(5, 12))
	if err != nil {
		t.Fatal(err)
	}

	names := map[string]models.Task{}
	for _, task := range res.CreatedTasks {
		names[task.Name] = task
	}
	for _, want := range []string{"today only", "no end", "delayed"} {
		if _, ok := names[want]; !ok {
			t.Errorf("expected task for %q", want)
		}
	}
	if len(names) != 3 {
		t.Fatalf("expected exactly 3 tasks, got %v", names)
	}
	delayed := names["delayed"]
	if delayed.Priority != models.PriorityHigh || !delayed.Urgent {
		t.Fatalf("task should copy priority and urgency, got %+v", delayed)
	}
	if names["no end"].Priority != models.PriorityNormal {
		t.Fatal("tasks default to normal priority")
	}
}

func TestMaterializeWithNoEligiblePlansStillMarksDay(t *testing.T) {
	s, _ := newTestStore(t)
	e := NewEngine(s)

	res, err := e.MaterializeToday(context.Background(), at(9, 9))
	if err != nil {
		t.Fatal(err)
	}
	if res.Marker == nil || len(res.CreatedTasks) != 0 {
		t.Fatalf("expected marker and no tasks, got %+v", res)
	}

	// A plan added later the same day does not produce a task until tomorrow
	createPlan(t, s, models.Plan{Name: "late", StartAt: at(9, 15), EstimatedEndAt: ptr(at(10, 0))})
	res, _ = e.MaterializeToday(context.Background(), at(9, 16))
	if !res.AlreadyMaterialized || len(res.CreatedTasks) != 0 {
		t.Fatalf("expected no-op, got %+v", res)
	}
	res, _ = e.MaterializeToday(context.Background(), at(10, 8))
	if len(res.CreatedTasks) != 1 {
		t.Fatalf("expected task next day, got %+v", res)
	}
}

func TestPromotionRunsEveryCall(t *testing.T) {
	s, _ := newTestStore(t)
	e := NewEngine(s)
	ctx := context.Background()

	if _, err := e.MaterializeToday(ctx, at(3, 8)); err != nil {
		t.Fatal(err)
	}
	// Created after the day was materialized, but already started
	plan := createPlan(t, s, models.Plan{Name: "late start", StartAt: at(3, 10)})

	res, err := e.MaterializeToday(ctx, at(3, 11))
	if err != nil {
		t.Fatal(err)
	}
	if len(res.PromotedPlans) != 1 || res.PromotedPlans[0].ID != plan.ID {
		t.Fatalf("expected promotion despite marker, got %+v", res.PromotedPlans)
	}
	got, _ := s.GetPlan(plan.ID)
	if got.Status != models.PlanInProgress || got.EndedAt != nil {
		t.Fatalf("unexpected plan after promotion: %+v", got)
	}
}

func TestLosingRaceDiscardsTasks(t *testing.T) {
	s, path := newTestStore(t)
	createPlan(t, s, models.Plan{Name: "contested", StartAt: at(2, 0)})

	other, err := db.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer other.Close()

	// Another handle materializes the same day between our check and our write
	e := NewEngine(s, withAfterCheck(func() {
		if _, err := NewEngine(other).MaterializeToday(context.Background(), at(2, 9)); err != nil {
			t.Errorf("winner: %v", err)
		}
	}))

	res, err := e.MaterializeToday(context.Background(), at(2, 9))
	if err != nil {
		t.Fatalf("losing writer should not fail: %v", err)
	}
	if !res.AlreadyMaterialized || len(res.CreatedTasks) != 0 {
		t.Fatalf("losing writer should report already materialized, got %+v", res)
	}

	tasks, _ := s.ListTasks(db.TaskFilter{})
	if len(tasks) != 1 {
		t.Fatalf("expected only the winner's task, got %d", len(tasks))
	}
	markers, _ := s.ListDayMarkers()
	if len(markers) != 1 {
		t.Fatalf("expected one marker, got %d", len(markers))
	}
}

func TestConcurrentCallsCreateOneMarker(t *testing.T) {
	s, _ := newTestStore(t)
	createPlan(t, s, models.Plan{Name: "parallel", StartAt: at(2, 0)})
	e := NewEngine(s)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.MaterializeToday(context.Background(), at(2, 9)); err != nil {
				t.Errorf("materialize: %v", err)
			}
		}()
	}
	wg.Wait()

	tasks, _ := s.ListTasks(db.TaskFilter{})
	markers, _ := s.ListDayMarkers()
	if len(tasks) != 1 || len(markers) != 1 {
		t.Fatalf("expected 1 task and 1 marker, got %d and %d", len(tasks), len(markers))
	}
}

func TestMaterializeCancelledContext(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewEngine(s).MaterializeToday(ctx, at(2, 9)); err == nil {
		t.Fatal("expected context error")
	}
	markers, _ := s.ListDayMarkers()
	if len(markers) != 0 {
		t.Fatal("cancelled call must not write a marker")
	}
}

func TestTasksForDay(t *testing.T) {
	plans := []models.Plan{
		{ID: 1, Name: "a", StartAt: at(1, 0), EstimatedEndAt: ptr(at(2, 0))},
		{ID: 2, Name: "b", StartAt: at(1, 0), Status: models.PlanAbandoned},
	}
	tasks := TasksForDay(plans, at(1, 13))
	if len(tasks) != 1 || *tasks[0].PlanID != 1 {
		t.Fatalf("unexpected tasks: %+v", tasks)
	}
}
