package planner

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

var today = time.Date(2025, 3, 12, 10, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *db.Store) {
	t.Helper()
	store, err := db.Open(filepath.Join(t.TempDir(), "taskflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return NewService(store).WithClock(func() time.Time { return today }), store
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }

// ============================================================
// Plans
// ============================================================

func TestCreatePlan(t *testing.T) {
	svc, _ := newTestService(t)

	plan, err := svc.CreatePlan(CreatePlanRequest{
		Name:           "  Learn Go  ",
		Priority:       models.PriorityHigh,
		EstimatedEndAt: timePtr(today.AddDate(0, 0, 6)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if plan.Name != "Learn Go" || plan.Status != models.PlanNotStarted || plan.Priority != models.PriorityHigh {
		t.Fatalf("unexpected plan: %+v", plan)
	}
	if !plan.StartAt.Equal(models.StartOfDay(today)) {
		t.Fatalf("start should default to today, got %v", plan.StartAt)
	}
	if plan.EndedAt != nil {
		t.Fatal("new plan must not have an end time")
	}
}

func TestCreatePlanValidation(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreatePlan(CreatePlanRequest{Name: "   "}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty name, got %v", err)
	}
	_, err := svc.CreatePlan(CreatePlanRequest{
		Name:           "Backwards",
		StartAt:        today,
		EstimatedEndAt: timePtr(today.AddDate(0, 0, -1)),
	})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for end before start, got %v", err)
	}

	// Same day end is a valid single-day window
	if _, err := svc.CreatePlan(CreatePlanRequest{Name: "One day", EstimatedEndAt: timePtr(today.Add(3 * time.Hour))}); err != nil {
		t.Fatal(err)
	}
}

func TestPlanLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Lifecycle"})

	finished, err := svc.FinishPlan(plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if finished.Status != models.PlanFinished || finished.EndedAt == nil {
		t.Fatalf("finish: %+v", finished)
	}
	if _, err := svc.AbandonPlan(plan.ID); !errors.Is(err, ErrPlanClosed) {
		t.Fatalf("abandoning a finished plan should fail, got %v", err)
	}

	reopened, err := svc.ReopenPlan(plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Status != models.PlanInProgress || reopened.EndedAt != nil {
		t.Fatalf("reopen: %+v", reopened)
	}

	abandoned, err := svc.AbandonPlan(plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if abandoned.Status != models.PlanAbandoned || abandoned.EndedAt == nil {
		t.Fatalf("abandon: %+v", abandoned)
	}
	if _, err := svc.TogglePlanFinished(plan.ID); !errors.Is(err, ErrPlanClosed) {
		t.Fatalf("toggling an abandoned plan should fail, got %v", err)
	}
}

func TestTogglePlanFinished(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Toggle"})

	p, _ := svc.TogglePlanFinished(plan.ID)
	if p.Status != models.PlanFinished || p.EndedAt == nil {
		t.Fatalf("first toggle: %+v", p)
	}
	p, _ = svc.TogglePlanFinished(plan.ID)
	if p.Status != models.PlanInProgress || p.EndedAt != nil {
		t.Fatalf("second toggle: %+v", p)
	}
}

func TestDelayPlan(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Slow", EstimatedEndAt: timePtr(today.AddDate(0, 0, 2))})

	newEnd := today.AddDate(0, 0, 10)
	delayed, err := svc.DelayPlan(plan.ID, &newEnd)
	if err != nil {
		t.Fatal(err)
	}
	if delayed.Status != models.PlanDelayed || !delayed.IsActive() {
		t.Fatalf("unexpected delayed plan: %+v", delayed)
	}
	if !delayed.CoversDay(today.AddDate(0, 0, 9)) {
		t.Fatal("delayed plan should cover its new window")
	}

	if _, err := svc.DelayPlan(plan.ID, timePtr(today.AddDate(0, 0, -3))); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}

	svc.FinishPlan(plan.ID)
	if _, err := svc.DelayPlan(plan.ID, nil); !errors.Is(err, ErrPlanClosed) {
		t.Fatalf("expected ErrPlanClosed, got %v", err)
	}
}

func TestUpdatePlanNotes(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Notes"})

	p, err := svc.UpdatePlanNotes(plan.ID, NotesPatch{Note: strPtr("read chapter 3")})
	if err != nil {
		t.Fatal(err)
	}
	if p.Note != "read chapter 3" {
		t.Fatalf("note not saved: %+v", p)
	}

	svc.FinishPlan(plan.ID)
	if _, err := svc.UpdatePlanNotes(plan.ID, NotesPatch{Note: strPtr("late edit")}); !errors.Is(err, ErrPlanClosed) {
		t.Fatalf("closed plan note edit should fail, got %v", err)
	}
	p, err = svc.UpdatePlanNotes(plan.ID, NotesPatch{Review: strPtr("went well")})
	if err != nil {
		t.Fatal(err)
	}
	if p.Review != "went well" || p.Note != "read chapter 3" {
		t.Fatalf("review not saved: %+v", p)
	}
}

func TestListPlansGroups(t *testing.T) {
	svc, _ := newTestService(t)
	a, _ := svc.CreatePlan(CreatePlanRequest{Name: "A", StartAt: today.AddDate(0, 0, 1)})
	b, _ := svc.CreatePlan(CreatePlanRequest{Name: "B"})
	c, _ := svc.CreatePlan(CreatePlanRequest{Name: "C"})
	svc.AbandonPlan(c.ID)

	groups, err := svc.ListPlans()
	if err != nil {
		t.Fatal(err)
	}
	if len(groups.Active) != 2 || groups.Active[0].ID != b.ID || groups.Active[1].ID != a.ID {
		t.Fatalf("unexpected active plans: %+v", groups.Active)
	}
	if len(groups.Closed) != 1 || groups.Closed[0].ID != c.ID {
		t.Fatalf("unexpected closed plans: %+v", groups.Closed)
	}
}

func TestDeletePlanKeepsTasks(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Doomed"})
	task, _ := svc.CreateTask(CreateTaskRequest{Name: "survivor", PlanID: &plan.ID})

	if err := svc.DeletePlan(plan.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.GetPlan(plan.ID); !db.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	got, err := svc.GetTask(task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PlanID == nil || *got.PlanID != plan.ID {
		t.Fatal("task should keep its dangling plan ID")
	}
	resolved, err := svc.TaskPlan(got)
	if err != nil || resolved != nil {
		t.Fatalf("dangling plan should resolve to nil, got %+v %v", resolved, err)
	}
}

func TestCatchUpToday(t *testing.T) {
	svc, store := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Late plan", Priority: models.PriorityHigh})

	// Day not materialized yet: the daily run owns it
	task, err := svc.CatchUpToday(plan.ID)
	if err != nil || task != nil {
		t.Fatalf("expected no task before materialization, got %+v %v", task, err)
	}

	day := models.StartOfDay(today)
	if err := store.CreateDayMarker(&models.DayMarker{Day: models.DayKey(day), Date: day}); err != nil {
		t.Fatal(err)
	}

	task, err = svc.CatchUpToday(plan.ID)
	if err != nil {
		t.Fatal(err)
	}
	if task == nil || task.Name != "Late plan" || task.Priority != models.PriorityHigh || !task.Date.Equal(day) {
		t.Fatalf("unexpected task: %+v", task)
	}
	if got, _ := svc.GetPlan(plan.ID); got.Status != models.PlanInProgress {
		t.Fatalf("plan should be in progress, got %s", got.Status)
	}

	again, err := svc.CatchUpToday(plan.ID)
	if err != nil || again != nil {
		t.Fatalf("second catch up should be a no-op, got %+v %v", again, err)
	}

	future, _ := svc.CreatePlan(CreatePlanRequest{Name: "Later", StartAt: today.AddDate(0, 0, 2)})
	if task, err := svc.CatchUpToday(future.ID); err != nil || task != nil {
		t.Fatalf("future plan should not get a task today, got %+v %v", task, err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestCreateTask(t *testing.T) {
	svc, _ := newTestService(t)

	task, err := svc.CreateTask(CreateTaskRequest{Name: "Write tests", Urgent: true})
	if err != nil {
		t.Fatal(err)
	}
	if !task.Date.Equal(models.StartOfDay(today)) || task.Priority != models.PriorityNormal || !task.Urgent {
		t.Fatalf("unexpected task: %+v", task)
	}

	missing := uint(999)
	if _, err := svc.CreateTask(CreateTaskRequest{Name: "orphan", PlanID: &missing}); !db.IsNotFound(err) {
		t.Fatalf("expected not found for missing plan, got %v", err)
	}
	if _, err := svc.CreateTask(CreateTaskRequest{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestTaskFinishAndNotes(t *testing.T) {
	svc, _ := newTestService(t)
	task, _ := svc.CreateTask(CreateTaskRequest{Name: "Toggle me"})

	got, _ := svc.ToggleTaskFinished(task.ID)
	if !got.Finished {
		t.Fatal("expected finished")
	}
	got, _ = svc.SetTaskFinished(task.ID, false)
	if got.Finished {
		t.Fatal("expected open")
	}

	got, err := svc.UpdateTaskNotes(task.ID, NotesPatch{Note: strPtr(" n "), Review: strPtr("r")})
	if err != nil {
		t.Fatal(err)
	}
	if got.Note != "n" || got.Review != "r" {
		t.Fatalf("unexpected notes: %+v", got)
	}

	if err := svc.DeleteTask(task.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.ToggleTaskFinished(task.ID); !db.IsNotFound(err) {
		t.Fatalf("expected not found after delete, got %v", err)
	}
}

func TestCheckStartable(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Plan"})
	open, _ := svc.CreateTask(CreateTaskRequest{Name: "open", PlanID: &plan.ID})
	done, _ := svc.CreateTask(CreateTaskRequest{Name: "done"})
	svc.SetTaskFinished(done.ID, true)

	if _, err := svc.CheckStartable(open.ID); err != nil {
		t.Fatalf("open task should be startable: %v", err)
	}
	if _, err := svc.CheckStartable(done.ID); !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("finished task: expected ErrTaskLocked, got %v", err)
	}

	svc.AbandonPlan(plan.ID)
	if _, err := svc.CheckStartable(open.ID); !errors.Is(err, ErrTaskLocked) {
		t.Fatalf("abandoned plan: expected ErrTaskLocked, got %v", err)
	}
}

func TestTodayBoard(t *testing.T) {
	svc, _ := newTestService(t)
	plan, _ := svc.CreatePlan(CreatePlanRequest{Name: "Dropped"})

	svc.CreateTask(CreateTaskRequest{Name: "fire", Priority: models.PriorityHigh, Urgent: true})
	svc.CreateTask(CreateTaskRequest{Name: "star", Priority: models.PriorityHigh})
	svc.CreateTask(CreateTaskRequest{Name: "alarm", Urgent: true})
	svc.CreateTask(CreateTaskRequest{Name: "plain", PlanID: &plan.ID})
	finished, _ := svc.CreateTask(CreateTaskRequest{Name: "done", Priority: models.PriorityHigh})
	svc.SetTaskFinished(finished.ID, true)
	svc.CreateTask(CreateTaskRequest{Name: "tomorrow", Date: today.AddDate(0, 0, 1)})
	svc.AbandonPlan(plan.ID)

	board, err := svc.TodayBoard(today)
	if err != nil {
		t.Fatal(err)
	}
	if board.Len() != 5 {
		t.Fatalf("expected 5 tasks today, got %d", board.Len())
	}

	want := map[Quadrant]string{
		QuadrantHighUrgent: "fire",
		QuadrantHigh:       "star",
		QuadrantUrgent:     "alarm",
		QuadrantOthers:     "plain",
	}
	for q, name := range want {
		tasks := board.Open[q]
		if len(tasks) != 1 || tasks[0].Name != name {
			t.Errorf("%s: expected [%s], got %+v", q, name, tasks)
		}
	}
	if len(board.Finished) != 1 || board.Finished[0].Name != "done" {
		t.Fatalf("unexpected finished list: %+v", board.Finished)
	}

	plain := board.Open[QuadrantOthers][0]
	if !plain.Locked || plain.PlanName != "Dropped" {
		t.Fatalf("task of abandoned plan should be locked: %+v", plain)
	}
}

func TestParseHelpers(t *testing.T) {
	if ParsePriority("HIGH") != models.PriorityHigh || ParsePriority("whatever") != models.PriorityNormal {
		t.Fatal("unexpected priority parsing")
	}
	if id, err := ParseID("#42"); err != nil || id != 42 {
		t.Fatalf("ParseID(#42) = %d, %v", id, err)
	}
	for _, bad := range []string{"", "0", "-1", "12abc"} {
		if _, err := ParseID(bad); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("ParseID(%q): expected ErrInvalidInput, got %v", bad, err)
		}
	}
}
