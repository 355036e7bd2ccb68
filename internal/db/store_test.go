package db

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/balkashynov/taskflow/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "taskflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ============================================================
// Store initialization
// ============================================================

func TestOpenMemory(t *testing.T) {
	s, err := OpenMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if err := s.CreatePlan(&models.Plan{Name: "mem", StartAt: day(2025, 1, 1)}); err != nil {
		t.Fatalf("create plan in memory store: %v", err)
	}
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "taskflow.db")
	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.CreatePlan(&models.Plan{Name: "persisted", StartAt: day(2025, 1, 1)}); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	plans, err := s2.ListPlans(PlanFilter{})
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].Name != "persisted" {
		t.Fatalf("expected persisted plan after reopen, got %+v", plans)
	}
}

func TestDefaultPath(t *testing.T) {
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(path) != "taskflow.db" {
		t.Fatalf("unexpected default path %q", path)
	}
}

// ============================================================
// Plans
// ============================================================

func TestCreateAndGetPlan(t *testing.T) {
	s := newTestStore(t)
	end := day(2025, 1, 3)
	p := &models.Plan{Name: "Ship", StartAt: day(2025, 1, 1), EstimatedEndAt: &end, Urgent: true}
	if err := s.CreatePlan(p); err != nil {
		t.Fatal(err)
	}
	if p.ID == 0 {
		t.Fatal("expected non-zero ID")
	}

	got, err := s.GetPlan(p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != models.PlanNotStarted {
		t.Fatalf("expected default status not_started, got %q", got.Status)
	}
	if got.Priority != models.PriorityNormal {
		t.Fatalf("expected default priority normal, got %q", got.Priority)
	}
	if !got.Urgent || got.EstimatedEndAt == nil || !got.EstimatedEndAt.Equal(end) {
		t.Fatalf("unexpected plan: %+v", got)
	}
}

func TestGetPlanNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.GetPlan(999)
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("expected PersistenceError, got %T", err)
	}
}

func TestListPlansByStatus(t *testing.T) {
	s := newTestStore(t)
	s.CreatePlan(&models.Plan{Name: "a", StartAt: day(2025, 1, 2)})
	s.CreatePlan(&models.Plan{Name: "b", StartAt: day(2025, 1, 1), Status: models.PlanFinished})
	s.CreatePlan(&models.Plan{Name: "c", StartAt: day(2025, 1, 3), Status: models.PlanInProgress})

	plans, err := s.ListPlans(PlanFilter{Statuses: []models.PlanStatus{models.PlanNotStarted, models.PlanInProgress}})
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 2 || plans[0].Name != "a" || plans[1].Name != "c" {
		t.Fatalf("unexpected plans: %+v", plans)
	}
}

func TestDeletePlanLeavesTasks(t *testing.T) {
	s := newTestStore(t)
	p := &models.Plan{Name: "gone", StartAt: day(2025, 1, 1)}
	s.CreatePlan(p)
	task := &models.Task{Name: "gone", Date: day(2025, 1, 1), PlanID: &p.ID}
	s.CreateTask(task)

	if err := s.DeletePlan(p.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetPlan(p.ID); !IsNotFound(err) {
		t.Fatalf("deleted plan should not resolve, got %v", err)
	}
	got, err := s.GetTask(task.ID)
	if err != nil {
		t.Fatalf("task should survive plan deletion: %v", err)
	}
	if got.PlanID == nil || *got.PlanID != p.ID {
		t.Fatal("task should keep its plan reference")
	}
	if err := s.DeletePlan(p.ID); !IsNotFound(err) {
		t.Fatalf("second delete should report not found, got %v", err)
	}
}

// ============================================================
// Tasks
// ============================================================

func TestListTasksByDay(t *testing.T) {
	s := newTestStore(t)
	s.CreateTasks([]models.Task{
		{Name: "yesterday", Date: day(2025, 1, 1)},
		{Name: "today", Date: day(2025, 1, 2)},
		{Name: "done", Date: day(2025, 1, 2), Finished: true},
	})

	from, to := day(2025, 1, 2), day(2025, 1, 3)
	tasks, err := s.ListTasks(TaskFilter{From: &from, To: &to})
	if err != nil {
		t.Fatal(err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks today, got %d", len(tasks))
	}

	unfinished := false
	tasks, _ = s.ListTasks(TaskFilter{From: &from, To: &to, Finished: &unfinished})
	if len(tasks) != 1 || tasks[0].Name != "today" {
		t.Fatalf("unexpected unfinished tasks: %+v", tasks)
	}
}

func TestCreateTasksEmpty(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateTasks(nil); err != nil {
		t.Fatal(err)
	}
}

// ============================================================
// Pomodoros
// ============================================================

func TestCreatePomodoroRefusesSecondOpen(t *testing.T) {
	s := newTestStore(t)
	first := &models.Pomodoro{StartedAt: time.Now(), EstimatedMinutes: 25}
	if err := s.CreatePomodoro(first); err != nil {
		t.Fatal(err)
	}

	err := s.CreatePomodoro(&models.Pomodoro{StartedAt: time.Now(), EstimatedMinutes: 25})
	if !errors.Is(err, ErrOpenPomodoro) {
		t.Fatalf("expected ErrOpenPomodoro, got %v", err)
	}

	open, err := s.OpenPomodoro()
	if err != nil {
		t.Fatal(err)
	}
	if open == nil || open.ID != first.ID {
		t.Fatalf("expected first pomodoro open, got %+v", open)
	}

	now := time.Now()
	minutes := 25
	first.EndedAt = &now
	first.Status = models.PomodoroFinished
	first.FinishedMinutes = &minutes
	if err := s.SavePomodoro(first); err != nil {
		t.Fatal(err)
	}
	if open, _ := s.OpenPomodoro(); open != nil {
		t.Fatal("no pomodoro should be open after finalizing")
	}
	if err := s.CreatePomodoro(&models.Pomodoro{StartedAt: time.Now(), EstimatedMinutes: 25}); err != nil {
		t.Fatalf("create after finalize: %v", err)
	}
}

func TestUpdatePomodoroTask(t *testing.T) {
	s := newTestStore(t)
	p := &models.Pomodoro{StartedAt: time.Now(), EstimatedMinutes: 25}
	s.CreatePomodoro(p)

	taskID := uint(7)
	if err := s.UpdatePomodoroTask(p.ID, &taskID); err != nil {
		t.Fatal(err)
	}
	got, _ := s.GetPomodoro(p.ID)
	if got.TaskID == nil || *got.TaskID != 7 {
		t.Fatalf("expected task 7, got %v", got.TaskID)
	}

	if err := s.UpdatePomodoroTask(p.ID, nil); err != nil {
		t.Fatal(err)
	}
	got, _ = s.GetPomodoro(p.ID)
	if got.TaskID != nil {
		t.Fatal("expected task link cleared")
	}
}

// ============================================================
// Day markers
// ============================================================

func TestDayMarkerUnique(t *testing.T) {
	s := newTestStore(t)
	if err := s.CreateDayMarker(&models.DayMarker{Day: "2025-01-02", Date: day(2025, 1, 2), CreatedTasks: true}); err != nil {
		t.Fatal(err)
	}
	err := s.CreateDayMarker(&models.DayMarker{Day: "2025-01-02", Date: day(2025, 1, 2), CreatedTasks: true})
	if !errors.Is(err, ErrConstraintViolation) {
		t.Fatalf("expected ErrConstraintViolation, got %v", err)
	}

	m, err := s.FindDayMarker("2025-01-02")
	if err != nil || m == nil {
		t.Fatalf("expected marker, got %v %v", m, err)
	}
	if m, _ := s.FindDayMarker("2025-01-03"); m != nil {
		t.Fatal("unexpected marker for another day")
	}
}

func TestTransactionRollsBack(t *testing.T) {
	s := newTestStore(t)
	boom := errors.New("boom")
	err := s.Transaction(func(tx *Store) error {
		if err := tx.CreateTask(&models.Task{Name: "lost", Date: day(2025, 1, 1)}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	tasks, _ := s.ListTasks(TaskFilter{})
	if len(tasks) != 0 {
		t.Fatalf("expected rollback, found %d tasks", len(tasks))
	}
}

// ============================================================
// Settings
// ============================================================

func TestLoadSettingsSingleton(t *testing.T) {
	s := newTestStore(t)
	first, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if first.WorkMinutes != models.DefaultWorkMinutes || first.RelaxMinutes != models.DefaultRelaxMinutes {
		t.Fatalf("unexpected defaults: %+v", first)
	}

	first.WorkMinutes = 30
	if err := s.SaveSettings(first); err != nil {
		t.Fatal(err)
	}
	second, err := s.LoadSettings()
	if err != nil {
		t.Fatal(err)
	}
	if second.WorkMinutes != 30 {
		t.Fatalf("LoadSettings must not reset saved values, got %d", second.WorkMinutes)
	}

	var count int64
	s.db.Model(&models.Settings{}).Count(&count)
	if count != 1 {
		t.Fatalf("expected exactly one settings row, got %d", count)
	}
}

// ============================================================
// Search
// ============================================================

func TestSearchRanksMatches(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"Read docs", "read", "Spread", "Deep reading", "Cook"} {
		if err := s.CreateTask(&models.Task{Name: name, Date: day(2025, 1, 1)}); err != nil {
			t.Fatal(err)
		}
	}
	s.CreateTask(&models.Task{Name: "Gym", Date: day(2025, 1, 1), Note: "read the plan first"})

	tasks, err := s.SearchTasks("READ", 0)
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, task := range tasks {
		names = append(names, task.Name)
	}
	want := []string{"read", "Read docs", "Spread", "Deep reading", "Gym"}
	if len(names) != len(want) {
		t.Fatalf("got %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("got %v, want %v", names, want)
		}
	}

	limited, _ := s.SearchTasks("read", 2)
	if len(limited) != 2 {
		t.Fatalf("limit ignored: %d results", len(limited))
	}
}

func TestSearchPlansSkipsDeleted(t *testing.T) {
	s := newTestStore(t)
	keep := &models.Plan{Name: "Marathon", StartAt: day(2025, 1, 1)}
	gone := &models.Plan{Name: "Marathon prep", StartAt: day(2025, 1, 1)}
	s.CreatePlan(keep)
	s.CreatePlan(gone)
	if err := s.DeletePlan(gone.ID); err != nil {
		t.Fatal(err)
	}

	plans, err := s.SearchPlans("marathon", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(plans) != 1 || plans[0].ID != keep.ID {
		t.Fatalf("unexpected plans: %+v", plans)
	}
}
