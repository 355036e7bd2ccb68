package stats

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/balkashynov/taskflow/internal/db"
	"github.com/balkashynov/taskflow/internal/models"
)

// Wednesday
var now = time.Date(2025, 3, 12, 15, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *db.Store {
	t.Helper()
	s, err := db.Open(filepath.Join(t.TempDir(), "taskflow.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestBounds(t *testing.T) {
	day := func(m time.Month, d int) time.Time { return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC) }

	tests := []struct {
		rng      Range
		now      time.Time
		from, to time.Time
	}{
		{RangeToday, now, day(3, 12), day(3, 13)},
		{RangeWeek, now, day(3, 10), day(3, 17)},
		{RangeWeek, time.Date(2025, 3, 16, 23, 0, 0, 0, time.UTC), day(3, 10), day(3, 17)}, // Sunday
		{RangeWeek, time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC), day(3, 10), day(3, 17)},  // Monday
		{RangeMonth, now, day(3, 1), day(4, 1)},
		{RangeMonth, time.Date(2025, 12, 31, 8, 0, 0, 0, time.UTC), day(12, 1), time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(string(tt.rng)+" "+tt.now.Format("Jan 02"), func(t *testing.T) {
			from, to := tt.rng.Bounds(tt.now)
			if !from.Equal(tt.from) || !to.Equal(tt.to) {
				t.Fatalf("got [%v, %v), want [%v, %v)", from, to, tt.from, tt.to)
			}
		})
	}

	if from, to := RangeTotal.Bounds(now); from != nil || to != nil {
		t.Fatal("total range should be unbounded")
	}
}

func TestParseRange(t *testing.T) {
	for in, want := range map[string]Range{"": RangeToday, "WEEK": RangeWeek, "month": RangeMonth, "all": RangeTotal} {
		got, err := ParseRange(in)
		if err != nil || got != want {
			t.Errorf("ParseRange(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseRange("year"); err == nil {
		t.Error("expected error for unknown range")
	}
}

func seed(t *testing.T, s *db.Store) {
	t.Helper()
	closed := func(start time.Time, status models.PomodoroStatus, minutes int) {
		end := start.Add(time.Duration(minutes) * time.Minute)
		p := &models.Pomodoro{StartedAt: start, EndedAt: &end, Status: status, EstimatedMinutes: 25, FinishedMinutes: &minutes}
		if err := s.CreatePomodoro(p); err != nil {
			t.Fatal(err)
		}
	}
	closed(now.Add(-time.Hour), models.PomodoroFinished, 25)
	closed(now.Add(-2*time.Hour), models.PomodoroAbandoned, 7)
	closed(now.AddDate(0, 0, -2), models.PomodoroFinished, 25)  // Monday
	closed(now.AddDate(0, -1, 0), models.PomodoroFinished, 25) // last month

	// An open record is not counted
	if err := s.CreatePomodoro(&models.Pomodoro{StartedAt: now, EstimatedMinutes: 25}); err != nil {
		t.Fatal(err)
	}

	today := models.StartOfDay(now)
	for _, task := range []models.Task{
		{Name: "a", Date: today, Finished: true},
		{Name: "b", Date: today},
		{Name: "c", Date: today.AddDate(0, 0, -1)},
	} {
		task := task
		if err := s.CreateTask(&task); err != nil {
			t.Fatal(err)
		}
	}

	for _, plan := range []models.Plan{
		{Name: "p1", StartAt: today, Status: models.PlanInProgress},
		{Name: "p2", StartAt: today.AddDate(0, 0, -1), Status: models.PlanDelayed},
		{Name: "p3", StartAt: today.AddDate(-1, 0, 0), Status: models.PlanFinished},
	} {
		plan := plan
		if err := s.CreatePlan(&plan); err != nil {
			t.Fatal(err)
		}
	}
}

func counts(buckets []Bucket) map[string]int {
	m := map[string]int{}
	for _, b := range buckets {
		m[b.Label] = b.Count
	}
	return m
}

func TestComputeToday(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	r, err := Compute(s, RangeToday, now)
	if err != nil {
		t.Fatal(err)
	}
	if got := counts(r.Pomodoros); got["Finished"] != 1 || got["Abandoned"] != 1 || len(got) != 2 {
		t.Fatalf("unexpected pomodoro buckets: %+v", r.Pomodoros)
	}
	if r.FocusMinutes != 32 {
		t.Fatalf("expected 32 focus minutes, got %d", r.FocusMinutes)
	}
	if got := counts(r.Tasks); got["Finished"] != 1 || got["Unfinished"] != 1 {
		t.Fatalf("unexpected task buckets: %+v", r.Tasks)
	}
	if len(r.Plans) != 1 || r.Plans[0].Label != "In Progress" {
		t.Fatalf("unexpected plan buckets: %+v", r.Plans)
	}
}

func TestComputeDropsEmptyBuckets(t *testing.T) {
	s := newTestStore(t)
	today := models.StartOfDay(now)
	if err := s.CreateTask(&models.Task{Name: "only", Date: today}); err != nil {
		t.Fatal(err)
	}

	r, err := Compute(s, RangeToday, now)
	if err != nil {
		t.Fatal(err)
	}
	if len(r.Pomodoros) != 0 || len(r.Plans) != 0 {
		t.Fatalf("expected empty sections, got %+v", r)
	}
	if len(r.Tasks) != 1 || r.Tasks[0].Label != "Unfinished" {
		t.Fatalf("finished bucket should be dropped: %+v", r.Tasks)
	}
}

func TestComputeWiderRanges(t *testing.T) {
	s := newTestStore(t)
	seed(t, s)

	week, _ := Compute(s, RangeWeek, now)
	if got := counts(week.Pomodoros); got["Finished"] != 2 {
		t.Fatalf("week: expected 2 finished, got %+v", week.Pomodoros)
	}
	if got := counts(week.Tasks); got["Unfinished"] != 2 {
		t.Fatalf("week: expected 2 unfinished tasks, got %+v", week.Tasks)
	}

	total, _ := Compute(s, RangeTotal, now)
	if got := counts(total.Pomodoros); got["Finished"] != 3 || got["Abandoned"] != 1 {
		t.Fatalf("total: unexpected pomodoros %+v", total.Pomodoros)
	}
	if got := counts(total.Plans); got["Finished"] != 1 || got["Delayed"] != 1 || got["In Progress"] != 1 {
		t.Fatalf("total: unexpected plans %+v", total.Plans)
	}
}

func TestRender(t *testing.T) {
	out := Render(Report{Range: RangeTotal}, 60)
	if !strings.Contains(out, "No data available") {
		t.Fatalf("empty report should say so:\n%s", out)
	}

	r := Report{
		Range:        RangeToday,
		Pomodoros:    []Bucket{{Label: "Finished", Count: 3, Kind: KindGood}},
		Tasks:        []Bucket{{Label: "Unfinished", Count: 2, Kind: KindActive}},
		FocusMinutes: 75,
	}
	out = Render(r, 60)
	for _, want := range []string{"Stats: Today", "Pomodoros", "75 min focused", "Finished 3", "Unfinished 2", "Plans"} {
		if !strings.Contains(out, want) {
			t.Errorf("render missing %q:\n%s", want, out)
		}
	}
}
