package domain

import "testing"

func TestNewTaskBoard(t *testing.T) {
	tasks := []Task{
		{ID: "1", Status: TaskDone},
		{ID: "2", Status: TaskTodo},
		{ID: "3", Status: TaskInProgress},
		{ID: "4", Status: TaskTodo},
	}
	b := NewTaskBoard("p1", tasks)
	if len(b.Todo) != 2 || b.Todo[0].ID != "2" || b.Todo[1].ID != "4" {
		t.Fatalf("unexpected todo column: %+v", b.Todo)
	}
	if len(b.InProgress) != 1 || len(b.Done) != 1 {
		t.Fatalf("unexpected columns: %+v", b)
	}
	if b.Completed != 1 || b.Total != 4 {
		t.Fatalf("expected 1/4, got %d/%d", b.Completed, b.Total)
	}

	empty := NewTaskBoard("p2", nil)
	if empty.Todo == nil || empty.InProgress == nil || empty.Done == nil || empty.Total != 0 {
		t.Fatalf("empty board should have non-nil columns: %+v", empty)
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, s := range TaskStatuses {
		if !ValidTaskStatus(s) {
			t.Fatalf("%q should be valid", s)
		}
	}
	if ValidTaskStatus("blocked") || ValidTaskStatus("") {
		t.Fatal("unexpected valid status")
	}
}
