package domain

import "time"

const (
	TaskTodo       = "todo"
	TaskInProgress = "in-progress"
	TaskDone       = "done"
)

// TaskStatuses en el orden de las columnas del tablero.
var TaskStatuses = []string{TaskTodo, TaskInProgress, TaskDone}

func ValidTaskStatus(s string) bool {
	for _, st := range TaskStatuses {
		if st == s {
			return true
		}
	}
	return false
}

type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Assignee    string    `json:"assignee,omitempty"`
	Status      string    `json:"status"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TaskBoard agrupa las tareas de un proyecto por estado.
type TaskBoard struct {
	ProjectID  string `json:"project_id"`
	Todo       []Task `json:"todo"`
	InProgress []Task `json:"in_progress"`
	Done       []Task `json:"done"`
	Completed  int    `json:"completed"`
	Total      int    `json:"total"`
}

// NewTaskBoard reparte tasks en columnas manteniendo su orden.
func NewTaskBoard(projectID string, tasks []Task) TaskBoard {
	b := TaskBoard{ProjectID: projectID, Todo: []Task{}, InProgress: []Task{}, Done: []Task{}}
	for _, t := range tasks {
		switch t.Status {
		case TaskInProgress:
			b.InProgress = append(b.InProgress, t)
		case TaskDone:
			b.Done = append(b.Done, t)
		default:
			b.Todo = append(b.Todo, t)
		}
	}
	b.Completed = len(b.Done)
	b.Total = len(tasks)
	return b
}
