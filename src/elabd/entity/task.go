package entity

// TaskStatus is the progress tag of a checker task.
type TaskStatus string

const (
	// TaskStatusProcessing marks a task still being elaborated.
	TaskStatusProcessing TaskStatus = "processing"
	// TaskStatusDone marks a finished task.
	TaskStatusDone TaskStatus = "done"
)

// Task is one region the checker is (or was) working on.
type Task struct {
	Range    Range      `json:"range"`
	Status   TaskStatus `json:"status"`
	Messages []string   `json:"messages,omitempty"`
}

// TaskSnapshot is the ordered task list for one file at one ROI generation.
type TaskSnapshot struct {
	WorkspaceRoot string
	File          string
	Generation    uint64
	Tasks         []Task
	Unknown       bool
}

// Processing reports whether any task in the snapshot is still running.
func (s TaskSnapshot) Processing() bool {
	for _, t := range s.Tasks {
		if t.Status == TaskStatusProcessing {
			return true
		}
	}
	return false
}
