package automation

import "github.com/jordanwu/asset-compliance/internal/models"

// Assignment reason recorded on every queue entry.
const assignmentReason = "least-loaded qualified employee at task location"

// AssignmentDecision is the outcome of routing one task.
type AssignmentDecision struct {
	Employee *models.Employee
	// Workload is the count of pending tasks already assigned to the
	// chosen employee at decision time.
	Workload int
}

// AssignmentOptimizer routes tasks to the least-loaded employee at the
// task's location. Ties break by original ordering.
type AssignmentOptimizer struct{}

// NewAssignmentOptimizer creates a new optimizer.
func NewAssignmentOptimizer() *AssignmentOptimizer {
	return &AssignmentOptimizer{}
}

// Assign picks an employee for the task, or nil when no employee works at
// the task's location. Workload is computed from openTasks: pending tasks
// currently assigned to each candidate.
func (o *AssignmentOptimizer) Assign(task *models.ComplianceTask, employees []*models.Employee, openTasks []*models.ComplianceTask) *AssignmentDecision {
	var best *AssignmentDecision
	for _, emp := range employees {
		if emp.LocationID != task.LocationID {
			continue
		}
		workload := pendingWorkload(emp.ID, openTasks)
		if best == nil || workload < best.Workload {
			best = &AssignmentDecision{Employee: emp, Workload: workload}
		}
	}
	return best
}

func pendingWorkload(employeeID int64, openTasks []*models.ComplianceTask) int {
	count := 0
	for _, t := range openTasks {
		if t.Status == models.TaskStatusPending && t.AssignedTo != nil && *t.AssignedTo == employeeID {
			count++
		}
	}
	return count
}
