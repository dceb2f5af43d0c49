package models

import "time"

// ComplianceTask is an actionable work item generated from a signal.
type ComplianceTask struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Type        TaskType   `json:"task_type"`
	Category    string     `json:"category"`
	DueDate     time.Time  `json:"due_date"`
	Status      TaskStatus `json:"status"`
	LocationID  int64      `json:"location_id"`
	AssignedTo  *int64     `json:"assigned_to,omitempty"`
	CreatedBy   string     `json:"created_by"`
	SignalID    *int64     `json:"signal_id,omitempty"`
	RunID       *string    `json:"run_id,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// AssignmentQueueEntry links an assigned task to the employee it was routed
// to, with the workload observed at assignment time.
type AssignmentQueueEntry struct {
	ID            int64     `json:"id"`
	TaskID        int64     `json:"task_id"`
	AssignedTo    int64     `json:"assigned_to"`
	LocationID    int64     `json:"location_id"`
	AssignedAt    time.Time `json:"assigned_at"`
	Status        string    `json:"status"`
	Reason        string    `json:"reason"`
	WorkloadScore int       `json:"workload_score"`
}
