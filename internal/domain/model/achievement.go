package model

// Achievement is an immutable catalog entry. Points are awarded once.
type Achievement struct {
	ID             uint64 `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Points         uint32 `json:"points"`
	Criteria       string `json:"criteria"` // informational only
	MinTasks       uint32 `json:"min_tasks"`
	MinSuccessRate uint32 `json:"min_success_rate"`
}
