package models

// GenerationTaskPayload is the body of a queued generation request.
type GenerationTaskPayload struct {
	TaskID      string `json:"taskId"`
	RequestedBy string `json:"requestedBy"`
	// SeedTitle pins the task to one seed; empty means "next unused seed".
	SeedTitle string `json:"seedTitle,omitempty"`
}
