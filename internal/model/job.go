package model

import "time"

// JobStatus tracks the lifecycle of a batch analysis job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether the status is a final state
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// AnalysisJob tracks one run of the batch analysis worker
type AnalysisJob struct {
	ID                 string        `json:"id"`
	Status             JobStatus     `json:"status"`
	TotalArticles      int           `json:"total_articles"`
	ProcessedArticles  int           `json:"processed_articles"`
	SuccessfulAnalyses int           `json:"successful_analyses"`
	FailedAnalyses     int           `json:"failed_analyses"`
	CurrentArticle     string        `json:"current_article,omitempty"` // Title of the article in flight
	AverageStepMS      int64         `json:"average_step_ms"`           // Rolling average batch duration
	EstimatedRemaining time.Duration `json:"estimated_remaining"`
	Error              string        `json:"error,omitempty"`
	CreatedAt          time.Time     `json:"created_at"`
	UpdatedAt          time.Time     `json:"updated_at"`
}

// TrendSnapshot aggregates recent scores over a rolling window
type TrendSnapshot struct {
	Period        string    `json:"period"` // "daily" or "weekly"
	WindowStart   time.Time `json:"window_start"`
	AvgScore      float64   `json:"avg_score"`
	MaxScore      float64   `json:"max_score"`
	MinScore      float64   `json:"min_score"`
	CriticalCount int       `json:"critical_count"`
	SampleCount   int       `json:"sample_count"`
	CreatedAt     time.Time `json:"created_at"`
}
