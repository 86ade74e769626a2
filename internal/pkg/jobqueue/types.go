package jobqueue

import (
	"encoding/json"
	"time"
)

// JobType defines the type of job
type JobType string

const (
	JobTypeProvisionNotify JobType = "provision_notify"
)

// JobStatus defines the status of a job
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusProcessing JobStatus = "processing"
	JobStatusCompleted  JobStatus = "completed"
	JobStatusFailed     JobStatus = "failed"
	JobStatusRetrying   JobStatus = "retrying"
)

// Job represents a background job
type Job struct {
	ID          string                 `json:"id"`
	Type        JobType                `json:"type"`
	Status      JobStatus              `json:"status"`
	Payload     map[string]interface{} `json:"payload"`
	CreatedAt   time.Time              `json:"created_at"`
	UpdatedAt   time.Time              `json:"updated_at"`
	ProcessedAt *time.Time             `json:"processed_at,omitempty"`
	CompletedAt *time.Time             `json:"completed_at,omitempty"`
	ErrorMsg    string                 `json:"error_msg,omitempty"`
	RetryCount  int                    `json:"retry_count"`
	MaxRetries  int                    `json:"max_retries"`
}

// ProvisionNotifyPayload contains the payload for post-provisioning
// notification jobs.
type ProvisionNotifyPayload struct {
	To             string   `json:"to"`
	TenantTitle    string   `json:"tenant_title"`
	TenantID       string   `json:"tenant_id"`
	Usecase        string   `json:"usecase"`
	Plan           string   `json:"plan"`
	AdminEmail     string   `json:"admin_email"`
	ActivationLink string   `json:"activation_link"`
	Tasks          []string `json:"tasks"`
}

// ToMap converts the payload to a map for storage
func (p ProvisionNotifyPayload) ToMap() map[string]interface{} {
	data, _ := json.Marshal(p)
	var m map[string]interface{}
	_ = json.Unmarshal(data, &m)
	return m
}

// ProvisionNotifyPayloadFromMap creates a payload from a stored job payload
func ProvisionNotifyPayloadFromMap(data map[string]interface{}) (*ProvisionNotifyPayload, error) {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var p ProvisionNotifyPayload
	if err := json.Unmarshal(jsonData, &p); err != nil {
		return nil, err
	}
	return &p, nil
}
