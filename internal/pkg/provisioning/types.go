package provisioning

// SubscriptionRecord is the provider-agnostic view of a billing subscription
// used as resolution input. Records are read-only within this package.
type SubscriptionRecord struct {
	ID           string
	CustomerName string
	Email        string
	PlanCode     string
	PlanName     string
}

// UsecaseMapping pairs a plan-code prefix with a use case label.
type UsecaseMapping struct {
	Prefix  string
	Usecase string
}

// ProfileMapping pairs a plan keyword with a tenant profile name. Mapping
// tables are ordered lists; resolution walks them top to bottom.
type ProfileMapping struct {
	Keyword     string
	ProfileName string
}

// Profile is a platform tenant profile the resolver can assign.
type Profile struct {
	ID   string
	Name string
}

// Resolution is the derived tenant configuration for one subscription.
// Empty Usecase means no prefix rule matched. Fallback is set when the
// profile was not rule-derived but defaulted to the first available profile,
// so callers can surface "not a confident match".
type Resolution struct {
	Usecase     string `json:"usecase"`
	ProfileID   string `json:"profile_id"`
	ProfileName string `json:"profile_name"`
	Fallback    bool   `json:"fallback"`
}

// ErrorKind classifies provisioning failures.
type ErrorKind string

const (
	ErrorKindValidation    ErrorKind = "validation"
	ErrorKindNetwork       ErrorKind = "network"
	ErrorKindTimeout       ErrorKind = "timeout"
	ErrorKindConflict      ErrorKind = "conflict"
	ErrorKindConfiguration ErrorKind = "configuration"
)

// FieldError is a builder-detected validation failure on a single field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Outcome is the result of exactly one submission attempt.
type Outcome struct {
	Success     bool         `json:"success"`
	TenantID    string       `json:"tenant_id,omitempty"`
	ErrorKind   ErrorKind    `json:"error_kind,omitempty"`
	Message     string       `json:"message,omitempty"`
	FieldErrors []FieldError `json:"field_errors,omitempty"`
}
