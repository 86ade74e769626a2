package provisioning

import (
	"context"
	"errors"
	"sync"
	"time"
)

// State is the orchestrator's position in the provisioning workflow.
type State int

const (
	StateIdle State = iota
	StateSourceSelected
	StateResolved
	StateValidating
	StateSubmitting
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSourceSelected:
		return "source_selected"
	case StateResolved:
		return "resolved"
	case StateValidating:
		return "validating"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

var (
	// ErrSubmitInFlight is returned when a submit is attempted while another
	// creation call is still in flight. At most one creation call may be
	// active per orchestrator.
	ErrSubmitInFlight = errors.New("a submission is already in flight")

	// ErrNoSourceSelected is returned when Submit is called before a
	// subscription record was selected.
	ErrNoSourceSelected = errors.New("no subscription selected")

	// ErrAlreadyProvisioned is returned when Submit is called after a
	// successful submission. A new source must be selected first.
	ErrAlreadyProvisioned = errors.New("tenant already provisioned for this subscription")

	// ErrSubmissionAborted is returned when the source was re-selected while
	// a creation call was in flight; the late result is discarded.
	ErrSubmissionAborted = errors.New("submission aborted by source re-selection")

	// ErrTenantConflict should be wrapped by TenantCreator implementations
	// when the platform rejects the creation because the title is taken.
	ErrTenantConflict = errors.New("tenant with this title already exists")
)

// TenantCreator performs the external, side-effecting tenant creation.
type TenantCreator interface {
	CreateTenant(ctx context.Context, req *Request) (tenantID string, err error)
}

// MappingSource supplies the ordered lookup tables and the available
// profiles. Implementations may cache; each call must return a consistent
// snapshot so a resolution never observes a half-edited table.
type MappingSource interface {
	UsecaseMappings() ([]UsecaseMapping, error)
	ProfileMappings() ([]ProfileMapping, error)
	Profiles() ([]Profile, error)
}

// DefaultSubmitTimeout bounds a single tenant creation call.
const DefaultSubmitTimeout = 30 * time.Second

// Orchestrator sequences source selection, resolution, validation and
// submission for one provisioning form. It owns the idempotency of the
// submit action: while one creation call is in flight all further submit
// attempts are rejected.
type Orchestrator struct {
	mappings MappingSource
	creator  TenantCreator
	builder  *Builder

	// SubmitTimeout bounds the creation call; zero means DefaultSubmitTimeout.
	SubmitTimeout time.Duration

	mu         sync.Mutex
	state      State
	record     SubscriptionRecord
	resolution Resolution
	generation uint64
	cancel     context.CancelFunc
}

// NewOrchestrator creates an orchestrator in the Idle state.
func NewOrchestrator(mappings MappingSource, creator TenantCreator, builder *Builder) *Orchestrator {
	return &Orchestrator{
		mappings: mappings,
		creator:  creator,
		builder:  builder,
		state:    StateIdle,
	}
}

// State returns the current workflow state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Resolution returns the resolution for the currently selected record.
func (o *Orchestrator) Resolution() Resolution {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.resolution
}

// SelectSource chooses the subscription record to provision from and runs
// resolution. Resolution is pure and synchronous, so the machine moves
// through SourceSelected straight to Resolved. Selecting a source while a
// creation call is in flight aborts that call and discards its result.
func (o *Orchestrator) SelectSource(record SubscriptionRecord) (Resolution, error) {
	usecaseMappings, err := o.mappings.UsecaseMappings()
	if err != nil {
		return Resolution{}, err
	}
	profileMappings, err := o.mappings.ProfileMappings()
	if err != nil {
		return Resolution{}, err
	}
	profiles, err := o.mappings.Profiles()
	if err != nil {
		return Resolution{}, err
	}

	res, err := Resolve(record, usecaseMappings, profileMappings, profiles)
	if err != nil {
		return Resolution{}, err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.generation++
	o.record = record
	o.resolution = res
	o.state = StateResolved
	return res, nil
}

// Submit validates the merged request and performs the tenant creation call.
// Allowed from Resolved and Failed (a retry is a brand-new submission, never
// automatic). Validation failures return to Resolved without touching the
// network. The orchestrator never leaves Submitting without transitioning to
// exactly one of Succeeded or Failed.
func (o *Orchestrator) Submit(ctx context.Context, in Input) (Outcome, error) {
	o.mu.Lock()
	switch o.state {
	case StateSubmitting, StateValidating:
		o.mu.Unlock()
		return Outcome{}, ErrSubmitInFlight
	case StateIdle, StateSourceSelected:
		o.mu.Unlock()
		return Outcome{}, ErrNoSourceSelected
	case StateSucceeded:
		o.mu.Unlock()
		return Outcome{}, ErrAlreadyProvisioned
	}

	o.state = StateValidating
	record := o.record
	resolution := o.resolution
	generation := o.generation

	req, fieldErrs := o.builder.Build(record, resolution, in)
	if len(fieldErrs) > 0 {
		o.state = StateResolved
		o.mu.Unlock()
		return Outcome{
			ErrorKind:   ErrorKindValidation,
			Message:     "request is not submit-eligible",
			FieldErrors: fieldErrs,
		}, nil
	}

	o.state = StateSubmitting
	timeout := o.SubmitTimeout
	if timeout <= 0 {
		timeout = DefaultSubmitTimeout
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	o.cancel = cancel
	o.mu.Unlock()

	tenantID, err := o.creator.CreateTenant(callCtx, req)
	cancel()

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != generation {
		// The user moved on to a different record while the call was in
		// flight; whatever came back must not touch the new flow.
		return Outcome{}, ErrSubmissionAborted
	}
	o.cancel = nil

	if err != nil {
		o.state = StateFailed
		return failureOutcome(err), nil
	}

	o.state = StateSucceeded
	return Outcome{Success: true, TenantID: tenantID}, nil
}

func failureOutcome(err error) Outcome {
	kind := ErrorKindNetwork
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ErrorKindTimeout
	case errors.Is(err, ErrTenantConflict):
		kind = ErrorKindConflict
	case errors.Is(err, ErrNoProfilesConfigured):
		kind = ErrorKindConfiguration
	}
	return Outcome{ErrorKind: kind, Message: err.Error()}
}
