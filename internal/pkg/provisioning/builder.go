package provisioning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Request is the payload of a single tenant creation call. It is built fresh
// per submission attempt and never persisted.
type Request struct {
	Title                string `json:"title" validate:"required"`
	Usecase              string `json:"usecase"`
	ProfileID            string `json:"profile_id" validate:"required"`
	TechnicalManagerID   uint   `json:"technical_manager_id" validate:"required"`
	ProjectManagerID     uint   `json:"project_manager_id,omitempty"`
	CustomerEmail        string `json:"customer_email,omitempty" validate:"omitempty,email"`
	OwnerFirstName       string `json:"owner_first_name,omitempty"`
	OwnerLastName        string `json:"owner_last_name,omitempty"`
	AdminEmail           string `json:"admin_email,omitempty"`
	TaskTemplateIDs      []uint `json:"task_template_ids" validate:"min=1"`
	SourceSubscriptionID string `json:"source_subscription_id,omitempty"`
	IdempotencyKey       string `json:"idempotency_key"`
}

// Input carries the user-entered form values. Set fields always win over
// resolved or record-derived values.
type Input struct {
	Title                 string
	Usecase               string
	ProfileID             string
	TechnicalManagerID    uint
	TechnicalManagerEmail string
	ProjectManagerID      uint
	CustomerEmail         string
	OwnerFirstName        string
	OwnerLastName         string
	TaskTemplateIDs       []uint
}

var fieldLabels = map[string]string{
	"Title":              "title",
	"ProfileID":          "profile_id",
	"TechnicalManagerID": "technical_manager_id",
	"CustomerEmail":      "customer_email",
	"TaskTemplateIDs":    "task_template_ids",
}

// Builder merges resolver output with user input into a validated Request.
type Builder struct {
	// CompanyDomain is the domain used for generated tenant admin aliases,
	// e.g. "nibiaa.com".
	CompanyDomain string

	validate *validator.Validate
}

// NewBuilder creates a request builder.
func NewBuilder(companyDomain string) *Builder {
	return &Builder{
		CompanyDomain: strings.TrimSpace(companyDomain),
		validate:      validator.New(),
	}
}

// Build assembles a Request from the subscription record, the resolution and
// the user input, then validates it. It returns either a ready request or the
// list of field-level validation errors; it never returns both.
func (b *Builder) Build(record SubscriptionRecord, res Resolution, in Input) (*Request, []FieldError) {
	req := &Request{
		Title:                firstNonEmpty(in.Title, record.CustomerName),
		Usecase:              firstNonEmpty(in.Usecase, res.Usecase),
		ProfileID:            firstNonEmpty(in.ProfileID, res.ProfileID),
		TechnicalManagerID:   in.TechnicalManagerID,
		ProjectManagerID:     in.ProjectManagerID,
		CustomerEmail:        firstNonEmpty(in.CustomerEmail, record.Email),
		OwnerFirstName:       in.OwnerFirstName,
		OwnerLastName:        firstNonEmpty(in.OwnerLastName, strings.TrimSpace(record.CustomerName+" "+record.PlanCode)),
		TaskTemplateIDs:      dedupeIDs(in.TaskTemplateIDs),
		SourceSubscriptionID: record.ID,
		IdempotencyKey:       uuid.NewString(),
	}

	if in.TechnicalManagerEmail != "" {
		req.AdminEmail = b.AdminAlias(in.TechnicalManagerEmail, req.Title)
		if req.OwnerFirstName == "" {
			req.OwnerFirstName = emailLocalPart(in.TechnicalManagerEmail)
		}
	}

	if errs := b.validateRequest(req); len(errs) > 0 {
		return nil, errs
	}
	return req, nil
}

// AdminAlias derives the internal tenant admin address from the technical
// manager's address and the tenant title, e.g. "jane+acmecorp@nibiaa.com".
func (b *Builder) AdminAlias(managerEmail, title string) string {
	domain := b.CompanyDomain
	if domain == "" {
		domain = emailDomain(managerEmail)
	}
	return fmt.Sprintf("%s+%s@%s", emailLocalPart(managerEmail), cleanTitle(title), domain)
}

func (b *Builder) validateRequest(req *Request) []FieldError {
	err := b.validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Field: "request", Message: err.Error()}}
	}

	fieldErrs := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fieldLabels[fe.Field()]
		if field == "" {
			field = fe.Field()
		}
		fieldErrs = append(fieldErrs, FieldError{
			Field:   field,
			Message: messageFor(field, fe.Tag()),
		})
	}
	return fieldErrs
}

func messageFor(field, tag string) string {
	switch tag {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must not be empty"
	default:
		return field + " is invalid"
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func dedupeIDs(ids []uint) []uint {
	out := make([]uint, 0, len(ids))
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		if id == 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func emailDomain(email string) string {
	if i := strings.Index(email, "@"); i >= 0 && i < len(email)-1 {
		return email[i+1:]
	}
	return ""
}

func cleanTitle(title string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(title) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
