package controllers

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/nibiaa/TenantDesk/app/models"
	"github.com/nibiaa/TenantDesk/app/repository"
	"github.com/nibiaa/TenantDesk/internal/pkg/billing"
	"github.com/nibiaa/TenantDesk/internal/pkg/env"
	"github.com/nibiaa/TenantDesk/internal/pkg/jobqueue"
	"github.com/nibiaa/TenantDesk/internal/pkg/mail"
	"github.com/nibiaa/TenantDesk/internal/pkg/metrics/counter"
	"github.com/nibiaa/TenantDesk/internal/pkg/platform"
	"github.com/nibiaa/TenantDesk/internal/pkg/provisioning"
)

// ProvisionController serves the subscription list and the tenant
// provisioning workflow. It keeps one orchestrator per subscription so a
// second submit for the same subscription is rejected while the first call is
// still in flight.
type ProvisionController struct {
	repos    *repository.Repositories
	billing  *billing.Service
	platform *platform.Client
	builder  *provisioning.Builder
	creator  provisioning.TenantCreator

	mu    sync.Mutex
	orchs map[string]*provisioning.Orchestrator
}

// NewProvisionController wires the controller from its collaborators.
func NewProvisionController(repos *repository.Repositories, billingSvc *billing.Service, platformClient *platform.Client) *ProvisionController {
	return &ProvisionController{
		repos:    repos,
		billing:  billingSvc,
		platform: platformClient,
		builder:  provisioning.NewBuilder(env.GetEnv("COMPANY_DOMAIN", "nibiaa.com")),
		creator:  platform.NewCreator(platformClient),
		orchs:    make(map[string]*provisioning.Orchestrator),
	}
}

// HandleListSubscriptions returns the locally mirrored subscriptions.
// GET /api/v1/subscriptions?include_provisioned=true
func (pc *ProvisionController) HandleListSubscriptions(c *fiber.Ctx) error {
	includeProvisioned := c.QueryBool("include_provisioned", false)
	subs, err := pc.billing.StoredSubscriptions(includeProvisioned)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "subscription list failed", "message": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"subscriptions": subs, "count": len(subs)})
}

// HandleSyncSubscriptions pulls the billing feed into the local mirror.
// POST /api/v1/subscriptions/sync
func (pc *ProvisionController) HandleSyncSubscriptions(c *fiber.Ctx) error {
	count, err := pc.billing.Sync(c.Context())
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "billing sync failed", "message": err.Error(),
		})
	}
	if err := counter.AddSyncRun(count); err != nil {
		log.Printf("sync counter update failed: %v", err)
	}
	return c.JSON(fiber.Map{"synced": count})
}

// HandleGetMappings returns the resolution tables and the available tenant
// profiles. The profile list is refreshed from the platform when reachable;
// otherwise the last stored snapshot is served.
// GET /api/v1/provision/mappings
func (pc *ProvisionController) HandleGetMappings(c *fiber.Ctx) error {
	usecases, err := pc.repos.Mapping.LoadUsecaseMappings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "mapping load failed", "message": err.Error(),
		})
	}
	profileMappings, err := pc.repos.Mapping.LoadProfileMappings()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "mapping load failed", "message": err.Error(),
		})
	}

	pc.refreshTenantProfiles(c.Context())

	profiles, err := pc.repos.Mapping.LoadTenantProfiles()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "profile load failed", "message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"usecase_mappings": usecases,
		"profile_mappings": profileMappings,
		"tenant_profiles":  profiles,
	})
}

// refreshTenantProfiles replaces the stored profile snapshot with the
// platform's current list. Platform errors only log; resolution keeps working
// from the stored snapshot.
func (pc *ProvisionController) refreshTenantProfiles(ctx context.Context) {
	fetched, err := pc.platform.ListTenantProfiles(ctx)
	if err != nil {
		log.Printf("tenant profile refresh failed, serving stored snapshot: %v", err)
		return
	}
	stored := make([]models.TenantProfile, 0, len(fetched))
	for _, p := range fetched {
		stored = append(stored, models.TenantProfile{
			ProfileID: p.ID,
			Name:      p.Name,
			IsDefault: p.Default,
		})
	}
	if err := pc.repos.Mapping.ReplaceTenantProfiles(stored); err != nil {
		log.Printf("tenant profile store failed: %v", err)
	}
}

type resolveRequest struct {
	SubscriptionID string `json:"subscription_id"`
}

// HandleResolve selects a subscription as the provisioning source and returns
// the derived tenant configuration.
// POST /api/v1/provision/resolve
func (pc *ProvisionController) HandleResolve(c *fiber.Ctx) error {
	var req resolveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body", "message": err.Error(),
		})
	}
	if strings.TrimSpace(req.SubscriptionID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subscription_id is required"})
	}

	sub, err := pc.repos.Subscription.GetBySubscriptionID(req.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "subscription lookup failed", "message": err.Error(),
		})
	}

	orch := pc.orchestratorFor(sub.SubscriptionID)
	res, err := orch.SelectSource(recordFromSubscription(sub))
	if err != nil {
		if errors.Is(err, provisioning.ErrNoProfilesConfigured) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error": "no tenant profiles configured", "error_kind": provisioning.ErrorKindConfiguration,
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "resolution failed", "message": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"subscription_id": sub.SubscriptionID,
		"resolution":      res,
		"state":           orch.State().String(),
	})
}

type provisionRequest struct {
	SubscriptionID         string `json:"subscription_id"`
	Title                  string `json:"title"`
	Usecase                string `json:"usecase"`
	ProfileID              string `json:"profile_id"`
	TechnicalManagerID     uint   `json:"technical_manager_id"`
	ProjectManagerID       uint   `json:"project_manager_id"`
	CustomerEmail          string `json:"customer_email"`
	OwnerFirstName         string `json:"owner_first_name"`
	OwnerLastName          string `json:"owner_last_name"`
	TaskTemplateIDs        []uint `json:"task_template_ids"`
	ProjectDescription     string `json:"project_description"`
	SkipAdminActivation    bool   `json:"skip_admin_activation"`
	NotifyTechnicalManager bool   `json:"notify_technical_manager"`
}

// HandleProvision runs the full workflow for one subscription: select the
// source (unless a prior resolve call already did), resolve, apply the
// user's overrides, validate, submit, then run the follow-up bookkeeping on
// success.
// POST /api/v1/provision
func (pc *ProvisionController) HandleProvision(c *fiber.Ctx) error {
	var req provisionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body", "message": err.Error(),
		})
	}
	if strings.TrimSpace(req.SubscriptionID) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "subscription_id is required"})
	}

	sub, err := pc.repos.Subscription.GetBySubscriptionID(req.SubscriptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "subscription not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "subscription lookup failed", "message": err.Error(),
		})
	}
	if sub.IsProvisioned {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": provisioning.ErrAlreadyProvisioned.Error()})
	}

	var manager *models.User
	if req.TechnicalManagerID != 0 {
		var err error
		manager, err = pc.repos.User.GetByID(req.TechnicalManagerID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "user lookup failed", "message": err.Error(),
			})
		}
	}

	in := provisioning.Input{
		Title:              req.Title,
		Usecase:            req.Usecase,
		ProfileID:          req.ProfileID,
		TechnicalManagerID: req.TechnicalManagerID,
		ProjectManagerID:   req.ProjectManagerID,
		CustomerEmail:      req.CustomerEmail,
		OwnerFirstName:     req.OwnerFirstName,
		OwnerLastName:      req.OwnerLastName,
		TaskTemplateIDs:    req.TaskTemplateIDs,
	}
	if manager != nil {
		in.TechnicalManagerEmail = manager.Email
	}

	orch := pc.orchestratorFor(req.SubscriptionID)

	// A standalone provision call selects its own source; a prior resolve
	// call is optional.
	switch orch.State() {
	case provisioning.StateIdle, provisioning.StateSourceSelected:
		if _, err := orch.SelectSource(recordFromSubscription(sub)); err != nil {
			if errors.Is(err, provisioning.ErrNoProfilesConfigured) {
				return c.Status(fiber.StatusConflict).JSON(fiber.Map{
					"error": "no tenant profiles configured", "error_kind": provisioning.ErrorKindConfiguration,
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "resolution failed", "message": err.Error(),
			})
		}
	}

	outcome, err := orch.Submit(c.Context(), in)
	if err != nil {
		return pc.submitErrorResponse(c, err)
	}

	if !outcome.Success {
		if err := counter.AddProvisionOutcome(string(outcome.ErrorKind)); err != nil {
			log.Printf("provision counter update failed: %v", err)
		}
		return c.Status(statusForErrorKind(outcome.ErrorKind)).JSON(outcome)
	}

	if err := counter.AddProvisionOutcome("success"); err != nil {
		log.Printf("provision counter update failed: %v", err)
	}
	pc.afterProvision(c.Context(), orch, req, sub, manager, outcome.TenantID)
	pc.releaseOrchestrator(req.SubscriptionID)
	return c.Status(fiber.StatusCreated).JSON(outcome)
}

func (pc *ProvisionController) submitErrorResponse(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, provisioning.ErrSubmitInFlight),
		errors.Is(err, provisioning.ErrAlreadyProvisioned),
		errors.Is(err, provisioning.ErrSubmissionAborted):
		status = fiber.StatusConflict
	case errors.Is(err, provisioning.ErrNoSourceSelected):
		status = fiber.StatusUnprocessableEntity
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}

func statusForErrorKind(kind provisioning.ErrorKind) int {
	switch kind {
	case provisioning.ErrorKindValidation:
		return fiber.StatusUnprocessableEntity
	case provisioning.ErrorKindConflict:
		return fiber.StatusConflict
	case provisioning.ErrorKindTimeout:
		return fiber.StatusGatewayTimeout
	case provisioning.ErrorKindNetwork:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// afterProvision runs the bookkeeping that follows a created tenant: project
// record, provisioned flag, admin account with activation link and the
// notification mail. Failures here only log; the tenant already exists and
// the operator can finish the steps by hand.
func (pc *ProvisionController) afterProvision(ctx context.Context, orch *provisioning.Orchestrator, req provisionRequest, sub *models.Subscription, manager *models.User, tenantID string) {
	res := orch.Resolution()
	title := req.Title
	if strings.TrimSpace(title) == "" {
		title = sub.CustomerName
	}
	usecase := firstFilled(req.Usecase, res.Usecase)

	if _, err := pc.repos.Project.GetByTenantID(tenantID); err == nil {
		log.Printf("project for tenant %s already exists, skipping project creation", tenantID)
	} else {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("project lookup for tenant %s failed: %v", tenantID, err)
		}
		project := &models.Project{
			Name:           title,
			Description:    req.ProjectDescription,
			TenantID:       tenantID,
			SubscriptionID: sub.SubscriptionID,
			Usecase:        usecase,
			Plan:           sub.PlanName,
			Status:         models.ProjectStatusActive,
			CustomerEmail:  firstFilled(req.CustomerEmail, sub.Email),
		}
		if req.TechnicalManagerID != 0 {
			id := req.TechnicalManagerID
			project.TechnicalManagerID = &id
		}
		if req.ProjectManagerID != 0 {
			id := req.ProjectManagerID
			project.ProjectManagerID = &id
		}
		if err := pc.repos.Project.Create(project); err != nil {
			log.Printf("project record creation failed for tenant %s: %v", tenantID, err)
		}
	}

	if err := pc.billing.MarkProvisioned(sub.SubscriptionID); err != nil {
		log.Printf("marking subscription %s provisioned failed: %v", sub.SubscriptionID, err)
	}

	activationLink := ""
	if !req.SkipAdminActivation && manager != nil {
		activationLink = pc.createTenantAdmin(ctx, tenantID, title, manager, req)
	}

	if req.NotifyTechnicalManager && manager != nil {
		payload := jobqueue.ProvisionNotifyPayload{
			To:             manager.Email,
			TenantTitle:    title,
			TenantID:       tenantID,
			Usecase:        usecase,
			Plan:           sub.PlanName,
			AdminEmail:     pc.builder.AdminAlias(manager.Email, title),
			ActivationLink: activationLink,
			Tasks:          pc.taskTitles(req.TaskTemplateIDs),
		}
		if _, err := jobqueue.GetManager().GetQueue().Enqueue(jobqueue.JobTypeProvisionNotify, payload.ToMap()); err != nil {
			// Queue down; deliver inline so the manager still hears about
			// the new tenant.
			log.Printf("notification enqueue failed, sending inline: %v", err)
			if err := mail.SendProvisionNotification(payload.To, mail.ProvisionNotification{
				TenantTitle:    payload.TenantTitle,
				TenantID:       payload.TenantID,
				Usecase:        payload.Usecase,
				Plan:           payload.Plan,
				AdminEmail:     payload.AdminEmail,
				ActivationLink: payload.ActivationLink,
				Tasks:          payload.Tasks,
			}); err != nil {
				log.Printf("notification mail to %s failed: %v", payload.To, err)
			}
		}
	}
}

// createTenantAdmin creates the tenant admin user on the platform and fetches
// its activation link. Returns an empty link on failure.
func (pc *ProvisionController) createTenantAdmin(ctx context.Context, tenantID, title string, manager *models.User, req provisionRequest) string {
	adminEmail := pc.builder.AdminAlias(manager.Email, title)
	firstName := firstFilled(req.OwnerFirstName, manager.EmailLocalPart())
	lastName := firstFilled(req.OwnerLastName, title)

	adminCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	admin, err := pc.platform.CreateTenantAdmin(adminCtx, tenantID, adminEmail, firstName, lastName)
	if err != nil {
		log.Printf("tenant admin creation failed for tenant %s: %v", tenantID, err)
		return ""
	}

	link, err := pc.platform.GetActivationLink(adminCtx, admin.ID)
	if err != nil {
		log.Printf("activation link fetch failed for user %s: %v", admin.ID, err)
		return ""
	}
	return link
}

func (pc *ProvisionController) taskTitles(ids []uint) []string {
	if len(ids) == 0 {
		return nil
	}
	templates, err := pc.repos.TaskTemplate.GetByIDs(ids)
	if err != nil {
		log.Printf("task template lookup failed: %v", err)
		return nil
	}
	titles := make([]string, 0, len(templates))
	for _, t := range templates {
		titles = append(titles, t.Title)
	}
	return titles
}

// releaseOrchestrator drops the orchestrator for a finished subscription so
// the map does not grow for the process lifetime. The persisted
// is_provisioned flag keeps duplicate provisioning blocked.
func (pc *ProvisionController) releaseOrchestrator(subscriptionID string) {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	delete(pc.orchs, subscriptionID)
}

func (pc *ProvisionController) orchestratorFor(subscriptionID string) *provisioning.Orchestrator {
	pc.mu.Lock()
	defer pc.mu.Unlock()
	if orch, ok := pc.orchs[subscriptionID]; ok {
		return orch
	}
	orch := provisioning.NewOrchestrator(
		provisioning.NewRepositorySource(pc.repos.Mapping),
		pc.creator,
		pc.builder,
	)
	pc.orchs[subscriptionID] = orch
	return orch
}

func recordFromSubscription(sub *models.Subscription) provisioning.SubscriptionRecord {
	return provisioning.SubscriptionRecord{
		ID:           sub.SubscriptionID,
		CustomerName: sub.CustomerName,
		Email:        sub.Email,
		PlanCode:     sub.PlanCode,
		PlanName:     sub.PlanName,
	}
}

func firstFilled(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
