package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nibiaa/TenantDesk/app/models"
	"github.com/nibiaa/TenantDesk/app/repository"
	"github.com/nibiaa/TenantDesk/internal/pkg/billing"
	"github.com/nibiaa/TenantDesk/internal/pkg/provisioning"
)

type stubMappingRepo struct{}

func (stubMappingRepo) LoadUsecaseMappings() ([]models.UsecaseMapping, error) {
	return []models.UsecaseMapping{{Prefix: "WTS", Name: "Web Tracking"}}, nil
}

func (stubMappingRepo) LoadProfileMappings() ([]models.PlanProfileMapping, error) {
	return []models.PlanProfileMapping{{PlanKeyword: "basic", ProfileName: "Basic"}}, nil
}

func (stubMappingRepo) LoadTenantProfiles() ([]models.TenantProfile, error) {
	return []models.TenantProfile{{ProfileID: "tp-1", Name: "Basic"}}, nil
}

func (stubMappingRepo) ReplaceTenantProfiles([]models.TenantProfile) error { return nil }

type stubSubscriptionRepo struct {
	byID map[string]*models.Subscription
}

func (r *stubSubscriptionRepo) Upsert(sub *models.Subscription) error {
	cp := *sub
	r.byID[sub.SubscriptionID] = &cp
	return nil
}

func (r *stubSubscriptionRepo) GetBySubscriptionID(id string) (*models.Subscription, error) {
	if sub, ok := r.byID[id]; ok {
		cp := *sub
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubSubscriptionRepo) List(includeProvisioned bool) ([]models.Subscription, error) {
	var out []models.Subscription
	for _, sub := range r.byID {
		if !includeProvisioned && sub.IsProvisioned {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

func (r *stubSubscriptionRepo) MarkProvisioned(id string) error {
	sub, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sub.IsProvisioned = true
	return nil
}

type stubProjectRepo struct {
	projects []models.Project
}

func (r *stubProjectRepo) Create(p *models.Project) error {
	r.projects = append(r.projects, *p)
	return nil
}

func (r *stubProjectRepo) GetByTenantID(tenantID string) (*models.Project, error) {
	for i := range r.projects {
		if r.projects[i].TenantID == tenantID {
			return &r.projects[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *stubProjectRepo) List() ([]models.Project, error) { return r.projects, nil }

type stubUserRepo struct{}

func (stubUserRepo) GetByID(id uint) (*models.User, error) {
	if id == 7 {
		return &models.User{ID: 7, Name: "Jane Doe", Email: "jane@nibiaa.com", Role: models.RoleTechnicalManager}, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (stubUserRepo) ListActive() ([]models.User, error) { return nil, nil }

type stubTaskTemplateRepo struct{}

func (stubTaskTemplateRepo) GetAll() ([]models.TaskTemplate, error) { return nil, nil }

func (stubTaskTemplateRepo) GetByIDs(ids []uint) ([]models.TaskTemplate, error) {
	return []models.TaskTemplate{{ID: 1, Title: "Verify tenant login"}}, nil
}

type countingCreator struct {
	mu    sync.Mutex
	calls int
}

func (c *countingCreator) CreateTenant(ctx context.Context, req *provisioning.Request) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return "tenant-1", nil
}

func (c *countingCreator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func newTestController() (*ProvisionController, *stubSubscriptionRepo, *stubProjectRepo, *countingCreator) {
	subs := &stubSubscriptionRepo{byID: map[string]*models.Subscription{
		"sub_1": {
			SubscriptionID: "sub_1",
			CustomerName:   "Acme Corp",
			Email:          "ops@acme.example",
			PlanCode:       "WTS-100",
			PlanName:       "Web Tracking Basic",
			Status:         models.SubscriptionStatusLive,
		},
	}}
	projects := &stubProjectRepo{}
	creator := &countingCreator{}

	repos := &repository.Repositories{
		Mapping:      stubMappingRepo{},
		Subscription: subs,
		User:         stubUserRepo{},
		TaskTemplate: stubTaskTemplateRepo{},
		Project:      projects,
	}
	pc := &ProvisionController{
		repos:   repos,
		billing: billing.NewService(nil, subs, projects),
		builder: provisioning.NewBuilder("nibiaa.com"),
		creator: creator,
		orchs:   make(map[string]*provisioning.Orchestrator),
	}
	return pc, subs, projects, creator
}

func newProvisionApp(pc *ProvisionController) *fiber.App {
	app := fiber.New()
	app.Post("/api/v1/provision", pc.HandleProvision)
	return app
}

func postProvision(t *testing.T, app *fiber.App, body map[string]interface{}) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/api/v1/provision", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func validProvisionBody() map[string]interface{} {
	return map[string]interface{}{
		"subscription_id":       "sub_1",
		"technical_manager_id":  7,
		"task_template_ids":     []uint{1},
		"skip_admin_activation": true,
	}
}

func TestProvisionWithoutPriorResolve(t *testing.T) {
	pc, subs, projects, creator := newTestController()
	app := newProvisionApp(pc)

	resp := postProvision(t, app, validProvisionBody())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var outcome provisioning.Outcome
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&outcome))
	assert.True(t, outcome.Success)
	assert.Equal(t, "tenant-1", outcome.TenantID)

	assert.Equal(t, 1, creator.callCount())

	require.Len(t, projects.projects, 1)
	project := projects.projects[0]
	assert.Equal(t, "tenant-1", project.TenantID)
	assert.Equal(t, "Acme Corp", project.Name)
	assert.Equal(t, "Web Tracking", project.Usecase)
	assert.Equal(t, "sub_1", project.SubscriptionID)

	sub, err := subs.GetBySubscriptionID("sub_1")
	require.NoError(t, err)
	assert.True(t, sub.IsProvisioned)
}

func TestProvisionKeepsExistingProjectRecord(t *testing.T) {
	pc, subs, projects, _ := newTestController()
	projects.projects = []models.Project{{Name: "Existing Project", TenantID: "tenant-1"}}
	app := newProvisionApp(pc)

	resp := postProvision(t, app, validProvisionBody())
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	// The pre-existing record stays untouched; no duplicate is created.
	require.Len(t, projects.projects, 1)
	assert.Equal(t, "Existing Project", projects.projects[0].Name)

	sub, err := subs.GetBySubscriptionID("sub_1")
	require.NoError(t, err)
	assert.True(t, sub.IsProvisioned)
}

func TestProvisionRejectsProvisionedSubscription(t *testing.T) {
	pc, subs, _, creator := newTestController()
	require.NoError(t, subs.MarkProvisioned("sub_1"))
	app := newProvisionApp(pc)

	resp := postProvision(t, app, validProvisionBody())
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, 0, creator.callCount())
}

func TestProvisionUnknownSubscription(t *testing.T) {
	pc, _, _, creator := newTestController()
	app := newProvisionApp(pc)

	body := validProvisionBody()
	body["subscription_id"] = "sub_missing"
	resp := postProvision(t, app, body)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 0, creator.callCount())
}

func TestProvisionReleasesOrchestrator(t *testing.T) {
	pc, _, _, _ := newTestController()
	app := newProvisionApp(pc)

	resp := postProvision(t, app, validProvisionBody())
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)

	pc.mu.Lock()
	defer pc.mu.Unlock()
	assert.Empty(t, pc.orchs)
}
