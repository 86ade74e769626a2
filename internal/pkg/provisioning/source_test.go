package provisioning

import (
	"testing"

	"github.com/nibiaa/TenantDesk/app/models"
)

type fakeMappingRepo struct {
	usecases []models.UsecaseMapping
	mappings []models.PlanProfileMapping
	profiles []models.TenantProfile
}

func (r *fakeMappingRepo) LoadUsecaseMappings() ([]models.UsecaseMapping, error) {
	return r.usecases, nil
}

func (r *fakeMappingRepo) LoadProfileMappings() ([]models.PlanProfileMapping, error) {
	return r.mappings, nil
}

func (r *fakeMappingRepo) LoadTenantProfiles() ([]models.TenantProfile, error) {
	return r.profiles, nil
}

func (r *fakeMappingRepo) ReplaceTenantProfiles(profiles []models.TenantProfile) error {
	r.profiles = profiles
	return nil
}

func TestRepositorySourcePreservesOrder(t *testing.T) {
	src := NewRepositorySource(&fakeMappingRepo{
		usecases: []models.UsecaseMapping{
			{Prefix: "WTS", Name: "Web Tracking"},
			{Prefix: "EMS", Name: "Energy Monitoring"},
		},
		mappings: []models.PlanProfileMapping{
			{PlanKeyword: "basic", ProfileName: "Basic"},
			{PlanKeyword: "premium", ProfileName: "Premium"},
		},
		profiles: []models.TenantProfile{
			{ProfileID: "tp-1", Name: "Basic"},
			{ProfileID: "tp-2", Name: "Premium"},
		},
	})

	usecases, err := src.UsecaseMappings()
	if err != nil {
		t.Fatalf("usecase mappings: %v", err)
	}
	if len(usecases) != 2 || usecases[0].Prefix != "WTS" || usecases[0].Usecase != "Web Tracking" {
		t.Fatalf("unexpected usecase mappings: %+v", usecases)
	}

	mappings, err := src.ProfileMappings()
	if err != nil {
		t.Fatalf("profile mappings: %v", err)
	}
	if len(mappings) != 2 || mappings[0].Keyword != "basic" || mappings[1].ProfileName != "Premium" {
		t.Fatalf("unexpected profile mappings: %+v", mappings)
	}

	profiles, err := src.Profiles()
	if err != nil {
		t.Fatalf("profiles: %v", err)
	}
	if len(profiles) != 2 || profiles[0].ID != "tp-1" || profiles[1].Name != "Premium" {
		t.Fatalf("unexpected profiles: %+v", profiles)
	}
}

func TestRepositorySourceFeedsResolver(t *testing.T) {
	src := NewRepositorySource(&fakeMappingRepo{
		usecases: []models.UsecaseMapping{{Prefix: "WTS", Name: "Web Tracking"}},
		mappings: []models.PlanProfileMapping{{PlanKeyword: "basic", ProfileName: "Basic"}},
		profiles: []models.TenantProfile{{ProfileID: "tp-1", Name: "Basic"}},
	})

	usecases, _ := src.UsecaseMappings()
	mappings, _ := src.ProfileMappings()
	profiles, _ := src.Profiles()

	res, err := Resolve(SubscriptionRecord{
		ID:       "sub_1",
		PlanCode: "WTS-100",
		PlanName: "Basic Web Plan",
	}, usecases, mappings, profiles)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Usecase != "Web Tracking" || res.ProfileID != "tp-1" || res.Fallback {
		t.Fatalf("unexpected resolution: %+v", res)
	}
}
