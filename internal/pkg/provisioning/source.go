package provisioning

import (
	"github.com/nibiaa/TenantDesk/app/repository"
)

// RepositorySource feeds the orchestrator from the mapping tables. Each call
// loads a fresh ordered snapshot, so edits to the tables take effect on the
// next source selection.
type RepositorySource struct {
	repo repository.MappingRepository
}

// NewRepositorySource wraps a mapping repository.
func NewRepositorySource(repo repository.MappingRepository) *RepositorySource {
	return &RepositorySource{repo: repo}
}

func (s *RepositorySource) UsecaseMappings() ([]UsecaseMapping, error) {
	rows, err := s.repo.LoadUsecaseMappings()
	if err != nil {
		return nil, err
	}
	out := make([]UsecaseMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, UsecaseMapping{Prefix: row.Prefix, Usecase: row.Name})
	}
	return out, nil
}

func (s *RepositorySource) ProfileMappings() ([]ProfileMapping, error) {
	rows, err := s.repo.LoadProfileMappings()
	if err != nil {
		return nil, err
	}
	out := make([]ProfileMapping, 0, len(rows))
	for _, row := range rows {
		out = append(out, ProfileMapping{Keyword: row.PlanKeyword, ProfileName: row.ProfileName})
	}
	return out, nil
}

func (s *RepositorySource) Profiles() ([]Profile, error) {
	rows, err := s.repo.LoadTenantProfiles()
	if err != nil {
		return nil, err
	}
	out := make([]Profile, 0, len(rows))
	for _, row := range rows {
		out = append(out, Profile{ID: row.ProfileID, Name: row.Name})
	}
	return out, nil
}
