package billing

import (
	"context"
	"strings"

	"github.com/nibiaa/TenantDesk/app/models"
	"github.com/nibiaa/TenantDesk/app/repository"
)

// Feed supplies candidate subscriptions from the external billing provider.
type Feed interface {
	ListSubscriptions(ctx context.Context) ([]FeedSubscription, error)
}

// Service mirrors billing feed subscriptions into the local table and keeps
// their provisioning status in sync with existing projects.
type Service struct {
	feed          Feed
	subscriptions repository.SubscriptionRepository
	projects      repository.ProjectRepository
}

// NewService creates a billing service from injected collaborators.
func NewService(feed Feed, subscriptions repository.SubscriptionRepository, projects repository.ProjectRepository) *Service {
	return &Service{
		feed:          feed,
		subscriptions: subscriptions,
		projects:      projects,
	}
}

// Sync pulls the current subscriptions from the feed and upserts them into
// the local mirror. A subscription counts as provisioned when a project
// already exists for its customer name or email. Returns the number of
// records synced.
func (s *Service) Sync(ctx context.Context) (int, error) {
	subs, err := s.feed.ListSubscriptions(ctx)
	if err != nil {
		return 0, err
	}

	projects, err := s.projects.List()
	if err != nil {
		return 0, err
	}
	names := make(map[string]struct{}, len(projects))
	emails := make(map[string]struct{}, len(projects))
	for _, p := range projects {
		if n := strings.TrimSpace(p.Name); n != "" {
			names[n] = struct{}{}
		}
		if e := strings.TrimSpace(p.CustomerEmail); e != "" {
			emails[e] = struct{}{}
		}
	}

	count := 0
	for _, fs := range subs {
		if strings.TrimSpace(fs.SubscriptionID) == "" {
			continue
		}

		_, provisionedByName := names[strings.TrimSpace(fs.CustomerName)]
		provisionedByEmail := false
		if e := strings.TrimSpace(fs.Email); e != "" {
			_, provisionedByEmail = emails[e]
		}

		sub := &models.Subscription{
			SubscriptionID:   strings.TrimSpace(fs.SubscriptionID),
			CustomerID:       fs.CustomerID,
			CustomerName:     fs.CustomerName,
			Email:            fs.Email,
			PlanCode:         fs.PlanCode,
			PlanName:         fs.PlanName,
			Status:           strings.ToLower(strings.TrimSpace(fs.Status)),
			Amount:           fs.Amount,
			CurrencySymbol:   fs.CurrencySymbol,
			CurrentTermStart: fs.CurrentTermStart,
			CurrentTermEnd:   fs.CurrentTermEnd,
			Interval:         fs.Interval,
			IntervalUnit:     fs.IntervalUnit,
			IsProvisioned:    provisionedByName || provisionedByEmail,
		}
		if err := s.subscriptions.Upsert(sub); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

// StoredSubscriptions returns the locally mirrored subscriptions, excluding
// already provisioned ones unless asked otherwise.
func (s *Service) StoredSubscriptions(includeProvisioned bool) ([]models.Subscription, error) {
	return s.subscriptions.List(includeProvisioned)
}

// MarkProvisioned flags a stored subscription as provisioned after a tenant
// was created from it.
func (s *Service) MarkProvisioned(subscriptionID string) error {
	return s.subscriptions.MarkProvisioned(subscriptionID)
}
