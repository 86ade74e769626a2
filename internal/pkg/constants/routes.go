package constants

// Static route constants
const (
	APIRoute              = "/api"
	APIv1Route            = "/v1"
	SubscriptionsRoute    = "/subscriptions"
	SubscriptionSyncRoute = "/subscriptions/sync"
	MappingsRoute         = "/provision/mappings"
	ResolveRoute          = "/provision/resolve"
	ProvisionRoute        = "/provision"
	UsersRoute            = "/users"
	TaskTemplatesRoute    = "/task-templates"
	StatsRoute            = "/stats"
)
