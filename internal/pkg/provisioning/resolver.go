package provisioning

import (
	"errors"
	"strings"
)

// ErrNoProfilesConfigured is returned when the available-profiles list is
// empty. Without at least one profile there is nothing to fall back to and
// submission must be blocked.
var ErrNoProfilesConfigured = errors.New("no tenant profiles configured")

// ResolveUsecase derives a use case label from the plan-code prefix: the
// substring before the first "-", trimmed and uppercased. Returns "" when the
// plan code carries no usable prefix or no mapping entry matches.
func ResolveUsecase(record SubscriptionRecord, mappings []UsecaseMapping) string {
	code := strings.TrimSpace(record.PlanCode)
	i := strings.Index(code, "-")
	if i <= 0 {
		return ""
	}
	prefix := strings.ToUpper(strings.TrimSpace(code[:i]))
	if prefix == "" {
		return ""
	}

	for _, m := range mappings {
		if strings.ToUpper(strings.TrimSpace(m.Prefix)) == prefix {
			return m.Usecase
		}
	}
	return ""
}

// ResolveProfile derives a profile name from plan name/code keywords. The
// table is walked in order and the first matching entry wins; within one
// entry an exact match is preferred over a substring match, but an exact
// match on a later entry never overrides a substring match accepted earlier.
// Returns "" when no entry matches.
func ResolveProfile(record SubscriptionRecord, mappings []ProfileMapping) string {
	planNameLc := strings.ToLower(strings.TrimSpace(record.PlanName))
	planCodeLc := strings.ToLower(strings.TrimSpace(record.PlanCode))

	for _, m := range mappings {
		keywordLc := strings.ToLower(strings.TrimSpace(m.Keyword))
		if keywordLc == "" {
			continue
		}
		if planNameLc == keywordLc || planCodeLc == keywordLc {
			return m.ProfileName
		}
		if strings.Contains(planNameLc, keywordLc) || strings.Contains(planCodeLc, keywordLc) {
			return m.ProfileName
		}
	}
	return ""
}

// MatchProfile looks a resolved profile name up against the available
// profiles: exact match first, then case-insensitive, then trimmed.
func MatchProfile(profileName string, profiles []Profile) (Profile, bool) {
	for _, p := range profiles {
		if p.Name == profileName {
			return p, true
		}
	}
	for _, p := range profiles {
		if strings.EqualFold(p.Name, profileName) {
			return p, true
		}
	}
	want := strings.TrimSpace(profileName)
	for _, p := range profiles {
		if strings.EqualFold(strings.TrimSpace(p.Name), want) {
			return p, true
		}
	}
	return Profile{}, false
}

// Resolve runs both resolvers against one subscription record. When no
// profile rule matches, or the resolved name is unknown to the platform, the
// first available profile is selected and the result is flagged as fallback.
// An empty profile list is a configuration error, never a silent default.
func Resolve(record SubscriptionRecord, usecaseMappings []UsecaseMapping, profileMappings []ProfileMapping, profiles []Profile) (Resolution, error) {
	if len(profiles) == 0 {
		return Resolution{}, ErrNoProfilesConfigured
	}

	res := Resolution{
		Usecase: ResolveUsecase(record, usecaseMappings),
	}

	if name := ResolveProfile(record, profileMappings); name != "" {
		if p, ok := MatchProfile(name, profiles); ok {
			res.ProfileID = p.ID
			res.ProfileName = p.Name
			return res, nil
		}
	}

	res.ProfileID = profiles[0].ID
	res.ProfileName = profiles[0].Name
	res.Fallback = true
	return res, nil
}
