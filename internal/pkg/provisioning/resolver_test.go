package provisioning

import (
	"errors"
	"testing"
)

func TestResolveUsecase(t *testing.T) {
	mappings := []UsecaseMapping{
		{Prefix: "WTS", Usecase: "Web Tracking Solution"},
		{Prefix: " ems ", Usecase: "Energy Management System"},
	}

	tests := []struct {
		planCode string
		want     string
	}{
		{planCode: "WTS-100", want: "Web Tracking Solution"},
		{planCode: "wts-enterprise", want: "Web Tracking Solution"},
		{planCode: "EMS-40-yearly", want: "Energy Management System"},
		{planCode: "WTS100", want: ""}, // no dash, no usable prefix
		{planCode: "-100", want: ""},
		{planCode: "", want: ""},
		{planCode: "XYZ-1", want: ""},
	}

	for _, tt := range tests {
		record := SubscriptionRecord{PlanCode: tt.planCode}
		if got := ResolveUsecase(record, mappings); got != tt.want {
			t.Fatalf("ResolveUsecase(planCode=%q) = %q, want %q", tt.planCode, got, tt.want)
		}
	}
}

func TestResolveUsecaseIgnoresOtherEntries(t *testing.T) {
	record := SubscriptionRecord{PlanCode: "WTS-100"}
	want := "Web Tracking Solution"

	few := []UsecaseMapping{{Prefix: "WTS", Usecase: want}}
	many := append([]UsecaseMapping{
		{Prefix: "AAA", Usecase: "Something Else"},
		{Prefix: "W", Usecase: "Not This"},
	}, few...)

	if got := ResolveUsecase(record, few); got != want {
		t.Fatalf("ResolveUsecase with single entry = %q, want %q", got, want)
	}
	if got := ResolveUsecase(record, many); got != want {
		t.Fatalf("ResolveUsecase with extra entries = %q, want %q", got, want)
	}
}

func TestResolveProfileFirstEntryWins(t *testing.T) {
	// The table walk stops at the first matching entry: the substring match
	// on "basic" wins even though a later entry would match "pro plan" more
	// precisely. This ordering is part of the contract.
	mappings := []ProfileMapping{
		{Keyword: "basic", ProfileName: "Basic"},
		{Keyword: "pro plan", ProfileName: "Pro"},
	}
	record := SubscriptionRecord{PlanName: "Pro Plan Basic Tier"}

	if got := ResolveProfile(record, mappings); got != "Basic" {
		t.Fatalf("ResolveProfile = %q, want %q", got, "Basic")
	}
}

func TestResolveProfile(t *testing.T) {
	mappings := []ProfileMapping{
		{Keyword: "  ", ProfileName: "Skipped"},
		{Keyword: "enterprise", ProfileName: "Enterprise"},
		{Keyword: "STD-20", ProfileName: "Standard"},
	}

	tests := []struct {
		planName string
		planCode string
		want     string
	}{
		{planName: "Enterprise", planCode: "", want: "Enterprise"},            // exact on name
		{planName: "", planCode: "std-20", want: "Standard"},                  // exact on code
		{planName: "Acme Enterprise Yearly", planCode: "", want: "Enterprise"}, // substring on name
		{planName: "", planCode: "STD-20-yearly", want: "Standard"},           // substring on code
		{planName: "Starter", planCode: "STR-1", want: ""},
		{planName: "", planCode: "", want: ""},
	}

	for _, tt := range tests {
		record := SubscriptionRecord{PlanName: tt.planName, PlanCode: tt.planCode}
		if got := ResolveProfile(record, mappings); got != tt.want {
			t.Fatalf("ResolveProfile(name=%q code=%q) = %q, want %q", tt.planName, tt.planCode, got, tt.want)
		}
	}
}

func TestMatchProfile(t *testing.T) {
	profiles := []Profile{
		{ID: "p1", Name: "Starter"},
		{ID: "p2", Name: "Premium "},
		{ID: "p3", Name: "premium"},
	}

	tests := []struct {
		name   string
		wantID string
		ok     bool
	}{
		{name: "Starter", wantID: "p1", ok: true},
		{name: "starter", wantID: "p1", ok: true},   // case-insensitive
		{name: "premium", wantID: "p3", ok: true},   // exact beats trimmed "Premium "
		{name: "Premium", wantID: "p3", ok: true},   // case-insensitive before trimmed
		{name: " PREMIUM ", wantID: "p2", ok: true}, // trimmed as the last resort
		{name: " starter ", wantID: "p1", ok: true}, // trimmed
		{name: "Unknown", wantID: "", ok: false},
	}

	for _, tt := range tests {
		p, ok := MatchProfile(tt.name, profiles)
		if ok != tt.ok || p.ID != tt.wantID {
			t.Fatalf("MatchProfile(%q) = (%q, %v), want (%q, %v)", tt.name, p.ID, ok, tt.wantID, tt.ok)
		}
	}
}

func TestResolveFallback(t *testing.T) {
	profiles := []Profile{{ID: "p1", Name: "Starter"}}
	record := SubscriptionRecord{PlanCode: "XXX-1", PlanName: "No Match Here"}

	res, err := Resolve(record, nil, nil, profiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProfileID != "p1" {
		t.Fatalf("expected fallback profile p1, got %q", res.ProfileID)
	}
	if !res.Fallback {
		t.Fatalf("expected fallback flag to be set")
	}
}

func TestResolveUnknownProfileNameFallsBack(t *testing.T) {
	profiles := []Profile{{ID: "p1", Name: "Starter"}, {ID: "p2", Name: "Premium"}}
	mappings := []ProfileMapping{{Keyword: "gold", ProfileName: "Gold"}}
	record := SubscriptionRecord{PlanName: "Gold Plan"}

	res, err := Resolve(record, nil, mappings, profiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.ProfileID != "p1" || !res.Fallback {
		t.Fatalf("expected fallback to first profile, got id=%q fallback=%v", res.ProfileID, res.Fallback)
	}
}

func TestResolveConfidentMatchClearsFallback(t *testing.T) {
	profiles := []Profile{{ID: "p1", Name: "Starter"}, {ID: "p2", Name: "Premium"}}
	mappings := []ProfileMapping{{Keyword: "premium", ProfileName: "Premium"}}
	record := SubscriptionRecord{PlanName: "Premium Yearly", PlanCode: "WTS-100"}
	usecases := []UsecaseMapping{{Prefix: "WTS", Usecase: "Web Tracking Solution"}}

	res, err := Resolve(record, usecases, mappings, profiles)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Fallback {
		t.Fatalf("expected rule-derived resolution, got fallback")
	}
	if res.ProfileID != "p2" || res.ProfileName != "Premium" {
		t.Fatalf("unexpected profile: id=%q name=%q", res.ProfileID, res.ProfileName)
	}
	if res.Usecase != "Web Tracking Solution" {
		t.Fatalf("unexpected usecase: %q", res.Usecase)
	}
}

func TestResolveNoProfilesConfigured(t *testing.T) {
	_, err := Resolve(SubscriptionRecord{PlanCode: "WTS-100"}, nil, nil, nil)
	if !errors.Is(err, ErrNoProfilesConfigured) {
		t.Fatalf("expected ErrNoProfilesConfigured, got %v", err)
	}
}
