package jobqueue

import (
	"testing"
)

func TestProcessProvisionNotifyRejectsMissingRecipient(t *testing.T) {
	payload := ProvisionNotifyPayload{
		TenantTitle: "Acme Corp",
		TenantID:    "tenant-9",
	}

	job := &Job{ID: "job-1", Type: JobTypeProvisionNotify, Payload: payload.ToMap()}
	if err := processProvisionNotify(job); err == nil {
		t.Fatalf("expected an error for a job without recipient")
	}
}

func TestProvisionNotifyPayloadRoundTrip(t *testing.T) {
	payload := ProvisionNotifyPayload{
		To:             "jane@nibiaa.com",
		TenantTitle:    "Acme Corp",
		TenantID:       "tenant-9",
		Usecase:        "Web Tracking",
		Plan:           "Web Tracking Basic",
		AdminEmail:     "jane+acmecorp@nibiaa.com",
		ActivationLink: "https://platform.example/activate?token=abc",
		Tasks:          []string{"Verify tenant login"},
	}

	got, err := ProvisionNotifyPayloadFromMap(payload.ToMap())
	if err != nil {
		t.Fatalf("payload from map: %v", err)
	}
	if got.To != payload.To || got.AdminEmail != payload.AdminEmail || len(got.Tasks) != 1 {
		t.Fatalf("unexpected payload: %+v", got)
	}
}
