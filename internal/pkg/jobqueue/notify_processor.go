package jobqueue

import (
	"fmt"

	"github.com/nibiaa/TenantDesk/internal/pkg/mail"
)

// processProvisionNotify sends the post-provisioning summary mail to the
// technical manager.
func processProvisionNotify(job *Job) error {
	payload, err := ProvisionNotifyPayloadFromMap(job.Payload)
	if err != nil {
		return fmt.Errorf("invalid provision notify payload: %w", err)
	}
	if payload.To == "" {
		return fmt.Errorf("provision notify job %s has no recipient", job.ID)
	}

	return mail.SendProvisionNotification(payload.To, mail.ProvisionNotification{
		TenantTitle:    payload.TenantTitle,
		TenantID:       payload.TenantID,
		Usecase:        payload.Usecase,
		Plan:           payload.Plan,
		AdminEmail:     payload.AdminEmail,
		ActivationLink: payload.ActivationLink,
		Tasks:          payload.Tasks,
	})
}
