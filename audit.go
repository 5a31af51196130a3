package rentauth

import (
	"time"
)

const (
	auditEventRegister                 = "account_register"
	auditEventLogin                    = "login"
	auditEventRefresh                  = "token_refresh"
	auditEventFederatedLogin           = "federated_login"
	auditEventFederatedProvision       = "federated_account_provisioned"
	auditEventPasswordChange           = "password_change"
	auditEventPasswordResetRequest     = "password_reset_request"
	auditEventPasswordResetConfirm     = "password_reset_confirm"
	auditEventEmailVerificationRequest = "email_verification_request"
	auditEventEmailVerificationConfirm = "email_verification_confirm"
	auditEventIdentityVerification     = "identity_verification"
	auditEventProfileUpdate            = "profile_update"
	auditEventNationalIDReveal         = "national_id_reveal"
)

func (e *Engine) emitAudit(eventType string, success bool, accountID, email string, opErr error, metadata map[string]string) {
	if e == nil || e.audit == nil {
		return
	}

	event := AuditEvent{
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		AccountID: accountID,
		Email:     email,
		Success:   success,
		Metadata:  metadata,
	}
	if opErr != nil {
		event.Error = Code(opErr)
	}

	e.audit.Emit(event)
}
