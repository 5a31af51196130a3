package internaldefs

import (
	"github.com/rentora/rentauth"
)

// CounterDef defines a public type used by rentauth APIs.
//
// CounterDef instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type CounterDef struct {
	ID   rentauth.MetricID
	Name string
	Help string
}

// CounterDefs is an exported constant or variable used by the account engine.
var CounterDefs = []CounterDef{
	{ID: rentauth.MetricRegisterSuccess, Name: "rentauth_register_success_total", Help: "Successful account registrations."},
	{ID: rentauth.MetricRegisterDuplicate, Name: "rentauth_register_duplicate_total", Help: "Registrations rejected as duplicate email or phone."},
	{ID: rentauth.MetricLoginSuccess, Name: "rentauth_login_success_total", Help: "Successful login attempts."},
	{ID: rentauth.MetricLoginFailure, Name: "rentauth_login_failure_total", Help: "Failed login attempts."},
	{ID: rentauth.MetricRefreshSuccess, Name: "rentauth_refresh_success_total", Help: "Successful token refresh operations."},
	{ID: rentauth.MetricRefreshFailure, Name: "rentauth_refresh_failure_total", Help: "Failed token refresh operations."},
	{ID: rentauth.MetricPasswordChangeSuccess, Name: "rentauth_password_change_success_total", Help: "Successful password changes."},
	{ID: rentauth.MetricPasswordChangeInvalidCurrent, Name: "rentauth_password_change_invalid_current_total", Help: "Password change attempts with an invalid current password."},
	{ID: rentauth.MetricPasswordChangeReuseRejected, Name: "rentauth_password_change_reuse_rejected_total", Help: "Password change attempts rejected for reuse."},
	{ID: rentauth.MetricPasswordResetRequest, Name: "rentauth_password_reset_request_total", Help: "Password reset requests."},
	{ID: rentauth.MetricPasswordResetConfirmSuccess, Name: "rentauth_password_reset_confirm_success_total", Help: "Successful password reset confirmations."},
	{ID: rentauth.MetricPasswordResetConfirmFailure, Name: "rentauth_password_reset_confirm_failure_total", Help: "Failed password reset confirmations."},
	{ID: rentauth.MetricEmailVerificationRequest, Name: "rentauth_email_verification_request_total", Help: "Email verification requests."},
	{ID: rentauth.MetricEmailVerificationSuccess, Name: "rentauth_email_verification_success_total", Help: "Successful email verifications."},
	{ID: rentauth.MetricEmailVerificationFailure, Name: "rentauth_email_verification_failure_total", Help: "Failed email verifications."},
	{ID: rentauth.MetricIdentityVerificationSuccess, Name: "rentauth_identity_verification_success_total", Help: "Completed identity verifications."},
	{ID: rentauth.MetricIdentityVerificationRejected, Name: "rentauth_identity_verification_rejected_total", Help: "Rejected identity verification attempts."},
	{ID: rentauth.MetricFederatedLoginSuccess, Name: "rentauth_federated_login_success_total", Help: "Successful federated logins."},
	{ID: rentauth.MetricFederatedLoginFailure, Name: "rentauth_federated_login_failure_total", Help: "Failed federated logins."},
	{ID: rentauth.MetricFederatedAccountProvisioned, Name: "rentauth_federated_account_provisioned_total", Help: "Accounts provisioned through federated login."},
	{ID: rentauth.MetricProfileUpdate, Name: "rentauth_profile_update_total", Help: "Profile update operations."},
	{ID: rentauth.MetricNotificationFailure, Name: "rentauth_notification_failure_total", Help: "Failed notification deliveries."},
}
