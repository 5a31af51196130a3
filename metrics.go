package rentauth

import internalmetrics "github.com/rentora/rentauth/internal/metrics"

const (
	// MetricRegisterSuccess is an exported constant or variable used by the account engine.
	MetricRegisterSuccess = MetricID(internalmetrics.MetricRegisterSuccess)
	// MetricRegisterDuplicate is an exported constant or variable used by the account engine.
	MetricRegisterDuplicate = MetricID(internalmetrics.MetricRegisterDuplicate)
	// MetricLoginSuccess is an exported constant or variable used by the account engine.
	MetricLoginSuccess = MetricID(internalmetrics.MetricLoginSuccess)
	// MetricLoginFailure is an exported constant or variable used by the account engine.
	MetricLoginFailure = MetricID(internalmetrics.MetricLoginFailure)
	// MetricRefreshSuccess is an exported constant or variable used by the account engine.
	MetricRefreshSuccess = MetricID(internalmetrics.MetricRefreshSuccess)
	// MetricRefreshFailure is an exported constant or variable used by the account engine.
	MetricRefreshFailure = MetricID(internalmetrics.MetricRefreshFailure)
	// MetricPasswordChangeSuccess is an exported constant or variable used by the account engine.
	MetricPasswordChangeSuccess = MetricID(internalmetrics.MetricPasswordChangeSuccess)
	// MetricPasswordChangeInvalidCurrent is an exported constant or variable used by the account engine.
	MetricPasswordChangeInvalidCurrent = MetricID(internalmetrics.MetricPasswordChangeInvalidCurrent)
	// MetricPasswordChangeReuseRejected is an exported constant or variable used by the account engine.
	MetricPasswordChangeReuseRejected = MetricID(internalmetrics.MetricPasswordChangeReuseRejected)
	// MetricPasswordResetRequest is an exported constant or variable used by the account engine.
	MetricPasswordResetRequest = MetricID(internalmetrics.MetricPasswordResetRequest)
	// MetricPasswordResetConfirmSuccess is an exported constant or variable used by the account engine.
	MetricPasswordResetConfirmSuccess = MetricID(internalmetrics.MetricPasswordResetConfirmSuccess)
	// MetricPasswordResetConfirmFailure is an exported constant or variable used by the account engine.
	MetricPasswordResetConfirmFailure = MetricID(internalmetrics.MetricPasswordResetConfirmFailure)
	// MetricEmailVerificationRequest is an exported constant or variable used by the account engine.
	MetricEmailVerificationRequest = MetricID(internalmetrics.MetricEmailVerificationRequest)
	// MetricEmailVerificationSuccess is an exported constant or variable used by the account engine.
	MetricEmailVerificationSuccess = MetricID(internalmetrics.MetricEmailVerificationSuccess)
	// MetricEmailVerificationFailure is an exported constant or variable used by the account engine.
	MetricEmailVerificationFailure = MetricID(internalmetrics.MetricEmailVerificationFailure)
	// MetricIdentityVerificationSuccess is an exported constant or variable used by the account engine.
	MetricIdentityVerificationSuccess = MetricID(internalmetrics.MetricIdentityVerificationSuccess)
	// MetricIdentityVerificationRejected is an exported constant or variable used by the account engine.
	MetricIdentityVerificationRejected = MetricID(internalmetrics.MetricIdentityVerificationRejected)
	// MetricFederatedLoginSuccess is an exported constant or variable used by the account engine.
	MetricFederatedLoginSuccess = MetricID(internalmetrics.MetricFederatedLoginSuccess)
	// MetricFederatedLoginFailure is an exported constant or variable used by the account engine.
	MetricFederatedLoginFailure = MetricID(internalmetrics.MetricFederatedLoginFailure)
	// MetricFederatedAccountProvisioned is an exported constant or variable used by the account engine.
	MetricFederatedAccountProvisioned = MetricID(internalmetrics.MetricFederatedAccountProvisioned)
	// MetricProfileUpdate is an exported constant or variable used by the account engine.
	MetricProfileUpdate = MetricID(internalmetrics.MetricProfileUpdate)
	// MetricNotificationFailure is an exported constant or variable used by the account engine.
	MetricNotificationFailure = MetricID(internalmetrics.MetricNotificationFailure)
)

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled: cfg.Enabled,
	})
}
