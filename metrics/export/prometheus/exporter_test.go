package prometheus

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rentora/rentauth"
)

type fakeSource struct {
	snapshot rentauth.MetricsSnapshot
	dropped  uint64
}

func (f fakeSource) MetricsSnapshot() rentauth.MetricsSnapshot { return f.snapshot }
func (f fakeSource) AuditDropped() uint64                      { return f.dropped }

func TestRenderEmptyWhenMetricsDisabled(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: rentauth.MetricsSnapshot{
			Counters: map[rentauth.MetricID]uint64{},
		},
		dropped: 0,
	})

	if got := exp.Render(); got != "" {
		t.Fatalf("expected empty output for disabled metrics, got:\n%s", got)
	}
}

func TestRenderDeterministicIncludesCounters(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: rentauth.MetricsSnapshot{
			Counters: map[rentauth.MetricID]uint64{
				rentauth.MetricLoginSuccess:                7,
				rentauth.MetricIdentityVerificationSuccess: 2,
			},
		},
		dropped: 2,
	})

	out := exp.Render()
	if !strings.Contains(out, "rentauth_login_success_total 7") {
		t.Fatalf("expected login_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "rentauth_identity_verification_success_total 2") {
		t.Fatalf("expected identity_verification_success counter in output, got:\n%s", out)
	}
	if !strings.Contains(out, "rentauth_audit_dropped_total 2") {
		t.Fatalf("expected audit dropped counter in output, got:\n%s", out)
	}
}

func TestHandlerWritesPrometheusContentType(t *testing.T) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: rentauth.MetricsSnapshot{
			Counters: map[rentauth.MetricID]uint64{rentauth.MetricLoginSuccess: 1},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	exp.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Content-Type"); !strings.Contains(got, "text/plain") {
		t.Fatalf("expected prometheus content type, got %q", got)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func BenchmarkRender(b *testing.B) {
	exp := NewPrometheusExporterFromSource(fakeSource{
		snapshot: rentauth.MetricsSnapshot{
			Counters: map[rentauth.MetricID]uint64{
				rentauth.MetricRegisterSuccess:             300,
				rentauth.MetricLoginSuccess:                1000,
				rentauth.MetricLoginFailure:                40,
				rentauth.MetricRefreshSuccess:              800,
				rentauth.MetricRefreshFailure:              10,
				rentauth.MetricFederatedLoginSuccess:       120,
				rentauth.MetricPasswordResetConfirmFailure: 3,
			},
		},
		dropped: 0,
	})

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = exp.Render()
	}
}
