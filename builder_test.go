package rentauth

import (
	"context"
	"testing"
)

func TestBuildRequiresStore(t *testing.T) {
	if _, err := New().WithConfig(testConfig()).Build(); err == nil {
		t.Fatal("expected Build to fail without a store")
	}
}

func TestBuildValidatesConfig(t *testing.T) {
	store := newMockStore()

	missingSecrets := testConfig()
	missingSecrets.JWT.AccessSecret = nil
	if _, err := New().WithConfig(missingSecrets).WithStore(store).Build(); err == nil {
		t.Fatal("expected Build to reject missing JWT secret")
	}

	missingKey := testConfig()
	missingKey.Cipher.Key = nil
	if _, err := New().WithConfig(missingKey).WithStore(store).Build(); err == nil {
		t.Fatal("expected Build to reject missing cipher key")
	}

	shortKey := testConfig()
	shortKey.Cipher.Key = []byte("too-short")
	if _, err := New().WithConfig(shortKey).WithStore(store).Build(); err == nil {
		t.Fatal("expected Build to reject short cipher key")
	}

	adminSignup := testConfig()
	adminSignup.Account.SignupRoles = []Role{RoleTenant, RoleAdmin}
	if _, err := New().WithConfig(adminSignup).WithStore(store).Build(); err == nil {
		t.Fatal("expected Build to reject admin as signup role")
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New().WithConfig(testConfig()).WithStore(newMockStore())
	engine, err := b.Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	defer engine.Close()

	if _, err := b.Build(); err == nil {
		t.Fatal("expected second Build on the same builder to fail")
	}
}

func TestMetricsSnapshotCounts(t *testing.T) {
	store := newMockStore()
	engine := newTestEngine(t, store)

	ctx := context.Background()
	registerTestAccount(t, engine, "alice@example.com", "password-123")
	if _, err := engine.Login(ctx, "alice@example.com", "password-123"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if _, err := engine.Login(ctx, "alice@example.com", "wrong"); err == nil {
		t.Fatal("expected failed login")
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricRegisterSuccess] != 1 {
		t.Fatalf("expected 1 register success, got %d", snap.Counters[MetricRegisterSuccess])
	}
	if snap.Counters[MetricLoginSuccess] != 1 || snap.Counters[MetricLoginFailure] != 1 {
		t.Fatalf("unexpected login counters: %+v", snap.Counters)
	}
}

func TestAuditTrailEmitsEvents(t *testing.T) {
	store := newMockStore()
	sink := NewChannelSink(16)

	cfg := testConfig()
	cfg.Audit.Enabled = true
	engine := newTestEngine(t, store, func(b *Builder) {
		b.WithConfig(cfg).WithAuditSink(sink)
	})

	registerTestAccount(t, engine, "bob@example.com", "password-123")
	engine.Close()

	var sawRegister bool
	for {
		select {
		case event := <-sink.Events():
			if event.EventType == auditEventRegister && event.Success {
				sawRegister = true
			}
			continue
		default:
		}
		break
	}
	if !sawRegister {
		t.Fatal("expected a successful account_register audit event")
	}
}
