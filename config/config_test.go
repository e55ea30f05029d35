package config

import (
	"os"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("setenv %s failed: %v", key, err)
	}
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		} else {
			_ = os.Unsetenv(key)
		}
	})
}

func unsetEnv(t *testing.T, key string) {
	t.Helper()
	old, had := os.LookupEnv(key)
	_ = os.Unsetenv(key)
	t.Cleanup(func() {
		if had {
			_ = os.Setenv(key, old)
		}
	})
}

func TestLoadRequiresMySQLDSN(t *testing.T) {
	unsetEnv(t, "MYSQL_DSN")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing MYSQL_DSN")
	}
}

func TestLoadDefaultsAndOverrides(t *testing.T) {
	setEnv(t, "MYSQL_DSN", "root:root@tcp(localhost:3306)/reconcile?parseTime=true")
	setEnv(t, "APP_SERVICE_NAME", "reconcile-test")
	setEnv(t, "HTTP_PORT", "8181")
	setEnv(t, "MYSQL_MAX_OPEN_CONNS", "20")
	setEnv(t, "MYSQL_MAX_IDLE_CONNS", "8")
	setEnv(t, "MYSQL_CONN_MAX_LIFETIME_MINUTES", "40")
	setEnv(t, "CASHFREE_WEBHOOK_SECRET", "cf-secret")
	setEnv(t, "RAZORPAY_WEBHOOK_SECRET", "rzp-secret")
	setEnv(t, "RECONCILE_PENDING_TIMEOUT_MINUTES", "11")
	setEnv(t, "RECONCILE_JOB_BATCH_SIZE", "99")
	setEnv(t, "RECONCILE_EXPIRE_PENDING_INTERVAL_MINUTES", "7")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.App.ServiceName != "reconcile-test" {
		t.Fatalf("unexpected app service name: %s", cfg.App.ServiceName)
	}
	if cfg.HTTP.Port != "8181" {
		t.Fatalf("unexpected http port: %s", cfg.HTTP.Port)
	}
	if cfg.MySQL.MaxOpenConns != 20 || cfg.MySQL.MaxIdleConns != 8 {
		t.Fatalf("unexpected mysql pool config: %+v", cfg.MySQL)
	}
	if cfg.MySQL.ConnMaxLifetime != 40*time.Minute {
		t.Fatalf("unexpected mysql lifetime: %v", cfg.MySQL.ConnMaxLifetime)
	}
	if cfg.Cashfree.WebhookSecret != "cf-secret" || cfg.Razorpay.WebhookSecret != "rzp-secret" {
		t.Fatal("unexpected gateway secrets")
	}
	if cfg.Reconcile.PendingTimeout != 11*time.Minute {
		t.Fatalf("unexpected pending timeout: %v", cfg.Reconcile.PendingTimeout)
	}
	if cfg.Reconcile.JobBatchSize != 99 {
		t.Fatalf("unexpected job batch size: %d", cfg.Reconcile.JobBatchSize)
	}
	if cfg.Jobs.ExpirePendingInterval != 7*time.Minute {
		t.Fatalf("unexpected expire pending interval: %v", cfg.Jobs.ExpirePendingInterval)
	}
}
