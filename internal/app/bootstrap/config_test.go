package bootstrap

import (
	"testing"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validAppConfig() AppConfig {
	return AppConfig{
		APIBaseURL:    "https://api.edusphere.example.com",
		SessionKey:    "0123456789abcdef0123456789abcdef",
		SessionName:   "edusphere-session",
		AuditLogAuth:  "log",
		AuditLogStaff: "log",
	}
}

func TestValidateConfig_OK(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}
	if err := ValidateConfig(core, validAppConfig(), testLogger()); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateConfig_RelativeAPIBase(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.APIBaseURL = "api.edusphere.example.com"

	if err := ValidateConfig(core, cfg, testLogger()); err == nil {
		t.Error("expected error for non-absolute api_base_url")
	}
}

func TestValidateConfig_BadAuditMode(t *testing.T) {
	core := &config.CoreConfig{Env: "dev"}
	cfg := validAppConfig()
	cfg.AuditLogStaff = "verbose"

	if err := ValidateConfig(core, cfg, testLogger()); err == nil {
		t.Error("expected error for unknown audit mode")
	}
}

func TestValidateConfig_DevKeyInProd(t *testing.T) {
	core := &config.CoreConfig{Env: "prod"}
	cfg := validAppConfig()
	cfg.SessionKey = "dev-only-change-me-please-0123456789ABCDEF"

	if err := ValidateConfig(core, cfg, testLogger()); err == nil {
		t.Error("expected error for development session key in prod")
	}
}
