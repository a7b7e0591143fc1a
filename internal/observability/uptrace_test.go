package observability

import (
	"context"
	"testing"

	"github.com/riskibarqy/livescore/internal/config"
	"github.com/riskibarqy/livescore/internal/platform/logging"
)

func TestInitUptrace_Disabled(t *testing.T) {
	for _, cfg := range []config.Config{
		{UptraceEnabled: false, ServiceName: "livescore-api", AppEnv: config.EnvDev},
		{UptraceEnabled: true, UptraceDSN: "  ", ServiceName: "livescore-api", AppEnv: config.EnvDev},
	} {
		shutdown, err := InitUptrace(cfg, logging.NewNop())
		if err != nil {
			t.Fatalf("init uptrace: %v", err)
		}
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown uptrace: %v", err)
		}
	}
}
