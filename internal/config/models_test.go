package config

import (
	"errors"
	"testing"

	"github.com/muurk/aiobridge/internal/session"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		detection *Detection
		want      session.Target
		wantErr   bool
	}{
		{
			name:      "auto detect wins",
			detection: &Detection{AutoDetect: true, FindByMAC: true, MAC: "AA", FindByIP: true, IP: "1.2.3.4"},
			want:      session.AnyTarget(),
		},
		{
			name:      "mac before ip",
			detection: &Detection{FindByMAC: true, MAC: "AA:BB:CC:DD:EE:FF", FindByIP: true, IP: "1.2.3.4"},
			want:      session.ByMAC("AA:BB:CC:DD:EE:FF"),
		},
		{
			name:      "ip",
			detection: &Detection{FindByIP: true, IP: "10.0.0.5"},
			want:      session.ByIP("10.0.0.5"),
		},
		{
			name:      "nothing enabled",
			detection: &Detection{MAC: "AA", IP: "1.2.3.4"},
			wantErr:   true,
		},
		{
			name:    "no section",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Detection: tt.detection}
			got, err := cfg.Resolve()

			if tt.wantErr {
				if !errors.Is(err, ErrNoDetectionMethod) {
					t.Errorf("Resolve() error = %v, want ErrNoDetectionMethod", err)
				}
				if got.Mode != session.ModeNone {
					t.Errorf("Resolve() mode = %v, want none", got.Mode)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		EnvMQTTBroker: "tcp://broker:1883",
		EnvMQTTUser:   "bridge",
		EnvMQTTPass:   "secret",
		EnvMAC:        "AA:BB:CC:DD:EE:FF",
	}

	cfg := New()
	cfg.ApplyEnv(func(k string) string { return env[k] })

	if !cfg.MQTT.Enabled || cfg.MQTT.Broker != "tcp://broker:1883" {
		t.Errorf("MQTT = %+v", cfg.MQTT)
	}
	if cfg.MQTT.Username != "bridge" || cfg.MQTT.Password != "secret" {
		t.Errorf("MQTT credentials = %q/%q", cfg.MQTT.Username, cfg.MQTT.Password)
	}

	target, err := cfg.Resolve()
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if target != session.ByMAC("AA:BB:CC:DD:EE:FF") {
		t.Errorf("Resolve() = %v, want MAC target", target)
	}
}

func TestApplyEnv_Empty(t *testing.T) {
	cfg := New()
	cfg.ApplyEnv(func(string) string { return "" })

	if !cfg.Detection.AutoDetect {
		t.Error("empty environment should leave auto_detect alone")
	}
	if cfg.MQTT.Enabled {
		t.Error("empty environment should not enable MQTT")
	}
}
