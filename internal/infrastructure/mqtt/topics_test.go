package mqtt

import "testing"

func TestTopics(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"command event", topics.CommandEvent("delivered", "esp32-1"), "roomlink/event/delivered/esp32-1"},
		{"system status", topics.SystemStatus(), "roomlink/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestBuildClientOptionsScheme(t *testing.T) {
	cfg := testMQTTConfig()
	opts := buildClientOptions(cfg)
	if got := opts.Servers[0].Scheme; got != "tcp" {
		t.Errorf("scheme = %q, want tcp", got)
	}

	cfg.Broker.TLS = true
	opts = buildClientOptions(cfg)
	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("scheme with TLS = %q, want ssl", got)
	}
}
