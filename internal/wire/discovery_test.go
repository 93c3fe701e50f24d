package wire

import (
	"errors"
	"testing"
)

func TestParseDiscoveryReply(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
		wantIP  string
		wantMAC string
	}{
		{
			name:    "canonical order",
			raw:     "IP:10.0.0.5\nMAC:AA:BB:CC:DD:EE:FF\nNAME:AIO GATEWAY",
			wantIP:  "10.0.0.5",
			wantMAC: "AA:BB:CC:DD:EE:FF",
		},
		{
			name:    "name first",
			raw:     "NAME:AIO GATEWAY\nMAC:AA:BB:CC:DD:EE:FF\nIP:10.0.0.5\n",
			wantIP:  "10.0.0.5",
			wantMAC: "AA:BB:CC:DD:EE:FF",
		},
		{
			name:    "crlf line endings and extra keys",
			raw:     "VER:1.2\r\nMAC:00:11:22:33:44:55\r\nNAME:AIO GATEWAY\r\nIP:192.168.1.20\r\n",
			wantIP:  "192.168.1.20",
			wantMAC: "00:11:22:33:44:55",
		},
		{
			name:    "gateway without ip",
			raw:     "MAC:00:11:22:33:44:55\nNAME:AIO GATEWAY",
			wantIP:  "",
			wantMAC: "00:11:22:33:44:55",
		},
		{
			name:    "other device name",
			raw:     "IP:10.0.0.9\nMAC:AA:BB:CC:DD:EE:01\nNAME:OTHER BOX",
			wantErr: ErrNotGateway,
		},
		{
			name:    "name with suffix is not exact",
			raw:     "IP:10.0.0.9\nNAME:AIO GATEWAY V5",
			wantErr: ErrNotGateway,
		},
		{
			name:    "lowercase name",
			raw:     "IP:10.0.0.9\nNAME:aio gateway",
			wantErr: ErrNotGateway,
		},
		{
			name:    "no name line",
			raw:     "IP:10.0.0.9\nMAC:AA:BB:CC:DD:EE:01",
			wantErr: ErrNotGateway,
		},
		{
			name:    "empty datagram",
			raw:     "",
			wantErr: ErrNotGateway,
		},
		{
			name:    "probe echo",
			raw:     "GET\n",
			wantErr: ErrNotGateway,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply, err := ParseDiscoveryReply([]byte(tt.raw))

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseDiscoveryReply() error = %v, want %v", err, tt.wantErr)
				}
				if reply != nil {
					t.Errorf("ParseDiscoveryReply() reply = %v, want nil", reply)
				}
				return
			}

			if err != nil {
				t.Fatalf("ParseDiscoveryReply() unexpected error = %v", err)
			}
			if reply.IP != tt.wantIP {
				t.Errorf("IP = %q, want %q", reply.IP, tt.wantIP)
			}
			if reply.MAC != tt.wantMAC {
				t.Errorf("MAC = %q, want %q", reply.MAC, tt.wantMAC)
			}
			if reply.DeviceName != GatewayName {
				t.Errorf("DeviceName = %q, want %q", reply.DeviceName, GatewayName)
			}
		})
	}
}

func TestParseDiscoveryReply_LineOrderIrrelevant(t *testing.T) {
	lines := []string{"IP:10.1.2.3", "MAC:DE:AD:BE:EF:00:01", "NAME:AIO GATEWAY"}
	orders := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}

	for _, order := range orders {
		raw := lines[order[0]] + "\n" + lines[order[1]] + "\n" + lines[order[2]]
		reply, err := ParseDiscoveryReply([]byte(raw))
		if err != nil {
			t.Fatalf("order %v: error = %v", order, err)
		}
		if reply.IP != "10.1.2.3" || reply.MAC != "DE:AD:BE:EF:00:01" {
			t.Errorf("order %v: got ip=%q mac=%q", order, reply.IP, reply.MAC)
		}
	}
}

func TestParseDiscoveryReply_Fields(t *testing.T) {
	reply, err := ParseDiscoveryReply([]byte("IP:10.0.0.5\nNAME:AIO GATEWAY\nFW:2.1"))
	if err != nil {
		t.Fatalf("ParseDiscoveryReply() error = %v", err)
	}
	if reply.Fields["FW"] != "2.1" {
		t.Errorf("Fields[FW] = %q, want 2.1", reply.Fields["FW"])
	}
	if got := reply.String(); got != "AIO GATEWAY at 10.0.0.5 (mac )" {
		t.Errorf("String() = %q", got)
	}
}

func TestDiscoveryProbe(t *testing.T) {
	if got := string(DiscoveryProbe()); got != "GET\n" {
		t.Errorf("DiscoveryProbe() = %q, want %q", got, "GET\n")
	}
}
