package otel

import "testing"

func TestSettingsFromEnv(t *testing.T) {
	cases := []struct {
		name        string
		endpoint    string
		enabled     string
		ratio       string
		wantEnabled bool
		wantRatio   float64
	}{
		{name: "no endpoint", wantRatio: 0},
		{name: "endpoint", endpoint: "http://collector:4318", wantEnabled: true, wantRatio: 1},
		{name: "disabled", endpoint: "http://collector:4318", enabled: "FALSE", wantRatio: 0},
		{name: "ratio", endpoint: "http://collector:4318", ratio: "0.25", wantEnabled: true, wantRatio: 0.25},
		{name: "ratio out of range", endpoint: "http://collector:4318", ratio: "1.5", wantEnabled: true, wantRatio: 1},
		{name: "ratio invalid", endpoint: "http://collector:4318", ratio: "half", wantEnabled: true, wantRatio: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvEndpoint, tc.endpoint)
			t.Setenv(EnvEnabled, tc.enabled)
			t.Setenv(EnvSampleRatio, tc.ratio)

			got := settingsFromEnv()
			if got.enabled() != tc.wantEnabled {
				t.Fatalf("enabled = %v, want %v", got.enabled(), tc.wantEnabled)
			}
			if got.ratio != tc.wantRatio {
				t.Fatalf("ratio = %v, want %v", got.ratio, tc.wantRatio)
			}
		})
	}
}

func TestSettingsSampler(t *testing.T) {
	if got := (settings{ratio: 1}).sampler().Description(); got != "AlwaysOnSampler" {
		t.Fatalf("sampler = %q, want AlwaysOnSampler", got)
	}
	if got := (settings{ratio: 0.5}).sampler().Description(); got == "AlwaysOnSampler" {
		t.Fatal("expected ratio sampler for 0.5")
	}
}
