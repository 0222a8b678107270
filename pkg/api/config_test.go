package api

import (
	"reflect"
	"testing"
)

func Test_keysFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  string
		want []string
	}{
		{name: "unset", env: "", want: nil},
		{name: "single key", env: "key-1", want: []string{"key-1"}},
		{name: "rotation pair", env: "key-1,key-2", want: []string{"key-1", "key-2"}},
		{name: "whitespace and empties", env: " key-1 , ,key-2,", want: []string{"key-1", "key-2"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("API_KEYS", tc.env)
			if got := keysFromEnv(); !reflect.DeepEqual(got, tc.want) {
				t.Errorf("want keys %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("API_KEYS", "")

	cfg := NewConfig()
	if cfg.MaxPayloadBytes != defaultMaxPayloadBytes {
		t.Errorf("want max payload %d, got %d", defaultMaxPayloadBytes, cfg.MaxPayloadBytes)
	}
	if cfg.Rules == nil {
		t.Fatal("want default rule set, got nil")
	}
	if got := len(cfg.Rules.Rules()); got != 2 {
		t.Errorf("want 2 default rules, got %d", got)
	}
	if cfg.Analyzer.BruteForceThreshold != 3 {
		t.Errorf("want brute force threshold 3, got %d", cfg.Analyzer.BruteForceThreshold)
	}
}
