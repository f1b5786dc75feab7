package envstruct_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/liftplan/internal/envstruct"
)

type serverConfig struct {
	Addr          string        `env:"ADDR"`
	Plan          string        `env:"PLAN"           envDefault:"ppl6"`
	MaxWeeks      int           `env:"MAX_WEEKS"      envDefault:"8"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"true"`
	CacheTTL      time.Duration `env:"CACHE_TTL"      envDefault:"10m"`
	Untagged      string
}

func env(vars map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := vars[key]
		return v, ok
	}
}

func TestPopulate(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    serverConfig
		wantErr error
	}{
		{
			name: "defaults",
			env:  map[string]string{"ADDR": "localhost:0"},
			want: serverConfig{Addr: "localhost:0", Plan: "ppl6", MaxWeeks: 8, SecureCookies: true,
				CacheTTL: 10 * time.Minute, Untagged: ""},
			wantErr: nil,
		},
		{
			name: "environment wins over defaults",
			env: map[string]string{"ADDR": ":8080", "PLAN": "fullbody3", "MAX_WEEKS": "12",
				"SECURE_COOKIES": "false", "CACHE_TTL": "90s", "Untagged": "ignored"},
			want: serverConfig{Addr: ":8080", Plan: "fullbody3", MaxWeeks: 12, SecureCookies: false,
				CacheTTL: 90 * time.Second, Untagged: ""},
			wantErr: nil,
		},
		{
			name:    "required variable missing",
			env:     map[string]string{},
			want:    serverConfig{},
			wantErr: envstruct.ErrEnvNotSet,
		},
		{
			name:    "invalid int",
			env:     map[string]string{"ADDR": ":8080", "MAX_WEEKS": "eight"},
			want:    serverConfig{},
			wantErr: envstruct.ErrParse,
		},
		{
			name:    "invalid bool",
			env:     map[string]string{"ADDR": ":8080", "SECURE_COOKIES": "maybe"},
			want:    serverConfig{},
			wantErr: envstruct.ErrParse,
		},
		{
			name:    "invalid duration",
			env:     map[string]string{"ADDR": ":8080", "CACHE_TTL": "10 minutes"},
			want:    serverConfig{},
			wantErr: envstruct.ErrParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got serverConfig
			err := envstruct.Populate(&got, env(tt.env))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Populate() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Populate() unexpected error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Populate() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPopulate_invalidTarget(t *testing.T) {
	lookup := env(map[string]string{"RATE": "1.5"})
	targets := map[string]any{
		"nil":         nil,
		"not pointer": serverConfig{},
		"unsupported field": &struct {
			Rate float64 `env:"RATE"`
		}{Rate: 0},
	}
	for name, v := range targets {
		t.Run(name, func(t *testing.T) {
			if err := envstruct.Populate(v, lookup); !errors.Is(err, envstruct.ErrInvalidValue) {
				t.Errorf("Populate() error = %v, want %v", err, envstruct.ErrInvalidValue)
			}
		})
	}
}
