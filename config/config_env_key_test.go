package config

import "testing"

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"secretKey": map[string]any{
			"access": "",
		},
		"rateLimit": map[string]any{
			"maxRequests": 5,
		},
		"auth": map[string]any{
			"cookieDomain": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "SECRETKEY_ACCESS", want: "secretKey.access"},
		{envKey: "RATELIMIT_MAXREQUESTS", want: "rateLimit.maxRequests"},
		{envKey: "AUTH_COOKIEDOMAIN", want: "auth.cookieDomain"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}
