package auth

import (
	"strings"
	"testing"

	"pacta/config"
	domainerrors "pacta/internal/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher() *bcryptHasher {
	cfg := &config.Config{
		Auth: &config.AuthConfig{BcryptCost: 4}, // low cost keeps tests fast
		PasswordStrength: &config.PasswordStrengthConfig{
			MinLength:        12,
			RequireUppercase: true,
			RequireLowercase: true,
			RequireNumbers:   true,
			RequireSpecial:   true,
		},
	}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_HashProducesUniqueSalts(t *testing.T) {
	hasher := newTestHasher()

	first, err := hasher.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	second, err := hasher.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	// Same plaintext, distinct salts, both verify.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("Str0ng!Passw0rd", first))
	assert.True(t, hasher.Check("Str0ng!Passw0rd", second))
}

func TestBcryptHasher_CheckRejectsWrongPassword(t *testing.T) {
	hasher := newTestHasher()

	hash, err := hasher.Hash("Str0ng!Passw0rd")
	require.NoError(t, err)

	assert.False(t, hasher.Check("wrong-password", hash))
}

func TestBcryptHasher_CheckMalformedHashIsNonMatch(t *testing.T) {
	hasher := newTestHasher()

	assert.False(t, hasher.Check("Str0ng!Passw0rd", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Check("Str0ng!Passw0rd", ""))
}

func TestBcryptHasher_ValidateStrength(t *testing.T) {
	hasher := newTestHasher()

	tests := []struct {
		name     string
		password string
		wantErr  bool
		detail   string
	}{
		{name: "valid", password: "Str0ng!Passw0rd", wantErr: false},
		{name: "too short", password: "Ab1!xyz", wantErr: true, detail: "minimum length"},
		{name: "over bcrypt limit", password: "Ab1!" + strings.Repeat("x", 70), wantErr: true, detail: "72 byte"},
		{name: "missing uppercase", password: "str0ng!passw0rd", wantErr: true, detail: "uppercase"},
		{name: "missing lowercase", password: "STR0NG!PASSW0RD", wantErr: true, detail: "lowercase"},
		{name: "missing digit", password: "Strong!Password", wantErr: true, detail: "digit"},
		{name: "missing special", password: "Str0ngPassw0rd1", wantErr: true, detail: "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := hasher.ValidateStrength(tt.password)
			if !tt.wantErr {
				assert.NoError(t, err)

				return
			}

			require.Error(t, err)

			var appErr domainerrors.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "PASSWORD_STRENGTH", appErr.ErrorCode())
			assert.Contains(t, appErr.Details(), tt.detail)
		})
	}
}
