package jwt_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/devopsenabler/identity-core/internal/pkg/jwt"
	"github.com/stretchr/testify/require"
)

func TestIssueParseRoundTrip(t *testing.T) {
	t.Parallel()
	codec := jwt.NewCodec("test-secret")

	encoded, issued, err := codec.Issue("a@b.com", 5*time.Minute)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
	require.Equal(t, "a@b.com", issued.Subject)
	require.NotEmpty(t, issued.ID)

	parsed, err := codec.Parse(encoded)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", parsed.Subject)
	require.Equal(t, issued.ID, parsed.ID)
	require.WithinDuration(t, time.Now().Add(5*time.Minute), parsed.ExpiresAt.Time, 5*time.Second)
}

func TestIssueUniqueJTI(t *testing.T) {
	t.Parallel()
	codec := jwt.NewCodec("test-secret")

	_, first, err := codec.Issue("a@b.com", time.Minute)
	require.NoError(t, err)
	_, second, err := codec.Issue("a@b.com", time.Minute)
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)
}

func TestParseExpired(t *testing.T) {
	t.Parallel()
	codec := jwt.NewCodec("test-secret")

	encoded, _, err := codec.Issue("a@b.com", -time.Second)
	require.NoError(t, err)

	_, err = codec.Parse(encoded)
	require.ErrorIs(t, err, jwt.ErrExpired)
}

func TestParseWrongSecret(t *testing.T) {
	t.Parallel()

	encoded, _, err := jwt.NewCodec("one-secret").Issue("a@b.com", time.Minute)
	require.NoError(t, err)

	_, err = jwt.NewCodec("another-secret").Parse(encoded)
	require.ErrorIs(t, err, jwt.ErrInvalidSignature)
}

func TestParseTampered(t *testing.T) {
	t.Parallel()
	codec := jwt.NewCodec("test-secret")

	encoded, _, err := codec.Issue("a@b.com", time.Minute)
	require.NoError(t, err)

	t.Run("payload bit flipped", func(t *testing.T) {
		parts := strings.Split(encoded, ".")
		require.Len(t, parts, 3)

		payload := []byte(parts[1])
		for i := range payload {
			mutated := make([]byte, len(payload))
			copy(mutated, payload)
			mutated[i] ^= 0x01
			tampered := parts[0] + "." + string(mutated) + "." + parts[2]

			_, err := codec.Parse(tampered)
			require.Error(t, err, "tampering byte %d must not verify", i)
			require.True(t,
				errors.Is(err, jwt.ErrInvalidSignature) || errors.Is(err, jwt.ErrMalformed),
				"unexpected failure kind for byte %d: %v", i, err)
		}
	})

	t.Run("signature stripped", func(t *testing.T) {
		parts := strings.Split(encoded, ".")
		_, err := codec.Parse(parts[0] + "." + parts[1] + ".")
		require.Error(t, err)
	})

	t.Run("garbage input", func(t *testing.T) {
		_, err := codec.Parse("not-a-token")
		require.ErrorIs(t, err, jwt.ErrMalformed)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := codec.Parse("")
		require.ErrorIs(t, err, jwt.ErrMalformed)
	})
}
