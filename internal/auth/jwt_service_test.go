package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time            { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestService(clock *fakeClock) *JWTService {
	return NewJWTService("test-secret", time.Hour, WithClock(clock.Now))
}

func sampleClaims() Claims {
	return Claims{
		UserID:    "64b7f0c2a1b2c3d4e5f60718",
		Email:     "a@x.com",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Status:    1,
		Role:      "admin",
	}
}

func TestJWTService_IssueVerifyRoundTrip(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := newTestService(clock)

	for _, ttl := range []time.Duration{time.Second, time.Minute, 24 * time.Hour} {
		in := sampleClaims()
		token, err := svc.Issue(in, ttl)
		require.NoError(t, err)

		got, err := svc.Verify(token)
		require.NoError(t, err)
		assert.Equal(t, in.UserID, got.UserID)
		assert.Equal(t, in.Email, got.Email)
		assert.Equal(t, in.FirstName, got.FirstName)
		assert.Equal(t, in.LastName, got.LastName)
		assert.Equal(t, in.Status, got.Status)
		assert.Equal(t, in.Role, got.Role)
		assert.NotEmpty(t, got.ID)
		assert.Equal(t, clock.Now().Add(ttl).Unix(), got.ExpiresAt.Unix())
	}
}

func TestJWTService_VerifyIsRepeatable(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := newTestService(clock)

	token, err := svc.IssueSession(sampleClaims())
	require.NoError(t, err)

	first, err := svc.Verify(token)
	require.NoError(t, err)
	second, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestJWTService_ExpiryBoundary(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := newTestService(clock)

	token, err := svc.Issue(sampleClaims(), time.Second)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	require.NoError(t, err)

	// exactly at expiry the token is no longer valid
	clock.Advance(time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)

	clock.Advance(time.Second)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_ExpiryFromSubSecondClock(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 700*int64(time.Millisecond))}
	svc := newTestService(clock)

	token, err := svc.Issue(sampleClaims(), 2*time.Second)
	require.NoError(t, err)

	claims, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1700000000), claims.IssuedAt.Unix())
	assert.Equal(t, int64(1700000002), claims.ExpiresAt.Unix())
	assert.Equal(t, 2*time.Second, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	clock.t = time.Unix(1700000001, 999*int64(time.Millisecond))
	_, err = svc.Verify(token)
	require.NoError(t, err)

	clock.t = time.Unix(1700000002, 0)
	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_RejectsBadTokens(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := newTestService(clock)

	token, err := svc.IssueSession(sampleClaims())
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	noneToken, err := jwt.NewWithClaims(jwt.SigningMethodNone, sampleClaims()).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"malformed", "not.a.jwt"},
		{"empty", ""},
		{"tampered payload", tampered},
		{"wrong secret", mustIssue(t, NewJWTService("other-secret", time.Hour, WithClock(clock.Now)))},
		{"alg none", noneToken},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Verify(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestJWTService_PurposesAreNotInterchangeable(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := newTestService(clock)

	session, err := svc.IssueSession(sampleClaims())
	require.NoError(t, err)
	reset, err := svc.IssueReset("user-1")
	require.NoError(t, err)

	_, err = svc.VerifyReset(session)
	assert.ErrorIs(t, err, ErrWrongPurpose)
	_, err = svc.VerifySession(reset)
	assert.ErrorIs(t, err, ErrWrongPurpose)

	claims, err := svc.VerifyReset(reset)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Empty(t, claims.Email)
	assert.Equal(t, ResetTokenExpiry, svc.Remaining(claims))

	clock.Advance(ResetTokenExpiry)
	_, err = svc.VerifyReset(reset)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_MissingSecret(t *testing.T) {
	svc := NewJWTService("", time.Hour)

	_, err := svc.IssueSession(sampleClaims())
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = svc.Verify("a.b.c")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestJWTService_DefaultsSessionTTL(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	svc := NewJWTService("k", 0, WithClock(clock.Now))

	token, err := svc.IssueSession(sampleClaims())
	require.NoError(t, err)
	claims, err := svc.VerifySession(token)
	require.NoError(t, err)
	assert.Equal(t, DefaultSessionTokenExpiry, claims.ExpiresAt.Sub(claims.IssuedAt.Time))

	_, err = svc.Issue(sampleClaims(), 0)
	assert.Error(t, err)
}

func mustIssue(t *testing.T, svc *JWTService) string {
	t.Helper()
	token, err := svc.IssueSession(sampleClaims())
	require.NoError(t, err)
	return token
}
