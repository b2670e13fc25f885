package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const (
	// DefaultSessionTokenExpiry is used when no session ttl is configured.
	DefaultSessionTokenExpiry = time.Hour
	// ResetTokenExpiry is the lifetime of password reset tokens.
	ResetTokenExpiry = 15 * time.Minute

	// PurposeSession marks tokens used as Authorization bearer credentials.
	PurposeSession = "session"
	// PurposeReset marks tokens that only authorize a password change.
	PurposeReset = "reset"
)

var (
	// ErrMissingSecret is returned when no signing secret is configured.
	ErrMissingSecret = errors.New("jwt signing secret is not configured")
	// ErrInvalidToken is returned for any token that fails verification.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired is returned once the current time reaches the token's expiry.
	ErrTokenExpired = fmt.Errorf("%w: token has expired", ErrInvalidToken)
	// ErrWrongPurpose is returned when a token of one kind is presented as another.
	ErrWrongPurpose = fmt.Errorf("%w: token purpose mismatch", ErrInvalidToken)
	// ErrTokenRevoked is returned for session tokens that were logged out.
	ErrTokenRevoked = fmt.Errorf("%w: token has been revoked", ErrInvalidToken)
)

// Claims represents JWT claims.
type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	FirstName string `json:"fname,omitempty"`
	LastName  string `json:"lname,omitempty"`
	Status    int    `json:"status"`
	Role      string `json:"role,omitempty"`
	Purpose   string `json:"purpose"`
	jwt.RegisteredClaims
}

// JWTService handles JWT token generation and validation.
type JWTService struct {
	secret     []byte
	sessionTTL time.Duration
	now        func() time.Time
}

// Option configures a JWTService.
type Option func(*JWTService)

// WithClock replaces the time source used for issuing and verifying tokens.
func WithClock(now func() time.Time) Option {
	return func(s *JWTService) {
		s.now = now
	}
}

// NewJWTService creates a new JWT service with the given secret and
// session token lifetime.
func NewJWTService(secret string, sessionTTL time.Duration, opts ...Option) *JWTService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTokenExpiry
	}
	s := &JWTService{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Issue signs claims with an expiry of now+ttl, with now taken to the second. A token ID is generated
// when claims carry none.
func (s *JWTService) Issue(claims Claims, ttl time.Duration) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	if ttl <= 0 {
		return "", fmt.Errorf("token ttl must be positive, got %s", ttl)
	}

	// NumericDate keeps whole seconds only; issuing on a second boundary
	// makes exp exactly iat+ttl.
	now := s.now().Truncate(time.Second)
	if claims.ID == "" {
		claims.ID = generateTokenID()
	}
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Verify checks the signature and expiry of tokenString and returns its
// claims. It never consults storage.
func (s *JWTService) Verify(tokenString string) (*Claims, error) {
	if len(s.secret) == 0 {
		return nil, ErrMissingSecret
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	now := s.now()
	if claims.ExpiresAt == nil || !claims.VerifyExpiresAt(now, true) {
		return nil, ErrTokenExpired
	}
	if !claims.VerifyNotBefore(now, false) {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// IssueSession issues a session token carrying the user's profile claims.
func (s *JWTService) IssueSession(claims Claims) (string, error) {
	claims.Purpose = PurposeSession
	return s.Issue(claims, s.sessionTTL)
}

// VerifySession verifies a token and requires it to be a session token.
func (s *JWTService) VerifySession(tokenString string) (*Claims, error) {
	return s.verifyPurpose(tokenString, PurposeSession)
}

// IssueReset issues a short-lived token that only carries the user ID.
func (s *JWTService) IssueReset(userID string) (string, error) {
	return s.Issue(Claims{UserID: userID, Purpose: PurposeReset}, ResetTokenExpiry)
}

// VerifyReset verifies a token and requires it to be a reset token.
func (s *JWTService) VerifyReset(tokenString string) (*Claims, error) {
	return s.verifyPurpose(tokenString, PurposeReset)
}

// Remaining returns how long claims stay valid from now.
func (s *JWTService) Remaining(claims *Claims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	return claims.ExpiresAt.Time.Sub(s.now())
}

func (s *JWTService) verifyPurpose(tokenString, purpose string) (*Claims, error) {
	claims, err := s.Verify(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != purpose || claims.UserID == "" {
		return nil, ErrWrongPurpose
	}
	return claims, nil
}

// generateTokenID generates a unique token ID (jti).
func generateTokenID() string {
	return uuid.New().String()
}
