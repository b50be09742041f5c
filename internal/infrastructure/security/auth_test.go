package security

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/recipewiz/backend/internal/infrastructure/config"
)

type AuthServiceTestSuite struct {
	suite.Suite
	authService *AuthService
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.authService = NewAuthService(config.AuthConfig{
		Enabled:   true,
		JWTSecret: "test-secret-key-for-testing-only-32-bytes",
		Issuer:    "recipewiz",
	})
}

func (s *AuthServiceTestSuite) TestRoundTrip() {
	token, err := s.authService.GenerateAccessToken(42, time.Hour)
	s.Require().NoError(err)

	claims, err := s.authService.ValidateToken(token)
	s.Require().NoError(err)

	id, err := claims.UserID()
	s.Require().NoError(err)
	s.Equal(int64(42), id)
	s.Equal("recipewiz", claims.Issuer)
}

func (s *AuthServiceTestSuite) TestExpiredToken() {
	token, err := s.authService.GenerateAccessToken(42, -time.Minute)
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, jwt.ErrTokenExpired)
}

func (s *AuthServiceTestSuite) TestWrongSecret() {
	other := NewAuthService(config.AuthConfig{JWTSecret: "another-secret", Issuer: "recipewiz"})
	token, err := other.GenerateAccessToken(42, time.Hour)
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, jwt.ErrTokenSignatureInvalid)
}

func (s *AuthServiceTestSuite) TestWrongIssuer() {
	other := NewAuthService(config.AuthConfig{JWTSecret: "test-secret-key-for-testing-only-32-bytes", Issuer: "someone-else"})
	token, err := other.GenerateAccessToken(42, time.Hour)
	s.Require().NoError(err)

	_, err = s.authService.ValidateToken(token)
	s.ErrorIs(err, jwt.ErrTokenInvalidIssuer)
}

func (s *AuthServiceTestSuite) TestMalformedToken() {
	_, err := s.authService.ValidateToken("invalid.jwt.token")
	s.Error(err)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func TestClaimsUserID(t *testing.T) {
	for _, subject := range []string{"", "abc", "0", "-4"} {
		c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: subject}}
		_, err := c.UserID()
		assert.Error(t, err, subject)
	}

	c := &Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "7"}}
	id, err := c.UserID()
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)
}
