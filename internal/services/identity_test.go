package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"hostel-complaints-backend-go/internal/models"
	"hostel-complaints-backend-go/internal/store"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokens() TokenService {
	return TokenService{Secret: []byte("test-secret"), Issuer: "hostel-complaints-test", AccessTTL: time.Hour}
}

func TestIdentityGateResolve(t *testing.T) {
	mem := store.NewMemory()
	student := addUser(t, mem, "alice", models.RoleStudent)
	gate := IdentityGate{Tokens: testTokens(), Users: mem}
	ctx := context.Background()

	token, _, err := gate.Tokens.Issue(student.UserID, student.Username, student.Role)
	require.NoError(t, err)

	identity, err := gate.Resolve(ctx, "Bearer "+token)
	require.NoError(t, err)
	assert.Equal(t, student, identity)

	tests := []struct {
		name   string
		header string
		reason string
	}{
		{"missing", "", ReasonCredentialMissing},
		{"no bearer prefix", token, ReasonCredentialMalformed},
		{"basic scheme", "Basic dXNlcjpwYXNz", ReasonCredentialMalformed},
		{"empty bearer", "Bearer ", ReasonCredentialMalformed},
		{"garbage token", "Bearer not.a.jwt", ReasonTokenInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := gate.Resolve(ctx, tt.header)
			requireKind(t, err, KindUnauthenticated)
			assert.Equal(t, tt.reason, ReasonOf(err))
		})
	}
}

func TestIdentityGateTokenFailures(t *testing.T) {
	mem := store.NewMemory()
	student := addUser(t, mem, "alice", models.RoleStudent)
	gate := IdentityGate{Tokens: testTokens(), Users: mem}
	ctx := context.Background()

	expired := gate.Tokens
	expired.AccessTTL = -time.Minute
	token, _, err := expired.Issue(student.UserID, student.Username, student.Role)
	require.NoError(t, err)
	_, err = gate.ResolveToken(ctx, token)
	requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, ReasonTokenExpired, ReasonOf(err))

	forged := gate.Tokens
	forged.Secret = []byte("someone-else")
	token, _, err = forged.Issue(student.UserID, student.Username, student.Role)
	require.NoError(t, err)
	_, err = gate.ResolveToken(ctx, token)
	assert.Equal(t, ReasonTokenInvalid, ReasonOf(err))

	otherIssuer := gate.Tokens
	otherIssuer.Issuer = "elsewhere"
	token, _, err = otherIssuer.Issue(student.UserID, student.Username, student.Role)
	require.NoError(t, err)
	_, err = gate.ResolveToken(ctx, token)
	assert.Equal(t, ReasonTokenInvalid, ReasonOf(err))

	token, _, err = gate.Tokens.Issue(uuid.NewString(), "ghost", models.RoleMaintainer)
	require.NoError(t, err)
	_, err = gate.ResolveToken(ctx, token)
	requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, ReasonUserNotFound, ReasonOf(err))

	token, _, err = gate.Tokens.Issue("not-a-uuid", "ghost", models.RoleMaintainer)
	require.NoError(t, err)
	_, err = gate.ResolveToken(ctx, token)
	requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, ReasonTokenInvalid, ReasonOf(err))
}

type failingUsers struct {
	store.UserStore
}

func (failingUsers) FindUserByID(context.Context, string) (*models.User, error) {
	return nil, errors.New("invalid input syntax for type uuid")
}

func TestIdentityGateChecksSubjectBeforeLookup(t *testing.T) {
	gate := IdentityGate{Tokens: testTokens(), Users: failingUsers{}}
	token, _, err := gate.Tokens.Issue("42", "alice", models.RoleStudent)
	require.NoError(t, err)

	_, err = gate.ResolveToken(context.Background(), token)
	requireKind(t, err, KindUnauthenticated)
	assert.Equal(t, ReasonTokenInvalid, ReasonOf(err))
}

func TestIdentityGateUsesStoredRole(t *testing.T) {
	mem := store.NewMemory()
	student := addUser(t, mem, "alice", models.RoleStudent)
	gate := IdentityGate{Tokens: testTokens(), Users: mem}

	token, _, err := gate.Tokens.Issue(student.UserID, student.Username, models.RoleMaintainer)
	require.NoError(t, err)
	identity, err := gate.ResolveToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, identity.Role)
}

func TestTokenRejectsOtherSigningMethod(t *testing.T) {
	tokens := testTokens()
	claims := Claims{
		Role: models.RoleMaintainer,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokens.Issuer,
			Subject:   "u1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = tokens.Verify(unsigned)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenRoundTrip(t *testing.T) {
	tokens := testTokens()
	token, exp, err := tokens.Issue("u1", "alice", models.RoleStudent)
	require.NoError(t, err)
	assert.InDelta(t, time.Now().Add(time.Hour).Unix(), exp, 5)

	claims, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.Subject)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleStudent, claims.Role)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("S3cret!pass")
	require.NoError(t, err)
	assert.NotEqual(t, "S3cret!pass", hash)
	assert.True(t, VerifyPassword("S3cret!pass", hash))
	assert.False(t, VerifyPassword("wrong", hash))

	again, err := HashPassword("S3cret!pass")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again)
}
