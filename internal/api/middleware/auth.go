package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/technest/technest-api/internal/api/handler/v1/response"
	"github.com/technest/technest-api/internal/domain"
	"github.com/technest/technest-api/internal/pkg/jwthelper"
)

const (
	identityKey = "identity"
	claimsKey   = "claims"

	bearerPrefix = "Bearer "
)

var (
	errMissingToken      = errors.New("missing bearer token")
	errRevokedToken      = errors.New("token has been revoked")
	errUserAgentMismatch = errors.New("token was issued to another user agent")
)

type RevocationChecker interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Authenticator struct {
	signingKey []byte
	revocation RevocationChecker
}

// NewAuthenticator verifies tokens signed with signingKey. A nil revocation
// checker accepts every unexpired token.
func NewAuthenticator(signingKey string, revocation RevocationChecker) *Authenticator {
	return &Authenticator{
		signingKey: []byte(signingKey),
		revocation: revocation,
	}
}

// VerifyJWT rejects the request unless it carries a valid, unrevoked token.
func (a *Authenticator) VerifyJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims, respErr := a.authenticate(ctx)
		if respErr != nil {
			response.RenderErr(ctx, respErr)
			return
		}

		setIdentity(ctx, claims)
		ctx.Next()
	}
}

// OptionalJWT lets anonymous requests through. A request with an unusable
// token is treated as anonymous too.
func (a *Authenticator) OptionalJWT() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.GetHeader("Authorization") == "" {
			ctx.Next()
			return
		}

		claims, respErr := a.authenticate(ctx)
		if respErr == nil {
			setIdentity(ctx, claims)
		}

		ctx.Next()
	}
}

func (a *Authenticator) authenticate(ctx *gin.Context) (*jwthelper.UserClaims, *response.Err) {
	tokenString, ok := bearerToken(ctx.GetHeader("Authorization"))
	if !ok {
		return nil, response.ErrUnauthenticated(errMissingToken)
	}

	claims, err := jwthelper.ParseToken(a.signingKey, tokenString)
	if err != nil {
		return nil, response.ErrUnauthenticated(err)
	}

	if claims.UserAgent != ctx.Request.UserAgent() {
		return nil, response.ErrUnauthenticated(errUserAgentMismatch)
	}

	if a.revocation != nil {
		revoked, err := a.revocation.IsRevoked(ctx.Request.Context(), claims.ID)
		if err != nil {
			err = fmt.Errorf("middleware.authenticate -> a.revocation.IsRevoked -> %w", err)
			return nil, response.ErrInternalServerError(err)
		}
		if revoked {
			return nil, response.ErrUnauthenticated(errRevokedToken)
		}
	}

	return claims, nil
}

func bearerToken(header string) (string, bool) {
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))

	return token, token != ""
}

func setIdentity(ctx *gin.Context, claims *jwthelper.UserClaims) {
	ctx.Set(claimsKey, claims)
	ctx.Set(identityKey, &domain.Identity{
		UserID: claims.UserID,
		Role:   domain.Role(claims.Role),
	})
}

// Identity returns the caller set by VerifyJWT or OptionalJWT, or nil for an
// anonymous request.
func Identity(ctx *gin.Context) *domain.Identity {
	value, ok := ctx.Get(identityKey)
	if !ok {
		return nil
	}

	identity, _ := value.(*domain.Identity)
	return identity
}

func Claims(ctx *gin.Context) *jwthelper.UserClaims {
	value, ok := ctx.Get(claimsKey)
	if !ok {
		return nil
	}

	claims, _ := value.(*jwthelper.UserClaims)
	return claims
}
