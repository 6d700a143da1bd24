package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/wasifahmed1991/pc-auction-system/internal/services"
)

const identityKey = "identity"

type IdentityResolver interface {
	Resolve(ctx context.Context, token string) (services.Identity, error)
}

// AuthRequired resolves the bearer token into a request-scoped
// identity. Engine operations receive this identity explicitly; no
// auth state outlives the request.
func AuthRequired(resolver IdentityResolver) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := bearerToken(ctx)
		if token == "" {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "token is missing"})
			return
		}

		identity, err := resolver.Resolve(ctx.Request.Context(), token)
		if err != nil {
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "token is invalid"})
			return
		}

		ctx.Set(identityKey, identity)
		ctx.Next()
	}
}

func AdminRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		identity, ok := CurrentIdentity(ctx)
		if !ok || !identity.IsAdmin() {
			ctx.AbortWithStatusJSON(http.StatusForbidden, ErrorResponse{Error: "admin role required"})
			return
		}
		ctx.Next()
	}
}

func CurrentIdentity(ctx *gin.Context) (services.Identity, bool) {
	value, ok := ctx.Get(identityKey)
	if !ok {
		return services.Identity{}, false
	}
	identity, ok := value.(services.Identity)
	return identity, ok
}

func bearerToken(ctx *gin.Context) string {
	header := ctx.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	// Legacy header used by the original web client.
	return strings.TrimSpace(ctx.GetHeader("x-access-token"))
}
