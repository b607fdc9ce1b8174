package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ClaimsContextKey is where RequireAuth stores validated claims on the
// request context.
const ClaimsContextKey = "auth_claims"

// RequireAuth guards a route with bearer token validation. Tokens are
// read from the Authorization header, validated claims are stored in
// ctx.Locals under ClaimsContextKey.
func RequireAuth(ts TokenService) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		raw := tokenFromHeader(ctx.Get(fiber.HeaderAuthorization))
		if raw == "" {
			return respond(ctx, ErrorResponse(fiber.StatusUnauthorized, "Missing authentication token."))
		}

		claims, err := ts.Validate(raw)
		if err != nil {
			if IsTokenExpiredError(err) {
				return respond(ctx, ErrorResponse(fiber.StatusUnauthorized, "Authentication token has expired."))
			}
			return respond(ctx, ErrorResponse(fiber.StatusUnauthorized, "Invalid authentication token."))
		}

		ctx.Locals(ClaimsContextKey, claims)

		return ctx.Next()
	}
}

// ClaimsFromContext retrieves the claims RequireAuth stored for the
// current request.
func ClaimsFromContext(ctx *fiber.Ctx) (AuthClaims, bool) {
	claims, ok := ctx.Locals(ClaimsContextKey).(AuthClaims)
	return claims, ok
}

func tokenFromHeader(header string) string {
	const scheme = "Bearer "
	if len(header) > len(scheme) && strings.EqualFold(header[:len(scheme)], scheme) {
		return strings.TrimSpace(header[len(scheme):])
	}
	return ""
}
