package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/noah-isme/evalsuite-api/internal/utils"
)

// OperatorClaims are the claims carried by tokens issued to event operators.
// Role may be sent either as a single "role" string or as a "roles" list.
type OperatorClaims struct {
	Role   string   `json:"role,omitempty"`
	Roles  []string `json:"roles,omitempty"`
	UserID *uint    `json:"user_id,omitempty"`
	jwt.RegisteredClaims
}

// PrimaryRole returns the first non-empty role in lower case.
func (c OperatorClaims) PrimaryRole() string {
	for _, role := range append([]string{c.Role}, c.Roles...) {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			return normalized
		}
	}
	return ""
}

// OperatorID resolves the numeric operator id from user_id or the subject.
func (c OperatorClaims) OperatorID() (uint, bool) {
	if c.UserID != nil {
		return *c.UserID, true
	}
	parsed, err := strconv.ParseUint(strings.TrimSpace(c.Subject), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}

var errMissingBearer = errors.New("invalid authorization header")

// JWTProtected validates HMAC signed bearer tokens and exposes the operator
// id and role as user_id and user_role locals.
func JWTProtected(secret string) fiber.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{
		jwt.SigningMethodHS256.Alg(),
		jwt.SigningMethodHS384.Alg(),
		jwt.SigningMethodHS512.Alg(),
	}))
	key := []byte(secret)

	return func(c *fiber.Ctx) error {
		raw, err := bearerToken(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return utils.SendErrorKind(c, fiber.StatusUnauthorized, "Unauthorized", err.Error())
		}

		var claims OperatorClaims
		token, err := parser.ParseWithClaims(raw, &claims, func(*jwt.Token) (interface{}, error) {
			return key, nil
		})
		if err != nil || !token.Valid {
			return utils.SendErrorKind(c, fiber.StatusUnauthorized, "Unauthorized", "invalid token")
		}

		if id, ok := claims.OperatorID(); ok {
			c.Locals("user_id", id)
		}
		if role := claims.PrimaryRole(); role != "" {
			c.Locals("user_role", role)
		}

		return c.Next()
	}
}

func bearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", errors.New("authorization header missing")
	}

	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", errMissingBearer
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", errMissingBearer
	}
	return token, nil
}
