package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/dtroode/villa-auth/internal/model"
)

var _ model.TokenCodec = (*JWT)(nil)

// Claims represents access token claims. Subject carries the user ID and
// ID (jti) carries the token family.
type Claims struct {
	jwt.RegisteredClaims
	Name string `json:"name,omitempty"`
	Role string `json:"role"`
}

// AccessClaims converts JWT claims into the domain representation.
func (c *Claims) AccessClaims() (model.AccessClaims, error) {
	userID, err := uuid.Parse(c.Subject)
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("%w: bad subject", model.ErrMalformedToken)
	}
	if c.ID == "" {
		return model.AccessClaims{}, fmt.Errorf("%w: missing jti", model.ErrMalformedToken)
	}

	claims := model.AccessClaims{
		UserID:   userID,
		Username: c.Name,
		Role:     c.Role,
		FamilyID: c.ID,
	}
	if c.ExpiresAt != nil {
		claims.ExpiresAt = c.ExpiresAt.Time
	}
	return claims, nil
}

// JWT implements TokenCodec backed by symmetric HMAC.
type JWT struct {
	secretKey []byte
	issuer    string
	audience  string
	validator *jwt.Validator
}

// NewJWT creates a new JWT codec. Issuer and audience are optional.
func NewJWT(secretKey, issuer, audience string) *JWT {
	opts := []jwt.ParserOption{jwt.WithExpirationRequired()}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	return &JWT{
		secretKey: []byte(secretKey),
		issuer:    issuer,
		audience:  audience,
		validator: jwt.NewValidator(opts...),
	}
}

// Encode signs an access token for the given claims.
func (j *JWT) Encode(claims model.AccessClaims) (string, error) {
	registered := jwt.RegisteredClaims{
		Subject:   claims.UserID.String(),
		ID:        claims.FamilyID,
		Issuer:    j.issuer,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
	}
	if j.audience != "" {
		registered.Audience = jwt.ClaimStrings{j.audience}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: registered,
		Name:             claims.Username,
		Role:             claims.Role,
	})

	tokenString, err := token.SignedString(j.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}

	return tokenString, nil
}

// Decode verifies the signature and returns the claims without checking
// expiry, issuer or audience.
func (j *JWT) Decode(tokenString string) (model.AccessClaims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, j.keyFunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return model.AccessClaims{}, fmt.Errorf("%w: %v", model.ErrMalformedToken, err)
	}

	return claims.AccessClaims()
}

// Verify checks expiry, issuer and audience of claims whose signature has
// already been verified, and converts them into the domain representation.
func (j *JWT) Verify(claims *Claims) (model.AccessClaims, error) {
	if err := j.validator.Validate(claims); err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return model.AccessClaims{}, fmt.Errorf("access token expired: %w", err)
		}
		return model.AccessClaims{}, fmt.Errorf("invalid access token: %w", err)
	}

	return claims.AccessClaims()
}

func (j *JWT) keyFunc(t *jwt.Token) (interface{}, error) {
	if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("wrong signing method %v", t.Header["alg"])
	}
	return j.secretKey, nil
}
