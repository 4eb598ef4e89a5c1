package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"golang.org/x/crypto/bcrypt"

	"github.com/georgemunganga/framecraft-backend/internal/apperror"
	"github.com/georgemunganga/framecraft-backend/internal/authctx"
	"github.com/georgemunganga/framecraft-backend/internal/modules/user"
	"github.com/georgemunganga/framecraft-backend/internal/modules/vendor"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Claims is the token payload.
type Claims struct {
	Role     string `json:"role"`
	VendorID string `json:"vendor_id,omitempty"`
	jwt.StandardClaims
}

// TokenConfig controls token signing.
type TokenConfig struct {
	Secret []byte
	TTL    time.Duration
	Issuer string
}

type service struct {
	userRepo   user.Repository
	vendorRepo vendor.Repository
	cfg        TokenConfig
	now        func() time.Time
}

// NewService creates a new auth service.
func NewService(userRepo user.Repository, vendorRepo vendor.Repository, cfg TokenConfig) Service {
	if cfg.TTL == 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &service{userRepo: userRepo, vendorRepo: vendorRepo, cfg: cfg, now: time.Now}
}

func (s *service) Login(ctx context.Context, email, password string) (string, error) {
	u, err := s.userRepo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		var nf *apperror.NotFoundError
		if errors.As(err, &nf) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	role, err := authctx.ParseRole(u.Role)
	if err != nil {
		return "", err
	}

	claims := &Claims{
		Role: string(role),
		StandardClaims: jwt.StandardClaims{
			Subject:   u.ID.String(),
			Issuer:    s.cfg.Issuer,
			IssuedAt:  s.now().Unix(),
			ExpiresAt: s.now().Add(s.cfg.TTL).Unix(),
		},
	}

	if role == authctx.RoleVendor {
		v, err := s.vendorRepo.GetVendorByOwnerID(ctx, u.ID.String())
		if err != nil {
			return "", fmt.Errorf("resolve vendor for user %s: %w", u.ID, err)
		}
		claims.VendorID = v.ID.String()
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(s.cfg.Secret)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

func (s *service) Authenticate(tokenString string) (authctx.Actor, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.cfg.Secret, nil
	})
	if err != nil {
		return authctx.Actor{}, fmt.Errorf("failed to parse token: %w", err)
	}
	if !token.Valid {
		return authctx.Actor{}, errors.New("invalid token")
	}
	if claims.Subject == "" {
		return authctx.Actor{}, errors.New("missing subject claim")
	}
	if s.cfg.Issuer != "" && claims.Issuer != s.cfg.Issuer {
		return authctx.Actor{}, fmt.Errorf("invalid issuer: got %s, want %s", claims.Issuer, s.cfg.Issuer)
	}

	role, err := authctx.ParseRole(claims.Role)
	if err != nil {
		return authctx.Actor{}, err
	}
	if role == authctx.RoleVendor && claims.VendorID == "" {
		return authctx.Actor{}, errors.New("vendor token without vendor_id")
	}

	return authctx.Actor{ID: claims.Subject, Role: role, VendorID: claims.VendorID}, nil
}
