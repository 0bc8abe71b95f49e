package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

// ReferralCookieName is the cookie holding the signed referral code of a visitor
const ReferralCookieName = "ref_code"

// ReferralClaims is the payload of the signed referral cookie
type ReferralClaims struct {
	Ref string `json:"ref"`
	jwt.StandardClaims
}

// SignReferralToken signs code into an HS256 token valid for ttl
func SignReferralToken(secret []byte, code string, ttl time.Duration) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("referral cookie secret is not configured")
	}

	now := time.Now()
	claims := &ReferralClaims{
		Ref: code,
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  now.Unix(),
			ExpiresAt: now.Add(ttl).Unix(),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

// ParseReferralToken verifies a referral token and returns the code it carries
func ParseReferralToken(secret []byte, tokenString string) (string, error) {
	if tokenString == "" {
		return "", errors.New("empty referral token")
	}

	token, err := jwt.ParseWithClaims(tokenString, &ReferralClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(*ReferralClaims)
	if !ok || !token.Valid || claims.Ref == "" {
		return "", errors.New("invalid referral token")
	}

	return claims.Ref, nil
}
