package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/HSouheill/skillnera_mlm/models"
	"github.com/HSouheill/skillnera_mlm/utils"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MaxReferralCodeAttempts bounds collision retries when generating a code
const MaxReferralCodeAttempts = 5

// ReferralQRCodeSize is the side of the referral QR image in pixels
const ReferralQRCodeSize = 300

// ReferralService assigns referral codes and records who referred whom.
// referredBy is written once, at registration, and never changed afterwards.
type ReferralService struct {
	users   ReferralWriter
	graph   ReferralGraph
	secret  []byte
	prefix  string
	baseURL string
	log     logrus.FieldLogger
	now     func() time.Time
}

func NewReferralService(users ReferralWriter, graph ReferralGraph, secret []byte, prefix, baseURL string, log logrus.FieldLogger) *ReferralService {
	if prefix == "" {
		prefix = utils.DefaultReferralPrefix
	}
	return &ReferralService{
		users:   users,
		graph:   graph,
		secret:  secret,
		prefix:  prefix,
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
		now:     time.Now,
	}
}

// ReferralCodeFromCookie returns the code carried by a signed ref_code cookie value
func (s *ReferralService) ReferralCodeFromCookie(value string) (string, error) {
	return utils.ParseReferralToken(s.secret, value)
}

// EnsureReferralCode gives the user a unique code if they have none. After
// MaxReferralCodeAttempts collisions it gives up and returns an empty code.
func (s *ReferralService) EnsureReferralCode(ctx context.Context, userID primitive.ObjectID) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("load user %s: %w", userID.Hex(), err)
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	if user.ReferralCode != "" {
		return user.ReferralCode, nil
	}

	for i := 0; i < MaxReferralCodeAttempts; i++ {
		code, err := utils.GenerateReferralCode(s.prefix)
		if err != nil {
			return "", err
		}

		taken, err := s.users.ReferralCodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("check referral code: %w", err)
		}
		if taken {
			continue
		}

		set, err := s.users.SetReferralCode(ctx, userID, code)
		if err != nil {
			return "", fmt.Errorf("set referral code: %w", err)
		}
		if set {
			return code, nil
		}

		// either a concurrent request assigned a code or the unique index rejected ours
		user, err = s.users.FindByID(ctx, userID)
		if err != nil {
			return "", fmt.Errorf("reload user %s: %w", userID.Hex(), err)
		}
		if user != nil && user.ReferralCode != "" {
			return user.ReferralCode, nil
		}
	}

	s.log.WithField("user", userID.Hex()).Warn("could not generate a unique referral code")
	return "", nil
}

// AttributeReferral records code's owner as the user's direct upline. A code
// that is malformed or matches no active user attributes nothing and returns a
// nil referrer without error.
func (s *ReferralService) AttributeReferral(ctx context.Context, userID primitive.ObjectID, code string) (*models.User, error) {
	code = strings.TrimSpace(code)

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID.Hex(), err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.ReferredBy != nil {
		return nil, ErrReferralAlreadySet
	}

	var referrer *models.User
	if utils.IsReferralCode(s.prefix, code) {
		referrer, err = s.users.FindActiveByReferralCode(ctx, code)
		if err != nil {
			return nil, fmt.Errorf("find referrer %q: %w", code, err)
		}
	}

	if referrer != nil {
		if referrer.ID == userID {
			return nil, &ValidationError{Field: "referralCode", Message: "cannot use your own referral code"}
		}

		set, err := s.users.SetReferredBy(ctx, userID, referrer.ID, s.now())
		if err != nil {
			return nil, fmt.Errorf("set referrer of %s: %w", userID.Hex(), err)
		}
		if !set {
			return nil, ErrReferralAlreadySet
		}

		s.log.WithFields(logrus.Fields{
			"user":     userID.Hex(),
			"referrer": referrer.ID.Hex(),
		}).Info("referral attributed")
	}

	if _, err := s.EnsureReferralCode(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user", userID.Hex()).Error("failed to assign referral code")
	}

	return referrer, nil
}

// ReferralLink is the public landing URL carrying code
func (s *ReferralService) ReferralLink(code string) string {
	return s.baseURL + "/?ref=" + code
}

// ReferralData returns the user's own code, link, direct referral count and QR code
func (s *ReferralService) ReferralData(ctx context.Context, userID primitive.ObjectID) (*models.ReferralData, error) {
	code, err := s.EnsureReferralCode(ctx, userID)
	if err != nil {
		return nil, err
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load user %s: %w", userID.Hex(), err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	count, err := s.graph.CountDirectChildren(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("count referrals of %s: %w", userID.Hex(), err)
	}

	data := &models.ReferralData{
		ReferralCode:  code,
		ReferralCount: count,
		MLMActive:     user.MLMActive,
	}
	if code == "" {
		return data, nil
	}

	data.ReferralLink = s.ReferralLink(code)
	qrCode, err := utils.GenerateQRCodeDataURI(data.ReferralLink, ReferralQRCodeSize)
	if err != nil {
		s.log.WithError(err).Warn("failed to generate referral QR code")
	} else {
		data.QRCode = qrCode
	}

	return data, nil
}
