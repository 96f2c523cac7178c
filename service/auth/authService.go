package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opaygodly-bot/uwezo-funds/model"
	userrepo "github.com/opaygodly-bot/uwezo-funds/repository/user"
	"github.com/opaygodly-bot/uwezo-funds/util/hash"
	jwtutil "github.com/opaygodly-bot/uwezo-funds/util/jwt"
	"github.com/opaygodly-bot/uwezo-funds/util/phone"
)

type ErrCode string

func (e ErrCode) Error() string { return string(e) }

const (
	ErrPhoneTaken    ErrCode = "phone already registered"
	ErrNotRegistered ErrCode = "phone not registered"
	ErrInvalidCreds  ErrCode = "invalid credentials"
	ErrInvalidPhone  ErrCode = "invalid phone"
	ErrBadInput      ErrCode = "bad input"
)

// Code extracts the service error code, or "" for unexpected errors.
func Code(err error) ErrCode {
	var c ErrCode
	if errors.As(err, &c) {
		return c
	}
	return ErrCode("")
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)
	ResetPassword(ctx context.Context, req model.ResetPasswordReq) error
}

type service struct {
	ur     userrepo.Repo
	secret string
}

func New(ur userrepo.Repo, secret string) Service { return &service{ur: ur, secret: secret} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" || len(req.Password) < 6 {
		return nil, "", ErrBadInput
	}
	canonical, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, "", ErrInvalidPhone
	}

	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Name:         name,
		Phone:        canonical,
		Role:         "user",
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, "", ErrPhoneTaken
		}
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	canonical, err := phone.Normalize(req.Phone)
	if err != nil {
		return nil, "", ErrInvalidPhone
	}
	u, err := s.ur.ByPhone(ctx, canonical)
	if err != nil {
		return nil, "", ErrNotRegistered
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, "", ErrInvalidCreds
	}
	token, err := jwtutil.Issue(s.secret, u.ID, u.Role, 24)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) ResetPassword(ctx context.Context, req model.ResetPasswordReq) error {
	canonical, err := phone.Normalize(req.Phone)
	if err != nil {
		return ErrInvalidPhone
	}
	if len(req.NewPassword) < 6 {
		return ErrBadInput
	}
	hashed, err := hash.HashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	ok, err := s.ur.UpdatePassword(ctx, canonical, hashed)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotRegistered
	}
	return nil
}
