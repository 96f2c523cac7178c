// service/auth/auth_service_test.go
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/opaygodly-bot/uwezo-funds/model"
	userrepo "github.com/opaygodly-bot/uwezo-funds/repository/user"
	"github.com/opaygodly-bot/uwezo-funds/util/hash"

	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	createFn         func(ctx context.Context, u *model.User) error
	byPhoneFn        func(ctx context.Context, phone string) (*model.User, error)
	byIDFn           func(ctx context.Context, id int64) (*model.User, error)
	updatePasswordFn func(ctx context.Context, phone, passwordHash string) (bool, error)
	setLoanLimitFn   func(ctx context.Context, userID, limit int64) error
}

var _ userrepo.Repo = (*mockRepo)(nil)

func (m *mockRepo) Create(ctx context.Context, u *model.User) error {
	if m.createFn == nil {
		return nil
	}
	return m.createFn(ctx, u)
}

func (m *mockRepo) ByPhone(ctx context.Context, phone string) (*model.User, error) {
	if m.byPhoneFn == nil {
		return nil, errors.New("not found")
	}
	return m.byPhoneFn(ctx, phone)
}

func (m *mockRepo) ByID(ctx context.Context, id int64) (*model.User, error) {
	if m.byIDFn == nil {
		return nil, errors.New("not found")
	}
	return m.byIDFn(ctx, id)
}

func (m *mockRepo) UpdatePassword(ctx context.Context, phone, passwordHash string) (bool, error) {
	if m.updatePasswordFn == nil {
		return false, nil
	}
	return m.updatePasswordFn(ctx, phone, passwordHash)
}

func (m *mockRepo) SetLoanLimit(ctx context.Context, userID, limit int64) error {
	if m.setLoanLimitFn == nil {
		return nil
	}
	return m.setLoanLimitFn(ctx, userID, limit)
}

func mustHash(t *testing.T, plain string) string {
	t.Helper()

	h, err := hash.HashPassword(plain)
	require.NoError(t, err)
	return h
}

// --- tests ---

func TestRegister_Success(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			u.ID = 42
			return nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Wanjiku",
		Phone:    "0712 345 678",
		Password: "supersecret",
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(42), u.ID)
	require.Equal(t, "254712345678", u.Phone, "phone is stored canonical")
	require.Equal(t, "user", u.Role)
	require.NotEmpty(t, u.PasswordHash)
}

func TestRegister_BadInput(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     " ",
		Phone:    "0712345678",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrBadInput, Code(err))
}

func TestRegister_InvalidPhone(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Wanjiku",
		Phone:    "12345",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrInvalidPhone, Code(err))
}

func TestRegister_PhoneTaken(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return &pgconn.PgError{Code: pgerrcode.UniqueViolation}
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Wanjiku",
		Phone:    "0712345678",
		Password: "123456",
	})
	require.Error(t, err)
	require.Equal(t, ErrPhoneTaken, Code(err))
}

func TestRegister_CreateError(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		createFn: func(ctx context.Context, u *model.User) error {
			return errors.New("db down")
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Register(ctx, model.RegisterReq{
		Name:     "Wanjiku",
		Phone:    "0712345678",
		Password: "123456",
	})
	require.Error(t, err)

	require.Equal(t, ErrCode(""), Code(err))
}

func TestLogin_Success(t *testing.T) {
	ctx := context.Background()
	pw := "supersecret"
	hashed := mustHash(t, pw)

	m := &mockRepo{
		byPhoneFn: func(ctx context.Context, phone string) (*model.User, error) {
			require.Equal(t, "254712345678", phone, "lookup uses canonical phone")
			return &model.User{
				ID:           7,
				Phone:        phone,
				PasswordHash: hashed,
				Role:         "user",
			}, nil
		},
	}
	svc := New(m, "test-secret")

	u, tok, err := svc.Login(ctx, model.LoginReq{
		Phone:    "0712345678",
		Password: pw,
	})
	require.NoError(t, err)
	require.NotNil(t, u)
	require.NotEmpty(t, tok)
	require.Equal(t, int64(7), u.ID)
}

func TestLogin_NotRegistered(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret")

	_, _, err := svc.Login(ctx, model.LoginReq{
		Phone:    "0712345678",
		Password: "whatever",
	})
	require.Error(t, err)
	require.Equal(t, ErrNotRegistered, Code(err))
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()

	hashed := mustHash(t, "correct-password")

	m := &mockRepo{
		byPhoneFn: func(ctx context.Context, phone string) (*model.User, error) {
			return &model.User{ID: 101, Phone: phone, PasswordHash: hashed, Role: "user"}, nil
		},
	}
	svc := New(m, "test-secret")

	_, _, err := svc.Login(ctx, model.LoginReq{
		Phone:    "0712345678",
		Password: "wrong-password",
	})
	require.Error(t, err)
	require.Equal(t, ErrInvalidCreds, Code(err))
}

func TestResetPassword(t *testing.T) {
	ctx := context.Background()
	m := &mockRepo{
		updatePasswordFn: func(ctx context.Context, phone, passwordHash string) (bool, error) {
			require.Equal(t, "254712345678", phone)
			require.NotEmpty(t, passwordHash)
			return true, nil
		},
	}
	svc := New(m, "test-secret")

	err := svc.ResetPassword(ctx, model.ResetPasswordReq{
		Phone:       "0712345678",
		NewPassword: "newsecret",
	})
	require.NoError(t, err)
}

func TestResetPassword_UnknownPhone(t *testing.T) {
	ctx := context.Background()
	svc := New(&mockRepo{}, "test-secret")

	err := svc.ResetPassword(ctx, model.ResetPasswordReq{
		Phone:       "0712345678",
		NewPassword: "newsecret",
	})
	require.Error(t, err)
	require.Equal(t, ErrNotRegistered, Code(err))
}

func TestCodeExtractor(t *testing.T) {
	require.Equal(t, ErrPhoneTaken, Code(fmt.Errorf("register: %w", ErrPhoneTaken)))
	require.Equal(t, ErrCode(""), Code(errors.New("plain")))
}
