package services

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/metrics"
	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/repository"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

type AuthService interface {
	// Login verifies credentials and opens a session. The returned token is
	// delivered to the client as the session cookie.
	Login(ctx context.Context, email, password string) (*models.UserProfile, string, error)
	// Register creates an account. It never opens a session.
	Register(ctx context.Context, in RegisterInput) (int64, error)
	// Logout destroys the session. It always succeeds from the caller's view.
	Logout(ctx context.Context, token string)
}

type RegisterInput struct {
	FullName   string
	StudentID  string
	Email      string
	Password   string
	Department string
	AvatarURL  *string
	Bio        *string
	Interests  datatypes.JSON
}

// validate reports the first missing required field, in the fixed order
// full_name, student_id, email, password, department.
func (in *RegisterInput) validate() error {
	in.FullName = strings.TrimSpace(in.FullName)
	in.StudentID = strings.TrimSpace(in.StudentID)
	in.Email = strings.TrimSpace(in.Email)
	in.Department = strings.TrimSpace(in.Department)

	required := []struct {
		field string
		value string
	}{
		{"full_name", in.FullName},
		{"student_id", in.StudentID},
		{"email", in.Email},
		{"password", in.Password},
		{"department", in.Department},
	}
	for _, r := range required {
		if r.value == "" {
			return appErr.MissingField(r.field)
		}
	}
	return nil
}

type authService struct {
	users    repository.UserRepository
	tx       repository.TxExecutor
	hasher   auth.PasswordHasher
	sessions *auth.Manager
	timeout  time.Duration
}

// NewAuthService wires the credential store, hasher and session manager.
// timeout bounds each login and registration; 0 means no extra bound.
func NewAuthService(users repository.UserRepository, tx repository.TxExecutor, hasher auth.PasswordHasher, sessions *auth.Manager, timeout time.Duration) AuthService {
	return &authService{users: users, tx: tx, hasher: hasher, sessions: sessions, timeout: timeout}
}

func (s *authService) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *authService) Login(ctx context.Context, email, password string) (*models.UserProfile, string, error) {
	ctx, cancel := s.bound(ctx)
	defer cancel()

	email = strings.TrimSpace(email)
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if appErr.IsCode(err, appErr.CodeNotFound) {
			s.hasher.VerifyDummy(password)
			metrics.RecordLogin(metrics.OutcomeFailure)
			return nil, "", errInvalidCredentials()
		}
		metrics.RecordLogin(metrics.OutcomeError)
		logger.L().Error("login lookup failed", zap.Error(err))
		return nil, "", err
	}
	if !s.hasher.Verify(password, u.PasswordHash) {
		metrics.RecordLogin(metrics.OutcomeFailure)
		logger.L().Info("login rejected", zap.Int64("user_id", u.ID))
		return nil, "", errInvalidCredentials()
	}

	profile, err := s.users.GetProfile(ctx, u.ID)
	if err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		logger.L().Error("load profile after login failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, "", asStorageFailure(err)
	}

	token, err := s.sessions.Create(ctx, auth.Identity{UserID: u.ID, Email: u.Email, FullName: u.FullName})
	if err != nil {
		metrics.RecordLogin(metrics.OutcomeError)
		logger.L().Error("create session failed", zap.Int64("user_id", u.ID), zap.Error(err))
		return nil, "", err
	}

	metrics.RecordLogin(metrics.OutcomeSuccess)
	logger.L().Info("user logged in", zap.Int64("user_id", u.ID))
	return profile, token, nil
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	if err := in.validate(); err != nil {
		metrics.RecordRegistration(metrics.OutcomeInvalid)
		return 0, err
	}

	ctx, cancel := s.bound(ctx)
	defer cancel()

	u := &models.User{
		FullName:   in.FullName,
		StudentID:  in.StudentID,
		Email:      in.Email,
		Department: in.Department,
		AvatarURL:  in.AvatarURL,
		Bio:        in.Bio,
		Interests:  in.Interests,
	}

	err := s.tx.Run(ctx, "register_user",
		func(ctx context.Context, tx *gorm.DB) error {
			taken, err := s.users.WithTx(tx).EmailExists(ctx, u.Email)
			if err != nil {
				return err
			}
			if taken {
				return repository.ErrDuplicateEmail(nil)
			}
			return nil
		},
		func(ctx context.Context, tx *gorm.DB) error {
			taken, err := s.users.WithTx(tx).StudentIDExists(ctx, u.StudentID)
			if err != nil {
				return err
			}
			if taken {
				return repository.ErrDuplicateStudentID(nil)
			}
			return nil
		},
		// Hashing runs only once both uniqueness checks pass.
		func(ctx context.Context, tx *gorm.DB) error {
			hash, err := s.hasher.Hash(in.Password)
			if err != nil {
				return err
			}
			u.PasswordHash = hash
			return nil
		},
		func(ctx context.Context, tx *gorm.DB) error {
			return s.users.WithTx(tx).Create(ctx, u)
		},
	)
	if err != nil {
		err = surface(err)
		if appErr.IsCode(err, appErr.CodeDuplicateEmail) || appErr.IsCode(err, appErr.CodeDuplicateStudentID) {
			metrics.RecordRegistration(metrics.OutcomeDuplicate)
			return 0, err
		}
		if appErr.IsCode(err, appErr.CodeInvalid) {
			metrics.RecordRegistration(metrics.OutcomeInvalid)
			return 0, err
		}
		metrics.RecordRegistration(metrics.OutcomeError)
		logger.L().Error("registration failed", zap.Error(err))
		return 0, err
	}

	metrics.RecordRegistration(metrics.OutcomeSuccess)
	logger.L().Info("user registered", zap.Int64("user_id", u.ID))
	return u.ID, nil
}

func (s *authService) Logout(ctx context.Context, token string) {
	if err := s.sessions.Destroy(ctx, token); err != nil {
		logger.L().Warn("session destroy failed", zap.Error(err))
	}
}

// asStorageFailure keeps storage faults opaque; a profile vanishing between
// credential check and load is reported the same way.
func asStorageFailure(err error) error {
	if appErr.CodeOf(err) == appErr.CodeInternal {
		return err
	}
	return appErr.Wrap(err, appErr.CodeInternal, "load profile failed")
}
