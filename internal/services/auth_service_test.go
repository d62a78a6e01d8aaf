package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/bracula/campus/internal/auth"
	"github.com/bracula/campus/internal/models"
	"github.com/bracula/campus/internal/repository"
	appErr "github.com/bracula/campus/pkg/errors"
	"github.com/bracula/campus/pkg/logger"
)

type authFixture struct {
	users    *mockUserRepo
	tx       *inlineTx
	hasher   *auth.BcryptHasher
	sessions *auth.Manager
	svc      AuthService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	h, err := auth.NewBcryptHasher(4)
	require.NoError(t, err)
	f := &authFixture{
		users:    &mockUserRepo{},
		tx:       &inlineTx{},
		hasher:   h,
		sessions: auth.NewManager(auth.NewMemoryStore(nil), auth.Options{IdleTimeout: time.Hour}),
	}
	f.svc = NewAuthService(f.users, f.tx, f.hasher, f.sessions, time.Second)
	return f
}

func (f *authFixture) storedUser(t *testing.T, id int64, email, password string) *models.User {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	return &models.User{ID: id, Email: email, FullName: "Ada Lovelace", PasswordHash: hash}
}

func TestLogin_ThenResolveYieldsSameUser(t *testing.T) {
	f := newAuthFixture(t)
	u := f.storedUser(t, 7, "ada@uni.edu", "s3cret")
	f.users.On("FindByEmail", mock.Anything, "ada@uni.edu").Return(u, nil)
	f.users.On("GetProfile", mock.Anything, int64(7)).Return(&models.UserProfile{ID: 7, Email: "ada@uni.edu"}, nil)

	profile, token, err := f.svc.Login(context.Background(), " Ada@Uni.edu ", "s3cret")
	require.NoError(t, err)
	assert.Equal(t, int64(7), profile.ID)
	require.NotEmpty(t, token)

	s, err := f.sessions.Resolve(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), s.UserID)
	assert.Equal(t, "ada@uni.edu", s.Email)
}

func TestLogin_WrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	f := newAuthFixture(t)
	u := f.storedUser(t, 7, "a@x.edu", "right")
	f.users.On("FindByEmail", mock.Anything, "a@x.edu").Return(u, nil)
	f.users.On("FindByEmail", mock.Anything, "nobody@x.edu").Return(nil, appErr.New(appErr.CodeNotFound, "user not found"))

	_, tok1, wrongPw := f.svc.Login(context.Background(), "a@x.edu", "wrong")
	_, tok2, unknown := f.svc.Login(context.Background(), "nobody@x.edu", "wrong")

	require.Error(t, wrongPw)
	require.Error(t, unknown)
	assert.Empty(t, tok1)
	assert.Empty(t, tok2)
	assert.Equal(t, wrongPw.Error(), unknown.Error())
	assert.True(t, appErr.IsCode(wrongPw, appErr.CodeUnauthorized))
	f.users.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
}

func TestLogin_StorageFaultIsNotAuthFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("FindByEmail", mock.Anything, "a@x.edu").
		Return(nil, appErr.Wrap(errors.New("conn refused"), appErr.CodeInternal, "get user by email failed"))

	_, _, err := f.svc.Login(context.Background(), "a@x.edu", "pw")
	require.Error(t, err)
	assert.Equal(t, appErr.CodeInternal, appErr.CodeOf(err))
}

func TestLogin_NeverLogsCredentials(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	defer logger.Replace(zap.New(core))()

	f := newAuthFixture(t)
	u := f.storedUser(t, 7, "ada@uni.edu", "s3cret")
	f.users.On("FindByEmail", mock.Anything, "ada@uni.edu").Return(u, nil)
	f.users.On("GetProfile", mock.Anything, int64(7)).Return(&models.UserProfile{ID: 7}, nil)

	_, token, err := f.svc.Login(context.Background(), "ada@uni.edu", "s3cret")
	require.NoError(t, err)
	_, _, _ = f.svc.Login(context.Background(), "ada@uni.edu", "bad-guess")

	for _, e := range logs.All() {
		for _, v := range e.ContextMap() {
			s, _ := v.(string)
			assert.NotContains(t, s, "s3cret")
			assert.NotContains(t, s, "bad-guess")
			assert.NotContains(t, s, token)
			assert.NotContains(t, s, u.PasswordHash)
		}
		assert.NotContains(t, e.Message, token)
	}
}

func validRegistration() RegisterInput {
	return RegisterInput{
		FullName:   "Ada Lovelace",
		StudentID:  "S-001",
		Email:      "ada@uni.edu",
		Password:   "s3cret",
		Department: "CS",
	}
}

func TestRegister_CreatesUserWithHashedPassword(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").Return(false, nil)
	f.users.On("StudentIDExists", mock.Anything, "S-001").Return(false, nil)
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) {
			u := args.Get(1).(*models.User)
			assert.NotEqual(t, "s3cret", u.PasswordHash)
			assert.True(t, f.hasher.Verify("s3cret", u.PasswordHash))
			u.ID = 11
		}).Return(nil)

	id, err := f.svc.Register(context.Background(), validRegistration())
	require.NoError(t, err)
	assert.Equal(t, int64(11), id)
	assert.Equal(t, []string{"register_user"}, f.tx.runs)
}

func TestRegister_ReportsFirstMissingFieldInOrder(t *testing.T) {
	cases := []struct {
		blank func(*RegisterInput)
		field string
	}{
		{func(in *RegisterInput) { in.FullName = ""; in.Email = "" }, "full_name"},
		{func(in *RegisterInput) { in.StudentID = " "; in.Department = "" }, "student_id"},
		{func(in *RegisterInput) { in.Email = ""; in.Password = "" }, "email"},
		{func(in *RegisterInput) { in.Password = "" }, "password"},
		{func(in *RegisterInput) { in.Department = "" }, "department"},
	}
	for _, tc := range cases {
		t.Run(tc.field, func(t *testing.T) {
			f := newAuthFixture(t)
			in := validRegistration()
			tc.blank(&in)

			_, err := f.svc.Register(context.Background(), in)
			var ae *appErr.AppError
			require.True(t, errors.As(err, &ae))
			assert.Equal(t, appErr.CodeInvalid, ae.Code)
			assert.Equal(t, tc.field, ae.Field())
			assert.Empty(t, f.tx.runs)
		})
	}
}

func TestRegister_EmailCheckedBeforeStudentID(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").Return(true, nil)

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.Equal(t, appErr.CodeDuplicateEmail, appErr.CodeOf(err))
	f.users.AssertNotCalled(t, "StudentIDExists", mock.Anything, mock.Anything)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_DuplicateStudentID(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").Return(false, nil)
	f.users.On("StudentIDExists", mock.Anything, "S-001").Return(true, nil)

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.Equal(t, appErr.CodeDuplicateStudentID, appErr.CodeOf(err))
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_UniqueIndexRaceIsDuplicate(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").Return(false, nil)
	f.users.On("StudentIDExists", mock.Anything, "S-001").Return(false, nil)
	f.users.On("Create", mock.Anything, mock.Anything).Return(repository.ErrDuplicateEmail(errors.New("23505")))

	_, err := f.svc.Register(context.Background(), validRegistration())
	assert.Equal(t, appErr.CodeDuplicateEmail, appErr.CodeOf(err))
}

func TestRegister_StorageFaultStaysOpaque(t *testing.T) {
	f := newAuthFixture(t)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").
		Return(false, appErr.Wrap(errors.New("timeout"), appErr.CodeInternal, "user uniqueness check failed"))

	_, err := f.svc.Register(context.Background(), validRegistration())
	require.Error(t, err)
	assert.Equal(t, appErr.CodeRolledBack, appErr.CodeOf(err))
	assert.True(t, appErr.IsCode(err, appErr.CodeInternal))
}

func TestLogout_IsAlwaysQuiet(t *testing.T) {
	f := newAuthFixture(t)
	token, err := f.sessions.Create(context.Background(), auth.Identity{UserID: 1})
	require.NoError(t, err)

	f.svc.Logout(context.Background(), token)
	f.svc.Logout(context.Background(), token)
	f.svc.Logout(context.Background(), "")

	_, err = f.sessions.Resolve(context.Background(), token)
	assert.True(t, appErr.IsCode(err, appErr.CodeSessionInvalid))
}

// countingHasher records how often Hash runs.
type countingHasher struct {
	auth.PasswordHasher
	hashes int
}

func (c *countingHasher) Hash(password string) (string, error) {
	c.hashes++
	return c.PasswordHasher.Hash(password)
}

func TestRegister_KeepsEmailCaseAsGiven(t *testing.T) {
	f := newAuthFixture(t)
	in := validRegistration()
	in.Email = "  Ada.Lovelace@Uni.edu "

	f.users.On("EmailExists", mock.Anything, "Ada.Lovelace@Uni.edu").Return(false, nil)
	f.users.On("StudentIDExists", mock.Anything, "S-001").Return(false, nil)
	var stored string
	f.users.On("Create", mock.Anything, mock.AnythingOfType("*models.User")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*models.User).Email }).
		Return(nil)

	_, err := f.svc.Register(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, "Ada.Lovelace@Uni.edu", stored)
}

func TestLogin_LooksUpEmailAsGiven(t *testing.T) {
	f := newAuthFixture(t)
	u := f.storedUser(t, 9, "Ada.Lovelace@Uni.edu", "s3cret")
	f.users.On("FindByEmail", mock.Anything, "Ada.Lovelace@Uni.edu").Return(u, nil)
	f.users.On("GetProfile", mock.Anything, int64(9)).Return(&models.UserProfile{ID: 9, Email: u.Email}, nil)

	profile, token, err := f.svc.Login(context.Background(), " Ada.Lovelace@Uni.edu", "s3cret")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, int64(9), profile.ID)
}

func TestRegister_DuplicateEmailWinsOverOverlongPassword(t *testing.T) {
	f := newAuthFixture(t)
	hasher := &countingHasher{PasswordHasher: f.hasher}
	svc := NewAuthService(f.users, f.tx, hasher, f.sessions, time.Second)

	in := validRegistration()
	in.Password = strings.Repeat("p", 80)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").Return(true, nil)

	_, err := svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, appErr.CodeDuplicateEmail, appErr.CodeOf(err))
	assert.Zero(t, hasher.hashes)
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestRegister_OverlongPasswordRejectedAfterUniquenessChecks(t *testing.T) {
	f := newAuthFixture(t)
	in := validRegistration()
	in.Password = strings.Repeat("p", 80)
	f.users.On("EmailExists", mock.Anything, "ada@uni.edu").Return(false, nil)
	f.users.On("StudentIDExists", mock.Anything, "S-001").Return(false, nil)

	_, err := f.svc.Register(context.Background(), in)
	require.Error(t, err)
	assert.Equal(t, appErr.CodeInvalid, appErr.CodeOf(err))

	var ae *appErr.AppError
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, "password", ae.Field())
	f.users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
