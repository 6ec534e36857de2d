package tracker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/mytrueresume-stack/SprintTracker/models"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker"
	"github.com/mytrueresume-stack/SprintTracker/services/tracker/trackertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubTokens struct{ err error }

func (s stubTokens) GenerateToken(u *models.User) (string, time.Time, error) {
	if s.err != nil {
		return "", time.Time{}, s.err
	}
	return "token-" + u.ID.Hex(), t0.Add(24 * time.Hour), nil
}

func newAuthService(st *trackertest.Store, tokens tracker.TokenIssuer) *tracker.AuthService {
	svc := tracker.NewAuthService(st.Users(), tokens, nil)
	svc.SetHashCost(bcrypt.MinCost)
	svc.SetClock(func() time.Time { return t0 })
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	st := trackertest.New()
	svc := newAuthService(st, stubTokens{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, &tracker.RegisterRequest{
		Email: " Jane.Doe@Example.com ", Password: "correct horse", FirstName: "Jane", LastName: "Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane.doe@example.com", reg.User.Email)
	assert.Equal(t, "Jane Doe", reg.User.FullName)
	assert.Equal(t, models.UserRoleDeveloper, reg.User.Role)
	assert.Equal(t, "token-"+reg.User.ID.Hex(), reg.Token)
	assert.Equal(t, t0.Add(24*time.Hour), reg.ExpiresAt)

	_, err = svc.Register(ctx, &tracker.RegisterRequest{
		Email: "JANE.DOE@example.com", Password: "another pass", FirstName: "J", LastName: "D",
	})
	assert.True(t, tracker.IsCode(err, tracker.CodeEmailTaken))

	login, err := svc.Login(ctx, &tracker.LoginRequest{Email: "jane.doe@EXAMPLE.com", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	stored, err := st.Users().FindByID(ctx, reg.User.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, t0, *stored.LastLoginAt)
	assert.NotEqual(t, "correct horse", stored.PasswordHash)

	me, err := svc.Me(ctx, reg.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", me.FullName)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	st := trackertest.New()
	svc := newAuthService(st, stubTokens{})
	ctx := context.Background()

	reg, err := svc.Register(ctx, &tracker.RegisterRequest{
		Email: "sam@example.com", Password: "password1", FirstName: "Sam", LastName: "Smith", Role: models.UserRoleManager,
	})
	require.NoError(t, err)
	assert.Equal(t, models.UserRoleManager, reg.User.Role)

	_, err = svc.Login(ctx, &tracker.LoginRequest{Email: "sam@example.com", Password: "password2"})
	assert.True(t, tracker.IsCode(err, tracker.CodeInvalidCredentials))
	_, err = svc.Login(ctx, &tracker.LoginRequest{Email: "nobody@example.com", Password: "password1"})
	assert.True(t, tracker.IsCode(err, tracker.CodeInvalidCredentials))

	st.SetActive(reg.User.ID, false)
	_, err = svc.Login(ctx, &tracker.LoginRequest{Email: "sam@example.com", Password: "password1"})
	assert.True(t, tracker.IsCode(err, tracker.CodeInvalidCredentials))
}

func TestRegisterValidation(t *testing.T) {
	st := trackertest.New()
	svc := newAuthService(st, stubTokens{})
	ctx := context.Background()

	_, err := svc.Register(ctx, &tracker.RegisterRequest{Email: "not-an-email", Password: "short"})
	var ve *tracker.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 3)

	_, err = svc.Register(ctx, &tracker.RegisterRequest{
		Email: "a@example.com", Password: "password1", FirstName: "A", LastName: "B", Role: "Owner",
	})
	assert.True(t, tracker.IsCode(err, tracker.CodeInvalidRole))
}

func TestRegisterTokenFailure(t *testing.T) {
	st := trackertest.New()
	boom := errors.New("signing key missing")
	svc := newAuthService(st, stubTokens{err: boom})

	_, err := svc.Register(context.Background(), &tracker.RegisterRequest{
		Email: "a@example.com", Password: "password1", FirstName: "A", LastName: "B",
	})
	assert.ErrorIs(t, err, boom)
}

func TestRefreshToken(t *testing.T) {
	st := trackertest.New()
	svc := newAuthService(st, stubTokens{})
	ctx := context.Background()
	dev := st.SeedUser(models.UserRoleDeveloper, "Dev", "One")

	resp, err := svc.Refresh(ctx, dev.ID)
	require.NoError(t, err)
	assert.Equal(t, "token-"+dev.ID.Hex(), resp.Token)
	assert.Equal(t, dev.ID, resp.User.ID)

	st.SetActive(dev.ID, false)
	_, err = svc.Refresh(ctx, dev.ID)
	assert.ErrorIs(t, err, tracker.ErrUnauthenticated)

	_, err = svc.Refresh(ctx, models.User{}.ID)
	assert.ErrorIs(t, err, tracker.ErrUnauthenticated)
}
