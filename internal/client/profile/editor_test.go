package profile

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/client/session"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	ed     *Editor
	api    *fakeAPI
	tokens *fakeTokens
	rec    *nav.Recorder
	clock  *timerx.Fake
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	fx := &fixture{
		api: &fakeAPI{Profile: models.Profile{
			Username:  "alice",
			Email:     "alice@example.com",
			Birthdate: "1990-04-12T00:00:00.000Z",
			LoginHistory: []models.LoginEntry{
				{Time: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), IP: "10.0.0.1"},
				{Time: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), IP: "10.0.0.2"},
				{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), IP: "10.0.0.3"},
			},
		}},
		tokens: &fakeTokens{Tok: "tok"},
		rec:    &nav.Recorder{},
		clock:  timerx.NewFake(),
	}
	fx.ed = NewEditor(fx.api, fx.tokens, fx.rec, fx.clock, nil, Options{
		OutputDir:        t.TempDir(),
		DevicePixelRatio: 2,
		OutputSize:       50,
		PreviewWidth:     100,
	})
	return fx
}

func (fx *fixture) mount(t *testing.T) {
	t.Helper()
	require.NoError(t, fx.ed.Mount(context.Background(), false))
}

func TestLoad_NoSessionIsFatal(t *testing.T) {
	fx := newFixture(t)
	fx.tokens.Tok = ""

	require.ErrorIs(t, fx.ed.Mount(context.Background(), false), session.ErrNoSession)
	assert.Zero(t, fx.api.GetCalls)
	_, err := fx.ed.Profile()
	require.ErrorIs(t, err, ErrNotLoaded)
}

func TestMount_FromLoginFetchesTwice(t *testing.T) {
	fx := newFixture(t)
	require.NoError(t, fx.ed.Mount(context.Background(), true))
	assert.Equal(t, 2, fx.api.GetCalls)

	fx2 := newFixture(t)
	fx2.mount(t)
	assert.Equal(t, 1, fx2.api.GetCalls)
}

func TestLoad_Normalizes(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	p, err := fx.ed.Profile()
	require.NoError(t, err)
	assert.Equal(t, "1990-04-12", p.Birthdate)
	assert.Equal(t, common.NotAvailable, p.Role)
	assert.Equal(t, common.NotAvailable, p.Status)
}

func TestSelectTab_NoRefetch(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	for _, tab := range []Tab{TabAvatar, TabSecurity, TabTwoFactor, TabProfile} {
		fx.ed.SelectTab(tab)
		assert.Equal(t, tab, fx.ed.Tab())
	}
	assert.Equal(t, 1, fx.api.GetCalls)

	tab, ok := ParseTab("2fa")
	assert.True(t, ok)
	assert.Equal(t, TabTwoFactor, tab)
	_, ok = ParseTab("billing")
	assert.False(t, ok)
}

func TestUpdateFields_RefetchesAndClearsMessage(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	require.NoError(t, fx.ed.UpdateFields(context.Background(), "alice2", "1991-05-06"))
	assert.Equal(t, models.ProfileUpdate{Username: "alice2", Birthdate: "1991-05-06"}, fx.api.LastUpdate)
	assert.Equal(t, 2, fx.api.GetCalls)

	p, _ := fx.ed.Profile()
	assert.Equal(t, "alice2", p.Username)
	assert.Equal(t, "1991-05-06", p.Birthdate)
	assert.Equal(t, "Profile updated successfully!", fx.ed.Message())

	fx.clock.Advance(MessageTTL)
	assert.Empty(t, fx.ed.Message())
}

func TestUpdateFields_Idempotent(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	require.NoError(t, fx.ed.UpdateFields(context.Background(), "alice", "1990-04-12"))
	first, _ := fx.ed.Profile()
	msg1 := fx.ed.Message()

	require.NoError(t, fx.ed.UpdateFields(context.Background(), "alice", "1990-04-12"))
	second, _ := fx.ed.Profile()

	assert.Equal(t, msg1, fx.ed.Message())
	assert.Equal(t, first, second)
}

func TestUpdateFields_NewerMessageSurvivesOldTimer(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	require.NoError(t, fx.ed.UpdateFields(context.Background(), "a1", ""))
	fx.clock.Advance(2 * time.Second)
	require.NoError(t, fx.ed.UpdateFields(context.Background(), "a2", ""))

	fx.clock.Advance(time.Second)
	assert.NotEmpty(t, fx.ed.Message())
	fx.clock.Advance(2 * time.Second)
	assert.Empty(t, fx.ed.Message())
}

func TestUpdateFields_Errors(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	require.ErrorIs(t, fx.ed.UpdateFields(context.Background(), "", "1990-01-01"), common.ErrValidation)
	require.ErrorIs(t, fx.ed.UpdateFields(context.Background(), "bob", "12/01/1990"), common.ErrValidation)
	assert.Zero(t, fx.api.Updates)

	fx.api.UpdateErr = &api.HTTPError{Status: 409, Message: "Username taken"}
	require.Error(t, fx.ed.UpdateFields(context.Background(), "bob", ""))
	assert.Equal(t, "Username taken", fx.ed.Error())
	assert.Equal(t, 1, fx.api.GetCalls)
}

func TestChangePassword(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	fx.ed.EditPasswords(func(f *PasswordForm) { *f = PasswordForm{Current: "old", New: "Abc12345", Confirm: "Abc12346"} })
	require.ErrorIs(t, fx.ed.ChangePassword(context.Background()), common.ErrValidation)
	assert.Equal(t, "New passwords do not match.", fx.ed.Error())
	assert.Empty(t, fx.api.LastPassword.NewPassword)

	fx.ed.EditPasswords(func(f *PasswordForm) { f.Confirm = "Abc12345" })
	require.NoError(t, fx.ed.ChangePassword(context.Background()))
	assert.Equal(t, models.PasswordChange{CurrentPassword: "old", NewPassword: "Abc12345"}, fx.api.LastPassword)
	assert.Equal(t, PasswordForm{}, fx.ed.Passwords())
	assert.Empty(t, fx.ed.Error())
}

func TestChangePassword_ServerErrorKeepsForm(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)
	fx.api.PasswordErr = &api.HTTPError{Status: 400, Message: "Current password is incorrect"}

	fx.ed.EditPasswords(func(f *PasswordForm) { *f = PasswordForm{Current: "x", New: "y", Confirm: "y"} })
	require.Error(t, fx.ed.ChangePassword(context.Background()))
	assert.Equal(t, "Current password is incorrect", fx.ed.Error())
	assert.Equal(t, "x", fx.ed.Passwords().Current)
}

func TestLoginHistory_NewestFirst(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	h, err := fx.ed.LoginHistory()
	require.NoError(t, err)
	require.Len(t, h, 3)
	assert.Equal(t, "10.0.0.3", h[0].IP)
	assert.Equal(t, "10.0.0.1", h[2].IP)

	p, _ := fx.ed.Profile()
	assert.Equal(t, "10.0.0.1", p.LoginHistory[0].IP, "record order untouched")
}

func TestSuspendAccount(t *testing.T) {
	fx := newFixture(t)
	fx.mount(t)

	require.ErrorIs(t, fx.ed.SuspendAccount(context.Background(), ""), common.ErrValidation)
	assert.Zero(t, fx.api.SuspendCalls)

	fx.api.SuspendErr = &api.HTTPError{Status: 401, Message: "Incorrect password"}
	require.Error(t, fx.ed.SuspendAccount(context.Background(), "bad"))
	assert.Equal(t, "Incorrect password", fx.ed.Error())
	assert.Equal(t, "tok", fx.tokens.Tok)
	assert.Empty(t, fx.rec.Routes)

	fx.api.SuspendErr = nil
	require.NoError(t, fx.ed.SuspendAccount(context.Background(), "good"))
	assert.Equal(t, "good", fx.api.LastSuspend)
	assert.Empty(t, fx.tokens.Tok)
	assert.Equal(t, nav.RouteLogin, fx.rec.Last())
}

func TestLoad_ServerError(t *testing.T) {
	fx := newFixture(t)
	fx.api.GetErr = errors.New("down")

	require.Error(t, fx.ed.Mount(context.Background(), false))
	assert.Equal(t, "Failed to load profile.", fx.ed.Error())
}
