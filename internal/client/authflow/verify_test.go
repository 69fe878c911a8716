package authflow

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/client/api"
	"github.com/dmitrijs2005/gophauth/internal/client/models"
	"github.com/dmitrijs2005/gophauth/internal/client/nav"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/timerx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerifyEmail_NoToken(t *testing.T) {
	a := &fakeAPI{}
	f := NewVerifyEmailFlow(a, &nav.Recorder{}, timerx.NewFake(), nil)

	require.ErrorIs(t, f.Start(context.Background(), ""), common.ErrValidation)
	assert.Equal(t, VerifyFailed, f.State())
	assert.Equal(t, "No verification token provided.", f.Message())
	assert.Zero(t, a.VerifyEmailCalls)
}

func TestVerifyEmail_CountdownThenLogin(t *testing.T) {
	a := &fakeAPI{MsgResp: &models.Message{Message: "Email verified"}}
	rec := &nav.Recorder{}
	clock := timerx.NewFake()
	f := NewVerifyEmailFlow(a, rec, clock, nil)

	var ticks []int
	f.OnTick(func(n int) { ticks = append(ticks, n) })

	require.NoError(t, f.Start(context.Background(), "vt"))
	assert.Equal(t, Verified, f.State())
	assert.Equal(t, "Email verified", f.Message())
	assert.Equal(t, VerifyCountdown, f.Remaining())
	assert.Equal(t, "vt", a.LastToken)

	clock.Advance(2 * time.Second)
	assert.Equal(t, []int{2, 1}, ticks)
	assert.Empty(t, rec.Routes)

	clock.Advance(time.Second)
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.Equal(t, []nav.Route{nav.RouteLogin}, rec.Routes)
	assert.Zero(t, clock.Pending())
}

func TestVerifyEmail_FailureIsFinal(t *testing.T) {
	a := &fakeAPI{MsgErr: &api.HTTPError{Status: 400, Message: "Invalid or expired token"}}
	rec := &nav.Recorder{}
	clock := timerx.NewFake()
	f := NewVerifyEmailFlow(a, rec, clock, nil)

	require.Error(t, f.Start(context.Background(), "vt"))
	assert.Equal(t, VerifyFailed, f.State())
	assert.Equal(t, "Invalid or expired token", f.Message())
	assert.Equal(t, 1, a.VerifyEmailCalls)
	assert.Zero(t, clock.Pending())
}
