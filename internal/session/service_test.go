package session

import (
	"context"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"peo_admin/internal/model"
	"peo_admin/internal/query"
	"peo_admin/internal/testutil"
)

func newTestService(t *testing.T) (*Service, *model.User) {
	t.Helper()
	gdb := testutil.NewDB(t)
	u := &model.User{Email: "clerk@peo.gov.ph", PasswordHash: "x", Role: model.RoleStaff, Status: model.UserStatusActive}
	require.NoError(t, query.MustNew[model.User](gdb).Create(context.Background(), u))
	return NewService(gdb), u
}

func TestCreate_TruncatesUserAgentOnRuneBoundary(t *testing.T) {
	svc, u := newTestService(t)
	ua := strings.Repeat("a", maxUserAgentLen-1) + "é/1.0"

	sess, err := svc.Create(context.Background(), u.ID, "10.0.0.8", ua, time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NotNil(t, sess.UserAgent)
	assert.True(t, utf8.ValidString(*sess.UserAgent))
	assert.Equal(t, strings.Repeat("a", maxUserAgentLen-1), *sess.UserAgent)

	assert.Equal(t, "Mozilla", truncate("Mozilla", maxUserAgentLen))
	assert.Equal(t, "ab", truncate("abé", 3))
	assert.Equal(t, "abé", truncate("abé", 4))
}

func TestValidate(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return base }

	sess, err := svc.Create(ctx, u.ID, "10.0.0.8", "Mozilla/5.0", base.Add(time.Hour))
	require.NoError(t, err)

	got, err := svc.Validate(ctx, sess.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.UserID)

	svc.now = func() time.Time { return base.Add(10 * time.Minute) }
	got, err = svc.Validate(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, got.LastActiveAt.Equal(base.Add(10*time.Minute)), "activity should be recorded")

	svc.now = func() time.Time { return base.Add(time.Hour) }
	_, err = svc.Validate(ctx, sess.ID)
	assert.ErrorIs(t, err, ErrExpired)

	_, err = svc.Validate(ctx, "no-such-session")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteAndSweep(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()
	now := time.Now()

	live, err := svc.Create(ctx, u.ID, "", "", now.Add(time.Hour))
	require.NoError(t, err)
	_, err = svc.Create(ctx, u.ID, "", "", now.Add(-time.Minute))
	require.NoError(t, err)

	sweeper := NewSweeper(&SweeperConfig{Service: svc, Logger: logrus.NewEntry(logrus.New()), IntervalSec: 3600})
	sweeper.Sweep()

	_, err = svc.Validate(ctx, live.ID)
	require.NoError(t, err)

	n, err := svc.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 0, n, "sweep should already have removed the expired session")

	require.NoError(t, svc.Delete(ctx, live.ID))
	_, err = svc.Validate(ctx, live.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, svc.Delete(ctx, live.ID))
}

func TestSweeper_StartStop(t *testing.T) {
	svc, _ := newTestService(t)
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sweeper := NewSweeper(&SweeperConfig{Service: svc, Logger: logrus.NewEntry(logrus.New()), IntervalSec: 1})
	sweeper.Start()
	sweeper.Stop()
}
