package post

import (
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peo_admin/internal/cache"
	"peo_admin/internal/model"
	"peo_admin/internal/query"
	"peo_admin/internal/testutil"
)

type countingBroadcaster struct {
	keys [][]string
}

func (b *countingBroadcaster) PublishInvalidation(_ context.Context, keys []string) error {
	b.keys = append(b.keys, keys)
	return nil
}

func TestPostLifecycle(t *testing.T) {
	gdb := testutil.NewDB(t)
	ctx := context.Background()
	owner := &model.User{Email: "a@peo.gov.ph", PasswordHash: "x", Role: model.RoleStaff, Status: model.UserStatusActive}
	require.NoError(t, query.MustNew[model.User](gdb).Create(ctx, owner))

	b := &countingBroadcaster{}
	s := NewService(gdb, cache.Nop{Broadcaster: b}, logrus.NewEntry(logrus.New()))

	_, err := s.Create(ctx, owner.ID, "  ")
	assert.ErrorIs(t, err, ErrNameRequired)

	p, err := s.Create(ctx, owner.ID, "Hello")
	require.NoError(t, err)
	_, err = s.Create(ctx, owner.ID, "World")
	require.NoError(t, err)

	renamed, err := s.Update(ctx, p.ID, "Hello again")
	require.NoError(t, err)
	assert.Equal(t, "Hello again", renamed.Name)

	_, err = s.Update(ctx, 9999, "nobody")
	assert.ErrorIs(t, err, ErrNotFound)

	res, err := s.List(ctx, ListParams{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.EqualValues(t, 2, res.Total)
	assert.Equal(t, "World", res.Items[0].Name)

	n, err := s.Delete(ctx, []int{p.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	assert.Len(t, b.keys, 4)
	for _, keys := range b.keys {
		assert.Equal(t, []string{KeyList}, keys)
	}
}
