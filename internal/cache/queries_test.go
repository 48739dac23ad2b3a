package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingBroadcaster struct {
	published [][]string
}

func (b *recordingBroadcaster) PublishInvalidation(_ context.Context, keys []string) error {
	b.published = append(b.published, keys)
	return nil
}

func newTestQueries(t *testing.T) (*RedisQueries, *miniredis.Miniredis, *recordingBroadcaster) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb, err := Dial(context.Background(), mr.Addr(), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { rdb.Close() })

	b := &recordingBroadcaster{}
	return NewRedisQueries(rdb, time.Minute, b, logrus.NewEntry(logrus.New())), mr, b
}

func TestRemember_LoadsOnceUntilInvalidated(t *testing.T) {
	q, _, b := newTestQueries(t)
	ctx := context.Background()

	loads := 0
	load := func() (map[string]int, error) {
		loads++
		return map[string]int{"total": loads}, nil
	}

	v, err := Remember(ctx, q, "users:stats", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v["total"])

	v, err = Remember(ctx, q, "users:stats", load)
	require.NoError(t, err)
	assert.Equal(t, 1, v["total"], "second read should come from cache")
	assert.Equal(t, 1, loads)

	q.Invalidate(ctx, "users:stats")
	v, err = Remember(ctx, q, "users:stats", load)
	require.NoError(t, err)
	assert.Equal(t, 2, v["total"])

	require.Len(t, b.published, 1)
	assert.Equal(t, []string{"users:stats"}, b.published[0])
}

func TestInvalidate_DropsGroupMembers(t *testing.T) {
	q, mr, _ := newTestQueries(t)
	ctx := context.Background()

	page1 := Key("users:list", map[string]int{"page": 1})
	page2 := Key("users:list", map[string]int{"page": 2})
	q.Set(ctx, page1, []byte(`1`), 0)
	q.Set(ctx, page2, []byte(`2`), 0)
	q.Set(ctx, "users:divisions", []byte(`[]`), 0)
	q.Set(ctx, "projects:stats", []byte(`{}`), 0)

	q.Invalidate(ctx, "users:list", "users:divisions")

	assert.False(t, mr.Exists("peo:q:"+page1))
	assert.False(t, mr.Exists("peo:q:"+page2))
	assert.False(t, mr.Exists("peo:q:users:divisions"))
	assert.True(t, mr.Exists("peo:q:projects:stats"), "unrelated groups must survive")
}

func TestRemember_DropsResultLoadedBeforeInvalidation(t *testing.T) {
	q, mr, _ := newTestQueries(t)
	ctx := context.Background()
	key := Key("users:list", map[string]int{"page": 1})

	v, err := Remember(ctx, q, key, func() (int, error) {
		// a mutation commits and invalidates while this read is loading
		q.Invalidate(ctx, "users:list")
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.False(t, mr.Exists("peo:q:"+key), "stale result must not be stored")

	v, err = Remember(ctx, q, key, func() (int, error) { return 2, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	assert.True(t, mr.Exists("peo:q:"+key))

	v, err = Remember(ctx, q, key, func() (int, error) { return 3, nil })
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestGeneration_SharedByGroupMembers(t *testing.T) {
	q, _, _ := newTestQueries(t)
	ctx := context.Background()
	member := Key("projects:list", map[string]int{"page": 3})

	assert.EqualValues(t, 0, q.Generation(ctx, member))
	q.Invalidate(ctx, "projects:list")
	assert.EqualValues(t, 1, q.Generation(ctx, member))
	assert.EqualValues(t, 1, q.Generation(ctx, "projects:list"))
	assert.EqualValues(t, 0, q.Generation(ctx, "projects:stats"))

	q.Set(ctx, member, []byte(`1`), 0)
	_, ok := q.Get(ctx, member)
	assert.False(t, ok)
	q.Set(ctx, member, []byte(`1`), 1)
	_, ok = q.Get(ctx, member)
	assert.True(t, ok)
}

func TestKey_StableForSameParams(t *testing.T) {
	a := Key("users:list", map[string]any{"page": 1, "search": "juan"})
	b := Key("users:list", map[string]any{"search": "juan", "page": 1})
	c := Key("users:list", map[string]any{"page": 2, "search": "juan"})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Contains(t, a, "users:list:")
}

func TestNop_AlwaysLoads(t *testing.T) {
	b := &recordingBroadcaster{}
	q := Nop{Broadcaster: b}
	ctx := context.Background()

	loads := 0
	for i := 0; i < 3; i++ {
		_, err := Remember(ctx, q, "k", func() (int, error) { loads++; return loads, nil })
		require.NoError(t, err)
	}
	assert.Equal(t, 3, loads)

	q.Invalidate(ctx, "posts:list")
	assert.Equal(t, [][]string{{"posts:list"}}, b.published)
}

func TestDial_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Dial(context.Background(), addr, "", 0)
	assert.Error(t, err)
}
