package document

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peo_admin/internal/model"
	"peo_admin/internal/query"
	"peo_admin/internal/storage"
	"peo_admin/internal/testutil"
)

type recordingQueries struct {
	calls [][]string
}

func (r *recordingQueries) Get(context.Context, string) ([]byte, bool) { return nil, false }

func (r *recordingQueries) Generation(context.Context, string) int64 { return 0 }

func (r *recordingQueries) Set(context.Context, string, []byte, int64) {}

func (r *recordingQueries) Invalidate(_ context.Context, keys ...string) {
	r.calls = append(r.calls, keys)
}

func ptr[T any](v T) *T { return &v }

func setup(t *testing.T) (*Service, *recordingQueries, string) {
	t.Helper()
	gdb := testutil.NewDB(t)
	owner := &model.User{Email: "clerk@peo.gov.ph", PasswordHash: "x", Role: model.RoleStaff, Status: model.UserStatusActive}
	require.NoError(t, query.MustNew[model.User](gdb).Create(context.Background(), owner))

	files, err := storage.NewLocal(t.TempDir(), 1<<20)
	require.NoError(t, err)

	rec := &recordingQueries{}
	s := NewService(gdb, files, rec, logrus.NewEntry(logrus.New()))
	s.now = func() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }
	return s, rec, owner.ID
}

func input(code string, amount float64) Input {
	return Input{
		DocumentCode: ptr(code),
		Type:         ptr(string(model.DocumentTypePOW)),
		Title:        ptr("Program of works, road concreting"),
		Amount:       ptr(amount),
		District:     ptr(string(model.District2)),
		ProjectRef:   ptr("P-2024-001"),
	}
}

func TestCreate(t *testing.T) {
	s, rec, owner := setup(t)
	ctx := context.Background()

	d, err := s.Create(ctx, owner, input("D-1", 250000))
	require.NoError(t, err)
	assert.Equal(t, model.DocumentStatusDraft, d.Status)
	assert.Equal(t, "P-2024-001", model.StrVal(d.ProjectRef))
	require.Len(t, rec.calls, 1)
	assert.Equal(t, []string{KeyList, KeyStats}, rec.calls[0])

	_, err = s.Create(ctx, owner, input("D-1", 1))
	assert.ErrorIs(t, err, ErrCodeTaken)

	bad := input("D-2", 1)
	bad.Type = ptr("MEMO")
	_, err = s.Create(ctx, owner, bad)
	assert.ErrorIs(t, err, ErrInvalidType)

	_, err = s.Create(ctx, owner, input("D-3", -5))
	assert.ErrorIs(t, err, ErrNegativeAmount)
}

func TestStatusMachineAndRelease(t *testing.T) {
	s, _, owner := setup(t)
	ctx := context.Background()

	d, err := s.Create(ctx, owner, input("D-1", 1000))
	require.NoError(t, err)

	_, err = s.UpdateStatus(ctx, owner, d.ID, model.DocumentStatusReleased, "")
	assert.ErrorIs(t, err, ErrInvalidTransition)

	steps := []model.DocumentStatus{
		model.DocumentStatusForReview,
		model.DocumentStatusRevision,
		model.DocumentStatusForReview,
	}
	for _, next := range steps {
		got, err := s.UpdateStatus(ctx, owner, d.ID, next, "")
		require.NoError(t, err)
		assert.Equal(t, next, got.Status)
		assert.Nil(t, got.ReleasedAt)
	}

	released, err := s.UpdateStatus(ctx, owner, d.ID, model.DocumentStatusReleased, "  signed by PE  ")
	require.NoError(t, err)
	require.NotNil(t, released.ReleasedAt)
	assert.True(t, released.ReleasedAt.Equal(s.now()))
	assert.Equal(t, owner, model.StrVal(released.ReleasedBy))
	assert.Equal(t, "signed by PE", model.StrVal(released.ReleaseRemarks))

	_, err = s.UpdateStatus(ctx, owner, d.ID, model.DocumentStatusForReview, "")
	assert.ErrorIs(t, err, ErrReleased)

	_, err = s.Update(ctx, d.ID, Input{Title: ptr("changed")})
	assert.ErrorIs(t, err, ErrReleased)

	_, err = s.Upload(ctx, d.ID, "pow.pdf", strings.NewReader("%PDF"))
	assert.ErrorIs(t, err, ErrReleased)

	_, err = s.UpdateStatus(ctx, owner, "missing", model.DocumentStatusForReview, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadReplaceAndDelete(t *testing.T) {
	s, _, owner := setup(t)
	ctx := context.Background()

	d, err := s.Create(ctx, owner, input("D-1", 1000))
	require.NoError(t, err)

	_, _, err = s.File(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNoFile)

	first, err := s.Upload(ctx, d.ID, "pow.pdf", strings.NewReader("first"))
	require.NoError(t, err)
	assert.Equal(t, "pow.pdf", model.StrVal(first.FileName))
	assert.EqualValues(t, 5, *first.FileSize)
	_, firstPath, err := s.File(ctx, d.ID)
	require.NoError(t, err)

	second, err := s.Upload(ctx, d.ID, "pow-v2.pdf", strings.NewReader("second"))
	require.NoError(t, err)
	assert.NotEqual(t, model.StrVal(first.FilePath), model.StrVal(second.FilePath))
	_, err = os.Stat(firstPath)
	assert.True(t, os.IsNotExist(err), "replaced file is removed")

	_, secondPath, err := s.File(ctx, d.ID)
	require.NoError(t, err)
	raw, err := os.ReadFile(secondPath)
	require.NoError(t, err)
	assert.Equal(t, "second", string(raw))

	n, err := s.Delete(ctx, []string{d.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	_, err = os.Stat(secondPath)
	assert.True(t, os.IsNotExist(err))
}

func TestListAndStats(t *testing.T) {
	s, _, owner := setup(t)
	ctx := context.Background()

	a, err := s.Create(ctx, owner, input("D-A", 1000))
	require.NoError(t, err)
	b, err := s.Create(ctx, owner, input("D-B", 500))
	require.NoError(t, err)
	_, err = s.Create(ctx, owner, input("D-C", 300))
	require.NoError(t, err)

	for _, id := range []string{a.ID, b.ID} {
		_, err = s.UpdateStatus(ctx, owner, id, model.DocumentStatusForReview, "")
		require.NoError(t, err)
	}
	_, err = s.UpdateStatus(ctx, owner, a.ID, model.DocumentStatusReleased, "")
	require.NoError(t, err)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 3, Draft: 1, ForReview: 1, Released: 1, ReleasedAmount: 1000}, *st)

	res, err := s.List(ctx, ListParams{Page: 1, PageSize: 10, Status: string(model.DocumentStatusForReview)})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "D-B", res.Items[0].DocumentCode)

	res, err = s.List(ctx, ListParams{Page: 1, PageSize: 2, Search: "d-"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, res.Total)
	assert.Len(t, res.Items, 2)
}
