package query

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"peo_admin/internal/model"
	"peo_admin/internal/testutil"
)

func seedProjects(t *testing.T) (*Client[model.Project], *model.User) {
	t.Helper()
	gdb := testutil.NewDB(t)
	ctx := context.Background()

	owner := &model.User{Email: "owner@peo.gov.ph", PasswordHash: "x", Role: model.RoleAdmin, Status: model.UserStatusActive}
	require.NoError(t, MustNew[model.User](gdb).Create(ctx, owner))

	projects := MustNew[model.Project](gdb)
	rows := []model.Project{
		{ProjectCode: "P-001", Title: "Road concreting Brgy. Poblacion", District: model.District1, FundSource: model.FundSourceGeneralFund, ImplementationMode: model.ImplementationByContract, ContractCost: 1000, Status: model.ProjectStatusOngoing},
		{ProjectCode: "P-002", Title: "Bridge repair", District: model.District2, FundSource: model.FundSourceDevelopmentFund20, ImplementationMode: model.ImplementationByAdministration, ContractCost: 2500, Status: model.ProjectStatusCompleted},
		{ProjectCode: "P-003", Title: "Road widening", District: model.District1, FundSource: model.FundSourceGeneralFund, ImplementationMode: model.ImplementationByContract, ContractCost: 500, Status: model.ProjectStatusOngoing},
	}
	for i := range rows {
		rows[i].CreatedBy = owner.ID
		require.NoError(t, projects.Create(ctx, &rows[i]))
	}
	return projects, owner
}

func TestFindMany_FilterSortPaginate(t *testing.T) {
	projects, _ := seedProjects(t)
	ctx := context.Background()

	got, err := projects.FindMany(ctx, FindManyArgs{
		Where:   []Filter{Where("title", Contains, "Road")},
		OrderBy: []Sort{Desc("contract_cost")},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "P-001", got[0].ProjectCode)
	assert.Equal(t, "P-003", got[1].ProjectCode)

	page, err := projects.FindMany(ctx, FindManyArgs{OrderBy: []Sort{Asc("ProjectCode")}, Skip: 1, Take: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "P-002", page[0].ProjectCode)

	either, err := projects.FindMany(ctx, FindManyArgs{
		Where: []Filter{AnyOf(Eq("project_code", "P-002"), Where("contract_cost", Lt, 600))},
	})
	require.NoError(t, err)
	assert.Len(t, either, 2)

	in, err := projects.Count(ctx, Where("status", In, []model.ProjectStatus{model.ProjectStatusCompleted}))
	require.NoError(t, err)
	assert.EqualValues(t, 1, in)
}

func TestFindMany_LikeMatchesWildcardsLiterally(t *testing.T) {
	projects, owner := seedProjects(t)
	ctx := context.Background()
	for _, row := range []model.Project{
		{ProjectCode: "P_100", Title: "Drainage 50% complete"},
		{ProjectCode: "PX100", Title: "Drainage phase 1"},
		{ProjectCode: "P!200", Title: "Drainage!"},
	} {
		row.District = model.District3
		row.FundSource = model.FundSourceGeneralFund
		row.ImplementationMode = model.ImplementationByContract
		row.CreatedBy = owner.ID
		require.NoError(t, projects.Create(ctx, &row))
	}

	cases := []struct {
		name string
		f    Filter
		want []string
	}{
		{"underscore", Where("project_code", StartsWith, "P_"), []string{"P_100"}},
		{"percent", Where("title", Contains, "%"), []string{"P_100"}},
		{"escape char", Where("project_code", Contains, "!"), []string{"P!200"}},
		{"suffix", Where("title", EndsWith, "!"), []string{"P!200"}},
		{"plain", Where("title", StartsWith, "Drainage"), []string{"P!200", "PX100", "P_100"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := projects.FindMany(ctx, FindManyArgs{Where: []Filter{tc.f}})
			require.NoError(t, err)
			codes := make([]string, 0, len(got))
			for _, p := range got {
				codes = append(codes, p.ProjectCode)
			}
			assert.ElementsMatch(t, tc.want, codes)
		})
	}
}

func TestFindMany_RejectsUnknownFields(t *testing.T) {
	projects, _ := seedProjects(t)
	ctx := context.Background()

	_, err := projects.FindMany(ctx, FindManyArgs{Where: []Filter{Eq("colour", "red")}})
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = projects.FindMany(ctx, FindManyArgs{OrderBy: []Sort{Asc("nope")}})
	assert.True(t, errors.Is(err, ErrUnknownField))

	_, err = projects.FindMany(ctx, FindManyArgs{Include: []string{"Owner"}})
	assert.True(t, errors.Is(err, ErrUnknownRelation))

	_, err = projects.FindMany(ctx, FindManyArgs{Where: []Filter{Where("title", Op("like"), "x")}})
	assert.True(t, errors.Is(err, ErrUnknownOperator))
}

func TestFindMany_SelectAndIncludeAreExclusive(t *testing.T) {
	projects, _ := seedProjects(t)

	_, err := projects.FindMany(context.Background(), FindManyArgs{
		Select:  []string{"title"},
		Include: []string{"Creator"},
	})
	assert.ErrorIs(t, err, ErrSelectAndInclude)
}

func TestFindUnique_Include(t *testing.T) {
	projects, owner := seedProjects(t)
	ctx := context.Background()

	first, err := projects.FindFirst(ctx, FindManyArgs{Where: []Filter{Eq("project_code", "P-002")}})
	require.NoError(t, err)

	got, err := projects.FindUnique(ctx, first.ID, "Creator")
	require.NoError(t, err)
	require.NotNil(t, got.Creator)
	assert.Equal(t, owner.Email, got.Creator.Email)

	_, err = projects.FindUnique(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAggregateAndGroupBy(t *testing.T) {
	projects, _ := seedProjects(t)
	ctx := context.Background()

	agg, err := projects.Aggregate(ctx, AggregateArgs{Sum: []string{"contract_cost"}, Max: []string{"ContractCost"}})
	require.NoError(t, err)
	assert.EqualValues(t, 3, agg.Count)
	assert.InDelta(t, 4000, agg.Sum["contract_cost"], 0.001)
	assert.InDelta(t, 2500, agg.Max["contract_cost"], 0.001)

	_, err = projects.Aggregate(ctx, AggregateArgs{Sum: []string{"title"}})
	assert.ErrorIs(t, err, ErrNotNumeric)

	groups, err := projects.GroupBy(ctx, GroupByArgs{By: []string{"status"}, Sum: []string{"contract_cost"}})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	counts := map[string]int64{}
	for _, g := range groups {
		counts[g.Key("status")] = g.Count
	}
	assert.EqualValues(t, 1, counts[string(model.ProjectStatusCompleted)])
	assert.EqualValues(t, 2, counts[string(model.ProjectStatusOngoing)])
}

func TestUpdateDeleteAndDistinct(t *testing.T) {
	projects, _ := seedProjects(t)
	ctx := context.Background()

	p, err := projects.FindFirst(ctx, FindManyArgs{Where: []Filter{Eq("project_code", "P-001")}})
	require.NoError(t, err)

	require.NoError(t, projects.Update(ctx, p.ID, map[string]any{"Status": model.ProjectStatusSuspended}))
	reloaded, err := projects.FindUnique(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ProjectStatusSuspended, reloaded.Status)

	err = projects.Update(ctx, p.ID, map[string]any{"budget": 1})
	assert.ErrorIs(t, err, ErrUnknownField)

	districts, err := projects.Distinct(ctx, "district")
	require.NoError(t, err)
	assert.Equal(t, []string{"DISTRICT_1", "DISTRICT_2"}, districts)

	_, err = projects.DeleteMany(ctx)
	assert.ErrorIs(t, err, ErrEmptyWhere)

	n, err := projects.DeleteMany(ctx, Eq("district", model.District1))
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	n, err = projects.Delete(ctx, "missing")
	require.NoError(t, err)
	assert.EqualValues(t, 0, n)
}
