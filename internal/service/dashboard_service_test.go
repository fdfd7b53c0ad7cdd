package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"teamperf/internal/performance"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

func TestDashboardService_Organization(t *testing.T) {
	f := newFixture()
	now := time.Now()
	f.rate("m1", "c1", now, 5, 5, 5, 4, 5) // 4.8
	f.rate("m2", "c1", now, 3, 3, 4, 3, 3) // 3.2
	// m3 has no ratings

	svc := NewDashboardService(f.repos, f.cache, logger.NewNop())
	prevAvg := 3.5
	d, err := svc.Organization(context.Background(), testOrg, performance.Previous{AverageRating: &prevAvg})
	require.NoError(t, err)

	assert.Equal(t, 3, d.Summary.TotalMembers)
	assert.Equal(t, 2, d.Summary.RatedMembers)
	assert.Equal(t, 10, d.Summary.TotalRatings)
	assert.Equal(t, 4.0, d.Summary.AverageRating)

	// Only the rated team appears; its mean ignores the unrated member
	require.Len(t, d.Teams, 1)
	assert.Equal(t, "t1", d.Teams[0].TeamID)
	assert.Equal(t, 4.0, d.Teams[0].AverageRating)
	assert.Equal(t, 2, d.Teams[0].RatedMembers)

	last := d.Categories[len(d.Categories)-1]
	assert.Equal(t, performance.NotScored, last.Name)
	require.Len(t, last.Members, 1)
	assert.Equal(t, "Cy", last.Members[0].Name)

	assert.Equal(t, performance.TrendUp, d.Trends.AverageRating.Direction)
	assert.Equal(t, performance.TrendNeutral, d.Trends.TotalRatings.Direction)
	assert.Equal(t, 1, f.cache.loads)
}

func TestDashboardService_Team(t *testing.T) {
	f := newFixture()
	f.rate("m1", "c1", time.Now(), 4)
	svc := NewDashboardService(f.repos, f.cache, logger.NewNop())

	d, err := svc.Team(context.Background(), testOrg, "t1", performance.Previous{})
	require.NoError(t, err)
	assert.Equal(t, 3, d.Summary.TotalMembers)
	assert.Equal(t, 1, d.Summary.RatedMembers)

	empty, err := svc.Team(context.Background(), testOrg, "t2", performance.Previous{})
	require.NoError(t, err)
	assert.Zero(t, empty.Summary.TotalMembers)
	assert.Empty(t, empty.Teams)

	_, err = svc.Team(context.Background(), testOrg, "missing", performance.Previous{})
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeNotFound))
}

func TestDashboardService_SoftDeletedMembersDisappear(t *testing.T) {
	f := newFixture()
	f.rate("m1", "c1", time.Now(), 5)
	svc := NewDashboardService(f.repos, f.cache, logger.NewNop())
	members := NewMemberService(f.repos, f.cache, logger.NewNop())

	require.NoError(t, members.Delete(context.Background(), testOrg, "m1"))

	d, err := svc.Organization(context.Background(), testOrg, performance.Previous{})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Summary.TotalMembers)
	assert.Zero(t, d.Summary.TotalRatings)
	assert.Equal(t, []string{testOrg}, f.cache.invalidated)
}
