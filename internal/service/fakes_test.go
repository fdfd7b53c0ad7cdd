package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
	"teamperf/internal/repository"
	"teamperf/pkg/redis"
)

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := redis.NewClient("redis://"+mr.Addr(), "test", zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

// passthroughCache never caches and records invalidations
type passthroughCache struct {
	mu          sync.Mutex
	loads       int
	invalidated []string
}

func (c *passthroughCache) Dashboard(ctx context.Context, _ DashboardKey, load func(ctx context.Context) (*performance.Dashboard, error)) (*performance.Dashboard, error) {
	c.mu.Lock()
	c.loads++
	c.mu.Unlock()
	return load(ctx)
}

func (c *passthroughCache) InvalidateDashboards(_ context.Context, orgID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated = append(c.invalidated, orgID)
}

type fakeTeams struct {
	repository.TeamRepository
	teams     map[string]*domain.Team
	createErr error
}

func (f *fakeTeams) List(_ context.Context, orgID string) ([]domain.Team, error) {
	out := []domain.Team{}
	for _, t := range f.teams {
		if t.OrganizationID == orgID && t.DeletedAt == nil {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeTeams) GetByID(_ context.Context, orgID, id string) (*domain.Team, error) {
	t, ok := f.teams[id]
	if !ok || t.OrganizationID != orgID || t.DeletedAt != nil {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTeams) CreateWithMembers(_ context.Context, team *domain.Team, members []domain.Member) error {
	if f.createErr != nil {
		return f.createErr
	}
	team.ID = fmt.Sprintf("team-%d", len(f.teams)+1)
	for i := range members {
		members[i].ID = fmt.Sprintf("%s-m%d", team.ID, i+1)
		members[i].TeamID = team.ID
	}
	team.MemberCount = len(members)
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeams) Update(_ context.Context, team *domain.Team) error {
	if _, ok := f.teams[team.ID]; !ok {
		return domain.ErrNotFound
	}
	f.teams[team.ID] = team
	return nil
}

func (f *fakeTeams) SoftDelete(_ context.Context, orgID, id string) (bool, error) {
	t, ok := f.teams[id]
	if !ok || t.OrganizationID != orgID || t.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	t.DeletedAt = &now
	return true, nil
}

type fakeMembers struct {
	repository.MemberRepository
	members map[string]*domain.Member
}

func (f *fakeMembers) live(orgID string, keep func(*domain.Member) bool) []domain.Member {
	out := []domain.Member{}
	for _, m := range f.members {
		if m.OrganizationID == orgID && m.DeletedAt == nil && keep(m) {
			out = append(out, *m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (f *fakeMembers) ListByTeam(_ context.Context, orgID, teamID string) ([]domain.Member, error) {
	return f.live(orgID, func(m *domain.Member) bool { return m.TeamID == teamID }), nil
}

func (f *fakeMembers) ListByOrganization(_ context.Context, orgID string) ([]domain.Member, error) {
	return f.live(orgID, func(*domain.Member) bool { return true }), nil
}

func (f *fakeMembers) GetByID(_ context.Context, orgID, id string) (*domain.Member, error) {
	m, ok := f.members[id]
	if !ok || m.OrganizationID != orgID || m.DeletedAt != nil {
		return nil, nil
	}
	cp := *m
	return &cp, nil
}

func (f *fakeMembers) Create(_ context.Context, m *domain.Member) error {
	m.ID = fmt.Sprintf("member-%d", len(f.members)+1)
	f.members[m.ID] = m
	return nil
}

func (f *fakeMembers) Update(_ context.Context, m *domain.Member) error {
	f.members[m.ID] = m
	return nil
}

func (f *fakeMembers) SoftDelete(_ context.Context, orgID, id string) (bool, error) {
	m, ok := f.members[id]
	if !ok || m.OrganizationID != orgID || m.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	m.DeletedAt = &now
	return true, nil
}

func (f *fakeMembers) HardDelete(_ context.Context, orgID, id string) (bool, error) {
	m, ok := f.members[id]
	if !ok || m.OrganizationID != orgID {
		return false, nil
	}
	delete(f.members, id)
	return true, nil
}

type fakeRatings struct {
	repository.RatingRepository
	members *fakeMembers
	ratings []domain.RatingDetail
	created []domain.Rating
}

func (f *fakeRatings) Create(_ context.Context, r *domain.Rating) error {
	r.ID = fmt.Sprintf("rating-%d", len(f.created)+1)
	f.created = append(f.created, *r)
	return nil
}

func (f *fakeRatings) ListByMember(_ context.Context, memberID string, period *domain.Period) ([]domain.RatingDetail, error) {
	out := []domain.RatingDetail{}
	for _, r := range f.ratings {
		if r.MemberID == memberID && (period == nil || period.Contains(r.CreatedAt)) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRatings) values(orgID string, keep func(domain.Member) bool) map[string][]int {
	out := make(map[string][]int)
	for _, r := range f.ratings {
		m, ok := f.members.members[r.MemberID]
		if !ok || m.OrganizationID != orgID || m.DeletedAt != nil || !keep(*m) {
			continue
		}
		out[r.MemberID] = append(out[r.MemberID], r.Value)
	}
	return out
}

func (f *fakeRatings) ValuesByOrganization(_ context.Context, orgID string) (map[string][]int, error) {
	return f.values(orgID, func(domain.Member) bool { return true }), nil
}

func (f *fakeRatings) ValuesByTeam(_ context.Context, orgID, teamID string) (map[string][]int, error) {
	return f.values(orgID, func(m domain.Member) bool { return m.TeamID == teamID }), nil
}

type fakeFeedback struct {
	repository.FeedbackRepository
	items []domain.Feedback
}

func (f *fakeFeedback) Create(_ context.Context, item *domain.Feedback) error {
	item.ID = fmt.Sprintf("feedback-%d", len(f.items)+1)
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeFeedback) ListByMember(_ context.Context, memberID string, period *domain.Period) ([]domain.Feedback, error) {
	out := []domain.Feedback{}
	for _, item := range f.items {
		if item.MemberID == memberID && (period == nil || period.Contains(item.CreatedAt)) {
			out = append(out, item)
		}
	}
	return out, nil
}

type fakeActivities struct {
	repository.ActivityRepository
	activities map[string]*domain.Activity
}

func (f *fakeActivities) GetByID(_ context.Context, orgID, id string) (*domain.Activity, error) {
	a, ok := f.activities[id]
	if !ok || a.DeletedAt != nil || (a.OrganizationID != nil && *a.OrganizationID != orgID) {
		return nil, nil
	}
	cp := *a
	return &cp, nil
}

func (f *fakeActivities) SoftDelete(_ context.Context, orgID, id string) (bool, error) {
	a, ok := f.activities[id]
	if !ok || a.OrganizationID == nil || *a.OrganizationID != orgID || a.DeletedAt != nil {
		return false, nil
	}
	now := time.Now()
	a.DeletedAt = &now
	return true, nil
}

type fakeReviews struct {
	repository.ReviewRepository
	reviews map[string]*domain.Review
}

func (f *fakeReviews) CreateVersion(_ context.Context, rv *domain.Review) error {
	version := 0
	for _, existing := range f.reviews {
		if existing.MemberID == rv.MemberID && existing.PeriodStart.Equal(rv.PeriodStart) && existing.PeriodEnd.Equal(rv.PeriodEnd) && existing.Version > version {
			version = existing.Version
		}
	}
	rv.Version = version + 1
	rv.ID = fmt.Sprintf("review-%d", len(f.reviews)+1)
	cp := *rv
	f.reviews[rv.ID] = &cp
	return nil
}

func (f *fakeReviews) GetByID(_ context.Context, orgID, id string) (*domain.Review, error) {
	rv, ok := f.reviews[id]
	if !ok || rv.OrganizationID != orgID || rv.DeletedAt != nil {
		return nil, nil
	}
	cp := *rv
	return &cp, nil
}

func (f *fakeReviews) Transition(_ context.Context, orgID, id string, from, to domain.ReviewStatus) (*domain.Review, error) {
	if !from.CanTransitionTo(to) {
		return nil, domain.ErrInvalidTransition
	}
	rv, ok := f.reviews[id]
	if !ok || rv.OrganizationID != orgID || rv.DeletedAt != nil || rv.Status != from {
		return nil, nil
	}
	rv.Status = to
	cp := *rv
	return &cp, nil
}

func (f *fakeReviews) SoftDeleteDraft(_ context.Context, orgID, id string) (bool, error) {
	rv, ok := f.reviews[id]
	if !ok || rv.OrganizationID != orgID || rv.DeletedAt != nil || rv.Status != domain.ReviewDraft {
		return false, nil
	}
	now := time.Now()
	rv.DeletedAt = &now
	return true, nil
}

// fakeUsers mirrors the soft-delete behaviour of the users table
type fakeUsers struct {
	repository.UserRepository
	byExternal map[string]*domain.User
	audit      []domain.AuditLog
	failNext   error
}

func (f *fakeUsers) GetByExternalID(_ context.Context, externalID string) (*domain.User, error) {
	u, ok := f.byExternal[externalID]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) Upsert(_ context.Context, user *domain.User, audit *domain.AuditLog) (bool, error) {
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return false, err
	}
	existing, ok := f.byExternal[user.ExternalID]
	if ok && existing.DeletedAt != nil {
		return false, domain.ErrNotFound
	}
	if ok {
		existing.Email, existing.FirstName, existing.LastName, existing.ImageURL = user.Email, user.FirstName, user.LastName, user.ImageURL
		user.ID = existing.ID
	} else {
		user.ID = fmt.Sprintf("u-%d", len(f.byExternal)+1)
		cp := *user
		f.byExternal[user.ExternalID] = &cp
	}
	audit.UserID = &user.ID
	f.audit = append(f.audit, *audit)
	return !ok, nil
}

func (f *fakeUsers) SoftDeleteByExternalID(_ context.Context, externalID string, audit *domain.AuditLog) (*domain.User, error) {
	u, ok := f.byExternal[externalID]
	if !ok || u.DeletedAt != nil {
		return nil, nil
	}
	now := time.Now()
	u.DeletedAt = &now
	audit.UserID = &u.ID
	f.audit = append(f.audit, *audit)
	cp := *u
	return &cp, nil
}

// fixture is one organization with two teams and three members
type fixture struct {
	repos      *repository.Repositories
	teams      *fakeTeams
	members    *fakeMembers
	ratings    *fakeRatings
	feedback   *fakeFeedback
	activities *fakeActivities
	reviews    *fakeReviews
	cache      *passthroughCache
}

const testOrg = "org-1"

func newFixture() *fixture {
	teams := &fakeTeams{teams: map[string]*domain.Team{
		"t1": {ID: "t1", OrganizationID: testOrg, Name: "Platform"},
		"t2": {ID: "t2", OrganizationID: testOrg, Name: "Mobile"},
	}}
	members := &fakeMembers{members: map[string]*domain.Member{
		"m1": {ID: "m1", OrganizationID: testOrg, TeamID: "t1", Name: "Ana"},
		"m2": {ID: "m2", OrganizationID: testOrg, TeamID: "t1", Name: "Ben"},
		"m3": {ID: "m3", OrganizationID: testOrg, TeamID: "t1", Name: "Cy"},
	}}
	teamScoped := "t2"
	org := testOrg
	activities := &fakeActivities{activities: map[string]*domain.Activity{
		"a1": {ID: "a1", CategoryID: "c1", Name: "Code review"},
		"a2": {ID: "a2", CategoryID: "c2", Name: "App release", OrganizationID: &org, TeamID: &teamScoped},
		"a3": {ID: "a3", CategoryID: "c2", Name: "Demo", OrganizationID: &org},
	}}
	ratings := &fakeRatings{members: members}
	feedback := &fakeFeedback{}
	reviews := &fakeReviews{reviews: map[string]*domain.Review{}}

	return &fixture{
		repos: &repository.Repositories{
			Team:     teams,
			Member:   members,
			Rating:   ratings,
			Feedback: feedback,
			Activity: activities,
			Review:   reviews,
		},
		teams:      teams,
		members:    members,
		ratings:    ratings,
		feedback:   feedback,
		activities: activities,
		reviews:    reviews,
		cache:      &passthroughCache{},
	}
}

// rate adds ratings for a member in one category at the given time
func (f *fixture) rate(memberID, categoryID string, at time.Time, values ...int) {
	for _, v := range values {
		f.ratings.ratings = append(f.ratings.ratings, domain.RatingDetail{
			Rating:       domain.Rating{MemberID: memberID, Value: v, CreatedAt: at},
			CategoryID:   categoryID,
			CategoryName: "Category " + categoryID,
		})
	}
}
