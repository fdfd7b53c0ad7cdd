package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"teamperf/internal/domain"
	"teamperf/internal/performance"
	"teamperf/internal/service"
	apperrors "teamperf/pkg/errors"
	"teamperf/pkg/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const (
	orgID    = "0b0c3d1e-0000-4000-8000-000000000001"
	teamID   = "0b0c3d1e-0000-4000-8000-0000000000a1"
	memberID = "0b0c3d1e-0000-4000-8000-0000000000b1"
	reviewID = "0b0c3d1e-0000-4000-8000-0000000000c1"
)

type fakeAuth struct{}

func (fakeAuth) Authenticate(_ context.Context, token string) (*domain.User, error) {
	org := orgID
	switch token {
	case "member":
		return &domain.User{ID: "u1", Email: "ana@example.com", OrganizationID: &org, Role: domain.RoleOwner}, nil
	case "newcomer":
		return &domain.User{ID: "u2", Email: "ben@example.com"}, nil
	}
	return nil, apperrors.NewAuthenticationError("Invalid or expired token")
}

type fakeOrganizations struct {
	got *domain.CreateOrganizationRequest
}

func (f *fakeOrganizations) Create(_ context.Context, owner *domain.User, req *domain.CreateOrganizationRequest) (*domain.OrganizationBootstrap, error) {
	f.got = req
	id := orgID
	owner.OrganizationID = &id
	return &domain.OrganizationBootstrap{
		Organization: &domain.Organization{ID: orgID, Name: req.Name, Slug: "acme"},
		Team:         &domain.Team{ID: teamID, Name: "General"},
		Owner:        owner,
	}, nil
}

type fakeTeams struct {
	service.TeamService
	created *domain.CreateTeamRequest
}

func (f *fakeTeams) List(context.Context, string) ([]domain.Team, error) {
	return []domain.Team{{ID: teamID, OrganizationID: orgID, Name: "Platform"}}, nil
}

func (f *fakeTeams) Get(_ context.Context, _ string, id string) (*domain.Team, error) {
	if id != teamID {
		return nil, apperrors.NewNotFoundError("Team not found")
	}
	return &domain.Team{ID: teamID, Name: "Platform"}, nil
}

func (f *fakeTeams) Create(_ context.Context, org string, req *domain.CreateTeamRequest) (*domain.Team, []domain.Member, error) {
	f.created = req
	members := make([]domain.Member, len(req.Members))
	for i, m := range req.Members {
		members[i] = domain.Member{ID: memberID, TeamID: teamID, OrganizationID: org, Name: m.Name}
	}
	return &domain.Team{ID: teamID, OrganizationID: org, Name: req.Name, MemberCount: len(members)}, members, nil
}

type fakeMembers struct {
	service.MemberService
	hardDeleted []string
}

func (f *fakeMembers) Get(_ context.Context, _ string, id string) (*domain.Member, error) {
	if id != memberID {
		return nil, fmtNotFound()
	}
	return &domain.Member{ID: memberID, TeamID: teamID, Name: "Ana"}, nil
}

func (f *fakeMembers) HardDelete(_ context.Context, _ string, id string) error {
	f.hardDeleted = append(f.hardDeleted, id)
	return nil
}

// fmtNotFound is a repository-style sentinel that reaches the handler unwrapped by the service
func fmtNotFound() error {
	return errors.Join(errors.New("select member"), domain.ErrNotFound)
}

type fakeRatings struct {
	service.RatingService
	period *domain.Period
}

func (f *fakeRatings) Record(_ context.Context, _ string, raterID string, req *domain.CreateRatingRequest) (*domain.Rating, error) {
	return &domain.Rating{ID: "r1", MemberID: req.MemberID, ActivityID: req.ActivityID, Value: req.Value, RaterID: &raterID}, nil
}

func (f *fakeRatings) ListByMember(_ context.Context, _, _ string, period *domain.Period) ([]domain.RatingDetail, error) {
	f.period = period
	return []domain.RatingDetail{}, nil
}

type fakeDashboards struct {
	service.DashboardService
	prev performance.Previous
	err  error
}

func (f *fakeDashboards) Organization(_ context.Context, _ string, prev performance.Previous) (*performance.Dashboard, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.prev = prev
	d := &performance.Dashboard{Summary: performance.Summary{TotalMembers: 3, RatedMembers: 2, TotalRatings: 10, AverageRating: 4}}
	performance.ApplyTrends(d, prev)
	return d, nil
}

type fakeReviews struct {
	service.ReviewService
	generateErr error
	deleteErr   error
}

func (f *fakeReviews) Generate(_ context.Context, _ string, _ *domain.User, member string, req *domain.GenerateReviewRequest) (*domain.Review, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return &domain.Review{ID: reviewID, MemberID: member, PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd, Version: 1, Status: domain.ReviewDraft}, nil
}

func (f *fakeReviews) Publish(_ context.Context, _ string, id string) (*domain.Review, error) {
	return &domain.Review{ID: id, Status: domain.ReviewPublished}, nil
}

func (f *fakeReviews) Delete(context.Context, string, string) error {
	return f.deleteErr
}

type fakeWebhooks struct {
	headers http.Header
	body    []byte
	ip      string
	err     error
}

func (f *fakeWebhooks) Handle(_ context.Context, headers http.Header, body []byte, ip string) (*service.WebhookResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.headers, f.body, f.ip = headers, body, ip
	return &service.WebhookResult{EventID: headers.Get("svix-id"), EventType: "user.created", Outcome: "applied"}, nil
}

type stubCheck struct{ err error }

func (s stubCheck) Health(context.Context) error { return s.err }

type harness struct {
	router        http.Handler
	organizations *fakeOrganizations
	teams         *fakeTeams
	members       *fakeMembers
	ratings       *fakeRatings
	dashboards    *fakeDashboards
	reviews       *fakeReviews
	webhooks      *fakeWebhooks
}

func newHarness(t *testing.T, environment string, checks map[string]HealthChecker) *harness {
	t.Helper()
	h := &harness{
		organizations: &fakeOrganizations{},
		teams:         &fakeTeams{},
		members:       &fakeMembers{},
		ratings:       &fakeRatings{},
		dashboards:    &fakeDashboards{},
		reviews:       &fakeReviews{},
		webhooks:      &fakeWebhooks{},
	}
	h.router = NewRouter(RouterConfig{
		Services: &service.Services{
			Auth:         fakeAuth{},
			Organization: h.organizations,
			Team:         h.teams,
			Member:       h.members,
			Rating:       h.ratings,
			Dashboard:    h.dashboards,
			Review:       h.reviews,
			Webhook:      h.webhooks,
		},
		Logger:       logger.NewNop(),
		Environment:  environment,
		Version:      "test",
		HealthChecks: checks,
	})
	return h
}

// do sends a request as the given token holder ("" for anonymous)
func (h *harness) do(t *testing.T, method, path, token string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	switch b := body.(type) {
	case nil:
	case string:
		buf.WriteString(b)
	default:
		require.NoError(t, json.NewEncoder(&buf).Encode(b))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func readEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}
