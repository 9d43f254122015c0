package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/llm"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
)

var errBoom = errors.New("boom")

type fakeOrgRepo struct {
	mu      sync.Mutex
	orgs    map[uuid.UUID]*model.Organization
	lookups int
}

func newFakeOrgRepo(orgs ...*model.Organization) *fakeOrgRepo {
	f := &fakeOrgRepo{orgs: map[uuid.UUID]*model.Organization{}}
	for _, o := range orgs {
		f.orgs[o.ID] = o
	}
	return f
}

func (f *fakeOrgRepo) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.Organization, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.orgs[id], nil
}

func (f *fakeOrgRepo) Create(ctx context.Context, org *model.Organization, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if org.ID == uuid.Nil {
		org.ID = uuid.New()
	}
	f.orgs[org.ID] = org
	return nil
}

func (f *fakeOrgRepo) UpdatePlan(ctx context.Context, id uuid.UUID, plan model.Plan, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	org, ok := f.orgs[id]
	if !ok {
		return errBoom
	}
	org.Plan = plan
	return nil
}

type usageKey struct {
	org uuid.UUID
	day time.Time
}

type fakeUsageRepo struct {
	mu        sync.Mutex
	counts    map[usageKey]int
	incrErr   error
	sumResult int
	// countErr is returned once countReads successful reads have happened.
	countErr   error
	countReads int
}

func newFakeUsageRepo() *fakeUsageRepo {
	return &fakeUsageRepo{counts: map[usageKey]int{}}
}

func (f *fakeUsageRepo) set(orgID uuid.UUID, day time.Time, n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[usageKey{orgID, utils.DayKey(day)}] = n
}

func (f *fakeUsageRepo) count(orgID uuid.UUID, day time.Time) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[usageKey{orgID, utils.DayKey(day)}]
}

func (f *fakeUsageRepo) GetCount(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) (int, error) {
	f.mu.Lock()
	if f.countErr != nil && f.countReads <= 0 {
		f.mu.Unlock()
		return 0, f.countErr
	}
	f.countReads--
	f.mu.Unlock()
	return f.count(orgID, day), nil
}

func (f *fakeUsageRepo) Increment(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error {
	if f.incrErr != nil {
		return f.incrErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counts[usageKey{orgID, utils.DayKey(day)}]++
	return nil
}

func (f *fakeUsageRepo) IncrementIfBelow(ctx context.Context, orgID uuid.UUID, day time.Time, limit int, opts ...utils.DBOption) (int, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := usageKey{orgID, utils.DayKey(day)}
	if f.counts[key] >= limit {
		return f.counts[key], false, nil
	}
	f.counts[key]++
	return f.counts[key], true, nil
}

func (f *fakeUsageRepo) Decrement(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := usageKey{orgID, utils.DayKey(day)}
	if f.counts[key] > 0 {
		f.counts[key]--
	}
	return nil
}

func (f *fakeUsageRepo) SumBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time, opts ...utils.DBOption) (int, error) {
	return f.sumResult, nil
}

func (f *fakeUsageRepo) DeleteOlderThan(ctx context.Context, day time.Time, opts ...utils.DBOption) (int64, error) {
	return 0, nil
}

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[uuid.UUID]*model.User
	created []*model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	f := &fakeUserRepo{users: map[uuid.UUID]*model.User{}}
	for _, u := range users {
		f.users[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID, opts ...utils.DBOption) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.users[id], nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string, opts ...utils.DBOption) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) Get(ctx context.Context, param model.GetUserParam, opts ...utils.DBOption) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.users {
		if param.Status != nil && u.Status != *param.Status {
			continue
		}
		out = append(out, *u)
	}
	return out, nil
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.users[user.ID] = user
	f.created = append(f.created, user)
	return nil
}

func (f *fakeUserRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, decidedBy string, decidedAt time.Time, opts ...utils.DBOption) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return errBoom
	}
	u.Status = status
	return nil
}

type fakeUnitOfWork struct {
	runs int
}

func (f *fakeUnitOfWork) Run(ctx context.Context, fn func(opts ...utils.DBOption) error) error {
	f.runs++
	return fn()
}

type fakeVehicleRepo struct {
	created []*model.Vehicle
}

func (f *fakeVehicleRepo) Create(ctx context.Context, vehicle *model.Vehicle, opts ...utils.DBOption) error {
	if vehicle.ID == uuid.Nil {
		vehicle.ID = uuid.New()
	}
	f.created = append(f.created, vehicle)
	return nil
}

func (f *fakeVehicleRepo) GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Vehicle, error) {
	for _, v := range f.created {
		if v.ID == id && v.OrganizationID == orgID {
			return v, nil
		}
	}
	return nil, nil
}

type fakeDealRepo struct {
	deals   map[uuid.UUID]*model.Deal
	list    []model.Deal
	updated int
	param   model.GetDealParam
}

func newFakeDealRepo(deals ...*model.Deal) *fakeDealRepo {
	f := &fakeDealRepo{deals: map[uuid.UUID]*model.Deal{}}
	for _, d := range deals {
		f.deals[d.ID] = d
	}
	return f
}

func (f *fakeDealRepo) Create(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error {
	if deal.ID == uuid.Nil {
		deal.ID = uuid.New()
	}
	f.deals[deal.ID] = deal
	return nil
}

func (f *fakeDealRepo) GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Deal, error) {
	d, ok := f.deals[id]
	if !ok || d.OrganizationID != orgID {
		return nil, nil
	}
	return d, nil
}

func (f *fakeDealRepo) Get(ctx context.Context, param model.GetDealParam, opts ...utils.DBOption) ([]model.Deal, error) {
	f.param = param
	return f.list, nil
}

func (f *fakeDealRepo) GetOpenWithSource(ctx context.Context, limit int, opts ...utils.DBOption) ([]model.Deal, error) {
	return nil, nil
}

func (f *fakeDealRepo) Update(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error {
	f.updated++
	f.deals[deal.ID] = deal
	return nil
}

func (f *fakeDealRepo) Delete(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) error {
	delete(f.deals, id)
	return nil
}

type fakeInsightRepo struct {
	created []*model.AIInsight
}

func (f *fakeInsightRepo) Create(ctx context.Context, insight *model.AIInsight, opts ...utils.DBOption) error {
	f.created = append(f.created, insight)
	return nil
}

func (f *fakeInsightRepo) ListByDeal(ctx context.Context, dealID uuid.UUID, insightType *model.InsightType, opts ...utils.DBOption) ([]model.AIInsight, error) {
	var out []model.AIInsight
	for _, i := range f.created {
		if i.DealID == dealID {
			out = append(out, *i)
		}
	}
	return out, nil
}

type fakePreferenceRepo struct {
	prefs map[uuid.UUID]*model.AIPreference
}

func newFakePreferenceRepo() *fakePreferenceRepo {
	return &fakePreferenceRepo{prefs: map[uuid.UUID]*model.AIPreference{}}
}

func (f *fakePreferenceRepo) GetByUserID(ctx context.Context, userID uuid.UUID, opts ...utils.DBOption) (*model.AIPreference, error) {
	return f.prefs[userID], nil
}

func (f *fakePreferenceRepo) Upsert(ctx context.Context, pref *model.AIPreference, opts ...utils.DBOption) error {
	f.prefs[pref.UserID] = pref
	return nil
}

// fakeAIRepo fails every call with llm.ErrNotConfigured unless a result is set.
type fakeAIRepo struct {
	valuation *dto.ValuationResult
	research  *dto.MarketResearch
	analysis  *dto.ListingAnalysis
	summary   string
	message   string

	lastMessage dto.MessageTemplateInput
}

func (f *fakeAIRepo) EstimateValuation(ctx context.Context, input dto.ValuationInput) (*dto.ValuationResult, error) {
	if f.valuation == nil {
		return nil, llm.ErrNotConfigured
	}
	v := *f.valuation
	return &v, nil
}

func (f *fakeAIRepo) ResearchMarket(ctx context.Context, input dto.MarketResearchInput) (*dto.MarketResearch, error) {
	if f.research == nil {
		return nil, llm.ErrNotConfigured
	}
	r := *f.research
	r.ComparableListings = append([]dto.ComparableListing(nil), f.research.ComparableListings...)
	return &r, nil
}

func (f *fakeAIRepo) AnalyzeListings(ctx context.Context, input dto.ListingAnalysisInput) (*dto.ListingAnalysis, error) {
	if f.analysis == nil {
		return nil, llm.ErrNotConfigured
	}
	return f.analysis, nil
}

func (f *fakeAIRepo) SummarizeDeal(ctx context.Context, input dto.DealSummaryInput) (string, error) {
	if f.summary == "" {
		return "", llm.ErrNotConfigured
	}
	return f.summary, nil
}

func (f *fakeAIRepo) DraftMessage(ctx context.Context, input dto.MessageTemplateInput) (string, error) {
	f.lastMessage = input
	if f.message == "" {
		return "", llm.ErrNotConfigured
	}
	return f.message, nil
}

func (f *fakeAIRepo) Model() string {
	return "test-model"
}

type fakeBatchScraper struct {
	result dto.ScrapeBatchResult
	urls   []string
}

func (f *fakeBatchScraper) ScrapeBatch(ctx context.Context, urls []string, concurrency int, progress dto.ProgressFunc) dto.ScrapeBatchResult {
	f.urls = urls
	if progress != nil {
		progress(len(urls), len(urls))
	}
	return f.result
}

type fakeDiscoverer struct {
	found []dto.DiscoveredURL
	calls int
}

func (f *fakeDiscoverer) Discover(ctx context.Context, year int, vehicleMake, vehicleModel string, max int) []dto.DiscoveredURL {
	f.calls++
	if len(f.found) > max {
		return f.found[:max]
	}
	return f.found
}

type fakeNotifier struct {
	messages []string
	err      error
}

func (f *fakeNotifier) NotifyAdmin(ctx context.Context, message string) error {
	f.messages = append(f.messages, message)
	return f.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
