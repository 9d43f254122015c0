package strategy

import (
	"context"
	"errors"
	"time"

	"tradepilot/internal/dto"
	"tradepilot/internal/model"
	"tradepilot/pkg/utils"

	"github.com/google/uuid"
)

type fakeUsageRepo struct {
	deletedBefore time.Time
	deleted       int64
	err           error
}

func (f *fakeUsageRepo) GetCount(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) (int, error) {
	return 0, nil
}

func (f *fakeUsageRepo) Increment(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeUsageRepo) IncrementIfBelow(ctx context.Context, orgID uuid.UUID, day time.Time, limit int, opts ...utils.DBOption) (int, bool, error) {
	return 0, true, nil
}

func (f *fakeUsageRepo) Decrement(ctx context.Context, orgID uuid.UUID, day time.Time, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeUsageRepo) SumBetween(ctx context.Context, orgID uuid.UUID, from, to time.Time, opts ...utils.DBOption) (int, error) {
	return 0, nil
}

func (f *fakeUsageRepo) DeleteOlderThan(ctx context.Context, day time.Time, opts ...utils.DBOption) (int64, error) {
	f.deletedBefore = day
	return f.deleted, f.err
}

type fakeJobRepo struct {
	deletedBefore time.Time
	deleted       int64
	err           error
}

func (f *fakeJobRepo) FindDueSchedules(ctx context.Context, now time.Time, opts ...utils.DBOption) ([]model.TaskSchedule, error) {
	return nil, nil
}

func (f *fakeJobRepo) Get(ctx context.Context, param *model.GetJobParam, opts ...utils.DBOption) ([]model.Job, error) {
	return nil, nil
}

func (f *fakeJobRepo) UpdateTaskSchedule(ctx context.Context, schedule *model.TaskSchedule, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeJobRepo) CreateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeJobRepo) UpdateTaskExecutionHistory(ctx context.Context, history *model.TaskExecutionHistory, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeJobRepo) DeleteTaskHistoryOlderThan(ctx context.Context, date time.Time, opts ...utils.DBOption) (int64, error) {
	f.deletedBefore = date
	return f.deleted, f.err
}

type fakeDealRepo struct {
	open      []model.Deal
	updated   []model.Deal
	updateErr error
}

func (f *fakeDealRepo) Create(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error {
	return nil
}

func (f *fakeDealRepo) GetByID(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) (*model.Deal, error) {
	return nil, nil
}

func (f *fakeDealRepo) Get(ctx context.Context, param model.GetDealParam, opts ...utils.DBOption) ([]model.Deal, error) {
	return nil, nil
}

func (f *fakeDealRepo) GetOpenWithSource(ctx context.Context, limit int, opts ...utils.DBOption) ([]model.Deal, error) {
	if len(f.open) > limit {
		return f.open[:limit], nil
	}
	return f.open, nil
}

func (f *fakeDealRepo) Update(ctx context.Context, deal *model.Deal, opts ...utils.DBOption) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updated = append(f.updated, *deal)
	return nil
}

func (f *fakeDealRepo) Delete(ctx context.Context, orgID, id uuid.UUID, opts ...utils.DBOption) error {
	return errors.New("not implemented")
}

type fakeScraper struct {
	result      dto.ScrapeBatchResult
	urls        []string
	concurrency int
}

func (f *fakeScraper) ScrapeBatch(ctx context.Context, urls []string, concurrency int, progress dto.ProgressFunc) dto.ScrapeBatchResult {
	f.urls = urls
	f.concurrency = concurrency
	if progress != nil {
		progress(len(urls), len(urls))
	}
	return f.result
}
