package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"alumni_connect/internal/common"
	"alumni_connect/internal/domain/model"
	"alumni_connect/internal/domain/repository"
	"alumni_connect/internal/platform/queue"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]model.User
	upserts int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]model.User{}}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return common.ErrConflict
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id, hashed string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.HashedPassword = hashed
	r.users[id] = u
	return nil
}

func (r *fakeUserRepo) Upsert(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	for id, u := range r.users {
		if id != user.ID && u.Email == user.Email {
			return common.ErrConflict
		}
	}
	mirrored := *user
	if existing, ok := r.users[user.ID]; ok {
		mirrored.HashedPassword = existing.HashedPassword
	}
	r.users[user.ID] = mirrored
	return nil
}

func (r *fakeUserRepo) CountByRole(context.Context) (map[model.Role]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := map[model.Role]int{}
	for _, u := range r.users {
		counts[u.Role]++
	}
	return counts, nil
}

type fakeJobRepo struct {
	jobs []model.Job
}

func (r *fakeJobRepo) CreateJob(_ context.Context, job *model.Job) error {
	for _, j := range r.jobs {
		if j.Slug == job.Slug {
			return common.ErrConflict
		}
	}
	job.CreatedAt = time.Now()
	r.jobs = append(r.jobs, *job)
	return nil
}

func (r *fakeJobRepo) FindJobBySlug(_ context.Context, slug string) (*model.Job, error) {
	for _, j := range r.jobs {
		if j.Slug == slug {
			return &j, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeJobRepo) ListJobs(_ context.Context, limit, offset int, filter repository.JobFilter) ([]model.Job, int, error) {
	var matched []model.Job
	for _, j := range r.jobs {
		if filter.Type != "" && j.Type != filter.Type {
			continue
		}
		if filter.SearchTerm != "" && !strings.Contains(strings.ToLower(j.Title), strings.ToLower(filter.SearchTerm)) {
			continue
		}
		matched = append(matched, j)
	}
	total := len(matched)
	if offset >= total {
		return []model.Job{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}

func (r *fakeJobRepo) CountJobs(context.Context) (int, error) { return len(r.jobs), nil }

func (r *fakeJobRepo) CountJobsByPoster(_ context.Context, userID string) (int, error) {
	n := 0
	for _, j := range r.jobs {
		if j.PostedByID != nil && *j.PostedByID == userID {
			n++
		}
	}
	return n, nil
}

type fakeAlumniRepo struct {
	alumni []model.AlumniContact
}

func (r *fakeAlumniRepo) ListAlumni(context.Context, string) ([]model.AlumniContact, error) {
	return r.alumni, nil
}

func (r *fakeAlumniRepo) FindAlumniByID(_ context.Context, id string) (*model.AlumniContact, error) {
	for _, a := range r.alumni {
		if a.ID == id {
			return &a, nil
		}
	}
	return nil, common.ErrNotFound
}

func seededAlumni() *fakeAlumniRepo {
	return &fakeAlumniRepo{alumni: []model.AlumniContact{
		{ID: "al-1", Name: "Shaik Muzna Jawhar", Company: "Servicenow", Availability: model.AlumniAvailable, ReferredJobRole: "ServiceNow Developer Intern"},
		{ID: "al-2", Name: "Venkat Polisetti", Company: "Servicenow", Availability: model.AlumniBusy, ReferredJobRole: "ServiceNow Technical Support Engineer Intern"},
	}}
}

func seededJobs() *fakeJobRepo {
	return &fakeJobRepo{jobs: []model.Job{
		{ID: "j1", Title: "Software Engineer", Slug: "software-engineer-startupxyz", Company: "StartupXYZ", Type: model.JobHybrid, Match: 82},
		{ID: "j2", Title: "Frontend Developer", Slug: "frontend-developer-techcorp-inc", Company: "TechCorp Inc.", Type: model.JobFullTime, Match: 95},
		{ID: "j3", Title: "UI/UX Designer", Slug: "ui-ux-designer-design-studio", Company: "Design Studio", Type: model.JobRemote, Match: 88},
		{ID: "j4", Title: "Data Analyst", Slug: "data-analyst-acme", Company: "Acme", Type: model.JobIntern, Match: 60},
	}}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

func newTestLocker(t *testing.T) *queue.Locker {
	t.Helper()
	_, rdb := newTestRedis(t)
	return queue.NewLocker(rdb, time.Minute)
}

func strPtr(s string) *string { return &s }
