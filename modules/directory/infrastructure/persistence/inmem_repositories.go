package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
)

// In-memory repository twins used by service tests and local seeding.

type InmemUserRepository struct {
	mu    sync.RWMutex
	users map[int64]user.User
}

func NewInmemUserRepository() *InmemUserRepository {
	return &InmemUserRepository{users: make(map[int64]user.User)}
}

func (r *InmemUserRepository) Add(u user.User) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID()] = u
}

func (r *InmemUserRepository) GetAll(_ context.Context) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]user.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *InmemUserRepository) GetByID(_ context.Context, id int64) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

func (r *InmemUserRepository) GetByIDs(_ context.Context, ids []int64) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []user.User
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *InmemUserRepository) GetByEmail(_ context.Context, email string) (user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email() == email {
			return u, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (r *InmemUserRepository) GetByEmails(_ context.Context, emails []string) ([]user.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	wanted := make(map[string]bool, len(emails))
	for _, e := range emails {
		wanted[e] = true
	}
	var out []user.User
	for _, u := range r.users {
		if wanted[u.Email()] {
			out = append(out, u)
		}
	}
	return out, nil
}

type InmemGroupRepository struct {
	mu      sync.RWMutex
	groups  map[int64]group.Group
	members map[int64][]int64
}

func NewInmemGroupRepository() *InmemGroupRepository {
	return &InmemGroupRepository{
		groups:  make(map[int64]group.Group),
		members: make(map[int64][]int64),
	}
}

func (r *InmemGroupRepository) Add(g group.Group, memberIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups[g.ID()] = g
	r.members[g.ID()] = append([]int64(nil), memberIDs...)
}

func (r *InmemGroupRepository) GetAll(_ context.Context) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]group.Group, 0, len(r.groups))
	for _, g := range r.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *InmemGroupRepository) GetByID(_ context.Context, id int64) (group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return group.Group{}, group.ErrNotFound
	}
	return g, nil
}

func (r *InmemGroupRepository) GetForUser(_ context.Context, userID int64) ([]group.Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []group.Group
	for groupID, members := range r.members {
		for _, id := range members {
			if id == userID {
				out = append(out, r.groups[groupID])
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out, nil
}

func (r *InmemGroupRepository) MemberIDs(_ context.Context, groupID int64) ([]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]int64(nil), r.members[groupID]...), nil
}

func (r *InmemGroupRepository) IsOwnerOrManager(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, g := range r.groups {
		if g.OwnerEmail() == email || g.DBPManagerEmail() == email {
			return true, nil
		}
	}
	return false, nil
}

type InmemDatasetRepository struct {
	mu       sync.RWMutex
	datasets map[int64]dataset.Dataset
	byGroup  map[int64][]int64
}

func NewInmemDatasetRepository() *InmemDatasetRepository {
	return &InmemDatasetRepository{
		datasets: make(map[int64]dataset.Dataset),
		byGroup:  make(map[int64][]int64),
	}
}

func (r *InmemDatasetRepository) Add(d dataset.Dataset) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.datasets[d.ID()] = d
}

func (r *InmemDatasetRepository) LinkGroup(groupID, datasetID int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byGroup[groupID] = append(r.byGroup[groupID], datasetID)
}

func (r *InmemDatasetRepository) GetAll(_ context.Context) ([]dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]dataset.Dataset, 0, len(r.datasets))
	for _, d := range r.datasets {
		out = append(out, d)
	}
	sortDatasets(out)
	return out, nil
}

func (r *InmemDatasetRepository) GetByID(_ context.Context, id int64) (dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.datasets[id]
	if !ok {
		return dataset.Dataset{}, dataset.ErrNotFound
	}
	return d, nil
}

func (r *InmemDatasetRepository) GetByIDs(_ context.Context, ids []int64) ([]dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []dataset.Dataset
	for _, id := range ids {
		if d, ok := r.datasets[id]; ok {
			out = append(out, d)
		}
	}
	sortDatasets(out)
	return out, nil
}

func (r *InmemDatasetRepository) AccessibleByGroup(_ context.Context, groupID int64) ([]dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []dataset.Dataset
	for _, id := range r.byGroup[groupID] {
		if d, ok := r.datasets[id]; ok {
			out = append(out, d)
		}
	}
	sortDatasets(out)
	return out, nil
}

func (r *InmemDatasetRepository) AvailableForGroup(_ context.Context, groupID int64) ([]dataset.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	linked := make(map[int64]bool)
	for _, id := range r.byGroup[groupID] {
		linked[id] = true
	}
	var out []dataset.Dataset
	for id, d := range r.datasets {
		if !linked[id] {
			out = append(out, d)
		}
	}
	sortDatasets(out)
	return out, nil
}

func sortDatasets(ds []dataset.Dataset) {
	sort.Slice(ds, func(i, j int) bool { return ds[i].Name() < ds[j].Name() })
}

type InmemApplicationRepository struct {
	mu        sync.RWMutex
	apps      map[int64]application.Application
	byDataset map[int64][]int64
}

func NewInmemApplicationRepository() *InmemApplicationRepository {
	return &InmemApplicationRepository{
		apps:      make(map[int64]application.Application),
		byDataset: make(map[int64][]int64),
	}
}

func (r *InmemApplicationRepository) Add(a application.Application, datasetIDs ...int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.apps[a.ID()] = a
	for _, id := range datasetIDs {
		r.byDataset[id] = append(r.byDataset[id], a.ID())
	}
}

func (r *InmemApplicationRepository) GetAll(_ context.Context) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]application.Application, 0, len(r.apps))
	for _, a := range r.apps {
		out = append(out, a)
	}
	sortApplications(out)
	return out, nil
}

func (r *InmemApplicationRepository) GetByID(_ context.Context, id int64) (application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.apps[id]
	if !ok {
		return application.Application{}, application.ErrNotFound
	}
	return a, nil
}

func (r *InmemApplicationRepository) ForDatasets(_ context.Context, datasetIDs []int64) ([]application.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[int64]bool)
	var out []application.Application
	for _, datasetID := range datasetIDs {
		for _, appID := range r.byDataset[datasetID] {
			if seen[appID] {
				continue
			}
			seen[appID] = true
			out = append(out, r.apps[appID])
		}
	}
	sortApplications(out)
	return out, nil
}

func (r *InmemApplicationRepository) IsOwner(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, a := range r.apps {
		if a.OwnerEmail() == email {
			return true, nil
		}
	}
	return false, nil
}

func sortApplications(apps []application.Application) {
	sort.Slice(apps, func(i, j int) bool { return apps[i].Name() < apps[j].Name() })
}
