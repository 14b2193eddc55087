package services

import (
	"context"
	"errors"
	"sort"

	appentity "github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/modules/workflow/domain/summary"
	"github.com/dbp-hq/governance/pkg/configuration"
	"github.com/dbp-hq/governance/pkg/serrors"
)

// Entry is one approver slot produced by chain resolution.
type Entry struct {
	Role  request.Role
	Order int
	Email string
	Name  string
}

// Resolution carries the resolved approval chain plus the directory
// material needed to render the request digest.
type Resolution struct {
	Entries      []Entry
	Group        group.Group
	Datasets     []dataset.Dataset
	Applications []appentity.Application
	Members      []user.User
	GroupOwner   summary.Person
	DataManager  summary.Person
	DBPManager   summary.Person
	AppOwners    []summary.AppOwnerLine
}

// ChainResolver derives who must approve a request from the directory.
// The group owner tier is skipped when the group has no registered
// owner. The data manager tier is a fixed identity from configuration.
// Dataset requests add one slot per distinct owner of the applications
// linked to the requested datasets. The DBP manager and application
// business owners are resolved for notification only and never hold an
// approval slot.
type ChainResolver struct {
	groups      group.Repository
	datasets    dataset.Repository
	apps        appentity.Repository
	users       user.Repository
	dataManager configuration.DataManagerOptions
}

func NewChainResolver(
	groups group.Repository,
	datasets dataset.Repository,
	apps appentity.Repository,
	users user.Repository,
	dataManager configuration.DataManagerOptions,
) *ChainResolver {
	return &ChainResolver{
		groups:      groups,
		datasets:    datasets,
		apps:        apps,
		users:       users,
		dataManager: dataManager,
	}
}

func (r *ChainResolver) Resolve(ctx context.Context, req request.Request) (Resolution, error) {
	res := Resolution{
		DataManager: summary.Person{Name: r.dataManager.Name, Email: r.dataManager.Email},
	}

	if req.Type().TargetsExistingGroup() {
		g, err := r.groups.GetByID(ctx, req.GroupID())
		if err != nil {
			if errors.Is(err, group.ErrNotFound) {
				return Resolution{}, serrors.NewNotFoundError("group", "target group not found")
			}
			return Resolution{}, err
		}
		res.Group = g
		res.GroupOwner = r.personByEmail(ctx, g.OwnerEmail())
		res.DBPManager = r.personByEmail(ctx, g.DBPManagerEmail())
	} else {
		ng := req.NewGroup()
		res.GroupOwner = r.personByEmail(ctx, ng.OwnerEmail)
		res.DBPManager = r.personByEmail(ctx, ng.DBPManagerEmail)
	}

	if req.Type().IsDatasetType() {
		if err := r.resolveDatasets(ctx, req, &res); err != nil {
			return Resolution{}, err
		}
	}

	if len(req.MemberIDs()) > 0 {
		members, err := r.users.GetByIDs(ctx, req.MemberIDs())
		if err != nil {
			return Resolution{}, err
		}
		res.Members = members
	}

	res.Entries = r.buildEntries(req.Type(), res)
	return res, nil
}

func (r *ChainResolver) resolveDatasets(ctx context.Context, req request.Request, res *Resolution) error {
	datasets, err := r.datasets.GetByIDs(ctx, req.DatasetIDs())
	if err != nil {
		return err
	}
	if len(datasets) != len(req.DatasetIDs()) {
		return serrors.NewNotFoundError("dataset", "one or more requested datasets not found")
	}
	res.Datasets = datasets

	apps, err := r.apps.ForDatasets(ctx, req.DatasetIDs())
	if err != nil {
		return err
	}
	res.Applications = apps
	res.AppOwners = r.groupAppOwners(ctx, apps)
	return nil
}

// groupAppOwners dedupes application owners by email, collecting the
// names of the applications each owner covers. Applications without a
// registered owner contribute no slot.
func (r *ChainResolver) groupAppOwners(ctx context.Context, apps []appentity.Application) []summary.AppOwnerLine {
	byEmail := make(map[string]*summary.AppOwnerLine)
	emails := make([]string, 0, len(apps))
	for _, a := range apps {
		if !a.HasOwner() {
			continue
		}
		line, ok := byEmail[a.OwnerEmail()]
		if !ok {
			p := r.personByEmail(ctx, a.OwnerEmail())
			line = &summary.AppOwnerLine{Owner: p}
			byEmail[a.OwnerEmail()] = line
			emails = append(emails, a.OwnerEmail())
		}
		line.AppNames = append(line.AppNames, a.Name())
	}
	sort.Strings(emails)
	out := make([]summary.AppOwnerLine, 0, len(emails))
	for _, email := range emails {
		out = append(out, *byEmail[email])
	}
	return out
}

func (r *ChainResolver) buildEntries(typ request.Type, res Resolution) []Entry {
	entries := make([]Entry, 0, 2+len(res.AppOwners))
	if res.GroupOwner.Email != "" {
		entries = append(entries, Entry{
			Role:  request.RoleGroupOwner,
			Order: request.RoleRank(typ, request.RoleGroupOwner),
			Email: res.GroupOwner.Email,
			Name:  res.GroupOwner.Name,
		})
	}
	entries = append(entries, Entry{
		Role:  request.RoleDataManager,
		Order: request.RoleRank(typ, request.RoleDataManager),
		Email: r.dataManager.Email,
		Name:  r.dataManager.Name,
	})
	if typ.IsDatasetType() {
		for _, line := range res.AppOwners {
			entries = append(entries, Entry{
				Role:  request.RoleAppOwner,
				Order: request.RoleRank(typ, request.RoleAppOwner),
				Email: line.Owner.Email,
				Name:  line.Owner.Name,
			})
		}
	}
	return entries
}

// personByEmail enriches an email with the directory display name when
// the user is registered. Unknown emails still render as bare addresses.
func (r *ChainResolver) personByEmail(ctx context.Context, email string) summary.Person {
	if email == "" {
		return summary.Person{}
	}
	u, err := r.users.GetByEmail(ctx, email)
	if err != nil {
		return summary.Person{Email: email}
	}
	return summary.Person{Name: u.Name(), Email: email}
}
