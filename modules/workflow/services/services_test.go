package services_test

import (
	"io"

	"github.com/sirupsen/logrus"

	appentity "github.com/dbp-hq/governance/modules/directory/domain/entities/application"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/dataset"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/group"
	"github.com/dbp-hq/governance/modules/directory/domain/entities/user"
	dirpersistence "github.com/dbp-hq/governance/modules/directory/infrastructure/persistence"
	"github.com/dbp-hq/governance/modules/workflow/domain/aggregates/request"
	"github.com/dbp-hq/governance/modules/workflow/infrastructure/persistence"
	"github.com/dbp-hq/governance/modules/workflow/services"
	"github.com/dbp-hq/governance/pkg/configuration"
	"github.com/dbp-hq/governance/pkg/eventbus"
)

const (
	analyticsGroupID = int64(10)
	ownerlessGroupID = int64(11)

	customerEventsID = int64(20)
	billingLedgerID  = int64(21)
	auditTrailID     = int64(22)
)

type fixture struct {
	users     *dirpersistence.InmemUserRepository
	groups    *dirpersistence.InmemGroupRepository
	datasets  *dirpersistence.InmemDatasetRepository
	apps      *dirpersistence.InmemApplicationRepository
	repo      *persistence.InmemRequestRepository
	resolver  *services.ChainResolver
	requests  *services.RequestService
	approvals *services.ApprovalService
}

func newFixture() *fixture {
	users := dirpersistence.NewInmemUserRepository()
	users.Add(user.Hydrate(1, "E001", "Aiko Tanaka", "tanaka@example.com", "atanaka"))
	users.Add(user.Hydrate(2, "E002", "Ben Carter", "carter@example.com", ""))
	users.Add(user.Hydrate(3, "E003", "Chandra Rao", "rao@example.com", "crao"))
	users.Add(user.Hydrate(4, "E004", "Matsumoto", "matsumoto@example.com", ""))
	users.Add(user.Hydrate(5, "E005", "Dana Fox", "fox@example.com", ""))

	groups := dirpersistence.NewInmemGroupRepository()
	groups.Add(group.Hydrate(analyticsGroupID, "analytics", "tanaka@example.com", "carter@example.com"), 1, 5)
	groups.Add(group.Hydrate(ownerlessGroupID, "ownerless", "", "carter@example.com"))

	datasets := dirpersistence.NewInmemDatasetRepository()
	datasets.Add(dataset.Hydrate(customerEventsID, "DS-001", "Customer Events"))
	datasets.Add(dataset.Hydrate(billingLedgerID, "DS-002", "Billing Ledger"))
	datasets.Add(dataset.Hydrate(auditTrailID, "DS-003", "Audit Trail"))

	apps := dirpersistence.NewInmemApplicationRepository()
	apps.Add(appentity.Hydrate(30, "APP-001", "Insights Portal", "rao@example.com", "carter@example.com"), customerEventsID)
	apps.Add(appentity.Hydrate(31, "APP-002", "Billing Console", "rao@example.com", ""), billingLedgerID)
	apps.Add(appentity.Hydrate(32, "APP-003", "Legacy Loader", "", ""), customerEventsID)
	apps.Add(appentity.Hydrate(33, "APP-004", "Churn Radar", "fox@example.com", ""), auditTrailID)

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	bus := eventbus.NewEventPublisher(logger)

	dataManager := configuration.DataManagerOptions{Email: "matsumoto@example.com", Name: "Matsumoto"}
	resolver := services.NewChainResolver(groups, datasets, apps, users, dataManager)
	repo := persistence.NewInmemRequestRepository(groups, apps)

	return &fixture{
		users:     users,
		groups:    groups,
		datasets:  datasets,
		apps:      apps,
		repo:      repo,
		resolver:  resolver,
		requests:  services.NewRequestService(repo, users, resolver, bus),
		approvals: services.NewApprovalService(repo, bus),
	}
}

func datasetRequest(requesterEmail string) request.Request {
	return request.New(request.TypeDatasetAccess, requesterEmail).
		WithGroupID(analyticsGroupID).
		WithDatasetIDs([]int64{customerEventsID, billingLedgerID}).
		WithReason("quarterly revenue analysis")
}

// crossAppRequest spans datasets owned by applications with two distinct
// owners, so the app owner tier holds two slots.
func crossAppRequest(requesterEmail string) request.Request {
	return request.New(request.TypeDatasetAccess, requesterEmail).
		WithGroupID(analyticsGroupID).
		WithDatasetIDs([]int64{customerEventsID, auditTrailID}).
		WithReason("funnel and retention analysis")
}
