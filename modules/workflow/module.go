package workflow

import (
	"embed"

	dirpersistence "github.com/dbp-hq/governance/modules/directory/infrastructure/persistence"
	"github.com/dbp-hq/governance/modules/workflow/infrastructure/persistence"
	"github.com/dbp-hq/governance/modules/workflow/presentation/controllers"
	"github.com/dbp-hq/governance/modules/workflow/services"
	"github.com/dbp-hq/governance/pkg/application"
	"github.com/dbp-hq/governance/pkg/configuration"
)

//go:embed infrastructure/persistence/schema/*.sql
var migrationFiles embed.FS

type Module struct{}

func NewModule() application.Module {
	return &Module{}
}

func (m *Module) Name() string {
	return "workflow"
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	requestRepo := persistence.NewRequestRepository()
	userRepo := dirpersistence.NewUserRepository()
	groupRepo := dirpersistence.NewGroupRepository()
	datasetRepo := dirpersistence.NewDatasetRepository()
	applicationRepo := dirpersistence.NewApplicationRepository()

	resolver := services.NewChainResolver(
		groupRepo,
		datasetRepo,
		applicationRepo,
		userRepo,
		configuration.Use().DataManager,
	)

	app.RegisterServices(
		services.NewRequestService(requestRepo, userRepo, resolver, app.EventPublisher()),
		services.NewApprovalService(requestRepo, app.EventPublisher()),
	)

	app.RegisterControllers(
		controllers.NewWorkflowAPIController(app),
	)
	return nil
}
