package directory

import (
	"embed"

	"github.com/dbp-hq/governance/modules/directory/infrastructure/persistence"
	"github.com/dbp-hq/governance/modules/directory/presentation/controllers"
	"github.com/dbp-hq/governance/modules/directory/services"
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
	return "directory"
}

func (m *Module) Register(app application.Application) error {
	app.Migrations().RegisterSchema(&migrationFiles)

	userRepo := persistence.NewUserRepository()
	groupRepo := persistence.NewGroupRepository()
	datasetRepo := persistence.NewDatasetRepository()
	applicationRepo := persistence.NewApplicationRepository()

	app.RegisterServices(
		services.NewUserService(userRepo),
		services.NewGroupService(groupRepo, datasetRepo, userRepo),
		services.NewDatasetService(datasetRepo, applicationRepo),
		services.NewApplicationService(applicationRepo),
		services.NewAuthService(
			userRepo,
			groupRepo,
			applicationRepo,
			configuration.Use().DataManager.Email,
		),
	)

	app.RegisterControllers(
		controllers.NewDirectoryAPIController(app),
		controllers.NewAuthAPIController(app),
	)
	return nil
}
