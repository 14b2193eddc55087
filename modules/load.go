package modules

import (
	"github.com/dbp-hq/governance/modules/directory"
	"github.com/dbp-hq/governance/modules/workflow"
	"github.com/dbp-hq/governance/pkg/application"
)

var BuiltInModules = []application.Module{
	directory.NewModule(),
	workflow.NewModule(),
}

func Load(app application.Application, externalModules ...application.Module) error {
	for _, module := range externalModules {
		if err := module.Register(app); err != nil {
			return err
		}
	}
	return nil
}
