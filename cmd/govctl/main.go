package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dbp-hq/governance/modules"
	"github.com/dbp-hq/governance/pkg/application"
	"github.com/dbp-hq/governance/pkg/configuration"
	"github.com/dbp-hq/governance/pkg/eventbus"
)

func main() {
	root := &cobra.Command{
		Use:          "govctl",
		Short:        "Operational tooling for the governance service",
		SilenceUsage: true,
	}
	root.AddCommand(migrateCmd(), seedCmd())
	if err := root.Execute(); err != nil {
		log.Fatal(err)
	}
}

func buildApp(ctx context.Context) (application.Application, *pgxpool.Pool, error) {
	conf := configuration.Use()
	pool, err := pgxpool.New(ctx, conf.Database.ConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("connect to database: %w", err)
	}
	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(conf.Logger()),
		Logger:   conf.Logger(),
	})
	if err := modules.Load(app, modules.BuiltInModules...); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("load modules: %w", err)
	}
	return app, pool, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply all pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
			defer cancel()
			app, pool, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := app.Migrations().Apply(ctx); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}
			cmd.Println("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load a small demo directory for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			app, pool, err := buildApp(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := app.Migrations().Apply(ctx); err != nil {
				return fmt.Errorf("apply migrations: %w", err)
			}

			seeder := application.NewSeeder(configuration.Use().Logger())
			seeder.Register(seedDirectory)
			if err := seeder.Seed(ctx, app); err != nil {
				return fmt.Errorf("seed: %w", err)
			}
			cmd.Println("demo directory loaded")
			return nil
		},
	}
}

func seedDirectory(ctx context.Context, app application.Application) error {
	statements := []string{
		`INSERT INTO users (employee_code, user_name, email, platform_username) VALUES
			('E001', 'Aiko Tanaka', 'tanaka@example.com', 'atanaka'),
			('E002', 'Ben Carter', 'carter@example.com', 'bcarter'),
			('E003', 'Chandra Rao', 'rao@example.com', 'crao'),
			('E004', 'Matsumoto', 'matsumoto@example.com', 'matsumoto')
		ON CONFLICT (email) DO NOTHING`,
		`INSERT INTO groups (group_name, owner_email, dbp_manager_email)
			SELECT 'analytics', 'tanaka@example.com', 'carter@example.com'
			WHERE NOT EXISTS (SELECT 1 FROM groups WHERE group_name = 'analytics')`,
		`INSERT INTO datasets (dataset_code, dataset_name) VALUES
			('DS-001', 'Customer Events'),
			('DS-002', 'Billing Ledger')
		ON CONFLICT (dataset_code) DO NOTHING`,
		`INSERT INTO applications (application_code, application_name, owner_email, business_owner_email) VALUES
			('APP-001', 'Insights Portal', 'rao@example.com', 'carter@example.com')
		ON CONFLICT (application_code) DO NOTHING`,
		`INSERT INTO application_datasets (application_id, dataset_id)
			SELECT a.id, d.id FROM applications a, datasets d
			WHERE a.application_code = 'APP-001' AND d.dataset_code = 'DS-001'
		ON CONFLICT DO NOTHING`,
		`INSERT INTO group_members (group_id, user_id)
			SELECT g.id, u.id FROM groups g, users u
			WHERE g.group_name = 'analytics' AND u.email = 'tanaka@example.com'
		ON CONFLICT DO NOTHING`,
	}
	for _, stmt := range statements {
		if _, err := app.DB().Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
