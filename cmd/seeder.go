package cmd

import (
	"fmt"

	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the store with the sample employees",
	Long: `Seed the store with the three sample employees. Without --clear an
existing list is left untouched; with --clear it is replaced.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		useConsoleLogging()
		ctx := cmd.Context()

		cfg, err := loadConfig(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		core, err := buildCore(ctx, cfg)
		if err != nil {
			return err
		}
		defer core.Close()

		var employees []employee.Employee
		if clearData {
			employees, err = core.Employees.Reset(ctx)
		} else {
			employees, err = core.Employees.LoadAll(ctx)
		}
		if err != nil {
			return fmt.Errorf("failed to seed employees: %w", err)
		}

		for _, e := range employees {
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.EmployeeCode, e.Name)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d employees in %s store\n", len(employees), cfg.Storage.Driver)
		return nil
	},
}
