package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/app"
	employeeDatamodel "github.com/frahmantamala/employee-management/internal/core/datamodel/employee"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/query"
	"github.com/frahmantamala/employee-management/internal/session"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var (
	loginUsername string
	loginPassword string
	loginRemember bool

	listSearch    string
	listSort      string
	listDirection string
	outputJSON    bool
	assumeYes     bool

	formInput employee.FormData
	formSalary float64
)

// useConsoleLogging keeps stdout for command results.
func useConsoleLogging() {
	logOutput = os.Stderr
}

// withCore loads the config, builds the application and restores any
// remembered session before running fn.
func withCore(cmd *cobra.Command, fn func(ctx context.Context, core *Core) error) error {
	useConsoleLogging()
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	core, err := buildCore(ctx, cfg)
	if err != nil {
		return err
	}
	defer core.Close()

	if _, err := core.Controller.Start(ctx); err != nil {
		return err
	}
	return consoleError(fn(ctx, core))
}

func consoleError(err error) error {
	if errors.Is(err, internal.ErrUnauthenticated) {
		return errors.New("not logged in; run `employee-management login` first")
	}
	return err
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and remember the session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			username := loginUsername
			if username == "" {
				username = core.Controller.RememberedUsername(ctx)
			}
			if username == "" {
				return errors.New("--username is required")
			}

			password := loginPassword
			if password == "" {
				var err error
				if password, err = prompt(cmd, "Password: "); err != nil {
					return err
				}
			}

			notice, err := core.Controller.Login(ctx, username, password, loginRemember)
			if err != nil {
				if notice.Title != "" {
					return errors.New(notice.String())
				}
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notice)
			return nil
		})
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "End the remembered session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			notice, err := core.Controller.Logout(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notice)
			return nil
		})
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			s, ok := core.Controller.Session()
			if !ok {
				if remembered := core.Controller.RememberedUsername(ctx); remembered != "" {
					fmt.Fprintf(cmd.OutOrStdout(), "not logged in (last user: %s)\n", remembered)
					return nil
				}
				fmt.Fprintln(cmd.OutOrStdout(), "not logged in")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", s.Name, s.Username)
			return nil
		})
	},
}

var employeesCmd = &cobra.Command{
	Use:     "employees",
	Aliases: []string{"emp"},
	Short:   "Manage employee records",
}

var employeesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List employees, optionally sorted and filtered",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			rows, err := core.Controller.Rows()
			if err != nil {
				return err
			}
			if listSort != "" {
				field, err := query.ParseField(listSort)
				if err != nil {
					return err
				}
				dir, err := query.ParseDirection(listDirection)
				if err != nil {
					return err
				}
				if rows, err = core.Controller.SortBy(field, dir); err != nil {
					return err
				}
			}
			if listSearch != "" {
				if rows, err = core.Controller.Search(listSearch); err != nil {
					return err
				}
			}
			return printEmployees(cmd.OutOrStdout(), rows)
		})
	},
}

var employeesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			e, err := core.Controller.Get(ctx, args[0])
			if err != nil {
				return err
			}
			return printEmployee(cmd.OutOrStdout(), e)
		})
	},
}

var employeesAddCmd = &cobra.Command{
	Use:     "add",
	Short:   "Add an employee",
	PreRunE: checkFormChoices,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			form, err := core.Controller.BeginAdd(ctx)
			if err != nil {
				return err
			}
			mergeFormFlags(cmd.Flags(), &form)
			return saveForm(ctx, cmd, core.Controller, form)
		})
	},
}

var employeesEditCmd = &cobra.Command{
	Use:     "edit <id>",
	Short:   "Edit an employee; unset flags keep their current value",
	Args:    cobra.ExactArgs(1),
	PreRunE: checkFormChoices,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			form, err := core.Controller.BeginEdit(ctx, args[0])
			if err != nil {
				return err
			}
			mergeFormFlags(cmd.Flags(), &form)
			return saveForm(ctx, cmd, core.Controller, form)
		})
	},
}

var employeesDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an employee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			e, err := core.Controller.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !assumeYes {
				answer, err := prompt(cmd, fmt.Sprintf("Delete %s (%s)? [y/N] ", e.Name, e.EmployeeCode))
				if err != nil {
					return err
				}
				if !strings.EqualFold(answer, "y") && !strings.EqualFold(answer, "yes") {
					fmt.Fprintln(cmd.OutOrStdout(), "cancelled")
					return nil
				}
			}
			notice, err := core.Controller.Delete(ctx, e.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), notice)
			return nil
		})
	},
}

var employeesNextCodeCmd = &cobra.Command{
	Use:   "next-code",
	Short: "Print the suggested code for a new employee",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			code, err := core.Controller.NextEmployeeCode()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), code)
			return nil
		})
	},
}

var employeesStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dashboard counters",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCore(cmd, func(ctx context.Context, core *Core) error {
			stats, err := core.Controller.Stats()
			if err != nil {
				return err
			}
			if outputJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "Total employees\t%d\n", stats.Total)
			fmt.Fprintf(tw, "Joined this month\t%d\n", stats.JoinedThisMonth)
			fmt.Fprintf(tw, "Departments\t%d\n", stats.Departments)
			return tw.Flush()
		})
	},
}

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print a bcrypt hash for security.users",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := session.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func saveForm(ctx context.Context, cmd *cobra.Command, ctrl *app.Controller, form employee.FormData) error {
	saved, notice, err := ctrl.Save(ctx, form)
	if err != nil {
		var appErr *internal.AppError
		if errors.As(err, &appErr) {
			if details, ok := appErr.Details.(internal.ValidationErrors); ok {
				for _, fe := range details.Errors {
					fmt.Fprintf(cmd.ErrOrStderr(), "  %s: %s\n", fe.Field, fe.Message)
				}
				return errors.New(notice.String())
			}
		}
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), notice)
	return printEmployee(cmd.OutOrStdout(), saved)
}

// mergeFormFlags copies only the flags the user set, so an edit keeps the
// values it was opened with.
func mergeFormFlags(flags *pflag.FlagSet, form *employee.FormData) {
	set := func(name string, dst *string, src string) {
		if flags.Changed(name) {
			*dst = src
		}
	}
	set("name", &form.Name, formInput.Name)
	set("joined", &form.DateOfJoining, formInput.DateOfJoining)
	set("code", &form.EmployeeCode, formInput.EmployeeCode)
	set("mobile", &form.MobileNumber, formInput.MobileNumber)
	set("email", &form.Email, formInput.Email)
	set("department", &form.Department, formInput.Department)
	set("position", &form.Position, formInput.Position)
	set("address", &form.Address, formInput.Address)
	set("emergency-contact", &form.EmergencyContact, formInput.EmergencyContact)
	set("blood-group", &form.BloodGroup, formInput.BloodGroup)
	set("marital-status", &form.MaritalStatus, formInput.MaritalStatus)
	if flags.Changed("salary") {
		salary := formSalary
		form.Salary = &salary
	}
}

func addFormFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&formInput.Name, "name", "", "full name")
	f.StringVar(&formInput.DateOfJoining, "joined", "", "date of joining (YYYY-MM-DD)")
	f.StringVar(&formInput.EmployeeCode, "code", "", "employee code")
	f.StringVar(&formInput.MobileNumber, "mobile", "", "mobile number")
	f.StringVar(&formInput.Email, "email", "", "email address")
	f.StringVar(&formInput.Department, "department", "", "department: "+strings.Join(employee.Departments, ", "))
	f.StringVar(&formInput.Position, "position", "", "position")
	f.Float64Var(&formSalary, "salary", 0, "salary")
	f.StringVar(&formInput.Address, "address", "", "address")
	f.StringVar(&formInput.EmergencyContact, "emergency-contact", "", "emergency contact")
	f.StringVar(&formInput.BloodGroup, "blood-group", "", "blood group: "+strings.Join(employee.BloodGroups, ", "))
	f.StringVar(&formInput.MaritalStatus, "marital-status", "", "marital status: "+strings.Join(employee.MaritalStatuses, ", "))
}

// checkFormChoices limits the select-style flags to the form's choices. An
// empty value clears the field.
func checkFormChoices(cmd *cobra.Command, _ []string) error {
	choices := []struct {
		flag    string
		value   string
		allowed []string
	}{
		{"department", formInput.Department, employee.Departments},
		{"blood-group", formInput.BloodGroup, employee.BloodGroups},
		{"marital-status", formInput.MaritalStatus, employee.MaritalStatuses},
	}
	for _, c := range choices {
		if !cmd.Flags().Changed(c.flag) || c.value == "" {
			continue
		}
		if !slices.Contains(c.allowed, c.value) {
			return fmt.Errorf("--%s must be one of: %s", c.flag, strings.Join(c.allowed, ", "))
		}
	}
	return nil
}

func printEmployees(w io.Writer, rows []employee.Employee) error {
	if outputJSON {
		return writeJSON(w, rows)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "No employees found.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tCODE\tNAME\tJOINED\tMOBILE\tDEPARTMENT\tPOSITION")
	for _, e := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.EmployeeCode, e.Name, e.DateOfJoining, e.MobileNumber, dash(e.Department), dash(e.Position))
	}
	return tw.Flush()
}

func printEmployee(w io.Writer, e employee.Employee) error {
	if outputJSON {
		return writeJSON(w, e)
	}
	salary := ""
	if e.Salary != nil {
		salary = strconv.FormatFloat(*e.Salary, 'f', -1, 64)
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, row := range [][2]string{
		{"ID", e.ID},
		{"Code", e.EmployeeCode},
		{"Name", e.Name},
		{"Joined", e.DateOfJoining},
		{"Mobile", e.MobileNumber},
		{"Email", dash(e.Email)},
		{"Department", dash(e.Department)},
		{"Position", dash(e.Position)},
		{"Salary", dash(salary)},
		{"Address", dash(e.Address)},
		{"Emergency contact", dash(e.EmergencyContact)},
		{"Blood group", dash(e.BloodGroup)},
		{"Marital status", dash(e.MaritalStatus)},
		{"Created by", e.CreatedBy},
		{"Created at", e.CreatedAt.Format(employeeDatamodel.TimestampLayout)},
		{"Updated at", e.UpdatedAt.Format(employeeDatamodel.TimestampLayout)},
	} {
		fmt.Fprintf(tw, "%s\t%s\n", row[0], row[1])
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func init() {
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "username (defaults to the remembered one)")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "password (prompted when empty)")
	// each command runs in its own process, so remembering is the only way
	// the session reaches the next one
	loginCmd.Flags().BoolVar(&loginRemember, "remember", true, "remember the session for later commands")

	employeesCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON instead of a table")

	employeesListCmd.Flags().StringVarP(&listSearch, "search", "s", "", "filter by name, code, mobile or department")
	employeesListCmd.Flags().StringVar(&listSort, "sort", "", "sort field, e.g. name or dateOfJoining")
	employeesListCmd.Flags().StringVar(&listDirection, "direction", "asc", "sort direction: asc or desc")

	employeesDeleteCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "skip the confirmation prompt")

	addFormFlags(employeesAddCmd)
	addFormFlags(employeesEditCmd)

	employeesCmd.AddCommand(
		employeesListCmd,
		employeesShowCmd,
		employeesAddCmd,
		employeesEditCmd,
		employeesDeleteCmd,
		employeesNextCodeCmd,
		employeesStatsCmd,
	)
}
