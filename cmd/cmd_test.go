package cmd

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func TestCmd(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Cmd Suite")
}

const testConfig = `
storage:
  driver: file
  path: %s
app:
  simulated_latency: 0s
observability:
  logging:
    level: error
    format: text
`

var _ = Describe("console commands", func() {
	var dir string

	run := func(stdin string, args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(io.Discard)
		rootCmd.SetIn(strings.NewReader(stdin))
		rootCmd.SetArgs(append(args, "--config-dir", dir))
		err := rootCmd.Execute()
		return out.String(), err
	}

	listJSON := func(args ...string) []employee.Employee {
		out, err := run("", append([]string{"employees", "list", "--json"}, args...)...)
		Expect(err).NotTo(HaveOccurred())
		var rows []employee.Employee
		Expect(json.Unmarshal([]byte(out), &rows)).To(Succeed())
		return rows
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		storePath := filepath.Join(dir, "data", "store.json")
		cfg := strings.Replace(testConfig, "%s", storePath, 1)
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte(cfg), 0o600)).To(Succeed())

		loginUsername, loginPassword, loginRemember = "", "", true
		listSearch, listSort, listDirection = "", "", "asc"
		outputJSON, assumeYes = false, false
		for _, c := range []*cobra.Command{employeesAddCmd, employeesEditCmd} {
			c.Flags().VisitAll(func(f *pflag.Flag) {
				_ = f.Value.Set(f.DefValue)
				f.Changed = false
			})
		}
		DeferCleanup(func() { logOutput = os.Stdout })
	})

	It("should refuse employee commands before login", func() {
		out, err := run("", "whoami")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("not logged in"))

		_, err = run("", "employees", "list")
		Expect(err).To(MatchError(ContainSubstring("not logged in")))
	})

	It("should reject a wrong password", func() {
		_, err := run("", "login", "-u", "admin", "-p", "nope")
		Expect(err).To(MatchError(ContainSubstring("Login Failed")))
	})

	Context("after login", func() {
		BeforeEach(func() {
			out, err := run("", "login", "-u", "admin", "-p", "password")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Login Successful"))
		})

		It("should carry the session into the next command", func() {
			out, err := run("", "whoami")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Administrator (admin)"))

			Expect(listJSON()).To(HaveLen(3))
		})

		It("should sort and search the list", func() {
			rows := listJSON("--sort", "name", "--direction", "desc")
			Expect(rows[0].Name).To(Equal("Mike Johnson"))

			rows = listJSON("--search", "EMP002")
			Expect(rows).To(HaveLen(1))
		})

		It("should add, edit and delete an employee", func() {
			out, err := run("", "employees", "next-code")
			Expect(err).NotTo(HaveOccurred())
			Expect(strings.TrimSpace(out)).To(Equal("EMP004"))

			out, err = run("", "employees", "add",
				"--name", "Ann Lee", "--joined", "2024-04-01", "--mobile", "+1-555-0100")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Employee Added"))
			Expect(out).To(ContainSubstring("EMP004"))

			rows := listJSON("--search", "ann lee")
			Expect(rows).To(HaveLen(1))
			id := rows[0].ID
			Expect(rows[0].CreatedBy).To(Equal("admin"))

			out, err = run("", "employees", "edit", id, "--position", "Lead")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Employee Updated"))

			rows = listJSON("--search", "ann lee")
			Expect(rows[0].Position).To(Equal("Lead"))
			Expect(rows[0].Name).To(Equal("Ann Lee"))
			Expect(rows[0].MobileNumber).To(Equal("+1-555-0100"))

			out, err = run("n\n", "employees", "delete", id)
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("cancelled"))

			out, err = run("", "employees", "delete", id, "--yes")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Employee Deleted"))

			_, err = run("", "employees", "show", id)
			Expect(err).To(MatchError(ContainSubstring("not found")))
		})

		It("should only accept the listed choices for select fields", func() {
			Expect(employeesAddCmd.Flags().Lookup("department").Usage).To(ContainSubstring("Engineering"))
			Expect(employeesAddCmd.Flags().Lookup("blood-group").Usage).To(ContainSubstring("AB-"))
			Expect(employeesEditCmd.Flags().Lookup("marital-status").Usage).To(ContainSubstring("Widowed"))

			_, err := run("", "employees", "add",
				"--name", "Ann Lee", "--joined", "2024-04-01", "--mobile", "+1-555-0100", "--department", "Space")
			Expect(err).To(MatchError(ContainSubstring("--department must be one of")))
			Expect(listJSON()).To(HaveLen(3))

			_, err = run("", "employees", "edit", "1", "--blood-group", "C+")
			Expect(err).To(MatchError(ContainSubstring("--blood-group must be one of")))

			out, err := run("", "employees", "edit", "1", "--blood-group", "O-", "--marital-status", "Married")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Employee Updated"))

			out, err = run("", "employees", "show", "1", "--json")
			Expect(err).NotTo(HaveOccurred())
			var e employee.Employee
			Expect(json.Unmarshal([]byte(out), &e)).To(Succeed())
			Expect(e.BloodGroup).To(Equal("O-"))
			Expect(e.MaritalStatus).To(Equal("Married"))
		})

		It("should print stats", func() {
			out, err := run("", "employees", "stats", "--json")
			Expect(err).NotTo(HaveOccurred())
			var stats employee.Stats
			Expect(json.Unmarshal([]byte(out), &stats)).To(Succeed())
			Expect(stats.Total).To(Equal(3))
			Expect(stats.Departments).To(Equal(3))
		})

		It("should keep the remembered username after logout", func() {
			out, err := run("", "logout")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("Logged Out"))

			out, err = run("", "whoami")
			Expect(err).NotTo(HaveOccurred())
			Expect(out).To(ContainSubstring("last user: admin"))
		})
	})

	It("should reset the store with seed --clear", func() {
		out, err := run("", "seed", "--clear")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("3 employees in file store"))
	})

	It("should hash a password", func() {
		out, err := run("", "hash-password", "s3cret")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(HavePrefix("$2a$"))
	})

	It("should fail on an invalid config", func() {
		Expect(os.WriteFile(filepath.Join(dir, "config.yml"), []byte("observability:\n  logging:\n    level: loud\n"), 0o600)).To(Succeed())
		_, err := loadConfig(dir)
		Expect(err).To(MatchError(ContainSubstring("level must be one of")))
	})

	It("should fall back to defaults without a config file", func() {
		cfg, err := loadConfig(GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Storage.Driver).To(Equal("file"))
		Expect(cfg.Server.Port).To(Equal(8080))
	})
})
