package employee_test

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/storage"
	"github.com/frahmantamala/employee-management/internal/storage/file"
	"github.com/frahmantamala/employee-management/internal/storage/memory"
	"github.com/spf13/afero"
)

func TestEmployee(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Employee Suite")
}

type stepClock struct {
	now  time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// failingKV fails every write once armed.
type failingKV struct {
	storage.KV
	failWrites bool
}

var errWriteFailed = errors.New("write failed")

func (f *failingKV) Set(ctx context.Context, key, value string) error {
	if f.failWrites {
		return errWriteFailed
	}
	return f.KV.Set(ctx, key, value)
}

func validForm(name, code string) employee.FormData {
	return employee.FormData{
		Name:          name,
		DateOfJoining: "2024-05-01",
		EmployeeCode:  code,
		MobileNumber:  "+1-555-0199",
	}
}

var _ = Describe("Repository", func() {
	var (
		ctx    context.Context
		store  *memory.Store
		clock  *stepClock
		logger *slog.Logger
		repo   *employee.Repository
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = memory.New()
		clock = &stepClock{now: time.Date(2024, 5, 20, 10, 0, 0, 0, time.UTC), step: time.Second}
		logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		repo = employee.NewRepository(store, logger, employee.Options{Clock: clock})
	})

	Describe("LoadAll", func() {
		Context("when the store is empty", func() {
			It("should seed and persist the sample records", func() {
				employees, err := repo.LoadAll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(employees).To(HaveLen(3))
				Expect(employees[0].Name).To(Equal("John Doe"))
				Expect(employees[0].EmployeeCode).To(Equal("EMP001"))
				Expect(employees[0].Department).To(Equal("Engineering"))
				Expect(employees[1].Department).To(Equal("HR"))
				Expect(employees[2].Department).To(Equal("Sales"))

				raw, ok, err := store.Get(ctx, storage.KeyEmployees)
				Expect(err).NotTo(HaveOccurred())
				Expect(ok).To(BeTrue())
				Expect(raw).To(ContainSubstring(`"employeeCode":"EMP001"`))
				Expect(raw).To(ContainSubstring(`"createdAt":"2023-01-15T09:00:00.000Z"`))
			})
		})

		Context("when the store holds an empty collection", func() {
			It("should return an empty collection without seeding", func() {
				Expect(store.Set(ctx, storage.KeyEmployees, "[]")).To(Succeed())

				employees, err := repo.LoadAll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(employees).To(BeEmpty())
				Expect(repo.NextEmployeeCode()).To(Equal("EMP001"))
			})
		})

		Context("when the stored data is corrupt", func() {
			BeforeEach(func() {
				Expect(store.Set(ctx, storage.KeyEmployees, "{not json")).To(Succeed())
			})

			It("should return a store corrupt error", func() {
				_, err := repo.LoadAll(ctx)
				Expect(err).To(HaveOccurred())
				Expect(errors.Is(err, internal.ErrStoreCorrupt)).To(BeTrue())

				appErr, ok := internal.IsAppError(err)
				Expect(ok).To(BeTrue())
				Expect(appErr.Code).To(Equal(internal.ErrCodeStoreCorrupt))
				Expect(errors.Is(appErr.Cause, storage.ErrCorrupt)).To(BeTrue())
			})

			It("should restore the seed when recovery is enabled", func() {
				repo = employee.NewRepository(store, logger, employee.Options{Clock: clock, RecoverCorrupt: true})

				employees, err := repo.LoadAll(ctx)
				Expect(err).NotTo(HaveOccurred())
				Expect(employees).To(HaveLen(3))

				raw, _, _ := store.Get(ctx, storage.KeyEmployees)
				Expect(raw).To(ContainSubstring("EMP003"))
			})
		})

		Context("when a stored timestamp is malformed", func() {
			It("should treat the collection as corrupt", func() {
				Expect(store.Set(ctx, storage.KeyEmployees,
					`[{"id":"1","name":"A","dateOfJoining":"2024-01-01","employeeCode":"E1","mobileNumber":"1","createdBy":"admin","createdAt":"yesterday","updatedAt":"today"}]`,
				)).To(Succeed())

				_, err := repo.LoadAll(ctx)
				Expect(errors.Is(err, internal.ErrStoreCorrupt)).To(BeTrue())
			})
		})

		It("should round-trip through Save", func() {
			first, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.Save(ctx, first)).To(Succeed())

			second, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(second).To(Equal(first))
		})
	})

	Describe("NextEmployeeCode", func() {
		It("should suggest EMP001 for an empty collection", func() {
			Expect(repo.Save(ctx, nil)).To(Succeed())
			Expect(repo.NextEmployeeCode()).To(Equal("EMP001"))
		})

		It("should suggest EMP002 after one record", func() {
			Expect(repo.Save(ctx, nil)).To(Succeed())
			_, err := repo.Create(ctx, validForm("Ann", "EMP001"), "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.NextEmployeeCode()).To(Equal("EMP002"))
		})

		It("should suggest EMP004 after seeding", func() {
			_, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(repo.NextEmployeeCode()).To(Equal("EMP004"))
		})
	})

	Describe("Create", func() {
		It("should append a record with matching timestamps", func() {
			salary := 5000.0
			form := validForm("Ann Lee", "EMP004")
			form.Salary = &salary
			form.Department = "Finance"

			created, err := repo.Create(ctx, form, "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(created.ID).NotTo(BeEmpty())
			Expect(created.CreatedBy).To(Equal("admin"))
			Expect(created.CreatedAt).To(Equal(created.UpdatedAt))
			Expect(*created.Salary).To(Equal(5000.0))

			employees := repo.List()
			Expect(employees).To(HaveLen(4))
			Expect(employees[3].ID).To(Equal(created.ID))

			reloaded, err := repo.Reload(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded[3]).To(Equal(created))
		})

		It("should generate distinct ids", func() {
			a, err := repo.Create(ctx, validForm("A", "EMP004"), "admin")
			Expect(err).NotTo(HaveOccurred())
			b, err := repo.Create(ctx, validForm("B", "EMP005"), "admin")
			Expect(err).NotTo(HaveOccurred())
			Expect(a.ID).NotTo(Equal(b.ID))
		})

		It("should allow duplicate codes by default", func() {
			_, err := repo.Create(ctx, validForm("Twin", "EMP001"), "admin")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should reject duplicate codes when enforcement is on", func() {
			repo = employee.NewRepository(store, logger, employee.Options{Clock: clock, EnforceUniqueCodes: true})

			_, err := repo.Create(ctx, validForm("Twin", "EMP001"), "admin")
			Expect(err).To(MatchError(internal.ErrDuplicateEmployeeCode))
			Expect(repo.List()).To(HaveLen(3))
		})

		It("should reject a form missing required fields", func() {
			_, err := repo.Create(ctx, employee.FormData{Name: "Only Name"}, "admin")
			Expect(err).To(HaveOccurred())

			appErr, ok := internal.IsAppError(err)
			Expect(ok).To(BeTrue())
			Expect(appErr.Code).To(Equal(internal.ErrCodeValidationFailed))
			details, ok := appErr.Details.(internal.ValidationErrors)
			Expect(ok).To(BeTrue())
			Expect(details.Errors).To(HaveLen(3))
		})

		It("should leave the collection untouched when the store write fails", func() {
			kv := &failingKV{KV: store}
			repo = employee.NewRepository(kv, logger, employee.Options{Clock: clock})
			_, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			kv.failWrites = true
			_, err = repo.Create(ctx, validForm("Ann", "EMP004"), "admin")
			Expect(err).To(MatchError(errWriteFailed))
			Expect(repo.List()).To(HaveLen(3))
		})
	})

	Describe("Update", func() {
		var original employee.Employee

		BeforeEach(func() {
			var err error
			original, err = repo.Create(ctx, validForm("Ann", "EMP004"), "admin")
			Expect(err).NotTo(HaveOccurred())
		})

		It("should replace editable fields and keep identity", func() {
			form := original.Form()
			form.Name = "Ann Marie"
			form.Position = "Lead"

			updated, err := repo.Update(ctx, original.ID, form)
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.Name).To(Equal("Ann Marie"))
			Expect(updated.Position).To(Equal("Lead"))
			Expect(updated.ID).To(Equal(original.ID))
			Expect(updated.CreatedBy).To(Equal(original.CreatedBy))
			Expect(updated.CreatedAt).To(Equal(original.CreatedAt))
			Expect(updated.UpdatedAt).To(BeTemporally(">=", original.UpdatedAt))
		})

		It("should never move updatedAt backwards", func() {
			clock.now = original.UpdatedAt.Add(-time.Hour)

			updated, err := repo.Update(ctx, original.ID, original.Form())
			Expect(err).NotTo(HaveOccurred())
			Expect(updated.UpdatedAt).To(Equal(original.UpdatedAt))
		})

		It("should return not found for an unknown id", func() {
			before := repo.List()

			_, err := repo.Update(ctx, "missing", validForm("X", "EMP009"))
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
			Expect(repo.List()).To(Equal(before))
		})

		It("should allow a record to keep its own code under enforcement", func() {
			repo = employee.NewRepository(store, logger, employee.Options{Clock: clock, EnforceUniqueCodes: true})

			_, err := repo.Update(ctx, original.ID, original.Form())
			Expect(err).NotTo(HaveOccurred())

			_, err = repo.Update(ctx, original.ID, validForm("Ann", "EMP001"))
			Expect(err).To(MatchError(internal.ErrDuplicateEmployeeCode))
		})
	})

	Describe("Remove", func() {
		It("should remove exactly one record", func() {
			employees, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.Remove(ctx, employees[1].ID)).To(Succeed())

			remaining := repo.List()
			Expect(remaining).To(HaveLen(2))
			Expect(remaining[0].ID).To(Equal(employees[0].ID))
			Expect(remaining[1].ID).To(Equal(employees[2].ID))

			_, err = repo.Get(ctx, employees[1].ID)
			Expect(err).To(MatchError(internal.ErrEmployeeNotFound))
		})

		It("should return not found for an unknown id", func() {
			_, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			before := repo.List()

			Expect(repo.Remove(ctx, "missing")).To(MatchError(internal.ErrEmployeeNotFound))
			Expect(repo.List()).To(Equal(before))
		})
	})

	Describe("Reload", func() {
		It("should see a removal made by another process on the same file", func() {
			fs := afero.NewMemMapFs()
			const path = "data/local-storage.json"

			serverStore, err := file.Open(fs, path)
			Expect(err).NotTo(HaveOccurred())
			cliStore, err := file.Open(fs, path)
			Expect(err).NotTo(HaveOccurred())

			server := employee.NewRepository(serverStore, logger, employee.Options{Clock: clock})
			cli := employee.NewRepository(cliStore, logger, employee.Options{Clock: clock})

			employees, err := server.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(3))

			_, err = cli.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(cli.Remove(ctx, "3")).To(Succeed())

			reloaded, err := server.Reload(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(reloaded).To(HaveLen(2))
			Expect(server.List()).To(HaveLen(2))
		})
	})

	Describe("Reset", func() {
		It("should overwrite the collection with the sample records", func() {
			Expect(repo.Save(ctx, nil)).To(Succeed())

			employees, err := repo.Reset(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(employees).To(HaveLen(3))
			Expect(repo.List()).To(HaveLen(3))
		})
	})

	Describe("Stats", func() {
		It("should count the month's joiners and distinct departments", func() {
			_, err := repo.LoadAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			_, err = repo.Create(ctx, validForm("May Joiner", "EMP004"), "admin")
			Expect(err).NotTo(HaveOccurred())

			stats := repo.Stats(time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
			Expect(stats.Total).To(Equal(4))
			Expect(stats.JoinedThisMonth).To(Equal(1))
			Expect(stats.Departments).To(Equal(3))
		})

		It("should not count the same month of another year", func() {
			stats := employee.ComputeStats(employee.SeedEmployees(), time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
			Expect(stats.JoinedThisMonth).To(Equal(0))
		})
	})
})
