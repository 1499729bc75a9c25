package query_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/employee-management/internal"
	"github.com/frahmantamala/employee-management/internal/employee"
	"github.com/frahmantamala/employee-management/internal/query"
)

func TestQuery(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Query Suite")
}

func names(employees []employee.Employee) []string {
	out := make([]string, len(employees))
	for i, e := range employees {
		out[i] = e.Name
	}
	return out
}

func salary(v float64) *float64 { return &v }

var _ = Describe("Filter", func() {
	var seed []employee.Employee

	BeforeEach(func() {
		seed = employee.SeedEmployees()
	})

	It("should return the input for an empty term", func() {
		Expect(query.Filter(seed, "")).To(Equal(seed))
	})

	It("should match names case-insensitively", func() {
		Expect(names(query.Filter(seed, "jane"))).To(Equal([]string{"Jane Smith"}))
	})

	It("should match codes and departments", func() {
		Expect(names(query.Filter(seed, "emp003"))).To(Equal([]string{"Mike Johnson"}))
		Expect(names(query.Filter(seed, "hr"))).To(Equal([]string{"Jane Smith"}))
	})

	It("should match the creator", func() {
		Expect(query.Filter(seed, "ADMIN")).To(HaveLen(3))
	})

	It("should match mobile numbers", func() {
		Expect(names(query.Filter(seed, "0124"))).To(Equal([]string{"Jane Smith"}))
	})

	It("should match mobile numbers case-sensitively", func() {
		seed[0].MobileNumber = "ext-A12"
		Expect(query.Filter(seed, "A12")).To(HaveLen(1))
		Expect(query.Filter(seed, "a12")).To(BeEmpty())
	})

	It("should skip records without a department", func() {
		seed[1].Department = ""
		Expect(query.Filter(seed, "hr")).To(BeEmpty())
	})

	It("should return only records from the input", func() {
		for _, e := range query.Filter(seed, "o") {
			Expect(seed).To(ContainElement(e))
		}
	})
})

var _ = Describe("SortBy", func() {
	var seed []employee.Employee

	BeforeEach(func() {
		seed = employee.SeedEmployees()
	})

	It("should sort by name ascending and descending", func() {
		Expect(names(query.SortBy(seed, query.FieldName, query.Ascending))).
			To(Equal([]string{"Jane Smith", "John Doe", "Mike Johnson"}))
		Expect(names(query.SortBy(seed, query.FieldName, query.Descending))).
			To(Equal([]string{"Mike Johnson", "John Doe", "Jane Smith"}))
	})

	It("should not modify the input", func() {
		_ = query.SortBy(seed, query.FieldName, query.Descending)
		Expect(names(seed)).To(Equal([]string{"John Doe", "Jane Smith", "Mike Johnson"}))
	})

	It("should keep the relative order of ties in both directions", func() {
		seed[0].Department = "Ops"
		seed[1].Department = "Ops"
		seed[2].Department = "Ops"

		Expect(names(query.SortBy(seed, query.FieldDepartment, query.Ascending))).
			To(Equal([]string{"John Doe", "Jane Smith", "Mike Johnson"}))
		Expect(names(query.SortBy(seed, query.FieldDepartment, query.Descending))).
			To(Equal([]string{"John Doe", "Jane Smith", "Mike Johnson"}))
	})

	It("should compare missing values as empty strings", func() {
		seed[0].Position = ""
		sorted := query.SortBy(seed, query.FieldPosition, query.Ascending)
		Expect(sorted[0].Name).To(Equal("John Doe"))
	})

	It("should ignore case like a locale comparison", func() {
		seed[0].Name = "bob"
		seed[1].Name = "Alice"
		seed[2].Name = "carol"
		Expect(names(query.SortBy(seed, query.FieldName, query.Ascending))).
			To(Equal([]string{"Alice", "bob", "carol"}))
	})

	It("should compare salaries by their decimal text", func() {
		seed[0].Salary = salary(900)
		seed[1].Salary = salary(1200)
		seed[2].Salary = nil
		Expect(names(query.SortBy(seed, query.FieldSalary, query.Ascending))).
			To(Equal([]string{"Mike Johnson", "Jane Smith", "John Doe"}))
	})

	It("should return a permutation of the input", func() {
		sorted := query.SortBy(seed, query.FieldCreatedAt, query.Descending)
		Expect(sorted).To(ConsistOf(seed))
		Expect(sorted[0].Name).To(Equal("Mike Johnson"))
	})
})

var _ = Describe("parsing", func() {
	It("should parse known fields case-insensitively", func() {
		f, err := query.ParseField("EmployeeCode")
		Expect(err).NotTo(HaveOccurred())
		Expect(f).To(Equal(query.FieldEmployeeCode))
	})

	It("should reject unknown fields", func() {
		_, err := query.ParseField("password")
		appErr, ok := internal.IsAppError(err)
		Expect(ok).To(BeTrue())
		Expect(appErr.Code).To(Equal(internal.ErrCodeInvalidSortField))
	})

	It("should default the direction to ascending", func() {
		d, err := query.ParseDirection("")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(query.Ascending))

		d, err = query.ParseDirection("DESC")
		Expect(err).NotTo(HaveOccurred())
		Expect(d).To(Equal(query.Descending))

		_, err = query.ParseDirection("sideways")
		Expect(err).To(HaveOccurred())
	})

	It("should toggle like a column header", func() {
		Expect(query.Toggle("", query.Ascending, query.FieldName)).To(Equal(query.Ascending))
		Expect(query.Toggle(query.FieldName, query.Ascending, query.FieldName)).To(Equal(query.Descending))
		Expect(query.Toggle(query.FieldName, query.Descending, query.FieldName)).To(Equal(query.Ascending))
		Expect(query.Toggle(query.FieldName, query.Ascending, query.FieldEmail)).To(Equal(query.Ascending))
	})
})
