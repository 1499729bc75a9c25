package sqlstore_test

import (
	"context"
	"testing"

	"github.com/frahmantamala/employee-management/internal/storage"
	"github.com/frahmantamala/employee-management/internal/storage/sqlstore"
	"github.com/frahmantamala/employee-management/internal/storage/storagetest"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestSQLStore(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "SQL Store Suite")
}

func openMemoryDB() *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	Expect(err).NotTo(HaveOccurred())

	sqlDB, err := db.DB()
	Expect(err).NotTo(HaveOccurred())
	sqlDB.SetMaxOpenConns(1)

	Expect(sqlstore.Migrate(db)).To(Succeed())
	DeferCleanup(sqlDB.Close)
	return db
}

var _ = Describe("SQL store", func() {
	Describe("KV contract", func() {
		storagetest.DescribeKVContract(func() storage.KV {
			return sqlstore.New(openMemoryDB())
		})
	})

	It("keeps a single row per key across upserts", func() {
		ctx := context.Background()
		db := openMemoryDB()
		s := sqlstore.New(db)

		Expect(s.Set(ctx, storage.KeyEmployees, `[]`)).To(Succeed())
		Expect(s.Set(ctx, storage.KeyEmployees, `[{"id":"1"}]`)).To(Succeed())

		var count int64
		Expect(db.Model(&sqlstore.Entry{}).Where("key = ?", storage.KeyEmployees).Count(&count).Error).To(Succeed())
		Expect(count).To(Equal(int64(1)))
	})

	It("opens a sqlite database by driver name and migrates it", func() {
		s, err := sqlstore.Open("sqlite", ":memory:", sqlstore.Options{})
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)

		ctx := context.Background()
		Expect(s.Set(ctx, storage.KeyRememberedUsername, "admin")).To(Succeed())
		v, ok, err := s.Get(ctx, storage.KeyRememberedUsername)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("admin"))
	})

	It("rejects unknown drivers", func() {
		_, err := sqlstore.Open("mysql", "dsn", sqlstore.Options{})
		Expect(err).To(MatchError(ContainSubstring("unsupported driver")))
	})
})
