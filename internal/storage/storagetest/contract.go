// Package storagetest holds the behaviour every storage.KV backend must share.
package storagetest

import (
	"context"

	"github.com/frahmantamala/employee-management/internal/storage"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// DescribeKVContract registers the shared specs against stores built by newKV.
// newKV is called once per spec and must return an empty store.
func DescribeKVContract(newKV func() storage.KV) {
	var (
		ctx context.Context
		kv  storage.KV
	)

	BeforeEach(func() {
		ctx = context.Background()
		kv = newKV()
	})

	It("reports absent keys without error", func() {
		v, ok, err := kv.Get(ctx, "missing")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
		Expect(v).To(BeEmpty())
	})

	It("returns what was set", func() {
		Expect(kv.Set(ctx, storage.KeyRememberedUsername, "admin")).To(Succeed())

		v, ok, err := kv.Get(ctx, storage.KeyRememberedUsername)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("admin"))
	})

	It("overwrites the whole value on set", func() {
		Expect(kv.Set(ctx, storage.KeyEmployees, `[{"id":"1"}]`)).To(Succeed())
		Expect(kv.Set(ctx, storage.KeyEmployees, `[]`)).To(Succeed())

		v, _, err := kv.Get(ctx, storage.KeyEmployees)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(`[]`))
	})

	It("keeps an empty string distinct from an absent key", func() {
		Expect(kv.Set(ctx, "empty", "")).To(Succeed())

		v, ok, err := kv.Get(ctx, "empty")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(BeEmpty())
	})

	It("removes keys and tolerates removing absent ones", func() {
		Expect(kv.Set(ctx, storage.KeyRememberedUser, `{"username":"admin"}`)).To(Succeed())
		Expect(kv.Remove(ctx, storage.KeyRememberedUser)).To(Succeed())
		Expect(kv.Remove(ctx, storage.KeyRememberedUser)).To(Succeed())

		_, ok, err := kv.Get(ctx, storage.KeyRememberedUser)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("keeps keys independent", func() {
		Expect(kv.Set(ctx, storage.KeyRememberedUser, `{"username":"admin","name":"Administrator"}`)).To(Succeed())
		Expect(kv.Set(ctx, storage.KeyRememberedUsername, "admin")).To(Succeed())
		Expect(kv.Remove(ctx, storage.KeyRememberedUser)).To(Succeed())

		v, ok, err := kv.Get(ctx, storage.KeyRememberedUsername)
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(v).To(Equal("admin"))
	})

	It("answers ping while open", func() {
		Expect(kv.Ping(ctx)).To(Succeed())
	})
}
