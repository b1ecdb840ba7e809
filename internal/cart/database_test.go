package cart

import (
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.etcd.io/bbolt"

	"github.com/zombor/swiftcart/internal/catalog"
)

var _ = Describe("BoltDB", func() {
	var (
		dbPath string
		db     *BoltDB
	)

	BeforeEach(func() {
		dbPath = filepath.Join(GinkgoT().TempDir(), "swiftcart.db")
		var err error
		db, err = NewBoltDB(dbPath)
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		db.Close()
	})

	Describe("LoadEntries", func() {
		When("nothing has been saved", func() {
			It("returns an empty cart", func() {
				entries, err := db.LoadEntries()
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(BeEmpty())
			})
		})

		When("a cart has been saved", func() {
			BeforeEach(func() {
				apples, _ := catalog.ByID(1)
				milk, _ := catalog.ByID(2)
				err := db.SaveEntries([]Entry{
					{Product: apples, Quantity: 2},
					{Product: milk, Quantity: 1},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("round-trips the entries in order", func() {
				entries, err := db.LoadEntries()
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(HaveLen(2))
				Expect(entries[0].Product.Name).To(Equal("Organic Apples"))
				Expect(entries[0].Quantity).To(Equal(2))
				Expect(entries[1].Product.Name).To(Equal("Whole Milk"))
			})
		})

		When("the persisted data is malformed", func() {
			BeforeEach(func() {
				Expect(db.Close()).To(Succeed())

				raw, err := bbolt.Open(dbPath, 0600, &bbolt.Options{Timeout: time.Second})
				Expect(err).NotTo(HaveOccurred())
				err = raw.Update(func(tx *bbolt.Tx) error {
					return tx.Bucket([]byte(bucketName)).Put([]byte(entriesKey), []byte("not json"))
				})
				Expect(err).NotTo(HaveOccurred())
				Expect(raw.Close()).To(Succeed())

				db, err = NewBoltDB(dbPath)
				Expect(err).NotTo(HaveOccurred())
			})

			It("resets to an empty cart without an error", func() {
				entries, err := db.LoadEntries()
				Expect(err).NotTo(HaveOccurred())
				Expect(entries).To(BeEmpty())
			})
		})
	})

	Describe("SaveEntries", func() {
		It("overwrites the previous snapshot", func() {
			apples, _ := catalog.ByID(1)
			Expect(db.SaveEntries([]Entry{{Product: apples, Quantity: 1}})).To(Succeed())
			Expect(db.SaveEntries(nil)).To(Succeed())

			entries, err := db.LoadEntries()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(BeEmpty())
		})

		It("survives reopening the database", func() {
			apples, _ := catalog.ByID(1)
			Expect(db.SaveEntries([]Entry{{Product: apples, Quantity: 4}})).To(Succeed())
			Expect(db.Close()).To(Succeed())

			reopened, err := NewBoltDB(dbPath)
			Expect(err).NotTo(HaveOccurred())
			db = reopened

			entries, err := db.LoadEntries()
			Expect(err).NotTo(HaveOccurred())
			Expect(entries).To(HaveLen(1))
			Expect(entries[0].Quantity).To(Equal(4))
		})
	})
})
