package detect

import (
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/swiftcart/internal/cart"
)

// mockIdentifier is a mock implementation of vision.Identifier
type mockIdentifier struct {
	mu    sync.Mutex
	label string
	err   error
	block chan struct{}
	calls int
}

func (m *mockIdentifier) IdentifyItem(imageData []byte, contentType string) (string, error) {
	m.mu.Lock()
	label, err, block := m.label, m.err, m.block
	m.calls++
	m.mu.Unlock()

	if block != nil {
		<-block
	}
	return label, err
}

var _ = Describe("Workflow", func() {
	var (
		identifier *mockIdentifier
		store      *cart.Store
		gate       *Gate
		workflow   *Workflow
	)

	BeforeEach(func() {
		identifier = &mockIdentifier{label: "Apple"}
		store = cart.NewStore(nil)
		gate = NewGate(30 * time.Millisecond)
		workflow = NewWorkflow(gate, identifier, store)
	})

	Describe("Analyze", func() {
		var (
			imageData   []byte
			contentType string
		)

		BeforeEach(func() {
			imageData = []byte("fake image data")
			contentType = "image/jpeg"
		})

		JustBeforeEach(func() {
			workflow.Analyze(imageData, contentType)
		})

		When("the identifier matches a catalog product", func() {
			BeforeEach(func() {
				identifier.label = "Apple"
			})

			It("presents the matched product for confirmation", func() {
				pending, ok := gate.Pending()
				Expect(ok).To(BeTrue())
				Expect(pending.Product.Name).To(Equal("Organic Apples"))
			})

			It("samples a confidence between 0.89 and 0.99", func() {
				pending, _ := gate.Pending()
				Expect(pending.Confidence).To(BeNumerically(">=", 0.89))
				Expect(pending.Confidence).To(BeNumerically("<=", 0.99))
			})

			It("leaves the analyzing state", func() {
				Expect(gate.State()).To(Equal(StatePending))
			})

			It("does not touch the cart yet", func() {
				Expect(store.Items()).To(BeEmpty())
			})
		})

		When("the identifier returns the unknown sentinel", func() {
			BeforeEach(func() {
				identifier.label = "Unknown"
			})

			It("fails with a generic message", func() {
				message, ok := gate.Failure()
				Expect(ok).To(BeTrue())
				Expect(message).To(Equal("Could not analyze the image. Please try again."))
			})

			It("does not mutate the cart", func() {
				Expect(store.Items()).To(BeEmpty())
			})
		})

		When("the identified label has no catalog match", func() {
			BeforeEach(func() {
				identifier.label = "Durian"
			})

			It("fails naming the unmatched label", func() {
				message, ok := gate.Failure()
				Expect(ok).To(BeTrue())
				Expect(message).To(Equal("'Durian' is not in our catalog."))
			})

			It("auto-recovers to empty after the failure timeout", func() {
				Eventually(gate.State, "500ms", "5ms").Should(Equal(StateEmpty))
			})
		})

		When("the identifier fails", func() {
			BeforeEach(func() {
				identifier.err = errors.New("network down")
			})

			It("fails with a generic message", func() {
				message, ok := gate.Failure()
				Expect(ok).To(BeTrue())
				Expect(message).To(Equal("Could not analyze the image. Please try again."))
			})

			It("leaves the analyzing state", func() {
				Expect(gate.State()).NotTo(Equal(StateAnalyzing))
			})
		})
	})

	Describe("stale responses", func() {
		It("never lets an older request overwrite a newer one", func() {
			release := make(chan struct{})
			identifier.mu.Lock()
			identifier.label = "Milk"
			identifier.block = release
			identifier.mu.Unlock()

			done := make(chan struct{})
			go func() {
				defer close(done)
				workflow.Analyze([]byte("first"), "image/jpeg")
			}()

			// Wait for the first request to be in flight
			Eventually(func() int {
				identifier.mu.Lock()
				defer identifier.mu.Unlock()
				return identifier.calls
			}, "500ms", "5ms").Should(Equal(1))

			// Newer request completes first
			identifier.mu.Lock()
			identifier.label = "Apple"
			identifier.block = nil
			identifier.mu.Unlock()
			workflow.Analyze([]byte("second"), "image/jpeg")

			pending, ok := gate.Pending()
			Expect(ok).To(BeTrue())
			Expect(pending.Product.Name).To(Equal("Organic Apples"))

			// Stale response arrives and must be dropped
			close(release)
			Eventually(done).Should(BeClosed())

			pending, ok = gate.Pending()
			Expect(ok).To(BeTrue())
			Expect(pending.Product.Name).To(Equal("Organic Apples"))
		})
	})

	Describe("Confirm", func() {
		When("a candidate is pending", func() {
			BeforeEach(func() {
				workflow.Analyze([]byte("img"), "image/jpeg")
			})

			It("adds the candidate's product to the cart", func() {
				item, ok := workflow.Confirm()
				Expect(ok).To(BeTrue())
				Expect(item.Product.Name).To(Equal("Organic Apples"))

				items := store.Items()
				Expect(items).To(HaveLen(1))
				Expect(items[0].Product.Name).To(Equal("Organic Apples"))
				Expect(items[0].Quantity).To(Equal(1))
			})

			It("returns the gate to empty", func() {
				workflow.Confirm()
				Expect(gate.State()).To(Equal(StateEmpty))
			})
		})

		When("nothing is pending", func() {
			It("returns false and leaves the cart alone", func() {
				_, ok := workflow.Confirm()
				Expect(ok).To(BeFalse())
				Expect(store.Items()).To(BeEmpty())
			})
		})
	})

	Describe("Discard", func() {
		BeforeEach(func() {
			workflow.Analyze([]byte("img"), "image/jpeg")
		})

		It("empties the gate without a cart mutation", func() {
			Expect(workflow.Discard()).To(BeTrue())
			Expect(gate.State()).To(Equal(StateEmpty))
			Expect(store.Items()).To(BeEmpty())
		})
	})
})
