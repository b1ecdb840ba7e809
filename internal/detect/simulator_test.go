package detect

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/swiftcart/internal/catalog"
)

// mockCamera is a mock implementation of Camera
type mockCamera struct {
	mu       sync.Mutex
	started  int
	stopped  int
	startErr error
}

func (m *mockCamera) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.started++
	return m.startErr
}

func (m *mockCamera) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped++
}

func (m *mockCamera) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started, m.stopped
}

var _ = Describe("Simulator", func() {
	var (
		sim      *Simulator
		camera   *mockCamera
		mu       sync.Mutex
		detected []catalog.Product
	)

	detectedCount := func() int {
		mu.Lock()
		defer mu.Unlock()
		return len(detected)
	}

	BeforeEach(func() {
		camera = &mockCamera{}
		mu.Lock()
		detected = nil
		mu.Unlock()

		sim = NewSimulator(SimulatorConfig{
			Interval:   10 * time.Millisecond,
			DisplayFor: 30 * time.Millisecond,
			Camera:     camera,
			Rand:       rand.New(rand.NewSource(1)),
			OnDetect: func(p catalog.Product) {
				mu.Lock()
				detected = append(detected, p)
				mu.Unlock()
			},
		})
	})

	AfterEach(func() {
		sim.Stop()
	})

	It("is inactive with no regions before starting", func() {
		Expect(sim.Active()).To(BeFalse())
		Expect(sim.Regions()).To(BeEmpty())
	})

	Describe("Start", func() {
		It("activates the simulator and the camera", func() {
			sim.Start()
			Expect(sim.Active()).To(BeTrue())
			started, _ := camera.counts()
			Expect(started).To(Equal(1))
		})

		It("emits one catalog product per tick", func() {
			sim.Start()
			Eventually(detectedCount, "500ms", "5ms").Should(BeNumerically(">=", 3))

			mu.Lock()
			defer mu.Unlock()
			for _, p := range detected {
				_, ok := catalog.ByID(p.ID)
				Expect(ok).To(BeTrue())
			}
		})

		It("shows at most one region at a time", func() {
			sim.Start()
			Eventually(func() int { return len(sim.Regions()) }, "500ms", "5ms").Should(Equal(1))
			Consistently(func() int { return len(sim.Regions()) }, "100ms", "5ms").Should(BeNumerically("<=", 1))
		})

		It("synthesizes boxes inside the frame", func() {
			sim.Start()
			Eventually(func() []Region { return sim.Regions() }, "500ms", "5ms").ShouldNot(BeEmpty())

			box := sim.Regions()[0].Box
			Expect(box.X).To(BeNumerically(">=", 10))
			Expect(box.X).To(BeNumerically("<", 70))
			Expect(box.Y).To(BeNumerically(">=", 10))
			Expect(box.Y).To(BeNumerically("<", 70))
			Expect(box.Width).To(BeNumerically(">=", 10))
			Expect(box.Width).To(BeNumerically("<", 30))
			Expect(box.Height).To(BeNumerically(">=", 10))
			Expect(box.Height).To(BeNumerically("<", 30))
			Expect(box.X + box.Width).To(BeNumerically("<=", 100))
			Expect(box.Y + box.Height).To(BeNumerically("<=", 100))
		})

		It("labels regions with the product emoji and name", func() {
			sim.Start()
			Eventually(func() []Region { return sim.Regions() }, "500ms", "5ms").ShouldNot(BeEmpty())

			label := sim.Regions()[0].Label
			var matched bool
			for _, p := range catalog.Products() {
				if label == p.Emoji+" "+p.Name {
					matched = true
				}
			}
			Expect(matched).To(BeTrue())
		})

		It("is idempotent", func() {
			sim.Start()
			sim.Start()
			started, _ := camera.counts()
			Expect(started).To(Equal(1))
		})

		When("the camera fails to start", func() {
			BeforeEach(func() {
				camera.startErr = errors.New("no camera permission")
			})

			It("still runs simulated detections", func() {
				sim.Start()
				Eventually(detectedCount, "500ms", "5ms").Should(BeNumerically(">=", 1))
			})
		})
	})

	Describe("region expiry", func() {
		BeforeEach(func() {
			// Display window much shorter than the tick period, so the region
			// disappears between ticks
			sim = NewSimulator(SimulatorConfig{
				Interval:   80 * time.Millisecond,
				DisplayFor: 15 * time.Millisecond,
				Rand:       rand.New(rand.NewSource(1)),
			})
		})

		It("clears the region after the display duration", func() {
			sim.Start()
			Eventually(func() int { return len(sim.Regions()) }, "500ms", "2ms").Should(Equal(1))
			Eventually(func() int { return len(sim.Regions()) }, "100ms", "2ms").Should(Equal(0))
		})
	})

	Describe("Stop", func() {
		BeforeEach(func() {
			sim.Start()
			Eventually(detectedCount, "500ms", "5ms").Should(BeNumerically(">=", 1))
		})

		It("deactivates the simulator", func() {
			sim.Stop()
			Expect(sim.Active()).To(BeFalse())
		})

		It("clears the visible region synchronously", func() {
			sim.Stop()
			Expect(sim.Regions()).To(BeEmpty())
		})

		It("stops emitting detections", func() {
			sim.Stop()
			after := detectedCount()
			Consistently(detectedCount, "100ms", "5ms").Should(Equal(after))
		})

		It("stops the camera", func() {
			sim.Stop()
			_, stopped := camera.counts()
			Expect(stopped).To(Equal(1))
		})

		It("is idempotent", func() {
			sim.Stop()
			sim.Stop()
			_, stopped := camera.counts()
			Expect(stopped).To(Equal(1))
		})
	})
})
