package detect

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/swiftcart/internal/catalog"
)

// Box is a bounding box in percentages of the frame
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region is one detected object overlaid on the camera feed. Regions are
// ephemeral: they live for the display duration and are never persisted.
type Region struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Box   Box    `json:"box"`
}

// SimulatorConfig configures a Simulator. Zero durations fall back to the
// demo defaults.
type SimulatorConfig struct {
	// Interval between detection ticks
	Interval time.Duration
	// DisplayFor is how long a region stays visible
	DisplayFor time.Duration
	// OnDetect receives the detected product on every tick
	OnDetect func(catalog.Product)
	// Camera to start and stop with the simulator
	Camera Camera
	// Rand is the randomness source; defaults to a time-seeded one
	Rand *rand.Rand
}

const (
	defaultInterval   = 4000 * time.Millisecond
	defaultDisplayFor = 2000 * time.Millisecond
)

// Simulator emits a random catalog product with a synthetic bounding box on a
// fixed period while active. Detections on this path go straight to the cart,
// with no confirmation step.
type Simulator struct {
	interval   time.Duration
	displayFor time.Duration
	onDetect   func(catalog.Product)
	camera     Camera

	mu     sync.Mutex
	rng    *rand.Rand
	active bool
	stop   chan struct{}
	region *Region
}

// NewSimulator creates a Simulator from cfg
func NewSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.Interval <= 0 {
		cfg.Interval = defaultInterval
	}
	if cfg.DisplayFor <= 0 {
		cfg.DisplayFor = defaultDisplayFor
	}
	if cfg.Camera == nil {
		cfg.Camera = NopCamera{}
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Simulator{
		interval:   cfg.Interval,
		displayFor: cfg.DisplayFor,
		onDetect:   cfg.OnDetect,
		camera:     cfg.Camera,
		rng:        cfg.Rand,
	}
}

// Start activates the simulator. Idempotent. A camera failure disables the
// stream but not the simulated detections.
func (s *Simulator) Start() {
	s.mu.Lock()
	if s.active {
		s.mu.Unlock()
		return
	}
	s.active = true
	s.stop = make(chan struct{})
	stop := s.stop
	s.mu.Unlock()

	if err := s.camera.Start(); err != nil {
		slog.Warn("Camera unavailable, continuing without stream", "error", err)
	}

	go s.run(stop)
}

// Stop deactivates the simulator, cancels its timers and clears the visible
// region before returning. Idempotent.
func (s *Simulator) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.active = false
	close(s.stop)
	s.region = nil
	s.mu.Unlock()

	s.camera.Stop()
}

// Active reports whether the simulator is running
func (s *Simulator) Active() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// Regions returns the currently visible regions: one while a detection is on
// screen, none otherwise
func (s *Simulator) Regions() []Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.region == nil {
		return []Region{}
	}
	return []Region{*s.region}
}

func (s *Simulator) run(stop chan struct{}) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

func (s *Simulator) tick() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}

	products := catalog.Products()
	product := products[s.rng.Intn(len(products))]

	region := Region{
		ID:    uuid.NewString(),
		Label: fmt.Sprintf("%s %s", product.Emoji, product.Name),
		Box: Box{
			X:      s.rng.Float64()*60 + 10,
			Y:      s.rng.Float64()*60 + 10,
			Width:  s.rng.Float64()*20 + 10,
			Height: s.rng.Float64()*20 + 10,
		},
	}
	// Newest region replaces any stale one; the expiry below only clears the
	// region it was scheduled for
	s.region = &region
	onDetect := s.onDetect
	s.mu.Unlock()

	if onDetect != nil {
		onDetect(product)
	}

	time.AfterFunc(s.displayFor, func() {
		s.mu.Lock()
		if s.region != nil && s.region.ID == region.ID {
			s.region = nil
		}
		s.mu.Unlock()
	})
}
