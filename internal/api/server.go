// Package api serves the UI collaborator: sun readouts, layout presets, and
// per-cell shadow state over HTTP, plus a websocket feed for the date/time
// scrubber. The engine itself stays synchronous; the server serializes
// sampling per layout.
package api

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"rooftopshade/internal/config"
	"rooftopshade/internal/shadow"
	"rooftopshade/internal/sim"
	"rooftopshade/internal/sunpos"
)

// Server hosts the UI feed. Layout worlds are assembled once at startup;
// requests against a layout that failed assembly get a 422 naming the
// offending row, never a crash.
type Server struct {
	app *fiber.App
	cfg *config.Config
	loc sunpos.Location
	log *zap.Logger

	mu         sync.Mutex
	worlds     map[string]*sim.World
	layoutErrs map[string]error
}

func NewServer(cfg *config.Config, log *zap.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:        fiber.New(fiber.Config{AppName: "panelshade"}),
		cfg:        cfg,
		loc:        loc,
		log:        log,
		worlds:     make(map[string]*sim.World),
		layoutErrs: make(map[string]error),
	}
	for _, name := range cfg.LayoutNames() {
		w, err := sim.Build(cfg, name, log)
		if err != nil {
			log.Warn("layout rejected", zap.String("layout", name), zap.Error(err))
			s.layoutErrs[name] = err
			continue
		}
		s.worlds[name] = w
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	api := s.app.Group("/api/v1")
	api.Get("/sun", s.handleSun)
	api.Get("/layouts", s.handleLayouts)
	api.Get("/shadow", s.handleShadow)

	s.app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	s.app.Get("/ws/scrub", websocket.New(s.handleScrub))
}

// Listen blocks serving on the configured address.
func (s *Server) Listen() error {
	s.log.Info("listening", zap.String("addr", s.cfg.Listen))
	return s.app.Listen(s.cfg.Listen)
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App { return s.app }

type sunDTO struct {
	Azimuth   float64 `json:"azimuth"`
	Elevation float64 `json:"elevation"`
	Altitude  float64 `json:"altitude"`
	Up        bool    `json:"up"`
}

func toSunDTO(v sunpos.SunVector) sunDTO {
	return sunDTO{Azimuth: v.Azimuth, Elevation: v.Elevation, Altitude: v.Altitude, Up: v.Up}
}

type cellDTO struct {
	ID        string  `json:"id"`
	Panel     string  `json:"panel"`
	Intensity float64 `json:"intensity"`
	Level     int     `json:"level"`
	Color     string  `json:"color"`
	Opacity   float64 `json:"opacity"`
}

type frameDTO struct {
	Layout string    `json:"layout"`
	Sun    sunDTO    `json:"sun"`
	Cells  []cellDTO `json:"cells"`
}

// moment builds a validated simulated moment from a YYYY-MM-DD date and a
// decimal hour.
func moment(date string, hour float64) (sunpos.Moment, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return sunpos.Moment{}, fmt.Errorf("bad date %q: want YYYY-MM-DD", date)
	}
	m := sunpos.Moment{Year: d.Year(), Month: d.Month(), Day: d.Day(), Hour: hour}
	if err := m.Validate(); err != nil {
		return sunpos.Moment{}, err
	}
	return m, nil
}

func momentQuery(c *fiber.Ctx) (sunpos.Moment, error) {
	h, err := strconv.ParseFloat(c.Query("hour"), 64)
	if err != nil {
		return sunpos.Moment{}, fmt.Errorf("bad hour %q: want a decimal hour", c.Query("hour"))
	}
	return moment(c.Query("date"), h)
}

func (s *Server) handleSun(c *fiber.Ctx) error {
	m, err := momentQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return c.JSON(toSunDTO(s.loc.Sun(m)))
}

func (s *Server) handleLayouts(c *fiber.Ctx) error {
	type layoutDTO struct {
		Name  string `json:"name"`
		Valid bool   `json:"valid"`
		Error string `json:"error,omitempty"`
	}
	var out []layoutDTO
	for _, name := range s.cfg.LayoutNames() {
		d := layoutDTO{Name: name, Valid: true}
		if err, bad := s.layoutErrs[name]; bad {
			d.Valid, d.Error = false, err.Error()
		}
		out = append(out, d)
	}
	return c.JSON(out)
}

func (s *Server) handleShadow(c *fiber.Ctx) error {
	m, err := momentQuery(c)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	frame, err := s.frame(c.Query("layout"), m)
	if err != nil {
		return err
	}
	return c.JSON(frame)
}

// frame samples the named layout at the moment and builds the response.
func (s *Server) frame(layoutName string, m sunpos.Moment) (*frameDTO, error) {
	if layoutName == "" {
		names := s.cfg.LayoutNames()
		if len(names) == 0 {
			return nil, fiber.NewError(fiber.StatusNotFound, "no layouts configured")
		}
		layoutName = names[0]
	}
	if err, bad := s.layoutErrs[layoutName]; bad {
		return nil, fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	w, ok := s.worlds[layoutName]
	if !ok {
		return nil, fiber.NewError(fiber.StatusNotFound, fmt.Sprintf("unknown layout %q", layoutName))
	}

	sun := s.loc.Sun(m)

	s.mu.Lock()
	intensities := w.Engine.SampleAll(sun)
	cells := w.Engine.Cells()
	out := &frameDTO{Layout: layoutName, Sun: toSunDTO(sun), Cells: make([]cellDTO, len(cells))}
	for i := range cells {
		b := shadow.Classify(intensities[i])
		out.Cells[i] = cellDTO{
			ID:        cells[i].ID,
			Panel:     cells[i].Owner,
			Intensity: intensities[i],
			Level:     b.Level,
			Color:     fmt.Sprintf("#%02x%02x%02x", b.Color.R, b.Color.G, b.Color.B),
			Opacity:   b.Opacity,
		}
	}
	s.mu.Unlock()
	return out, nil
}
