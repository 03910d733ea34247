package service

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"livelink/internal/alert"
	"livelink/internal/departure"
	"livelink/internal/stop"
	"livelink/internal/storage"
)

// Reader is the read side of the store, scoped to one snapshot.
type Reader interface {
	StopByID(ctx context.Context, id string) (stop.Stop, bool, error)
	StopsByPincode(ctx context.Context, pincode string) ([]stop.Stop, error)
	StopCandidates(ctx context.Context, query string) ([]stop.Stop, error)
	ScheduledForPincode(ctx context.Context, pincode string) ([]departure.Scheduled, error)
	ScheduledForStops(ctx context.Context, stopIDs []string) ([]departure.Scheduled, error)
	LiveStatuses(ctx context.Context, ids []string) (map[string]departure.LiveStatus, error)
	Alerts(ctx context.Context) ([]alert.Alert, error)
	LinesForPincode(ctx context.Context, pincode string) (alert.LineSet, error)
}

// Store opens consistent read snapshots.
type Store interface {
	View(ctx context.Context, fn func(Reader) error) error
}

type dbStore struct {
	db *storage.DB
}

// NewDBStore adapts a SQLite database to Store.
func NewDBStore(db *storage.DB) Store {
	return dbStore{db: db}
}

func (s dbStore) View(ctx context.Context, fn func(Reader) error) error {
	return s.db.Snapshot(ctx, func(r *storage.Reader) error { return fn(r) })
}

// Options tune the departure engine and search.
type Options struct {
	Engine      departure.Engine
	SearchLimit int
	Location    *time.Location
	Clock       func() time.Time // defaults to time.Now
}

// Service answers departure, alert and stop questions.
type Service struct {
	store       Store
	engine      departure.Engine
	searchLimit int
	loc         *time.Location
	logger      *slog.Logger
	now         func() time.Time
}

// New creates a Service.
func New(store Store, opts Options, logger *slog.Logger) *Service {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	return &Service{
		store:       store,
		engine:      opts.Engine,
		searchLimit: opts.SearchLimit,
		loc:         loc,
		logger:      logger,
		now:         now,
	}
}

// Now returns the current time in the service timezone.
func (s *Service) Now() time.Time {
	return s.now().In(s.loc)
}

// Departures projects the upcoming departures from every active stop in pincode.
func (s *Service) Departures(ctx context.Context, pincode string) ([]departure.Projection, error) {
	pincode = strings.TrimSpace(pincode)
	if pincode == "" {
		return nil, required("pincode")
	}
	return s.project(ctx, func(r Reader) ([]departure.Scheduled, error) {
		return r.ScheduledForPincode(ctx, pincode)
	})
}

// DeparturesForStop projects upcoming departures from one stop.
func (s *Service) DeparturesForStop(ctx context.Context, stopID string) ([]departure.Projection, error) {
	stopID = strings.TrimSpace(stopID)
	if stopID == "" {
		return nil, required("stopId")
	}
	return s.project(ctx, func(r Reader) ([]departure.Scheduled, error) {
		if _, ok, err := r.StopByID(ctx, stopID); err != nil {
			return nil, err
		} else if !ok {
			return nil, fmt.Errorf("%w: %s", ErrStopNotFound, stopID)
		}
		return r.ScheduledForStops(ctx, []string{stopID})
	})
}

// DeparturesForStops projects upcoming departures from several stops.
// Unknown ids are ignored and duplicates collapse.
func (s *Service) DeparturesForStops(ctx context.Context, stopIDs []string) ([]departure.Projection, error) {
	ids := make([]string, 0, len(stopIDs))
	for _, id := range stopIDs {
		if id = strings.TrimSpace(id); id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []departure.Projection{}, nil
	}
	return s.project(ctx, func(r Reader) ([]departure.Scheduled, error) {
		return r.ScheduledForStops(ctx, ids)
	})
}

func (s *Service) project(ctx context.Context, rows func(Reader) ([]departure.Scheduled, error)) ([]departure.Projection, error) {
	var out []departure.Projection
	err := s.store.View(ctx, func(r Reader) error {
		scheduled, err := rows(r)
		if err != nil {
			return err
		}
		ids := make([]string, len(scheduled))
		for i, d := range scheduled {
			ids[i] = d.ID
		}
		live, err := r.LiveStatuses(ctx, ids)
		if err != nil {
			return err
		}
		out = s.engine.Project(scheduled, live, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Alerts returns active alerts, restricted to lines serving pincode when it is non-empty.
func (s *Service) Alerts(ctx context.Context, pincode string) ([]alert.Alert, error) {
	pincode = strings.TrimSpace(pincode)
	var out []alert.Alert
	err := s.store.View(ctx, func(r Reader) error {
		all, err := r.Alerts(ctx)
		if err != nil {
			return err
		}
		var served alert.LineSet
		if pincode != "" {
			if served, err = r.LinesForPincode(ctx, pincode); err != nil {
				return err
			}
		}
		out = alert.ByPincode(all, pincode, served, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AlertsForLine returns active alerts affecting a line number.
func (s *Service) AlertsForLine(ctx context.Context, line string) ([]alert.Alert, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, required("lineNumber")
	}
	var out []alert.Alert
	err := s.store.View(ctx, func(r Reader) error {
		all, err := r.Alerts(ctx)
		if err != nil {
			return err
		}
		out = alert.ByLine(all, line, s.Now())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Stops returns active stops in a pincode ordered by name.
func (s *Service) Stops(ctx context.Context, pincode string) ([]stop.Stop, error) {
	pincode = strings.TrimSpace(pincode)
	if pincode == "" {
		return nil, required("pincode")
	}
	out := []stop.Stop{}
	err := s.store.View(ctx, func(r Reader) error {
		stops, err := r.StopsByPincode(ctx, pincode)
		if err != nil {
			return err
		}
		out = append(out, stops...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SearchStops ranks stops whose name or address contains query. A blank query matches nothing.
func (s *Service) SearchStops(ctx context.Context, query string) ([]stop.Stop, error) {
	if strings.TrimSpace(query) == "" {
		return []stop.Stop{}, nil
	}
	var out []stop.Stop
	err := s.store.View(ctx, func(r Reader) error {
		candidates, err := r.StopCandidates(ctx, query)
		if err != nil {
			return err
		}
		out = stop.Rank(candidates, query, s.searchLimit)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Board is everything the departure board page shows for a pincode.
type Board struct {
	Pincode     string
	Stops       []stop.Stop
	Departures  []departure.Projection
	Alerts      []alert.Alert
	GeneratedAt time.Time
}

// Board gathers stops, departures and alerts for a pincode concurrently.
func (s *Service) Board(ctx context.Context, pincode string) (*Board, error) {
	pincode = strings.TrimSpace(pincode)
	if pincode == "" {
		return nil, required("pincode")
	}

	b := &Board{Pincode: pincode, GeneratedAt: s.Now()}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		b.Stops, err = s.Stops(ctx, pincode)
		return err
	})
	g.Go(func() (err error) {
		b.Departures, err = s.Departures(ctx, pincode)
		return err
	})
	g.Go(func() (err error) {
		b.Alerts, err = s.Alerts(ctx, pincode)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger.Debug("board built", "pincode", pincode,
		"stops", len(b.Stops), "departures", len(b.Departures), "alerts", len(b.Alerts))
	return b, nil
}
