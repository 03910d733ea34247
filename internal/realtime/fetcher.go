package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"golang.org/x/sync/errgroup"
	"google.golang.org/protobuf/proto"

	"livelink/internal/alert"
	"livelink/internal/departure"
)

// staleAfter is how long a live status survives without a refresh.
const staleAfter = 6 * time.Hour

// Sink receives converted feed data. *storage.DB implements it.
type Sink interface {
	UpsertLiveStatus(ctx context.Context, statuses []departure.LiveStatus) error
	ReplaceFeedAlerts(ctx context.Context, alerts []alert.Alert) error
	PruneLiveStatus(ctx context.Context, cutoff time.Time) (int64, error)
}

// Fetcher polls GTFS-RT trip update and alert feeds and writes them to a Sink.
type Fetcher struct {
	tripUpdatesURL string
	alertsURL      string
	interval       time.Duration
	sink           Sink
	client         *http.Client
	logger         *slog.Logger
	now            func() time.Time
}

// NewFetcher creates a GTFS-RT feed fetcher. Either URL may be empty.
func NewFetcher(tripUpdatesURL, alertsURL string, interval time.Duration, sink Sink, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		tripUpdatesURL: tripUpdatesURL,
		alertsURL:      alertsURL,
		interval:       interval,
		sink:           sink,
		client:         &http.Client{Timeout: 15 * time.Second},
		logger:         logger,
		now:            time.Now,
	}
}

// Start polls both feeds until the context is cancelled.
func (f *Fetcher) Start(ctx context.Context) {
	f.poll(ctx)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			f.poll(ctx)
		case <-ctx.Done():
			f.logger.Info("GTFS-RT fetcher stopped")
			return
		}
	}
}

func (f *Fetcher) poll(ctx context.Context) {
	if err := f.Poll(ctx); err != nil {
		f.logger.Warn("GTFS-RT poll failed", "error", err)
	}
}

// Poll fetches the configured feeds concurrently and stores each one on its
// own. A failing feed does not stop the other; their errors are joined.
func (f *Fetcher) Poll(ctx context.Context) error {
	var (
		g        errgroup.Group
		tripErr  error
		alertErr error
	)

	if f.tripUpdatesURL != "" {
		g.Go(func() error {
			if err := f.pollTripUpdates(ctx); err != nil {
				tripErr = fmt.Errorf("trip updates: %w", err)
			}
			return nil
		})
	}
	if f.alertsURL != "" {
		g.Go(func() error {
			if err := f.pollAlerts(ctx); err != nil {
				alertErr = fmt.Errorf("alerts: %w", err)
			}
			return nil
		})
	}

	_ = g.Wait()
	return errors.Join(tripErr, alertErr)
}

func (f *Fetcher) pollTripUpdates(ctx context.Context) error {
	feed, err := f.fetchFeed(ctx, f.tripUpdatesURL)
	if err != nil {
		return err
	}
	now := f.now()
	statuses := LiveStatuses(feed, now)
	if err := f.sink.UpsertLiveStatus(ctx, statuses); err != nil {
		return err
	}
	if _, err := f.sink.PruneLiveStatus(ctx, now.Add(-staleAfter)); err != nil {
		return err
	}
	f.logger.Info("GTFS-RT trip updates stored", "count", len(statuses))
	return nil
}

func (f *Fetcher) pollAlerts(ctx context.Context) error {
	feed, err := f.fetchFeed(ctx, f.alertsURL)
	if err != nil {
		return err
	}
	alerts := Alerts(feed, f.now())
	if err := f.sink.ReplaceFeedAlerts(ctx, alerts); err != nil {
		return err
	}
	f.logger.Info("GTFS-RT alerts stored", "count", len(alerts))
	return nil
}

func (f *Fetcher) fetchFeed(ctx context.Context, url string) (*gtfs.FeedMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return nil, fmt.Errorf("parse protobuf: %w", err)
	}
	return feed, nil
}
