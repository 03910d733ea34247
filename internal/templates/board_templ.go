package templates

// Components from board.templ. Running `templ generate` replaces this file.

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/a-h/templ"

	"livelink/internal/service"
)

// Board renders the departure board page.
func Board(data BoardData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		layoutStart(p, data.Page)

		p.printf(`<form class="lookup" method="get" action="/board">`+
			`<label for="pincode">Pincode</label>`+
			`<input id="pincode" name="pincode" inputmode="numeric" value="%s" required>`+
			`<button type="submit">Show departures</button></form>`, e(boardPincode(data)))

		if b := data.Board; b != nil {
			p.printf(`<div id="board-content" data-stream="%s">`, e(streamURL(b.Pincode)))
			content(p, b)
			p.printf(`</div>`)
		}

		layoutEnd(p)
		return p.err
	})
}

// BoardContent renders the part of the board that the live stream replaces.
func BoardContent(b *service.Board) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &printer{w: w}
		content(p, b)
		return p.err
	})
}

func content(p *printer, b *service.Board) {
	alertList(p, b)
	departureTable(p, b)
	p.printf(`<p class="generated">Updated %s</p>`, e(b.GeneratedAt.Format("15:04")))
}

func layoutStart(p *printer, page Page) {
	p.printf(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
		`<meta name="viewport" content="width=device-width, initial-scale=1">`+
		`<noscript><meta http-equiv="refresh" content="60"></noscript>`+
		`<title>%s · LiveLink</title>`+
		`<link rel="stylesheet" href="/static/board.css?v=%s">`+
		`<script src="/static/board.js?v=%s" defer></script></head><body><main>`+
		`<h1>%s</h1>`, e(page.Title), e(page.Version), e(page.Version), e(page.Title))
}

func layoutEnd(p *printer) {
	p.printf(`</main></body></html>`)
}

func alertList(p *printer, b *service.Board) {
	if len(b.Alerts) == 0 {
		return
	}
	p.printf(`<section class="alerts" aria-label="Service alerts">`)
	for _, a := range b.Alerts {
		p.printf(`<article class="alert alert-%s severity-%s"><h2>%s</h2>`,
			e(a.Type), e(a.Severity.String()), e(a.Title))
		if a.Description != "" {
			p.printf(`<p>%s</p>`, e(a.Description))
		}
		if len(a.AffectedLines) > 0 {
			p.printf(`<p class="lines">Lines: %s</p>`, e(strings.Join(a.AffectedLines, ", ")))
		}
		p.printf(`</article>`)
	}
	p.printf(`</section>`)
}

func departureTable(p *printer, b *service.Board) {
	if len(b.Departures) == 0 {
		p.printf(`<p class="empty">No departures from %d stops in the next hours.</p>`, len(b.Stops))
		return
	}
	p.printf(`<table class="departures"><thead><tr>` +
		`<th>Line</th><th>Destination</th><th>Stop</th><th>Time</th><th>Status</th><th>Then</th>` +
		`</tr></thead><tbody>`)
	for _, d := range b.Departures {
		p.printf(`<tr class="status-%s"><td class="line line-%s">%s</td><td>%s</td><td>%s`,
			e(d.Status), e(d.TransportType), e(d.LineNumber), e(d.Destination), e(d.StopName))
		if d.Platform != "" {
			p.printf(` <span class="platform">Pl. %s</span>`, e(d.Platform))
		}
		p.printf(`</td><td>%s`, e(d.ScheduledDeparture))
		if showActual(d) {
			p.printf(` <span class="actual">%s</span>`, e(d.ActualDeparture))
		}
		p.printf(`</td><td>%s</td><td>%s</td></tr>`, e(statusLabel(d)), e(strings.Join(d.NextDepartures, " ")))
	}
	p.printf(`</tbody></table>`)
}

func e(s string) string {
	return templ.EscapeString(s)
}

// printer writes formatted output and keeps the first error.
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...any) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
