package djb

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// State classifies the outcome of callsign detection.
type State int

const (
	// StateResolved means exactly one station was identified.
	StateResolved State = iota

	// StateAmbiguous means the index page lists several stations and the
	// caller must pick one. The resolver never guesses.
	StateAmbiguous

	// StateUnresolved means no station could be detected at all. The
	// caller must supply a callsign manually before downloads can start.
	StateUnresolved
)

// Station is one station entry on the archive index page.
type Station struct {
	// Code is the numeric selector used in index URL c= parameters.
	Code int

	// Callsign is the station identifier used as the remote filename
	// prefix, e.g. "BSR".
	Callsign string
}

// Resolution is the tagged outcome of callsign detection.
//
// Exactly one of the payload fields is meaningful, selected by State:
// Station for StateResolved, Candidates for StateAmbiguous, and RawHTML
// for StateUnresolved (the fetched page markup, kept so the operator can
// inspect why detection failed).
type Resolution struct {
	State      State
	Station    Station
	Candidates []Station
	RawHTML    string

	// IndexURL is the page the detection ran against. Useful in manual
	// fallback messages ("open this in your browser").
	IndexURL string
}

// PageFetcher fetches a URL with the authenticated session and returns
// the response body. *http.Client satisfies it via GetString.
type PageFetcher interface {
	GetString(ctx context.Context, url string) (string, error)
}

// Resolver determines the station callsign from the archive index page.
//
// Every remote filename and priming URL embeds the callsign, so the
// batch cannot start until it is known. The resolver fetches the index
// page for a sample day and runs a detection chain over the markup; see
// Detect for the chain itself.
//
// Example usage:
//
//	resolver := djb.NewResolver(client, baseURL)
//	res, err := resolver.Resolve(ctx, time.Now())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	switch res.State {
//	case djb.StateResolved:
//	    fmt.Println("station:", res.Station.Callsign)
//	case djb.StateAmbiguous:
//	    // prompt the user to choose from res.Candidates
//	case djb.StateUnresolved:
//	    // ask for a callsign, pointing at res.IndexURL
//	}
type Resolver struct {
	client  PageFetcher
	baseURL string
}

// NewResolver creates a Resolver that reads index pages through the
// given authenticated client.
func NewResolver(client PageFetcher, baseURL string) *Resolver {
	return &Resolver{
		client:  client,
		baseURL: baseURL,
	}
}

// Resolve fetches the index page for sampleDay and detects the station.
//
// The fetch uses selector code 0, which the platform accepts for any
// account and answers with the account's station list. A transport or
// HTTP failure is returned as an error; detection outcomes, including
// failure to detect, come back inside the Resolution.
func (r *Resolver) Resolve(ctx context.Context, sampleDay time.Time) (*Resolution, error) {
	url := IndexURL(r.baseURL, 0, sampleDay)
	html, err := r.client.GetString(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("could not fetch index page: %w", err)
	}

	res := Detect(html)
	res.IndexURL = url
	return res, nil
}

var (
	// Station selector links look like:
	//   <a href="index.php?d=08&m=01&y=2024&c=2">BSR</a>
	// The anchor text is the callsign, c= the selector code.
	stationLinkRe = regexp.MustCompile(`<a[^>]+href=["']index\.php\?d=\d+&m=\d+&y=\d+&c=(\d+)["'][^>]*>([^<]+)</a>`)

	// Fallback: the first cell of the index data table carries the
	// station's Group token.
	groupCellRe = regexp.MustCompile(`<tr[^>]*>\s*<td>(\w+)</td>`)
)

// Detect runs the callsign detection chain over index page markup.
//
// The chain, first success wins:
//
//  1. Station selector links. Exactly one distinct callsign resolves
//     automatically; two or more yield StateAmbiguous with the full
//     candidate list in page order.
//  2. The first data table row's Group column, taken as a callsign with
//     selector code 0.
//  3. StateUnresolved, carrying the raw markup for diagnostics.
func Detect(html string) *Resolution {
	stations := findStations(html)
	switch {
	case len(stations) == 1:
		return &Resolution{State: StateResolved, Station: stations[0]}
	case len(stations) > 1:
		return &Resolution{State: StateAmbiguous, Candidates: stations}
	}

	if callsign, ok := groupColumnCallsign(html); ok {
		return &Resolution{State: StateResolved, Station: Station{Code: 0, Callsign: callsign}}
	}

	return &Resolution{State: StateUnresolved, RawHTML: html}
}

// findStations extracts station selector links, deduplicated by callsign
// while preserving page order.
func findStations(html string) []Station {
	matches := stationLinkRe.FindAllStringSubmatch(html, -1)

	seen := make(map[string]struct{})
	var stations []Station
	for _, match := range matches {
		code, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		callsign := strings.TrimSpace(match[2])
		if callsign == "" {
			continue
		}
		if _, dup := seen[callsign]; dup {
			continue
		}
		seen[callsign] = struct{}{}
		stations = append(stations, Station{Code: code, Callsign: callsign})
	}
	return stations
}

// groupColumnCallsign pulls a callsign-like token out of the first data
// table row.
func groupColumnCallsign(html string) (string, bool) {
	match := groupCellRe.FindStringSubmatch(html)
	if match == nil {
		return "", false
	}
	return match[1], true
}
