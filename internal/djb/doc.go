// Package djb encodes the DJB archive platform's URL scheme and the
// station callsign detection logic.
//
// The platform serves everything through a single index.php endpoint,
// distinguished by query parameters:
//
//   - ?c=CODE&d=DD&m=MM&y=YYYY   index page for a station and date
//   - ?f=FILENAME&action=10      media download
//
// Remote filenames follow {CALLSIGN}-{YY}-{MM}-{DD}-{HH}-00.mp3, one
// file per broadcast hour.
//
// # Callsign Resolution
//
// The callsign is not part of account credentials; it has to be read off
// the archive's own pages. Use the Resolver after logging in:
//
//	resolver := djb.NewResolver(client, baseURL)
//	res, err := resolver.Resolve(ctx, time.Now())
//
// The Resolution is a tagged outcome: resolved, ambiguous (several
// stations, caller picks), or unresolved (caller supplies the callsign
// manually). Detect exposes the markup parsing on its own for callers
// that already hold the page.
//
// # Priming
//
// The media endpoint only answers for dates whose index page was visited
// earlier in the same session. IndexURL builds the priming URL; the
// download package owns the priming protocol itself.
package djb
