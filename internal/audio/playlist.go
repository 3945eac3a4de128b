package audio

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// PlaylistFormat represents supported playlist file formats.
//
// Each format has different features and compatibility:
//   - M3U: Simple text format, widely supported
//   - PLS: INI-style format, used by Winamp
//   - WPL: XML format, Windows Media Player
//   - ZPL: XML format, Zune/Groove Music
type PlaylistFormat int

const (
	// FormatM3U creates .m3u files (most compatible).
	// Can be extended with EXTINF lines for duration/title info.
	FormatM3U PlaylistFormat = iota

	// FormatPLS creates .pls files (Winamp/SHOUTcast format).
	FormatPLS

	// FormatWPL creates .wpl files (Windows Media Player).
	FormatWPL

	// FormatZPL creates .zpl files (Zune/Groove Music).
	FormatZPL
)

// FormatFromPath picks the playlist format from a filename extension.
// Unrecognized extensions fall back to M3U.
func FormatFromPath(path string) PlaylistFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pls":
		return FormatPLS
	case ".wpl":
		return FormatWPL
	case ".zpl":
		return FormatZPL
	default:
		return FormatM3U
	}
}

// Entry is one recording in a playlist.
type Entry struct {
	// Path to the recording; playlists reference its base name, so the
	// playlist file is expected to live in the same directory.
	Path string

	// Title shown by players, e.g. "BSR 2024-01-08".
	Title string

	// Duration in seconds, 0 when unknown.
	Duration float64
}

// Playlist describes the archive playlist to generate.
type Playlist struct {
	// Title of the whole playlist (XML formats carry it in a header).
	Title string

	// Station name, used by formats with per-item artist metadata.
	Station string

	Entries []Entry
}

// PlaylistCreator generates playlist files over an archive of merged
// recordings.
//
// Example:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true)
//	content := creator.CreatePlaylist(&audio.Playlist{
//	    Title:   "Late Night Show",
//	    Station: "BSR",
//	    Entries: entries,
//	})
//	os.WriteFile(filepath.Join(outputDir, "shows.m3u"), []byte(content), 0644)
//
//	// Result:
//	// #EXTM3U
//	// #EXTINF:9000,BSR 2024-01-08
//	// 2024-01-08.mp3
type PlaylistCreator struct {
	format   PlaylistFormat
	extended bool // For M3U: include EXTINF lines with duration/title
}

// NewPlaylistCreator creates a new PlaylistCreator.
//
// Parameters:
//   - format: The playlist format to generate
//   - extended: For M3U format, whether to include #EXTINF lines
//     (ignored for other formats)
func NewPlaylistCreator(format PlaylistFormat, extended bool) *PlaylistCreator {
	return &PlaylistCreator{
		format:   format,
		extended: extended,
	}
}

// CreatePlaylist generates playlist content for the given recordings.
//
// Returns the playlist as a string, ready to be written to a file in
// the recordings' directory.
func (p *PlaylistCreator) CreatePlaylist(pl *Playlist) string {
	switch p.format {
	case FormatM3U:
		return p.createM3U(pl)
	case FormatPLS:
		return p.createPLS(pl)
	case FormatWPL:
		return p.createWPL(pl)
	case FormatZPL:
		return p.createZPL(pl)
	default:
		return p.createM3U(pl)
	}
}

// createM3U generates an M3U playlist.
//
// Standard M3U format:
//
//	2024-01-08.mp3
//	2024-01-15.mp3
//
// Extended M3U format (when extended=true):
//
//	#EXTM3U
//	#EXTINF:9000,BSR 2024-01-08
//	2024-01-08.mp3
func (p *PlaylistCreator) createM3U(pl *Playlist) string {
	var sb strings.Builder

	if p.extended {
		sb.WriteString("#EXTM3U\n")
	}

	for _, entry := range pl.Entries {
		if p.extended {
			sb.WriteString(fmt.Sprintf("#EXTINF:%d,%s\n", int(entry.Duration), entry.Title))
		}
		sb.WriteString(filepath.Base(entry.Path) + "\n")
	}

	return sb.String()
}

// createPLS generates a PLS playlist.
//
// PLS format is an INI-style text file:
//
//	[playlist]
//	File1=2024-01-08.mp3
//	Title1=BSR 2024-01-08
//	Length1=9000
//	NumberOfEntries=1
//	Version=2
func (p *PlaylistCreator) createPLS(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("[playlist]\n")

	for i, entry := range pl.Entries {
		idx := i + 1
		sb.WriteString(fmt.Sprintf("File%d=%s\n", idx, filepath.Base(entry.Path)))
		sb.WriteString(fmt.Sprintf("Title%d=%s\n", idx, entry.Title))
		sb.WriteString(fmt.Sprintf("Length%d=%d\n", idx, int(entry.Duration)))
	}

	sb.WriteString(fmt.Sprintf("NumberOfEntries=%d\n", len(pl.Entries)))
	sb.WriteString("Version=2\n")

	return sb.String()
}

// createWPL generates a Windows Media Player playlist.
//
// WPL is an XML-based SMIL format used by Windows Media Player.
func (p *PlaylistCreator) createWPL(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?wpl version=\"1.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(pl.Title)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, entry := range pl.Entries {
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\"/>\n", escapeXML(filepath.Base(entry.Path))))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// createZPL generates a Zune/Groove Music playlist.
//
// ZPL is similar to WPL but includes additional metadata attributes
// like album title, artist, and track duration.
func (p *PlaylistCreator) createZPL(pl *Playlist) string {
	var sb strings.Builder

	sb.WriteString("<?zpl version=\"2.0\"?>\n")
	sb.WriteString("<smil>\n")
	sb.WriteString("  <head>\n")
	sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(pl.Title)))
	sb.WriteString("    <meta name=\"Generator\" content=\"djb-downloader\"/>\n")
	sb.WriteString(fmt.Sprintf("    <meta name=\"ItemCount\" content=\"%d\"/>\n", len(pl.Entries)))
	sb.WriteString("  </head>\n")
	sb.WriteString("  <body>\n")
	sb.WriteString("    <seq>\n")

	for _, entry := range pl.Entries {
		duration := time.Duration(entry.Duration * float64(time.Second))
		sb.WriteString(fmt.Sprintf("      <media src=\"%s\" albumTitle=\"%s\" albumArtist=\"%s\" trackTitle=\"%s\" trackArtist=\"%s\" duration=\"%d\"/>\n",
			escapeXML(filepath.Base(entry.Path)),
			escapeXML(pl.Title),
			escapeXML(pl.Station),
			escapeXML(entry.Title),
			escapeXML(pl.Station),
			int(duration.Milliseconds())))
	}

	sb.WriteString("    </seq>\n")
	sb.WriteString("  </body>\n")
	sb.WriteString("</smil>\n")

	return sb.String()
}

// escapeXML escapes special XML characters in a string.
//
// Replaces: & < > " '
// With:     &amp; &lt; &gt; &quot; &apos;
func escapeXML(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&apos;")
	return s
}
