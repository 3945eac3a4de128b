package audio

import (
	"fmt"
	"os"
	"time"

	"github.com/bogem/id3v2"
)

// TagEditAction defines how to handle individual ID3 tags.
//
// Each tag field can be configured independently to determine whether
// it should be modified, cleared, or left unchanged.
type TagEditAction int

const (
	// TagEmpty clears the tag value (sets to empty string).
	TagEmpty TagEditAction = iota

	// TagModify updates the tag from the recording's metadata.
	TagModify

	// TagDoNotModify leaves the existing tag value unchanged.
	TagDoNotModify
)

// TagConfig holds tagging configuration for each ID3 field.
//
// Merged recordings usually arrive with no tags at all (the platform
// serves raw MP3 segments), so the default is to fill everything in.
//
// Example:
//
//	cfg := &TagConfig{
//	    ModifyTags: true,
//	    Artist:     TagModify,      // station name
//	    Album:      TagModify,      // show name
//	    Title:      TagModify,      // show name and air date
//	    Year:       TagModify,
//	    Date:       TagModify,
//	    Comments:   TagEmpty,       // clear anything the platform left
//	}
type TagConfig struct {
	// ModifyTags is a master switch. If false, no string tags are modified.
	ModifyTags bool

	// Artist controls the TPE1 (Lead artist) frame.
	Artist TagEditAction

	// AlbumArtist controls the TPE2 (Album artist) frame.
	AlbumArtist TagEditAction

	// Album controls the TALB (Album title) frame.
	Album TagEditAction

	// Year controls the TYER (Year) frame.
	Year TagEditAction

	// Date controls the TDRC (Recording time) frame (ID3v2.4).
	Date TagEditAction

	// Title controls the TIT2 (Title) frame.
	Title TagEditAction

	// Comments controls the COMM (Comments) frame.
	Comments TagEditAction
}

// DefaultTagConfig returns the default tag configuration: every field
// filled from the recording's metadata, comments cleared.
func DefaultTagConfig() *TagConfig {
	return &TagConfig{
		ModifyTags:  true,
		Artist:      TagModify,
		AlbumArtist: TagModify,
		Album:       TagModify,
		Year:        TagModify,
		Date:        TagModify,
		Title:       TagModify,
		Comments:    TagEmpty,
	}
}

// ShowInfo carries the broadcast metadata written into a recording's
// tags.
type ShowInfo struct {
	// Station is the broadcasting station's display name, written as
	// the artist. Falls back to the callsign when no friendly name is
	// configured.
	Station string

	// Show is the program title, written as the album so players group
	// a season of recordings together.
	Show string
}

// Tagger writes ID3 tags to merged recordings.
//
// Tagger uses the id3v2 library to set artist, album, title, year,
// recording date and embedded cover art on the final per-date MP3.
//
// Example:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(outputPath, airDate, info, artworkBytes)
//	if err != nil {
//	    log.Printf("failed to tag %s: %v", outputPath, err)
//	}
type Tagger struct {
	config *TagConfig
}

// NewTagger creates a new Tagger with the given configuration.
//
// If config is nil, DefaultTagConfig() is used.
func NewTagger(config *TagConfig) *Tagger {
	if config == nil {
		config = DefaultTagConfig()
	}
	return &Tagger{config: config}
}

// SaveTags writes ID3 tags to the recording at path.
//
// The air date provides the year/date frames and the date suffix in the
// title. Artwork, when non-nil, is embedded as the front cover (JPEG
// bytes). Returns an error if the file cannot be opened or saved.
func (t *Tagger) SaveTags(path string, date time.Time, info ShowInfo, artwork []byte) error {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		if os.IsNotExist(err) {
			tag = id3v2.NewEmptyTag()
		} else {
			return err
		}
	}
	defer tag.Close()

	if t.config.ModifyTags {
		t.updateStringTags(tag, date, info)
	}

	if artwork != nil {
		t.updateArtwork(tag, artwork)
	}

	return tag.Save()
}

// showTitle builds the TIT2 value: the show name followed by the air
// date, or just the date when no show name is configured.
func showTitle(info ShowInfo, date time.Time) string {
	day := date.Format("2006-01-02")
	if info.Show == "" {
		return day
	}
	return fmt.Sprintf("%s %s", info.Show, day)
}

// updateStringTags updates text-based ID3 frames based on configuration.
func (t *Tagger) updateStringTags(tag *id3v2.Tag, date time.Time, info ShowInfo) {
	// Artist (TPE1)
	switch t.config.Artist {
	case TagEmpty:
		tag.SetArtist("")
	case TagModify:
		tag.SetArtist(info.Station)
	}

	// Album (TALB)
	switch t.config.Album {
	case TagEmpty:
		tag.SetAlbum("")
	case TagModify:
		tag.SetAlbum(info.Show)
	}

	// Album Artist (TPE2)
	switch t.config.AlbumArtist {
	case TagEmpty:
		tag.DeleteFrames("TPE2")
	case TagModify:
		tag.AddTextFrame("TPE2", id3v2.EncodingUTF8, info.Station)
	}

	// Year (TYER) - ID3v2.3
	switch t.config.Year {
	case TagEmpty:
		tag.DeleteFrames("TYER")
	case TagModify:
		tag.AddTextFrame("TYER", id3v2.EncodingUTF8, date.Format("2006"))
	}

	// Date (TDRC) - ID3v2.4
	switch t.config.Date {
	case TagEmpty:
		tag.DeleteFrames("TDRC")
	case TagModify:
		tag.AddTextFrame("TDRC", id3v2.EncodingUTF8, date.Format("2006-01-02"))
	}

	// Title (TIT2)
	switch t.config.Title {
	case TagEmpty:
		tag.SetTitle("")
	case TagModify:
		tag.SetTitle(showTitle(info, date))
	}

	// Comments (COMM)
	if t.config.Comments == TagEmpty {
		tag.DeleteFrames(tag.CommonID("Comments"))
	}

	// Broadcast recordings all get the same genre.
	tag.SetGenre("Radio")
}

// updateArtwork embeds cover art as an attached picture frame.
func (t *Tagger) updateArtwork(tag *id3v2.Tag, artwork []byte) {
	// Remove any existing cover pictures
	tag.DeleteFrames(tag.CommonID("Attached picture"))

	// Add new artwork as front cover (APIC frame)
	pic := id3v2.PictureFrame{
		Encoding:    id3v2.EncodingUTF8,
		MimeType:    "image/jpeg",
		PictureType: id3v2.PTFrontCover,
		Description: "Cover",
		Picture:     artwork,
	}
	tag.AddAttachedPicture(pic)
}
