// Package audio wraps the external audio tooling and file metadata
// services: segment concatenation, decode verification, ID3 tagging
// and playlist generation.
//
// # Merging
//
// Use the Merger to concatenate a date's downloaded segments into one
// recording via ffmpeg's concat demuxer (stream copy, no re-encode):
//
//	merger := audio.NewMerger(ffmpegPath, maxSeconds)
//	err := merger.Merge(ctx, segmentPaths, outputPath)
//
// # Verification
//
// Use the Prober to confirm a file decodes to playable audio. It runs
// ffprobe and checks for at least one audio stream with a positive
// duration:
//
//	prober := audio.NewProber(ffprobePath)
//	err := prober.VerifyAudio(ctx, path)
//
// CheckTools preflights both binaries before a batch starts.
//
// # ID3 Tagging
//
// Use the Tagger to write station/show metadata and cover art onto
// merged recordings:
//
//	tagger := audio.NewTagger(audio.DefaultTagConfig())
//	err := tagger.SaveTags(outputPath, airDate, info, artworkBytes)
//
// # Playlist Generation
//
// Generate an archive playlist over the merged recordings:
//
//	creator := audio.NewPlaylistCreator(audio.FormatM3U, true) // extended M3U
//	content := creator.CreatePlaylist(playlist)
//	os.WriteFile(playlistPath, []byte(content), 0644)
//
// Supported formats:
//   - M3U (with optional extended info)
//   - PLS
//   - WPL (Windows Media Player)
//   - ZPL (Zune Media Player)
package audio
