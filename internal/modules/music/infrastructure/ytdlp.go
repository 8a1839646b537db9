package infrastructure

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lrstanley/go-ytdlp"

	"github.com/maestro-bot/maestro/internal/modules/music/application/ports"
)

// printFields is the tab-separated metadata layout requested from yt-dlp.
const printFields = "%(id)s\t%(url)s\t%(title)s\t%(thumbnail)s\t%(duration)s"

// YtdlpResolver resolves queries with the yt-dlp binary. It is the fallback
// for installations without a search-capable Lavalink source: entries resolve
// to their page URLs, which the voice sink loads on dispatch.
type YtdlpResolver struct {
	maxItems int
}

// NewYtdlpResolver creates a resolver that extracts at most maxItems playlist
// entries per query.
func NewYtdlpResolver(maxItems int) *YtdlpResolver {
	if maxItems <= 0 {
		maxItems = 10
	}
	return &YtdlpResolver{maxItems: maxItems}
}

// Resolve extracts track metadata for a URL or search query. Search queries
// return the top result.
func (r *YtdlpResolver) Resolve(ctx context.Context, query string) ([]ports.ResolvedTrack, error) {
	target := query
	if !strings.HasPrefix(query, "http://") && !strings.HasPrefix(query, "https://") {
		target = "ytsearch1:" + query
	}

	res, err := ytdlp.New().
		FlatPlaylist().
		Print(printFields).
		PlaylistItems(fmt.Sprintf("1-%d", r.maxItems)).
		NoWarnings().
		IgnoreConfig().
		Run(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("yt-dlp failed for %q: %w", query, err)
	}

	return parseYtdlpOutput(res.Stdout), nil
}

// parseYtdlpOutput turns the printed metadata lines into track descriptors.
// Malformed lines are skipped.
func parseYtdlpOutput(stdout string) []ports.ResolvedTrack {
	var tracks []ports.ResolvedTrack
	for _, line := range strings.Split(strings.TrimSpace(stdout), "\n") {
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")
		if len(fields) != 5 {
			continue
		}

		track := ports.ResolvedTrack{
			ID:            naEmpty(fields[0]),
			StreamLocator: naEmpty(fields[1]),
			Title:         naEmpty(fields[2]),
			ThumbnailURL:  naEmpty(fields[3]),
			PageURL:       naEmpty(fields[1]),
		}
		if seconds := naEmpty(fields[4]); seconds != "" {
			if d, err := time.ParseDuration(seconds + "s"); err == nil {
				track.Duration = d
			}
		}
		tracks = append(tracks, track)
	}

	return tracks
}

// naEmpty maps yt-dlp's "NA" placeholder to an empty string.
func naEmpty(s string) string {
	if s == "NA" {
		return ""
	}
	return s
}

// Ensure YtdlpResolver implements ports.Resolver.
var _ ports.Resolver = (*YtdlpResolver)(nil)
