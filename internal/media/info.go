package media

// Info is the slice of an extractor metadata dump that the service consumes.
// Fields not listed here are ignored on unmarshal.
type Info struct {
	Type             string      `json:"_type,omitempty"`
	ID               string      `json:"id,omitempty"`
	Title            string      `json:"title,omitempty"`
	URL              string      `json:"url,omitempty"`
	Thumbnail        string      `json:"thumbnail,omitempty"`
	Thumbnails       []Thumbnail `json:"thumbnails,omitempty"`
	Formats          []Format    `json:"formats,omitempty"`
	RequestedFormats []Format    `json:"requested_formats,omitempty"`
	Entries          []Info      `json:"entries,omitempty"`
}

type Thumbnail struct {
	URL    string `json:"url"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

type Format struct {
	URL    string  `json:"url,omitempty"`
	Height int     `json:"height,omitempty"`
	ABR    float64 `json:"abr,omitempty"`
}

// BestThumbnail picks the thumbnail with the largest pixel area, falling
// back to the single thumbnail field when the list yields nothing.
func BestThumbnail(info *Info) string {
	if info == nil {
		return ""
	}
	bestURL := ""
	bestArea := -1
	for _, thumb := range info.Thumbnails {
		if thumb.URL == "" {
			continue
		}
		area := thumb.Width * thumb.Height
		if area > bestArea {
			bestArea = area
			bestURL = thumb.URL
		}
	}
	if bestURL != "" {
		return bestURL
	}
	return info.Thumbnail
}

// StreamURL resolves a direct playback URL from extracted metadata.
// Priority: requested_formats[0] -> the top-level url -> the best entry of
// formats ordered by height, then audio bitrate. Playlists resolve through
// their first entry.
func StreamURL(info *Info) string {
	if info == nil {
		return ""
	}
	if info.Type == "playlist" {
		if len(info.Entries) == 0 {
			return ""
		}
		return pickStreamURL(&info.Entries[0])
	}
	return pickStreamURL(info)
}

func pickStreamURL(info *Info) string {
	if len(info.RequestedFormats) > 0 && info.RequestedFormats[0].URL != "" {
		return info.RequestedFormats[0].URL
	}
	if info.URL != "" {
		return info.URL
	}
	if len(info.Formats) == 0 {
		return ""
	}
	best := info.Formats[0]
	for _, format := range info.Formats[1:] {
		if format.Height > best.Height || (format.Height == best.Height && format.ABR > best.ABR) {
			best = format
		}
	}
	return best.URL
}
