// Package catalog wraps the Spotify Web API behind a small typed interface
// used by the recommendation pipelines. It exposes two client flavours: an
// application-scoped client authenticated with service credentials only and
// a user-scoped client built from a session token. The package also owns the
// domain types and the error taxonomy shared by the rest of the application.

package catalog

import "strings"

// Track is an immutable snapshot of a catalog track at fetch time. ArtistID
// and ArtistName describe the track's first listed artist, which is the one
// all genre lookups use.
type Track struct {
	ID         string
	Name       string
	ArtistID   string
	ArtistName string
	Popularity int
	URI        string
}

// Artist carries the genre tags the pipelines aggregate over.
type Artist struct {
	ID     string
	Genres []string
}

// EnrichedTrack is a Track annotated with a joined genre string and, where a
// pipeline groups results, the genre that produced it.
type EnrichedTrack struct {
	Track
	Genres string
	Genre  string
}

// GenreCount is one entry of a genre population aggregated from a set of
// artists: one increment per genre per artist.
type GenreCount struct {
	Genre string
	Count int
}

// BareID returns the identifier segment after the final separator of a
// provider resource URI ("spotify:track:abc" -> "abc"). Seed and lookup
// calls use this form; only queue dispatch takes the full URI.
func BareID(uri string) string {
	if i := strings.LastIndex(uri, ":"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}
