// Package musicbrainz provides a rate-limited client for the MusicBrainz
// API plus the candidate-selection heuristics that pick a single
// recording/release for sparse DJ metadata.
package musicbrainz

import (
	"sort"
	"strings"
)

// ArtistCredit is one contributor entry on a recording or release.
// Order is significant and must round-trip: a jointly credited recording
// keeps its contributors in credited order.
type ArtistCredit struct {
	Name       string
	ArtistID   string
	JoinPhrase string
}

// ReleaseGroupInfo is the abstract "same album across editions" grouping.
type ReleaseGroupInfo struct {
	ID             string
	Title          string
	PrimaryType    string
	SecondaryTypes []string
}

// IsCompilationOrLive reports whether the group is typed as a compilation
// or carries Compilation/Live among its secondary types.
func (g *ReleaseGroupInfo) IsCompilationOrLive() bool {
	if g.PrimaryType == "Compilation" {
		return true
	}
	for _, s := range g.SecondaryTypes {
		if s == "Compilation" || s == "Live" {
			return true
		}
	}
	return false
}

// CandidateRelease is one issued product carrying a candidate recording.
type CandidateRelease struct {
	ID                 string
	Title              string
	ArtistCreditPhrase string
	Date               string
	Status             string
	Label              string
	ReleaseGroup       *ReleaseGroupInfo
}

// Genre is a tag with its usage count.
type Genre struct {
	Name  string
	Count int
}

// CandidateRecording is a distinct audio performance with the releases it
// appears on.
type CandidateRecording struct {
	ID               string
	Title            string
	FirstReleaseDate string
	ArtistCredit     []ArtistCredit
	Releases         []CandidateRelease
	ISRCs            []string
	Genres           []Genre
}

// ArtistIDs returns the artist ids in credited order.
func (r *CandidateRecording) ArtistIDs() []string {
	ids := make([]string, 0, len(r.ArtistCredit))
	for _, c := range r.ArtistCredit {
		if c.ArtistID != "" {
			ids = append(ids, c.ArtistID)
		}
	}
	return ids
}

// CreditedArtist joins the credit entries with their join phrases into
// the display artist string.
func (r *CandidateRecording) CreditedArtist() string {
	return joinCredit(r.ArtistCredit)
}

// GenreString joins the genres, most used first, into a "/"-separated
// display string.
func (r *CandidateRecording) GenreString() string {
	if len(r.Genres) == 0 {
		return ""
	}
	genres := make([]Genre, len(r.Genres))
	copy(genres, r.Genres)
	sort.SliceStable(genres, func(i, j int) bool {
		return genres[i].Count > genres[j].Count
	})
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, g.Name)
	}
	return strings.Join(names, "/")
}

// GenreNames returns the genre names, most used first.
func (r *CandidateRecording) GenreNames() []string {
	s := r.GenreString()
	if s == "" {
		return nil
	}
	return strings.Split(s, "/")
}

// RecordingSearchResult is a decoded recording search page. Count is the
// provider's total hit count, which may exceed the page size.
type RecordingSearchResult struct {
	Count      int
	Recordings []CandidateRecording
}

// URLRelation is an external link attached to an artist.
type URLRelation struct {
	Type   string
	Target string
}

// ArtistDetail carries an artist's canonical name and link relations.
type ArtistDetail struct {
	ID        string
	Name      string
	Relations []URLRelation
}

func joinCredit(credits []ArtistCredit) string {
	var b strings.Builder
	for _, c := range credits {
		b.WriteString(c.Name)
		b.WriteString(c.JoinPhrase)
	}
	return b.String()
}
