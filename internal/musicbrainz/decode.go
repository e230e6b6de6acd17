package musicbrainz

import "encoding/json"

// Raw ws/2 JSON shapes. Only the fields the resolver needs are mapped.

type artistCreditJSON struct {
	Name   string `json:"name"`
	Artist struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"artist"`
	JoinPhrase string `json:"joinphrase"`
}

type genreJSON struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type releaseGroupJSON struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	PrimaryType    string   `json:"primary-type"`
	SecondaryTypes []string `json:"secondary-types"`
}

type labelInfoJSON struct {
	Label *struct {
		Name string `json:"name"`
	} `json:"label"`
}

type releaseJSON struct {
	ID           string             `json:"id"`
	Title        string             `json:"title"`
	Status       string             `json:"status"`
	Date         string             `json:"date"`
	ArtistCredit []artistCreditJSON `json:"artist-credit"`
	ReleaseGroup *releaseGroupJSON  `json:"release-group"`
	LabelInfo    []labelInfoJSON    `json:"label-info"`
}

type recordingJSON struct {
	ID               string             `json:"id"`
	Title            string             `json:"title"`
	FirstReleaseDate string             `json:"first-release-date"`
	ArtistCredit     []artistCreditJSON `json:"artist-credit"`
	Releases         []releaseJSON      `json:"releases"`
	ISRCs            []string           `json:"isrcs"`
	Genres           []genreJSON        `json:"genres"`
}

type recordingSearchJSON struct {
	Count      int             `json:"count"`
	Recordings []recordingJSON `json:"recordings"`
}

type releaseBrowseJSON struct {
	Releases []releaseJSON `json:"releases"`
}

type artistDetailJSON struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Relations []struct {
		Type string `json:"type"`
		URL  *struct {
			Resource string `json:"resource"`
		} `json:"url"`
	} `json:"relations"`
}

// DecodeRecordingSearch parses a recording search or ISRC lookup payload
// into candidate recordings. Malformed input yields a ParseError, which
// callers treat the same as a failed lookup.
func DecodeRecordingSearch(raw []byte) (*RecordingSearchResult, error) {
	var wire recordingSearchJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Err: err}
	}
	result := &RecordingSearchResult{
		Count:      wire.Count,
		Recordings: make([]CandidateRecording, 0, len(wire.Recordings)),
	}
	for i := range wire.Recordings {
		result.Recordings = append(result.Recordings, convertRecording(&wire.Recordings[i]))
	}
	if result.Count == 0 {
		result.Count = len(result.Recordings)
	}
	return result, nil
}

// DecodeRecordingDetail parses a single recording lookup payload.
func DecodeRecordingDetail(raw []byte) (*CandidateRecording, error) {
	var wire recordingJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Err: err}
	}
	rec := convertRecording(&wire)
	return &rec, nil
}

// DecodeReleaseBrowse parses a release browse payload.
func DecodeReleaseBrowse(raw []byte) ([]CandidateRelease, error) {
	var wire releaseBrowseJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Err: err}
	}
	releases := make([]CandidateRelease, 0, len(wire.Releases))
	for i := range wire.Releases {
		releases = append(releases, convertRelease(&wire.Releases[i]))
	}
	return releases, nil
}

// DecodeArtistDetail parses an artist lookup with url-rels.
func DecodeArtistDetail(raw []byte) (*ArtistDetail, error) {
	var wire artistDetailJSON
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ParseError{Err: err}
	}
	detail := &ArtistDetail{ID: wire.ID, Name: wire.Name}
	for _, rel := range wire.Relations {
		if rel.URL == nil || rel.URL.Resource == "" {
			continue
		}
		detail.Relations = append(detail.Relations, URLRelation{
			Type:   rel.Type,
			Target: rel.URL.Resource,
		})
	}
	return detail, nil
}

func convertRecording(wire *recordingJSON) CandidateRecording {
	rec := CandidateRecording{
		ID:               wire.ID,
		Title:            wire.Title,
		FirstReleaseDate: wire.FirstReleaseDate,
		ISRCs:            wire.ISRCs,
	}
	for _, c := range wire.ArtistCredit {
		rec.ArtistCredit = append(rec.ArtistCredit, convertCredit(c))
	}
	for i := range wire.Releases {
		rec.Releases = append(rec.Releases, convertRelease(&wire.Releases[i]))
	}
	for _, g := range wire.Genres {
		rec.Genres = append(rec.Genres, Genre{Name: g.Name, Count: g.Count})
	}
	return rec
}

func convertRelease(wire *releaseJSON) CandidateRelease {
	rel := CandidateRelease{
		ID:     wire.ID,
		Title:  wire.Title,
		Status: wire.Status,
		Date:   wire.Date,
	}
	credits := make([]ArtistCredit, 0, len(wire.ArtistCredit))
	for _, c := range wire.ArtistCredit {
		credits = append(credits, convertCredit(c))
	}
	rel.ArtistCreditPhrase = joinCredit(credits)
	if wire.ReleaseGroup != nil {
		rel.ReleaseGroup = &ReleaseGroupInfo{
			ID:             wire.ReleaseGroup.ID,
			Title:          wire.ReleaseGroup.Title,
			PrimaryType:    wire.ReleaseGroup.PrimaryType,
			SecondaryTypes: wire.ReleaseGroup.SecondaryTypes,
		}
	}
	for _, li := range wire.LabelInfo {
		if li.Label != nil && li.Label.Name != "" {
			rel.Label = li.Label.Name
			break
		}
	}
	return rel
}

func convertCredit(wire artistCreditJSON) ArtistCredit {
	name := wire.Name
	if name == "" {
		name = wire.Artist.Name
	}
	return ArtistCredit{
		Name:       name,
		ArtistID:   wire.Artist.ID,
		JoinPhrase: wire.JoinPhrase,
	}
}
