package notion

import (
	"github.com/questlog/questlog/pkg/errors"
	"github.com/questlog/questlog/pkg/library"
)

// Database property names. The tracking database is expected to carry
// these exact columns.
const (
	propTitle          = "Name"
	propPlatforms      = "Platforms"
	propGenres         = "Genres"
	propReleaseDate    = "Release Date"
	propCover          = "Cover"
	propCriticRating   = "Critic Rating"
	propIGDBID         = "IGDB ID"
	propIGDBURL        = "IGDB URL"
	propHLTBID         = "HLTB ID"
	propHLTBURL        = "HLTB URL"
	propMainStory      = "Main Story (h)"
	propMainExtra      = "Main + Extras (h)"
	propCompletionist  = "Completionist (h)"
	propReviewScore    = "Review Score"
	propPersonalRating = "Personal Rating"
	propStatus         = "Status"
	propNotes          = "Notes"
	propOwned          = "Owned"
)

// propertyName maps each enrichable field to its database column.
var propertyName = map[library.Field]string{
	library.FieldPlatforms:          propPlatforms,
	library.FieldGenres:             propGenres,
	library.FieldReleaseDate:        propReleaseDate,
	library.FieldCoverURL:           propCover,
	library.FieldCriticRating:       propCriticRating,
	library.FieldIGDBID:             propIGDBID,
	library.FieldIGDBURL:            propIGDBURL,
	library.FieldHLTBID:             propHLTBID,
	library.FieldHLTBURL:            propHLTBURL,
	library.FieldMainStoryHours:     propMainStory,
	library.FieldMainExtraHours:     propMainExtra,
	library.FieldCompletionistHours: propCompletionist,
	library.FieldReviewScore:        propReviewScore,
}

// Wire shapes for the Notion property object, shared by decoding and
// encoding. Only the property types the database uses are modeled.

type textContent struct {
	Content string `json:"content"`
}

type richText struct {
	PlainText string       `json:"plain_text,omitempty"`
	Text      *textContent `json:"text,omitempty"`
}

type option struct {
	Name string `json:"name"`
}

type dateValue struct {
	Start string `json:"start"`
}

type property struct {
	Type        string     `json:"type,omitempty"`
	Title       []richText `json:"title,omitempty"`
	RichText    []richText `json:"rich_text,omitempty"`
	Number      *float64   `json:"number,omitempty"`
	URL         *string    `json:"url,omitempty"`
	MultiSelect []option   `json:"multi_select,omitempty"`
	Select      *option    `json:"select,omitempty"`
	Date        *dateValue `json:"date,omitempty"`
}

type page struct {
	ID         string              `json:"id"`
	Properties map[string]property `json:"properties"`
}

// decodeRecord converts one database page into a library record.
func decodeRecord(p page) (*library.Record, error) {
	r := &library.Record{ID: p.ID}

	r.Title = plainText(p.Properties[propTitle].Title)
	if r.Title == "" {
		return nil, &errors.ParseError{
			Format:  "notion",
			Source:  p.ID,
			Message: "page has no title",
		}
	}

	r.Platforms = optionNames(p.Properties[propPlatforms].MultiSelect)
	r.Genres = optionNames(p.Properties[propGenres].MultiSelect)
	r.CoverURL = urlValue(p.Properties[propCover])
	r.CriticRating = numberValue(p.Properties[propCriticRating])
	r.IGDBID = plainText(p.Properties[propIGDBID].RichText)
	r.IGDBURL = urlValue(p.Properties[propIGDBURL])
	r.HLTBID = plainText(p.Properties[propHLTBID].RichText)
	r.HLTBURL = urlValue(p.Properties[propHLTBURL])
	r.MainStoryHours = numberValue(p.Properties[propMainStory])
	r.MainExtraHours = numberValue(p.Properties[propMainExtra])
	r.CompletionistHours = numberValue(p.Properties[propCompletionist])
	r.ReviewScore = numberValue(p.Properties[propReviewScore])

	if d := p.Properties[propReleaseDate].Date; d != nil && d.Start != "" {
		date, err := library.ParseDate(d.Start)
		if err != nil {
			return nil, errors.WrapParse("date", p.ID, err)
		}
		r.ReleaseDate = date
	}

	// User-owned properties, carried for round-tripping only.
	r.PersonalRating = numberValue(p.Properties[propPersonalRating])
	if s := p.Properties[propStatus].Select; s != nil {
		r.Status = s.Name
	}
	r.Notes = plainText(p.Properties[propNotes].RichText)
	r.Owned = optionNames(p.Properties[propOwned].MultiSelect)

	return r, nil
}

// encodeChanges converts a merged update into the properties payload of
// a partial page update. Only enrichable fields have property mappings,
// so user-owned columns can never appear here.
func encodeChanges(changes library.MergedUpdate) map[string]property {
	props := make(map[string]property, len(changes))
	for _, field := range changes.Fields() {
		name, ok := propertyName[field]
		if !ok {
			continue
		}
		props[name] = encodeValue(field, changes[field].Value)
	}
	return props
}

func encodeValue(field library.Field, value any) property {
	switch field {
	case library.FieldPlatforms, library.FieldGenres:
		names, _ := value.([]string)
		opts := make([]option, 0, len(names))
		for _, n := range names {
			opts = append(opts, option{Name: n})
		}
		return property{MultiSelect: opts}

	case library.FieldReleaseDate:
		d, _ := value.(library.Date)
		return property{Date: &dateValue{Start: d.String()}}

	case library.FieldCoverURL, library.FieldIGDBURL, library.FieldHLTBURL:
		s, _ := value.(string)
		return property{URL: &s}

	case library.FieldIGDBID, library.FieldHLTBID:
		s, _ := value.(string)
		return property{RichText: []richText{{Text: &textContent{Content: s}}}}

	default:
		// Remaining enrichable fields are all numbers.
		n, _ := value.(float64)
		return property{Number: &n}
	}
}

func plainText(parts []richText) string {
	var s string
	for _, p := range parts {
		if p.PlainText != "" {
			s += p.PlainText
		} else if p.Text != nil {
			s += p.Text.Content
		}
	}
	return s
}

func optionNames(opts []option) []string {
	if len(opts) == 0 {
		return nil
	}
	names := make([]string, 0, len(opts))
	for _, o := range opts {
		names = append(names, o.Name)
	}
	return names
}

func urlValue(p property) string {
	if p.URL == nil {
		return ""
	}
	return *p.URL
}

func numberValue(p property) float64 {
	if p.Number == nil {
		return 0
	}
	return *p.Number
}
