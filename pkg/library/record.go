package library

// Field names an enrichable record field. Only fields in this set may
// appear in a MergedUpdate; user-owned fields are deliberately not
// representable as Fields.
type Field string

// Enrichable fields.
const (
	FieldPlatforms          Field = "platforms"
	FieldGenres             Field = "genres"
	FieldReleaseDate        Field = "release_date"
	FieldCoverURL           Field = "cover_url"
	FieldCriticRating       Field = "critic_rating"
	FieldIGDBID             Field = "igdb_id"
	FieldIGDBURL            Field = "igdb_url"
	FieldHLTBID             Field = "hltb_id"
	FieldHLTBURL            Field = "hltb_url"
	FieldMainStoryHours     Field = "main_story_hours"
	FieldMainExtraHours     Field = "main_extra_hours"
	FieldCompletionistHours Field = "completionist_hours"
	FieldReviewScore        Field = "review_score"
)

// Fields lists every enrichable field in a fixed, deterministic order.
func Fields() []Field {
	return []Field{
		FieldPlatforms,
		FieldGenres,
		FieldReleaseDate,
		FieldCoverURL,
		FieldCriticRating,
		FieldIGDBID,
		FieldIGDBURL,
		FieldHLTBID,
		FieldHLTBURL,
		FieldMainStoryHours,
		FieldMainExtraHours,
		FieldCompletionistHours,
		FieldReviewScore,
	}
}

// UserOwnedFields are the record properties curated by the user. The
// reconciliation core must never read them from catalogs nor write them.
// They are identified by their document-store property names because
// they have no Field representation.
var UserOwnedFields = map[string]bool{
	"personal_rating": true,
	"status":          true,
	"notes":           true,
	"owned":           true,
}

// Record is the user-facing entity: one tracked game in the document
// store. It is created by the user, read once per reconciliation pass,
// and mutated only through the update applier.
type Record struct {
	// ID is the stable identifier assigned by the document store.
	ID string

	// Title is user-editable and drives catalog matching.
	Title string

	// External catalog identifiers, empty when not yet resolved.
	IGDBID string
	HLTBID string

	// Enrichable fields.
	Platforms          []string
	Genres             []string
	ReleaseDate        Date
	CoverURL           string
	CriticRating       float64
	IGDBURL            string
	HLTBURL            string
	MainStoryHours     float64
	MainExtraHours     float64
	CompletionistHours float64
	ReviewScore        float64

	// User-owned fields. Carried for round-tripping only; the
	// reconciliation core never touches them.
	PersonalRating float64
	Status         string
	Notes          string
	Owned          []string
}

// Value returns the record's current value for an enrichable field.
func (r *Record) Value(f Field) any {
	switch f {
	case FieldPlatforms:
		return r.Platforms
	case FieldGenres:
		return r.Genres
	case FieldReleaseDate:
		return r.ReleaseDate
	case FieldCoverURL:
		return r.CoverURL
	case FieldCriticRating:
		return r.CriticRating
	case FieldIGDBID:
		return r.IGDBID
	case FieldIGDBURL:
		return r.IGDBURL
	case FieldHLTBID:
		return r.HLTBID
	case FieldHLTBURL:
		return r.HLTBURL
	case FieldMainStoryHours:
		return r.MainStoryHours
	case FieldMainExtraHours:
		return r.MainExtraHours
	case FieldCompletionistHours:
		return r.CompletionistHours
	case FieldReviewScore:
		return r.ReviewScore
	default:
		return nil
	}
}

// Candidate is an external catalog's representation of a possible match.
// Fields not provided by the catalog are left at their zero values.
type Candidate struct {
	// ID is the catalog's identifier for the game (IGDB slug, HLTB id).
	ID string

	// Title as the catalog spells it.
	Title string

	// Score is the similarity score computed by the matcher. Zero until
	// the candidate has been scored.
	Score float64

	Platforms          []string
	Genres             []string
	ReleaseDate        Date
	CoverURL           string
	CriticRating       float64
	URL                string
	MainStoryHours     float64
	MainExtraHours     float64
	CompletionistHours float64
	ReviewScore        float64
}

// Value returns the candidate's value for an enrichable field, or nil
// when the candidate does not carry it. Identifier and URL fields map to
// the candidate's own ID and URL regardless of catalog.
func (c *Candidate) Value(f Field) any {
	switch f {
	case FieldPlatforms:
		return c.Platforms
	case FieldGenres:
		return c.Genres
	case FieldReleaseDate:
		return c.ReleaseDate
	case FieldCoverURL:
		return c.CoverURL
	case FieldCriticRating:
		return c.CriticRating
	case FieldIGDBID, FieldHLTBID:
		return c.ID
	case FieldIGDBURL, FieldHLTBURL:
		return c.URL
	case FieldMainStoryHours:
		return c.MainStoryHours
	case FieldMainExtraHours:
		return c.MainExtraHours
	case FieldCompletionistHours:
		return c.CompletionistHours
	case FieldReviewScore:
		return c.ReviewScore
	default:
		return nil
	}
}
