package merge

import (
	"github.com/questlog/questlog/pkg/library"
)

// AuthorityProvider returns, for a field, the sources allowed to supply
// it in priority order. The first source offering a non-empty value wins.
type AuthorityProvider interface {
	Authorities(f library.Field) []library.Source
}

// defaultAuthorities implements the fixed catalog split: IGDB is
// authoritative for canonical game metadata; HowLongToBeat is the only
// source for the completion-time fields it uniquely provides.
type defaultAuthorities struct {
	table map[library.Field][]library.Source
}

// NewDefaultAuthorities returns the standard authority table.
func NewDefaultAuthorities() AuthorityProvider {
	return &defaultAuthorities{
		table: map[library.Field][]library.Source{
			library.FieldPlatforms:          {library.SourceIGDB},
			library.FieldGenres:             {library.SourceIGDB},
			library.FieldReleaseDate:        {library.SourceIGDB, library.SourceHLTB},
			library.FieldCoverURL:           {library.SourceIGDB, library.SourceHLTB},
			library.FieldCriticRating:       {library.SourceIGDB},
			library.FieldIGDBID:             {library.SourceIGDB},
			library.FieldIGDBURL:            {library.SourceIGDB},
			library.FieldHLTBID:             {library.SourceHLTB},
			library.FieldHLTBURL:            {library.SourceHLTB},
			library.FieldMainStoryHours:     {library.SourceHLTB},
			library.FieldMainExtraHours:     {library.SourceHLTB},
			library.FieldCompletionistHours: {library.SourceHLTB},
			library.FieldReviewScore:        {library.SourceHLTB},
		},
	}
}

// Authorities returns the priority-ordered sources for a field. Fields
// with no entry have no authority and are never merged.
func (a *defaultAuthorities) Authorities(f library.Field) []library.Source {
	return a.table[f]
}
