package utils

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-manager-api/internal/constants"
)

type SearchMode int

const (
	// SearchAll applies no text filter.
	SearchAll SearchMode = iota
	// SearchNothing matches no rows.
	SearchNothing
	// SearchContains matches rows where any searched column contains the text.
	SearchContains
)

// SearchTerm is a parsed free-text search parameter.
type SearchTerm struct {
	Mode SearchMode
	Text string
}

// ParseSearchTerm interprets a raw search value. present is false when the
// parameter was not supplied at all.
//
//	absent      -> SearchAll
//	"*"         -> SearchAll
//	"" / "   "  -> SearchNothing
//	otherwise   -> SearchContains with the trimmed, lower-cased text
func ParseSearchTerm(raw string, present bool) SearchTerm {
	if !present {
		return SearchTerm{Mode: SearchAll}
	}

	trimmed := strings.TrimSpace(raw)
	switch trimmed {
	case constants.SearchMatchAll:
		return SearchTerm{Mode: SearchAll}
	case "":
		return SearchTerm{Mode: SearchNothing}
	}

	return SearchTerm{Mode: SearchContains, Text: strings.ToLower(trimmed)}
}

// GetSearchTerm reads the "search" query parameter.
func GetSearchTerm(c *gin.Context) SearchTerm {
	raw, present := c.GetQuery("search")
	return ParseSearchTerm(raw, present)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// LikePattern returns a LIKE pattern matching any value containing the term.
// Wildcards in the term are escaped with a backslash.
func (t SearchTerm) LikePattern() string {
	return "%" + likeEscaper.Replace(t.Text) + "%"
}
