package handlers

import (
	"bytes"
	"html/template"
	"net/http"
	"sort"
	"translation-api/internal/database"
	"translation-api/internal/translation"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// OverviewHeader lists the admin table columns.
var OverviewHeader = []string{"Title", "Key", "Category", "German", "English", "French", "Italian"}

const (
	emptyNoRecords   = "No translations found."
	emptyUnavailable = "Translation storage is not available."
)

// Overview is the admin table of all translations.
type Overview struct {
	Header []string   `json:"header"`
	Rows   [][]string `json:"rows"`
	Empty  string     `json:"empty"`
}

var overviewTemplate = template.Must(template.New("overview").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Translations</title></head>
<body>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range .}}<td>{{.}}</td>{{end}}</tr>
{{- else}}
<tr><td colspan="{{len .Header}}">{{.Empty}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// AdminHandler serves the uncached admin overview.
type AdminHandler struct {
	store  translation.RecordStore
	logger zerolog.Logger
}

// NewAdminHandler creates an AdminHandler.
func NewAdminHandler(store translation.RecordStore, logger zerolog.Logger) *AdminHandler {
	return &AdminHandler{store: store, logger: logger}
}

// Overview handles GET /admin/translations
// Renders every published translation sorted by title. ?format=json returns
// the table as JSON. Storage failures degrade to an empty table.
func (h *AdminHandler) Overview(c *gin.Context) {
	overview := h.buildOverview(c)

	if c.Query("format") == "json" {
		c.JSON(http.StatusOK, overview)
		return
	}

	var buf bytes.Buffer
	if err := overviewTemplate.Execute(&buf, overview); err != nil {
		h.logger.Error().Err(err).Msg("Failed to render admin overview")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render overview"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *AdminHandler) buildOverview(c *gin.Context) Overview {
	overview := Overview{Header: OverviewHeader, Rows: [][]string{}, Empty: emptyNoRecords}
	ctx := c.Request.Context()

	ids, err := h.store.Query(ctx, database.Query{AccessCheck: true, SortByTitle: true})
	if err != nil {
		h.logger.Error().Err(err).Msg("Translation storage not available")
		overview.Empty = emptyUnavailable
		return overview
	}
	if len(ids) == 0 {
		return overview
	}

	records, err := h.store.LoadMany(ctx, ids)
	if err != nil {
		h.logger.Error().Err(err).Msg("Translation storage not available")
		overview.Empty = emptyUnavailable
		return overview
	}

	for _, id := range ids {
		r, ok := records[id]
		if !ok {
			continue
		}
		item := translation.BuildItem(r)
		category := ""
		if item.Category != nil {
			category = *item.Category
		}
		overview.Rows = append(overview.Rows, []string{
			r.Title,
			item.Key,
			category,
			item.Translations.De,
			item.Translations.En,
			item.Translations.Fr,
			item.Translations.It,
		})
	}
	// Query already sorts; keep the order stable if a store does not.
	sort.SliceStable(overview.Rows, func(i, j int) bool { return overview.Rows[i][0] < overview.Rows[j][0] })
	return overview
}
