package views

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"pm25map/internal/forecast"
)

var pageTmpl *template.Template

// loadTemplatesFromFS loads page templates from the given fs and dir.
// Used by LoadTemplates and by tests to simulate failure scenarios.
func loadTemplatesFromFS(fsys fs.FS, dir string) error {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		return err
	}
	pageTmpl, err = template.ParseFS(sub, "*.html", "partials/*.html")
	if err != nil {
		return err
	}
	return nil
}

// LoadTemplates loads embedded page templates. Call during startup before
// serving requests; if it returns an error, do not start the server.
func LoadTemplates() error {
	return loadTemplatesFromFS(viewsFS, "templates")
}

// ControlsData is the view model for the trigger button and error line.
type ControlsData struct {
	// Days labels the trigger button with the configured window length.
	Days    int
	Loading bool
	Failed  bool
	Message string
}

// NewControlsData maps a controller snapshot onto the controls partial.
func NewControlsData(s forecast.State, days int) ControlsData {
	return ControlsData{
		Days:    days,
		Loading: s.Loading,
		Failed:  s.Status == forecast.StatusFailed,
		Message: s.Message,
	}
}

type LegendEntry struct {
	Label string
	Range string
	Color string
}

type PageData struct {
	Title    string
	Controls ControlsData
	Legend   []LegendEntry
}

const pageTitle = "Urban CO₂ Digital Twin (PM2.5 Forecast)"

func NewPageData(s forecast.State, days int) PageData {
	return PageData{
		Title:    pageTitle,
		Controls: NewControlsData(s, days),
		Legend:   legend(),
	}
}

func legend() []LegendEntry {
	bands := forecast.Bands()
	entries := make([]LegendEntry, 0, len(bands))
	lower := 0.0
	for _, b := range bands {
		var rng string
		if b.Upper > 0 {
			rng = fmt.Sprintf("%g–%g", lower, b.Upper)
			lower = b.Upper
		} else {
			rng = fmt.Sprintf("≥ %g", lower)
		}
		entries = append(entries, LegendEntry{Label: b.Label, Range: rng, Color: b.Color})
	}
	return entries
}

func RenderPage(w io.Writer, data PageData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "index.html", data)
}

// RenderControls executes only the controls partial into w.
// Use for HTMX fragment refresh.
func RenderControls(w io.Writer, data ControlsData) error {
	if pageTmpl == nil {
		return errors.New("page template not loaded: call views.LoadTemplates during startup")
	}
	return pageTmpl.ExecuteTemplate(w, "controls", data)
}
