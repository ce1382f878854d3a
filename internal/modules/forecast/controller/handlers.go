package controller

import (
	"bytes"
	"errors"
	"net/http"

	"pm25map/internal/forecast"
	"pm25map/internal/modules/forecast/views"
	"pm25map/internal/utils"
)

func (c *forecastControllerImpl) handlePage(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	data := views.NewPageData(c.service.State(), c.service.Days())
	var buf bytes.Buffer
	if err := views.RenderPage(&buf, data); err != nil {
		c.logger.Error("page template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}

// handleTrigger starts a forecast in the background and answers with the
// loading controls, which poll until the request settles. A click while a
// request is already in flight starts nothing new.
func (c *forecastControllerImpl) handleTrigger(w http.ResponseWriter, r *http.Request) {
	if !c.service.State().Loading {
		go func() {
			err := c.service.RequestForecast(c.baseCtx)
			if errors.Is(err, forecast.ErrRequestInFlight) {
				c.logger.Debug("forecast trigger ignored: request in flight")
			}
		}()
	}
	c.writeControls(w, views.ControlsData{Loading: true, Days: c.service.Days()})
}

func (c *forecastControllerImpl) handleControls(w http.ResponseWriter, r *http.Request) {
	c.writeControls(w, views.NewControlsData(c.service.State(), c.service.Days()))
}

func (c *forecastControllerImpl) writeControls(w http.ResponseWriter, data views.ControlsData) {
	var buf bytes.Buffer
	if err := views.RenderControls(&buf, data); err != nil {
		c.logger.Error("controls partial render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render")
		return
	}
	utils.WriteHTML(w, http.StatusOK, buf.Bytes())
}
