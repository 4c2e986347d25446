package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/fakhrymubarak/weather-search/internal/home"
	"github.com/fakhrymubarak/weather-search/internal/model"
	"github.com/fakhrymubarak/weather-search/internal/search"
)

// HomeScreen is the part of home.Home the handlers read.
type HomeScreen interface {
	Snapshot() home.View
}

// SearchBox is the part of search.Box the handlers drive.
type SearchBox interface {
	Expand()
	Collapse()
	OnTextChanged(raw string)
	OnLocationSelected(ctx context.Context, loc model.LocationMatch) *model.ForecastReport
	Snapshot() search.Snapshot
}

type WeatherHandler struct {
	Home   HomeScreen
	Search SearchBox
	Logger *zap.SugaredLogger
}

func NewWeatherHandler(h HomeScreen, box SearchBox, logger *zap.SugaredLogger) *WeatherHandler {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &WeatherHandler{
		Home:   h,
		Search: box,
		Logger: logger,
	}
}

// Register mounts all screen routes on mux.
func (h *WeatherHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/weather", h.HandleWeather)
	mux.HandleFunc("/search", h.HandleSearch)
	mux.HandleFunc("/search/expand", h.HandleExpand)
	mux.HandleFunc("/search/collapse", h.HandleCollapse)
	mux.HandleFunc("/search/text", h.HandleText)
	mux.HandleFunc("/search/select", h.HandleSelect)
}

type textRequest struct {
	Text string `json:"text"`
}

func (h *WeatherHandler) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Errorw("could not encode json", "error", err)
	}
}

func (h *WeatherHandler) writeError(w http.ResponseWriter, statusCode int, errMsg string) {
	h.writeJSONResponse(w, statusCode, model.Response{
		Error:   &errMsg,
		Message: "Error",
	})
}

func (h *WeatherHandler) allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	h.writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	return false
}

func (h *WeatherHandler) HandleWeather(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    h.Home.Snapshot(),
		Message: "Success",
	})
}

func (h *WeatherHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodGet) {
		return
	}
	h.writeSearchState(w, http.StatusOK)
}

func (h *WeatherHandler) HandleExpand(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	h.Search.Expand()
	h.writeSearchState(w, http.StatusOK)
}

func (h *WeatherHandler) HandleCollapse(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	h.Search.Collapse()
	h.writeSearchState(w, http.StatusOK)
}

// HandleText feeds one edit of the search field; the lookup itself happens
// later, once typing pauses.
func (h *WeatherHandler) HandleText(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	var req textRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	h.Search.OnTextChanged(req.Text)
	h.writeSearchState(w, http.StatusAccepted)
}

// HandleSelect persists the picked location and answers with the home
// screen after its forecast has been loaded.
func (h *WeatherHandler) HandleSelect(w http.ResponseWriter, r *http.Request) {
	if !h.allow(w, r, http.MethodPost) {
		return
	}
	var loc model.LocationMatch
	if err := json.NewDecoder(r.Body).Decode(&loc); err != nil {
		h.writeError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	if strings.TrimSpace(loc.Name) == "" {
		h.writeError(w, http.StatusBadRequest, "Missing 'name' in location")
		return
	}

	h.Search.OnLocationSelected(r.Context(), loc)
	h.writeJSONResponse(w, http.StatusOK, model.Response{
		Data:    h.Home.Snapshot(),
		Message: "Success",
	})
}

func (h *WeatherHandler) writeSearchState(w http.ResponseWriter, statusCode int) {
	h.writeJSONResponse(w, statusCode, model.Response{
		Data:    h.Search.Snapshot(),
		Message: "Success",
	})
}
