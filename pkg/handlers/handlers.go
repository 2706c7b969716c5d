// Package handlers contains the HTTP endpoints of Groove-Guide-Go. The
// Application struct bundles the dependencies the handlers need; pipeline
// orchestration lives in pkg/recommend and the handlers only translate
// between HTTP and pipeline inputs/outputs. The error taxonomy maps onto
// responses as follows: AuthError redirects to the login step (or 401 for
// the queue endpoint), ValidationError and NotFoundError become inline
// page messages, everything else is a server error.

package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"

	"Groove-Guide-Go/pkg/catalog"
	"Groove-Guide-Go/pkg/metrics"
	"Groove-Guide-Go/pkg/recommend"
	"Groove-Guide-Go/pkg/session"
)

var log = logrus.WithField("component", "handlers")

// Application holds the dependencies shared by all handlers. UserCatalog
// builds a user-scoped catalog client from a session token; keeping it as
// a factory lets tests substitute fakes without touching the network.
type Application struct {
	Sessions    *session.Manager
	AppCatalog  catalog.Service
	UserCatalog func(tok *oauth2.Token) catalog.Service
	Metrics     *metrics.Metrics
	SignKey     []byte
	TemplateDir string
}

// token resolves the request's session to a valid token. All pipeline
// handlers go through this single decision point instead of re-checking
// authentication themselves.
func (app *Application) token(r *http.Request) (*oauth2.Token, error) {
	sid := app.sessionID(r)
	if sid == "" {
		return nil, &catalog.AuthError{Reason: "no session"}
	}
	return app.Sessions.ValidToken(r.Context(), sid)
}

// render parses and executes the named template from the configured
// template directory.
func (app *Application) render(w http.ResponseWriter, name string, data any) {
	dir := app.TemplateDir
	if dir == "" {
		dir = "ui/templates"
	}
	tmpl, err := template.ParseFiles(filepath.Join(dir, name))
	if err != nil {
		log.WithError(err).Error("parse template")
		http.Error(w, "An error occurred while loading the template", http.StatusInternalServerError)
		return
	}
	if err := tmpl.Execute(w, data); err != nil {
		log.WithError(err).Error("render template")
		http.Error(w, "An error occurred while rendering the template", http.StatusInternalServerError)
	}
}

// Home renders the user's top tracks filtered by the min_popularity query
// parameter. Without a valid session token the user is redirected to the
// login step.
func (app *Application) Home(w http.ResponseWriter, r *http.Request) {
	tok, err := app.token(r)
	if err != nil {
		app.redirectOrFail(w, r, err)
		return
	}
	minPop, _ := strconv.Atoi(r.URL.Query().Get("min_popularity"))

	pipeline := recommend.TopTrackFilter{Catalog: app.UserCatalog(tok), Metrics: app.Metrics}
	rows, err := pipeline.Recommend(r.Context(), minPop)
	if err != nil {
		app.redirectOrFail(w, r, err)
		return
	}
	app.render(w, "home.html", struct {
		Rows          []recommend.TrackRow
		MinPopularity int
	}{rows, minPop})
}

// GenreRecommendations renders per-genre track groups derived from the
// user's top genres, plus the ordered genre list itself.
func (app *Application) GenreRecommendations(w http.ResponseWriter, r *http.Request) {
	tok, err := app.token(r)
	if err != nil {
		app.redirectOrFail(w, r, err)
		return
	}
	pipeline := recommend.GenreAggregator{Catalog: app.UserCatalog(tok), Metrics: app.Metrics}
	tracks, topGenres, err := pipeline.Recommend(r.Context())
	if err != nil {
		app.redirectOrFail(w, r, err)
		return
	}
	app.render(w, "genre_recommendations.html", struct {
		Tracks    []catalog.EnrichedTrack
		TopGenres []string
	}{tracks, topGenres})
}

// SongRecommendations renders the seed recommendation form on GET and runs
// the pipeline on POST. Validation and not-found conditions surface as
// inline messages with an empty track list; the request itself still
// succeeds.
func (app *Application) SongRecommendations(w http.ResponseWriter, r *http.Request) {
	tok, err := app.token(r)
	if err != nil {
		app.redirectOrFail(w, r, err)
		return
	}
	var tracks []catalog.EnrichedTrack
	var message string

	if r.Method == http.MethodPost {
		pipeline := recommend.SeedRecommender{
			User:    app.UserCatalog(tok),
			App:     app.AppCatalog,
			Metrics: app.Metrics,
		}
		tracks, err = pipeline.Recommend(r.Context(), r.FormValue("song_name"))
		if err != nil {
			var validationErr *catalog.ValidationError
			var notFoundErr *catalog.NotFoundError
			switch {
			case errors.As(err, &validationErr):
				message = "Please enter a song name."
			case errors.As(err, &notFoundErr):
				message = fmt.Sprintf("No matches found for '%s'.", notFoundErr.Query)
			default:
				app.redirectOrFail(w, r, err)
				return
			}
		}
	}
	app.render(w, "song_recommendations.html", struct {
		Tracks []catalog.EnrichedTrack
		Error  string
	}{tracks, message})
}

// Queue adds the posted track_uri to the user's playback queue. The
// dispatcher never returns an error, only an outcome, so this handler is a
// pure outcome-to-status mapping.
func (app *Application) Queue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var userCatalog catalog.Service
	tok, err := app.token(r)
	if err != nil {
		var authErr *catalog.AuthError
		if !errors.As(err, &authErr) {
			http.Error(w, "failed to load session", http.StatusInternalServerError)
			return
		}
		// Leave the catalog nil so the dispatcher reports the
		// unauthenticated outcome without a network call.
	} else {
		userCatalog = app.UserCatalog(tok)
	}
	dispatcher := recommend.QueueDispatcher{Catalog: userCatalog}
	outcome := dispatcher.Dispatch(r.Context(), r.FormValue("track_uri"))
	switch outcome.Status {
	case recommend.StatusQueued:
		fmt.Fprint(w, "Success")
	case recommend.StatusUnauthenticated:
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	default:
		http.Error(w, fmt.Sprintf("Error: %s", outcome.Message), http.StatusInternalServerError)
	}
}

// redirectOrFail sends authentication failures back to the login step and
// reports everything else as an explicit server failure. Pipelines never
// render partial results on error.
func (app *Application) redirectOrFail(w http.ResponseWriter, r *http.Request, err error) {
	var authErr *catalog.AuthError
	if errors.As(err, &authErr) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	log.WithError(err).Error("pipeline failed")
	http.Error(w, "An error occurred while talking to the music catalog", http.StatusInternalServerError)
}
