// Command web starts the Groove-Guide-Go HTTP server. Configuration comes
// from an optional TOML file (CONFIG_FILE) with environment overrides for
// the Spotify credentials, redirect URL, signing key and session database
// path. The server renders HTML pages for the recommendation pipelines and
// exposes Prometheus metrics at /metrics.

package main

import (
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	libspotify "github.com/zmb3/spotify"
	"golang.org/x/oauth2"

	"Groove-Guide-Go/pkg/catalog"
	"Groove-Guide-Go/pkg/config"
	"Groove-Guide-Go/pkg/db"
	"Groove-Guide-Go/pkg/handlers"
	"Groove-Guide-Go/pkg/metrics"
	"Groove-Guide-Go/pkg/session"
)

func main() {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	log := logrus.WithField("component", "web")

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.WithError(err).Fatal("load configuration")
	}

	m := metrics.New(prometheus.DefaultRegisterer)

	// The application-scoped client serves the enrichment calls that must
	// stay off the user's token and rate budget. It is required even
	// before any user logs in.
	appCatalog, err := catalog.NewAppClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, m)
	if err != nil {
		log.WithError(err).Fatal("application catalog client init")
	}

	// The authenticator drives the user authorization-code flow. The
	// requested scopes cover the top-track, library and playlist reads
	// plus the playback-state write the queue endpoint needs.
	auth := libspotify.NewAuthenticator(cfg.Spotify.RedirectURL,
		libspotify.ScopeUserLibraryRead,
		libspotify.ScopeUserTopRead,
		libspotify.ScopePlaylistReadPrivate,
		libspotify.ScopeUserReadRecentlyPlayed,
		libspotify.ScopeUserModifyPlaybackState,
	)
	auth.SetAuthInfo(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret)

	// Session tokens live in memory unless a database path is configured;
	// the provider flow hands out fresh tokens cheaply, so durability is
	// opt-in.
	var store session.Store = session.NewMemoryStore()
	if cfg.Session.DatabasePath != "" {
		database, err := db.New(cfg.Session.DatabasePath)
		if err != nil {
			log.WithError(err).Fatal("session database init")
		}
		defer database.Close()
		store = database
	}
	sessions := session.NewManager(session.SpotifyAuthenticator{Auth: auth}, store)

	app := &handlers.Application{
		Sessions:   sessions,
		AppCatalog: appCatalog,
		UserCatalog: func(tok *oauth2.Token) catalog.Service {
			return catalog.NewUserClient(auth, tok, m)
		},
		Metrics: m,
		SignKey: []byte(cfg.Session.SigningKey),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", app.Login)
	mux.HandleFunc("/callback", app.OAuthCallback)
	mux.HandleFunc("/home", app.Home)
	mux.HandleFunc("/genre-recommendations", app.GenreRecommendations)
	mux.HandleFunc("/song-recommendations", app.SongRecommendations)
	mux.HandleFunc("/queue", app.Queue)
	mux.Handle("/metrics", promhttp.Handler())

	log.WithField("addr", cfg.Server.Addr).Info("starting server")
	if err := http.ListenAndServe(cfg.Server.Addr, handlers.SecurityHeaders(mux)); err != nil {
		log.WithError(err).Fatal("http server error")
	}
}
