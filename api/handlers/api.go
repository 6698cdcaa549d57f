package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/lokmitra/case-api/api"
	"github.com/lokmitra/case-api/cases"
	"github.com/lokmitra/case-api/config"
	"github.com/lokmitra/case-api/databases"
	"github.com/lokmitra/case-api/media"
	"github.com/lokmitra/case-api/models"
)

// App stores the router, store and media backends, so it can be reused
type App struct {
	Router *mux.Router
	Config config.Config
	CaseDB databases.CaseDatabase
	Media  media.Store
	Engine *cases.Engine
	Feed   *Feed
}

// Initialize is invoked by main to pick the storage and media backends and
// create the router
func (a *App) Initialize() error {
	if a.Config.DBURI != "" {
		ctx, cancel := api.WithStoreTimeout(nil)
		defer cancel()
		db, err := databases.NewMongoCaseDatabase(ctx, a.Config.DBURI, a.Config.DBName)
		if err != nil {
			zap.S().Errorw("failed to connect to database", "error", err)
			return err
		}
		a.CaseDB = db
		zap.S().Info("case-api has connected to the database")
	} else {
		db, err := databases.NewCaseFile(a.Config.CasesPath())
		if err != nil {
			zap.S().Errorw("failed to open case store", "error", err)
			return err
		}
		a.CaseDB = db
		zap.S().Infow("case-api is using the flat-file store", "path", a.Config.CasesPath())
	}

	if a.Config.CloudinaryURL != "" {
		m, err := media.NewCloudinary(a.Config.CloudinaryURL)
		if err != nil {
			zap.S().Errorw("failed to create cloudinary store", "error", err)
			return err
		}
		a.Media = m
		zap.S().Info("case-api is storing uploads in cloudinary")
	} else {
		m, err := media.NewDisk(a.Config.UploadDir)
		if err != nil {
			zap.S().Errorw("failed to create uploads directory", "error", err)
			return err
		}
		a.Media = m
		zap.S().Infow("case-api is storing uploads on disk", "dir", a.Config.UploadDir)
	}

	a.Feed = NewFeed()
	a.Engine = cases.New(a.CaseDB, a.Feed)

	a.initializeRoutes()
	return nil
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	r := mux.NewRouter()

	c := Case{
		Engine:         a.Engine,
		Media:          a.Media,
		MaxUploadBytes: a.Config.MaxUploadMB << 20,
	}

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)

	// the feed upgrades the connection, so it stays off the timeout chain
	r.Handle("/api/case-feed", api.CORSMiddleware(http.HandlerFunc(a.Feed.Handler))).Methods("GET")

	apiCreate := r.PathPrefix("/api").Subrouter()
	apiCreate.Use(api.CORSMiddleware)
	apiCreate.Use(api.LoggingMiddleware)
	apiCreate.Use(api.TimeoutMiddleware(time.Duration(a.Config.RequestTimeoutSec) * time.Second))

	apiCreate.Handle("/submit-case", http.HandlerFunc(c.SubmitCaseHandler)).Methods("POST")
	apiCreate.Handle("/get-cases", http.HandlerFunc(c.GetCasesHandler)).Methods("GET")
	apiCreate.Handle("/get-case", http.HandlerFunc(c.GetCaseHandler)).Methods("GET")
	apiCreate.Handle("/accept-case", http.HandlerFunc(c.AcceptCaseHandler)).Methods("POST")
	apiCreate.Handle("/submit-solution", http.HandlerFunc(c.SubmitSolutionHandler)).Methods("POST")

	if d, ok := a.Media.(*media.Disk); ok {
		r.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/", http.FileServer(http.Dir(d.Dir()))))
	}

	// citizen portal hosted at "/"
	r.Path("/").HandlerFunc(a.portalHandler)
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(a.Config.StaticDir)))

	return r
}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func (a *App) portalHandler(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(a.Config.StaticDir, "portal.html"))
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
