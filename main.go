package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/lokmitra/case-api/api/handlers"
	"github.com/lokmitra/case-api/api/scheduler"
	"github.com/lokmitra/case-api/config"
	"github.com/lokmitra/case-api/media"
)

func main() {
	_ = godotenv.Load()

	a := handlers.App{}
	a.Config = *config.New()

	if err := a.Initialize(); err != nil { //initialize store, media and router
		log.Fatal(err)
	}

	// the sweeper only applies to local uploads; cloudinary keeps its own house
	if d, ok := a.Media.(*media.Disk); ok {
		s := scheduler.NewSweeper(a.CaseDB, d.Dir(), time.Duration(a.Config.OrphanGraceMin)*time.Minute)
		s.Start(a.Config.OrphanSweepSpec)
		defer s.Stop()
	}

	zap.S().Infow("case-api is up and running",
		"port", a.Config.Port,
		"url", a.Config.BaseURL,
	)
	log.Fatal(http.ListenAndServe(fmt.Sprintf(":%v", a.Config.Port), a.Router))
}
