package main

import (
	"flag"
	"log"

	"github.com/gin-gonic/gin"

	"characterhub/internal/catalog"
)

// mirror-server serves a local JSON fixture in the remote catalog's wire
// shape so the API server can run offline:
//
//	CHARACTERHUB_CATALOG_URL=http://localhost:9000/api
func main() {
	addr := flag.String("addr", ":9000", "listen address")
	dataPath := flag.String("data", "data/mirror.json", "JSON array of upstream character objects")
	flag.Parse()

	mirror, err := catalog.LoadMirror(*dataPath)
	if err != nil {
		log.Fatalf("load mirror: %v", err)
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	mirror.RegisterRoutes(r.Group("/api"))

	log.Printf("mirror-server listening on http://localhost%s/api", *addr)
	log.Fatal(r.Run(*addr))
}
