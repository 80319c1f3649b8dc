package api

import (
	"net/http"

	"github.com/mwhitson/banter/internal/config"
	"github.com/mwhitson/banter/pkg/routes"
)

func registerRoutes(
	mux *http.ServeMux,
	domain *Domain,
	cfg *config.Config,
	runtime *Runtime,
) {
	pipeline := newPipelineHandler(
		runtime.Storage,
		domain.Images,
		domain.Generator,
		runtime.Logger,
	)

	routes.Register(
		mux,
		domain.Images.Handler().Routes(),
		domain.Votes.Handler().Routes(),
		domain.Review.Handler().Routes(),
		pipeline.routes(),
	)
}
