package api

import (
	"github.com/mwhitson/banter/internal/generator"
	"github.com/mwhitson/banter/internal/images"
	"github.com/mwhitson/banter/internal/review"
	"github.com/mwhitson/banter/internal/votes"
)

// Domain holds all domain systems that comprise the API.
type Domain struct {
	Images    images.System
	Votes     votes.System
	Review    review.System
	Generator generator.System
}

// NewDomain creates all domain systems from the API runtime.
func NewDomain(runtime *Runtime) *Domain {
	imagesSystem := images.New(
		runtime.Database.Connection(),
		runtime.Logger,
		runtime.Pagination,
	)

	votesSystem := votes.New(
		runtime.Database.Connection(),
		runtime.Logger,
	)

	reviewSystem := review.New(
		runtime.Config.Review,
		imagesSystem,
		votesSystem,
		runtime.Logger,
	)

	runtime.Lifecycle.OnShutdown(func() {
		<-runtime.Lifecycle.Context().Done()
		reviewSystem.Shutdown()
	})

	generatorSystem := generator.New(
		runtime.Config.Generator,
		runtime.Config.Agent,
		runtime.Storage,
		runtime.Logger,
	)

	return &Domain{
		Images:    imagesSystem,
		Votes:     votesSystem,
		Review:    reviewSystem,
		Generator: generatorSystem,
	}
}
