package main

import (
	"os"

	"github.com/geostitch/geostitch/internal/compose"
	"github.com/geostitch/geostitch/internal/config"
	"github.com/geostitch/geostitch/internal/logger"

	"github.com/jessevdk/go-flags"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	ScenarioFile string `short:"c" long:"scenario"    env:"SCENARIO_FILE" description:"Path to scenario file" default:"scenario.yaml"`
	StaticOnly   bool   `short:"s" long:"static-only" description:"Render the static map only"`
	WebOnly      bool   `short:"w" long:"web-only"    description:"Render the interactive map only"`
}

func main() {
	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()

	sc, err := config.Load(opts.ScenarioFile)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load scenario")
	}

	renderStatic := true
	renderWeb := true
	if opts.StaticOnly && !opts.WebOnly {
		renderWeb = false
	} else if opts.WebOnly && !opts.StaticOnly {
		renderStatic = false
	}

	log.Info().
		Str("scenario", sc.Name).
		Bool("static", renderStatic).
		Bool("interactive", renderWeb).
		Msg("Starting composition")

	composer := compose.New(sc)

	if renderStatic {
		if err := composer.RenderStatic(); err != nil {
			log.Fatal().Err(err).Msg("Static composition failed")
		}
	}

	if renderWeb {
		if err := composer.RenderInteractive(); err != nil {
			log.Fatal().Err(err).Msg("Interactive composition failed")
		}
	}

	log.Info().Msg("Composition finished successfully")
}
