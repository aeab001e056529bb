package main

import (
	"github.com/amaumene/gomovies/internal/config"
	"github.com/amaumene/gomovies/internal/constants"
	"github.com/amaumene/gomovies/internal/database"
	"github.com/amaumene/gomovies/internal/handlers"
	"github.com/amaumene/gomovies/internal/services"
	"github.com/amaumene/gomovies/pkg/logger"
	"github.com/amaumene/gomovies/pkg/ratelimiter"
)

var (
	Logger           logger.Logger
	Config           *config.Config
	DB               database.Database
	handler          *handlers.Handler
	serviceContainer *services.Container
)

func InitializeConfig() {
	cfg, err := config.Load()
	if err != nil {
		logger.New().Fatalf("[App] invalid configuration: %v", err)
	}
	Config = cfg
}

func InitializeLogger() {
	Logger = logger.NewWithOptions(logger.Options{
		Level:    Config.LogLevel,
		File:     Config.LogFile,
		Compress: true,
	})
}

func InitializeDatabase() {
	var err error

	DB, err = database.Open(Config.FavoritesBackend, Config.DatabasePath)
	if err != nil {
		Logger.Fatalf("[App] failed to initialize database: %v", err)
	}

	Logger.Infof("[App] %s favorites store initialized at %s", Config.FavoritesBackend, Config.DatabasePath)
}

func InitializeServices() {
	api := services.NewTMDB(services.TMDBOptions{
		BaseURL:       Config.APIURL,
		Language:      Config.Language,
		AccountID:     Config.AccountID,
		DefaultRegion: Config.DefaultRegion,
		DiscoverSort:  Config.DiscoverSort,
		Timeout:       Config.APITimeout,
		TokenSource:   Config.TokenSource(),
		RateLimiter:   ratelimiter.NewTokenBucket(constants.APIRateBurst, constants.APIRateLimit),
		Logger:        Logger,
	})

	catalog := services.NewCatalog(api, services.CatalogOptions{
		Genres:          Config.Genres,
		DiscoverSort:    Config.DiscoverSort,
		RefreshInterval: Config.RefreshInterval,
		Logger:          Logger,
	})

	favorites := services.NewFavoritesService(services.NewFavoritesRepository(DB), api, api, Logger)
	searches := services.NewSearchSessions(api.Search, Config.SearchDebounce, Logger)

	serviceContainer = &services.Container{
		API:       api,
		Catalog:   catalog,
		Favorites: favorites,
		Searches:  searches,
		DB:        DB,
		Logger:    Logger,
	}

	handler = handlers.New(serviceContainer, Config)

	Logger.Infof("[App] services initialized successfully")
}
