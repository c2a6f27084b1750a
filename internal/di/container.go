package di

import (
	"github.com/prohmpiriya/session-planner/internal/handler"
	"github.com/prohmpiriya/session-planner/internal/repository"
	"github.com/prohmpiriya/session-planner/internal/service"
	"github.com/prohmpiriya/session-planner/pkg/config"
	"github.com/prohmpiriya/session-planner/pkg/database"
	"github.com/prohmpiriya/session-planner/pkg/logger"
	"github.com/prohmpiriya/session-planner/pkg/redis"
)

// Container holds all dependencies for the session planner
type Container struct {
	// Infrastructure
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.ChangePublisher

	// Repositories
	DraftRepo repository.DraftRepository

	// Services
	SessionConfigService service.SessionConfigService

	// Handlers
	HealthHandler *handler.HealthHandler
	DraftHandler  *handler.DraftHandler
}

// ContainerConfig contains configuration for building the container
type ContainerConfig struct {
	DB        *database.PostgresDB
	Redis     *redis.Client
	Publisher service.ChangePublisher
	Planner   config.PlannerConfig
	Logger    *logger.Logger
}

// NewContainer creates a new dependency injection container. Without a
// database drafts live in memory; without Redis they are not cached.
func NewContainer(cfg *ContainerConfig) *Container {
	c := &Container{
		DB:        cfg.DB,
		Redis:     cfg.Redis,
		Publisher: cfg.Publisher,
	}
	if c.Publisher == nil {
		c.Publisher = service.NewNoOpChangePublisher()
	}

	// Initialize repositories
	var draftRepo repository.DraftRepository
	if c.DB != nil {
		draftRepo = repository.NewPostgresDraftRepository(c.DB.Pool())
	} else {
		draftRepo = repository.NewMemoryDraftRepository()
	}

	// Wrap with cache if Redis is available
	if c.Redis != nil {
		c.DraftRepo = repository.NewCachedDraftRepository(draftRepo, c.Redis, c.Redis.Key(""), cfg.Planner.CacheTTL)
	} else {
		c.DraftRepo = draftRepo
	}

	// Initialize services
	c.SessionConfigService = service.NewSessionConfigService(c.DraftRepo, c.Publisher, &service.SessionConfigServiceConfig{
		DefaultCurrency:   cfg.Planner.DefaultCurrency,
		RequiredByDefault: cfg.Planner.RequiredByDefault,
		Logger:            cfg.Logger,
	})

	// Initialize handlers
	c.HealthHandler = handler.NewHealthHandler(c.healthComponents()...)
	c.DraftHandler = handler.NewDraftHandler(c.SessionConfigService)

	return c
}

func (c *Container) healthComponents() []handler.Component {
	db := handler.Component{Name: "database"}
	if c.DB != nil {
		db.Check = c.DB.HealthCheck
	}
	cache := handler.Component{Name: "redis"}
	if c.Redis != nil {
		cache.Check = c.Redis.HealthCheck
	}
	components := []handler.Component{db, cache}

	if kp, ok := c.Publisher.(*service.KafkaChangePublisher); ok {
		components = append(components, handler.Component{Name: "kafka", Check: kp.Ping, Optional: true})
	}
	return components
}

// Close waits for in-flight change events and closes the publisher
func (c *Container) Close() error {
	c.SessionConfigService.Wait()
	return c.Publisher.Close()
}
