package main

import (
	"context"
	"errors"
	"flag"
	"io/fs"
	"log"
	"os"
	"strconv"

	"verifix/config"
	"verifix/controllers"
	"verifix/db"
	"verifix/internal/ratelimit"
	"verifix/middlewares"
	"verifix/routes"
	"verifix/services"
	"verifix/utils"
	"verifix/websocket"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type app struct {
	verify   *controllers.VerifyController
	seva     *controllers.SevaController
	auth     *controllers.AuthController
	admin    *controllers.AdminController
	chat     *websocket.SevaChatHandler
	jwt      *utils.JWTManager
	sessions services.SessionStore
	authz    *middlewares.Authorizer
	limiter  *ratelimit.RateLimiter
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file loaded, using OS environment")
	}

	defaultPath := os.Getenv("CONFIG_PATH")
	if defaultPath == "" {
		defaultPath = "./config/config.yml"
	}
	configPath := flag.String("config", defaultPath, "Path to config file")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx := context.Background()

	var database *mongo.Database
	if cfg.Database.URI != "" {
		client, dbase, err := db.ConnectMongoDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		defer client.Disconnect(context.Background())
		database = dbase
		log.Println("Connected to MongoDB")
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb, err = ratelimit.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		log.Println("Connected to Redis")
	}

	a, err := wire(ctx, cfg, database, rdb)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	router := setupRouter(cfg, a)
	port := strconv.Itoa(cfg.Server.Port)
	log.Printf("Server starting on port %s", port)

	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// loadConfig falls back to defaults plus environment when the file does not exist
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Printf("Config file %s not found, using defaults and environment", path)
		return config.Default()
	}
	return cfg, err
}

func wire(ctx context.Context, cfg *config.Config, database *mongo.Database, rdb *redis.Client) (*app, error) {
	secret := cfg.JWT.Secret
	if secret == "" {
		log.Println("JWT_SECRET is not set, using an ephemeral secret; sessions will not survive a restart")
		secret = uuid.NewString()
	}
	jm, err := utils.NewJWTManager(secret)
	if err != nil {
		return nil, err
	}

	verifier, err := credentialChain(ctx, cfg, database)
	if err != nil {
		return nil, err
	}

	var sessions services.SessionStore = services.NewMemorySessionStore()
	if rdb != nil {
		sessions = services.NewRedisSessionStore(rdb)
	}

	var logs services.VerificationLogStore = services.NewMemoryVerificationLogStore()
	if database != nil {
		store := db.NewVerificationLogStore(database)
		if err := store.EnsureIndexes(ctx); err != nil {
			log.Printf("Failed to create verification log indexes: %v", err)
		}
		logs = store
	}

	agent, err := services.NewSevaAgent(ctx, cfg.Gemini.ApiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	authz, err := middlewares.NewAuthorizer()
	if err != nil {
		return nil, err
	}

	ocr := services.NewOCRService(cfg.OCR.URL, cfg.OCRTimeout())
	log.Printf("Relaying verifications to %s", cfg.OCR.URL)

	return &app{
		verify:   controllers.NewVerifyController(ocr, logs, cfg.OCR.MaxUploadBytes),
		seva:     controllers.NewSevaController(agent),
		auth:     controllers.NewAuthController(verifier, sessions, jm, cfg.SessionTTL()),
		admin:    controllers.NewAdminController(logs),
		chat:     websocket.NewSevaChatHandler(agent),
		jwt:      jm,
		sessions: sessions,
		authz:    authz,
		limiter:  ratelimit.NewRateLimiter(rdb, cfg.RateLimit.MaxUploads, cfg.RateLimitWindow()),
	}, nil
}

// credentialChain tries Cognito, then stored principals, then the demo accounts
func credentialChain(ctx context.Context, cfg *config.Config, database *mongo.Database) (services.ChainVerifier, error) {
	var chain services.ChainVerifier

	if cfg.Cognito.AppClientId != "" {
		cv, err := services.NewCognitoVerifier(ctx, cfg.Cognito.Region, cfg.Cognito.AppClientId, cfg.Cognito.AppClientSecret)
		if err != nil {
			return nil, err
		}
		chain = append(chain, cv)
	}
	if database != nil {
		chain = append(chain, services.NewStoreVerifier(db.NewPrincipalStore(database)))
	}

	static, err := services.NewStaticVerifier(services.DemoAccounts())
	if err != nil {
		return nil, err
	}
	return append(chain, static), nil
}

func setupRouter(cfg *config.Config, a *app) *gin.Engine {
	router := gin.Default()

	router.SetTrustedProxies([]string{"127.0.0.1", "localhost"})

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	router.OPTIONS("/*path", func(c *gin.Context) { c.Status(204) })

	requireAuth := middlewares.AuthMiddleware(a.jwt, a.sessions)

	router.GET("/", routes.HealthRouteHandler)
	routes.SetupVerifyRoutes(router, a.verify, middlewares.OptionalAuthMiddleware(a.jwt, a.sessions), a.limiter)
	routes.SetupSevaRoutes(router, a.seva, a.chat)
	routes.SetupAuthRoutes(router, a.auth, requireAuth, a.authz)
	routes.SetupAdminRoutes(router, a.admin, requireAuth, a.authz)

	return router
}
