package main

import (
	"context"
	"errors"
	"log"
	"os"

	"github.com/wasifahmed1991/pc-auction-system/cmd/controllers"
	"github.com/wasifahmed1991/pc-auction-system/internal/config"
	"github.com/wasifahmed1991/pc-auction-system/internal/repo"
	"github.com/wasifahmed1991/pc-auction-system/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

const defaultConfigPath = "secrets.json"

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = defaultConfigPath
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	db, err := repo.Connect(cfg.DBDSN)
	if err != nil {
		log.Fatalf("connect to database: %v", err)
	}

	if err := repo.Migrate(db); err != nil {
		log.Fatalf("migrate database: %v", err)
	}

	if err := repo.EnsureAdmin(db, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("ensure admin: %v", err)
	}

	logService, err := services.NewLogService(db)
	if err != nil {
		log.Fatalf("create log service: %v", err)
	}

	authService, err := services.NewAuthService(db, cfg.JWTSecret)
	if err != nil {
		log.Fatalf("create auth service: %v", err)
	}

	userService, err := services.NewUserService(db, logService)
	if err != nil {
		log.Fatalf("create user service: %v", err)
	}

	carrierService, err := services.NewCarrierService(db)
	if err != nil {
		log.Fatalf("create carrier service: %v", err)
	}

	auctionService, err := services.NewAuctionService(db, logService)
	if err != nil {
		log.Fatalf("create auction service: %v", err)
	}

	lotImportService, err := services.NewLotImportService(db, logService)
	if err != nil {
		log.Fatalf("create lot import service: %v", err)
	}

	biddingService, err := services.NewBiddingService(db, logService)
	if err != nil {
		log.Fatalf("create bidding service: %v", err)
	}

	closingService, err := services.NewClosingService(db, logService)
	if err != nil {
		log.Fatalf("create closing service: %v", err)
	}

	catalogService, err := services.NewCatalogService(db)
	if err != nil {
		log.Fatalf("create catalog service: %v", err)
	}

	authController, err := controllers.NewAuthController(authService)
	if err != nil {
		log.Fatalf("create auth controller: %v", err)
	}

	usersController, err := controllers.NewUsersController(userService)
	if err != nil {
		log.Fatalf("create users controller: %v", err)
	}

	carriersController, err := controllers.NewCarriersController(carrierService)
	if err != nil {
		log.Fatalf("create carriers controller: %v", err)
	}

	auctionsController, err := controllers.NewAuctionsController(auctionService, lotImportService, closingService)
	if err != nil {
		log.Fatalf("create auctions controller: %v", err)
	}

	catalogController, err := controllers.NewCatalogController(catalogService)
	if err != nil {
		log.Fatalf("create catalog controller: %v", err)
	}

	biddingController, err := controllers.NewBiddingController(biddingService, catalogService)
	if err != nil {
		log.Fatalf("create bidding controller: %v", err)
	}

	logsController, err := controllers.NewLogsController(logService)
	if err != nil {
		log.Fatalf("create logs controller: %v", err)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if err := controllers.RegisterHealthRoutes(router); err != nil {
		log.Fatalf("register health routes: %v", err)
	}

	auth := controllers.AuthRequired(authService)
	if err := authController.RegisterRoutes(router, auth); err != nil {
		log.Fatalf("register auth routes: %v", err)
	}

	authed := router.Group("/", auth)
	if err := catalogController.RegisterRoutes(authed); err != nil {
		log.Fatalf("register catalog routes: %v", err)
	}
	if err := biddingController.RegisterRoutes(authed); err != nil {
		log.Fatalf("register bidding routes: %v", err)
	}

	admin := router.Group("/admin", auth, controllers.AdminRequired())
	if err := usersController.RegisterRoutes(admin); err != nil {
		log.Fatalf("register users routes: %v", err)
	}
	if err := carriersController.RegisterRoutes(admin); err != nil {
		log.Fatalf("register carriers routes: %v", err)
	}
	if err := auctionsController.RegisterRoutes(admin); err != nil {
		log.Fatalf("register auctions routes: %v", err)
	}
	if err := logsController.RegisterRoutes(admin); err != nil {
		log.Fatalf("register logs routes: %v", err)
	}

	if err := startCron(closingService); err != nil {
		log.Fatalf("start cron: %v", err)
	}

	if err := router.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("run server: %v", err)
	}
}

type statusSweeper interface {
	ProcessStatuses(ctx context.Context) (services.SweepReport, error)
}

func startCron(sweeper statusSweeper) error {
	if sweeper == nil {
		return errors.New("closing service is nil")
	}

	scheduler := cron.New()

	if _, err := scheduler.AddFunc("@every 1m", func() {
		if _, err := sweeper.ProcessStatuses(context.Background()); err != nil {
			log.Printf("process auction statuses: %v", err)
		}
	}); err != nil {
		return err
	}

	scheduler.Start()
	return nil
}
