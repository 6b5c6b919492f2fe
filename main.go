package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"manualctf/challenges"
	"manualctf/config"
	"manualctf/controllers"
	"manualctf/database"
	"manualctf/logger"
	"manualctf/plugins/manual"
	"manualctf/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const programName = "manualctf"

var configFile string

// bootstrap 加载配置并初始化日志与数据库
func bootstrap() error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	if err := logger.Init(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	}); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if _, err := maxprocs.Set(maxprocs.Logger(logger.L().Sugar().Infof)); err != nil {
		logger.L().Warn("failed to set GOMAXPROCS", zap.Error(err))
	}
	if err := database.Connect(cfg.Database); err != nil {
		return err
	}
	return nil
}

func serve() error {
	cfg := config.GetConfig()
	if err := database.InitRedis(cfg.Redis); err != nil {
		return err
	}
	if err := database.MigrateTables(database.DB, manual.Models()...); err != nil {
		return err
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router, err := routes.SetupRouter(challenges.NewRegistry())
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.L().Info("starting server", zap.String("addr", cfg.Server.Addr), zap.String("mode", string(cfg.Mode)))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
}

func migrateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.MigrateTables(database.DB, manual.Models()...); err != nil {
				return err
			}
			logger.L().Info("database migrated")
			return nil
		},
	}
}

func createAdminCommand() *cobra.Command {
	var username, email, password string
	cmd := &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.MigrateTables(database.DB, manual.Models()...); err != nil {
				return err
			}
			user, err := controllers.CreateAdmin(username, email, password)
			if err != nil {
				return err
			}
			logger.L().Info("admin created", zap.Uint32("user_id", user.ID), zap.String("username", user.Username))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "username", "", "admin username")
	cmd.Flags().StringVar(&email, "email", "", "admin email")
	cmd.Flags().StringVar(&password, "password", "", "admin password (min 8 characters)")
	_ = cmd.MarkFlagRequired("username")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	return cmd
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "CTF platform with manually graded challenges",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return bootstrap()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "path to config file")
	rootCmd.AddCommand(serveCommand(), migrateCommand(), createAdminCommand())

	err := rootCmd.Execute()
	_ = logger.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", programName, err)
		os.Exit(1)
	}
}
