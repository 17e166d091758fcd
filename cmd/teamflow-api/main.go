package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m1z23r/drift/pkg/drift"
	"github.com/m1z23r/drift/pkg/middleware"

	"github.com/teamflow/teamflow-api/internal/config"
	"github.com/teamflow/teamflow-api/internal/database"
	"github.com/teamflow/teamflow-api/internal/handlers"
	"github.com/teamflow/teamflow-api/internal/logger"
	authmw "github.com/teamflow/teamflow-api/internal/middleware"
	"github.com/teamflow/teamflow-api/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog := logger.New(cfg.Env)
	defer func() { _ = zlog.Sync() }()

	ctx := context.Background()

	db, err := database.New(ctx, cfg.DatabaseURL)
	if err != nil {
		zlog.Fatalw("failed to connect to database", "error", err)
	}
	defer db.Close()

	if err := db.Migrate(ctx); err != nil {
		zlog.Fatalw("failed to run migrations", "error", err)
	}

	jwtService := services.NewJWTService(cfg.JWTSecret, cfg.JWTAccessExpiry, cfg.JWTRefreshExpiry)
	userService := services.NewUserService(db)
	tokenService := services.NewTokenService(db)
	identityService := services.NewIdentityService(db, jwtService)
	membershipService := services.NewMembershipService(db)
	teamService := services.NewTeamService(db)
	invitationService := services.NewInvitationService(db, membershipService)
	joinRequestService := services.NewJoinRequestService(db, teamService, membershipService)
	quotaService := services.NewQuotaService(db)
	notificationService := services.NewNotificationService(db, zlog)
	projectService := services.NewProjectService(db, membershipService)
	taskService := services.NewTaskService(db, notificationService)
	emailService := services.NewEmailService(cfg.SMTP)

	authHandler := handlers.NewAuthHandler(cfg, userService, tokenService, jwtService)
	userHandler := handlers.NewUserHandler(userService)
	teamHandler := handlers.NewTeamHandler(teamService, membershipService, quotaService)
	invitationHandler := handlers.NewInvitationHandler(invitationService, membershipService, teamService, userService, notificationService, emailService)
	joinRequestHandler := handlers.NewJoinRequestHandler(joinRequestService, membershipService, teamService, userService, notificationService)
	projectHandler := handlers.NewProjectHandler(projectService, membershipService)
	taskHandler := handlers.NewTaskHandler(taskService, projectService, membershipService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	usageHandler := handlers.NewUsageHandler(quotaService)

	app := drift.New()

	if cfg.IsProduction() {
		app.SetMode(drift.ReleaseMode)
	} else {
		app.SetMode(drift.DebugMode)
	}

	app.Use(middleware.Recovery())
	app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		MaxAge:       86400,
	}))
	app.Use(middleware.BodyParser())

	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Get("/:provider/consent", authHandler.GetConsentURL)
	auth.Get("/:provider/callback", authHandler.Callback)
	auth.Post("/exchange", authHandler.ExchangeCode)
	auth.Post("/refresh", authHandler.RefreshToken)
	auth.Post("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(authmw.Auth(identityService))

	protected.Post("/auth/logout-all", authHandler.LogoutAll)

	protected.Get("/users/me", userHandler.Me)
	protected.Patch("/users/me", userHandler.UpdateMe)
	protected.Get("/users/me/usage", usageHandler.Get)

	protected.Get("/teams", teamHandler.List)
	protected.Post("/teams", teamHandler.Create)
	protected.Get("/teams/:id", teamHandler.Get)
	protected.Patch("/teams/:id", teamHandler.Update)
	protected.Delete("/teams/:id", teamHandler.Delete)
	protected.Get("/teams/:id/members", teamHandler.GetMembers)
	protected.Post("/teams/:id/members", teamHandler.AddMember)
	protected.Delete("/teams/:id/members/:userId", teamHandler.RemoveMember)
	protected.Patch("/teams/:id/members/:userId/role", teamHandler.ChangeRole)
	protected.Post("/teams/:id/leave", teamHandler.Leave)
	protected.Post("/teams/:id/transfer", teamHandler.TransferOwnership)
	protected.Get("/teams/:id/quota", teamHandler.GetQuota)

	protected.Post("/teams/:id/invitations", invitationHandler.Create)
	protected.Get("/teams/:id/invitations", invitationHandler.ListForTeam)
	protected.Delete("/teams/:id/invitations/:invitationId", invitationHandler.Cancel)
	protected.Get("/invitations", invitationHandler.ListMine)
	protected.Post("/invitations/:id/accept", invitationHandler.Accept)
	protected.Post("/invitations/:id/reject", invitationHandler.Reject)

	protected.Post("/teams/:id/join", joinRequestHandler.Create)
	protected.Get("/teams/:id/join-requests", joinRequestHandler.ListForTeam)
	protected.Post("/teams/:id/join-requests/:requestId/approve", joinRequestHandler.Approve)
	protected.Post("/teams/:id/join-requests/:requestId/reject", joinRequestHandler.Reject)
	protected.Get("/join-requests", joinRequestHandler.ListMine)
	protected.Delete("/join-requests/:id", joinRequestHandler.Cancel)

	protected.Post("/teams/:id/projects", projectHandler.Create)
	protected.Get("/teams/:id/projects", projectHandler.ListForTeam)
	protected.Get("/projects/:id", projectHandler.Get)
	protected.Patch("/projects/:id", projectHandler.Update)
	protected.Delete("/projects/:id", projectHandler.Delete)
	protected.Get("/projects/:id/members", projectHandler.GetMembers)
	protected.Post("/projects/:id/members", projectHandler.AddMember)
	protected.Delete("/projects/:id/members/:userId", projectHandler.RemoveMember)

	protected.Post("/projects/:id/tasks", taskHandler.Create)
	protected.Get("/projects/:id/tasks", taskHandler.ListForProject)
	protected.Get("/tasks/:id", taskHandler.Get)
	protected.Patch("/tasks/:id", taskHandler.Update)
	protected.Delete("/tasks/:id", taskHandler.Delete)
	protected.Post("/tasks/:id/assignees", taskHandler.Assign)
	protected.Delete("/tasks/:id/assignees/:userId", taskHandler.Unassign)
	protected.Get("/tasks/:id/comments", taskHandler.GetComments)
	protected.Post("/tasks/:id/comments", taskHandler.AddComment)

	protected.Get("/notifications", notificationHandler.List)
	protected.Post("/notifications/:id/read", notificationHandler.MarkRead)
	protected.Post("/notifications/read-all", notificationHandler.MarkAllRead)

	protected.Post("/ai/usage", usageHandler.Consume)

	api.Get("/health", func(c *drift.Context) {
		_ = c.JSON(200, map[string]string{"status": "ok"})
	})

	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		for range ticker.C {
			sweepCtx := context.Background()
			if err := tokenService.CleanupExpired(sweepCtx); err != nil {
				zlog.Warnw("token cleanup failed", "error", err)
			}
			if err := invitationService.ExpireStale(sweepCtx, cfg.PendingTTL); err != nil {
				zlog.Warnw("invitation sweep failed", "error", err)
			}
			if err := joinRequestService.ExpireStale(sweepCtx, cfg.PendingTTL); err != nil {
				zlog.Warnw("join request sweep failed", "error", err)
			}
			if err := taskService.NotifyDueSoon(sweepCtx, 24*time.Hour); err != nil {
				zlog.Warnw("due-soon sweep failed", "error", err)
			}
		}
	}()

	go func() {
		addr := fmt.Sprintf(":%s", cfg.Port)
		zlog.Infow("server starting", "addr", addr)
		if err := app.Run(addr); err != nil {
			zlog.Fatalw("server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("shutting down server")
}
