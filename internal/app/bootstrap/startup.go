// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/schoolworks/schoolsite/internal/app/resources"
	userstore "github.com/schoolworks/schoolsite/internal/app/store/users"
	"github.com/schoolworks/schoolsite/internal/app/system/authutil"
	"github.com/schoolworks/schoolsite/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup and prevents the server from
// starting.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	// Seed admin user if configured
	if appCfg.SeedAdminEmail != "" {
		if err := ensureAdminUser(ctx, deps, appCfg, logger); err != nil {
			logger.Error("failed to seed admin user", zap.Error(err))
			return err
		}
	}

	return nil
}

// ensureAdminUser ensures an admin account exists for the configured email.
// An existing user with that email is promoted to admin if needed; otherwise
// a new admin is created with the configured initial password.
func ensureAdminUser(ctx context.Context, deps DBDeps, appCfg AppConfig, logger *zap.Logger) error {
	store := userstore.New(deps.MongoDatabase)

	existing, err := store.GetByEmail(ctx, appCfg.SeedAdminEmail)
	if err == nil {
		if existing.Role == models.RoleAdmin {
			logger.Debug("admin user already configured", zap.String("email", existing.Email))
			return nil
		}

		_, err = deps.MongoDatabase.Collection("users").UpdateByID(ctx, existing.ID, bson.M{
			"$set": bson.M{
				"role":       models.RoleAdmin,
				"updated_at": time.Now().UTC(),
			},
		})
		if err != nil {
			return err
		}
		logger.Info("promoted existing user to admin",
			zap.String("email", existing.Email),
			zap.String("user_id", existing.ID.Hex()),
			zap.String("previous_role", existing.Role))
		return nil
	}

	if !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	if err := authutil.ValidatePassword(appCfg.SeedAdminPassword); err != nil {
		return err
	}
	hash, err := authutil.HashPassword(appCfg.SeedAdminPassword)
	if err != nil {
		return err
	}

	name := appCfg.SeedAdminName
	if name == "" {
		name = "Admin"
	}

	created, err := store.Create(ctx, models.User{
		FullName:     name,
		Email:        appCfg.SeedAdminEmail,
		Role:         models.RoleAdmin,
		Status:       models.StatusActive,
		PasswordHash: &hash,
	})
	if err != nil {
		return err
	}

	logger.Info("created admin user",
		zap.String("email", created.Email),
		zap.String("user_id", created.ID.Hex()))
	return nil
}
