// internal/app/system/seeding/seeding.go
package seeding

import (
	"context"

	contactstore "github.com/schoolworks/schoolsite/internal/app/store/contact"
	homecontentstore "github.com/schoolworks/schoolsite/internal/app/store/homecontent"
	noticestore "github.com/schoolworks/schoolsite/internal/app/store/notices"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// SeedAll seeds default content if not already present.
// Every step is idempotent so restarts never duplicate or overwrite data.
func SeedAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	if err := seedHomeContent(ctx, db, logger); err != nil {
		return err
	}
	if err := seedNoticeBoard(ctx, db, logger); err != nil {
		return err
	}
	if err := seedContactInfo(ctx, db, logger); err != nil {
		return err
	}
	return nil
}

// seedHomeContent writes placeholder home page text on first boot.
func seedHomeContent(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	store := homecontentstore.New(db)

	exists, err := docExists(ctx, db, "site_content", "home")
	if err != nil {
		logger.Error("failed to check home content", zap.Error(err))
		return err
	}
	if exists {
		return nil
	}

	err = store.SaveText(ctx, homecontentstore.TextUpdate{
		Welcome: "Welcome to our school. This text can be customized from the admin console.",
		Mission: "Our mission statement goes here. An administrator should update this content.",
		Vision:  "Our vision statement goes here. An administrator should update this content.",
		History: "The history of the school goes here. An administrator should update this content.",
	})
	if err != nil {
		logger.Error("failed to seed home content", zap.Error(err))
		return err
	}
	logger.Info("seeded default home content")
	return nil
}

// seedNoticeBoard makes sure the notice board document exists so the first
// public page load doesn't race the first admin mutation.
func seedNoticeBoard(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	store := noticestore.New(db)
	if _, err := store.Load(ctx); err != nil {
		logger.Error("failed to seed notice board", zap.Error(err))
		return err
	}
	return nil
}

// seedContactInfo writes placeholder contact details on first boot.
func seedContactInfo(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	store := contactstore.New(db)

	exists, err := docExists(ctx, db, "school_data", "contactInfo")
	if err != nil {
		logger.Error("failed to check contact info", zap.Error(err))
		return err
	}
	if exists {
		return nil
	}

	err = store.Save(ctx, contactstore.UpdateInput{
		Address: "School address goes here",
		Email:   "office@example.edu",
		Phone:   "000-000-0000",
	})
	if err != nil {
		logger.Error("failed to seed contact info", zap.Error(err))
		return err
	}
	logger.Info("seeded default contact info")
	return nil
}

func docExists(ctx context.Context, db *mongo.Database, collection, id string) (bool, error) {
	count, err := db.Collection(collection).CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
