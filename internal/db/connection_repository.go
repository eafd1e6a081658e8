package db

import (
	"context"

	"github.com/giverr/giverr/internal/models"
	"gorm.io/gorm"
)

type ConnectionRepository struct {
	database *gorm.DB
}

func NewConnectionRepository(database *gorm.DB) *ConnectionRepository {
	return &ConnectionRepository{database: database}
}

func (repo *ConnectionRepository) Exists(ctx context.Context, userID string, connectedUserID string) (bool, error) {
	var matched int64
	if err := repo.database.WithContext(ctx).
		Model(&models.UserConnection{}).
		Where("user_id = ? AND connected_user_id = ?", userID, connectedUserID).
		Count(&matched).Error; err != nil {
		return false, err
	}
	return matched > 0, nil
}

func (repo *ConnectionRepository) Create(ctx context.Context, connection *models.UserConnection) error {
	return repo.database.WithContext(ctx).Omit("ConnectedUser").Create(connection).Error
}

func (repo *ConnectionRepository) ListByUser(ctx context.Context, userID string) ([]models.UserConnection, error) {
	connections := make([]models.UserConnection, 0)
	if err := repo.database.WithContext(ctx).
		Preload("ConnectedUser").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&connections).Error; err != nil {
		return nil, err
	}
	return connections, nil
}
