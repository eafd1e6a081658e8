package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Stories     *StoryRepository
	Connections *ConnectionRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Stories:     NewStoryRepository(database),
		Connections: NewConnectionRepository(database),
	}
}
