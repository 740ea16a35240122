package db

import "gorm.io/gorm"

type Repositories struct {
	Users       *UserRepository
	Experiments *ExperimentRepository
	LogEntries  *LogEntryRepository
	Journal     *JournalRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Experiments: NewExperimentRepository(database),
		LogEntries:  NewLogEntryRepository(database),
		Journal:     NewJournalRepository(database),
	}
}
