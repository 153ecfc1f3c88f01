package app

import (
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type Repos struct {
	Profile      repos.ProfileRepo
	Skill        repos.SkillRepo
	Task         repos.TaskRepo
	Note         repos.NoteRepo
	Conversation repos.ConversationRepo

	Account   repos.AccountRepo
	AuthCode  repos.AuthCodeRepo
	UserToken repos.UserTokenRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Profile:      repos.NewProfileRepo(db, log),
		Skill:        repos.NewSkillRepo(db, log),
		Task:         repos.NewTaskRepo(db, log),
		Note:         repos.NewNoteRepo(db, log),
		Conversation: repos.NewConversationRepo(db, log),

		Account:   repos.NewAccountRepo(db, log),
		AuthCode:  repos.NewAuthCodeRepo(db, log),
		UserToken: repos.NewUserTokenRepo(db, log),
	}
}
