package repos

import (
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos/auth"
	"github.com/grindgrid/grindgrid-backend/internal/data/repos/chat"
	"github.com/grindgrid/grindgrid-backend/internal/data/repos/tracking"
	"github.com/grindgrid/grindgrid-backend/internal/data/repos/user"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type ProfileRepo = user.ProfileRepo

type SkillRepo = tracking.SkillRepo
type TaskRepo = tracking.TaskRepo
type NoteRepo = tracking.NoteRepo
type MutationResult = tracking.MutationResult
type SkillOrder = tracking.SkillOrder
type TaskCounts = tracking.TaskCounts

const (
	SkillOrderCreated = tracking.SkillOrderCreated
	SkillOrderName    = tracking.SkillOrderName
)

type ConversationRepo = chat.ConversationRepo

type AccountRepo = auth.AccountRepo
type AuthCodeRepo = auth.AuthCodeRepo
type UserTokenRepo = auth.UserTokenRepo

func NewProfileRepo(db *gorm.DB, baseLog *logger.Logger) ProfileRepo {
	return user.NewProfileRepo(db, baseLog)
}

func NewSkillRepo(db *gorm.DB, baseLog *logger.Logger) SkillRepo {
	return tracking.NewSkillRepo(db, baseLog)
}
func NewTaskRepo(db *gorm.DB, baseLog *logger.Logger) TaskRepo {
	return tracking.NewTaskRepo(db, baseLog)
}
func NewNoteRepo(db *gorm.DB, baseLog *logger.Logger) NoteRepo {
	return tracking.NewNoteRepo(db, baseLog)
}

func NewConversationRepo(db *gorm.DB, baseLog *logger.Logger) ConversationRepo {
	return chat.NewConversationRepo(db, baseLog)
}

func NewAccountRepo(db *gorm.DB, baseLog *logger.Logger) AccountRepo {
	return auth.NewAccountRepo(db, baseLog)
}
func NewAuthCodeRepo(db *gorm.DB, baseLog *logger.Logger) AuthCodeRepo {
	return auth.NewAuthCodeRepo(db, baseLog)
}
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}
