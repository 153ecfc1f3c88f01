package domain

import (
	"github.com/grindgrid/grindgrid-backend/internal/domain/auth"
	"github.com/grindgrid/grindgrid-backend/internal/domain/chat"
	"github.com/grindgrid/grindgrid-backend/internal/domain/tracking"
	"github.com/grindgrid/grindgrid-backend/internal/domain/user"
)

type Profile = user.Profile

type Skill = tracking.Skill
type Task = tracking.Task
type Note = tracking.Note

type Conversation = chat.Conversation

type Account = auth.Account
type AuthCode = auth.AuthCode
type UserToken = auth.UserToken

// AllModels lists every table in migration order.
func AllModels() []interface{} {
	return []interface{}{
		&Profile{},
		&Skill{},
		&Task{},
		&Note{},
		&Conversation{},
		&Account{},
		&AuthCode{},
		&UserToken{},
	}
}
