package tracking

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos/testutil"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
)

func date(y int, m time.Month, d int) *datatypes.Date {
	v := datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	return &v
}

func TestSkillRepoOwnerScopedMutations(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSkillRepo(db, testutil.Logger(t))
	dbc := dbctx.New(testutil.Ctx())

	owner := uuid.New()
	stranger := uuid.New()

	created, err := repo.Create(dbc, []*types.Skill{
		{UserID: owner, SkillName: "Go", Deadline: date(2030, 1, 2)},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	skill := created[0]
	if skill.ID == uuid.Nil {
		t.Fatalf("Create: expected generated id")
	}

	res, err := repo.UpdateOwned(dbc, skill.ID, stranger, map[string]interface{}{"skill_name": "Hijacked"})
	if err != nil {
		t.Fatalf("UpdateOwned stranger: %v", err)
	}
	if res.Affected != 0 || !res.Exists {
		t.Fatalf("UpdateOwned stranger: got=%+v want affected=0 exists=true", res)
	}
	got, err := repo.GetOwned(dbc, skill.ID, owner)
	if err != nil || got == nil {
		t.Fatalf("GetOwned: err=%v skill=%v", err, got)
	}
	if got.SkillName != "Go" {
		t.Fatalf("skill_name after foreign update: got=%q want=Go", got.SkillName)
	}

	res, err = repo.UpdateOwned(dbc, skill.ID, owner, map[string]interface{}{"progress_percentage": 40})
	if err != nil || res.Affected != 1 {
		t.Fatalf("UpdateOwned owner: err=%v res=%+v", err, res)
	}
	got, _ = repo.GetOwned(dbc, skill.ID, owner)
	if got.Progress() != 40 {
		t.Fatalf("progress: got=%d want=40", got.Progress())
	}
	if got.Deadline == nil || time.Time(*got.Deadline).Year() != 2030 {
		t.Fatalf("deadline: got=%v", got.Deadline)
	}

	res, err = repo.DeleteOwned(dbc, skill.ID, stranger)
	if err != nil || res.Affected != 0 || !res.Exists {
		t.Fatalf("DeleteOwned stranger: err=%v res=%+v", err, res)
	}

	res, err = repo.DeleteOwned(dbc, skill.ID, owner)
	if err != nil || res.Affected != 1 {
		t.Fatalf("DeleteOwned owner: err=%v res=%+v", err, res)
	}
	res, err = repo.DeleteOwned(dbc, skill.ID, owner)
	if err != nil || res.Affected != 0 || res.Exists {
		t.Fatalf("DeleteOwned twice: err=%v res=%+v", err, res)
	}
}

func TestSkillRepoListOrders(t *testing.T) {
	db := testutil.DB(t)
	repo := NewSkillRepo(db, testutil.Logger(t))
	dbc := dbctx.New(testutil.Ctx())
	owner := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i, name := range []string{"Rust", "Go", "Zig"} {
		s := &types.Skill{UserID: owner, SkillName: name, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := repo.Create(dbc, []*types.Skill{s}); err != nil {
			t.Fatalf("Create %s: %v", name, err)
		}
	}
	if _, err := repo.Create(dbc, []*types.Skill{{UserID: uuid.New(), SkillName: "Other"}}); err != nil {
		t.Fatalf("Create other: %v", err)
	}

	byCreated, err := repo.ListByUser(dbc, owner, SkillOrderCreated)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(byCreated) != 3 || byCreated[0].SkillName != "Rust" || byCreated[2].SkillName != "Zig" {
		t.Fatalf("created order: got=%v", names(byCreated))
	}

	byName, err := repo.ListByUser(dbc, owner, SkillOrderName)
	if err != nil {
		t.Fatalf("ListByUser name: %v", err)
	}
	if byName[0].SkillName != "Go" || byName[1].SkillName != "Rust" {
		t.Fatalf("name order: got=%v", names(byName))
	}
}

func names(skills []*types.Skill) []string {
	out := make([]string, 0, len(skills))
	for _, s := range skills {
		out = append(out, s.SkillName)
	}
	return out
}

func TestTaskRepoListAndCounts(t *testing.T) {
	db := testutil.DB(t)
	repo := NewTaskRepo(db, testutil.Logger(t))
	dbc := dbctx.New(testutil.Ctx())
	owner := uuid.New()
	skillID := uuid.New()

	if _, err := repo.Create(dbc, []*types.Task{
		{UserID: owner, SkillID: skillID, TaskName: "late", Deadline: date(2031, 5, 1)},
		{UserID: owner, SkillID: skillID, TaskName: "early", Deadline: date(2030, 5, 1), IsCompleted: true},
	}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	tasks, err := repo.ListByUser(dbc, owner)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(tasks) != 2 || tasks[0].TaskName != "early" {
		t.Fatalf("deadline order: got first=%q", tasks[0].TaskName)
	}

	counts, err := repo.CountByUser(dbc, owner)
	if err != nil {
		t.Fatalf("CountByUser: %v", err)
	}
	if counts.Total != 2 || counts.Completed != 1 {
		t.Fatalf("counts: got=%+v want total=2 completed=1", counts)
	}

	res, err := repo.UpdateOwned(dbc, tasks[1].ID, owner, map[string]interface{}{"is_completed": true})
	if err != nil || res.Affected != 1 {
		t.Fatalf("UpdateOwned: err=%v res=%+v", err, res)
	}
	counts, _ = repo.CountByUser(dbc, owner)
	if counts.Completed != 2 {
		t.Fatalf("completed after update: got=%d want=2", counts.Completed)
	}
}

func TestNoteRepoNewestFirst(t *testing.T) {
	db := testutil.DB(t)
	repo := NewNoteRepo(db, testutil.Logger(t))
	dbc := dbctx.New(testutil.Ctx())
	owner := uuid.New()

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		n := &types.Note{UserID: owner, Content: string(rune('a' + i)), CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if _, err := repo.Create(dbc, []*types.Note{n}); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	recent, err := repo.ListByUser(dbc, owner, 3)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(recent) != 3 || recent[0].Content != "d" || recent[2].Content != "b" {
		t.Fatalf("recent notes: got len=%d first=%q", len(recent), recent[0].Content)
	}

	all, err := repo.ListByUser(dbc, owner, 0)
	if err != nil || len(all) != 4 {
		t.Fatalf("ListByUser all: err=%v len=%d", err, len(all))
	}
}

func TestSkillChildrenCleanupIsOwnerScoped(t *testing.T) {
	db := testutil.DB(t)
	tasks := NewTaskRepo(db, testutil.Logger(t))
	notes := NewNoteRepo(db, testutil.Logger(t))
	dbc := dbctx.New(testutil.Ctx())
	owner, other := uuid.New(), uuid.New()
	skillID := uuid.New()

	if _, err := tasks.Create(dbc, []*types.Task{
		{UserID: owner, SkillID: skillID, TaskName: "mine"},
		{UserID: other, SkillID: skillID, TaskName: "theirs"},
	}); err != nil {
		t.Fatalf("Create tasks: %v", err)
	}
	if _, err := notes.Create(dbc, []*types.Note{
		{UserID: owner, SkillID: &skillID, Content: "mine"},
		{UserID: other, SkillID: &skillID, Content: "theirs"},
	}); err != nil {
		t.Fatalf("Create notes: %v", err)
	}

	removed, err := tasks.DeleteBySkill(dbc, skillID, owner)
	if err != nil || removed != 1 {
		t.Fatalf("DeleteBySkill: err=%v removed=%d want=1", err, removed)
	}
	detached, err := notes.DetachSkill(dbc, skillID, owner)
	if err != nil || detached != 1 {
		t.Fatalf("DetachSkill: err=%v detached=%d want=1", err, detached)
	}

	left, err := tasks.ListByUser(dbc, other)
	if err != nil || len(left) != 1 {
		t.Fatalf("other user's tasks: err=%v len=%d", err, len(left))
	}
	mine, err := notes.ListByUser(dbc, owner, 0)
	if err != nil || len(mine) != 1 || mine[0].SkillID != nil {
		t.Fatalf("owner note still filed under skill: err=%v notes=%+v", err, mine)
	}
	theirs, _ := notes.ListByUser(dbc, other, 0)
	if len(theirs) != 1 || theirs[0].SkillID == nil {
		t.Fatalf("other user's note was detached: %+v", theirs)
	}
}
