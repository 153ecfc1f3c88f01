package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/grindgrid/grindgrid-backend/internal/data/repos"
	"github.com/grindgrid/grindgrid-backend/internal/data/repos/testutil"
	types "github.com/grindgrid/grindgrid-backend/internal/domain"
	"github.com/grindgrid/grindgrid-backend/internal/pkg/dbctx"
	"github.com/grindgrid/grindgrid-backend/internal/platform/cache"
	"github.com/grindgrid/grindgrid-backend/internal/platform/ctxutil"
	"github.com/grindgrid/grindgrid-backend/internal/platform/gemini"
	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

var errFakeRejected = errors.New("invalid JWT")

// fakeIdentity accepts tokens registered through login.
type fakeIdentity struct {
	mu     sync.Mutex
	tokens map[string]Identity
	calls  int

	exchangeErr error
	signUp      SignUpResult
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{tokens: map[string]Identity{}}
}

func (f *fakeIdentity) login(userID uuid.UUID, email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	tok := "tok-" + userID.String()
	f.tokens[tok] = Identity{UserID: userID, Email: email}
	return tok
}

func (f *fakeIdentity) SignUp(ctx context.Context, email, password, codeChallenge string) (SignUpResult, error) {
	return f.signUp, nil
}

func (f *fakeIdentity) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for tok, ident := range f.tokens {
		if ident.Email == email {
			return &Session{AccessToken: tok, RefreshToken: "r-" + tok, ExpiresIn: 3600, Identity: ident}, nil
		}
	}
	return nil, errors.New("Invalid login credentials")
}

func (f *fakeIdentity) ExchangeCode(ctx context.Context, code, codeVerifier string) (*Session, error) {
	if f.exchangeErr != nil {
		return nil, f.exchangeErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ident, ok := f.tokens[code]
	if !ok {
		return nil, errors.New("invalid code")
	}
	return &Session{AccessToken: code, Identity: ident}, nil
}

func (f *fakeIdentity) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	return nil, errors.New("Invalid Refresh Token")
}

func (f *fakeIdentity) GetUser(ctx context.Context, accessToken string) (*Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	ident, ok := f.tokens[accessToken]
	if !ok {
		return nil, errFakeRejected
	}
	return &ident, nil
}

func (f *fakeIdentity) SignOut(ctx context.Context, accessToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, accessToken)
	return nil
}

func (f *fakeIdentity) AuthorizeURL(provider, redirectTo, codeChallenge string) (string, error) {
	return "https://auth.example.test/authorize?provider=" + provider + "&code_challenge=" + codeChallenge, nil
}

// recordingCache records invalidated paths and purged users.
type recordingCache struct {
	mu          sync.Mutex
	invalidated map[uuid.UUID][]string
	purged      []uuid.UUID
	err         error
}

func newRecordingCache() *recordingCache {
	return &recordingCache{invalidated: map[uuid.UUID][]string{}}
}

func (r *recordingCache) Get(ctx context.Context, userID uuid.UUID, path string) (*cache.Page, bool, error) {
	return nil, false, nil
}

func (r *recordingCache) Set(ctx context.Context, userID uuid.UUID, path string, page *cache.Page) error {
	return nil
}

func (r *recordingCache) Invalidate(ctx context.Context, userID uuid.UUID, paths ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invalidated[userID] = append(r.invalidated[userID], paths...)
	return r.err
}

func (r *recordingCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.purged = append(r.purged, userID)
	return r.err
}

func (r *recordingCache) purgedUsers() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uuid.UUID(nil), r.purged...)
}

func (r *recordingCache) paths(userID uuid.UUID) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.invalidated[userID]...)
}

type fakeAttempt struct {
	text string
	err  error
}

// fakeGemini replays scripted attempts in order and records the models asked.
type fakeGemini struct {
	listed   []gemini.Model
	listErr  error
	attempts []fakeAttempt

	listCalls int
	asked     []string
}

func (f *fakeGemini) ListModels(ctx context.Context) ([]gemini.Model, error) {
	f.listCalls++
	return f.listed, f.listErr
}

func (f *fakeGemini) GenerateText(ctx context.Context, model, prompt string, cfg gemini.GenerationConfig) (string, error) {
	f.asked = append(f.asked, model)
	if len(f.attempts) == 0 {
		return "", errors.New("unexpected attempt")
	}
	next := f.attempts[0]
	f.attempts = f.attempts[1:]
	return next.text, next.err
}

func (f *fakeGemini) upstreamCalls() int { return f.listCalls + len(f.asked) }

type failingConversationRepo struct {
	repos.ConversationRepo
}

func (failingConversationRepo) Create(dbc dbctx.Context, rows []*types.Conversation) ([]*types.Conversation, error) {
	return nil, errors.New("relation \"conversations\" does not exist")
}

type testEnv struct {
	db       *gorm.DB
	log      *logger.Logger
	idp      *fakeIdentity
	cache    *recordingCache
	pages    *PageInvalidator
	sessions SessionResolver

	profiles      repos.ProfileRepo
	skills        repos.SkillRepo
	tasks         repos.TaskRepo
	notes         repos.NoteRepo
	conversations repos.ConversationRepo
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.DB(t)
	log := testutil.Logger(t)
	idp := newFakeIdentity()
	rc := newRecordingCache()
	profiles := repos.NewProfileRepo(db, log)
	return &testEnv{
		db:            db,
		log:           log,
		idp:           idp,
		cache:         rc,
		pages:         NewPageInvalidator(rc, log),
		sessions:      NewSessionResolver(log, idp, profiles),
		profiles:      profiles,
		skills:        repos.NewSkillRepo(db, log),
		tasks:         repos.NewTaskRepo(db, log),
		notes:         repos.NewNoteRepo(db, log),
		conversations: repos.NewConversationRepo(db, log),
	}
}

// as returns a request-scoped context authenticated as a fresh user.
func (e *testEnv) as(userID uuid.UUID) dbctx.Context {
	tok := e.idp.login(userID, userID.String()[:8]+"@example.com")
	return dbctx.New(ctxutil.WithAccessToken(context.Background(), tok))
}

func anonymous() dbctx.Context {
	return dbctx.New(ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{}))
}
