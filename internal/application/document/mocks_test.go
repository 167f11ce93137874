package document

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, d *document.Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentRepository) Update(ctx context.Context, d *document.Document) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindAll(ctx context.Context, filter document.Filter) ([]*document.Document, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*document.Document), args.Get(1).(int64), args.Error(2)
}

func (m *MockDocumentRepository) FindVersions(ctx context.Context, rootID uuid.UUID) ([]*document.Document, error) {
	args := m.Called(ctx, rootID)
	return args.Get(0).([]*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindInFlight(ctx context.Context, rootID uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindLatest(ctx context.Context, rootID uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) FindApproved(ctx context.Context, rootID uuid.UUID) (*document.Document, error) {
	args := m.Called(ctx, rootID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.Document), args.Error(1)
}

func (m *MockDocumentRepository) CountByStatus(ctx context.Context, ownerUserID *uuid.UUID, statuses ...document.Status) (int64, error) {
	args := m.Called(ctx, ownerUserID, statuses)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockDocumentRepository) FindCommentedAcrossOrganizations(ctx context.Context, since time.Time, limit int) ([]*document.Document, error) {
	args := m.Called(ctx, since, limit)
	return args.Get(0).([]*document.Document), args.Error(1)
}

type MockCommentRepository struct {
	mock.Mock
}

func (m *MockCommentRepository) Create(ctx context.Context, c *document.Comment) error {
	return m.Called(ctx, c).Error(0)
}

func (m *MockCommentRepository) FindByDocument(ctx context.Context, documentID uuid.UUID) ([]document.Comment, error) {
	args := m.Called(ctx, documentID)
	return args.Get(0).([]document.Comment), args.Error(1)
}

func (m *MockCommentRepository) FindByDocuments(ctx context.Context, documentIDs []uuid.UUID) (map[uuid.UUID][]document.Comment, error) {
	args := m.Called(ctx, documentIDs)
	return args.Get(0).(map[uuid.UUID][]document.Comment), args.Error(1)
}

type MockProfileDocumentRepository struct {
	mock.Mock
}

func (m *MockProfileDocumentRepository) Create(ctx context.Context, p *document.ProfileDocument) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileDocumentRepository) Update(ctx context.Context, p *document.ProfileDocument) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileDocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProfileDocumentRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.ProfileDocument, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*document.ProfileDocument), args.Error(1)
}

func (m *MockProfileDocumentRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*document.ProfileDocument, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*document.ProfileDocument), args.Error(1)
}

func (m *MockProfileDocumentRepository) FindExpiringBetween(ctx context.Context, from, to time.Time) ([]*document.ProfileDocument, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*document.ProfileDocument), args.Error(1)
}

func (m *MockProfileDocumentRepository) FindExpiringAcrossOrganizations(ctx context.Context, from, to time.Time) ([]*document.ProfileDocument, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]*document.ProfileDocument), args.Error(1)
}

type MockMemberRepository struct {
	mock.Mock
}

func (m *MockMemberRepository) Create(ctx context.Context, member *identity.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) Update(ctx context.Context, member *identity.Member) error {
	return m.Called(ctx, member).Error(0)
}

func (m *MockMemberRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Member, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Member, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindByUserIDAcrossOrganizations(ctx context.Context, userID uuid.UUID) ([]*identity.Member, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindAll(ctx context.Context, filter identity.MemberFilter) ([]*identity.Member, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*identity.Member), args.Get(1).(int64), args.Error(2)
}

func (m *MockMemberRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*identity.Member, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]*identity.Member), args.Error(1)
}

func (m *MockMemberRepository) FindActive(ctx context.Context) ([]*identity.Member, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*identity.Member), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) Create(ctx context.Context, p *identity.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) Update(ctx context.Context, p *identity.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockProfileRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) FindByUserIDs(ctx context.Context, userIDs []uuid.UUID) ([]*identity.Profile, error) {
	args := m.Called(ctx, userIDs)
	return args.Get(0).([]*identity.Profile), args.Error(1)
}

// fakeStorage presigns fixed URLs and reports the keys it holds
type fakeStorage struct {
	objects map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (f *fakeStorage) GenerateUploadURL(_ context.Context, key, _ string, _ time.Duration) (string, time.Time, error) {
	return "https://storage.test/put/" + key, time.Date(2026, 6, 1, 12, 15, 0, 0, time.UTC), nil
}

func (f *fakeStorage) GenerateDownloadURL(_ context.Context, key string, _ time.Duration) (string, time.Time, error) {
	return "https://storage.test/get/" + key, time.Date(2026, 6, 1, 12, 15, 0, 0, time.UTC), nil
}

func (f *fakeStorage) DeleteObject(_ context.Context, key string) error {
	delete(f.objects, key)
	return nil
}

func (f *fakeStorage) ObjectExists(_ context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, ErrObjectMissing
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeStorage) Upload(_ context.Context, key string, data []byte, _ string) error {
	f.objects[key] = data
	return nil
}

// captureArchive records the entries it was asked to write
type captureArchive struct {
	entries []ArchiveEntry
}

func (c *captureArchive) WriteArchive(_ context.Context, w io.Writer, entries []ArchiveEntry) (int, error) {
	c.entries = entries
	_, err := io.WriteString(w, "PK")
	return len(entries), err
}

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type recordingPublisher struct {
	events []shared.DomainEvent
}

func (r *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	r.events = append(r.events, events...)
	return nil
}

func (r *recordingPublisher) types() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.EventType()
	}
	return out
}

type repoMocks struct {
	docs     *MockDocumentRepository
	comments *MockCommentRepository
	profDocs *MockProfileDocumentRepository
	members  *MockMemberRepository
	profiles *MockProfileRepository
}

func newRepoMocks() (*repoMocks, Repositories) {
	m := &repoMocks{
		docs:     new(MockDocumentRepository),
		comments: new(MockCommentRepository),
		profDocs: new(MockProfileDocumentRepository),
		members:  new(MockMemberRepository),
		profiles: new(MockProfileRepository),
	}
	return m, Repositories{
		Documents:        m.docs,
		Comments:         m.comments,
		ProfileDocuments: m.profDocs,
		Members:          m.members,
		Profiles:         m.profiles,
	}
}

func principal(tenantID uuid.UUID, roles ...identity.Role) identity.Principal {
	return identity.Principal{TenantID: tenantID, UserID: uuid.New(), MemberID: uuid.New(), Roles: identity.RoleSetOf(roles...)}
}
