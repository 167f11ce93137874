package document

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/document"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	tenantID  uuid.UUID
	owner     identity.Principal
	hr        identity.Principal
	repos     *repoMocks
	storage   *fakeStorage
	archive   *captureArchive
	tx        *fakeTx
	publisher *recordingPublisher
	svc       *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{tenantID: uuid.New(), storage: newFakeStorage(), archive: &captureArchive{}, tx: &fakeTx{}, publisher: &recordingPublisher{}}
	f.owner = principal(f.tenantID, identity.RoleEmployee)
	f.hr = principal(f.tenantID, identity.RoleHR)
	var repos Repositories
	f.repos, repos = newRepoMocks()
	f.svc = NewService(repos, f.storage, f.archive, f.tx, f.publisher, nil, Config{ExportMaxDocuments: 3}, zap.NewNop())
	f.svc.now = func() time.Time { return fixedNow }
	return f
}

func (f *fixture) ownerMember() *identity.Member {
	return &identity.Member{
		TenantAggregateRoot: shared.TenantAggregateRoot{BaseAggregateRoot: shared.BaseAggregateRoot{BaseEntity: shared.BaseEntity{ID: f.owner.MemberID}}, TenantID: f.tenantID},
		UserID:              f.owner.UserID,
		EmployeeNumber:      "E-007",
		Status:              identity.MemberStatusActive,
	}
}

func (f *fixture) contract(t *testing.T, status document.Status) *document.Document {
	t.Helper()
	d, err := document.NewDocument(f.tenantID, f.owner.MemberID, f.owner.UserID, f.owner.UserID, document.UploadInput{
		Category:    document.CategoryContract,
		Title:       "Employment contract",
		FileName:    "contract.pdf",
		ContentType: "application/pdf",
		FileSize:    2048,
	})
	require.NoError(t, err)
	d.Status = status
	d.MarkPersisted()
	return d
}

func (f *fixture) replacementOf(t *testing.T, prev *document.Document) *document.Document {
	t.Helper()
	d, err := document.NewReplacement(prev, prev.DocVersion, f.owner.UserID, document.UploadInput{FileName: "contract-signed.pdf", ContentType: "application/pdf", FileSize: 4096})
	require.NoError(t, err)
	d.Status = document.StatusPendingReview
	d.MarkPersisted()
	return d
}

func TestService_InitiateUpload(t *testing.T) {
	t.Run("own upload", func(t *testing.T) {
		f := newFixture(t)
		f.repos.members.On("FindByID", mock.Anything, f.owner.MemberID).Return(f.ownerMember(), nil)
		f.repos.docs.On("Create", mock.Anything, mock.AnythingOfType("*document.Document")).Return(nil)

		ticket, err := f.svc.InitiateUpload(context.Background(), f.owner, InitiateUploadInput{
			Category: document.CategoryContract, Title: "Contract", FileName: "c.pdf", ContentType: "application/pdf", FileSize: 100,
		})
		require.NoError(t, err)
		assert.Equal(t, document.StatusPendingUpload, ticket.Document.Status)
		assert.Equal(t, f.owner.UserID, ticket.Document.OwnerUserID)
		assert.Equal(t, "https://storage.test/put/"+ticket.Document.StorageKey, ticket.UploadURL)
	})

	t.Run("employee cannot upload for someone else", func(t *testing.T) {
		f := newFixture(t)
		other := uuid.New()
		_, err := f.svc.InitiateUpload(context.Background(), f.owner, InitiateUploadInput{OwnerMemberID: &other})
		assert.ErrorIs(t, err, shared.ErrForbidden)
	})

	t.Run("oversized file", func(t *testing.T) {
		f := newFixture(t)
		f.repos.members.On("FindByID", mock.Anything, f.owner.MemberID).Return(f.ownerMember(), nil)
		_, err := f.svc.InitiateUpload(context.Background(), f.owner, InitiateUploadInput{
			Category: document.CategoryContract, Title: "Scan", FileName: "scan.pdf", ContentType: "application/pdf", FileSize: document.MaxFileSize + 1,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
		f.repos.docs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_ConfirmUpload(t *testing.T) {
	f := newFixture(t)
	d := f.contract(t, document.StatusPendingUpload)
	f.repos.docs.On("FindByID", mock.Anything, d.ID).Return(d, nil)

	_, err := f.svc.ConfirmUpload(context.Background(), f.owner, d.ID)
	assert.ErrorIs(t, err, shared.ErrInvalidState)

	require.NoError(t, f.storage.Upload(context.Background(), d.StorageKey, []byte("%PDF"), d.ContentType))
	f.repos.docs.On("Update", mock.Anything, d).Return(nil)
	got, err := f.svc.ConfirmUpload(context.Background(), f.owner, d.ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusPendingReview, got.Status)
	require.NotNil(t, got.UploadedAt)
	assert.Equal(t, []string{document.EventTypeDocumentUploaded}, f.publisher.types())
}

func TestService_InitiateReplacement(t *testing.T) {
	t.Run("one version in flight per chain", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.contract(t, document.StatusApproved)
		f.repos.docs.On("FindByID", mock.Anything, v1.ID).Return(v1, nil)
		f.repos.docs.On("FindInFlight", mock.Anything, v1.RootID).Return(f.replacementOf(t, v1), nil)

		_, err := f.svc.InitiateReplacement(context.Background(), f.owner, v1.ID, InitiateUploadInput{FileName: "new.pdf", ContentType: "application/pdf", FileSize: 10})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})

	t.Run("creates the next version", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.contract(t, document.StatusRejected)
		f.repos.docs.On("FindByID", mock.Anything, v1.ID).Return(v1, nil)
		f.repos.docs.On("FindInFlight", mock.Anything, v1.RootID).Return(nil, shared.ErrNotFound)
		f.repos.docs.On("FindLatest", mock.Anything, v1.RootID).Return(v1, nil)
		f.repos.docs.On("Create", mock.Anything, mock.AnythingOfType("*document.Document")).Return(nil)

		ticket, err := f.svc.InitiateReplacement(context.Background(), f.owner, v1.ID, InitiateUploadInput{FileName: "new.pdf", ContentType: "application/pdf", FileSize: 10})
		require.NoError(t, err)
		v2 := ticket.Document
		assert.Equal(t, 2, v2.DocVersion)
		assert.Equal(t, v1.RootID, v2.RootID)
		require.NotNil(t, v2.ReplacesID)
		assert.Equal(t, v1.ID, *v2.ReplacesID)
		assert.Equal(t, "Employment contract", v2.Title)
	})

	t.Run("numbering skips past a rejected replacement", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.contract(t, document.StatusApproved)
		rejected := f.replacementOf(t, v1)
		rejected.Status = document.StatusRejected
		f.repos.docs.On("FindByID", mock.Anything, v1.ID).Return(v1, nil)
		f.repos.docs.On("FindInFlight", mock.Anything, v1.RootID).Return(nil, shared.ErrNotFound)
		f.repos.docs.On("FindLatest", mock.Anything, v1.RootID).Return(rejected, nil)
		f.repos.docs.On("Create", mock.Anything, mock.AnythingOfType("*document.Document")).Return(nil)

		ticket, err := f.svc.InitiateReplacement(context.Background(), f.owner, v1.ID, InitiateUploadInput{FileName: "again.pdf", ContentType: "application/pdf", FileSize: 10})
		require.NoError(t, err)
		assert.Equal(t, 3, ticket.Document.DocVersion)
		assert.Equal(t, v1.ID, *ticket.Document.ReplacesID)
	})

	t.Run("strangers see nothing", func(t *testing.T) {
		f := newFixture(t)
		v1 := f.contract(t, document.StatusApproved)
		f.repos.docs.On("FindByID", mock.Anything, v1.ID).Return(v1, nil)
		stranger := principal(f.tenantID, identity.RoleEmployee)
		_, err := f.svc.InitiateReplacement(context.Background(), stranger, v1.ID, InitiateUploadInput{})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestService_ApproveSupersedesPriorVersion(t *testing.T) {
	f := newFixture(t)
	v1 := f.contract(t, document.StatusApproved)
	v2 := f.replacementOf(t, v1)
	f.repos.docs.On("FindByID", mock.Anything, v2.ID).Return(v2, nil)
	f.repos.docs.On("FindApproved", mock.Anything, v1.RootID).Return(v1, nil)
	f.repos.docs.On("Update", mock.Anything, v1).Return(nil)
	f.repos.docs.On("Update", mock.Anything, v2).Return(nil)
	var posted *document.Comment
	f.repos.comments.On("Create", mock.Anything, mock.AnythingOfType("*document.Comment")).
		Run(func(args mock.Arguments) { posted = args.Get(1).(*document.Comment) }).
		Return(nil)

	got, err := f.svc.Approve(context.Background(), f.hr, v2.ID)
	require.NoError(t, err)
	assert.Equal(t, document.StatusApproved, got.Status)
	assert.Equal(t, document.StatusSuperseded, v1.Status)
	assert.Equal(t, 1, f.tx.calls)
	require.NotNil(t, posted)
	assert.True(t, posted.IsSystem())
	assert.Equal(t, "Approved", posted.Body)
	assert.ElementsMatch(t, []string{document.EventTypeDocumentApproved, document.EventTypeDocumentSuperseded}, f.publisher.types())
}

func TestService_ApproveRules(t *testing.T) {
	f := newFixture(t)
	d := f.contract(t, document.StatusPendingReview)

	_, err := f.svc.Approve(context.Background(), f.owner, d.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	hrOwner := f.owner
	hrOwner.Roles = identity.RoleSetOf(identity.RoleHR)
	f.repos.docs.On("FindByID", mock.Anything, d.ID).Return(d, nil)
	_, err = f.svc.Approve(context.Background(), hrOwner, d.ID)
	assert.ErrorIs(t, err, shared.ErrSelfApproval)
	f.repos.docs.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestService_Reject(t *testing.T) {
	f := newFixture(t)
	d := f.contract(t, document.StatusPendingReview)
	f.repos.docs.On("FindByID", mock.Anything, d.ID).Return(d, nil)
	f.repos.docs.On("Update", mock.Anything, d).Return(nil)
	f.repos.comments.On("Create", mock.Anything, mock.MatchedBy(func(c *document.Comment) bool {
		return c.IsSystem() && c.Body == "Rejected: blurry scan"
	})).Return(nil)

	_, err := f.svc.Reject(context.Background(), f.hr, d.ID, "  ")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	got, err := f.svc.Reject(context.Background(), f.hr, d.ID, "blurry scan")
	require.NoError(t, err)
	assert.Equal(t, document.StatusRejected, got.Status)
	f.repos.comments.AssertExpectations(t)
}

func TestService_AddComment(t *testing.T) {
	f := newFixture(t)
	d := f.contract(t, document.StatusPendingReview)
	f.repos.docs.On("FindByID", mock.Anything, d.ID).Return(d, nil)

	stranger := principal(f.tenantID, identity.RoleEmployee)
	_, err := f.svc.AddComment(context.Background(), stranger, d.ID, "hello")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	f.repos.comments.On("Create", mock.Anything, mock.AnythingOfType("*document.Comment")).Return(nil)
	c, err := f.svc.AddComment(context.Background(), f.owner, d.ID, " Signed copy attached ")
	require.NoError(t, err)
	assert.Equal(t, "Signed copy attached", c.Body)
	assert.Equal(t, document.CommentTypeUser, c.Type)
	assert.Equal(t, []string{document.EventTypeDocumentCommented}, f.publisher.types())
}

func TestService_ListDocumentsScopesEmployees(t *testing.T) {
	f := newFixture(t)
	other := uuid.New()
	f.repos.docs.On("FindAll", mock.Anything, mock.MatchedBy(func(filter document.Filter) bool {
		return filter.OwnerUserID != nil && *filter.OwnerUserID == f.owner.UserID && filter.OwnerMemberID == nil && filter.CurrentOnly
	})).Return([]*document.Document{}, int64(0), nil)

	page, err := f.svc.ListDocuments(context.Background(), f.owner, ListDocumentsInput{OwnerMemberID: &other})
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.Total)

	bad := document.Status("lost")
	_, err = f.svc.ListDocuments(context.Background(), f.owner, ListDocumentsInput{Statuses: []document.Status{bad}})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func comment(d *document.Document, author uuid.UUID, at time.Time, system bool) document.Comment {
	t := document.CommentTypeUser
	if system {
		t = document.CommentTypeSystem
	}
	return document.Comment{ID: uuid.New(), TenantID: d.TenantID, DocumentID: d.ID, AuthorUserID: author, Type: t, Body: "x", CreatedAt: at}
}

func TestService_PendingDiscussions(t *testing.T) {
	f := newFixture(t)
	askedOwner := f.contract(t, document.StatusPendingReview)
	ownerReplied := f.contract(t, document.StatusApproved)
	systemOnly := f.contract(t, document.StatusRejected)
	docs := []*document.Document{askedOwner, ownerReplied, systemOnly}
	threads := map[uuid.UUID][]document.Comment{
		askedOwner.ID: {
			comment(askedOwner, f.owner.UserID, fixedNow.Add(-50*time.Hour), false),
			comment(askedOwner, f.hr.UserID, fixedNow.Add(-48*time.Hour), false),
		},
		ownerReplied.ID: {
			comment(ownerReplied, f.hr.UserID, fixedNow.Add(-5*time.Hour), false),
			comment(ownerReplied, f.owner.UserID, fixedNow.Add(-2*time.Hour), false),
			comment(ownerReplied, f.hr.UserID, fixedNow.Add(-time.Hour), true),
		},
		systemOnly.ID: {
			comment(systemOnly, f.hr.UserID, fixedNow.Add(-time.Hour), true),
		},
	}
	f.repos.docs.On("FindAll", mock.Anything, mock.MatchedBy(func(filter document.Filter) bool {
		return filter.WithComments && filter.CurrentOnly
	})).Return(docs, int64(3), nil)
	f.repos.comments.On("FindByDocuments", mock.Anything, []uuid.UUID{askedOwner.ID, ownerReplied.ID, systemOnly.ID}).Return(threads, nil)

	all, err := f.svc.ListPendingDiscussions(context.Background(), f.hr, ModeAll)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, askedOwner.ID, all[0].Document.ID)
	assert.Equal(t, document.DiscussionAwaitingEmployee, all[0].State)
	assert.Equal(t, int64(48*3600), all[0].WaitingSeconds)
	assert.Equal(t, document.DiscussionAwaitingAdmin, all[1].State)

	admin, err := f.svc.ListPendingDiscussions(context.Background(), f.hr, ModeAwaitingAdmin)
	require.NoError(t, err)
	require.Len(t, admin, 1)
	assert.Equal(t, ownerReplied.ID, admin[0].Document.ID)

	hrCount, err := f.svc.CountAwaitingReply(context.Background(), f.hr)
	require.NoError(t, err)
	assert.Equal(t, int64(1), hrCount)

	ownerCount, err := f.svc.CountAwaitingReply(context.Background(), f.owner)
	require.NoError(t, err)
	assert.Equal(t, int64(1), ownerCount)
}

func TestParseDiscussionMode(t *testing.T) {
	mode, ok := ParseDiscussionMode("")
	assert.True(t, ok)
	assert.Equal(t, ModeAll, mode)
	_, ok = ParseDiscussionMode("awaiting_everyone")
	assert.False(t, ok)
}

func TestService_ExportZIP(t *testing.T) {
	f := newFixture(t)
	v2 := f.replacementOf(t, f.contract(t, document.StatusApproved))
	v2.Status = document.StatusApproved
	f.repos.docs.On("FindAll", mock.Anything, mock.MatchedBy(func(filter document.Filter) bool {
		return len(filter.Statuses) == 1 && filter.Statuses[0] == document.StatusApproved && filter.CurrentOnly
	})).Return([]*document.Document{v2}, int64(1), nil)
	f.repos.members.On("FindByIDs", mock.Anything, []uuid.UUID{f.owner.MemberID}).Return([]*identity.Member{f.ownerMember()}, nil)

	var buf bytes.Buffer
	result, err := f.svc.ExportZIP(context.Background(), f.hr, ExportInput{ApprovedOnly: true}, &buf)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Written)
	require.Len(t, f.archive.entries, 1)
	assert.Equal(t, "E-007/contract/Employment contract-v2.pdf", f.archive.entries[0].Name)
	assert.Equal(t, v2.StorageKey, f.archive.entries[0].StorageKey)
	assert.Equal(t, "PK", buf.String())
}

func TestService_ExportZIPTooLarge(t *testing.T) {
	f := newFixture(t)
	f.repos.docs.On("FindAll", mock.Anything, mock.Anything).Return([]*document.Document{}, int64(4), nil)
	_, err := f.svc.ExportZIP(context.Background(), f.hr, ExportInput{}, &bytes.Buffer{})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Nil(t, f.archive.entries)
}

func TestService_FindDiscussionReminders(t *testing.T) {
	f := newFixture(t)
	stale := f.contract(t, document.StatusPendingReview)
	fresh := f.contract(t, document.StatusPendingReview)
	f.repos.docs.On("FindCommentedAcrossOrganizations", mock.Anything, fixedNow.Add(-defaultDiscussionLookback), 100).
		Return([]*document.Document{stale, fresh}, nil)
	f.repos.comments.On("FindByDocument", mock.Anything, stale.ID).
		Return([]document.Comment{comment(stale, f.hr.UserID, fixedNow.Add(-30*time.Hour), false)}, nil)
	f.repos.comments.On("FindByDocument", mock.Anything, fresh.ID).
		Return([]document.Comment{comment(fresh, f.hr.UserID, fixedNow.Add(-2*time.Hour), false)}, nil)

	reminders, err := f.svc.FindDiscussionReminders(context.Background(), 24*time.Hour, 100)
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, stale.ID, reminders[0].Document.ID)
	assert.Equal(t, 30*time.Hour, reminders[0].Waiting)
}

func TestProfileService(t *testing.T) {
	tenantID := uuid.New()
	employee := principal(tenantID, identity.RoleEmployee)
	hr := principal(tenantID, identity.RoleHR)

	t.Run("employees manage only their own", func(t *testing.T) {
		mocks, repos := newRepoMocks()
		svc := NewProfileService(repos, zap.NewNop())
		_, err := svc.CreateProfileDocument(context.Background(), employee, uuid.New(), document.ProfileDocumentInput{Kind: document.ProfileDocumentPassport})
		assert.ErrorIs(t, err, shared.ErrForbidden)
		mocks.profDocs.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("attachment must belong to the holder", func(t *testing.T) {
		mocks, repos := newRepoMocks()
		svc := NewProfileService(repos, zap.NewNop())
		foreign := &document.Document{OwnerUserID: uuid.New()}
		docID := uuid.New()
		mocks.members.On("FindByUserID", mock.Anything, employee.UserID).Return(&identity.Member{UserID: employee.UserID}, nil)
		mocks.docs.On("FindByID", mock.Anything, docID).Return(foreign, nil)

		_, err := svc.CreateProfileDocument(context.Background(), employee, employee.UserID, document.ProfileDocumentInput{
			Kind: document.ProfileDocumentVisa, DocumentID: &docID,
		})
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})

	t.Run("expiring documents carry days left", func(t *testing.T) {
		mocks, repos := newRepoMocks()
		svc := NewProfileService(repos, zap.NewNop())
		svc.now = func() time.Time { return fixedNow }
		today := shared.DateOnly(fixedNow)
		expires := today.AddDate(0, 0, 10)
		pd := &document.ProfileDocument{UserID: employee.UserID, Kind: document.ProfileDocumentPassport, ExpiresOn: &expires}
		mocks.profDocs.On("FindExpiringBetween", mock.Anything, today, today.AddDate(0, 0, 30)).Return([]*document.ProfileDocument{pd}, nil)
		mocks.profiles.On("FindByUserIDs", mock.Anything, []uuid.UUID{employee.UserID}).
			Return([]*identity.Profile{{UserID: employee.UserID, FullName: "Ana Lima"}}, nil)

		_, err := svc.ListExpiringProfileDocuments(context.Background(), employee, 30)
		assert.ErrorIs(t, err, shared.ErrForbidden)

		got, err := svc.ListExpiringProfileDocuments(context.Background(), hr, 30)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, 10, got[0].DaysLeft)
		assert.Equal(t, "Ana Lima", got[0].HolderName)

		_, err = svc.ListExpiringProfileDocuments(context.Background(), hr, 400)
		assert.ErrorIs(t, err, shared.ErrInvalidInput)
	})
}
