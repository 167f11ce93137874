// Package integration runs the repositories and services against a real
// PostgreSQL started with testcontainers. The schema comes from the embedded
// migrations, so constraints and triggers are the production ones.
package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/domain/identity"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/migration"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/persistence"
	"github.com/We2399/idea-launcher-pro-sub001/migrations"
	"github.com/We2399/idea-launcher-pro-sub001/tests/testutil"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// One container per package run; each test truncates what it wrote
	sharedContainer   *tcpostgres.PostgresContainer
	sharedContainerMu sync.Mutex
	sharedDSN         string
)

// TestDB is a migrated database plus the repositories the suites share
type TestDB struct {
	*persistence.Database
	Organizations *persistence.GormOrganizationRepository
	Users         *persistence.GormUserRepository
	Members       *persistence.GormMemberRepository
	Roles         *persistence.GormUserRoleRepository
	t             *testing.T
}

// NewTestDB connects to the shared container, starting and migrating it on
// first use. Tables are truncated when the test ends.
func NewTestDB(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	dsn := startContainer(t)
	gormConfig := &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)}
	if os.Getenv("TEST_DB_DEBUG") != "" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}
	gormDB, err := gorm.Open(gormpostgres.Open(dsn), gormConfig)
	require.NoError(t, err, "Failed to connect to database")
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(2)

	db := persistence.NewDatabaseFromGorm(gormDB)
	tdb := &TestDB{
		Database:      db,
		Organizations: persistence.NewGormOrganizationRepository(db.Tenant()),
		Users:         persistence.NewGormUserRepository(db.Tenant()),
		Members:       persistence.NewGormMemberRepository(db.Tenant()),
		Roles:         persistence.NewGormUserRoleRepository(db.Tenant()),
		t:             t,
	}
	t.Cleanup(func() {
		tdb.truncate()
		_ = db.Close()
	})
	return tdb
}

func startContainer(t *testing.T) string {
	t.Helper()
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()
	if sharedContainer != nil {
		return sharedDSN
	}

	ctx := context.Background()
	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("hr_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	// The migrator closes the connection it is given
	sqlDB, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migrations.FS, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up(), "Failed to run migrations")
	_ = m.Close()

	sharedContainer = container
	sharedDSN = dsn
	return dsn
}

// CleanupSharedContainer terminates the container. Call it from TestMain.
func CleanupSharedContainer() {
	sharedContainerMu.Lock()
	defer sharedContainerMu.Unlock()
	if sharedContainer == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	_ = sharedContainer.Terminate(ctx)
	sharedContainer = nil
	sharedDSN = ""
}

func (tdb *TestDB) truncate() {
	var tables []string
	err := tdb.DB.Raw(`
		SELECT tablename FROM pg_tables
		WHERE schemaname = 'public' AND tablename != 'schema_migrations'
	`).Scan(&tables).Error
	if err != nil {
		tdb.t.Logf("Warning: failed to list tables: %v", err)
		return
	}
	for _, table := range tables {
		if err := tdb.DB.Exec(fmt.Sprintf("TRUNCATE TABLE %q CASCADE", table)).Error; err != nil {
			tdb.t.Logf("Warning: failed to truncate %s: %v", table, err)
		}
	}
}

// CreateOrganization stores a new organization on the free plan
func (tdb *TestDB) CreateOrganization(name, slug string) *identity.Organization {
	tdb.t.Helper()
	org, err := identity.NewOrganization(name, slug)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, tdb.Organizations.Create(context.Background(), org))
	return org
}

// Employee is a user employed by an organization
type Employee struct {
	User   *identity.User
	Member *identity.Member
}

// CreateEmployee stores a user, their membership and role grants
func (tdb *TestDB) CreateEmployee(org *identity.Organization, email, employeeNumber string, roles ...identity.Role) Employee {
	tdb.t.Helper()
	ctx := testutil.TenantContext(context.Background(), org.ID)

	user, err := identity.NewUser(email, "correct-horse-battery")
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, tdb.Users.Create(ctx, user))

	member, err := identity.NewMember(org.ID, user.ID, employeeNumber)
	require.NoError(tdb.t, err)
	require.NoError(tdb.t, tdb.Members.Create(ctx, member))

	if len(roles) == 0 {
		roles = []identity.Role{identity.RoleEmployee}
	}
	for _, role := range roles {
		grant, err := identity.NewUserRole(org.ID, user.ID, role, false, nil)
		require.NoError(tdb.t, err)
		require.NoError(tdb.t, tdb.Roles.Grant(ctx, grant))
	}
	return Employee{User: user, Member: member}
}

// Principal is the employee calling with the given roles
func (e Employee) Principal(roles ...identity.Role) identity.Principal {
	return testutil.Principal(e.Member.TenantID, e.User.ID, e.Member.ID, roles...)
}

// Ctx binds a background context to the organization
func Ctx(orgID uuid.UUID) context.Context {
	return testutil.TenantContext(context.Background(), orgID)
}
