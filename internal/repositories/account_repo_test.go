package repositories

import (
	"context"
	"testing"
	"time"

	"trackwise/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

func testTime() time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
}

type AccountRepoTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	repo      AccountRepository
	accountID uuid.UUID
	ctx       context.Context
}

func (suite *AccountRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewAccountRepo(mock)
	suite.accountID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *AccountRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestAccountRepoTestSuite(t *testing.T) {
	suite.Run(t, new(AccountRepoTestSuite))
}

func (suite *AccountRepoTestSuite) TestCreate() {
	account := &models.Account{
		ID:           suite.accountID,
		Username:     "alice",
		PasswordHash: "$2a$10$hash",
	}

	suite.mock.ExpectExec(`INSERT INTO accounts`).
		WithArgs(account.ID, account.Username, account.PasswordHash).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := suite.repo.Create(suite.ctx, account)
	assert.NoError(suite.T(), err)
}

func (suite *AccountRepoTestSuite) TestGetByUsername() {
	rows := pgxmock.NewRows([]string{"id", "username", "password_hash", "created_at", "updated_at"}).
		AddRow(suite.accountID, "alice", "$2a$10$hash", testTime(), testTime())

	suite.mock.ExpectQuery(`SELECT .+ FROM accounts\s+WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(rows)

	account, err := suite.repo.GetByUsername(suite.ctx, "alice")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), suite.accountID, account.ID)
}

func (suite *AccountRepoTestSuite) TestGetByUsername_Unknown() {
	suite.mock.ExpectQuery(`SELECT .+ FROM accounts\s+WHERE username = \$1`).
		WithArgs("ghost").
		WillReturnError(pgx.ErrNoRows)

	account, err := suite.repo.GetByUsername(suite.ctx, "ghost")
	assert.Nil(suite.T(), account)
	assert.ErrorIs(suite.T(), err, pgx.ErrNoRows)
}

func (suite *AccountRepoTestSuite) TestExistsByUsername() {
	rows := pgxmock.NewRows([]string{"exists"}).AddRow(true)

	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("alice").
		WillReturnRows(rows)

	exists, err := suite.repo.ExistsByUsername(suite.ctx, "alice")
	assert.NoError(suite.T(), err)
	assert.True(suite.T(), exists)
}
