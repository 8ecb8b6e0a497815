package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type CompanyRepoTestSuite struct {
	suite.Suite
	mock pgxmock.PgxPoolIface
	repo CompanyRepository
	ctx  context.Context
}

func (suite *CompanyRepoTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.repo = NewCompanyRepo(mock)
	suite.ctx = context.Background()
}

func (suite *CompanyRepoTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestCompanyRepoTestSuite(t *testing.T) {
	suite.Run(t, new(CompanyRepoTestSuite))
}

func (suite *CompanyRepoTestSuite) TestList() {
	rows := pgxmock.NewRows([]string{"id", "name", "status", "created_at", "updated_at"}).
		AddRow(uuid.New(), "Acme", "active", testTime(), testTime()).
		AddRow(uuid.New(), "Globex", "active", testTime(), testTime())

	suite.mock.ExpectQuery(`SELECT .+ FROM companies\s+ORDER BY created_at DESC\s+LIMIT \$1 OFFSET \$2`).
		WithArgs(100, 0).
		WillReturnRows(rows)

	companies, err := suite.repo.List(suite.ctx, 100, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), companies, 2)
}

func (suite *CompanyRepoTestSuite) TestList_RowErrorSurfaces() {
	rowErr := errors.New("connection reset")
	rows := pgxmock.NewRows([]string{"id", "name", "status", "created_at", "updated_at"}).
		AddRow(uuid.New(), "Acme", "active", testTime(), testTime()).
		RowError(0, rowErr)

	suite.mock.ExpectQuery(`SELECT .+ FROM companies`).
		WithArgs(100, 0).
		WillReturnRows(rows)

	_, err := suite.repo.List(suite.ctx, 100, 0)
	assert.Error(suite.T(), err)
}
