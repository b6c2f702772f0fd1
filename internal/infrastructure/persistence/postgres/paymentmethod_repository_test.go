package postgres_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mwhayford/rentledger/internal/application/services/testhelpers"
	"github.com/mwhayford/rentledger/internal/domain"
	"github.com/mwhayford/rentledger/internal/infrastructure/persistence/postgres"
)

type PaymentMethodRepositoryTestSuite struct {
	suite.Suite
	testDB *testhelpers.TestDatabase
	repo   *postgres.PaymentMethodRepository
}

func TestPaymentMethodRepositorySuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping container-backed test in short mode")
	}
	suite.Run(t, new(PaymentMethodRepositoryTestSuite))
}

func (suite *PaymentMethodRepositoryTestSuite) SetupSuite() {
	suite.testDB = testhelpers.SetupTestDatabase(suite.T())
	suite.repo = postgres.NewPaymentMethodRepository(suite.testDB.DB)
}

func (suite *PaymentMethodRepositoryTestSuite) TearDownSuite() {
	suite.testDB.Cleanup(suite.T())
}

func (suite *PaymentMethodRepositoryTestSuite) SetupTest() {
	suite.testDB.CleanTables(suite.T())
}

func (suite *PaymentMethodRepositoryTestSuite) newMethod(userID string, isDefault bool) *domain.PaymentMethod {
	method, err := domain.NewPaymentMethod(uuid.NewString(), userID, domain.MethodCard)
	suite.Require().NoError(err)
	method.IsDefault = isDefault
	suite.Require().NoError(suite.repo.Create(context.Background(), method))
	return method
}

func (suite *PaymentMethodRepositoryTestSuite) Test_SetDefault_DisplacesExistingDefault() {
	ctx := context.Background()
	old := suite.newMethod("user-1", true)
	next := suite.newMethod("user-1", false)

	suite.Require().NoError(suite.repo.SetDefault(ctx, "user-1", next.ID))

	methods, err := suite.repo.FindByUserID(ctx, "user-1")
	suite.Require().NoError(err)
	suite.Require().Len(methods, 2)

	defaults := 0
	for _, m := range methods {
		if m.IsDefault {
			defaults++
			suite.Equal(next.ID, m.ID)
		}
	}
	suite.Equal(1, defaults)

	reloaded, err := suite.repo.FindByID(ctx, old.ID)
	suite.Require().NoError(err)
	suite.False(reloaded.IsDefault)
}

func (suite *PaymentMethodRepositoryTestSuite) Test_SetDefault_IsRepeatable() {
	ctx := context.Background()
	a := suite.newMethod("user-1", true)
	b := suite.newMethod("user-1", false)

	suite.Require().NoError(suite.repo.SetDefault(ctx, "user-1", b.ID))
	suite.Require().NoError(suite.repo.SetDefault(ctx, "user-1", a.ID))
	suite.Require().NoError(suite.repo.SetDefault(ctx, "user-1", b.ID))

	reloaded, err := suite.repo.FindByID(ctx, b.ID)
	suite.Require().NoError(err)
	suite.True(reloaded.IsDefault)
}

func (suite *PaymentMethodRepositoryTestSuite) Test_SetDefault_UnknownMethodLeavesCurrentDefault() {
	ctx := context.Background()
	current := suite.newMethod("user-1", true)

	err := suite.repo.SetDefault(ctx, "user-1", uuid.NewString())
	suite.True(domain.IsErrorCode(err, domain.ErrCodeMethodNotFound))

	reloaded, findErr := suite.repo.FindByID(ctx, current.ID)
	suite.Require().NoError(findErr)
	suite.True(reloaded.IsDefault)
}

func (suite *PaymentMethodRepositoryTestSuite) Test_SetDefault_RefusesForeignMethod() {
	ctx := context.Background()
	suite.newMethod("user-1", true)
	other := suite.newMethod("user-2", false)

	err := suite.repo.SetDefault(ctx, "user-1", other.ID)
	suite.True(domain.IsErrorCode(err, domain.ErrCodeMethodNotFound))
}
