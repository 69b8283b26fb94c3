package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"golang.org/x/crypto/bcrypt"

	"finance-tracker/internal/domain"
	"finance-tracker/internal/repository/sqlite"
)

type ServiceSuite struct {
	suite.Suite
	ctx        context.Context
	users      UserService
	categories CategoryService
	ledger     LedgerService
	summaries  SummaryService
	closeDB    func() error
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	db, err := sqlite.OpenAndMigrate(":memory:")
	require.NoError(s.T(), err)
	s.ctx = context.Background()
	s.closeDB = db.Close
	s.users = NewUserServiceWithCost(sqlite.NewUserRepository(db), bcrypt.MinCost)
	s.categories = NewCategoryService(sqlite.NewCategoryRepository(db))
	s.ledger = NewLedgerService(sqlite.NewTransactionRepository(db))
	s.summaries = NewSummaryService(sqlite.NewSummaryRepository(db))
}

func (s *ServiceSuite) TearDownTest() {
	if s.closeDB != nil {
		s.closeDB()
	}
}

func (s *ServiceSuite) identity(username string) domain.Identity {
	user, err := s.users.Register(s.ctx, username, "", "secret123")
	require.NoError(s.T(), err)
	return domain.Identity{UserID: user.ID, Username: user.Username}
}

func (s *ServiceSuite) category(id domain.Identity, name, ctype string) int64 {
	c, err := s.categories.Create(s.ctx, id, name, ctype)
	require.NoError(s.T(), err)
	return c.ID
}

func (s *ServiceSuite) record(id domain.Identity, amount string, date domain.Date, categoryID *int64) *domain.Transaction {
	m, err := domain.ParseMoney(amount)
	require.NoError(s.T(), err)
	tx, err := s.ledger.Create(s.ctx, id, domain.NewTransaction{Amount: m, Date: date, CategoryID: categoryID})
	require.NoError(s.T(), err)
	return tx
}

func (s *ServiceSuite) TestRegisterAndAuthenticate() {
	user, err := s.users.Register(s.ctx, "  alice ", "alice@example.com", "secret123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "alice", user.Username)
	assert.Empty(s.T(), user.PasswordHash)
	assert.NotZero(s.T(), user.ID)

	byName, err := s.users.Authenticate(s.ctx, "alice", "secret123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, byName.ID)
	assert.Empty(s.T(), byName.PasswordHash)

	byEmail, err := s.users.Authenticate(s.ctx, "alice@example.com", "secret123")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), user.ID, byEmail.ID)

	_, err = s.users.Authenticate(s.ctx, "alice", "wrong-password")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
	_, err = s.users.Authenticate(s.ctx, "nobody", "secret123")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
	_, err = s.users.Authenticate(s.ctx, "", "")
	assert.ErrorIs(s.T(), err, ErrInvalidCredentials)
}

func (s *ServiceSuite) TestRegisterRejectsDuplicatesAndBadInput() {
	_, err := s.users.Register(s.ctx, "alice", "alice@example.com", "secret123")
	require.NoError(s.T(), err)

	_, err = s.users.Register(s.ctx, "alice", "", "secret123")
	assert.ErrorIs(s.T(), err, ErrUserAlreadyExists)
	_, err = s.users.Register(s.ctx, "alice2", "alice@example.com", "secret123")
	assert.ErrorIs(s.T(), err, ErrUserAlreadyExists)

	cases := []struct {
		name, username, email, password string
	}{
		{"short username", "al", "", "secret123"},
		{"long username", strings.Repeat("a", 65), "", "secret123"},
		{"short password", "bob", "", "12345"},
		{"bad email", "bob", "not-an-email", "secret123"},
	}
	for _, tc := range cases {
		_, err := s.users.Register(s.ctx, tc.username, tc.email, tc.password)
		assert.ErrorIs(s.T(), err, ErrValidation, tc.name)
	}
}

func (s *ServiceSuite) TestGetUserByIDMapsMissingToNotFound() {
	_, err := s.users.GetByID(s.ctx, 4242)
	assert.ErrorIs(s.T(), err, ErrNotFound)
}

func (s *ServiceSuite) TestCategoryValidation() {
	alice := s.identity("alice")

	_, err := s.categories.Create(s.ctx, alice, "Savings", "savings")
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.categories.Create(s.ctx, alice, "   ", "income")
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.categories.Create(s.ctx, alice, strings.Repeat("x", 65), "income")
	assert.ErrorIs(s.T(), err, ErrValidation)

	c, err := s.categories.Create(s.ctx, alice, "  Salary ", "income")
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Salary", c.Name)
	assert.Equal(s.T(), domain.CategoryTypeIncome, c.Type)
	assert.Equal(s.T(), alice.UserID, c.UserID)
}

func (s *ServiceSuite) TestCategoriesAreIsolatedBetweenUsers() {
	alice := s.identity("alice")
	bob := s.identity("bob")
	s.category(alice, "Salary", "income")
	bobFood := s.category(bob, "Food", "expense")

	list, err := s.categories.List(s.ctx, alice)
	require.NoError(s.T(), err)
	require.Len(s.T(), list, 1)
	assert.Equal(s.T(), "Salary", list[0].Name)

	assert.ErrorIs(s.T(), s.categories.Delete(s.ctx, alice, bobFood), ErrNotFound)
	assert.NoError(s.T(), s.categories.Delete(s.ctx, bob, bobFood))
}

func (s *ServiceSuite) TestSalaryScenario() {
	alice := s.identity("alice")
	salary := s.category(alice, "Salary", "income")
	tx := s.record(alice, "1500.00", domain.NewDate(2024, 1, 5), &salary)
	assert.Equal(s.T(), alice.UserID, tx.UserID)

	summary, err := s.summaries.Summary(s.ctx, alice, domain.DateRange{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "1500.00", summary.TotalIncome.String())
	assert.Equal(s.T(), "0.00", summary.TotalExpense.String())
	assert.Equal(s.T(), "1500.00", summary.Balance.String())
}

func (s *ServiceSuite) TestEmptySummaryIsZero() {
	alice := s.identity("alice")

	summary, err := s.summaries.Summary(s.ctx, alice, domain.DateRange{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), domain.Summary{}, summary)

	months, err := s.summaries.MonthlySummary(s.ctx, alice)
	require.NoError(s.T(), err)
	assert.Empty(s.T(), months)
}

func (s *ServiceSuite) TestSummaryRejectsInvertedRange() {
	alice := s.identity("alice")
	from := domain.NewDate(2024, 2, 1)
	to := domain.NewDate(2024, 1, 1)

	_, err := s.summaries.Summary(s.ctx, alice, domain.DateRange{From: &from, To: &to})
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.ledger.List(s.ctx, alice, domain.TransactionFilter{DateRange: domain.DateRange{From: &from, To: &to}}, domain.Page{})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceSuite) TestMonthlySummaryAscending() {
	alice := s.identity("alice")
	rent := s.category(alice, "Rent", "expense")
	s.record(alice, "700.00", domain.NewDate(2024, 2, 1), &rent)
	s.record(alice, "650.00", domain.NewDate(2023, 11, 1), &rent)

	months, err := s.summaries.MonthlySummary(s.ctx, alice)
	require.NoError(s.T(), err)
	require.Len(s.T(), months, 2)
	assert.Equal(s.T(), [2]int{2023, 11}, [2]int{months[0].Year, months[0].Month})
	assert.Equal(s.T(), [2]int{2024, 2}, [2]int{months[1].Year, months[1].Month})
	assert.Equal(s.T(), "-700.00", months[1].Balance.String())
}

func (s *ServiceSuite) TestListPagination() {
	alice := s.identity("alice")
	for day := 1; day <= 5; day++ {
		s.record(alice, "1.00", domain.NewDate(2024, 1, day), nil)
	}

	var sizes []int
	for page := 1; page <= 4; page++ {
		list, err := s.ledger.List(s.ctx, alice, domain.TransactionFilter{}, domain.Page{Number: page, Size: 2})
		require.NoError(s.T(), err)
		sizes = append(sizes, len(list))
	}
	assert.Equal(s.T(), []int{2, 2, 1, 0}, sizes)

	all, err := s.ledger.List(s.ctx, alice, domain.TransactionFilter{}, domain.Page{})
	require.NoError(s.T(), err)
	assert.Len(s.T(), all, 5)

	_, err = s.ledger.List(s.ctx, alice, domain.TransactionFilter{}, domain.Page{Number: 1, Size: domain.MaxPageSize + 1})
	assert.ErrorIs(s.T(), err, ErrValidation)
	_, err = s.ledger.List(s.ctx, alice, domain.TransactionFilter{}, domain.Page{Number: -1, Size: 2})
	assert.ErrorIs(s.T(), err, ErrValidation)

	bogus := domain.CategoryType("savings")
	_, err = s.ledger.List(s.ctx, alice, domain.TransactionFilter{CategoryType: &bogus}, domain.Page{})
	assert.ErrorIs(s.T(), err, ErrValidation)
}

func (s *ServiceSuite) TestCrossTenantAccessIsNotFound() {
	alice := s.identity("alice")
	bob := s.identity("bob")
	tx := s.record(alice, "10.00", domain.NewDate(2024, 1, 1), nil)

	_, err := s.ledger.Get(s.ctx, bob, tx.ID)
	assert.ErrorIs(s.T(), err, ErrNotFound)

	amount := domain.MoneyFromCents(1)
	_, err = s.ledger.Update(s.ctx, bob, tx.ID, domain.TransactionPatch{Amount: &amount})
	assert.ErrorIs(s.T(), err, ErrNotFound)

	assert.ErrorIs(s.T(), s.ledger.Delete(s.ctx, bob, tx.ID), ErrNotFound)

	stored, err := s.ledger.Get(s.ctx, alice, tx.ID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "10.00", stored.Amount.String())
}

func (s *ServiceSuite) TestForeignCategoryIsInvalid() {
	alice := s.identity("alice")
	bob := s.identity("bob")
	bobFood := s.category(bob, "Food", "expense")
	aliceSalary := s.category(alice, "Salary", "income")

	_, err := s.ledger.Create(s.ctx, alice, domain.NewTransaction{
		Amount:     domain.MoneyFromCents(100),
		Date:       domain.NewDate(2024, 1, 1),
		CategoryID: &bobFood,
	})
	assert.ErrorIs(s.T(), err, ErrInvalidCategory)

	tx := s.record(alice, "10.00", domain.NewDate(2024, 1, 1), &aliceSalary)
	_, err = s.ledger.Update(s.ctx, alice, tx.ID, domain.TransactionPatch{
		CategoryID: domain.OptionalID{Set: true, Value: &bobFood},
	})
	assert.ErrorIs(s.T(), err, ErrInvalidCategory)

	stored, err := s.ledger.Get(s.ctx, alice, tx.ID)
	require.NoError(s.T(), err)
	require.NotNil(s.T(), stored.CategoryID)
	assert.Equal(s.T(), aliceSalary, *stored.CategoryID)
}

func (s *ServiceSuite) TestCreateAndUpdateValidation() {
	alice := s.identity("alice")

	_, err := s.ledger.Create(s.ctx, alice, domain.NewTransaction{Amount: domain.MoneyFromCents(1)})
	assert.ErrorIs(s.T(), err, ErrValidation, "date is required")

	long := strings.Repeat("d", 201)
	_, err = s.ledger.Create(s.ctx, alice, domain.NewTransaction{
		Amount:      domain.MoneyFromCents(1),
		Date:        domain.NewDate(2024, 1, 1),
		Description: &long,
	})
	assert.ErrorIs(s.T(), err, ErrValidation)

	tx := s.record(alice, "1.00", domain.NewDate(2024, 1, 1), nil)
	_, err = s.ledger.Update(s.ctx, alice, tx.ID, domain.TransactionPatch{
		Description: domain.OptionalString{Set: true, Value: &long},
	})
	assert.ErrorIs(s.T(), err, ErrValidation)

	note := "  groceries "
	updated, err := s.ledger.Update(s.ctx, alice, tx.ID, domain.TransactionPatch{
		Description: domain.OptionalString{Set: true, Value: &note},
	})
	require.NoError(s.T(), err)
	require.NotNil(s.T(), updated.Description)
	assert.Equal(s.T(), "groceries", *updated.Description)

	unchanged, err := s.ledger.Update(s.ctx, alice, tx.ID, domain.TransactionPatch{})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), updated.Description, unchanged.Description)
}
