package services

import (
	"github.com/stretchr/testify/assert"
	"github.com/yukikurage/cse-council-api/internal/config"
	"github.com/yukikurage/cse-council-api/internal/models"
	"github.com/yukikurage/cse-council-api/internal/repository"
	"github.com/yukikurage/cse-council-api/internal/testfixtures"
)

func (suite *ServiceTestSuite) TestCreateUser() {
	cseRole := "Secrétaire"
	user, err := suite.users.CreateUser(suite.ctx, suite.actor(suite.admin), CreateUserInput{
		Email:    "  Nouveau@CSE.example ",
		Password: "un-mot-de-passe",
		Name:     "Nouveau Membre",
		CSERole:  &cseRole,
	})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), "nouveau@cse.example", user.Email)
	assert.Equal(suite.T(), models.UserRoleMember, user.Role)
	assert.True(suite.T(), user.IsActive)
	assert.NotEqual(suite.T(), "un-mot-de-passe", user.PasswordHash)

	logged, err := suite.auth.Login(suite.ctx, LoginInput{Email: "nouveau@cse.example", Password: "un-mot-de-passe"})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), user.ID, logged.ID)

	_, err = suite.users.CreateUser(suite.ctx, suite.actor(suite.admin), CreateUserInput{
		Email:    "nouveau@cse.example",
		Password: "un-mot-de-passe",
		Name:     "Doublon",
	})
	assert.ErrorIs(suite.T(), err, ErrEmailTaken)
}

func (suite *ServiceTestSuite) TestCreateUser_Validation() {
	cases := map[string]CreateUserInput{
		"email":    {Email: "pas-un-email", Password: "un-mot-de-passe", Name: "Nom"},
		"password": {Email: "a@cse.example", Password: "court", Name: "Nom"},
		"name":     {Email: "b@cse.example", Password: "un-mot-de-passe", Name: "N"},
		"role":     {Email: "c@cse.example", Password: "un-mot-de-passe", Name: "Nom", Role: "GUEST"},
	}
	for field, input := range cases {
		_, err := suite.users.CreateUser(suite.ctx, suite.actor(suite.admin), input)
		assert.ErrorIs(suite.T(), err, ErrValidation, field)
	}

	_, err := suite.users.CreateUser(suite.ctx, suite.actor(suite.member), CreateUserInput{
		Email: "d@cse.example", Password: "un-mot-de-passe", Name: "Nom",
	})
	assert.ErrorIs(suite.T(), err, ErrForbidden)
}

func (suite *ServiceTestSuite) TestDeactivateUser() {
	err := suite.users.DeactivateUser(suite.ctx, suite.actor(suite.admin), suite.admin.ID)
	assert.ErrorIs(suite.T(), err, ErrCannotDeactivateSelf)

	inactive := false
	_, err = suite.users.UpdateUser(suite.ctx, suite.actor(suite.admin), suite.admin.ID, UpdateUserInput{IsActive: &inactive})
	assert.ErrorIs(suite.T(), err, ErrCannotDeactivateSelf)

	suite.Require().NoError(suite.users.DeactivateUser(suite.ctx, suite.actor(suite.admin), suite.member.ID))

	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: suite.member.Email, Password: testfixtures.DefaultPassword})
	assert.ErrorIs(suite.T(), err, ErrAccountInactive)

	_, err = suite.auth.CurrentUser(suite.member.ID)
	assert.ErrorIs(suite.T(), err, ErrUnauthenticated)
}

func (suite *ServiceTestSuite) TestUpdateUser_RoleChange() {
	role := models.UserRoleAdmin
	updated, err := suite.users.UpdateUser(suite.ctx, suite.actor(suite.president), suite.member.ID, UpdateUserInput{Role: &role})
	suite.Require().NoError(err)
	assert.Equal(suite.T(), models.UserRoleAdmin, updated.Role)

	current, err := suite.auth.CurrentUser(suite.member.ID)
	suite.Require().NoError(err)
	assert.True(suite.T(), ActorFromUser(current).IsManager())
}

func (suite *ServiceTestSuite) TestListUsers() {
	testfixtures.CreateUser(suite.T(), suite.db, models.UserRoleMember, testfixtures.WithName("Zoé"), testfixtures.Inactive())

	users, err := suite.users.ListUsers(suite.actor(suite.member), ListUsersInput{})
	suite.Require().NoError(err)
	suite.Require().Len(users, 4)
	assert.False(suite.T(), users[3].IsActive)

	active := true
	role := models.UserRoleMember
	members, err := suite.users.ListUsers(suite.actor(suite.member), ListUsersInput{Role: &role, IsActive: &active})
	suite.Require().NoError(err)
	suite.Require().Len(members, 1)
	assert.Equal(suite.T(), suite.member.ID, members[0].ID)
}

func (suite *ServiceTestSuite) TestLogin_WrongPassword() {
	_, err := suite.auth.Login(suite.ctx, LoginInput{Email: suite.admin.Email, Password: "mauvais"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)

	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: "inconnu@cse.example", Password: "mauvais"})
	assert.ErrorIs(suite.T(), err, ErrInvalidCredentials)
}

func (suite *ServiceTestSuite) TestSeedPresident() {
	userRepo := repository.NewUserRepository(suite.db)
	cfg := config.SeedConfig{PresidentEmail: "president@cse.example", PresidentName: "Président", PresidentCSERole: "Président du CSE"}

	result, err := SeedPresident(suite.ctx, userRepo, cfg)
	suite.Require().NoError(err)
	assert.False(suite.T(), result.Created)

	suite.Require().NoError(suite.db.Model(&models.User{}).Where("1 = 1").Update("is_active", false).Error)

	result, err = SeedPresident(suite.ctx, userRepo, cfg)
	suite.Require().NoError(err)
	suite.Require().True(result.Created)
	assert.Equal(suite.T(), models.UserRolePresident, result.User.Role)
	assert.NotEmpty(suite.T(), result.Password)

	_, err = suite.auth.Login(suite.ctx, LoginInput{Email: cfg.PresidentEmail, Password: result.Password})
	assert.NoError(suite.T(), err)
}
