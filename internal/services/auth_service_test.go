package services

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	serviceSuite
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) TestRegisterAndLogin() {
	user, pair, err := s.auth.Register(RegisterInput{Username: "alice", Email: "Alice@Example.com", Password: "password123"})
	s.Require().NoError(err)
	s.Equal("alice@example.com", user.Email)
	s.NotEmpty(pair.Access)
	s.NotEqual("password123", user.PasswordHash)

	loggedIn, pair, err := s.auth.Login(LoginInput{Username: "alice", Password: "password123"})
	s.Require().NoError(err)
	s.Equal(user.ID, loggedIn.ID)

	access, err := s.auth.Refresh(pair.Refresh)
	s.Require().NoError(err)
	s.NotEmpty(access)

	_, err = s.auth.Refresh(pair.Access)
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *AuthServiceTestSuite) TestRegister_Validation() {
	_, _, err := s.auth.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
	s.ErrorIs(err, ErrPasswordTooShort)

	_, _, err = s.auth.Register(RegisterInput{Username: "bob", Email: "not-an-email", Password: "password123"})
	s.ErrorIs(err, ErrValidation)

	_, _, err = s.auth.Register(RegisterInput{Username: "bob", Email: "bob@example.com", Password: "password123"})
	s.Require().NoError(err)

	_, _, err = s.auth.Register(RegisterInput{Username: "bob", Email: "other@example.com", Password: "password123"})
	s.ErrorIs(err, ErrUsernameTaken)

	_, _, err = s.auth.Register(RegisterInput{Username: "bobby", Email: "BOB@example.com", Password: "password123"})
	s.ErrorIs(err, ErrEmailTaken)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPassword() {
	_, _, err := s.auth.Register(RegisterInput{Username: "carol", Email: "carol@example.com", Password: "password123"})
	s.Require().NoError(err)

	_, _, err = s.auth.Login(LoginInput{Username: "carol", Password: "wrong-password"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, _, err = s.auth.Login(LoginInput{Username: "nobody", Password: "password123"})
	s.ErrorIs(err, ErrUnauthenticated)
}

func (s *AuthServiceTestSuite) TestUpdateProfile() {
	user, _, err := s.auth.Register(RegisterInput{Username: "dave", Email: "dave@example.com", Password: "password123"})
	s.Require().NoError(err)
	s.createUser("taken")

	bio := "  scrum fan "
	updated, err := s.auth.UpdateProfile(user.ID, UpdateProfileInput{Bio: &bio})
	s.Require().NoError(err)
	s.Equal("scrum fan", updated.Bio)

	same := "dave"
	_, err = s.auth.UpdateProfile(user.ID, UpdateProfileInput{Username: &same})
	s.NoError(err)

	taken := "taken"
	_, err = s.auth.UpdateProfile(user.ID, UpdateProfileInput{Username: &taken})
	s.ErrorIs(err, ErrConflict)

	password := "new-password"
	_, err = s.auth.UpdateProfile(user.ID, UpdateProfileInput{Password: &password})
	s.Require().NoError(err)
	_, _, err = s.auth.Login(LoginInput{Username: "dave", Password: "new-password"})
	s.NoError(err)
}

func (s *AuthServiceTestSuite) TestCreateSuperuser() {
	user, err := s.auth.CreateSuperuser(RegisterInput{Username: "root", Email: "root@example.com", Password: "password123"})
	s.Require().NoError(err)
	s.True(user.IsSuperuser)
}
