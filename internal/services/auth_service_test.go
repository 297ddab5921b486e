package services

import (
	"github.com/javajoker/payhub-backend/internal/errs"
	"github.com/javajoker/payhub-backend/internal/models"
	"github.com/javajoker/payhub-backend/internal/utils"
)

func (s *ServiceTestSuite) TestRegisterAndLogin() {
	resp, err := s.auth.Register(s.ctx, &RegisterRequest{
		Email:     "New@Example.com",
		Password:  "Str0ng!Pass",
		FirstName: "Nia",
		Subdomain: "nia-films",
	})
	s.Require().NoError(err)
	s.Equal("new@example.com", resp.User.Email)
	s.Equal(models.RoleFreelancer, resp.User.Role)
	s.True(resp.User.CommissionRate.Equal(dec("10")))
	s.Equal("Bearer", resp.TokenType)

	claims, err := utils.ValidateJWT(resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(resp.User.ID.String(), claims.UserID)
	s.Equal("freelancer", claims.Role)

	_, err = s.auth.Register(s.ctx, &RegisterRequest{Email: "new@example.com", Password: "Str0ng!Pass"})
	s.ErrorIs(err, errs.ErrAlreadyExists)

	_, err = s.auth.Register(s.ctx, &RegisterRequest{Email: "admin@example.com", Password: "Str0ng!Pass", Role: models.RoleAdmin})
	s.ErrorIs(err, errs.ErrValidation)

	login, err := s.auth.Login(s.ctx, &LoginRequest{Email: "new@example.com", Password: "Str0ng!Pass"})
	s.Require().NoError(err)
	s.NotNil(login.User.LastLoginAt)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "new@example.com", Password: "wrong"})
	s.ErrorIs(err, errs.ErrUnauthorized)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: "ghost@example.com", Password: "whatever"})
	s.ErrorIs(err, errs.ErrUnauthorized)

	refreshed, err := s.auth.RefreshToken(s.ctx, login.RefreshToken)
	s.Require().NoError(err)
	s.Equal(login.User.ID, refreshed.User.ID)

	_, err = s.auth.RefreshToken(s.ctx, login.AccessToken)
	s.ErrorIs(err, errs.ErrUnauthorized)
}

func (s *ServiceTestSuite) TestDisabledAccountCannotLogin() {
	active := false
	_, err := s.admin.UpdateUserStatus(s.ctx, s.owner, s.freelancer.ID, &UpdateUserStatusRequest{IsActive: &active})
	s.ErrorIs(err, errs.ErrForbidden)

	admin := s.createUser("admin@example.com", models.RoleAdmin, "0")
	adminReq := s.owner
	adminReq.UserID, adminReq.Role = &admin.ID, admin.Role
	_, err = s.admin.UpdateUserStatus(s.ctx, adminReq, s.freelancer.ID, &UpdateUserStatusRequest{IsActive: &active})
	s.Require().NoError(err)

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: s.freelancer.Email, Password: "Secret123!"})
	s.ErrorIs(err, errs.ErrForbidden)
}

func (s *ServiceTestSuite) TestProfileAndStorefront() {
	sub := "Maker-Studio"
	user, err := s.users.UpdateProfile(s.ctx, s.freelancer.ID, &UpdateUserProfileRequest{Subdomain: &sub})
	s.Require().NoError(err)
	s.Equal("maker-studio", *user.Subdomain)

	front, err := s.users.GetStorefront(s.ctx, "maker-studio")
	s.Require().NoError(err)
	s.Equal(s.freelancer.ID, front.ID)

	other := s.createUser("other@example.com", models.RoleFreelancer, "10")
	_, err = s.users.UpdateProfile(s.ctx, other.ID, &UpdateUserProfileRequest{Subdomain: &sub})
	s.ErrorIs(err, errs.ErrAlreadyExists)

	reserved := "admin"
	_, err = s.users.UpdateProfile(s.ctx, other.ID, &UpdateUserProfileRequest{Subdomain: &reserved})
	s.ErrorIs(err, errs.ErrValidation)

	_, err = s.users.GetStorefront(s.ctx, "nobody-here")
	s.ErrorIs(err, errs.ErrNotFound)
}

func (s *ServiceTestSuite) TestChangePassword() {
	err := s.users.ChangePassword(s.ctx, s.freelancer.ID, &ChangePasswordRequest{CurrentPassword: "nope", NewPassword: "N3w!Password"})
	s.ErrorIs(err, errs.ErrUnauthorized)

	s.Require().NoError(s.users.ChangePassword(s.ctx, s.freelancer.ID, &ChangePasswordRequest{
		CurrentPassword: "Secret123!", NewPassword: "N3w!Password",
	}))

	_, err = s.auth.Login(s.ctx, &LoginRequest{Email: s.freelancer.Email, Password: "N3w!Password"})
	s.NoError(err)
}
