package main

import (
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ucpm/scrum-api/internal/auth"
	"github.com/ucpm/scrum-api/internal/database"
	"github.com/ucpm/scrum-api/internal/logging"
	"github.com/ucpm/scrum-api/internal/repository"
	"github.com/ucpm/scrum-api/internal/services"
)

var superuser struct {
	username string
	email    string
	password string
}

var createSuperuserCmd = &cobra.Command{
	Use:   "createsuperuser",
	Short: "Create an administrator account",
	RunE:  runCreateSuperuser,
}

func init() {
	flags := createSuperuserCmd.Flags()
	flags.StringVar(&superuser.username, "username", "", "username of the new superuser")
	flags.StringVar(&superuser.email, "email", "", "email of the new superuser")
	flags.StringVar(&superuser.password, "password", "", "password of the new superuser")
	_ = createSuperuserCmd.MarkFlagRequired("username")
	_ = createSuperuserCmd.MarkFlagRequired("email")
	_ = createSuperuserCmd.MarkFlagRequired("password")

	rootCmd.AddCommand(createSuperuserCmd)
}

func runCreateSuperuser(cmd *cobra.Command, args []string) error {
	cfg, err := bootstrap()
	if err != nil {
		return err
	}
	if err := database.Migrate(); err != nil {
		return err
	}

	tokens := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTL, cfg.Auth.RefreshTokenTTL)
	authService := services.NewAuthService(repository.NewUserRepository(database.GetDB()), tokens)

	user, err := authService.CreateSuperuser(services.RegisterInput{
		Username: superuser.username,
		Email:    superuser.email,
		Password: superuser.password,
	})
	if err != nil {
		var serr *services.Error
		if errors.As(err, &serr) && serr.Field != "" {
			return errors.New(serr.Field + ": " + serr.Message)
		}
		return err
	}

	logging.Logger.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": user.Username,
	}).Info("Superuser created")
	return nil
}
