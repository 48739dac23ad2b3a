package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"peo_admin/internal/db"
	"peo_admin/internal/model"
	"peo_admin/internal/user"
)

var adminFlags struct {
	email    string
	password string
	name     string
	sex      string
}

var createAdminCmd = &cobra.Command{
	Use:     "create-admin",
	Short:   "Create an active SUPERADMIN account",
	Example: `  peoadmin create-admin --email pe@province.gov.ph --password 'S3cret!!' --sex MALE`,
	RunE:    runCreateAdmin,
}

func init() {
	f := createAdminCmd.Flags()
	f.StringVar(&adminFlags.email, "email", "", "login email")
	f.StringVar(&adminFlags.password, "password", "", "initial password")
	f.StringVar(&adminFlags.name, "name", "", "display name")
	f.StringVar(&adminFlags.sex, "sex", "", "MALE or FEMALE")
	_ = createAdminCmd.MarkFlagRequired("email")
	_ = createAdminCmd.MarkFlagRequired("password")
	_ = createAdminCmd.MarkFlagRequired("sex")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	gdb, err := db.InitMySQL(cfg.MySQL.DSN, logger.Logger)
	if err != nil {
		return err
	}
	defer db.Close()

	queries, closeQueries, err := newQueries(cfg, nil, logger)
	if err != nil {
		return err
	}
	defer closeQueries()

	svc := user.NewService(gdb, queries, logger)
	res, err := svc.Create(cmd.Context(), user.Actor{ID: "cli", Role: model.RoleSuperAdmin}, user.CreateInput{
		Name:            adminFlags.name,
		Sex:             adminFlags.sex,
		Email:           adminFlags.email,
		Role:            string(model.RoleSuperAdmin),
		Password:        adminFlags.password,
		ConfirmPassword: adminFlags.password,
		Status:          string(model.UserStatusActive),
	})
	if err != nil {
		return err
	}

	logger.WithFields(logrus.Fields{
		"user_id":  res.User.ID,
		"email":    res.User.Email,
		"strength": res.Strength.Label,
	}).Info("✓ SUPERADMIN created")
	return nil
}
