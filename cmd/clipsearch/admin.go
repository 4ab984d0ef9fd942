package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/clipsearch/clipsearch/config"
)

func tenantCMD() *cobra.Command {
	var cfgPath string
	var domain string
	var name string

	var tenant = &cobra.Command{
		Use:   "create-tenant",
		Short: "Register a tenant domain",
		RunE: func(cmd *cobra.Command, args []string) error {
			if domain == "" {
				return fmt.Errorf("--domain is required")
			}
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			t, err := st.CreateTenant(ctx, domain, name)
			if err != nil {
				return err
			}
			fmt.Printf("created tenant %s (%s)\n", t.Domain, t.ID)
			return nil
		},
	}
	tenant.Flags().StringVar(&domain, "domain", "", "tenant domain")
	tenant.Flags().StringVar(&name, "name", "", "display name")
	tenant.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return tenant
}

func adminCMD() *cobra.Command {
	var cfgPath string
	var tenantDomain string
	var email string
	var password string

	var admin = &cobra.Command{
		Use:   "create-admin",
		Short: "Create an admin login for a tenant",
		RunE: func(cmd *cobra.Command, args []string) error {
			if tenantDomain == "" || email == "" {
				return fmt.Errorf("--tenant and --email are required")
			}
			if len(password) < 8 {
				return fmt.Errorf("--password must be at least 8 characters")
			}
			cfg := config.LoadConfig(cfgPath)
			ctx := context.Background()
			st, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			tenant, err := st.GetTenantByDomain(ctx, tenantDomain)
			if err != nil {
				return err
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			if err := st.CreateAdmin(ctx, tenant.ID, email, string(hash)); err != nil {
				return err
			}
			fmt.Printf("created admin %s for %s\n", email, tenant.Domain)
			return nil
		},
	}
	admin.Flags().StringVar(&tenantDomain, "tenant", "", "tenant domain")
	admin.Flags().StringVar(&email, "email", "", "admin email")
	admin.Flags().StringVar(&password, "password", "", "password (min 8 chars)")
	admin.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return admin
}
