package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"r2-dashboard/internal/interfaces/httpserver/requests"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and store the session token",
	Example: `  r2ctl login --email admin@example.com
  r2ctl login --server https://r2.example.com --email admin@example.com`,
	RunE: runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE:  runLogout,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in account",
	RunE:  runWhoami,
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-run setup of the dashboard",
	Long: `Inspect and complete the dashboard onboarding: create the first admin account,
then store R2 credentials. The credentials are verified against R2 before they are saved.`,
}

var setupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the setup progress",
	RunE:  runSetupStatus,
}

var setupAdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Create the first admin account",
	RunE:  runSetupAdmin,
}

var setupR2Cmd = &cobra.Command{
	Use:   "r2",
	Short: "Store and verify R2 credentials",
	RunE:  runSetupR2,
}

func init() {
	setupCmd.AddCommand(setupStatusCmd)
	setupCmd.AddCommand(setupAdminCmd)
	setupCmd.AddCommand(setupR2Cmd)

	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when empty)")

	setupAdminCmd.Flags().String("name", "", "Display name")
	setupAdminCmd.Flags().String("email", "", "Admin email")
	setupAdminCmd.Flags().String("password", "", "Admin password (prompted when empty)")

	setupR2Cmd.Flags().String("account-id", "", "Cloudflare account id")
	setupR2Cmd.Flags().String("access-key-id", "", "R2 access key id")
	setupR2Cmd.Flags().String("secret-access-key", "", "R2 secret access key (prompted when empty)")
	setupR2Cmd.Flags().String("endpoint", "", "Custom S3 endpoint")
	setupR2Cmd.Flags().String("api-token", "", "Cloudflare API token for domain settings")
}

func runLogin(cmd *cobra.Command, args []string) error {
	profile, api, err := session(cmd)
	if err != nil {
		return err
	}

	email, _ := cmd.Flags().GetString("email")
	password, _ := cmd.Flags().GetString("password")
	if email == "" {
		email = prompt("Email")
	}
	if password == "" {
		password = prompt("Password")
	}

	resp, err := api.Login(cmd.Context(), email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	profile.Token = resp.Token
	profile.Email = resp.User.Email
	if err := saveProfile(cmd, profile); err != nil {
		return fmt.Errorf("save config: %w", err)
	}

	color.Green("Logged in to %s as %s\n", profile.Server, resp.User.Email)
	fmt.Printf("Session expires %s\n", resp.ExpiresAt.Local().Format("2006-01-02 15:04"))
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	profile, _, err := session(cmd)
	if err != nil {
		return err
	}
	profile.Token = ""
	profile.Email = ""
	if err := saveProfile(cmd, profile); err != nil {
		return err
	}
	fmt.Println("Logged out.")
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	profile, api, err := session(cmd)
	if err != nil {
		return err
	}
	me, err := api.Me(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Printf("%s <%s> role=%s server=%s\n", me.Name, me.Email, me.Role, profile.Server)
	return nil
}

func runSetupStatus(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}
	status, err := api.SetupStatus(cmd.Context())
	if err != nil {
		return err
	}

	printCheck("admin account", status.HasAdmin)
	printCheck("R2 credentials", status.HasCredentials)
	printCheck("setup completed", status.SetupCompleted)
	return nil
}

func runSetupAdmin(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}

	var req requests.SetupAdminRequest
	req.Name, _ = cmd.Flags().GetString("name")
	req.Email, _ = cmd.Flags().GetString("email")
	req.Password, _ = cmd.Flags().GetString("password")
	if req.Email == "" {
		req.Email = prompt("Email")
	}
	if req.Password == "" {
		req.Password = prompt("Password")
	}

	u, err := api.CreateAdmin(cmd.Context(), req)
	if err != nil {
		return err
	}
	color.Green("Created admin %s (%s)\n", u.Email, u.ID)
	fmt.Println("Next: r2ctl login, then r2ctl setup r2")
	return nil
}

func runSetupR2(cmd *cobra.Command, args []string) error {
	_, api, err := session(cmd)
	if err != nil {
		return err
	}

	var req requests.SetupR2Request
	req.AccountID, _ = cmd.Flags().GetString("account-id")
	req.AccessKeyID, _ = cmd.Flags().GetString("access-key-id")
	req.SecretAccessKey, _ = cmd.Flags().GetString("secret-access-key")
	req.Endpoint, _ = cmd.Flags().GetString("endpoint")
	req.APIToken, _ = cmd.Flags().GetString("api-token")
	if req.AccountID == "" {
		req.AccountID = prompt("Account ID")
	}
	if req.AccessKeyID == "" {
		req.AccessKeyID = prompt("Access key ID")
	}
	if req.SecretAccessKey == "" {
		req.SecretAccessKey = prompt("Secret access key")
	}

	result, err := api.ConfigureR2(cmd.Context(), req)
	if err != nil {
		return err
	}
	color.Green("Credentials verified, %d bucket(s) visible. Setup complete.\n", result.BucketCount)
	return nil
}

func printCheck(label string, ok bool) {
	if ok {
		color.Green("  ✓ %s\n", label)
		return
	}
	color.Yellow("  ✗ %s\n", label)
}

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	fmt.Printf("%s: ", label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}
