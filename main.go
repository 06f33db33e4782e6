package main

// Entry point for vi-access
import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/FBakkensen/vi-access/account"
	"github.com/FBakkensen/vi-access/auth"
	"github.com/FBakkensen/vi-access/azure"
	"github.com/FBakkensen/vi-access/config"
	"github.com/FBakkensen/vi-access/httpclient"
	"github.com/FBakkensen/vi-access/logging"
)

func main() {
	runCmd := flag.String("run", "token", "Command to run: token, account, accounts, doctor, settings")
	accountName := flag.String("account", "", "Account name override (defaults to VI_ACCOUNT_NAME)")
	permission := flag.String("permission", string(auth.DefaultPermission), "Token permission: Reader, Contributor, MyAccessAdministrator, Owner")
	scope := flag.String("scope", string(auth.DefaultScope), "Token scope: Account, Project, Video")
	flag.Parse()

	// Initialize logging first (allow override via env)
	logLevel := logging.LevelInfo
	if v := strings.TrimSpace(os.Getenv("VI_ACCESS_LOG_LEVEL")); v != "" {
		switch strings.ToUpper(v) {
		case logging.LevelDebug:
			logLevel = logging.LevelDebug
		case logging.LevelInfo:
			logLevel = logging.LevelInfo
		case logging.LevelWarn:
			logLevel = logging.LevelWarn
		case logging.LevelError:
			logLevel = logging.LevelError
		}
	}
	if err := logging.InitLogger(logLevel); err != nil {
		fmt.Printf("Warning: Failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	logging.Info("Starting vi-access", "command", *runCmd)

	cfg := config.LoadConfig()

	if err := runCommand(*runCmd, cfg, *accountName, *permission, *scope); err != nil {
		logging.Error("Command failed", "command", *runCmd, "error", err.Error())
		fmt.Printf("Error running command '%s': %v\n", *runCmd, err)
		os.Exit(1)
	}
}

// runCommand dispatches a non-interactive command
func runCommand(command string, cfg config.Config, accountName, permission, scope string) error {
	switch command {
	case "token":
		return printAccessToken(cfg, permission, scope)
	case "account":
		return printAccount(cfg, accountName)
	case "accounts":
		return printAccountList(cfg)
	case "doctor":
		return checkArmAccess(cfg)
	case "settings":
		return printSettings(cfg)
	default:
		return fmt.Errorf("unknown command: %s. Available commands: token, account, accounts, doctor, settings", command)
	}
}

// newTokenStack wires credential -> ARM acquirer -> exchanger -> tokenizer
func newTokenStack(cfg config.Config) (*auth.Tokenizer, *auth.ArmTokenProvider, *httpclient.Provider, error) {
	credential, err := auth.ResolveCredential(cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to resolve credential: %w", err)
	}

	provider := httpclient.NewProvider(httpclient.DefaultPolicy())
	armTokens := auth.NewArmTokenProvider(credential, cfg.ARMBaseURL)
	exchanger := auth.NewTokenExchanger(cfg, provider)
	return auth.NewTokenizer(armTokens, exchanger), armTokens, provider, nil
}

// printAccessToken derives and prints a scoped account access token
func printAccessToken(cfg config.Config, permission, scope string) error {
	if err := cfg.ValidateForTokenFlows(); err != nil {
		return err
	}

	tokenizer, _, _, err := newTokenStack(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	token, err := tokenizer.GetAccessTokenWithScope(ctx, auth.Permission(permission), auth.Scope(scope))
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}

// printAccount resolves the configured account and prints its identity
func printAccount(cfg config.Config, accountName string) error {
	if err := cfg.ValidateForTokenFlows(); err != nil {
		return err
	}

	_, armTokens, provider, err := newTokenStack(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resolver := account.NewResolver(cfg, armTokens, provider)
	acct, err := resolver.Get(ctx, accountName)
	if err != nil {
		return err
	}

	fmt.Printf("Account: %s\nID:      %s\nRegion:  %s\n", acct.Name, acct.ID, acct.Location)
	return nil
}

// printAccountList lists the accounts in the configured resource group
func printAccountList(cfg config.Config) error {
	if err := cfg.ValidateForTokenFlows(); err != nil {
		return err
	}

	_, armTokens, provider, err := newTokenStack(cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	resolver := account.NewResolver(cfg, armTokens, provider)
	accounts, err := resolver.List(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Found %d accounts:\n", len(accounts))
	for i, a := range accounts {
		fmt.Printf("%d. %s (%s) - %s\n", i+1, a.Name, a.ID, a.Location)
	}
	return nil
}

// checkArmAccess verifies the credential can reach the resource manager
func checkArmAccess(cfg config.Config) error {
	credential, err := auth.ResolveCredential(cfg)
	if err != nil {
		return fmt.Errorf("failed to resolve credential: %w", err)
	}

	client, err := azure.NewSubscriptionsClient(credential)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	subs, err := client.ListSubscriptions(ctx)
	if err != nil {
		return fmt.Errorf("failed to list subscriptions: %w", err)
	}

	fmt.Printf("Found %d subscriptions:\n", len(subs))
	for i, s := range subs {
		fmt.Printf("%d. %s\n", i+1, s.FormatForDisplay())
	}
	return nil
}

// printSettings prints the effective configuration with secrets masked
func printSettings(cfg config.Config) error {
	for name, value := range cfg.ListAllSettings() {
		fmt.Printf("%s = %s\n", name, value)
	}
	return nil
}
