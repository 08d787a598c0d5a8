package cmd

import (
	"database/sql"
	"fmt"
	"os"
	"runtime"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"

	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/accounts"
	"github.com/nextlevelbuilder/goclaw-whatsapp/internal/config"
)

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check system environment and configuration health",
		Run: func(cmd *cobra.Command, args []string) {
			runDoctor()
		},
	}
}

func runDoctor() {
	fmt.Println("goclaw-whatsapp doctor")
	fmt.Printf("  Version:  %s\n", Version)
	fmt.Printf("  OS:       %s/%s\n", runtime.GOOS, runtime.GOARCH)
	fmt.Printf("  Go:       %s\n", runtime.Version())
	fmt.Println()

	// Config
	cfgPath := resolveConfigPath()
	fmt.Printf("  Config:   %s", cfgPath)
	if _, err := os.Stat(cfgPath); err != nil {
		fmt.Println(" (NOT FOUND, using defaults + env)")
	} else {
		fmt.Println(" (OK)")
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  Config load error: %s\n", err)
		return
	}

	fmt.Printf("  Gateway:  %s:%d%s\n", cfg.Gateway.Host, cfg.Gateway.Port, cfg.Gateway.WebhookPath)

	// Accounts
	rt := config.NewRuntimeAdapter(cfg)
	fmt.Println()
	fmt.Println("  Accounts:")
	ids := accounts.ListAccountIDs(rt)
	anyReady := false
	for _, id := range ids {
		acct := accounts.ResolveAccount(rt, id)
		status := "NOT CONFIGURED"
		switch {
		case !acct.Enabled:
			status = "disabled"
		case acct.Configured:
			status = fmt.Sprintf("ready (token from %s)", acct.TokenSource)
			anyReady = true
		case acct.AccessToken == "" && acct.PhoneNumberID == "":
			status = "missing token and phone number ID"
		case acct.AccessToken == "":
			status = "missing access token"
		case acct.PhoneNumberID == "":
			status = "missing phone number ID"
		}
		fmt.Printf("    %-16s %s\n", acct.AccountID+":", status)
		if acct.Configured && acct.Config.WebhookVerifyToken == nil {
			fmt.Printf("    %-16s webhook verify token not set — GET verification will fail\n", "")
		}
	}
	if !anyReady {
		fmt.Println()
		fmt.Println("  Set WHATSAPP_ACCESS_TOKEN and WHATSAPP_PHONE_NUMBER_ID, or add")
		fmt.Println("  an accounts entry to the whatsapp section of config.json.")
	}

	// Database
	fmt.Println()
	fmt.Println("  Storage:")
	switch {
	case cfg.Database.PostgresDSN != "":
		fmt.Printf("    %-12s postgres\n", "Backend:")
		db, dbErr := sql.Open("pgx", cfg.Database.PostgresDSN)
		if dbErr != nil {
			fmt.Printf("    %-12s CONNECT FAILED (%s)\n", "Status:", dbErr)
		} else if pingErr := db.Ping(); pingErr != nil {
			fmt.Printf("    %-12s CONNECT FAILED (%s)\n", "Status:", pingErr)
			db.Close()
		} else {
			fmt.Printf("    %-12s OK\n", "Status:")
			db.Close()
		}
	case cfg.Database.SQLitePath != "":
		fmt.Printf("    %-12s sqlite\n", "Backend:")
		fmt.Printf("    %-12s %s\n", "Path:", config.ExpandHome(cfg.Database.SQLitePath))
	default:
		fmt.Printf("    %-12s memory (chat state lost on restart)\n", "Backend:")
	}

	// Telemetry
	if cfg.Telemetry.Enabled {
		fmt.Println()
		fmt.Println("  Telemetry:")
		fmt.Printf("    %-12s %s (%s)\n", "Endpoint:", cfg.Telemetry.Endpoint, protocolOrDefault(cfg.Telemetry.Protocol))
	}
}

func protocolOrDefault(p string) string {
	if p == "" {
		return "grpc"
	}
	return p
}
