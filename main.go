package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/EssncDev/Solana-SPL-Distributor/config"
	"github.com/EssncDev/Solana-SPL-Distributor/reporter"
	"github.com/EssncDev/Solana-SPL-Distributor/services"
	"github.com/EssncDev/Solana-SPL-Distributor/storage"
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), `Usage:
  %[1]s preview [mint]   compute allocations and resolve token accounts, no transfers
  %[1]s commit <mint>    run the full distribution for one mint, transfers included

Flags:
`, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.SetFlags(log.LstdFlags)

	cfgPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}
	command := flag.Arg(0)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	secret, err := cfg.Secret()
	if err != nil {
		log.Fatalf("[FATAL] load funder secret: %v", err)
	}
	funder, err := secret.Keypair()
	if err != nil {
		log.Fatalf("[FATAL] decode funder secret: %v", err)
	}
	log.Printf("[INFO] funder wallet: %s", funder.PublicKey())

	table, err := config.LoadDistribution(cfg.DistributionFile)
	if err != nil {
		log.Fatalf("[FATAL] load distribution table: %v", err)
	}

	runLedger, err := storage.NewDB(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatalf("[FATAL] open run ledger: %v", err)
	}
	defer runLedger.Close()

	client := services.NewSolanaClient(cfg.Endpoint, funder)
	svc := services.NewDistributionService(
		client,
		runLedger,
		reporter.NewConsole(os.Stdout),
		table,
		funder.PublicKey(),
		time.Duration(cfg.CooldownSeconds)*time.Second,
	)

	ctx := context.Background()
	switch command {
	case "preview":
		if err := svc.Preview(ctx, flag.Arg(1)); err != nil {
			log.Fatalf("[FATAL] preview: %v", err)
		}
	case "commit":
		mint := flag.Arg(1)
		if mint == "" {
			log.Fatal("[FATAL] commit requires a mint address; sending all mints unattended is not supported")
		}
		if err := svc.Commit(ctx, mint); err != nil {
			log.Fatalf("[FATAL] commit: %v", err)
		}
	default:
		usage()
		os.Exit(2)
	}
}
