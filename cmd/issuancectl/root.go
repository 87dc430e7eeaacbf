package main

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	persistence "github.com/goliatone/go-persistence-bun"
	repositorycache "github.com/goliatone/go-repository-cache/cache"
	issuance "github.com/goliatone/go-issuance"
	"github.com/goliatone/go-issuance/adapters/gologger"
	"github.com/goliatone/go-issuance/attestation"
	"github.com/goliatone/go-issuance/core"
	sqlstore "github.com/goliatone/go-issuance/store/sql"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/spf13/cobra"
)

type app struct {
	stdout  io.Writer
	stderr  io.Writer
	logSync func() error

	driver          string
	dsn             string
	migrate         bool
	cacheTTL        time.Duration
	configID        string
	caller          string
	jsonOutput      bool
	verbose         bool
	resumePolicy    string
	blockRedemption bool
	minRatio        uint64
	guardianKeys    []string
	attestationHash string

	client  *persistence.Client
	factory *sqlstore.RepositoryFactory
	service *issuance.Service
	facade  *issuance.Facade
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:   "issuancectl",
		Short: "Operate a collateral-backed issuance ledger",
		Long: `issuancectl drives an issuance record stored in sqlite or postgres.

Every mutation is authorized against the caller identity given with --as.
The primary authority emits and manages backing; the guardian holds the
emergency circuit breaker.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.open,
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.driver, "driver", sqlstore.DriverSQLite, "database driver (sqlite3 or postgres)")
	flags.StringVar(&a.dsn, "dsn", "file:issuance.db?_foreign_keys=on", "database DSN")
	flags.BoolVar(&a.migrate, "migrate", true, "apply embedded migrations on start")
	flags.DurationVar(&a.cacheTTL, "cache-ttl", 0, "serve record reads from a cache with this TTL (0 disables)")
	flags.StringVar(&a.configID, "record", "", "issuance record id (default record when empty)")
	flags.StringVar(&a.caller, "as", "", "caller identity")
	flags.BoolVar(&a.jsonOutput, "json", false, "print results as JSON")
	flags.BoolVar(&a.verbose, "verbose", false, "log operations to stderr")
	flags.StringVar(&a.resumePolicy, "resume-policy", "", "lifecycle resume policy (matching_authority or shared_flag)")
	flags.BoolVar(&a.blockRedemption, "block-redemption-on-emergency", false, "reject burns while under emergency pause")
	flags.Uint64Var(&a.minRatio, "min-reserve-ratio", 0, "guardian monitor reserve ratio floor (0 uses the configured default)")
	flags.StringSliceVar(&a.guardianKeys, "guardian-key", nil, "guardian attestation key as guardian=alg:base64 (repeatable); enables signed emission")
	flags.StringVar(&a.attestationHash, "attestation-hash", string(attestation.HashSHA256), "attestation digest (sha256 or sha3-256)")

	root.AddCommand(
		a.newInitCmd(),
		a.newEmitCmd(),
		a.newTransferCmd(),
		a.newBurnCmd(),
		a.newBackingCmd(),
		a.newToggleCmd(),
		a.newPauseCmd(),
		a.newResumeCmd(),
		a.newRotateGuardianCmd(),
		a.newStatusCmd(),
		a.newEventsCmd(),
		a.newVerifyCmd(),
		a.newBalanceCmd(),
		a.newMonitorCmd(),
		a.newKeygenCmd(),
		a.newAttestCmd(),
	)
	return root
}

func (a *app) open(cmd *cobra.Command, _ []string) error {
	if cmd.Annotations[offlineAnnotation] == "true" {
		return nil
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var base glog.Logger = glog.Nop()
	if a.verbose {
		verbose := newZapLogger(a.stderr)
		a.logSync = verbose.Sync
		base = verbose
	}
	serviceLogger, _, storeLogger := gologger.ForComponents(nil, base)

	client, err := sqlstore.Open(ctx, sqlstore.OpenConfig{Driver: a.driver, DSN: a.dsn, Migrate: a.migrate})
	if err != nil {
		return err
	}
	a.client = client
	factory, err := sqlstore.NewRepositoryFactoryFromPersistence(client)
	if err != nil {
		return err
	}
	a.factory = factory

	opts := []core.Option{
		core.WithLogger(serviceLogger),
		core.WithConfigProvider(core.NewCfgxConfigProvider(core.StaticRawConfigLoader{Values: a.rawConfig()})),
	}
	opts = append(opts, factory.ServiceOptions()...)
	if a.cacheTTL > 0 {
		cacheCfg := repositorycache.DefaultConfig()
		cacheCfg.TTL = a.cacheTTL
		cacheService, err := repositorycache.NewCacheService(cacheCfg)
		if err != nil {
			return fmt.Errorf("issuancectl: cache: %w", err)
		}
		cached, err := sqlstore.NewCachedConfigStore(factory.ConfigStore(), cacheService, sqlstore.WithCacheLogger(storeLogger))
		if err != nil {
			return err
		}
		opts = append(opts, core.WithConfigStore(cached), core.WithAuditLog(cached))
	}
	if len(a.guardianKeys) > 0 {
		keys, err := a.keyring()
		if err != nil {
			return err
		}
		opts = append(opts, core.WithProofValidator(attestation.NewSignedValidator(keys, serviceLogger)))
	}

	svc, err := core.NewService(core.Config{}, opts...)
	if err != nil {
		return err
	}
	a.service = svc
	facade, err := issuance.NewFacade(svc, issuance.WithBalanceReader(factory.Ledger()))
	if err != nil {
		return err
	}
	a.facade = facade
	return nil
}

func (a *app) close() error {
	if a.logSync != nil {
		// Sync reports EINVAL on a terminal stderr; nothing is left to flush.
		_ = a.logSync()
		a.logSync = nil
	}
	if a.client == nil {
		return nil
	}
	err := a.client.Close()
	a.client = nil
	return err
}

func (a *app) rawConfig() map[string]any {
	raw := map[string]any{}
	lifecycle := map[string]any{}
	if policy := strings.TrimSpace(a.resumePolicy); policy != "" {
		lifecycle["resume_policy"] = policy
	}
	if a.blockRedemption {
		lifecycle["block_redemption_on_emergency"] = true
	}
	if len(lifecycle) > 0 {
		raw["lifecycle"] = lifecycle
	}
	if a.minRatio > 0 {
		raw["monitor"] = map[string]any{"min_reserve_ratio": a.minRatio}
	}
	return raw
}

func (a *app) keyring() (*attestation.Keyring, error) {
	keys := attestation.NewKeyring()
	for _, entry := range a.guardianKeys {
		guardian, encoded, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("issuancectl: guardian key %q must be guardian=alg:base64", entry)
		}
		key, err := attestation.ParsePublicKey(encoded, attestation.HashAlg(a.attestationHash))
		if err != nil {
			return nil, err
		}
		if err := keys.Register(core.Identity(strings.TrimSpace(guardian)), key); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (a *app) callerIdentity() (core.Identity, error) {
	caller := core.Identity(strings.TrimSpace(a.caller))
	if caller.IsZero() {
		return "", fmt.Errorf("issuancectl: --as is required for this command")
	}
	return caller, nil
}
