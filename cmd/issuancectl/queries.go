package main

import (
	"fmt"
	"strings"
	"time"

	gocmd "github.com/goliatone/go-command"
	issuancecommand "github.com/goliatone/go-issuance/command"
	"github.com/goliatone/go-issuance/core"
	issuancequery "github.com/goliatone/go-issuance/query"
	"github.com/spf13/cobra"
)

func (a *app) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show supply, backing and lifecycle state",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			msg := issuancequery.StatusMessage{ConfigID: a.configID}
			if err := msg.Validate(); err != nil {
				return err
			}
			status, err := a.facade.Queries().Status.Query(c.Context(), msg)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(statusView(status))
			}
			a.printf("record:      %s\n", status.ConfigID)
			a.printf("state:       %s\n", status.State)
			if status.PauseReason != "" {
				a.printf("paused:      %s %s\n", status.PauseReason, status.PauseNote)
			}
			a.printf("collateral:  %s\n", status.CollateralType)
			a.printf("supply:      %d / %d\n", status.CurrentSupply, status.MaxSupply)
			a.printf("backing:     %d (ratio %d%%)\n", status.BackingValue, status.ReserveRatio)
			a.printf("authority:   %s\n", status.PrimaryAuthority)
			a.printf("guardian:    %s\n", status.Guardian)
			a.printf("head:        #%d %s\n", status.Sequence, status.HeadCID)
			return nil
		},
	}
}

func (a *app) newEventsCmd() *cobra.Command {
	var (
		kinds  []string
		actor  string
		since  string
		limit  int
		offset int
	)
	cmd := &cobra.Command{
		Use:   "events",
		Short: "List audit events",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			filter := core.AuditFilter{
				ConfigID: a.configID,
				Actor:    core.Identity(actor),
				Limit:    limit,
				Offset:   offset,
			}
			for _, kind := range kinds {
				if kind = strings.TrimSpace(kind); kind != "" {
					filter.Kinds = append(filter.Kinds, core.EventKind(kind))
				}
			}
			if strings.TrimSpace(since) != "" {
				at, err := time.Parse(time.RFC3339, strings.TrimSpace(since))
				if err != nil {
					return fmt.Errorf("issuancectl: --since must be RFC3339: %w", err)
				}
				filter.Since = &at
			}
			msg := issuancequery.ListAuditEventsMessage{Filter: filter}
			if err := msg.Validate(); err != nil {
				return err
			}
			page, err := a.facade.Queries().ListAuditEvents.Query(c.Context(), msg)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(page)
			}
			for _, event := range page.Items {
				a.printf("#%-4d %-18s %-12s amount=%d supply=%d ratio=%d %s\n",
					event.Sequence, event.Kind, event.Actor, event.Amount, event.Supply, event.ReserveRatio, event.CID)
			}
			a.printf("%d of %d events\n", len(page.Items), page.Total)
			return nil
		},
	}
	cmd.Flags().StringSliceVar(&kinds, "kind", nil, "filter by event kind (repeatable)")
	cmd.Flags().StringVar(&actor, "actor", "", "filter by actor")
	cmd.Flags().StringVar(&since, "since", "", "only events at or after this RFC3339 time")
	cmd.Flags().IntVar(&limit, "limit", 0, "page size (0 for all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "page offset")
	return cmd
}

func (a *app) newVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify",
		Short: "Recompute and check the audit chain",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			msg := issuancequery.VerifyAuditChainMessage{ConfigID: a.configID}
			if err := msg.Validate(); err != nil {
				return err
			}
			report, err := a.facade.Queries().VerifyAuditChain.Query(c.Context(), msg)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(report)
			}
			a.printf("chain ok: %d events, head %s\n", report.Events, report.HeadCID)
			return nil
		},
	}
}

func (a *app) newBalanceCmd() *cobra.Command {
	var holder string
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show a holder balance",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			if strings.TrimSpace(holder) == "" {
				holder = strings.TrimSpace(a.caller)
			}
			balanceQuery := a.facade.Queries().Balance
			if balanceQuery == nil {
				return fmt.Errorf("issuancectl: balance reads are not available")
			}
			msg := issuancequery.BalanceMessage{ConfigID: a.configID, Holder: core.Identity(holder)}
			if err := msg.Validate(); err != nil {
				return err
			}
			balance, err := balanceQuery.Query(c.Context(), msg)
			if err != nil {
				return err
			}
			if a.jsonOutput {
				return a.printJSON(map[string]any{"holder": holder, "balance": balance})
			}
			a.printf("%s: %d\n", holder, balance)
			return nil
		},
	}
	cmd.Flags().StringVar(&holder, "holder", "", "holder identity (defaults to --as)")
	return cmd
}

func (a *app) newMonitorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run one guardian health check and pause on anomalies",
		Long: `monitor checks the reserve ratio and the audit chain as the guardian
given with --as. When an anomaly is found the record is put under emergency pause.`,
		Args: cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			guardian, err := a.callerIdentity()
			if err != nil {
				return err
			}
			monitor := &core.GuardianMonitor{Service: a.service, Guardian: guardian, MinReserveRatio: a.minRatio}
			checker := issuancecommand.NewGuardianCheckCommand(monitor)
			msg := issuancecommand.GuardianCheckMessage{ConfigID: a.configID}
			if err := msg.Validate(); err != nil {
				return err
			}
			collector := gocmd.NewResult[core.MonitorReport]()
			if err := checker.Execute(gocmd.ContextWithResult(c.Context(), collector), msg); err != nil {
				return err
			}
			report, _ := collector.Load()
			if a.jsonOutput {
				return a.printJSON(report)
			}
			if report.Healthy {
				a.printf("healthy: ratio %d%%, chain ok\n", report.Status.ReserveRatio)
				return nil
			}
			for _, anomaly := range report.Anomalies {
				a.printf("anomaly: %s\n", anomaly)
			}
			if report.Paused {
				a.printf("record %s is under emergency pause\n", report.ConfigID)
			}
			return nil
		},
	}
}
