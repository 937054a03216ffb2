package main

import (
	"errors"
	"log/slog"
	"strconv"

	"github.com/TomasB/iplocate/internal/data"
	"github.com/TomasB/iplocate/internal/ipv4"
	"github.com/TomasB/iplocate/internal/logging"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func lookupCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "lookup <ip>...",
		Short: "Resolve addresses against the dataset and print a table",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(v, cmd)
			if err != nil {
				return err
			}

			// stdout carries the table, logs go to stderr
			logger, logCloser := logging.New(logging.Options{
				Level:  cfg.LogLevel,
				Output: cmd.ErrOrStderr(),
				File:   cfg.LogFile,
			})
			defer logCloser.Close()
			slog.SetDefault(logger)

			b, err := openBackend(cfg)
			if err != nil {
				return err
			}
			defer b.lookup.Close()

			if b.dataset != nil {
				if err := b.dataset.Preload(); err != nil {
					return err
				}
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"IP", "ID", "Country", "Code", "City", "Status"})
			for _, ip := range args {
				t.AppendRow(lookupRow(b.lookup, ip))
			}
			t.SetStyle(table.StyleLight)
			t.Render()
			return nil
		},
	}
}

func lookupRow(lookup data.LocationLookup, ip string) table.Row {
	id, err := ipv4.ParseID(ip)
	if err != nil {
		return table.Row{ip, "", "", "", "", "invalid address"}
	}

	loc, err := lookup.LookupLocation(id)
	switch {
	case errors.Is(err, data.ErrNotFound):
		return table.Row{ip, strconv.FormatUint(uint64(id), 10), "", "", "", "not found"}
	case err != nil:
		return table.Row{ip, strconv.FormatUint(uint64(id), 10), "", "", "", err.Error()}
	}
	return table.Row{ip, strconv.FormatUint(uint64(id), 10), loc.Country, loc.CountryCode, loc.City, "ok"}
}
