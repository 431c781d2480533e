package cmd

import (
	"fmt"
	"time"

	"github.com/punchamoorthee/momoledger/internal/config"
	"github.com/punchamoorthee/momoledger/internal/extractor"
	"github.com/punchamoorthee/momoledger/internal/store"
	"github.com/spf13/cobra"
)

var (
	parseCmd = &cobra.Command{
		Use:     "parse",
		Short:   "Parse an SMS backup into the transaction file",
		Long:    ``,
		Example: "ingest parse -i modified_sms_v2.xml -o data/transactions.json",
		RunE:    parse,
	}
	parseCmdIn       = "in"
	parseCmdOut      = "out"
	parseCmdTimezone = "timezone"
	parseCmdDedupe   = "dedupe"
)

func parse(ccmd *cobra.Command, args []string) error {
	in, _ := ccmd.Flags().GetString(parseCmdIn)
	out, _ := ccmd.Flags().GetString(parseCmdOut)
	tz, _ := ccmd.Flags().GetString(parseCmdTimezone)
	dedupe, _ := ccmd.Flags().GetBool(parseCmdDedupe)

	var loc *time.Location
	if tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("invalid timezone %q: %w", tz, err)
		}
		loc = l
	} else {
		cfg, err := config.LoadBase()
		if err != nil {
			return err
		}
		loc = cfg.Location
	}

	msgs, err := extractor.ReadFile(in)
	if err != nil {
		return err
	}

	txs := extractor.New(loc).ExtractAll(msgs)
	if dedupe {
		var dropped int
		txs, dropped = store.Unique(txs)
		if dropped > 0 {
			log.Warn().Int("dropped", dropped).Msg("Dropped duplicate transaction ids")
		}
	}

	if err := store.NewFileStore(out).Save(txs); err != nil {
		return err
	}
	log.Info().Str("in", in).Str("out", out).Int("messages", len(msgs)).Int("transactions", len(txs)).Msg("Wrote transactions")
	return nil
}
