package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"condasetup/internal/envs"
)

func newEnvsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "envs",
		Short: "List environments known to the package manager",
		Args:  cobra.NoArgs,
		RunE:  runEnvs,
	}
}

type envRow struct {
	envs.Record
	LastUsed *time.Time `json:"last_used,omitempty"`
}

func runEnvs(cmd *cobra.Command, _ []string) error {
	app, err := openApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.adapter.IsExecutableAvailable() {
		return errors.New(app.cfg.Manager + " is not installed; run condasetup install first")
	}

	list, err := envs.NewRegistry(app.adapter, app.log).List(commandContext(cmd))
	if err != nil {
		return err
	}

	rows := make([]envRow, 0, len(list))
	for _, r := range list {
		row := envRow{Record: r}
		if t, ok := envs.LastUsed(r); ok {
			row.LastUsed = &t
		}
		rows = append(rows, row)
	}

	if outputJSON {
		data, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return fmt.Errorf("encode envs json: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
	fmt.Fprintln(w, "#\tNAME\tACTIVE\tLAST USED\tPATH")
	for i, row := range rows {
		// Index 0 is the base environment, which is never offered for selection.
		index := fmt.Sprintf("%d", i)
		if i == 0 {
			index = "-"
		}
		active := ""
		if row.Active {
			active = "*"
		}
		lastUsed := "-"
		if row.LastUsed != nil {
			lastUsed = row.LastUsed.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", index, row.Name, active, lastUsed, row.Path)
	}
	return w.Flush()
}
