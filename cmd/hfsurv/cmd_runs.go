package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hfsurv/internal/format"
	"hfsurv/internal/store"
)

var runsFlags struct {
	study  string
	output string
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List stored runs with their models and expressions",
	RunE:  runRuns,
}

func init() {
	f := runsCmd.Flags()
	f.StringVar(&runsFlags.study, "study", "", "Study YAML (default: built-in reference study)")
	f.StringVar(&runsFlags.output, "format", "ascii", "Output format (ascii, markdown)")
}

func runRuns(cmd *cobra.Command, _ []string) error {
	s, err := loadStudy(runsFlags.study)
	if err != nil {
		return err
	}
	st, err := store.Open(s.StorePath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs recorded")
		return nil
	}

	mode := format.ParseMode(runsFlags.output)
	tbl := format.NewTable(mode)
	tbl.Header("run", "study", "dataset", "created", "models", "expressions")
	tbl.RightAlign(1, 5, 6)
	for _, r := range runs {
		models, err := st.ListModels(r.ID)
		if err != nil {
			return err
		}
		exprs, err := st.ListExpressions(r.ID)
		if err != nil {
			return err
		}
		tbl.Row(r.ID, r.Study, r.Dataset, r.CreatedAt, len(models), len(exprs))
	}
	fmt.Println(tbl.String())
	return nil
}
