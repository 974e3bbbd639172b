package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/susu3304/studybot/internal/settlement"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

const (
	inputFlag    = "input"
	outputFlag   = "output"
	formatFlag   = "format"
	policyFlag   = "policy"
	stdioCLIName = "-"
	formatYAML   = "yaml"
	formatTable  = "table"
)

var build string
var semanticVersion = "v0.1.0-dev" + build

func readInput(location string, stdin io.Reader, v interface{}) error {
	var data []byte
	var err error
	if location == stdioCLIName {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(location)
	}
	if err != nil {
		return fmt.Errorf("read input %s: %w", location, err)
	}
	if err := yaml.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse input %s: %w", location, err)
	}
	return nil
}

func writeYAML(w io.Writer, v interface{}) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding to YAML failed: %w", err)
	}
	return enc.Close()
}

// output opens the destination named by the output flag; the returned
// closer is a no-op for stdout.
func output(cCtx *cli.Context) (io.Writer, func() error, error) {
	location := cCtx.String(outputFlag)
	if location == stdioCLIName {
		return cCtx.App.Writer, func() error { return nil }, nil
	}
	f, err := os.OpenFile(location, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func run(cCtx *cli.Context, sheet interface{}, settle func(settlement.Policy) (interface{}, error), table func(io.Writer, interface{}) error) error {
	policy, err := settlement.LoadPolicy(cCtx.String(policyFlag))
	if err != nil {
		return err
	}
	if err := readInput(cCtx.String(inputFlag), cCtx.App.Reader, sheet); err != nil {
		return err
	}
	report, err := settle(policy)
	if err != nil {
		return err
	}

	w, closeOut, err := output(cCtx)
	if err != nil {
		return err
	}
	switch cCtx.String(formatFlag) {
	case formatTable:
		err = table(w, report)
	case formatYAML:
		err = writeYAML(w, report)
	default:
		err = fmt.Errorf("unknown format %q", cCtx.String(formatFlag))
	}
	if cerr := closeOut(); err == nil {
		err = cerr
	}
	return err
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     inputFlag,
			Aliases:  []string{"i"},
			Usage:    "YAML file describing the study or room, or \"-\" for stdin",
			Required: true,
		},
		&cli.StringFlag{
			Name:    outputFlag,
			Aliases: []string{"o"},
			Usage:   "Where to write the result. Can be a file path or \"-\" (for stdout).",
			Value:   stdioCLIName,
		},
		&cli.StringFlag{
			Name:    formatFlag,
			Aliases: []string{"f"},
			Usage:   "Output format: yaml or table",
			Value:   formatYAML,
		},
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	return &cli.App{
		Name:    "settle",
		Usage:   "Settle study deposits and co-working mission rewards",
		Version: semanticVersion,
		Reader:  stdin,
		Writer:  stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    policyFlag,
				Aliases: []string{"p"},
				Usage:   "Settlement policy YAML (penalty_per_miss, reward_tiers)",
				EnvVars: []string{"SETTLEMENT_POLICY_FILE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "attendance",
				Usage: "Compute deposit refunds from attendance records",
				Flags: commonFlags(),
				Action: func(cCtx *cli.Context) error {
					var sheet settlement.AttendanceSheet
					return run(cCtx, &sheet, func(p settlement.Policy) (interface{}, error) {
						return sheet.Settle(p)
					}, func(w io.Writer, v interface{}) error {
						return writeAttendanceTable(w, v.(settlement.AttendanceReport))
					})
				},
			},
			{
				Name:  "missions",
				Usage: "Rank a co-working room by base and mission scores",
				Flags: commonFlags(),
				Action: func(cCtx *cli.Context) error {
					var sheet settlement.MissionSheet
					return run(cCtx, &sheet, func(p settlement.Policy) (interface{}, error) {
						return sheet.Settle(p)
					}, func(w io.Writer, v interface{}) error {
						return writeStandingsTable(w, v.(settlement.MissionReport))
					})
				},
			},
		},
	}
}

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
