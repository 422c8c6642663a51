package main

import (
	"fmt"
	"io"
	"os"

	"github.com/tvi/stripcodesig"

	cli "github.com/urfave/cli/v2"
)

func loadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func printReport(report *stripcodesig.Report) {
	for i, a := range report.Archs {
		fmt.Printf("Patch report (%d): %s\n", i+1, a)
	}
	if len(report.Archs) == 0 {
		return
	}
	if len(report.Archs) == 1 {
		return
	}
	fmt.Printf("total: %d instructions patched across %d architectures\n", report.TotalPatched, len(report.Archs))
}

func runPatch(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 2 {
		return cli.Exit("Insufficient arguments", 1)
	}
	inFile, outFile := args.Get(0), args.Get(1)
	extended := c.Bool("extended")
	dryRun := c.Bool("dry-run")

	var w io.Writer
	if c.Bool("verbose") {
		w = os.Stdout
	}

	data, err := loadFile(inFile)
	if err != nil {
		return cli.Exit(err, 1)
	}

	report, err := patchBuffer(data, extended, !dryRun, w)
	if err != nil {
		return cli.Exit(err, 1)
	}
	printReport(report)

	if dryRun {
		return nil
	}
	if report.TotalPatched <= 0 {
		fmt.Println("No patches found, not generating output file")
		return nil
	}
	if err := os.WriteFile(outFile, data, 0o644); err != nil {
		return cli.Exit(err, 1)
	}
	return nil
}

func runReportOnly(c *cli.Context) error {
	args := c.Args()
	if args.Len() < 1 {
		return cli.Exit("Insufficient arguments", 1)
	}

	var w io.Writer
	if c.Bool("verbose") {
		w = os.Stdout
	}

	data, err := loadFile(args.First())
	if err != nil {
		return cli.Exit(err, 1)
	}

	report, err := patchBuffer(data, c.Bool("extended"), false, w)
	if err != nil {
		return cli.Exit(err, 1)
	}
	printReport(report)
	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "stripcodesig"
	app.Usage = "Patch privileged/problematic x86 instructions out of a Mach-O __TEXT,__text section and strip its code signature"
	app.Action = func(c *cli.Context) error {
		cli.ShowAppHelp(c)
		return nil
	}

	profileFlags := []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "print a per-instruction trace of the scan",
		},
		&cli.BoolFlag{
			Name:  "extended",
			Usage: "enable the extended patch profile (FISTTP, LDDQU, REST tracking)",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:      "patch",
			Aliases:   []string{"p"},
			Usage:     "Patch a Mach-O file and strip its code signature",
			ArgsUsage: "infile outfile",
			Action:    runPatch,
			Flags: append(append([]cli.Flag{}, profileFlags...),
				&cli.BoolFlag{
					Name:  "dry-run",
					Usage: "scan and report without writing a patched file",
				},
			),
		},
		{
			Name:      "report",
			Aliases:   []string{"r"},
			Usage:     "Scan a Mach-O file and print findings without patching it",
			ArgsUsage: "infile",
			Action:    runReportOnly,
			Flags:     profileFlags,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
