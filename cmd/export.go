package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/daniellim27/leadgen-scraper/internal/export"
)

var (
	exportIn     string
	exportFormat string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export business records from a JSON file to CSV or Excel",
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := initApp(cfg, "cli")
		if err != nil {
			return err
		}
		return runExport(env.Exporter, cmd.OutOrStdout())
	},
}

// runExport reads a JSON array of records from --in ("-" for stdin) and
// writes the export. With --out the file is copied there; otherwise the
// path of the generated file is printed.
func runExport(exp *export.Exporter, out io.Writer) error {
	var (
		records []byte
		err     error
	)
	if exportIn == "-" {
		records, err = io.ReadAll(os.Stdin)
	} else {
		records, err = os.ReadFile(exportIn)
	}
	if err != nil {
		return eris.Wrapf(err, "export: read %s", exportIn)
	}

	file, err := exp.Write(records, export.ParseFormat(exportFormat))
	if err != nil {
		return err
	}

	dest := file.Path
	if exportOut != "" {
		if err := copyFile(file.Path, exportOut); err != nil {
			return err
		}
		dest = exportOut
	}

	zap.L().Info("export complete",
		zap.String("format", string(file.Format)),
		zap.String("path", dest),
		zap.Int64("bytes", file.Size),
	)
	_, err = io.WriteString(out, dest+"\n")
	return err
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return eris.Wrap(err, "export: open generated file")
	}
	defer in.Close() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return eris.Wrap(err, "export: create output dir")
	}
	outFile, err := os.Create(dst)
	if err != nil {
		return eris.Wrap(err, "export: create output file")
	}
	if _, err := io.Copy(outFile, in); err != nil {
		_ = outFile.Close()
		return eris.Wrap(err, "export: copy")
	}
	return outFile.Close()
}

func init() {
	exportCmd.Flags().StringVar(&exportIn, "in", "", `JSON file with an array of business records ("-" for stdin)`)
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv or excel")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "copy the export to this path")
	_ = exportCmd.MarkFlagRequired("in")
	rootCmd.AddCommand(exportCmd)
}
