package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/postoga/internal/completeness"
	"github.com/inodb/postoga/internal/config"
	"github.com/inodb/postoga/internal/convert"
	"github.com/inodb/postoga/internal/logging"
	"github.com/inodb/postoga/internal/pipeline"
	"github.com/inodb/postoga/internal/table"
	"github.com/inodb/postoga/internal/toga"
)

// flagKeys maps command-line flags to configuration keys.
var flagKeys = map[string]string{
	"togadir":            config.KeyTogaDir,
	"hpath":              config.KeyHaplotypes,
	"outdir":             config.KeyOutDir,
	"by-orthology-class": config.KeyClasses,
	"by-relationship":    config.KeyRelationships,
	"by-orthology-score": config.KeyMinOrthologyScore,
	"by-paralog-score":   config.KeyMaxParalogScore,
	"to":                 config.KeyFormat,
	"target":             config.KeyTarget,
	"with-isoforms":      config.KeyIsoforms,
	"only-table":         config.KeyOnlyTable,
	"db":                 config.KeyDB,
	"catalog":            config.KeyCatalogs,
	"namespace":          config.KeyNamespace,
	"translation":        config.KeyTranslation,
	"rule":               config.KeyRule,
	"level":              config.KeyLevel,
	"workers":            config.KeyWorkers,
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Filter and convert one TOGA results directory",
		Example: `  postoga run --togadir toga_out
  postoga run --togadir toga_out --by-relationship o2o --by-orthology-score 0.9 --to gff
  postoga run --togadir toga_out --only-table --catalog busco_mammalia.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(config.KeyHaplotypes, "")
			return runPipeline(cmd)
		},
	}

	cmd.Flags().String("togadir", "", "TOGA results directory")
	addCommonFlags(cmd)
	cmd.Flags().String("target", toga.TargetBED, "Annotation to filter: bed or utr")
	cmd.Flags().String("with-isoforms", "", "Isoform table (gene<TAB>transcript) passed to the converter")
	cmd.Flags().Bool("only-table", false, "Write the tables and summary only, no BED or conversion")

	return cmd
}

func newHaplotypesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "haplotypes",
		Short: "Merge per-gene calls across haplotype assemblies",
		Long: `Builds and filters the table of every haplotype assembly, then keeps for
each gene the best orthology class found in any assembly, ranked by --rule.
Genes missing from an assembly rank below every class.`,
		Example: `  postoga haplotypes --hpath hap1,hap2
  postoga haplotypes --hpath hap1,hap2,hap3 --rule "I>PI>UL>L>M>PM>PG>abs" --catalog ancestral.txt`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			viper.Set(config.KeyTogaDir, "")
			return runPipeline(cmd)
		},
	}

	cmd.Flags().StringSlice("hpath", nil, "TOGA results directories of the haplotypes, comma separated")
	addCommonFlags(cmd)
	cmd.Flags().String("target", toga.TargetBED, "Annotation to filter: bed or utr")
	cmd.Flags().Bool("only-table", false, "Write the tables and summary only, no BED or conversion")

	return cmd
}

func addCommonFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("outdir", "", "Directory to create the run directory in (default: next to the input)")
	f.String("by-orthology-class", "", "Keep these orthology classes, comma separated (e.g. I,PI,UL)")
	f.String("by-relationship", "", "Keep these orthology relationships, comma separated (e.g. o2o,o2m)")
	f.String("by-orthology-score", "", "Minimum orthology score in [0,1]")
	f.String("by-paralog-score", "", "Maximum paralog score in [0,1]")
	f.String("to", convert.FormatGTF, "Output format: gtf, gff or bed")
	f.String("db", "", "DuckDB file to export the run into")
	f.StringSlice("catalog", nil, "Gene catalog to measure completeness against (repeatable)")
	f.String("namespace", completeness.NamespaceEnsembl, "Catalog namespace: ensembl, entrez or gene_name")
	f.String("translation", "", "Gene id to catalog key table (default: reference genes)")
	f.String("rule", table.DefaultRule, "Orthology class precedence, best first")
	f.String("level", logging.LevelInfo, "Log level: debug, info, warn or off")
	f.Int("workers", 0, "Assemblies built in parallel (0: one per assembly)")
}

// bindFlags binds the flags of the running command only, so run and
// haplotypes can share configuration keys.
func bindFlags(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := viper.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func runPipeline(cmd *cobra.Command) error {
	if err := bindFlags(cmd); err != nil {
		return err
	}
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return &usageError{err: err}
	}

	logger, err := logging.New(cfg.Level)
	if err != nil {
		return &usageError{err: err}
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(cfg, version)
	p.SetLogger(logger)
	out, err := p.Run(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), out.OutDir)
	return nil
}
