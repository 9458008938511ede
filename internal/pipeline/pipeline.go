// Package pipeline runs postoga end to end: build the canonical tables, filter
// them, merge haplotypes, evaluate completeness and write every output into a
// fresh run directory.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/inodb/postoga/internal/completeness"
	"github.com/inodb/postoga/internal/config"
	"github.com/inodb/postoga/internal/convert"
	"github.com/inodb/postoga/internal/duckdb"
	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/haplotype"
	"github.com/inodb/postoga/internal/join"
	"github.com/inodb/postoga/internal/logging"
	"github.com/inodb/postoga/internal/manifest"
	"github.com/inodb/postoga/internal/output"
	"github.com/inodb/postoga/internal/table"
	"github.com/inodb/postoga/internal/toga"
)

// Output file names inside a run directory.
const (
	JoinedTableFile   = "toga.table.gz"
	FilteredTableFile = "filtered.table.gz"
	FilteredBEDFile   = "filtered.bed"
	IsoformsFile      = "isoforms.tsv"
	SummaryFile       = "summary.txt"
	MergedFile        = "haplotypes.merged.tsv"
	CompletenessFile  = "completeness.tsv"
)

// stagingSuffix marks a run directory that is still being written.
const stagingSuffix = ".tmp"

// AssemblyOutcome is the result of one input assembly.
type AssemblyOutcome struct {
	Name     string
	Input    string
	Joined   *table.Table
	Stats    join.JoinStats
	Filtered *table.Table
	Report   *filter.DiscardReport
}

// Outcome describes a finished run.
type Outcome struct {
	RunID        string
	OutDir       string
	Assemblies   []*AssemblyOutcome
	Merged       *haplotype.MergedTable
	Completeness []*completeness.Report
}

// Pipeline runs one configuration.
type Pipeline struct {
	cfg       config.Config
	version   string
	logger    *zap.Logger
	converter convert.Converter
	now       func() time.Time
}

// New creates a pipeline for a validated configuration.
func New(cfg config.Config, version string) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		version: version,
		logger:  zap.NewNop(),
		now:     time.Now,
	}
}

// SetLogger sets the logger for progress messages.
func (p *Pipeline) SetLogger(l *zap.Logger) {
	p.logger = l
}

// SetConverter overrides the converter chosen from the output format.
func (p *Pipeline) SetConverter(c convert.Converter) {
	p.converter = c
}

// Run executes the pipeline. Nothing is left in the output location unless
// the whole run succeeds.
func (p *Pipeline) Run(ctx context.Context) (out *Outcome, err error) {
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	order, err := p.cfg.Order()
	if err != nil {
		return nil, err
	}

	started := p.now()
	out = &Outcome{RunID: uuid.NewString()}
	out.OutDir = filepath.Join(p.baseDir(), fmt.Sprintf("POSTOGA_%s_%s", out.RunID[:8], started.Format("20060102_150405")))
	if _, statErr := os.Stat(out.OutDir); statErr == nil {
		return nil, fmt.Errorf("output directory %s already exists", out.OutDir)
	}

	m := manifest.New(out.RunID, p.version, manifest.ModeSingle, started)
	if p.cfg.HaplotypeMode() {
		m.Mode = manifest.ModeHaplotypes
	}
	m.Precedence = order.String()
	m.SetFilters(p.cfg.Predicates)

	in, err := p.loadInputs(m)
	if err != nil {
		return nil, err
	}

	staging := out.OutDir + stagingSuffix
	if err := os.MkdirAll(staging, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}
	defer func() {
		if err != nil {
			os.RemoveAll(staging)
		}
	}()

	logger, closeLog, err := logging.WithFile(p.logger, p.cfg.Level, filepath.Join(staging, logging.FileName))
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("run_id", out.RunID))

	w := &writer{root: staging, logger: logger}
	err = p.execute(ctx, w, order, in, out, m)
	if cerr := closeLog(); err == nil && cerr != nil {
		err = fmt.Errorf("close log file: %w", cerr)
	}
	if err != nil {
		return nil, err
	}

	if err := os.Rename(staging, out.OutDir); err != nil {
		return nil, fmt.Errorf("move output into place: %w", err)
	}
	p.logger.Info("run complete", zap.String("run_id", out.RunID), zap.String("outdir", out.OutDir))
	return out, nil
}

// inputs are the resolved input files of a run.
type inputs struct {
	assemblies  []join.Assembly
	catalogs    []*completeness.Catalog
	translation completeness.Translator
}

// loadInputs checks every input directory and reads the completeness
// catalogs before anything is written.
func (p *Pipeline) loadInputs(m *manifest.Manifest) (*inputs, error) {
	catalogs, tr, err := p.loadCompleteness(m)
	if err != nil {
		return nil, err
	}
	assemblies, err := p.resolveInputs(m)
	if err != nil {
		return nil, err
	}
	return &inputs{assemblies: assemblies, catalogs: catalogs, translation: tr}, nil
}

func (p *Pipeline) execute(ctx context.Context, w *writer, order table.PrecedenceOrder, in *inputs, out *Outcome, m *manifest.Manifest) error {
	cfg := p.cfg
	logger := w.logger

	joiner := join.NewJoiner()
	joiner.SetLogger(logger)
	results, err := joiner.BuildAll(ctx, in.assemblies, cfg.Workers)
	if err != nil {
		return err
	}

	engine := filter.NewEngine()
	engine.SetLogger(logger)
	filtered := make([]*table.Table, 0, len(results))
	for _, res := range results {
		ft, report, err := engine.Apply(res.Table, cfg.Predicates)
		if err != nil {
			return fmt.Errorf("filter %s: %w", res.Assembly.Name, err)
		}
		out.Assemblies = append(out.Assemblies, &AssemblyOutcome{
			Name:     res.Assembly.Name,
			Input:    res.Assembly.Dir.Root,
			Joined:   res.Table,
			Stats:    res.Stats,
			Filtered: ft,
			Report:   report,
		})
		filtered = append(filtered, ft)
		m.AddAssembly(res.Assembly.Name, res.Assembly.Dir.Root, res.Stats, report)
	}

	var genes []table.GeneCall
	if cfg.HaplotypeMode() {
		if out.Merged, err = haplotype.Merge(filtered, order); err != nil {
			return fmt.Errorf("merge haplotypes: %w", err)
		}
		genes = out.Merged.GeneCalls()
		logger.Info("merged haplotypes",
			zap.Strings("assemblies", out.Merged.Assemblies()),
			zap.Int("genes", out.Merged.Len()))
	} else {
		genes = filtered[0].BestClassPerGene(order)
	}

	if len(in.catalogs) > 0 {
		tr := in.translation
		if tr == nil {
			tr = completeness.ReferenceGenes(filtered...)
		}
		ev := completeness.NewEvaluator(order)
		ev.SetLogger(logger)
		if out.Completeness, err = ev.EvaluateAll(genes, in.catalogs, tr); err != nil {
			return err
		}
	}

	return p.writeOutputs(ctx, w, out, m)
}

func (p *Pipeline) loadCompleteness(m *manifest.Manifest) ([]*completeness.Catalog, completeness.Translator, error) {
	var catalogs []*completeness.Catalog
	for _, path := range p.cfg.Catalogs {
		c, err := completeness.LoadCatalog(path, p.cfg.Namespace)
		if err != nil {
			return nil, nil, err
		}
		catalogs = append(catalogs, c)
		if err := m.AddInputs(path); err != nil {
			return nil, nil, err
		}
	}

	if p.cfg.Translation == "" {
		return catalogs, nil, nil
	}
	mapping, err := completeness.LoadTranslation(p.cfg.Translation)
	if err != nil {
		return nil, nil, err
	}
	if err := m.AddInputs(p.cfg.Translation); err != nil {
		return nil, nil, err
	}
	return catalogs, mapping, nil
}

// resolveInputs checks that every input directory holds the files the run
// needs.
func (p *Pipeline) resolveInputs(m *manifest.Manifest) ([]join.Assembly, error) {
	inputs := p.cfg.Inputs()
	names := make(map[string]bool, len(inputs))
	assemblies := make([]join.Assembly, 0, len(inputs))
	for _, in := range inputs {
		dir, err := toga.ResolveDir(in, p.cfg.Target)
		if err != nil {
			return nil, err
		}
		if err := m.AddInputs(dir.Inputs()...); err != nil {
			return nil, err
		}
		assemblies = append(assemblies, join.Assembly{
			Name:     assemblyName(in, names),
			Dir:      dir,
			Isoforms: p.cfg.Isoforms,
		})
	}
	if p.cfg.Isoforms != "" {
		if err := m.AddInputs(p.cfg.Isoforms); err != nil {
			return nil, err
		}
	}
	return assemblies, nil
}

// assemblyName derives a unique name from the input directory.
func assemblyName(dir string, used map[string]bool) string {
	base := filepath.Base(filepath.Clean(dir))
	name := base
	for i := 2; used[name]; i++ {
		name = base + "_" + strconv.Itoa(i)
	}
	used[name] = true
	return name
}

func (p *Pipeline) baseDir() string {
	switch {
	case p.cfg.OutDir != "":
		return p.cfg.OutDir
	case p.cfg.TogaDir != "":
		return p.cfg.TogaDir
	default:
		return filepath.Dir(filepath.Clean(p.cfg.Haplotypes[0]))
	}
}

func (p *Pipeline) writeOutputs(ctx context.Context, w *writer, out *Outcome, m *manifest.Manifest) error {
	cfg := p.cfg
	if cfg.Level != logging.LevelOff {
		m.AddOutputs(logging.FileName)
	}

	for _, a := range out.Assemblies {
		dir := ""
		if cfg.HaplotypeMode() {
			dir = a.Name
			if err := os.MkdirAll(filepath.Join(w.root, dir), 0o755); err != nil {
				return fmt.Errorf("create assembly directory: %w", err)
			}
		}
		if err := p.writeAssembly(ctx, w, dir, a); err != nil {
			return fmt.Errorf("write %s: %w", a.Name, err)
		}
	}

	if err := w.file(SummaryFile, func(f io.Writer) error {
		return writeSummary(f, out)
	}); err != nil {
		return err
	}
	if out.Merged != nil {
		if err := w.file(MergedFile, func(f io.Writer) error {
			mw := output.NewMergedWriter(f, out.Merged.Assemblies())
			if err := mw.WriteTable(out.Merged); err != nil {
				return err
			}
			return mw.Flush()
		}); err != nil {
			return err
		}
	}
	if len(out.Completeness) > 0 {
		if err := w.file(CompletenessFile, func(f io.Writer) error {
			return output.WriteCompleteness(f, out.Completeness)
		}); err != nil {
			return err
		}
	}

	if cfg.DB != "" {
		if err := exportDB(cfg.DB, out, m); err != nil {
			return err
		}
		w.logger.Info("exported run", zap.String("db", cfg.DB))
	}

	m.AddOutputs(w.written...)
	m.Finished = p.now()
	return m.Write(filepath.Join(w.root, manifest.FileName))
}

func (p *Pipeline) writeAssembly(ctx context.Context, w *writer, dir string, a *AssemblyOutcome) error {
	for _, t := range []struct {
		name string
		tbl  *table.Table
	}{
		{JoinedTableFile, a.Joined},
		{FilteredTableFile, a.Filtered},
	} {
		if err := w.file(filepath.Join(dir, t.name), func(f io.Writer) error {
			tw := output.NewTableWriter(f)
			if err := tw.WriteTable(t.tbl); err != nil {
				return err
			}
			return tw.Flush()
		}); err != nil {
			return err
		}
	}
	if p.cfg.OnlyTable {
		return nil
	}

	bed := filepath.Join(dir, FilteredBEDFile)
	if err := w.file(bed, func(f io.Writer) error {
		n, err := output.WriteBED(f, a.Filtered)
		w.logger.Debug("wrote bed", zap.String("assembly", a.Name), zap.Int("lines", n))
		return err
	}); err != nil {
		return err
	}
	isoforms := filepath.Join(dir, IsoformsFile)
	if err := w.file(isoforms, func(f io.Writer) error {
		_, err := output.WriteIsoforms(f, a.Filtered)
		return err
	}); err != nil {
		return err
	}

	if p.cfg.Format == convert.FormatBED {
		return nil
	}
	conv, err := p.converterFor(w.logger)
	if err != nil {
		return err
	}
	target := convert.OutputName(bed, p.cfg.Format)
	if err := conv.Convert(ctx, w.path(bed), w.path(isoforms), w.path(target)); err != nil {
		return fmt.Errorf("convert to %s: %w", p.cfg.Format, err)
	}
	w.written = append(w.written, target)
	return nil
}

func (p *Pipeline) converterFor(logger *zap.Logger) (convert.Converter, error) {
	if p.converter != nil {
		return p.converter, nil
	}
	conv, err := convert.ForFormat(p.cfg.Format)
	if err != nil {
		return nil, err
	}
	if e, ok := conv.(*convert.Exec); ok {
		e.SetLogger(logger)
	}
	return conv, nil
}

func writeSummary(w io.Writer, out *Outcome) error {
	for _, a := range out.Assemblies {
		if err := output.WriteJoinStats(w, a.Name, a.Stats); err != nil {
			return err
		}
		if err := output.WriteFilterSummary(w, a.Name, a.Report); err != nil {
			return err
		}
	}
	if out.Merged != nil {
		return output.WriteMergeSummary(w, out.Merged)
	}
	return nil
}

func exportDB(path string, out *Outcome, m *manifest.Manifest) error {
	store, err := duckdb.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.WriteRun(out.RunID, m.Started, m.Version, m.Precedence); err != nil {
		return err
	}
	for _, a := range out.Assemblies {
		if err := store.WriteTable(out.RunID, duckdb.StageJoined, a.Joined); err != nil {
			return err
		}
		if err := store.WriteTable(out.RunID, duckdb.StageFiltered, a.Filtered); err != nil {
			return err
		}
		if err := store.WriteDiscards(out.RunID, a.Name, a.Report); err != nil {
			return err
		}
	}
	if out.Merged != nil {
		if err := store.WriteMerged(out.RunID, out.Merged); err != nil {
			return err
		}
	}
	return nil
}

// writer creates output files under root and remembers their names.
type writer struct {
	root    string
	logger  *zap.Logger
	written []string
}

func (w *writer) path(name string) string {
	return filepath.Join(w.root, name)
}

func (w *writer) file(name string, fn func(io.Writer) error) (err error) {
	f, err := output.Create(w.path(name))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("close %s: %w", name, cerr)
		}
	}()
	if err := fn(f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	w.written = append(w.written, name)
	return nil
}
