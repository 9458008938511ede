// Package config holds the run configuration assembled from flags,
// POSTOGA_* environment variables and the optional config file.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/inodb/postoga/internal/completeness"
	"github.com/inodb/postoga/internal/convert"
	"github.com/inodb/postoga/internal/filter"
	"github.com/inodb/postoga/internal/logging"
	"github.com/inodb/postoga/internal/table"
	"github.com/inodb/postoga/internal/toga"
)

// Viper keys.
const (
	KeyTogaDir           = "togadir"
	KeyHaplotypes        = "hpath"
	KeyOutDir            = "outdir"
	KeyClasses           = "filter.class"
	KeyRelationships     = "filter.relationship"
	KeyMinOrthologyScore = "filter.orthology_score"
	KeyMaxParalogScore   = "filter.paralog_score"
	KeyFormat            = "to"
	KeyTarget            = "target"
	KeyIsoforms          = "isoforms"
	KeyOnlyTable         = "only_table"
	KeyDB                = "db"
	KeyCatalogs          = "completeness.catalogs"
	KeyNamespace         = "completeness.namespace"
	KeyTranslation       = "completeness.translation"
	KeyRule              = "rule"
	KeyLevel             = "log.level"
	KeyWorkers           = "workers"
)

// Config is a validated run configuration.
type Config struct {
	TogaDir    string
	Haplotypes []string
	OutDir     string

	Predicates filter.Predicates

	Format    string
	Target    string
	Isoforms  string
	OnlyTable bool
	DB        string

	Catalogs    []string
	Namespace   string
	Translation string

	Rule    string
	Level   string
	Workers int
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Format:    convert.FormatGTF,
		Target:    toga.TargetBED,
		Namespace: completeness.NamespaceEnsembl,
		Rule:      table.DefaultRule,
		Level:     logging.LevelInfo,
	}
}

// SetDefaults registers Default() values with v.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault(KeyFormat, d.Format)
	v.SetDefault(KeyTarget, d.Target)
	v.SetDefault(KeyNamespace, d.Namespace)
	v.SetDefault(KeyRule, d.Rule)
	v.SetDefault(KeyLevel, d.Level)
}

// FromViper reads and validates a configuration.
func FromViper(v *viper.Viper) (Config, error) {
	c := Default()
	c.TogaDir = v.GetString(KeyTogaDir)
	c.Haplotypes = stringList(v, KeyHaplotypes)
	c.OutDir = v.GetString(KeyOutDir)
	c.Isoforms = v.GetString(KeyIsoforms)
	c.OnlyTable = v.GetBool(KeyOnlyTable)
	c.DB = v.GetString(KeyDB)
	c.Catalogs = stringList(v, KeyCatalogs)
	c.Translation = v.GetString(KeyTranslation)
	c.Workers = v.GetInt(KeyWorkers)
	if s := v.GetString(KeyFormat); s != "" {
		c.Format = strings.ToLower(s)
	}
	if s := v.GetString(KeyTarget); s != "" {
		c.Target = strings.ToLower(s)
	}
	if s := v.GetString(KeyNamespace); s != "" {
		c.Namespace = s
	}
	if s := v.GetString(KeyRule); s != "" {
		c.Rule = s
	}
	if s := v.GetString(KeyLevel); s != "" {
		c.Level = s
	}

	var err error
	c.Predicates.Classes = stringList(v, KeyClasses)
	c.Predicates.Relationships = stringList(v, KeyRelationships)
	if c.Predicates.MinOrthologyScore, err = filter.ParseThreshold("orthology score", v.GetString(KeyMinOrthologyScore)); err != nil {
		return Config{}, err
	}
	if c.Predicates.MaxParalogScore, err = filter.ParseThreshold("paralog score", v.GetString(KeyMaxParalogScore)); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// stringList reads a key that may hold a YAML list or a comma-separated
// string.
func stringList(v *viper.Viper, key string) []string {
	switch val := v.Get(key).(type) {
	case nil:
		return nil
	case string:
		return filter.ParseSet(val)
	case []string:
		return filter.ParseSet(strings.Join(val, ","))
	case []any:
		parts := make([]string, len(val))
		for i, p := range val {
			parts[i] = fmt.Sprint(p)
		}
		return filter.ParseSet(strings.Join(parts, ","))
	default:
		return filter.ParseSet(fmt.Sprint(val))
	}
}

// Validate checks everything that can be checked before reading inputs.
func (c Config) Validate() error {
	switch {
	case c.TogaDir == "" && len(c.Haplotypes) == 0:
		return errors.New("no input: set --togadir or --hpath")
	case c.TogaDir != "" && len(c.Haplotypes) > 0:
		return errors.New("--togadir and --hpath are mutually exclusive")
	}
	if err := c.Predicates.Validate(); err != nil {
		return err
	}
	if _, err := c.Order(); err != nil {
		return err
	}
	if _, err := convert.ForFormat(c.Format); err != nil {
		return err
	}
	if c.Target != toga.TargetBED && c.Target != toga.TargetUTR {
		return fmt.Errorf("unknown annotation target %q (want %s or %s)", c.Target, toga.TargetBED, toga.TargetUTR)
	}
	if _, _, err := logging.ParseLevel(c.Level); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	return nil
}

// Order parses the precedence rule.
func (c Config) Order() (table.PrecedenceOrder, error) {
	return table.ParseOrder(c.Rule)
}

// HaplotypeMode reports whether several assemblies are merged.
func (c Config) HaplotypeMode() bool {
	return len(c.Haplotypes) > 0
}

// Inputs returns the TOGA result directories in input order.
func (c Config) Inputs() []string {
	if c.HaplotypeMode() {
		return c.Haplotypes
	}
	return []string{c.TogaDir}
}
