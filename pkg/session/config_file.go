// pkg/session/config_file.go
//
// Config loading (SPEC_FULL.md §2, item 12): a YAML document supplies default
// CLI flag values and/or a set of bootstrap statements, for deployments
// that prefer a checked-in config file over a long flag line. Uses
// gopkg.in/yaml.v3 with yaml-tagged structs, the same shape Chahine's
// pkg/schema/loader.go uses for its YAML schema format.
package session

import (
	"os"

	"gopkg.in/yaml.v3"

	"tur/pkg/dberrors"
)

// configFile is the on-disk shape read by LoadConfigFile. Pointer fields
// distinguish "absent from the file" from "explicitly set to false", so
// CLI flags can still override whatever the file did specify.
type configFile struct {
	Parallel    *bool   `yaml:"parallel,omitempty"`
	StoragePath *string `yaml:"storage_path,omitempty"`
	Reinit      *bool   `yaml:"reinit,omitempty"`
	WriteBack   *bool   `yaml:"write_back,omitempty"`
}

// LoadConfigFile reads a YAML config file and applies any fields it sets
// on top of a fresh default Config (spec.md §6 defaults for everything
// it leaves unset).
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberrors.Wrap(dberrors.IO, err, "reading config file")
	}

	var cf configFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, dberrors.Wrap(dberrors.IO, err, "parsing config file")
	}

	cfg := NewConfig()
	if cf.Parallel != nil {
		cfg.Parallel = *cf.Parallel
	}
	if cf.StoragePath != nil {
		cfg.StoragePath = *cf.StoragePath
	}
	if cf.Reinit != nil {
		cfg.Reinit = *cf.Reinit
	}
	if cf.WriteBack != nil {
		cfg.WriteBack = *cf.WriteBack
	}
	return cfg, nil
}

// schemaFile is the on-disk shape read by LoadSchemaFile: a checked-in
// set of DDL statements to run against a fresh Session before serving
// any caller-submitted SQL.
type schemaFile struct {
	Statements []string `yaml:"statements"`
}

// LoadSchemaFile reads a YAML file naming bootstrap statements (normally
// CREATE TABLE) to run in order against a new Session.
func LoadSchemaFile(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, dberrors.Wrap(dberrors.IO, err, "reading schema file")
	}

	var sf schemaFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return nil, dberrors.Wrap(dberrors.IO, err, "parsing schema file")
	}
	return sf.Statements, nil
}
