package util

import (
	"context"
	"fmt"
	"os"

	"github.com/k0kubun/pp/v3"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/schemadiff/schemadiff/internal/comparator"
	"github.com/schemadiff/schemadiff/internal/diff"
	"github.com/schemadiff/schemadiff/internal/ignore"
	"github.com/schemadiff/schemadiff/internal/include"
	"github.com/schemadiff/schemadiff/internal/logger"
	"github.com/schemadiff/schemadiff/ir"
)

// AppFs is the filesystem schema files are read from
var AppFs = afero.NewOsFs()

// IgnoreFile lists the objects left out of every loaded schema
var IgnoreFile = ignore.IgnoreFileName

// LoadSchemas reads the schema files concurrently, resolving their includes
// and dropping the objects of the ignore file. The result follows the order
// of paths.
func LoadSchemas(ctx context.Context, paths ...string) ([]*ir.Schema, error) {
	ignoreConfig, err := ignore.LoadIgnoreFileFromPath(AppFs, IgnoreFile)
	if err != nil {
		return nil, err
	}
	schemas := make([]*ir.Schema, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			doc, err := include.NewProcessor(AppFs).ProcessFile(path)
			if err != nil {
				return err
			}
			schema, err := ignoreConfig.Filter(doc).Build()
			if err != nil {
				return fmt.Errorf("failed to build schema from %s: %w", path, err)
			}
			logger.Get().Debug("Loaded schema", "file", path, "schema", schema.Name(), "tables", len(schema.Tables()))
			schemas[i] = schema
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return schemas, nil
}

// CompareFiles loads both schema files and compares them
func CompareFiles(ctx context.Context, from, to string, detectColumnRenames bool) (*diff.SchemaDiff, error) {
	schemas, err := LoadSchemas(ctx, from, to)
	if err != nil {
		return nil, err
	}

	tables := comparator.NewTableComparator(comparator.WithColumnRenameDetection(detectColumnRenames))
	schemaDiff := comparator.NewSchemaComparator(tables).Compare(schemas[0], schemas[1])
	DumpDiff(schemaDiff)
	return schemaDiff, nil
}

// DumpDiff pretty prints the diff to stderr in debug mode
func DumpDiff(schemaDiff *diff.SchemaDiff) {
	if !logger.IsDebug() {
		return
	}
	printer := pp.New()
	printer.SetOutput(os.Stderr)
	printer.SetColoringEnabled(false)
	printer.Println(schemaDiff)
}
