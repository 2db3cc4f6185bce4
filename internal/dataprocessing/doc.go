// Package dataprocessing turns uploaded files into tables and cleans them.
//
// # Loading
//
// Loader reads CSV, Excel, JSON and XML files. Text formats go through a
// ladder of decoding strategies (encoding, delimiter, document shape) and the
// first one that yields a table wins. When every strategy fails for CSV, JSON
// or XML the loader returns a fixed sample table with Placeholder set:
//
//	res, err := dataprocessing.NewLoader(logger).Load(ctx, "sales.csv", domain.FileTypeCSV)
//	if err != nil {
//	    return err
//	}
//	if res.Placeholder {
//	    logger.Warn("input could not be parsed", "strategy", res.Strategy)
//	}
//
// # Analysis
//
// Analyzer reports shape, missing values, duplicates, IQR outliers and column
// types without touching the table.
//
// # Cleaning
//
// Pipeline runs five stages on a copy of the table:
//
//	impute -> outliers -> deduplicate -> normalize -> finalize
//
// Each run returns the cleaned table and a domain.Stats describing what every
// stage did. Stage failures are wrapped in *StageError.
//
//	cleaned, stats, err := dataprocessing.NewPipeline(opts, logger).Process(ctx, res.Table)
package dataprocessing
