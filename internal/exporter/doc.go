// Package exporter writes cleaned tables to disk.
//
// CSVWriter emits a header row followed by one record per row, with an
// optional UTF-8 BOM for Excel. ExcelWriter builds a single-sheet workbook
// with excelize and keeps numbers numeric. JSONWriter emits an array of
// records whose keys follow the column order.
//
// Exporter ties the three together:
//
//	exp := exporter.NewExporter(paths, cfg.Processing.CSVBOM, logger)
//	out, err := exp.Export("processed_sales.csv", exporter.FormatCSV, table)
package exporter
