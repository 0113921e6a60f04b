// Package exporter renders scaled record series as downloadable files:
// CSV for plain tooling and Excel workbooks for engineering reports.
// Both formats pivot the per-channel series into one wide table indexed
// by timestamp, the shape protection engineers expect to paste into
// their own analysis sheets.
package exporter
