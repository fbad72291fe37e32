// Package exporter writes filtered observation views to CSV and XLSX.
//
// CSV output carries a UTF-8 BOM so Excel opens region names with accented
// characters correctly. XLSX output is produced with excelize. Exports can
// be streamed to an http.ResponseWriter or written to the configured
// export directory.
package exporter
