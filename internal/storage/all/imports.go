// Package all wires all built-in storage backends into the storage factory.
//
// Importing it for side effects registers the "postgres", "mssql" and
// "sqlite" kinds with storage.Register and storage.RegisterDDL:
//
//	import _ "payroll/internal/storage/all"
package all

import (
	_ "payroll/internal/storage/mssql"
	_ "payroll/internal/storage/postgres"
	_ "payroll/internal/storage/sqlite"
)
