package constants

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"

	SQLiteInMemoryPath = ":memory:"
)

const (
	FormatCSV   = "csv"
	FormatTable = "table"
)
